package systemd

type JournalOptions struct {
	Unit           string
	StartTimestamp uint64 // realtime usec to seek to before reading
}

// JournalReader reads back the log output a transient unit wrote to the
// journal, so vendor flasher output ends up in the run log.
type JournalReader interface {
	Read() ([]string, error)
	Close() error
}
