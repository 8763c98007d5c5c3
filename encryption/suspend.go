package encryption

import (
	"fmt"
	"log"
	"strconv"

	"github.com/adamleinss/firmware-host-updates/systemd"
)

// ExecFunc runs a command synchronously and returns its exit status.
type ExecFunc func(name string, options systemd.ExecOptions) (int, error)

// Suspender temporarily disables disk-encryption protection on a volume for a
// bounded number of boots, so a firmware flash does not trip a recovery-key
// prompt. The bound matters: the platform re-arms protection by itself after
// rebootCount boots, so a failed or aborted flash never leaves the volume
// permanently unprotected.
type Suspender struct {
	// Command is the suspend helper; the volume and reboot count are appended
	// as arguments.
	Command []string

	Exec ExecFunc
}

func (suspender *Suspender) exec(name string, options systemd.ExecOptions) (int, error) {
	if suspender.Exec != nil {
		return suspender.Exec(name, options)
	}

	return systemd.Exec(name, options)
}

func (suspender *Suspender) Suspend(volume string, rebootCount int) error {
	if len(suspender.Command) == 0 {
		return fmt.Errorf("No encryption suspend command configured")
	}

	var cmd = append(append([]string{}, suspender.Command...), volume, strconv.Itoa(rebootCount))

	log.Printf("encryption: suspending protection on %v for %v boot(s)", volume, rebootCount)

	if exitStatus, err := suspender.exec("encryption-suspend", systemd.ExecOptions{Cmd: cmd}); err != nil {
		return fmt.Errorf("Failed to run suspend helper: %v", err)
	} else if exitStatus != 0 {
		return fmt.Errorf("Suspend helper exited with status %v", exitStatus)
	}

	return nil
}
