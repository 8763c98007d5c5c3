package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/adamleinss/firmware-host-updates/catalog"
	"github.com/adamleinss/firmware-host-updates/dispatch"
	"github.com/adamleinss/firmware-host-updates/hw"
	"github.com/adamleinss/firmware-host-updates/marker"
	"github.com/adamleinss/firmware-host-updates/prompt"
)

// Exit codes observable by a calling orchestrator. RebootRequired is the
// installer reboot-pending analog: the caller must be able to tell "done,
// reboot pending" apart from "done, nothing to do".
const (
	ExitOK             = 0
	ExitFatal          = 1
	ExitCancelled      = 2
	ExitRebootRequired = 3
)

const DefaultRebootWindow = 600 * time.Second
const RebootFinalLock = 60 * time.Second

var errRebootRequired = errors.New("Reboot required to complete firmware update")

type Options struct {
	CatalogPath    string
	MarkerPath     string
	LockPath       string
	Schedule       string
	Reboot         bool
	RebootWindow   time.Duration
	DryRun         bool
	SuspendCommand string
}

func exitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, dispatch.ErrCancelled):
		return ExitCancelled
	case errors.Is(err, errRebootRequired):
		return ExitRebootRequired
	default:
		return ExitFatal
	}
}

func run(options Options) error {
	updateCatalog, err := loadCatalog(options)
	if err != nil {
		return fmt.Errorf("Failed to load catalog: %v", err)
	}

	identity, err := probeIdentity()
	if err != nil {
		return fmt.Errorf("Failed to probe hardware identity: %v", err)
	}

	if options.DryRun {
		if rule, ok := dispatch.Select(identity, updateCatalog.Rules); ok {
			log.Printf("Dry run: would apply rule %v (package %v)", rule, rule.Package)
		} else {
			log.Printf("Dry run: no applicable update for %v", identity)
		}

		return nil
	}

	// one flash session per host, ever: a second invocation must not get past
	// this while another is mid-flash
	lock, err := acquireSessionLock(options.LockPath)
	if err != nil {
		return fmt.Errorf("Failed to acquire session lock: %v", err)
	}
	defer lock.Release()

	markers, err := marker.Open(options.MarkerPath)
	if err != nil {
		return fmt.Errorf("Failed to open marker store: %v", err)
	}
	defer markers.Close()

	scheduler, err := makeScheduler(options)
	if err != nil {
		return err
	}

	var dispatcher = dispatch.Dispatcher{
		Prompter:    prompt.NewConsole(),
		Runner:      makeRunner(),
		Precautions: makeSuspender(options),
		Markers:     markers,
	}

	if !options.Reboot {
		log.Printf("Using --reboot=false, will leave any required reboot to the operator")
	}

	return scheduler.Run(func() error {
		log.Printf("Evaluating update catalog for %v...", identity)

		return evaluate(&dispatcher, identity, updateCatalog.Rules, func() error {
			return finalizeReboot(options)
		})
	})
}

// evaluate runs one dispatch pass and, iff an update executed, the reboot
// finalizer — exactly once. The errRebootRequired return carries the
// reboot-pending exit status out of the run.
func evaluate(dispatcher *dispatch.Dispatcher, identity hw.Identity, rules []catalog.Rule, finalize func() error) error {
	state, outcome, err := dispatcher.Dispatch(identity, rules)

	if err != nil {
		return err
	}

	if outcome.ExitCode != nil {
		log.Printf("Update package exited with status %v (vendor-specific, not interpreted)", *outcome.ExitCode)
	}

	if !state.UpdateExecuted {
		return nil
	}

	if err := finalize(); err != nil {
		return err
	}

	return errRebootRequired
}

func main() {
	var options Options

	flag.StringVar(&options.CatalogPath, "catalog-path", "/etc/firmware-host-updates/catalog.yml", "Path to update rule catalog")
	flag.StringVar(&options.MarkerPath, "marker-path", "/var/lib/firmware-host-updates/markers.db", "Path to audit marker store")
	flag.StringVar(&options.LockPath, "lock-path", "/run/firmware-host-updates.lock", "Path to flash session lock")
	flag.StringVar(&options.Schedule, "schedule", "", "Scheduled evaluation (cron syntax)")
	flag.BoolVar(&options.Reboot, "reboot", true, "Reboot after a deferred countdown if an update ran")
	flag.DurationVar(&options.RebootWindow, "reboot-window", DefaultRebootWindow, "Countdown before the post-update reboot")
	flag.BoolVar(&options.DryRun, "dry-run", false, "Report the selected rule without prompting or executing")
	flag.StringVar(&options.SuspendCommand, "suspend-command", "", "Encryption suspend helper (space-separated, volume and reboot count appended)")
	flag.Parse()

	err := run(options)

	if err == nil {

	} else if errors.Is(err, errRebootRequired) {
		log.Printf("%v", err)
	} else {
		log.Printf("Failed: %v", err)
	}

	os.Exit(exitCodeForError(err))
}

func splitCommand(command string) []string {
	return strings.Fields(command)
}
