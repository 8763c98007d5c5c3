package dispatch

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adamleinss/firmware-host-updates/catalog"
	"github.com/adamleinss/firmware-host-updates/fwversion"
	"github.com/adamleinss/firmware-host-updates/hw"
)

// SuspendRebootCount bounds an encryption suspension to the flash reboot:
// protection re-arms automatically on the boot after the one that consumes
// the suspension window.
const SuspendRebootCount = 1

type Choice int

const (
	Proceed Choice = iota
	Cancel
	TimedOut
)

func (choice Choice) String() string {
	switch choice {
	case Proceed:
		return "proceed"
	case Cancel:
		return "cancel"
	case TimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("choice(%d)", int(choice))
	}
}

// ErrCancelled aborts the entire run: firmware flashing is never retried
// within a session, so a declined or timed-out prompt is terminal.
var ErrCancelled = errors.New("Update cancelled by user")

type Prompter interface {
	Confirm(message string, timeout time.Duration) (Choice, error)
}

type Runner interface {
	Run(path string, args []string, workingDir string) (int, error)
}

type Precautions interface {
	Suspend(volume string, rebootCount int) error
}

type Markers interface {
	WriteMarker(key string, value string) error
}

// State tracks whether an update ran during this dispatch. It is threaded
// through the dispatch call rather than kept as ambient process state, and
// mutated at most once.
type State struct {
	UpdateExecuted bool
}

// Outcome describes a single dispatch attempt; it is not persisted beyond the
// run (the audit marker carries the durable record).
type Outcome struct {
	RanUpdate       bool
	CancelledByUser bool
	ExitCode        *int
}

type Dispatcher struct {
	Prompter    Prompter
	Runner      Runner
	Precautions Precautions
	Markers     Markers
}

func matches(identity hw.Identity, rule catalog.Rule) bool {
	if rule.Model != identity.Model {
		return false
	}

	if rule.HasMinimumVersion() && !fwversion.IsBelow(identity.FirmwareVersion, rule.MinimumVersion) {
		// firmware already current or newer
		return false
	}

	return true
}

// Select returns the first rule in catalog order that applies to the given
// identity. Used by dispatch and by dry-run reporting.
func Select(identity hw.Identity, rules []catalog.Rule) (catalog.Rule, bool) {
	for _, rule := range rules {
		if matches(identity, rule) {
			return rule, true
		}
	}

	return catalog.Rule{}, false
}

func markerKey(rule catalog.Rule) string {
	return fmt.Sprintf("firmware-update/%v", rule.Model)
}

func (dispatcher *Dispatcher) writeMarker(rule catalog.Rule, value string) {
	// reporting only, never read back for gating: a failed write must not
	// block the update
	if err := dispatcher.Markers.WriteMarker(markerKey(rule), value); err != nil {
		log.Printf("dispatch: failed to write audit marker for %v: %v", rule.Model, err)
	}
}

func (dispatcher *Dispatcher) execute(identity hw.Identity, rule catalog.Rule, state *State, outcome *Outcome) error {
	choice, err := dispatcher.Prompter.Confirm(rule.Prompt, time.Duration(rule.PromptTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("Failed to confirm update for %v: %v", rule.Model, err)
	}

	if choice != Proceed {
		log.Printf("dispatch: update for %v not confirmed (%v), aborting run", rule.Model, choice)

		outcome.CancelledByUser = true

		return ErrCancelled
	}

	dispatcher.writeMarker(rule, fmt.Sprintf("applied package=%v firmware=%v minimum=%v at=%v",
		rule.Package, identity.FirmwareVersion, rule.MinimumVersion, time.Now().Format(time.RFC3339)))

	if !rule.SuspendEncryption {

	} else if err := dispatcher.Precautions.Suspend(rule.EncryptionVolume, SuspendRebootCount); err != nil {
		// best-effort precaution: warn and proceed per deployment policy
		log.Printf("dispatch: failed to suspend encryption on %v: %v", rule.EncryptionVolume, err)
	}

	log.Printf("dispatch: running %v %v in %v...", rule.Package, rule.Args, rule.WorkingDir)

	if exitCode, err := dispatcher.Runner.Run(rule.Package, rule.Args, rule.WorkingDir); err != nil {
		return fmt.Errorf("Failed to run update package %v: %v", rule.Package, err)
	} else {
		// vendor exit codes are opaque: record, do not interpret
		log.Printf("dispatch: update package %v exited with status %v", rule.Package, exitCode)

		outcome.ExitCode = &exitCode

		dispatcher.writeMarker(rule, fmt.Sprintf("applied package=%v firmware=%v minimum=%v exit-status=%v at=%v",
			rule.Package, identity.FirmwareVersion, rule.MinimumVersion, exitCode, time.Now().Format(time.RFC3339)))
	}

	outcome.RanUpdate = true
	state.UpdateExecuted = true

	return nil
}

// Dispatch evaluates the catalog against the machine identity in order and
// executes at most one matching rule: confirmation, precautions, vendor
// flasher, audit marking. Evaluation is strictly sequential; a firmware flash
// must never run twice in one session.
func (dispatcher *Dispatcher) Dispatch(identity hw.Identity, rules []catalog.Rule) (State, Outcome, error) {
	var state State
	var outcome Outcome

	for _, rule := range rules {
		if state.UpdateExecuted {
			break
		}

		if !matches(identity, rule) {
			continue
		}

		log.Printf("dispatch: rule %v matches %v", rule, identity)

		if err := dispatcher.execute(identity, rule, &state, &outcome); err != nil {
			return state, outcome, err
		}
	}

	if !state.UpdateExecuted {
		log.Printf("dispatch: no applicable update for %v", identity)
	}

	return state, outcome, nil
}
