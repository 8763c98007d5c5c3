package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adamleinss/firmware-host-updates/systemd"
)

// finalizeReboot runs the deferred reboot countdown after an update executed.
// The window is cancellable (SIGINT/SIGTERM) until the final lock phase, then
// the reboot is forced: a flashed machine must not keep running on the old
// firmware indefinitely.
func finalizeReboot(options Options) error {
	if !options.Reboot {
		log.Printf("Update executed, reboot required (left to operator)")

		return nil
	}

	var window = options.RebootWindow
	var cancellable = window - RebootFinalLock

	if cancellable < 0 {
		cancellable = 0
	}

	if err := systemd.ScheduleReboot(window); err != nil {
		log.Printf("Failed to schedule reboot notice: %v", err)
	}

	log.Printf("Update executed, rebooting in %v (cancellable via SIGINT/SIGTERM for %v)...", window, cancellable)

	var signals = make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signals:
		signal.Stop(signals)

		log.Printf("Reboot countdown cancelled by %v", sig)

		if err := systemd.CancelScheduledReboot(); err != nil {
			log.Printf("Failed to cancel scheduled reboot: %v", err)
		}

		return nil
	case <-time.After(cancellable):
	}

	// final phase: no longer cancellable
	signal.Stop(signals)

	log.Printf("Reboot in %v, no longer cancellable", RebootFinalLock)

	time.Sleep(RebootFinalLock)

	log.Printf("Rebooting host...")

	return systemd.Reboot()
}
