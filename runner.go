package main

import (
	"github.com/adamleinss/firmware-host-updates/dispatch"
	"github.com/adamleinss/firmware-host-updates/encryption"
	"github.com/adamleinss/firmware-host-updates/systemd"
)

// systemdRunner launches the vendor flasher synchronously as a transient
// systemd unit, with the working directory set to the package directory so
// the vendor tool finds its image files.
type systemdRunner struct{}

func (runner systemdRunner) Run(path string, args []string, workingDir string) (int, error) {
	return systemd.Exec("firmware-update", systemd.ExecOptions{
		Cmd:        append([]string{path}, args...),
		WorkingDir: workingDir,
	})
}

func makeRunner() dispatch.Runner {
	return systemdRunner{}
}

func makeSuspender(options Options) dispatch.Precautions {
	return &encryption.Suspender{
		Command: splitCommand(options.SuspendCommand),
	}
}
