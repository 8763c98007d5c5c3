package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// sessionLock serializes flash sessions on the host. Firmware flashing is an
// exclusive-access operation on the flash controller; two concurrent
// invocations must never both get to run a vendor package.
type sessionLock struct {
	path string
	file *os.File
}

func acquireSessionLock(path string) (*sessionLock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("Failed to open lock file %v: %v", path, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()

		return nil, fmt.Errorf("Another update session holds %v: %v", path, err)
	}

	return &sessionLock{path: path, file: file}, nil
}

func (lock *sessionLock) Release() error {
	if err := unix.Flock(int(lock.file.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("Failed to unlock %v: %v", lock.path, err)
	}

	return lock.file.Close()
}
