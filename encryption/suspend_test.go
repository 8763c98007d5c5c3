package encryption

import (
	"testing"

	"github.com/adamleinss/firmware-host-updates/systemd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuspend(t *testing.T) {
	var gotCmd []string

	var suspender = Suspender{
		Command: []string{"/usr/lib/firmware-host-updates/suspend-encryption"},
		Exec: func(name string, options systemd.ExecOptions) (int, error) {
			gotCmd = options.Cmd
			return 0, nil
		},
	}

	require.NoError(t, suspender.Suspend("/dev/sda3", 1))
	assert.Equal(t, []string{"/usr/lib/firmware-host-updates/suspend-encryption", "/dev/sda3", "1"}, gotCmd)
}

func TestSuspendHelperFailure(t *testing.T) {
	var suspender = Suspender{
		Command: []string{"/usr/lib/firmware-host-updates/suspend-encryption"},
		Exec: func(name string, options systemd.ExecOptions) (int, error) {
			return 1, nil
		},
	}

	assert.Error(t, suspender.Suspend("/dev/sda3", 1))
}

func TestSuspendNoCommand(t *testing.T) {
	var suspender = Suspender{}

	assert.Error(t, suspender.Suspend("/dev/sda3", 1))
}
