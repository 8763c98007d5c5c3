package systemd

import (
	"fmt"
	"time"

	"github.com/coreos/go-systemd/login1"
	godbus "github.com/godbus/dbus"
)

// Reboot restarts the machine immediately via logind.
func Reboot() error {
	conn, err := login1.New()

	if err != nil {
		return fmt.Errorf("login1.New: %v", err)
	} else {
		defer conn.Close()
	}

	// XXX: WTF... no error return?
	conn.Reboot(false)

	return nil
}

func loginManager() (godbus.BusObject, error) {
	if conn, err := godbus.SystemBus(); err != nil {
		return nil, fmt.Errorf("dbus.SystemBus: %v", err)
	} else {
		return conn.Object("org.freedesktop.login1", godbus.ObjectPath("/org/freedesktop/login1")), nil
	}
}

// ScheduleReboot asks logind to reboot after the given delay. logind shows
// the pending shutdown to logged-in users via wall messages.
func ScheduleReboot(delay time.Duration) error {
	object, err := loginManager()
	if err != nil {
		return err
	}

	var usec = uint64(time.Now().Add(delay).UnixNano() / 1000)

	if call := object.Call("org.freedesktop.login1.Manager.ScheduleShutdown", 0, "reboot", usec); call.Err != nil {
		return fmt.Errorf("login1.ScheduleShutdown: %v", call.Err)
	}

	return nil
}

// CancelScheduledReboot cancels a reboot scheduled with ScheduleReboot.
func CancelScheduledReboot() error {
	object, err := loginManager()
	if err != nil {
		return err
	}

	if call := object.Call("org.freedesktop.login1.Manager.CancelScheduledShutdown", 0); call.Err != nil {
		return fmt.Errorf("login1.CancelScheduledShutdown: %v", call.Err)
	}

	return nil
}
