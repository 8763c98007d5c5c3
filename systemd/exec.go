package systemd

import (
	"fmt"
	"log"

	"github.com/coreos/go-systemd/dbus"
	godbus "github.com/godbus/dbus"
)

type ExecOptions struct {
	Cmd        []string
	Env        []string
	WorkingDir string
}

func propEnvironment(envs []string) dbus.Property {
	return dbus.Property{
		Name:  "Environment",
		Value: godbus.MakeVariant(envs),
	}
}

func propWorkingDirectory(dir string) dbus.Property {
	return dbus.Property{
		Name:  "WorkingDirectory",
		Value: godbus.MakeVariant(dir),
	}
}

type systemdExec struct {
	unit      string
	options   ExecOptions
	conn      *dbus.Conn
	journal   JournalReader
	ch        chan string
	jobStatus string
}

func (se *systemdExec) connect() error {
	if conn, err := dbus.NewSystemConnection(); err != nil {
		return fmt.Errorf("dbus.NewSystemConnection: %v", err)
	} else {
		se.conn = conn
	}

	return nil
}

// clear any existing failed unit, no-op if not loaded
func (se *systemdExec) reset() error {
	log.Printf("systemd/exec %v: reset", se.unit)

	if err := se.conn.ResetFailedUnit(se.unit); err == nil {

	} else if dbusErr, ok := err.(godbus.Error); ok && dbusErr.Name == "org.freedesktop.systemd1.NoSuchUnit" {
		return nil
	} else {
		return fmt.Errorf("dbus.ResetFailedUnit %v: %v", se.unit, err)
	}

	return nil
}

// fails if unit is already running
func (se *systemdExec) start() error {
	var properties = []dbus.Property{
		dbus.PropType("oneshot"),
		dbus.PropExecStart(se.options.Cmd, false), // XXX: bool flag meaning is inverted?
	}

	if len(se.options.Env) > 0 {
		properties = append(properties, propEnvironment(se.options.Env))
	}
	if se.options.WorkingDir != "" {
		properties = append(properties, propWorkingDirectory(se.options.WorkingDir))
	}

	log.Printf("systemd/exec %v: start %#v", se.unit, properties)

	// fail => error if unit already exists because it's still running
	if _, err := se.conn.StartTransientUnit(se.unit, "fail", properties, se.ch); err != nil {
		return fmt.Errorf("dbus.StartTransientUnit %v: %v", se.unit, err)
	}

	return nil
}

func (se *systemdExec) getServiceProperty(propertyName string) (interface{}, error) {
	if property, err := se.conn.GetUnitTypeProperty(se.unit, "Service", propertyName); err != nil {
		return nil, fmt.Errorf("dbus.GetUnitTypeProperty %v: %v", propertyName, err)
	} else {
		return property.Value.Value(), nil
	}
}

func (se *systemdExec) getServiceTimestamp(propertyName string) (uint64, error) {
	if value, err := se.getServiceProperty(propertyName); err != nil {
		return 0, err
	} else if ts, ok := value.(uint64); !ok {
		return 0, fmt.Errorf("Invalid property value for %v: %#v", propertyName, value)
	} else {
		return ts, nil
	}
}

// exit status of the unit's main process, valid once the job completed
func (se *systemdExec) getExitStatus() (int, error) {
	if value, err := se.getServiceProperty("ExecMainStatus"); err != nil {
		return 0, err
	} else if status, ok := value.(int32); !ok {
		return 0, fmt.Errorf("Invalid property value for ExecMainStatus: %#v", value)
	} else {
		return int(status), nil
	}
}

// open journal for reading, if available
func (se *systemdExec) openJournal() error {
	// XXX: returns 0 without error if unit does not exist?
	if startTimestamp, err := se.getServiceTimestamp("ExecMainStartTimestamp"); err != nil {
		return err
	} else if journal, err := OpenJournal(JournalOptions{Unit: se.unit, StartTimestamp: startTimestamp}); err != nil {
		return err
	} else {
		se.journal = journal
	}

	return nil
}

func (se *systemdExec) readJournal() error {
	if se.journal == nil {
		return nil
	}

	if lines, err := se.journal.Read(); err != nil {
		return err
	} else {
		for _, line := range lines {
			log.Printf("systemd/exec %v: journal: %v", se.unit, line)
		}
	}

	return nil
}

func (se *systemdExec) wait() error {
	log.Printf("systemd/exec %v: wait", se.unit)

	se.jobStatus = <-se.ch

	return nil
}

func (se *systemdExec) close() {
	if se.conn != nil {
		se.conn.Close()
	}

	if se.journal != nil {
		se.journal.Close()
	}
}

// Exec runs the given command synchronously as a transient systemd unit,
// blocking until it exits. The returned exit status is the unit main
// process's, reported whether or not the unit succeeded; the error return is
// reserved for failures to launch or observe the unit.
func Exec(name string, options ExecOptions) (int, error) {
	var se = systemdExec{
		unit:    fmt.Sprintf("%v.service", name),
		options: options,
		ch:      make(chan string),
	}
	defer se.close()

	log.Printf("systemd/exec %v: %#v", se.unit, options)

	if err := se.connect(); err != nil {
		return 0, err
	}

	if err := se.reset(); err != nil {
		return 0, err
	}

	if err := se.start(); err != nil {
		return 0, err
	}

	// XXX: race if unit exits with success?
	if err := se.openJournal(); err != nil {
		log.Printf("systemd/exec %v: journal unavailable: %v", se.unit, err)
	}

	if err := se.wait(); err != nil {
		return 0, err
	}

	if err := se.readJournal(); err != nil {
		log.Printf("systemd/exec %v: journal read failed: %v", se.unit, err)
	}

	exitStatus, err := se.getExitStatus()
	if err != nil {
		return 0, err
	}

	log.Printf("systemd/exec %v: %v (exit status %v)", se.unit, se.jobStatus, exitStatus)

	return exitStatus, nil
}
