package hw

import "fmt"

// Identity is the machine identity the update catalog is matched against.
// It is read once per run and immutable for the run's lifetime.
type Identity struct {
	Vendor          string
	Model           string
	FirmwareVersion string
}

func (identity Identity) String() string {
	return fmt.Sprintf("%v %v (firmware %v)", identity.Vendor, identity.Model, identity.FirmwareVersion)
}

type Prober interface {
	Probe() (Identity, bool)
	String() string
}
