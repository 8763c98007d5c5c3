package hostnamed

import (
	"log"

	"github.com/adamleinss/firmware-host-updates/hw"
	"github.com/adamleinss/firmware-host-updates/systemd"
)

// Prober reads the machine identity from systemd-hostnamed, which exposes the
// DMI hardware vendor/model and firmware version as D-Bus properties.
type Prober struct{}

func (prober *Prober) String() string {
	return "hostnamed"
}

func (prober *Prober) Probe() (hw.Identity, bool) {
	if hi, err := systemd.GetHostInfo(); err != nil {
		log.Printf("hw/hostnamed probe failed: %v", err)

		return hw.Identity{}, false
	} else if hi.HardwareModel == "" || hi.FirmwareVersion == "" {
		// older hostnamed without hardware/firmware properties
		log.Printf("hw/hostnamed probe incomplete: %#v", hi)

		return hw.Identity{}, false
	} else {
		var identity = hw.Identity{
			Vendor:          hi.HardwareVendor,
			Model:           hi.HardwareModel,
			FirmwareVersion: hi.FirmwareVersion,
		}

		log.Printf("hw/hostnamed probe success: %#v", identity)

		return identity, true
	}
}
