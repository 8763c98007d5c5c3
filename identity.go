package main

import (
	"fmt"
	"log"

	"github.com/adamleinss/firmware-host-updates/hw"
	"github.com/adamleinss/firmware-host-updates/hw/dmi"
	"github.com/adamleinss/firmware-host-updates/hw/hostnamed"
)

// probeIdentity reads the machine identity once per run, trying probers in
// fixed order: hostnamed first, raw DMI sysfs as fallback.
func probeIdentity() (hw.Identity, error) {
	var probers = []hw.Prober{
		&hostnamed.Prober{},
		&dmi.Prober{},
	}

	for _, prober := range probers {
		if identity, ok := prober.Probe(); !ok {
			continue
		} else {
			log.Printf("Probed hardware identity via %v: %v", prober, identity)

			return identity, nil
		}
	}

	return hw.Identity{}, fmt.Errorf("No hardware identity probers matched")
}
