package dmi

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamleinss/firmware-host-updates/hw"
)

const DefaultRoot = "/sys/class/dmi/id"

type Info struct {
	SysVendor   string
	ProductName string
	BiosVersion string
}

func readField(root string, name string) (string, error) {
	if data, err := os.ReadFile(filepath.Join(root, name)); err != nil {
		return "", err
	} else {
		return strings.TrimSpace(string(data)), nil
	}
}

func (info *Info) read(root string) error {
	var fields = []struct {
		name string
		dst  *string
	}{
		{"sys_vendor", &info.SysVendor},
		{"product_name", &info.ProductName},
		{"bios_version", &info.BiosVersion},
	}

	for _, field := range fields {
		if value, err := readField(root, field.name); err != nil {
			return fmt.Errorf("Invalid DMI field %v: %v", field.name, err)
		} else {
			*field.dst = value
		}
	}

	return nil
}

func Read(root string) (Info, error) {
	var info Info

	if root == "" {
		root = DefaultRoot
	}

	if err := info.read(root); err != nil {
		return info, err
	}

	return info, nil
}

// Prober reads the machine identity from the kernel's DMI sysfs attributes.
// Fallback for hosts where hostnamed is unavailable or too old.
type Prober struct {
	Root string
}

func (prober *Prober) String() string {
	return "dmi"
}

func (prober *Prober) Probe() (hw.Identity, bool) {
	if info, err := Read(prober.Root); err != nil {
		log.Printf("hw/dmi probe failed: %v", err)

		return hw.Identity{}, false
	} else if info.ProductName == "" || info.BiosVersion == "" {
		log.Printf("hw/dmi probe incomplete: %#v", info)

		return hw.Identity{}, false
	} else {
		var identity = hw.Identity{
			Vendor:          info.SysVendor,
			Model:           info.ProductName,
			FirmwareVersion: info.BiosVersion,
		}

		log.Printf("hw/dmi probe success: %#v", identity)

		return identity, true
	}
}
