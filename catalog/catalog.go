package catalog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"
)

const DefaultPromptTimeout = 120 // seconds

// Rule describes one eligible firmware update for a machine model. Rules are
// evaluated in catalog order, and the dispatcher stops at the first match, so
// catalog order is the tie-break when multiple rules name the same model.
type Rule struct {
	// Model is the vendor-reported machine model identifier, matched verbatim.
	Model string `yaml:"model"`

	// MinimumVersion is the first firmware version that no longer needs this
	// update. Machines reporting a version below it qualify. Empty means the
	// rule always applies for its model.
	MinimumVersion string `yaml:"minimum_version,omitempty"`

	// Package is the path to the vendor flasher executable.
	Package string   `yaml:"package"`
	Args    []string `yaml:"args,omitempty"`

	// WorkingDir is the directory the flasher runs in; vendor tools resolve
	// their image files relative to it. Defaults to the package directory.
	WorkingDir string `yaml:"working_dir,omitempty"`

	// SuspendEncryption requests a bounded disk-encryption suspension before
	// the flash, so the firmware change does not trip a recovery-key prompt.
	SuspendEncryption bool   `yaml:"suspend_encryption,omitempty"`
	EncryptionVolume  string `yaml:"encryption_volume,omitempty"`

	Prompt        string `yaml:"prompt"`
	PromptTimeout int    `yaml:"prompt_timeout,omitempty"` // seconds
}

func (rule Rule) HasMinimumVersion() bool {
	return rule.MinimumVersion != ""
}

func (rule Rule) String() string {
	if rule.HasMinimumVersion() {
		return fmt.Sprintf("%v < %v", rule.Model, rule.MinimumVersion)
	}

	return fmt.Sprintf("%v (unconditional)", rule.Model)
}

type Catalog struct {
	Rules []Rule `yaml:"rules"`
}

func (catalog *Catalog) validate() error {
	var seen = make(map[string]bool)

	for i, rule := range catalog.Rules {
		if rule.Model == "" {
			return fmt.Errorf("Rule %v: missing model", i)
		}
		if rule.Package == "" {
			return fmt.Errorf("Rule %v (%v): missing package", i, rule.Model)
		}
		if rule.PromptTimeout < 0 {
			return fmt.Errorf("Rule %v (%v): invalid prompt_timeout=%v", i, rule.Model, rule.PromptTimeout)
		}

		if rule.PromptTimeout == 0 {
			catalog.Rules[i].PromptTimeout = DefaultPromptTimeout
		}
		if rule.WorkingDir == "" {
			catalog.Rules[i].WorkingDir = filepath.Dir(rule.Package)
		}

		// first match wins, but duplicate models usually mean a catalog mistake
		if seen[rule.Model] {
			log.Printf("catalog: multiple rules for model %v, first match wins", rule.Model)
		}
		seen[rule.Model] = true
	}

	return nil
}

// Load reads the rule catalog once at startup. The returned catalog is
// immutable for the lifetime of the run.
func Load(path string) (Catalog, error) {
	var catalog Catalog

	if data, err := os.ReadFile(path); err != nil {
		return catalog, fmt.Errorf("Failed to read catalog %v: %v", path, err)
	} else if err := yaml.UnmarshalStrict(data, &catalog); err != nil {
		return catalog, fmt.Errorf("Failed to parse catalog %v: %v", path, err)
	} else if err := catalog.validate(); err != nil {
		return catalog, fmt.Errorf("Invalid catalog %v: %v", path, err)
	}

	return catalog, nil
}
