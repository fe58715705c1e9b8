// Package runconfig loads the optional YAML machine-descriptor
// overlay the CLI accepts: a cycle limit and a set of initial
// register values applied before the first cycle. It follows the
// same load-into-defaults shape the teacher's timing/latency package
// uses for its JSON config, adapted to YAML since the exported trace
// format is YAML-capable too.
package runconfig

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/sarchlab/y86sim/units"
)

// DefaultCycleLimit bounds a run when neither a config file nor an
// explicit limit is given, guarding against a runaway program.
const DefaultCycleLimit = 1_000_000

// Config is the optional overlay applied to a fresh Machine before
// its first Tick.
type Config struct {
	CycleLimit uint64            `yaml:"cycle_limit"`
	Registers  map[string]uint64 `yaml:"registers"`
}

// Default returns a Config with no register overrides and the
// default cycle limit.
func Default() *Config {
	return &Config{CycleLimit: DefaultCycleLimit}
}

// Load reads a Config from a YAML file, starting from Default() so a
// file only needs to name the fields it overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runconfig: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("runconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyRegisters seeds rf with every named register override, failing
// on an unrecognized register name.
func (c *Config) ApplyRegisters(rf *units.RegisterFileUnit) error {
	for name, v := range c.Registers {
		id, ok := units.RegisterID(name)
		if !ok {
			return fmt.Errorf("runconfig: unknown register %q", name)
		}
		rf.Set(id, v)
	}
	return nil
}
