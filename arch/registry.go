// Package arch is the static registry binding an architecture name to
// the unit set and compiled HCL program that implement it.
package arch

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/y86sim/engine"
	"github.com/sarchlab/y86sim/hcl"
	"github.com/sarchlab/y86sim/units"
)

// Entry is one registered architecture: its unit catalogue, its HCL
// program, and the name of the signal reporting per-cycle retirement
// status.
type Entry struct {
	Units        map[string]units.Unit
	Program      hcl.Program
	StatusSignal string
}

// Builder constructs a fresh Entry for one architecture instance. A
// fresh set of units is built per call so multiple Machines never
// share mutable state.
type Builder func(mem *units.Memory, startPC uint64) Entry

var registry = map[string]Builder{}

// Register adds an architecture under name. Re-registering a name
// overwrites the previous builder, matching how the reference
// registries in this codebase's teacher favor overwrite semantics for
// composability during tests.
func Register(name string, b Builder) {
	registry[name] = b
}

// Names returns every registered architecture name.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

// Build compiles and instantiates the named architecture over a fresh
// memory image, returning a ready-to-run Machine.
func Build(name string, mem *units.Memory, startPC uint64) (*engine.Machine, error) {
	b, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("arch: unknown architecture %q", name)
	}
	e := b(mem, startPC)
	prog, err := hcl.Compile(e.Program, e.Units)
	if err != nil {
		return nil, errors.Wrapf(err, "arch: compiling %q", name)
	}
	return engine.NewMachine(e.Units, prog, e.StatusSignal), nil
}

func init() {
	Register("seq_std", buildSeqStd)
	Register("seq_plus_std", buildSeqPlusStd)
	Register("pipe_std", buildPipeStd)
}
