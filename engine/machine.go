// Package engine drives a compiled HCL program one cycle at a time
// against a fixed unit set: snapshot, evaluate, commit, advance.
package engine

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/y86sim/hcl"
	"github.com/sarchlab/y86sim/units"
)

// Machine aggregates one architecture instantiation: its unit set and
// compiled HCL program. It carries no process-wide state — every
// Machine is an explicit value owned by its caller.
type Machine struct {
	Units   map[string]units.Unit
	Program *hcl.CompiledProgram

	// WritebackStatusSignal names the HCL signal whose Status value
	// reports the outcome of the instruction retiring this cycle.
	// Architectures wire it to whatever signal computes that status
	// (directly from decode for seq_std/seq_plus_std, from the
	// writeback stage register for pipe_std).
	WritebackStatusSignal string

	cycle    uint64
	halted   bool
	lastCycle *hcl.CycleResult
}

// NewMachine builds a Machine from a compiled program and its backing
// units.
func NewMachine(unitSet map[string]units.Unit, program *hcl.CompiledProgram, statusSignal string) *Machine {
	return &Machine{Units: unitSet, Program: program, WritebackStatusSignal: statusSignal}
}

// Cycle reports the number of Tick calls that have committed so far.
func (m *Machine) Cycle() uint64 { return m.cycle }

// Halted reports whether the machine has reached a terminal status.
func (m *Machine) Halted() bool { return m.halted }

// LastResult returns the CycleResult computed by the most recent Tick,
// for trace export. It is nil before the first Tick.
func (m *Machine) LastResult() *hcl.CycleResult { return m.lastCycle }

// Tick evaluates and commits one cycle. Once halted, Tick is a no-op
// and returns the same result as the halting cycle.
func (m *Machine) Tick() (*hcl.CycleResult, error) {
	if m.halted {
		return m.lastCycle, nil
	}

	result, err := m.Program.Eval(nil)
	if err != nil {
		return nil, errors.Wrap(err, "engine: cycle evaluation failed")
	}

	for name, commit := range result.Commits {
		u, ok := m.Units[name]
		if !ok {
			continue
		}
		sf, ok := u.(units.Stateful)
		if !ok {
			return nil, errors.Errorf("engine: commit proposed for non-stateful unit %q", name)
		}
		if err := sf.Commit(commit); err != nil {
			return nil, errors.Wrapf(err, "engine: commit to unit %q failed", name)
		}
	}

	m.cycle++
	m.lastCycle = result

	if m.WritebackStatusSignal != "" {
		if v, ok := result.Signals[m.WritebackStatusSignal]; ok {
			if st, err := v.AsStatus(); err == nil && st.Terminal() {
				m.halted = true
			}
		}
	}

	return result, nil
}

// RunResult reports the outcome of a Run call.
type RunResult struct {
	Cycles  uint64
	Halted  bool
	Runaway bool
}

// Run ticks the machine until it halts or limit cycles have elapsed,
// whichever comes first.
func (m *Machine) Run(limit uint64) (RunResult, error) {
	for m.cycle < limit {
		if m.halted {
			return RunResult{Cycles: m.cycle, Halted: true}, nil
		}
		if _, err := m.Tick(); err != nil {
			return RunResult{}, err
		}
	}
	if m.halted {
		return RunResult{Cycles: m.cycle, Halted: true}, nil
	}
	return RunResult{Cycles: m.cycle, Runaway: true}, nil
}
