// Package trace captures per-cycle machine state for human and
// machine consumption: a plain-text columnar dump for interactive use,
// and a JSON/YAML export for tooling that wants to diff or replay a
// run.
package trace

import (
	"github.com/sarchlab/y86sim/engine"
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

// stageRegisters lists the pipeline latches a pipelined architecture
// wires up. seq_std and seq_plus_std wire none of these into their
// unit sets, so Capture simply finds nothing to report for them.
var stageRegisters = []string{"D", "E", "M", "W"}

// StageSnapshot is the pre-cycle contents of one pipeline latch.
type StageSnapshot struct {
	Status signal.Status            `json:"status" yaml:"status"`
	Fields map[string]signal.Value  `json:"fields" yaml:"fields"`
}

// MemWrite records one committed data-memory write.
type MemWrite struct {
	Addr  uint64 `json:"addr" yaml:"addr"`
	Value uint64 `json:"value" yaml:"value"`
}

// Snapshot is a single cycle's worth of observable machine state.
type Snapshot struct {
	Cycle      uint64                   `json:"cycle" yaml:"cycle"`
	Registers  map[string]uint64        `json:"registers" yaml:"registers"`
	CC         signal.CC                `json:"cc" yaml:"cc"`
	Signals    map[string]signal.Value  `json:"signals" yaml:"signals"`
	Stages     map[string]StageSnapshot `json:"stages,omitempty" yaml:"stages,omitempty"`
	MemWrites  []MemWrite               `json:"mem_writes,omitempty" yaml:"mem_writes,omitempty"`
	Halted     bool                     `json:"halted" yaml:"halted"`
	Status     signal.Status            `json:"status" yaml:"status"`
}

// Capture reads every unit's current architectural state off m plus
// the signals computed by its most recent Tick. It never mutates m.
func Capture(m *engine.Machine) *Snapshot {
	snap := &Snapshot{
		Cycle:     m.Cycle(),
		Registers: make(map[string]uint64, len(units.RegisterNames)+1),
		Signals:   make(map[string]signal.Value),
		Halted:    m.Halted(),
	}

	if rf, ok := m.Units["regfile"].(*units.RegisterFileUnit); ok {
		for id, name := range units.RegisterNames {
			snap.Registers[name] = rf.Peek(signal.RegID(id))
		}
	}
	if pc, ok := m.Units["pc"].(*units.PCUnit); ok {
		snap.Registers["pc"] = pc.Peek()
	}
	if cc, ok := m.Units["cc"].(*units.ConditionCodeUnit); ok {
		snap.CC = cc.Peek()
	}

	for _, name := range stageRegisters {
		sr, ok := m.Units[name].(*units.StageRegisterUnit)
		if !ok {
			continue
		}
		if snap.Stages == nil {
			snap.Stages = make(map[string]StageSnapshot, len(stageRegisters))
		}
		snap.Stages[name] = StageSnapshot{
			Status: sr.Status(),
			Fields: sr.Fields(),
		}
	}

	if res := m.LastResult(); res != nil {
		for k, v := range res.Signals {
			snap.Signals[k] = v
		}
		if m.WritebackStatusSignal != "" {
			if v, ok := res.Signals[m.WritebackStatusSignal]; ok {
				if st, err := v.AsStatus(); err == nil {
					snap.Status = st
				}
			}
		}
		if w := memWriteFrom(res.Signals); w != nil {
			snap.MemWrites = append(snap.MemWrites, *w)
		}
	}

	return snap
}

// memWriteFrom reports the write DataMemoryUnit committed this cycle,
// derived from the same "mem_write"/"mem_addr"/"mem_data_in" signals
// wired into its commit inputs, or nil if no write was committed.
func memWriteFrom(signals map[string]signal.Value) *MemWrite {
	write, ok := signals["mem_write"]
	if !ok {
		return nil
	}
	if b, err := write.AsBool(); err != nil || !b {
		return nil
	}
	addr, ok := signals["mem_addr"]
	if !ok {
		return nil
	}
	data, ok := signals["mem_data_in"]
	if !ok {
		return nil
	}
	a, err := addr.AsWord()
	if err != nil {
		return nil
	}
	v, err := data.AsWord()
	if err != nil {
		return nil
	}
	return &MemWrite{Addr: a, Value: v}
}
