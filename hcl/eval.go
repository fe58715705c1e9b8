package hcl

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

// CycleResult carries every signal and unit output computed during
// one call to Eval, plus the per-unit commit proposals gathered from
// the wiring.
type CycleResult struct {
	Signals map[string]signal.Value
	Ports   map[string]units.Outputs
	// Commits holds, for each Stateful unit named in the program's
	// wiring, the Outputs to pass to that unit's Commit.
	Commits map[string]units.Outputs
}

// Eval runs one cycle against preCycle (every Stateful unit's outputs
// as observed before this cycle began). It evaluates named signals
// and combinational units in the order Compile computed, memoizing
// each unit's outputs so a unit read from more than one signal only
// runs once, then collects the wires feeding each Stateful unit's
// commit-relevant inputs into per-unit Commit proposals. It does not
// call Commit itself — the engine package owns the commit boundary.
func (cp *CompiledProgram) Eval(preCycle map[string]units.Outputs) (*CycleResult, error) {
	ctx := &Context{
		Signals: make(map[string]signal.Value, len(cp.order)),
		Ports:   make(map[string]units.Outputs, len(cp.unitSet)),
	}
	for name, out := range preCycle {
		ctx.Ports[name] = out
	}

	// Zero-input units (stage registers, the PC latch, the
	// condition-code register) take no per-cycle inputs; they either
	// arrive pre-populated in preCycle or are evaluated here so every
	// later lookup finds them regardless of program order.
	combUnits := combinationalUnits(cp.unitSet)
	for name, u := range cp.unitSet {
		if combUnits[name] {
			continue
		}
		if _, ok := ctx.Ports[name]; ok {
			continue
		}
		out, err := u.Eval(units.Inputs{})
		if err != nil {
			return nil, errors.Wrapf(err, "hcl: unit %q eval failed", name)
		}
		ctx.Ports[name] = out
	}

	for _, n := range cp.order {
		if n.def != nil {
			v, err := n.def.Expr.Eval(ctx)
			if err != nil {
				return nil, errors.Wrapf(err, "hcl: evaluating signal %q", n.def.Name)
			}
			ctx.Signals[n.def.Name] = v
			continue
		}

		u := cp.unitSet[n.unitName]
		in := make(units.Inputs, len(n.inputs))
		for _, w := range n.inputs {
			v, err := ctx.resolve(w.From)
			if err != nil {
				return nil, errors.Wrapf(err, "hcl: evaluating input %s.%s", n.unitName, w.Input)
			}
			in[w.Input] = v
		}
		out, err := u.Eval(in)
		if err != nil {
			return nil, errors.Wrapf(err, "hcl: unit %q eval failed", n.unitName)
		}
		ctx.Ports[n.unitName] = out
	}

	commits := make(map[string]units.Outputs, len(cp.commitWires))
	for unit, wires := range cp.commitWires {
		out := make(units.Outputs, len(wires))
		for _, w := range wires {
			v, err := ctx.resolve(w.From)
			if err != nil {
				return nil, errors.Wrapf(err, "hcl: evaluating commit input %s.%s", unit, w.Input)
			}
			out[w.Input] = v
		}
		commits[unit] = out
	}

	return &CycleResult{Signals: ctx.Signals, Ports: ctx.Ports, Commits: commits}, nil
}
