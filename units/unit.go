// Package units implements the closed catalogue of pure hardware
// building blocks the HCL net wires together: instruction memory,
// register file, ALU, data memory, condition codes, the PC latch and
// generic pipeline stage registers.
package units

import "github.com/sarchlab/y86sim/signal"

// Inputs and Outputs are named ports on a Unit.
type Inputs map[string]signal.Value
type Outputs map[string]signal.Value

// Unit is a pure combinational hardware block: its output depends
// only on its input ports and, for Stateful units, the state observed
// before the current cycle's Commit.
type Unit interface {
	Name() string
	Eval(in Inputs) (Outputs, error)
}

// Stateful units additionally hold state across cycles. Commit is
// invoked exactly once per cycle, by the evaluator, after every
// combinational signal for the cycle has been computed.
type Stateful interface {
	Unit
	Commit(next Outputs) error
}

// PortLister is implemented by units that can enumerate the input
// ports Compile must find exactly one wire for. Units without a fixed
// input arity (none in this catalogue) may leave it unimplemented.
type PortLister interface {
	InputPorts() []string
}
