package units

import (
	"strings"

	"github.com/sarchlab/y86sim/signal"
)

// RegisterFileUnit is the 15-entry architectural register file.
// Reads are combinational against the pre-cycle contents; writes are
// posted through Commit at the cycle boundary. Register 15 is the
// "no register" sentinel: it always reads as 0 and Commit silently
// drops writes to it, generalizing the XZR handling in the reference
// register file to Y86-64's sentinel index.
type RegisterFileUnit struct {
	regs [15]uint64
}

// NewRegisterFileUnit creates a zeroed register file.
func NewRegisterFileUnit() *RegisterFileUnit {
	return &RegisterFileUnit{}
}

// Name implements Unit.
func (u *RegisterFileUnit) Name() string { return "regfile" }

// InputPorts implements PortLister for the combinational read side.
// The Commit-side inputs (dstE/dstM/valE/valM) are wired the same way
// but routed to Commit instead (see hcl's splitWires); Compile does not
// check that they are wired.
func (u *RegisterFileUnit) InputPorts() []string { return []string{"srcA", "srcB"} }

// Eval implements Unit. Input ports: "srcA", "srcB" (RegID). Output
// ports: "valA", "valB" (Word).
func (u *RegisterFileUnit) Eval(in Inputs) (Outputs, error) {
	srcA, err := in["srcA"].AsReg()
	if err != nil {
		return nil, err
	}
	srcB, err := in["srcB"].AsReg()
	if err != nil {
		return nil, err
	}
	return Outputs{
		"valA": signal.Word(u.read(srcA)),
		"valB": signal.Word(u.read(srcB)),
	}, nil
}

func (u *RegisterFileUnit) read(id signal.RegID) uint64 {
	if !id.Valid() {
		return 0
	}
	return u.regs[id]
}

// Commit implements Stateful. Input ports: "dstE", "dstM" (RegID),
// "valE", "valM" (Word). Writes to the sentinel register are dropped.
func (u *RegisterFileUnit) Commit(next Outputs) error {
	if dstE, ok := next["dstE"]; ok {
		id, err := dstE.AsReg()
		if err != nil {
			return err
		}
		if id.Valid() {
			v, err := next["valE"].AsWord()
			if err != nil {
				return err
			}
			u.regs[id] = v
		}
	}
	if dstM, ok := next["dstM"]; ok {
		id, err := dstM.AsReg()
		if err != nil {
			return err
		}
		if id.Valid() {
			v, err := next["valM"].AsWord()
			if err != nil {
				return err
			}
			u.regs[id] = v
		}
	}
	return nil
}

// Peek returns a register's current architectural value without going
// through the port interface, for trace export.
func (u *RegisterFileUnit) Peek(id signal.RegID) uint64 {
	return u.read(id)
}

// Set writes a register directly, bypassing Commit. Used to seed
// initial architectural state (e.g. a config-file register overlay)
// before a Machine's first Tick; never called mid-run.
func (u *RegisterFileUnit) Set(id signal.RegID, v uint64) {
	if id.Valid() {
		u.regs[id] = v
	}
}

// RegisterNames maps Y86-64 register IDs 0-14 to their conventional
// assembly names, in index order.
var RegisterNames = []string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14",
}

// RegisterID looks up a register by its conventional name (with or
// without a leading '%'), returning false if name is not recognized.
func RegisterID(name string) (signal.RegID, bool) {
	name = strings.TrimPrefix(name, "%")
	for i, n := range RegisterNames {
		if n == name {
			return signal.RegID(i), true
		}
	}
	return 0, false
}
