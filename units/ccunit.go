package units

import "github.com/sarchlab/y86sim/signal"

// ConditionCodeUnit is the ZF/SF/OF register. Its pre-cycle value is
// what conditional jumps and moves read this cycle; Commit latches
// the new triple only when set_cc is asserted (the architectures
// assert it for every OPQ instruction).
type ConditionCodeUnit struct {
	cc signal.CC
}

// NewConditionCodeUnit creates a ConditionCodeUnit with all flags clear.
func NewConditionCodeUnit() *ConditionCodeUnit { return &ConditionCodeUnit{} }

// Name implements Unit.
func (u *ConditionCodeUnit) Name() string { return "cc" }

// Eval implements Unit. Takes no inputs. Output port: "cc" (CC).
func (u *ConditionCodeUnit) Eval(in Inputs) (Outputs, error) {
	return Outputs{"cc": signal.Cond(u.cc)}, nil
}

// Commit implements Stateful. Input ports: "cc_next" (CC), "set_cc" (Bool).
func (u *ConditionCodeUnit) Commit(next Outputs) error {
	set, err := next["set_cc"].AsBool()
	if err != nil {
		return err
	}
	if !set {
		return nil
	}
	cc, err := next["cc_next"].AsCC()
	if err != nil {
		return err
	}
	u.cc = cc
	return nil
}

// Peek returns the current condition codes for trace export.
func (u *ConditionCodeUnit) Peek() signal.CC { return u.cc }
