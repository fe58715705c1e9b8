package units

import "github.com/sarchlab/y86sim/signal"

// PCUnit is the program counter latch. Each architecture wires its own
// "pc_next" signal, defined by a different expression, into the
// "pc_next" commit input (see the arch package); the unit itself is
// identical in every variant.
type PCUnit struct {
	pc uint64
}

// NewPCUnit creates a PCUnit initialized to start.
func NewPCUnit(start uint64) *PCUnit {
	return &PCUnit{pc: start}
}

// Name implements Unit.
func (u *PCUnit) Name() string { return "pc" }

// Eval implements Unit. Takes no inputs. Output port: "pc" (Word).
func (u *PCUnit) Eval(in Inputs) (Outputs, error) {
	return Outputs{"pc": signal.Word(u.pc)}, nil
}

// Commit implements Stateful. Input ports: "pc_next" (Word), "stall"
// (Bool, optional — sequential architectures that never stall fetch
// may leave it unwired, in which case it defaults to not stalled).
func (u *PCUnit) Commit(next Outputs) error {
	if s, ok := next["stall"]; ok {
		stall, err := s.AsBool()
		if err != nil {
			return err
		}
		if stall {
			return nil
		}
	}
	v, err := next["pc_next"].AsWord()
	if err != nil {
		return err
	}
	u.pc = v
	return nil
}

// Peek returns the current PC for trace export.
func (u *PCUnit) Peek() uint64 { return u.pc }
