package pipeline

import "github.com/sarchlab/y86sim/units"

// Field name sets for the four inter-stage pipeline registers. Every
// StageRegisterUnit also exposes/accepts a "status" port, handled by
// units.StageRegisterUnit itself and not listed here.
var (
	DFields = []string{"icode", "ifun", "rA", "rB", "valC", "valP"}
	EFields = []string{"icode", "ifun", "valC", "valP", "valA", "valB", "dstE", "dstM", "srcA", "srcB"}
	MFields = []string{"icode", "cnd", "valE", "valA", "dstE", "dstM"}
	WFields = []string{"icode", "valE", "valM", "dstE", "dstM"}
)

// NewRegisters builds the four fresh pipeline latches pipe_std wires
// between its five combinational stages.
func NewRegisters() map[string]*units.StageRegisterUnit {
	return map[string]*units.StageRegisterUnit{
		"D": units.NewStageRegisterUnit("D", DFields),
		"E": units.NewStageRegisterUnit("E", EFields),
		"M": units.NewStageRegisterUnit("M", MFields),
		"W": units.NewStageRegisterUnit("W", WFields),
	}
}
