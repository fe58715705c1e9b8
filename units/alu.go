package units

import "github.com/sarchlab/y86sim/signal"

// ALUUnit performs the four Y86-64 OPQ operations and produces the
// condition-code triple for the subtract-like comparison the pipeline
// needs for conditional jumps/moves. This unit always computes the
// triple and leaves gating "was this a flag-setting op" to the caller
// (set_cc, asserted for every OPQ instruction), matching how the
// reference ALU separates the arithmetic result from NZCV bookkeeping.
type ALUUnit struct{}

// NewALUUnit creates an ALUUnit. It carries no state.
func NewALUUnit() *ALUUnit { return &ALUUnit{} }

// Name implements Unit.
func (u *ALUUnit) Name() string { return "alu" }

// InputPorts implements PortLister.
func (u *ALUUnit) InputPorts() []string { return []string{"aluA", "aluB", "alufun"} }

// Eval implements Unit. Input ports: "aluA", "aluB" (Word), "alufun"
// (Byte). Output ports: "valE" (Word), "cc_next" (CC).
func (u *ALUUnit) Eval(in Inputs) (Outputs, error) {
	a, err := in["aluA"].AsWord()
	if err != nil {
		return nil, err
	}
	b, err := in["aluB"].AsWord()
	if err != nil {
		return nil, err
	}
	fn, err := in["alufun"].AsByte()
	if err != nil {
		return nil, err
	}

	var result uint64
	switch fn {
	case ALUAdd:
		result = a + b
	case ALUSub:
		result = b - a
	case ALUAnd:
		result = a & b
	case ALUXor:
		result = a ^ b
	default:
		result = a + b
	}

	cc := signal.CC{
		ZF: result == 0,
		SF: int64(result) < 0,
		OF: overflow(fn, a, b, result),
	}

	return Outputs{
		"valE":    signal.Word(result),
		"cc_next": signal.Cond(cc),
	}, nil
}

func overflow(fn uint8, a, b, result uint64) bool {
	sa, sb, sr := int64(a) < 0, int64(b) < 0, int64(result) < 0
	switch fn {
	case ALUAdd:
		return sa == sb && sr != sa
	case ALUSub:
		// b - a
		return sb != sa && sr != sb
	default:
		return false
	}
}
