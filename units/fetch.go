package units

import "github.com/sarchlab/y86sim/signal"

// InstructionMemoryUnit fetches and decodes the instruction at pc. It
// generalizes the fetch responsibility from the reference emulator's
// combined fetch/decode style into the byte/nibble-oriented Y86-64
// encoding: icode/ifun occupy the first byte, an optional register
// byte follows, and an optional 8-byte immediate follows that.
type InstructionMemoryUnit struct {
	mem *Memory
}

// NewInstructionMemoryUnit creates a fetch unit reading from mem.
func NewInstructionMemoryUnit(mem *Memory) *InstructionMemoryUnit {
	return &InstructionMemoryUnit{mem: mem}
}

// Name implements Unit.
func (u *InstructionMemoryUnit) Name() string { return "imem" }

// InputPorts implements PortLister.
func (u *InstructionMemoryUnit) InputPorts() []string { return []string{"pc"} }

// Eval implements Unit. Input port: "pc" (Word). Output ports:
// "icode" (Byte), "ifun" (Byte), "rA" (RegID), "rB" (RegID), "valC"
// (Word), "valP" (Word), "imem_bounds_error" (Bool, set when pc or a
// trailing field runs off the end of memory — reported as StatusAdr),
// "imem_ins_error" (Bool, set when the fetched icode is not one of
// the recognized icodes, or its ifun is not one defined for that
// icode — reported as StatusIns). The two are kept
// distinct, mirroring how "dmem_error" is kept separate from decode
// errors, because they report different statuses.
func (u *InstructionMemoryUnit) Eval(in Inputs) (Outputs, error) {
	pc, err := in["pc"].AsWord()
	if err != nil {
		return nil, err
	}

	out := Outputs{
		"icode":             signal.Byte(0),
		"ifun":              signal.Byte(0),
		"rA":                signal.Reg(signal.NoReg),
		"rB":                signal.Reg(signal.NoReg),
		"valC":              signal.Word(0),
		"valP":              signal.Word(pc),
		"imem_bounds_error": signal.Bool(false),
		"imem_ins_error":    signal.Bool(false),
	}

	first, err := u.mem.ReadByte(pc)
	if err != nil {
		out["imem_bounds_error"] = signal.Bool(true)
		return out, nil
	}
	icode := first >> 4
	ifun := first & 0xF
	out["icode"] = signal.Byte(icode)
	out["ifun"] = signal.Byte(ifun)

	maxFun := uint8(0)
	switch icode {
	case ICOPQ:
		maxFun = ALUXor
	case ICJXX, ICRRMovQ:
		maxFun = CondG
	}
	if !Recognized(icode) || ifun > maxFun {
		out["imem_ins_error"] = signal.Bool(true)
		return out, nil
	}

	cursor := pc + 1
	if HasRegisterByte(icode) {
		rb, err := u.mem.ReadByte(cursor)
		if err != nil {
			out["imem_bounds_error"] = signal.Bool(true)
			return out, nil
		}
		out["rA"] = signal.Reg(signal.RegID(rb >> 4))
		out["rB"] = signal.Reg(signal.RegID(rb & 0xF))
		cursor++
	}
	if HasValC(icode) {
		valC, err := u.mem.ReadWord(cursor)
		if err != nil {
			out["imem_bounds_error"] = signal.Bool(true)
			return out, nil
		}
		out["valC"] = signal.Word(valC)
		cursor += 8
	}
	out["valP"] = signal.Word(cursor)
	return out, nil
}
