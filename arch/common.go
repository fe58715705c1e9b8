package arch

import (
	"github.com/sarchlab/y86sim/hcl"
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

// icodeIs builds a Bool expression testing icode against a set of
// opcodes — the HCL idiom for "icode in { ... }" membership tests
// used throughout the sequential decode logic.
func icodeIs(icode hcl.Expr, codes ...uint8) hcl.Expr {
	vals := make([]hcl.Expr, len(codes))
	for i, c := range codes {
		vals[i] = hcl.Const(signal.Byte(c))
	}
	return hcl.In(icode, vals...)
}

// sequentialCore builds the Defs shared by seq_std and seq_plus_std:
// decode's source/destination register selection, the ALU operand
// mux, the condition evaluation, and the memory-stage address/data
// muxes. It does not define pc_next, whose expression differs between
// the two variants (see buildSeqStd/buildSeqPlusStd), or stat, which
// both variants take from statusDef.
func sequentialCore() []hcl.Def {
	icode := hcl.FromPort("imem", "icode")
	ifun := hcl.FromPort("imem", "ifun")
	rA := hcl.FromSig("rA")
	rB := hcl.FromSig("rB")
	valC := hcl.FromSig("valC")
	valA := hcl.FromPort("regfile", "valA")
	valB := hcl.FromPort("regfile", "valB")
	rsp := hcl.Const(signal.Reg(4))
	noReg := hcl.Const(signal.Reg(signal.NoReg))

	zf := hcl.FromSig("zf")
	of := hcl.FromSig("of")
	sf := hcl.FromSig("sf")
	lt := hcl.Neq(sf, of)
	le := hcl.Or(lt, zf)
	ge := hcl.Not(lt)
	gt := hcl.And(hcl.Not(lt), hcl.Not(zf))
	ne := hcl.Not(zf)

	return []hcl.Def{
		{Name: "rA", Expr: hcl.FromPort("imem", "rA")},
		{Name: "rB", Expr: hcl.FromPort("imem", "rB")},
		{Name: "valC", Expr: hcl.FromPort("imem", "valC")},
		{Name: "valP", Expr: hcl.FromPort("imem", "valP")},

		{Name: "zf", Expr: hcl.CCZF(hcl.FromPort("cc", "cc"))},
		{Name: "sf", Expr: hcl.CCSF(hcl.FromPort("cc", "cc"))},
		{Name: "of", Expr: hcl.CCOF(hcl.FromPort("cc", "cc"))},

		{Name: "cnd", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.Eq(ifun, hcl.Const(signal.Byte(units.CondAlways))), Then: hcl.Const(signal.Bool(true))},
			hcl.CaseArm{Cond: hcl.Eq(ifun, hcl.Const(signal.Byte(units.CondLE))), Then: le},
			hcl.CaseArm{Cond: hcl.Eq(ifun, hcl.Const(signal.Byte(units.CondL))), Then: lt},
			hcl.CaseArm{Cond: hcl.Eq(ifun, hcl.Const(signal.Byte(units.CondE))), Then: zf},
			hcl.CaseArm{Cond: hcl.Eq(ifun, hcl.Const(signal.Byte(units.CondNE))), Then: ne},
			hcl.CaseArm{Cond: hcl.Eq(ifun, hcl.Const(signal.Byte(units.CondGE))), Then: ge},
			hcl.CaseArm{Cond: hcl.Eq(ifun, hcl.Const(signal.Byte(units.CondG))), Then: gt},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Bool(false))},
		)},

		{Name: "srcA", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icode, units.ICRRMovQ, units.ICOPQ, units.ICRMMovQ, units.ICPushQ), Then: rA},
			hcl.CaseArm{Cond: icodeIs(icode, units.ICPopQ, units.ICRet), Then: rsp},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: noReg},
		)},
		{Name: "srcB", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icode, units.ICOPQ, units.ICRMMovQ, units.ICMRMovQ), Then: rB},
			hcl.CaseArm{Cond: icodeIs(icode, units.ICPushQ, units.ICPopQ, units.ICCall, units.ICRet), Then: rsp},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: noReg},
		)},
		{Name: "dstE", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.And(hcl.Eq(icode, hcl.Const(signal.Byte(units.ICRRMovQ))), hcl.Not(hcl.FromSig("cnd"))), Then: noReg},
			hcl.CaseArm{Cond: icodeIs(icode, units.ICRRMovQ, units.ICIRMovQ, units.ICOPQ), Then: rB},
			hcl.CaseArm{Cond: icodeIs(icode, units.ICPushQ, units.ICPopQ, units.ICCall, units.ICRet), Then: rsp},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: noReg},
		)},
		{Name: "dstM", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icode, units.ICMRMovQ, units.ICPopQ), Then: rA},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: noReg},
		)},

		{Name: "aluA", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icode, units.ICRRMovQ, units.ICOPQ), Then: valA},
			hcl.CaseArm{Cond: icodeIs(icode, units.ICIRMovQ, units.ICRMMovQ, units.ICMRMovQ), Then: valC},
			hcl.CaseArm{Cond: icodeIs(icode, units.ICCall, units.ICPushQ), Then: hcl.Const(signal.Word(^uint64(7)))},
			hcl.CaseArm{Cond: icodeIs(icode, units.ICRet, units.ICPopQ), Then: hcl.Const(signal.Word(8))},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Word(0))},
		)},
		{Name: "aluB", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icode, units.ICRMMovQ, units.ICMRMovQ, units.ICOPQ, units.ICCall, units.ICPushQ, units.ICRet, units.ICPopQ), Then: valB},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Word(0))},
		)},
		{Name: "alufun", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICOPQ))), Then: ifun},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Byte(units.ALUAdd))},
		)},
		{Name: "set_cc", Expr: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICOPQ)))},

		{Name: "mem_addr", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icode, units.ICRMMovQ, units.ICMRMovQ, units.ICPushQ, units.ICCall), Then: hcl.FromPort("alu", "valE")},
			hcl.CaseArm{Cond: icodeIs(icode, units.ICPopQ, units.ICRet), Then: valA},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Word(0))},
		)},
		{Name: "mem_data_in", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icode, units.ICRMMovQ, units.ICPushQ), Then: valA},
			hcl.CaseArm{Cond: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICCall))), Then: hcl.FromSig("valP")},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Word(0))},
		)},
		{Name: "mem_read", Expr: icodeIs(icode, units.ICMRMovQ, units.ICPopQ, units.ICRet)},
		{Name: "mem_write", Expr: icodeIs(icode, units.ICRMMovQ, units.ICPushQ, units.ICCall)},
	}
}

// sequentialWires wires the shared core's signals into the imem,
// regfile, alu and dmem units. Both seq_std and seq_plus_std use this
// unchanged; they differ only in how pc_next and the PC unit's commit
// are wired (see the per-architecture files).
func sequentialWires(pcSignal string) []hcl.Wire {
	return []hcl.Wire{
		{Unit: "imem", Input: "pc", From: hcl.Sig(pcSignal)},
		{Unit: "regfile", Input: "srcA", From: hcl.Sig("srcA")},
		{Unit: "regfile", Input: "srcB", From: hcl.Sig("srcB")},
		{Unit: "regfile", Input: "dstE", From: hcl.Sig("dstE")},
		{Unit: "regfile", Input: "valE", From: hcl.Port("alu", "valE")},
		{Unit: "regfile", Input: "dstM", From: hcl.Sig("dstM")},
		{Unit: "regfile", Input: "valM", From: hcl.Port("dmem", "valM")},

		{Unit: "alu", Input: "aluA", From: hcl.Sig("aluA")},
		{Unit: "alu", Input: "aluB", From: hcl.Sig("aluB")},
		{Unit: "alu", Input: "alufun", From: hcl.Sig("alufun")},

		{Unit: "cc", Input: "cc_next", From: hcl.Port("alu", "cc_next")},
		{Unit: "cc", Input: "set_cc", From: hcl.Sig("set_cc")},

		{Unit: "dmem", Input: "addr", From: hcl.Sig("mem_addr")},
		{Unit: "dmem", Input: "mem_read", From: hcl.Sig("mem_read")},
		{Unit: "dmem", Input: "mem_write", From: hcl.Sig("mem_write")},
		{Unit: "dmem", Input: "data_in", From: hcl.Sig("mem_data_in")},
		{Unit: "dmem", Input: "addr_commit", From: hcl.Sig("mem_addr")},
		{Unit: "dmem", Input: "mem_write_commit", From: hcl.Sig("mem_write")},
	}
}

// statusDef builds the "stat" signal common to both sequential
// variants: an invalid fetch or a recognized-but-erroring memory
// access reports before a halt is even considered.
func statusDef() hcl.Def {
	icode := hcl.FromPort("imem", "icode")
	return hcl.Def{Name: "stat", Expr: hcl.Case(
		hcl.CaseArm{Cond: hcl.FromPort("imem", "imem_bounds_error"), Then: hcl.Const(signal.Stat(signal.StatusAdr))},
		hcl.CaseArm{Cond: hcl.FromPort("imem", "imem_ins_error"), Then: hcl.Const(signal.Stat(signal.StatusIns))},
		hcl.CaseArm{Cond: hcl.FromPort("dmem", "dmem_error"), Then: hcl.Const(signal.Stat(signal.StatusAdr))},
		hcl.CaseArm{Cond: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICHalt))), Then: hcl.Const(signal.Stat(signal.StatusHlt))},
		hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Stat(signal.StatusAok))},
	)}
}

func baseUnits(mem *units.Memory, startPC uint64) map[string]units.Unit {
	return map[string]units.Unit{
		"imem":    units.NewInstructionMemoryUnit(mem),
		"regfile": units.NewRegisterFileUnit(),
		"alu":     units.NewALUUnit(),
		"dmem":    units.NewDataMemoryUnit(mem),
		"cc":      units.NewConditionCodeUnit(),
		"pc":      units.NewPCUnit(startPC),
	}
}
