package arch

import (
	"github.com/sarchlab/y86sim/hcl"
	"github.com/sarchlab/y86sim/pipeline"
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

// buildPipeStd wires the five-stage pipeline: Fetch (PC + imem),
// Decode (D register + regfile read + forwarding mux), Execute (E
// register + ALU + condition evaluation), Memory (M register +
// dmem), Writeback (W register + regfile write). pipeline.HazardUnit
// supplies every stall/bubble/forward decision as ordinary unit
// outputs; this file only wires those outputs into the stage
// registers' control inputs; the engine itself has no pipeline-
// specific logic at all.
func buildPipeStd(mem *units.Memory, startPC uint64) Entry {
	u := baseUnits(mem, startPC)
	regs := pipeline.NewRegisters()
	for name, r := range regs {
		u[name] = r
	}
	u["hazard"] = pipeline.NewHazardUnit()

	defs := append(fetchDefs(), decodeDefs()...)
	defs = append(defs, executeDefs()...)
	defs = append(defs, memoryDefs()...)
	defs = append(defs, writebackDefs()...)

	wires := append(fetchWires(), decodeWires()...)
	wires = append(wires, executeWires()...)
	wires = append(wires, memoryWires()...)
	wires = append(wires, writebackWires()...)

	return Entry{
		Units:        u,
		Program:      hcl.Program{Defs: defs, Wires: wires},
		StatusSignal: "w_status",
	}
}

// --- Fetch ---

func fetchDefs() []hcl.Def {
	icodeF := hcl.FromPort("imem", "icode")
	valC := hcl.FromPort("imem", "valC")
	valP := hcl.FromPort("imem", "valP")

	return []hcl.Def{
		{Name: "false_c", Expr: hcl.Const(signal.Bool(false))},

		{Name: "f_predPC", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icodeF, units.ICCall, units.ICJXX), Then: valC},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: valP},
		)},
		{Name: "pc_next", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.FromPort("hazard", "mispredict"), Then: hcl.FromPort("hazard", "fetch_redirect")},
			hcl.CaseArm{Cond: hcl.Eq(hcl.FromPort("M", "icode"), hcl.Const(signal.Byte(units.ICRet))), Then: hcl.FromPort("dmem", "valM")},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.FromSig("f_predPC")},
		)},
		{Name: "f_stat", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.FromPort("imem", "imem_bounds_error"), Then: hcl.Const(signal.Stat(signal.StatusAdr))},
			hcl.CaseArm{Cond: hcl.FromPort("imem", "imem_ins_error"), Then: hcl.Const(signal.Stat(signal.StatusIns))},
			hcl.CaseArm{Cond: hcl.Eq(icodeF, hcl.Const(signal.Byte(units.ICHalt))), Then: hcl.Const(signal.Stat(signal.StatusHlt))},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Stat(signal.StatusAok))},
		)},
	}
}

func fetchWires() []hcl.Wire {
	return []hcl.Wire{
		{Unit: "imem", Input: "pc", From: hcl.Port("pc", "pc")},
		{Unit: "pc", Input: "pc_next", From: hcl.Sig("pc_next")},
		{Unit: "pc", Input: "stall", From: hcl.Port("hazard", "stallF")},

		{Unit: "D", Input: "stall", From: hcl.Port("hazard", "stallD")},
		{Unit: "D", Input: "bubble", From: hcl.Port("hazard", "bubbleD")},
		{Unit: "D", Input: "status", From: hcl.Sig("f_stat")},
		{Unit: "D", Input: "icode", From: hcl.Port("imem", "icode")},
		{Unit: "D", Input: "ifun", From: hcl.Port("imem", "ifun")},
		{Unit: "D", Input: "rA", From: hcl.Port("imem", "rA")},
		{Unit: "D", Input: "rB", From: hcl.Port("imem", "rB")},
		{Unit: "D", Input: "valC", From: hcl.Port("imem", "valC")},
		{Unit: "D", Input: "valP", From: hcl.Port("imem", "valP")},
	}
}

// --- Decode ---

func decodeDefs() []hcl.Def {
	icodeD := hcl.FromPort("D", "icode")
	rA := hcl.FromPort("D", "rA")
	rB := hcl.FromPort("D", "rB")
	rsp := hcl.Const(signal.Reg(4))
	noReg := hcl.Const(signal.Reg(signal.NoReg))

	return []hcl.Def{
		{Name: "srcA", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icodeD, units.ICRRMovQ, units.ICOPQ, units.ICRMMovQ, units.ICPushQ), Then: rA},
			hcl.CaseArm{Cond: icodeIs(icodeD, units.ICPopQ, units.ICRet), Then: rsp},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: noReg},
		)},
		{Name: "srcB", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icodeD, units.ICOPQ, units.ICRMMovQ, units.ICMRMovQ), Then: rB},
			hcl.CaseArm{Cond: icodeIs(icodeD, units.ICPushQ, units.ICPopQ, units.ICCall, units.ICRet), Then: rsp},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: noReg},
		)},
		{Name: "d_dstE", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icodeD, units.ICRRMovQ, units.ICIRMovQ, units.ICOPQ), Then: rB},
			hcl.CaseArm{Cond: icodeIs(icodeD, units.ICPushQ, units.ICPopQ, units.ICCall, units.ICRet), Then: rsp},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: noReg},
		)},
		{Name: "d_dstM", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icodeD, units.ICMRMovQ, units.ICPopQ), Then: rA},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: noReg},
		)},
		{Name: "valA", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.Eq(icodeD, hcl.Const(signal.Byte(units.ICCall))), Then: hcl.FromPort("D", "valP")},
			hcl.CaseArm{Cond: hcl.FromPort("hazard", "fwdA_valid"), Then: hcl.FromPort("hazard", "fwdA")},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.FromPort("regfile", "valA")},
		)},
		{Name: "valB", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.FromPort("hazard", "fwdB_valid"), Then: hcl.FromPort("hazard", "fwdB")},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.FromPort("regfile", "valB")},
		)},
	}
}

func decodeWires() []hcl.Wire {
	return []hcl.Wire{
		{Unit: "regfile", Input: "srcA", From: hcl.Sig("srcA")},
		{Unit: "regfile", Input: "srcB", From: hcl.Sig("srcB")},

		{Unit: "hazard", Input: "srcA", From: hcl.Sig("srcA")},
		{Unit: "hazard", Input: "srcB", From: hcl.Sig("srcB")},
		{Unit: "hazard", Input: "d_icode", From: hcl.Port("D", "icode")},
		{Unit: "hazard", Input: "e_icode", From: hcl.Port("E", "icode")},
		{Unit: "hazard", Input: "e_dstE", From: hcl.Port("E", "dstE")},
		{Unit: "hazard", Input: "e_dstM", From: hcl.Port("E", "dstM")},
		{Unit: "hazard", Input: "e_valE", From: hcl.Port("alu", "valE")},
		{Unit: "hazard", Input: "e_cnd", From: hcl.Sig("e_cnd")},
		{Unit: "hazard", Input: "e_valP", From: hcl.Port("E", "valP")},
		{Unit: "hazard", Input: "m_icode", From: hcl.Port("M", "icode")},
		{Unit: "hazard", Input: "m_dstE", From: hcl.Port("M", "dstE")},
		{Unit: "hazard", Input: "m_dstM", From: hcl.Port("M", "dstM")},
		{Unit: "hazard", Input: "m_valE", From: hcl.Port("M", "valE")},
		{Unit: "hazard", Input: "m_valM", From: hcl.Port("dmem", "valM")},
		{Unit: "hazard", Input: "m_is_load", From: hcl.Sig("m_is_load")},
		{Unit: "hazard", Input: "w_dstE", From: hcl.Port("W", "dstE")},
		{Unit: "hazard", Input: "w_dstM", From: hcl.Port("W", "dstM")},
		{Unit: "hazard", Input: "w_valE", From: hcl.Port("W", "valE")},
		{Unit: "hazard", Input: "w_valM", From: hcl.Port("W", "valM")},

		{Unit: "E", Input: "stall", From: hcl.Sig("false_c")},
		{Unit: "E", Input: "bubble", From: hcl.Port("hazard", "bubbleE")},
		{Unit: "E", Input: "status", From: hcl.Port("D", "status")},
		{Unit: "E", Input: "icode", From: hcl.Port("D", "icode")},
		{Unit: "E", Input: "ifun", From: hcl.Port("D", "ifun")},
		{Unit: "E", Input: "valC", From: hcl.Port("D", "valC")},
		{Unit: "E", Input: "valP", From: hcl.Port("D", "valP")},
		{Unit: "E", Input: "valA", From: hcl.Sig("valA")},
		{Unit: "E", Input: "valB", From: hcl.Sig("valB")},
		{Unit: "E", Input: "dstE", From: hcl.Sig("d_dstE")},
		{Unit: "E", Input: "dstM", From: hcl.Sig("d_dstM")},
		{Unit: "E", Input: "srcA", From: hcl.Sig("srcA")},
		{Unit: "E", Input: "srcB", From: hcl.Sig("srcB")},
	}
}

// --- Execute ---

func executeDefs() []hcl.Def {
	icodeE := hcl.FromPort("E", "icode")
	ifunE := hcl.FromPort("E", "ifun")
	valA := hcl.FromPort("E", "valA")
	valB := hcl.FromPort("E", "valB")

	zf := hcl.CCZF(hcl.FromPort("cc", "cc"))
	sf := hcl.CCSF(hcl.FromPort("cc", "cc"))
	of := hcl.CCOF(hcl.FromPort("cc", "cc"))
	lt := hcl.Neq(sf, of)
	le := hcl.Or(lt, zf)
	ge := hcl.Not(lt)
	gt := hcl.And(hcl.Not(lt), hcl.Not(zf))
	ne := hcl.Not(zf)

	return []hcl.Def{
		{Name: "e_cnd", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.Eq(ifunE, hcl.Const(signal.Byte(units.CondAlways))), Then: hcl.Const(signal.Bool(true))},
			hcl.CaseArm{Cond: hcl.Eq(ifunE, hcl.Const(signal.Byte(units.CondLE))), Then: le},
			hcl.CaseArm{Cond: hcl.Eq(ifunE, hcl.Const(signal.Byte(units.CondL))), Then: lt},
			hcl.CaseArm{Cond: hcl.Eq(ifunE, hcl.Const(signal.Byte(units.CondE))), Then: zf},
			hcl.CaseArm{Cond: hcl.Eq(ifunE, hcl.Const(signal.Byte(units.CondNE))), Then: ne},
			hcl.CaseArm{Cond: hcl.Eq(ifunE, hcl.Const(signal.Byte(units.CondGE))), Then: ge},
			hcl.CaseArm{Cond: hcl.Eq(ifunE, hcl.Const(signal.Byte(units.CondG))), Then: gt},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Bool(false))},
		)},
		{Name: "e_dstE_final", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.And(hcl.Eq(icodeE, hcl.Const(signal.Byte(units.ICRRMovQ))), hcl.Not(hcl.FromSig("e_cnd"))), Then: hcl.Const(signal.Reg(signal.NoReg))},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.FromPort("E", "dstE")},
		)},
		{Name: "aluA", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icodeE, units.ICRRMovQ, units.ICOPQ), Then: valA},
			hcl.CaseArm{Cond: icodeIs(icodeE, units.ICIRMovQ, units.ICRMMovQ, units.ICMRMovQ), Then: hcl.FromPort("E", "valC")},
			hcl.CaseArm{Cond: icodeIs(icodeE, units.ICCall, units.ICPushQ), Then: hcl.Const(signal.Word(^uint64(7)))},
			hcl.CaseArm{Cond: icodeIs(icodeE, units.ICRet, units.ICPopQ), Then: hcl.Const(signal.Word(8))},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Word(0))},
		)},
		{Name: "aluB", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icodeE, units.ICRMMovQ, units.ICMRMovQ, units.ICOPQ, units.ICCall, units.ICPushQ, units.ICRet, units.ICPopQ), Then: valB},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Word(0))},
		)},
		{Name: "alufun", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.Eq(icodeE, hcl.Const(signal.Byte(units.ICOPQ))), Then: ifunE},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Byte(units.ALUAdd))},
		)},
		{Name: "set_cc", Expr: hcl.Eq(icodeE, hcl.Const(signal.Byte(units.ICOPQ)))},
	}
}

func executeWires() []hcl.Wire {
	return []hcl.Wire{
		{Unit: "alu", Input: "aluA", From: hcl.Sig("aluA")},
		{Unit: "alu", Input: "aluB", From: hcl.Sig("aluB")},
		{Unit: "alu", Input: "alufun", From: hcl.Sig("alufun")},
		{Unit: "cc", Input: "cc_next", From: hcl.Port("alu", "cc_next")},
		{Unit: "cc", Input: "set_cc", From: hcl.Sig("set_cc")},

		{Unit: "M", Input: "stall", From: hcl.Sig("false_c")},
		{Unit: "M", Input: "bubble", From: hcl.Sig("false_c")},
		{Unit: "M", Input: "status", From: hcl.Port("E", "status")},
		{Unit: "M", Input: "icode", From: hcl.Port("E", "icode")},
		{Unit: "M", Input: "cnd", From: hcl.Sig("e_cnd")},
		{Unit: "M", Input: "valE", From: hcl.Port("alu", "valE")},
		{Unit: "M", Input: "valA", From: hcl.Port("E", "valA")},
		{Unit: "M", Input: "dstE", From: hcl.Sig("e_dstE_final")},
		{Unit: "M", Input: "dstM", From: hcl.Port("E", "dstM")},
	}
}

// --- Memory ---

func memoryDefs() []hcl.Def {
	icodeM := hcl.FromPort("M", "icode")
	valE := hcl.FromPort("M", "valE")
	valA := hcl.FromPort("M", "valA")

	return []hcl.Def{
		{Name: "m_is_load", Expr: icodeIs(icodeM, units.ICMRMovQ, units.ICPopQ)},
		{Name: "mem_addr", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icodeM, units.ICRMMovQ, units.ICMRMovQ, units.ICPushQ, units.ICCall), Then: valE},
			hcl.CaseArm{Cond: icodeIs(icodeM, units.ICPopQ, units.ICRet), Then: valA},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Word(0))},
		)},
		{Name: "mem_data_in", Expr: hcl.Case(
			hcl.CaseArm{Cond: icodeIs(icodeM, units.ICRMMovQ, units.ICPushQ), Then: valA},
			hcl.CaseArm{Cond: hcl.Eq(icodeM, hcl.Const(signal.Byte(units.ICCall))), Then: hcl.FromPort("M", "valA")},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.Const(signal.Word(0))},
		)},
		{Name: "mem_read", Expr: icodeIs(icodeM, units.ICMRMovQ, units.ICPopQ, units.ICRet)},
		{Name: "mem_write", Expr: icodeIs(icodeM, units.ICRMMovQ, units.ICPushQ, units.ICCall)},
		{Name: "m_status", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.FromPort("dmem", "dmem_error"), Then: hcl.Const(signal.Stat(signal.StatusAdr))},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.FromPort("M", "status")},
		)},
	}
}

func memoryWires() []hcl.Wire {
	return []hcl.Wire{
		{Unit: "dmem", Input: "addr", From: hcl.Sig("mem_addr")},
		{Unit: "dmem", Input: "mem_read", From: hcl.Sig("mem_read")},
		{Unit: "dmem", Input: "mem_write", From: hcl.Sig("mem_write")},
		{Unit: "dmem", Input: "data_in", From: hcl.Sig("mem_data_in")},
		{Unit: "dmem", Input: "addr_commit", From: hcl.Sig("mem_addr")},
		{Unit: "dmem", Input: "mem_write_commit", From: hcl.Sig("mem_write")},

		{Unit: "W", Input: "stall", From: hcl.Sig("false_c")},
		{Unit: "W", Input: "bubble", From: hcl.Sig("false_c")},
		{Unit: "W", Input: "status", From: hcl.Sig("m_status")},
		{Unit: "W", Input: "icode", From: hcl.Port("M", "icode")},
		{Unit: "W", Input: "valE", From: hcl.Port("M", "valE")},
		{Unit: "W", Input: "valM", From: hcl.Port("dmem", "valM")},
		{Unit: "W", Input: "dstE", From: hcl.Port("M", "dstE")},
		{Unit: "W", Input: "dstM", From: hcl.Port("M", "dstM")},
	}
}

// --- Writeback ---

func writebackDefs() []hcl.Def {
	return []hcl.Def{
		{Name: "w_status", Expr: hcl.FromPort("W", "status")},
	}
}

func writebackWires() []hcl.Wire {
	return []hcl.Wire{
		{Unit: "regfile", Input: "dstE", From: hcl.Port("W", "dstE")},
		{Unit: "regfile", Input: "valE", From: hcl.Port("W", "valE")},
		{Unit: "regfile", Input: "dstM", From: hcl.Port("W", "dstM")},
		{Unit: "regfile", Input: "valM", From: hcl.Port("W", "valM")},
	}
}
