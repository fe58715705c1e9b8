package arch

import (
	"github.com/sarchlab/y86sim/hcl"
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

// buildSeqStd wires the plain sequential architecture: pc_next is a
// single combinational expression over this cycle's freshly fetched
// icode/valC/valP, this cycle's ALU-resolved cnd, and this cycle's
// memory-read valM (for ret). It is fed straight into the PC unit's
// commit input.
func buildSeqStd(mem *units.Memory, startPC uint64) Entry {
	icode := hcl.FromPort("imem", "icode")
	valC := hcl.FromSig("valC")
	valP := hcl.FromSig("valP")
	valM := hcl.FromPort("dmem", "valM")
	cnd := hcl.FromSig("cnd")

	defs := sequentialCore()
	defs = append(defs,
		hcl.Def{Name: "pc_next", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICCall))), Then: valC},
			hcl.CaseArm{Cond: hcl.And(hcl.Eq(icode, hcl.Const(signal.Byte(units.ICJXX))), cnd), Then: valC},
			hcl.CaseArm{Cond: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICJXX))), Then: valP},
			hcl.CaseArm{Cond: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICRet))), Then: valM},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: valP},
		)},
		statusDef(),
	)

	wires := sequentialWires("cur_pc")
	wires = append(wires,
		hcl.Wire{Unit: "pc", Input: "pc_next", From: hcl.Sig("pc_next")},
	)
	defs = append(defs, hcl.Def{Name: "cur_pc", Expr: hcl.FromPort("pc", "pc")})

	return Entry{
		Units:        baseUnits(mem, startPC),
		Program:      hcl.Program{Defs: defs, Wires: wires},
		StatusSignal: "stat",
	}
}
