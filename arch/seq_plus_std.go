package arch

import (
	"github.com/sarchlab/y86sim/hcl"
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

// buildSeqPlusStd wires the refined-sequential architecture (see
// DESIGN.md for the PC timing question). SEQ+ computes the identical
// architectural pc_next value as SEQ — the two variants report
// bit-identical machine state after every cycle — but factors the
// computation through an explicit "predPC" signal: valC for call,
// valC or valP for a jump depending on this cycle's cnd, and valP for
// everything else. pc_next overrides predPC only for ret, whose
// target is the valM read by the memory stage. Both signals are
// computed within the current cycle from this cycle's fetch; no
// previous-cycle values are latched for them.
func buildSeqPlusStd(mem *units.Memory, startPC uint64) Entry {
	icode := hcl.FromPort("imem", "icode")
	valC := hcl.FromSig("valC")
	valP := hcl.FromSig("valP")
	valM := hcl.FromPort("dmem", "valM")
	cnd := hcl.FromSig("cnd")

	defs := sequentialCore()
	defs = append(defs,
		hcl.Def{Name: "predPC", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICCall))), Then: valC},
			hcl.CaseArm{Cond: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICJXX))), Then: hcl.Case(
				hcl.CaseArm{Cond: cnd, Then: valC},
				hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: valP},
			)},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: valP},
		)},
		hcl.Def{Name: "pc_next", Expr: hcl.Case(
			hcl.CaseArm{Cond: hcl.Eq(icode, hcl.Const(signal.Byte(units.ICRet))), Then: valM},
			hcl.CaseArm{Cond: hcl.Const(signal.Bool(true)), Then: hcl.FromSig("predPC")},
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
