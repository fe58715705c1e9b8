// Package pipeline provides the five-stage in-order pipeline control
// logic — forwarding, load-use stalls, branch-misprediction flushes
// and the return-address stall — as a single pure hardware unit wired
// into the pipe_std HCL program exactly like the ALU or instruction
// memory. The engine treats it as any other combinational unit; only
// the wiring of its outputs into the stage registers' stall/bubble
// control lines lives in the architecture's HCL program.
package pipeline

import (
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

// HazardUnit generalizes the fixed forwarding-priority and hazard
// rules from a superscalar ARM64 pipeline's DetectForwarding /
// DetectLoadUseHazardDecoded / ComputeStalls trio into Y86-64's
// single-issue srcA/srcB/dstE/dstM register model.
type HazardUnit struct{}

// NewHazardUnit creates a HazardUnit. It carries no state of its own
// — every input it needs comes from the pipeline stage registers.
func NewHazardUnit() *HazardUnit { return &HazardUnit{} }

// Name implements units.Unit.
func (h *HazardUnit) Name() string { return "hazard" }

// InputPorts implements units.PortLister.
func (h *HazardUnit) InputPorts() []string {
	return []string{
		"srcA", "srcB",
		"d_icode",
		"e_icode", "e_dstE", "e_dstM", "e_valE", "e_cnd", "e_valP",
		"m_icode", "m_dstE", "m_dstM", "m_valE", "m_valM", "m_is_load",
		"w_dstE", "w_dstM", "w_valE", "w_valM",
	}
}

func reg(v signal.Value) signal.RegID {
	r, _ := v.AsReg()
	return r
}

func word(v signal.Value) uint64 {
	w, _ := v.AsWord()
	return w
}

func byteOf(v signal.Value) uint8 {
	b, _ := v.AsByte()
	return b
}

func boolOf(v signal.Value) bool {
	b, _ := v.AsBool()
	return b
}

// Eval implements units.Unit. See InputPorts for the input port set.
// Output ports: "stallF", "stallD", "bubbleD", "bubbleE", "mispredict",
// "fwdA_valid", "fwdB_valid" (Bool), "fwdA", "fwdB" (Word),
// "fetch_redirect" (Word).
func (h *HazardUnit) Eval(in units.Inputs) (units.Outputs, error) {
	srcA, srcB := reg(in["srcA"]), reg(in["srcB"])
	dIcode := byteOf(in["d_icode"])
	eIcode, eDstE, eDstM := byteOf(in["e_icode"]), reg(in["e_dstE"]), reg(in["e_dstM"])
	mIcode, mDstE, mDstM := byteOf(in["m_icode"]), reg(in["m_dstE"]), reg(in["m_dstM"])
	mIsLoad := boolOf(in["m_is_load"])
	wDstE, wDstM := reg(in["w_dstE"]), reg(in["w_dstM"])

	loadUse := (eIcode == units.ICMRMovQ || eIcode == units.ICPopQ) && eDstM.Valid() && (eDstM == srcA || eDstM == srcB)

	// The return target is unknown until RET reaches Memory and its
	// valM is read, so fetch must stay frozen while RET occupies D or
	// E; once it reaches M this cycle's redirect (wired in the
	// architecture's pc_next) already targets the resolved address, so
	// fetch no longer needs to hold — but the instruction fetched this
	// cycle at the stale PC is still wrong-path and must be squashed.
	retStall := dIcode == units.ICRet || eIcode == units.ICRet
	retBubble := retStall || mIcode == units.ICRet

	mispredict := eIcode == units.ICJXX && !boolOf(in["e_cnd"])

	out := units.Outputs{
		"stallF":         signal.Bool(loadUse || retStall),
		"stallD":         signal.Bool(loadUse),
		"bubbleD":        signal.Bool(mispredict || (retBubble && !loadUse)),
		"bubbleE":        signal.Bool(loadUse || mispredict),
		"mispredict":     signal.Bool(mispredict),
		"fetch_redirect": in["e_valP"],
		"fwdA":           signal.Word(forward(srcA, eDstE, word(in["e_valE"]), mDstE, mDstM, word(in["m_valE"]), word(in["m_valM"]), mIsLoad, wDstE, word(in["w_valE"]), wDstM, word(in["w_valM"]))),
		"fwdB":           signal.Word(forward(srcB, eDstE, word(in["e_valE"]), mDstE, mDstM, word(in["m_valE"]), word(in["m_valM"]), mIsLoad, wDstE, word(in["w_valE"]), wDstM, word(in["w_valM"]))),
		"fwdA_valid":     signal.Bool(Forwarded(srcA, eDstE, mDstE, mDstM, wDstE, wDstM, mIsLoad)),
		"fwdB_valid":     signal.Bool(Forwarded(srcB, eDstE, mDstE, mDstM, wDstE, wDstM, mIsLoad)),
	}
	return out, nil
}

// forward applies the fixed five-level forwarding priority: the
// Execute-stage value about to retire; the Memory-stage load value
// when the Memory-stage instruction is itself a load; the
// Memory-stage ALU result; the Writeback-stage loaded value; the
// Writeback-stage ALU result. A miss at every level means the
// register file's own read supplies the value, indicated here by
// returning 0 with no match — callers mux the register file value in
// when none of these levels claim the register.
func forward(src, eDstE signal.RegID, eValE uint64, mDstE, mDstM signal.RegID, mValE, mValM uint64, mIsLoad bool, wDstE signal.RegID, wValE uint64, wDstM signal.RegID, wValM uint64) uint64 {
	switch {
	case src.Valid() && src == eDstE:
		return eValE
	case src.Valid() && mIsLoad && src == mDstM:
		return mValM
	case src.Valid() && src == mDstE:
		return mValE
	case src.Valid() && src == wDstM:
		return wValM
	case src.Valid() && src == wDstE:
		return wValE
	default:
		return 0
	}
}

// Forwarded reports whether src matches any forwarding source, so the
// HCL wiring can mux between the forwarded value and the plain
// register-file read.
func Forwarded(src, eDstE, mDstE, mDstM, wDstE, wDstM signal.RegID, mIsLoad bool) bool {
	if !src.Valid() {
		return false
	}
	return src == eDstE || (mIsLoad && src == mDstM) || src == mDstE || src == wDstM || src == wDstE
}
