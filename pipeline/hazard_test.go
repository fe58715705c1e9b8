package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/pipeline"
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

const (
	regRAX uint8 = 0
	regRBX uint8 = 3
)

// baseInputs returns a hazard-free, bubble-filled input set: every
// stage holds a nop with no destination register, so a test only
// needs to override the ports relevant to the case it exercises.
func baseInputs() units.Inputs {
	return units.Inputs{
		"srcA": signal.Reg(signal.NoReg),
		"srcB": signal.Reg(signal.NoReg),

		"d_icode": signal.Byte(units.ICNop),

		"e_icode": signal.Byte(units.ICNop),
		"e_dstE":  signal.Reg(signal.NoReg),
		"e_dstM":  signal.Reg(signal.NoReg),
		"e_valE":  signal.Word(0),
		"e_cnd":   signal.Bool(false),
		"e_valP":  signal.Word(0),

		"m_icode":   signal.Byte(units.ICNop),
		"m_dstE":    signal.Reg(signal.NoReg),
		"m_dstM":    signal.Reg(signal.NoReg),
		"m_valE":    signal.Word(0),
		"m_valM":    signal.Word(0),
		"m_is_load": signal.Bool(false),

		"w_dstE": signal.Reg(signal.NoReg),
		"w_dstM": signal.Reg(signal.NoReg),
		"w_valE": signal.Word(0),
		"w_valM": signal.Word(0),
	}
}

func boolPort(out units.Outputs, port string) bool {
	b, err := out[port].AsBool()
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return b
}

func wordPort(out units.Outputs, port string) uint64 {
	w, err := out[port].AsWord()
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return w
}

var _ = Describe("HazardUnit", func() {
	var h *pipeline.HazardUnit

	BeforeEach(func() {
		h = pipeline.NewHazardUnit()
	})

	Describe("forwarding priority", func() {
		It("prefers the Execute-stage result over every other level", func() {
			in := baseInputs()
			in["srcA"] = signal.Reg(signal.RegID(regRAX))
			in["e_dstE"] = signal.Reg(signal.RegID(regRAX))
			in["e_valE"] = signal.Word(100)
			in["w_dstE"] = signal.Reg(signal.RegID(regRAX))
			in["w_valE"] = signal.Word(2)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "fwdA_valid")).To(BeTrue())
			Expect(wordPort(out, "fwdA")).To(Equal(uint64(100)))
		})

		It("forwards the Memory-stage load value when Memory holds a load", func() {
			in := baseInputs()
			in["srcA"] = signal.Reg(signal.RegID(regRAX))
			in["m_dstM"] = signal.Reg(signal.RegID(regRAX))
			in["m_valM"] = signal.Word(55)
			in["m_is_load"] = signal.Bool(true)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "fwdA_valid")).To(BeTrue())
			Expect(wordPort(out, "fwdA")).To(Equal(uint64(55)))
		})

		It("forwards the Memory-stage ALU result when Memory is not a load", func() {
			in := baseInputs()
			in["srcA"] = signal.Reg(signal.RegID(regRAX))
			in["m_dstE"] = signal.Reg(signal.RegID(regRAX))
			in["m_valE"] = signal.Word(77)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(wordPort(out, "fwdA")).To(Equal(uint64(77)))
		})

		It("forwards the Writeback-stage loaded value", func() {
			in := baseInputs()
			in["srcB"] = signal.Reg(signal.RegID(regRBX))
			in["w_dstM"] = signal.Reg(signal.RegID(regRBX))
			in["w_valM"] = signal.Word(33)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "fwdB_valid")).To(BeTrue())
			Expect(wordPort(out, "fwdB")).To(Equal(uint64(33)))
		})

		It("forwards the Writeback-stage ALU result as the lowest-priority level", func() {
			in := baseInputs()
			in["srcB"] = signal.Reg(signal.RegID(regRBX))
			in["w_dstE"] = signal.Reg(signal.RegID(regRBX))
			in["w_valE"] = signal.Word(22)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "fwdB_valid")).To(BeTrue())
			Expect(wordPort(out, "fwdB")).To(Equal(uint64(22)))
		})

		It("reports no forwarding when the source register is the sentinel", func() {
			in := baseInputs()
			in["srcA"] = signal.Reg(signal.NoReg)
			in["e_dstE"] = signal.Reg(signal.NoReg)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "fwdA_valid")).To(BeFalse())
		})

		It("reports no forwarding when nothing downstream targets the register", func() {
			in := baseInputs()
			in["srcA"] = signal.Reg(signal.RegID(regRAX))

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "fwdA_valid")).To(BeFalse())
		})
	})

	Describe("load-use hazard", func() {
		It("stalls fetch and decode and bubbles Execute when Decode needs Execute's load result", func() {
			in := baseInputs()
			in["srcA"] = signal.Reg(signal.RegID(regRBX))
			in["e_icode"] = signal.Byte(units.ICMRMovQ)
			in["e_dstM"] = signal.Reg(signal.RegID(regRBX))

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "stallF")).To(BeTrue())
			Expect(boolPort(out, "stallD")).To(BeTrue())
			Expect(boolPort(out, "bubbleE")).To(BeTrue())
			Expect(boolPort(out, "bubbleD")).To(BeFalse())
		})

		It("does not stall when the load's destination is not the decoded instruction's source", func() {
			in := baseInputs()
			in["srcA"] = signal.Reg(signal.RegID(regRAX))
			in["e_icode"] = signal.Byte(units.ICMRMovQ)
			in["e_dstM"] = signal.Reg(signal.RegID(regRBX))

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "stallF")).To(BeFalse())
			Expect(boolPort(out, "stallD")).To(BeFalse())
			Expect(boolPort(out, "bubbleE")).To(BeFalse())
		})

		It("stalls fetch and decode and bubbles Execute when Decode needs a popq's loaded result", func() {
			in := baseInputs()
			in["srcB"] = signal.Reg(signal.RegID(regRAX))
			in["e_icode"] = signal.Byte(units.ICPopQ)
			in["e_dstM"] = signal.Reg(signal.RegID(regRAX))

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "stallF")).To(BeTrue())
			Expect(boolPort(out, "stallD")).To(BeTrue())
			Expect(boolPort(out, "bubbleE")).To(BeTrue())
			Expect(boolPort(out, "bubbleD")).To(BeFalse())
		})
	})

	Describe("branch misprediction", func() {
		It("bubbles Decode and Execute and redirects fetch when a predicted-taken branch is not taken", func() {
			in := baseInputs()
			in["e_icode"] = signal.Byte(units.ICJXX)
			in["e_cnd"] = signal.Bool(false)
			in["e_valP"] = signal.Word(0x100)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "mispredict")).To(BeTrue())
			Expect(boolPort(out, "bubbleD")).To(BeTrue())
			Expect(boolPort(out, "bubbleE")).To(BeTrue())
			Expect(boolPort(out, "stallF")).To(BeFalse())
			Expect(wordPort(out, "fetch_redirect")).To(Equal(uint64(0x100)))
		})

		It("does not flush when the branch was correctly predicted taken", func() {
			in := baseInputs()
			in["e_icode"] = signal.Byte(units.ICJXX)
			in["e_cnd"] = signal.Bool(true)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "mispredict")).To(BeFalse())
			Expect(boolPort(out, "bubbleD")).To(BeFalse())
			Expect(boolPort(out, "bubbleE")).To(BeFalse())
		})
	})

	Describe("return-address hazard", func() {
		It("freezes fetch and bubbles decode while RET occupies Decode", func() {
			in := baseInputs()
			in["d_icode"] = signal.Byte(units.ICRet)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "stallF")).To(BeTrue())
			Expect(boolPort(out, "bubbleD")).To(BeTrue())
			Expect(boolPort(out, "stallD")).To(BeFalse())
		})

		It("freezes fetch and bubbles decode while RET occupies Execute", func() {
			in := baseInputs()
			in["e_icode"] = signal.Byte(units.ICRet)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "stallF")).To(BeTrue())
			Expect(boolPort(out, "bubbleD")).To(BeTrue())
		})

		It("releases fetch but still bubbles decode once RET reaches Memory", func() {
			in := baseInputs()
			in["m_icode"] = signal.Byte(units.ICRet)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "stallF")).To(BeFalse())
			Expect(boolPort(out, "bubbleD")).To(BeTrue())
		})

		It("no longer bubbles decode once RET has cleared Memory", func() {
			in := baseInputs()
			in["w_dstE"] = signal.Reg(signal.NoReg)

			out, err := h.Eval(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(boolPort(out, "stallF")).To(BeFalse())
			Expect(boolPort(out, "bubbleD")).To(BeFalse())
		})
	})
})
