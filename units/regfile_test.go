package units_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

var _ = Describe("RegisterFileUnit", func() {
	var rf *units.RegisterFileUnit

	BeforeEach(func() {
		rf = units.NewRegisterFileUnit()
	})

	It("reads zero from an untouched register", func() {
		out, err := rf.Eval(units.Inputs{
			"srcA": signal.Reg(3),
			"srcB": signal.Reg(signal.NoReg),
		})
		Expect(err).NotTo(HaveOccurred())
		w, _ := out["valA"].AsWord()
		Expect(w).To(Equal(uint64(0)))
	})

	It("commits a write to dstE and reflects it on the next read", func() {
		err := rf.Commit(units.Outputs{
			"dstE": signal.Reg(4),
			"valE": signal.Word(42),
			"dstM": signal.Reg(signal.NoReg),
			"valM": signal.Word(0),
		})
		Expect(err).NotTo(HaveOccurred())

		out, err := rf.Eval(units.Inputs{
			"srcA": signal.Reg(4),
			"srcB": signal.Reg(signal.NoReg),
		})
		Expect(err).NotTo(HaveOccurred())
		w, _ := out["valA"].AsWord()
		Expect(w).To(Equal(uint64(42)))
	})

	It("drops writes to the sentinel register 15", func() {
		err := rf.Commit(units.Outputs{
			"dstE": signal.Reg(signal.NoReg),
			"valE": signal.Word(99),
			"dstM": signal.Reg(signal.NoReg),
			"valM": signal.Word(0),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(rf.Peek(signal.NoReg)).To(Equal(uint64(0)))
	})
})
