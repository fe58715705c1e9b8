package units_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

var _ = Describe("ALUUnit", func() {
	var alu *units.ALUUnit

	BeforeEach(func() {
		alu = units.NewALUUnit()
	})

	It("adds and reports ZF when the result is zero", func() {
		out, err := alu.Eval(units.Inputs{
			"aluA":   signal.Word(5),
			"aluB":   signal.Word(^uint64(5) + 1), // -5
			"alufun": signal.Byte(units.ALUAdd),
		})
		Expect(err).NotTo(HaveOccurred())
		v, _ := out["valE"].AsWord()
		Expect(v).To(Equal(uint64(0)))
		cc, _ := out["cc_next"].AsCC()
		Expect(cc.ZF).To(BeTrue())
	})

	It("subtracts b - a and sets SF for a negative result", func() {
		out, err := alu.Eval(units.Inputs{
			"aluA":   signal.Word(10),
			"aluB":   signal.Word(3),
			"alufun": signal.Byte(units.ALUSub),
		})
		Expect(err).NotTo(HaveOccurred())
		v, _ := out["valE"].AsWord()
		Expect(int64(v)).To(Equal(int64(-7)))
		cc, _ := out["cc_next"].AsCC()
		Expect(cc.SF).To(BeTrue())
	})
})
