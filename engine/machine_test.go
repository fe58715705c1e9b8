package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/engine"
	"github.com/sarchlab/y86sim/hcl"
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

// counterUnit is a minimal Stateful unit with no declared input ports:
// a zero-input leaf like the PC latch, exercised here purely to drive
// Machine mechanics without depending on the arch package's Y86-64
// wiring.
type counterUnit struct{ n uint64 }

func (u *counterUnit) Name() string { return "counter" }

func (u *counterUnit) Eval(in units.Inputs) (units.Outputs, error) {
	return units.Outputs{"n": signal.Word(u.n)}, nil
}

func (u *counterUnit) Commit(next units.Outputs) error {
	v, err := next["n_next"].AsWord()
	if err != nil {
		return err
	}
	u.n = v
	return nil
}

// buildCounterMachine wires a single counter unit that halts once it
// reaches haltAt: n_next always increments by one, and the "status"
// signal reports Hlt as soon as the pre-commit count equals haltAt.
func buildCounterMachine(haltAt uint64) (*engine.Machine, *counterUnit) {
	c := &counterUnit{}
	unitSet := map[string]units.Unit{"counter": c}

	prog := hcl.Program{
		Defs: []hcl.Def{
			{Name: "n_next", Expr: hcl.Add(hcl.FromPort("counter", "n"), hcl.Const(signal.Word(1)))},
			{Name: "status", Expr: hcl.Case(
				hcl.CaseArm{
					Cond: hcl.Eq(hcl.FromPort("counter", "n"), hcl.Const(signal.Word(haltAt))),
					Then: hcl.Const(signal.Stat(signal.StatusHlt)),
				},
				hcl.CaseArm{
					Cond: hcl.Const(signal.Bool(true)),
					Then: hcl.Const(signal.Stat(signal.StatusAok)),
				},
			)},
		},
		Wires: []hcl.Wire{
			{Unit: "counter", Input: "n_next", From: hcl.Sig("n_next")},
		},
	}

	compiled, err := hcl.Compile(prog, unitSet)
	Expect(err).NotTo(HaveOccurred())

	return engine.NewMachine(unitSet, compiled, "status"), c
}

var _ = Describe("Machine", func() {
	It("reports a nil LastResult before the first Tick", func() {
		m, _ := buildCounterMachine(3)
		Expect(m.LastResult()).To(BeNil())
		Expect(m.Cycle()).To(Equal(uint64(0)))
		Expect(m.Halted()).To(BeFalse())
	})

	It("advances the counter and its cycle count on each Tick", func() {
		m, c := buildCounterMachine(3)

		_, err := m.Tick()
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Cycle()).To(Equal(uint64(1)))
		Expect(c.n).To(Equal(uint64(1)))
		Expect(m.LastResult()).NotTo(BeNil())
		Expect(m.Halted()).To(BeFalse())
	})

	It("halts on the cycle the status signal reports a terminal status", func() {
		m, c := buildCounterMachine(3)

		for i := 0; i < 4; i++ {
			_, err := m.Tick()
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(m.Halted()).To(BeTrue())
		Expect(m.Cycle()).To(Equal(uint64(4)))
		Expect(c.n).To(Equal(uint64(4)))

		st, err := m.LastResult().Signals["status"].AsStatus()
		Expect(err).NotTo(HaveOccurred())
		Expect(st).To(Equal(signal.StatusHlt))
	})

	It("is a no-op once halted", func() {
		m, c := buildCounterMachine(3)
		for i := 0; i < 4; i++ {
			_, err := m.Tick()
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(m.Halted()).To(BeTrue())

		res, err := m.Tick()
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(m.LastResult()))
		Expect(m.Cycle()).To(Equal(uint64(4)))
		Expect(c.n).To(Equal(uint64(4)))
	})

	Describe("Run", func() {
		It("runs to completion and reports Halted when the limit is not exhausted", func() {
			m, _ := buildCounterMachine(3)
			res, err := m.Run(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Halted).To(BeTrue())
			Expect(res.Runaway).To(BeFalse())
			Expect(res.Cycles).To(Equal(uint64(4)))
		})

		It("reports Runaway when the limit is exhausted before halting", func() {
			m, _ := buildCounterMachine(3)
			res, err := m.Run(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Halted).To(BeFalse())
			Expect(res.Runaway).To(BeTrue())
			Expect(res.Cycles).To(Equal(uint64(2)))
		})

		It("returns Halted with the already-reached cycle count if called again after halting", func() {
			m, _ := buildCounterMachine(3)
			_, err := m.Run(20)
			Expect(err).NotTo(HaveOccurred())

			res, err := m.Run(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Halted).To(BeTrue())
			Expect(res.Cycles).To(Equal(uint64(4)))
		})
	})
})
