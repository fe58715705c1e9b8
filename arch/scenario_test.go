package arch_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/arch"
	"github.com/sarchlab/y86sim/engine"
	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

const testMemSize = 256

func build(name string, program []byte) *engine.Machine {
	mem := units.NewMemory(testMemSize)
	Expect(mem.LoadImage(program)).To(Succeed())
	m, err := arch.Build(name, mem, 0)
	Expect(err).NotTo(HaveOccurred())
	return m
}

func regOf(m *engine.Machine, id uint8) uint64 {
	rf, ok := m.Units["regfile"].(*units.RegisterFileUnit)
	Expect(ok).To(BeTrue())
	return rf.Peek(signal.RegID(id))
}

var allArchs = []string{"seq_std", "seq_plus_std", "pipe_std"}

var _ = Describe("Halt-only program", func() {
	program := asm(halt())

	It("halts seq_std after 1 cycle", func() {
		m := build("seq_std", program)
		res, err := m.Run(20)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Halted).To(BeTrue())
		Expect(res.Cycles).To(Equal(uint64(1)))
	})

	It("halts seq_plus_std after 1 cycle", func() {
		m := build("seq_plus_std", program)
		res, err := m.Run(20)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Halted).To(BeTrue())
		Expect(res.Cycles).To(Equal(uint64(1)))
	})

	It("halts pipe_std after 5 cycles, once halt reaches writeback", func() {
		m := build("pipe_std", program)
		res, err := m.Run(20)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Halted).To(BeTrue())
		Expect(res.Cycles).To(Equal(uint64(5)))
	})
})

var _ = Describe("Immediate-to-register", func() {
	program := asm(irmovq(0x2A, regRAX), halt())

	It("writes the immediate into rax on every architecture", func() {
		for _, name := range allArchs {
			m := build(name, program)
			res, err := m.Run(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Halted).To(BeTrue())
			Expect(regOf(m, regRAX)).To(Equal(uint64(0x2A)))
		}
	})

	It("takes 2 cycles on seq_std and seq_plus_std", func() {
		for _, name := range []string{"seq_std", "seq_plus_std"} {
			m := build(name, program)
			res, err := m.Run(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Cycles).To(Equal(uint64(2)))
		}
	})

	It("takes 6 cycles on pipe_std", func() {
		m := build("pipe_std", program)
		res, err := m.Run(20)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Cycles).To(Equal(uint64(6)))
	})
})

var _ = Describe("Invalid instruction", func() {
	program := []byte{0xFF}

	It("reports Ins and halts immediately on seq_std", func() {
		m := build("seq_std", program)
		res, err := m.Run(20)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Halted).To(BeTrue())
		Expect(res.Cycles).To(Equal(uint64(1)))
		st, err := m.LastResult().Signals["stat"].AsStatus()
		Expect(err).NotTo(HaveOccurred())
		Expect(st).To(Equal(signal.StatusIns))
	})

	It("reports Ins after 5 cycles on pipe_std", func() {
		m := build("pipe_std", program)
		res, err := m.Run(20)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Halted).To(BeTrue())
		Expect(res.Cycles).To(Equal(uint64(5)))
		st, err := m.LastResult().Signals["w_status"].AsStatus()
		Expect(err).NotTo(HaveOccurred())
		Expect(st).To(Equal(signal.StatusIns))
	})
})

var _ = Describe("Memory swap via rmmovq/mrmovq", func() {
	const base = 0x80
	program := asm(
		irmovq(1, regRAX),
		irmovq(2, regRBX),
		irmovq(base, regRDI),
		rmmovq(regRAX, 0, regRDI),
		rmmovq(regRBX, 8, regRDI),
		mrmovq(0, regRDI, regRBX),
		mrmovq(8, regRDI, regRAX),
		halt(),
	)

	It("swaps the two memory words through registers on every architecture", func() {
		for _, name := range allArchs {
			m := build(name, program)
			res, err := m.Run(200)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Halted).To(BeTrue())
			Expect(regOf(m, regRAX)).To(Equal(uint64(2)))
			Expect(regOf(m, regRBX)).To(Equal(uint64(1)))
		}
	})

	It("takes exactly one cycle per instruction on seq_std", func() {
		m := build("seq_std", program)
		res, err := m.Run(200)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Cycles).To(Equal(uint64(8)))
	})
})

var _ = Describe("Load-use hazard", func() {
	const base = 0x80
	program := asm(
		irmovq(base, regRDI),
		irmovq(7, regRAX),
		rmmovq(regRAX, 0, regRDI),
		mrmovq(0, regRDI, regRBX),
		addq(regRBX, regRBX),
		halt(),
	)

	It("produces the correct sum despite the dependent load", func() {
		for _, name := range allArchs {
			m := build(name, program)
			res, err := m.Run(200)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Halted).To(BeTrue())
			Expect(regOf(m, regRBX)).To(Equal(uint64(14)))
		}
	})

	It("costs exactly one bubble cycle on pipe_std beyond the fill+retire baseline", func() {
		m := build("pipe_std", program)
		res, err := m.Run(200)
		Expect(err).NotTo(HaveOccurred())
		// 6 instructions retiring one per cycle after a 4-cycle fill,
		// plus the single load-use stall cycle before addq can decode.
		Expect(res.Cycles).To(Equal(uint64(6 + 4 + 1)))
	})
})

var _ = Describe("Load-use hazard via popq", func() {
	const base = 0xF0
	program := asm(
		irmovq(base, regRSP),
		irmovq(7, regRAX),
		pushq(regRAX),
		popq(regRBX),
		addq(regRBX, regRBX),
		halt(),
	)

	It("produces the correct sum despite the dependent pop", func() {
		for _, name := range allArchs {
			m := build(name, program)
			res, err := m.Run(200)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Halted).To(BeTrue())
			Expect(regOf(m, regRBX)).To(Equal(uint64(14)))
		}
	})

	It("costs exactly one bubble cycle on pipe_std beyond the fill+retire baseline", func() {
		m := build("pipe_std", program)
		res, err := m.Run(200)
		Expect(err).NotTo(HaveOccurred())
		// popq is a memory-read instruction exactly like mrmovq, so it
		// costs the same single load-use stall cycle.
		Expect(res.Cycles).To(Equal(uint64(6 + 4 + 1)))
	})
})

var _ = Describe("Mispredicted branch", func() {
	// subq leaves rax == 0, so jne is not taken: the predict-taken
	// fetch down the (unreachable) target path must be squashed.
	program := asm(
		irmovq(1, regRAX),
		irmovq(1, regRBX),
		subq(regRBX, regRAX), // rax = rax - rbx = 0
		jxx(units.CondNE, 42),
		irmovq(99, regRDX), // correct fall-through path
		halt(),
		// unreachable target, placed right after the fall-through block
		irmovq(77, regRDX),
		halt(),
	)

	It("takes the fall-through path and never executes the wrong-path block", func() {
		for _, name := range allArchs {
			m := build(name, program)
			res, err := m.Run(200)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Halted).To(BeTrue())
			Expect(regOf(m, regRAX)).To(Equal(uint64(0)))
			Expect(regOf(m, regRDX)).To(Equal(uint64(99)))
		}
	})

	It("costs exactly two bubble cycles on pipe_std for the predict-taken misprediction", func() {
		m := build("pipe_std", program)
		res, err := m.Run(200)
		Expect(err).NotTo(HaveOccurred())
		// 6 instructions on the correct path, 4-cycle fill, plus the
		// fixed two-bubble predict-taken misprediction penalty.
		Expect(res.Cycles).To(Equal(uint64(6 + 4 + 2)))
	})
})

var _ = Describe("Return-address hazard", func() {
	// call/ret through a small callee; the return address is only
	// known once ret's valM is read in Memory, so fetch must stay
	// frozen through D and E occupancy and then redirect immediately.
	const funcAddr = 32
	program := asm(
		irmovq(0xF0, regRSP),
		call(funcAddr),
		irmovq(5, regRAX), // executed after the call returns
		halt(),
	)
	for uint64(len(program)) < funcAddr {
		program = append(program, 0)
	}
	program = append(program, asm(irmovq(9, regRBX), ret())...)

	It("returns to the correct instruction and preserves both registers", func() {
		for _, name := range allArchs {
			m := build(name, program)
			res, err := m.Run(200)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Halted).To(BeTrue())
			Expect(regOf(m, regRBX)).To(Equal(uint64(9)))
			Expect(regOf(m, regRAX)).To(Equal(uint64(5)))
		}
	})
})
