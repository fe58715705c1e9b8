package units

import "github.com/sarchlab/y86sim/signal"

// DataMemoryUnit exposes the shared Memory to the data path. The
// combinational side (Eval) validates the address for whichever
// operation is requested this cycle and, for reads, returns the
// loaded word; the write itself is posted atomically in Commit. A
// write to an address Eval already flagged invalid is silently
// dropped by Commit — the "dmem_error" status this cycle has already
// been wired to halt the machine, so the attempted write's outcome is
// unobservable.
type DataMemoryUnit struct {
	mem *Memory
}

// NewDataMemoryUnit creates a DataMemoryUnit backed by mem.
func NewDataMemoryUnit(mem *Memory) *DataMemoryUnit {
	return &DataMemoryUnit{mem: mem}
}

// Name implements Unit.
func (u *DataMemoryUnit) Name() string { return "dmem" }

// InputPorts implements PortLister.
func (u *DataMemoryUnit) InputPorts() []string { return []string{"addr", "mem_read", "mem_write"} }

// Eval implements Unit. Output ports: "valM" (Word), "dmem_error" (Bool).
func (u *DataMemoryUnit) Eval(in Inputs) (Outputs, error) {
	read, err := in["mem_read"].AsBool()
	if err != nil {
		return nil, err
	}
	write, err := in["mem_write"].AsBool()
	if err != nil {
		return nil, err
	}
	if !read && !write {
		return Outputs{"valM": signal.Word(0), "dmem_error": signal.Bool(false)}, nil
	}
	addr, err := in["addr"].AsWord()
	if err != nil {
		return nil, err
	}
	if !u.mem.InBounds(addr, 8) {
		return Outputs{"valM": signal.Word(0), "dmem_error": signal.Bool(true)}, nil
	}
	if !read {
		return Outputs{"valM": signal.Word(0), "dmem_error": signal.Bool(false)}, nil
	}
	v, err := u.mem.ReadWord(addr)
	if err != nil {
		return Outputs{"valM": signal.Word(0), "dmem_error": signal.Bool(true)}, nil
	}
	return Outputs{"valM": signal.Word(v), "dmem_error": signal.Bool(false)}, nil
}

// Commit implements Stateful. Input ports: "addr_commit" (Word),
// "data_in" (Word), "mem_write_commit" (Bool) — both separate port
// names from Eval's "addr"/"mem_write" so the same HCL-computed
// signals can be wired once as combinational inputs and once as
// commit inputs; "addr" is a PortLister-declared input port and would
// never reach Commit's next map if reused here (hcl.splitWires routes
// a given wire to exactly one of Eval or Commit, never both).
func (u *DataMemoryUnit) Commit(next Outputs) error {
	write, err := next["mem_write_commit"].AsBool()
	if err != nil {
		return err
	}
	if !write {
		return nil
	}
	addr, err := next["addr_commit"].AsWord()
	if err != nil {
		return err
	}
	if !u.mem.InBounds(addr, 8) {
		return nil
	}
	data, err := next["data_in"].AsWord()
	if err != nil {
		return err
	}
	return u.mem.WriteWord(addr, data)
}
