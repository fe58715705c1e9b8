package units

import "github.com/sarchlab/y86sim/signal"

// StageRegisterUnit is a generic inter-stage pipeline latch holding an
// arbitrary named field set plus a status tag. Its commit semantics
// are the fixed (stall, bubble) table shared by every stage boundary:
// bubble wins over stall, stall holds the previous contents, and
// otherwise the latched inputs replace the previous contents.
type StageRegisterUnit struct {
	name   string
	fields map[string]signal.Value
	status signal.Status
}

// NewStageRegisterUnit creates a stage register that starts out
// bubbled (no instruction present).
func NewStageRegisterUnit(name string, fieldNames []string) *StageRegisterUnit {
	r := &StageRegisterUnit{name: name, fields: make(map[string]signal.Value, len(fieldNames))}
	r.reset(fieldNames)
	return r
}

func (r *StageRegisterUnit) reset(fieldNames []string) {
	for _, f := range fieldNames {
		r.fields[f] = zeroValueFor(f)
	}
	r.status = signal.StatusBub
}

// zeroValueFor returns a type-correct bubble value for a latched field
// name, so downstream Case/Eq expressions and unit Eval calls that
// expect a specific tag (e.g. dstE as Reg, icode as Byte) never see a
// tag mismatch while a stage register is bubbled.
func zeroValueFor(field string) signal.Value {
	switch field {
	case "rA", "rB", "dstE", "dstM":
		return signal.Reg(signal.NoReg)
	case "icode":
		return signal.Byte(ICNop)
	case "ifun":
		return signal.Byte(0)
	case "cnd":
		return signal.Bool(false)
	default:
		return signal.Word(0)
	}
}

// Name implements Unit.
func (r *StageRegisterUnit) Name() string { return r.name }

// Eval implements Unit. Takes no inputs; every latched field plus
// "status" is exposed as an output port carrying the pre-cycle value.
func (r *StageRegisterUnit) Eval(in Inputs) (Outputs, error) {
	out := make(Outputs, len(r.fields)+1)
	for k, v := range r.fields {
		out[k] = v
	}
	out["status"] = signal.Stat(r.status)
	return out, nil
}

// Commit implements Stateful. Input ports: "stall" (Bool), "bubble"
// (Bool), "status" (Status), plus one input per latched field. When
// bubble is set the register clears to Bub regardless of stall; when
// stall is set (and bubble is not) the previous contents are held;
// otherwise every field in next replaces the current contents.
func (r *StageRegisterUnit) Commit(next Outputs) error {
	bubble, err := next["bubble"].AsBool()
	if err != nil {
		return err
	}
	if bubble {
		for k := range r.fields {
			r.fields[k] = zeroValueFor(k)
		}
		r.status = signal.StatusBub
		return nil
	}

	stall, err := next["stall"].AsBool()
	if err != nil {
		return err
	}
	if stall {
		return nil
	}

	for k := range r.fields {
		if v, ok := next[k]; ok {
			r.fields[k] = v
		}
	}
	if st, ok := next["status"]; ok {
		s, err := st.AsStatus()
		if err != nil {
			return err
		}
		r.status = s
	}
	return nil
}

// Status returns the pre-cycle status latched in this register.
func (r *StageRegisterUnit) Status() signal.Status { return r.status }

// Field returns the pre-cycle value of a latched field.
func (r *StageRegisterUnit) Field(name string) signal.Value { return r.fields[name] }

// Fields returns a copy of every latched field, for trace export.
func (r *StageRegisterUnit) Fields() map[string]signal.Value {
	out := make(map[string]signal.Value, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}
