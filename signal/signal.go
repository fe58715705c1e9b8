// Package signal defines the tagged values that flow along the wires of
// an HCL net: words, bytes, register identifiers, condition codes and
// the five-way stage status.
package signal

import (
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Tag identifies the concrete shape carried by a Value.
type Tag uint8

// The closed set of value shapes a signal can carry.
const (
	TagWord Tag = iota
	TagByte
	TagRegID
	TagBool
	TagCC
	TagStatus
)

func (t Tag) String() string {
	switch t {
	case TagWord:
		return "Word"
	case TagByte:
		return "Byte"
	case TagRegID:
		return "RegID"
	case TagBool:
		return "Bool"
	case TagCC:
		return "CC"
	case TagStatus:
		return "Status"
	default:
		return "Unknown"
	}
}

// RegID is a 4-bit architectural register number. 15 is the "no
// register" sentinel: reads of it yield 0 and writes to it are
// suppressed.
type RegID uint8

// NoReg is the Y86-64 register-file sentinel value.
const NoReg RegID = 15

// Valid reports whether id names a writable, readable architectural
// register (i.e. is not the sentinel).
func (id RegID) Valid() bool { return id != NoReg }

// CC bundles the three condition-code flags set by subtract-like ALU
// operations.
type CC struct {
	ZF, SF, OF bool
}

// Status is the outcome a pipeline stage reports for the instruction
// occupying it this cycle.
type Status uint8

// The closed set of stage outcomes.
const (
	StatusBub Status = iota // bubble: no instruction present
	StatusAok                // normal execution
	StatusHlt                // halt instruction retired
	StatusAdr                // invalid memory address
	StatusIns                // invalid instruction
)

func (s Status) String() string {
	switch s {
	case StatusBub:
		return "BUB"
	case StatusAok:
		return "AOK"
	case StatusHlt:
		return "HLT"
	case StatusAdr:
		return "ADR"
	case StatusIns:
		return "INS"
	default:
		return "???"
	}
}

// Terminal reports whether s ends simulation once it reaches the
// writeback stage.
func (s Status) Terminal() bool {
	return s == StatusHlt || s == StatusAdr || s == StatusIns
}

// Value is a tagged union over the value shapes an HCL signal or unit
// port can carry. The zero Value is a Word of 0.
type Value struct {
	tag   Tag
	word  uint64
	b     uint8
	reg   RegID
	bl    bool
	cc    CC
	stat  Status
}

// Tag reports the shape carried by v.
func (v Value) Tag() Tag { return v.tag }

// Word constructs a Word-tagged value.
func Word(w uint64) Value { return Value{tag: TagWord, word: w} }

// Byte constructs a Byte-tagged value.
func Byte(b uint8) Value { return Value{tag: TagByte, b: b} }

// Reg constructs a RegID-tagged value.
func Reg(id RegID) Value { return Value{tag: TagRegID, reg: id} }

// Bool constructs a Bool-tagged value.
func Bool(b bool) Value { return Value{tag: TagBool, bl: b} }

// Cond constructs a CC-tagged value.
func Cond(cc CC) Value { return Value{tag: TagCC, cc: cc} }

// Stat constructs a Status-tagged value.
func Stat(s Status) Value { return Value{tag: TagStatus, stat: s} }

// AsWord returns v's payload as a Word, or an error if v is not
// Word-tagged.
func (v Value) AsWord() (uint64, error) {
	if v.tag != TagWord {
		return 0, fmt.Errorf("signal: AsWord: value is %s, not Word", v.tag)
	}
	return v.word, nil
}

// AsByte returns v's payload as a Byte, or an error if v is not
// Byte-tagged.
func (v Value) AsByte() (uint8, error) {
	if v.tag != TagByte {
		return 0, fmt.Errorf("signal: AsByte: value is %s, not Byte", v.tag)
	}
	return v.b, nil
}

// AsReg returns v's payload as a RegID, or an error if v is not
// RegID-tagged.
func (v Value) AsReg() (RegID, error) {
	if v.tag != TagRegID {
		return 0, fmt.Errorf("signal: AsReg: value is %s, not RegID", v.tag)
	}
	return v.reg, nil
}

// AsBool returns v's payload as a Bool, or an error if v is not
// Bool-tagged.
func (v Value) AsBool() (bool, error) {
	if v.tag != TagBool {
		return false, fmt.Errorf("signal: AsBool: value is %s, not Bool", v.tag)
	}
	return v.bl, nil
}

// AsCC returns v's payload as a CC bundle, or an error if v is not
// CC-tagged.
func (v Value) AsCC() (CC, error) {
	if v.tag != TagCC {
		return CC{}, fmt.Errorf("signal: AsCC: value is %s, not CC", v.tag)
	}
	return v.cc, nil
}

// AsStatus returns v's payload as a Status, or an error if v is not
// Status-tagged.
func (v Value) AsStatus() (Status, error) {
	if v.tag != TagStatus {
		return 0, fmt.Errorf("signal: AsStatus: value is %s, not Status", v.tag)
	}
	return v.stat, nil
}

// wireValue is the JSON/YAML wire shape for a Value: a tag name plus
// whatever payload that tag carries, rendered as a plain scalar so
// exported traces stay human-readable.
type wireValue struct {
	Tag   string `json:"tag" yaml:"tag"`
	Word  uint64 `json:"word,omitempty" yaml:"word,omitempty"`
	Byte  uint8  `json:"byte,omitempty" yaml:"byte,omitempty"`
	Reg   uint8  `json:"reg,omitempty" yaml:"reg,omitempty"`
	Bool  bool   `json:"bool,omitempty" yaml:"bool,omitempty"`
	CC    *CC    `json:"cc,omitempty" yaml:"cc,omitempty"`
	Stat  string `json:"status,omitempty" yaml:"status,omitempty"`
}

func (v Value) toWire() wireValue {
	w := wireValue{Tag: v.tag.String()}
	switch v.tag {
	case TagWord:
		w.Word = v.word
	case TagByte:
		w.Byte = v.b
	case TagRegID:
		w.Reg = uint8(v.reg)
	case TagBool:
		w.Bool = v.bl
	case TagCC:
		w.CC = &v.cc
	case TagStatus:
		w.Stat = v.stat.String()
	}
	return w
}

func tagFromString(s string) (Tag, error) {
	for t := TagWord; t <= TagStatus; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("signal: unknown tag %q", s)
}

func (w wireValue) toValue() (Value, error) {
	tag, err := tagFromString(w.Tag)
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case TagWord:
		return Word(w.Word), nil
	case TagByte:
		return Byte(w.Byte), nil
	case TagRegID:
		return Reg(RegID(w.Reg)), nil
	case TagBool:
		return Bool(w.Bool), nil
	case TagCC:
		if w.CC == nil {
			return Cond(CC{}), nil
		}
		return Cond(*w.CC), nil
	case TagStatus:
		for s := StatusBub; s <= StatusIns; s++ {
			if s.String() == w.Stat {
				return Stat(s), nil
			}
		}
		return Value{}, fmt.Errorf("signal: unknown status %q", w.Stat)
	default:
		return Value{}, fmt.Errorf("signal: unknown tag %q", w.Tag)
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toWire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	val, err := w.toValue()
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.toWire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var w wireValue
	if err := node.Decode(&w); err != nil {
		return err
	}
	val, err := w.toValue()
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// String renders v for trace output.
func (v Value) String() string {
	switch v.tag {
	case TagWord:
		return fmt.Sprintf("%#x", v.word)
	case TagByte:
		return fmt.Sprintf("%#02x", v.b)
	case TagRegID:
		if v.reg == NoReg {
			return "%none"
		}
		return fmt.Sprintf("%%r%d", v.reg)
	case TagBool:
		return fmt.Sprintf("%t", v.bl)
	case TagCC:
		return fmt.Sprintf("{ZF:%t SF:%t OF:%t}", v.cc.ZF, v.cc.SF, v.cc.OF)
	case TagStatus:
		return v.stat.String()
	default:
		return "<invalid>"
	}
}
