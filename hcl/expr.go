// Package hcl models the hardware control language net: named signal
// definitions built from a small expression algebra, wiring of those
// signals into unit inputs, and compilation into a topologically
// ordered, validated program the engine package can evaluate one
// cycle at a time.
package hcl

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/y86sim/signal"
	"github.com/sarchlab/y86sim/units"
)

// Ref names something an Expr can depend on: either another named
// signal or a unit's output port.
type Ref struct {
	Signal string // set when this ref names a Def
	Unit   string // set together with Port when this ref names a unit output
	Port   string
}

// Sig references another named signal definition.
func Sig(name string) Ref { return Ref{Signal: name} }

// Port references a unit's output port.
func Port(unit, port string) Ref { return Ref{Unit: unit, Port: port} }

func (r Ref) String() string {
	if r.Signal != "" {
		return r.Signal
	}
	return r.Unit + "." + r.Port
}

func (r Ref) isUnitPort() bool { return r.Unit != "" }

// Context is the evaluation-time lookup the engine supplies: resolved
// named-signal values computed so far this cycle, and unit outputs
// memoized from the pre-cycle state or from this cycle's Eval calls.
type Context struct {
	Signals map[string]signal.Value
	Ports   map[string]units.Outputs // unit name -> its outputs for this cycle
}

func (c *Context) resolve(r Ref) (signal.Value, error) {
	if r.isUnitPort() {
		outs, ok := c.Ports[r.Unit]
		if !ok {
			return signal.Value{}, errors.Errorf("hcl: unit %q has no outputs in this cycle", r.Unit)
		}
		v, ok := outs[r.Port]
		if !ok {
			return signal.Value{}, errors.Errorf("hcl: unit %q has no output port %q", r.Unit, r.Port)
		}
		return v, nil
	}
	v, ok := c.Signals[r.Signal]
	if !ok {
		return signal.Value{}, errors.Errorf("hcl: signal %q not yet evaluated", r.Signal)
	}
	return v, nil
}

// Expr is one node of a signal's defining expression.
type Expr interface {
	Eval(ctx *Context) (signal.Value, error)
	Deps() []Ref
}

// exprChildren is implemented by composite Expr types so
// checkCaseDefaults can recurse into subexpressions — in particular a
// Case expression nested inside another Case arm's Cond or Then — to
// find every nested case, not just a Def's top-level one. Leaf
// expressions (Const, FromSig, FromPort) need not implement it.
type exprChildren interface {
	children() []Expr
}

// --- leaves ---

type constExpr struct{ v signal.Value }

// Const wraps a literal value as an Expr.
func Const(v signal.Value) Expr { return constExpr{v} }

func (e constExpr) Eval(ctx *Context) (signal.Value, error) { return e.v, nil }
func (e constExpr) Deps() []Ref                             { return nil }

type refExpr struct{ ref Ref }

// FromSig reads another named signal.
func FromSig(name string) Expr { return refExpr{Sig(name)} }

// FromPort reads a unit's output port.
func FromPort(unit, port string) Expr { return refExpr{Port(unit, port)} }

func (e refExpr) Eval(ctx *Context) (signal.Value, error) { return ctx.resolve(e.ref) }
func (e refExpr) Deps() []Ref                             { return []Ref{e.ref} }

// --- boolean / arithmetic combinators ---

type binWordExpr struct {
	a, b Expr
	op   func(a, b uint64) uint64
}

func binWord(a, b Expr, op func(a, b uint64) uint64) Expr {
	return binWordExpr{a, b, op}
}

// Add builds a Word-valued a+b expression.
func Add(a, b Expr) Expr { return binWord(a, b, func(x, y uint64) uint64 { return x + y }) }

// Sub builds a Word-valued a-b expression.
func Sub(a, b Expr) Expr { return binWord(a, b, func(x, y uint64) uint64 { return x - y }) }

func (e binWordExpr) Eval(ctx *Context) (signal.Value, error) {
	av, err := e.a.Eval(ctx)
	if err != nil {
		return signal.Value{}, err
	}
	bv, err := e.b.Eval(ctx)
	if err != nil {
		return signal.Value{}, err
	}
	aw, err := av.AsWord()
	if err != nil {
		return signal.Value{}, err
	}
	bw, err := bv.AsWord()
	if err != nil {
		return signal.Value{}, err
	}
	return signal.Word(e.op(aw, bw)), nil
}

func (e binWordExpr) Deps() []Ref { return append(e.a.Deps(), e.b.Deps()...) }

func (e binWordExpr) children() []Expr { return []Expr{e.a, e.b} }

type boolExpr struct {
	terms []Expr
	fold  func(acc, v bool) bool
	init  bool
}

// And builds a Bool-valued conjunction of terms.
func And(terms ...Expr) Expr {
	return boolExpr{terms: terms, fold: func(acc, v bool) bool { return acc && v }, init: true}
}

// Or builds a Bool-valued disjunction of terms.
func Or(terms ...Expr) Expr {
	return boolExpr{terms: terms, fold: func(acc, v bool) bool { return acc || v }, init: false}
}

func (e boolExpr) Eval(ctx *Context) (signal.Value, error) {
	acc := e.init
	for _, t := range e.terms {
		v, err := t.Eval(ctx)
		if err != nil {
			return signal.Value{}, err
		}
		b, err := v.AsBool()
		if err != nil {
			return signal.Value{}, err
		}
		acc = e.fold(acc, b)
	}
	return signal.Bool(acc), nil
}

func (e boolExpr) Deps() []Ref {
	var deps []Ref
	for _, t := range e.terms {
		deps = append(deps, t.Deps()...)
	}
	return deps
}

func (e boolExpr) children() []Expr { return e.terms }

type notExpr struct{ x Expr }

// Not builds a Bool-valued negation.
func Not(x Expr) Expr { return notExpr{x} }

func (e notExpr) Eval(ctx *Context) (signal.Value, error) {
	v, err := e.x.Eval(ctx)
	if err != nil {
		return signal.Value{}, err
	}
	b, err := v.AsBool()
	if err != nil {
		return signal.Value{}, err
	}
	return signal.Bool(!b), nil
}

func (e notExpr) Deps() []Ref { return e.x.Deps() }

func (e notExpr) children() []Expr { return []Expr{e.x} }

type eqExpr struct {
	a, b Expr
	neq  bool
}

// Eq builds a Bool-valued equality test between two same-tagged exprs.
func Eq(a, b Expr) Expr { return eqExpr{a, b, false} }

// Neq builds a Bool-valued inequality test.
func Neq(a, b Expr) Expr { return eqExpr{a, b, true} }

func (e eqExpr) Eval(ctx *Context) (signal.Value, error) {
	av, err := e.a.Eval(ctx)
	if err != nil {
		return signal.Value{}, err
	}
	bv, err := e.b.Eval(ctx)
	if err != nil {
		return signal.Value{}, err
	}
	eq, err := valuesEqual(av, bv)
	if err != nil {
		return signal.Value{}, err
	}
	if e.neq {
		eq = !eq
	}
	return signal.Bool(eq), nil
}

func (e eqExpr) Deps() []Ref { return append(e.a.Deps(), e.b.Deps()...) }

func (e eqExpr) children() []Expr { return []Expr{e.a, e.b} }

func valuesEqual(a, b signal.Value) (bool, error) {
	if a.Tag() != b.Tag() {
		return false, errors.Errorf("hcl: cannot compare %s to %s", a.Tag(), b.Tag())
	}
	switch a.Tag() {
	case signal.TagWord:
		aw, _ := a.AsWord()
		bw, _ := b.AsWord()
		return aw == bw, nil
	case signal.TagByte:
		ab, _ := a.AsByte()
		bb, _ := b.AsByte()
		return ab == bb, nil
	case signal.TagRegID:
		ar, _ := a.AsReg()
		br, _ := b.AsReg()
		return ar == br, nil
	case signal.TagBool:
		abl, _ := a.AsBool()
		bbl, _ := b.AsBool()
		return abl == bbl, nil
	case signal.TagStatus:
		as, _ := a.AsStatus()
		bs, _ := b.AsStatus()
		return as == bs, nil
	default:
		return false, errors.Errorf("hcl: values of tag %s are not comparable", a.Tag())
	}
}

// In builds a Bool-valued "x equals one of vals" expression, the HCL
// idiom for "icode in { ICJXX, ICCall }"-style membership tests.
func In(x Expr, vals ...Expr) Expr {
	terms := make([]Expr, len(vals))
	for i, v := range vals {
		terms[i] = Eq(x, v)
	}
	return Or(terms...)
}

type ccFieldExpr struct {
	x     Expr
	field int
}

const (
	ccZF = iota
	ccSF
	ccOF
)

// CCZF extracts the ZF flag from a CC-tagged expression as a Bool.
func CCZF(x Expr) Expr { return ccFieldExpr{x, ccZF} }

// CCSF extracts the SF flag from a CC-tagged expression as a Bool.
func CCSF(x Expr) Expr { return ccFieldExpr{x, ccSF} }

// CCOF extracts the OF flag from a CC-tagged expression as a Bool.
func CCOF(x Expr) Expr { return ccFieldExpr{x, ccOF} }

func (e ccFieldExpr) Eval(ctx *Context) (signal.Value, error) {
	v, err := e.x.Eval(ctx)
	if err != nil {
		return signal.Value{}, err
	}
	cc, err := v.AsCC()
	if err != nil {
		return signal.Value{}, err
	}
	switch e.field {
	case ccZF:
		return signal.Bool(cc.ZF), nil
	case ccSF:
		return signal.Bool(cc.SF), nil
	default:
		return signal.Bool(cc.OF), nil
	}
}

func (e ccFieldExpr) Deps() []Ref { return e.x.Deps() }

func (e ccFieldExpr) children() []Expr { return []Expr{e.x} }

// CaseArm is one arm of a priority-cased signal definition.
type CaseArm struct {
	Cond Expr
	Then Expr
}

type caseExpr struct{ arms []CaseArm }

// Case builds a priority-cased expression: arms are tested in order
// and the first whose Cond evaluates true supplies the value. The
// last arm's Cond must be Const(signal.Bool(true)) — Compile rejects
// programs missing that unconditional default.
func Case(arms ...CaseArm) Expr { return caseExpr{arms} }

func (e caseExpr) Eval(ctx *Context) (signal.Value, error) {
	for _, arm := range e.arms {
		cv, err := arm.Cond.Eval(ctx)
		if err != nil {
			return signal.Value{}, err
		}
		b, err := cv.AsBool()
		if err != nil {
			return signal.Value{}, err
		}
		if b {
			return arm.Then.Eval(ctx)
		}
	}
	return signal.Value{}, errors.New("hcl: case expression fell through with no matching arm")
}

func (e caseExpr) Deps() []Ref {
	var deps []Ref
	for _, arm := range e.arms {
		deps = append(deps, arm.Cond.Deps()...)
		deps = append(deps, arm.Then.Deps()...)
	}
	return deps
}

func (e caseExpr) children() []Expr {
	children := make([]Expr, 0, len(e.arms)*2)
	for _, arm := range e.arms {
		children = append(children, arm.Cond, arm.Then)
	}
	return children
}

// hasDefault reports whether the last arm is an unconditional default.
func (e caseExpr) hasDefault() bool {
	if len(e.arms) == 0 {
		return false
	}
	last := e.arms[len(e.arms)-1].Cond
	c, ok := last.(constExpr)
	if !ok {
		return false
	}
	b, err := c.v.AsBool()
	return err == nil && b
}
