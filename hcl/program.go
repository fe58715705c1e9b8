package hcl

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sarchlab/y86sim/units"
)

// Def is one named-signal definition.
type Def struct {
	Name string
	Expr Expr
}

// Wire connects a signal or unit-port reference into one input of one
// unit.
type Wire struct {
	Unit  string
	Input string
	From  Ref
}

// Program is the uncompiled net: a set of named-signal definitions
// plus the wiring of those signals (and raw unit outputs) into unit
// inputs.
type Program struct {
	Defs  []Def
	Wires []Wire
}

// CompileError reports a defect found while compiling a Program. It
// wraps the underlying cause with github.com/pkg/errors so a failing
// architecture registration carries a full cause chain back to the
// caller.
type CompileError struct {
	cause error
}

func (e *CompileError) Error() string { return e.cause.Error() }
func (e *CompileError) Unwrap() error { return e.cause }

func compileErrorf(format string, args ...interface{}) error {
	return &CompileError{cause: errors.Errorf(format, args...)}
}

// node is one entry in a CompiledProgram's evaluation order: either a
// named-signal definition or a combinational unit's Eval call.
type node struct {
	def      *Def   // set when this node evaluates a named signal
	unitName string // set when this node evaluates a unit
	inputs   []Wire // wires feeding unitName's declared input ports
}

// CompiledProgram is a Program that has passed every static check and
// carries its definitions and combinational unit evaluations in a
// valid evaluation order.
type CompiledProgram struct {
	order       []node
	wires       []Wire
	unitSet     map[string]units.Unit
	commitWires map[string][]Wire
}

// Compile validates prog against unitSet (every unit named by a Wire
// or Port reference) and returns a CompiledProgram carrying a valid
// evaluation order, or a *CompileError describing the first defect
// found.
//
// Units with no declared input ports (see combinationalUnits) are
// cycle-breaking roots: a Ref naming one of their output ports always
// resolves against the value observed before this cycle began and is
// never expanded into the dependency graph, which is what lets
// stateful feedback (e.g. the condition-code register feeding a signal
// that eventually feeds its own next value) compile without being
// mistaken for a combinational cycle. Units with declared input ports,
// including Stateful ones such as the register file and data memory,
// are graph nodes exactly like named signals: their declared inputs
// may themselves be computed signals, and their outputs may feed
// further signals or other units within the same cycle.
func Compile(prog Program, unitSet map[string]units.Unit) (*CompiledProgram, error) {
	defByName := make(map[string]Def, len(prog.Defs))
	for _, d := range prog.Defs {
		if _, dup := defByName[d.Name]; dup {
			return nil, compileErrorf("hcl: duplicate signal definition %q", d.Name)
		}
		defByName[d.Name] = d
	}

	if err := checkUnitRefs(prog, unitSet); err != nil {
		return nil, err
	}
	if err := checkCaseDefaults(prog); err != nil {
		return nil, err
	}

	inputWires, commitWires, err := splitWires(prog, unitSet)
	if err != nil {
		return nil, err
	}
	if err := checkWiring(unitSet, inputWires); err != nil {
		return nil, err
	}
	if err := checkSignalRefs(prog, defByName); err != nil {
		return nil, err
	}

	order, err := topoSort(prog.Defs, defByName, unitSet, inputWires)
	if err != nil {
		return nil, err
	}

	return &CompiledProgram{order: order, wires: prog.Wires, unitSet: unitSet, commitWires: commitWires}, nil
}

// splitWires partitions a program's wires into the ones that feed a
// unit's combinational Eval (its PortLister-declared inputs) and the
// ones that feed a Stateful unit's Commit (everything else wired to
// that unit).
func splitWires(prog Program, unitSet map[string]units.Unit) (map[string][]Wire, map[string][]Wire, error) {
	inputWires := make(map[string][]Wire)
	commitWires := make(map[string][]Wire)
	for _, w := range prog.Wires {
		u, ok := unitSet[w.Unit]
		if !ok {
			return nil, nil, compileErrorf("hcl: wire target references undefined unit %q", w.Unit)
		}
		isInput := false
		if lister, ok := u.(units.PortLister); ok {
			for _, p := range lister.InputPorts() {
				if p == w.Input {
					isInput = true
					break
				}
			}
		}
		if isInput {
			inputWires[w.Unit] = append(inputWires[w.Unit], w)
		} else {
			commitWires[w.Unit] = append(commitWires[w.Unit], w)
		}
	}
	return inputWires, commitWires, nil
}

func checkCaseDefaults(prog Program) error {
	for _, d := range prog.Defs {
		if err := checkCaseDefaultsIn(d.Name, d.Expr); err != nil {
			return err
		}
	}
	return nil
}

// checkCaseDefaultsIn walks expr and every subexpression reachable
// through exprChildren, rejecting any Case — however deeply nested
// inside another Case's Cond or Then — that lacks an unconditional
// default arm. A nested Case missing its default would otherwise only
// fail at Eval time, once the missing arm is actually reached.
func checkCaseDefaultsIn(signalName string, expr Expr) error {
	if ce, ok := expr.(caseExpr); ok {
		if !ce.hasDefault() {
			return compileErrorf("hcl: signal %q: case expression has no unconditional default arm", signalName)
		}
	}
	if ec, ok := expr.(exprChildren); ok {
		for _, child := range ec.children() {
			if err := checkCaseDefaultsIn(signalName, child); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkSignalRefs(prog Program, defByName map[string]Def) error {
	check := func(refs []Ref, context string) error {
		for _, r := range refs {
			if r.isUnitPort() {
				continue // validated separately by checkUnitRefs
			}
			if _, ok := defByName[r.Signal]; !ok {
				return compileErrorf("hcl: %s references undefined signal %q", context, r.Signal)
			}
		}
		return nil
	}
	for _, d := range prog.Defs {
		if err := check(d.Expr.Deps(), "signal "+d.Name); err != nil {
			return err
		}
	}
	for _, w := range prog.Wires {
		if err := check([]Ref{w.From}, "wire "+w.Unit+"."+w.Input); err != nil {
			return err
		}
	}
	return nil
}

func checkUnitRefs(prog Program, unitSet map[string]units.Unit) error {
	checkPort := func(u, context string) error {
		if u == "" {
			return nil
		}
		if _, ok := unitSet[u]; !ok {
			return compileErrorf("hcl: %s references undefined unit %q", context, u)
		}
		return nil
	}
	for _, d := range prog.Defs {
		for _, r := range d.Expr.Deps() {
			if r.isUnitPort() {
				if err := checkPort(r.Unit, "signal "+d.Name); err != nil {
					return err
				}
			}
		}
	}
	for _, w := range prog.Wires {
		if err := checkPort(w.Unit, "wire target"); err != nil {
			return err
		}
		if w.From.isUnitPort() {
			if err := checkPort(w.From.Unit, "wire source for "+w.Unit+"."+w.Input); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkWiring(unitSet map[string]units.Unit, inputWires map[string][]Wire) error {
	for name, wires := range inputWires {
		seen := make(map[string]bool, len(wires))
		for _, w := range wires {
			if seen[w.Input] {
				return compileErrorf("hcl: input %s.%s wired more than once", name, w.Input)
			}
			seen[w.Input] = true
		}
	}
	for name, u := range unitSet {
		lister, ok := u.(units.PortLister)
		if !ok {
			continue
		}
		wired := make(map[string]bool)
		for _, w := range inputWires[name] {
			wired[w.Input] = true
		}
		for _, port := range lister.InputPorts() {
			if !wired[port] {
				return compileErrorf("hcl: unit input %s.%s is not wired", name, port)
			}
		}
	}
	return nil
}

// combinationalUnits returns the units that take at least one
// combinational input, i.e. must be scheduled in the dependency graph
// rather than evaluated as a zero-input leaf. A unit with no declared
// input ports — the pipeline stage registers, the PC latch, the
// condition-code register — takes no per-cycle inputs at all: its
// Eval reflects only state carried from before this cycle, so a Ref
// to its output is always available and never participates in a
// same-cycle cycle. This is what makes state (not the Stateful
// interface itself) the actual cycle-breaking boundary: a Stateful
// unit like the register file still has combinational read inputs
// (srcA/srcB) and is scheduled like any other unit.
func combinationalUnits(unitSet map[string]units.Unit) map[string]bool {
	combUnits := make(map[string]bool)
	for name, u := range unitSet {
		if lister, ok := u.(units.PortLister); ok && len(lister.InputPorts()) > 0 {
			combUnits[name] = true
		}
	}
	return combUnits
}

// topoSort orders every named signal and every combinational unit so
// each appears after everything it depends on.
func topoSort(defs []Def, byName map[string]Def, unitSet map[string]units.Unit, inputWires map[string][]Wire) ([]node, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	order := make([]node, 0, len(defs)+len(unitSet))

	combUnits := combinationalUnits(unitSet)

	depsOf := func(id string) ([]Ref, bool) {
		if d, ok := byName[id]; ok {
			return d.Expr.Deps(), true
		}
		if combUnits[id] {
			var refs []Ref
			for _, w := range inputWires[id] {
				refs = append(refs, w.From)
			}
			return refs, true
		}
		return nil, false
	}

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			return compileErrorf("hcl: cyclic combinational dependency involving %q", id)
		}
		color[id] = gray
		deps, ok := depsOf(id)
		if !ok {
			color[id] = black
			return nil
		}
		for _, dep := range deps {
			if dep.isUnitPort() {
				if !combUnits[dep.Unit] {
					continue // zero-input leaf: pure pre-cycle state, always available
				}
				if err := visit(dep.Unit); err != nil {
					return err
				}
				continue
			}
			if err := visit(dep.Signal); err != nil {
				return err
			}
		}
		color[id] = black
		if d, ok := byName[id]; ok {
			order = append(order, node{def: &Def{Name: d.Name, Expr: d.Expr}})
		} else if combUnits[id] {
			order = append(order, node{unitName: id, inputs: inputWires[id]})
		}
		return nil
	}

	// deterministic traversal order for reproducible error messages
	var ids []string
	for _, d := range defs {
		ids = append(ids, d.Name)
	}
	for name := range combUnits {
		ids = append(ids, name)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}
