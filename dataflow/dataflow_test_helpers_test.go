package dataflow

import (
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/symb"
)

// testExpr is a minimal Expression used only by this package's own tests.
type testExpr struct {
	free  []ir.Variable
	calls map[string][]ir.CallExpression
	c     float64
}

func constExpr(c float64) *testExpr { return &testExpr{c: c} }
func varExpr(v ir.Variable) *testExpr { return &testExpr{free: []ir.Variable{v}} }

func (e *testExpr) FreeVariables() []ir.Variable { return e.free }
func (e *testExpr) CallsTo(name string) []ir.CallExpression {
	if e.calls == nil {
		return nil
	}
	return e.calls[name]
}
func (e *testExpr) Range() (int, int) { return 0, 0 }
func (e *testExpr) Text() string      { return "" }
func (e *testExpr) EvalInterval(map[string]ival.Interval) ival.Interval {
	return ival.Singleton(e.c)
}
func (e *testExpr) EvalSymbolic(map[string]symb.Expr) symb.Expr {
	return symb.Constant(e.c)
}

// testCall is a minimal CallExpression wrapping a testExpr with an argument list.
type testCall struct {
	testExpr
	args []ir.Expression
}

func callExpr(args ...ir.Expression) *testCall {
	return &testCall{args: args}
}
func (c *testCall) Args() []ir.Expression { return c.args }

// testVar is a minimal, possibly-indexed Variable keyed by name (+ static index for indexed
// forms, compared by value so two references to "x[1]" are StaticIndexEqual but "x[1]" and
// "x[i]" — a non-constant index — are not, matching the conservative-false requirement).
type testVar struct {
	name        string
	indexed     bool
	staticIndex int // meaningful only when indexed
	base        *testVar
}

func plainVar(name string) *testVar { return &testVar{name: name} }
func indexedVar(base *testVar, idx int) *testVar {
	return &testVar{name: base.name, indexed: true, staticIndex: idx, base: base}
}

func (v *testVar) Name() string { return v.name }
func (v *testVar) Equal(other ir.Variable) bool {
	o, ok := other.(*testVar)
	return ok && o.name == v.name
}
func (v *testVar) Indexed() (ir.Expression, ir.Variable, bool) {
	if !v.indexed {
		return nil, nil, false
	}
	return constExpr(float64(v.staticIndex)), v.base, true
}
func (v *testVar) StaticIndexEqual(other ir.Variable) bool {
	o, ok := other.(*testVar)
	if !ok || !v.indexed || !o.indexed {
		return false
	}
	return v.name == o.name && v.staticIndex == o.staticIndex
}

// testTarget is a minimal AssignTarget wrapping a testVar.
type testTarget struct{ v *testVar }

func target(v *testVar) *testTarget { return &testTarget{v: v} }

func (t *testTarget) EqualVar(v ir.Variable) bool { return t.v.Equal(v) }
func (t *testTarget) Indexed() (ir.Expression, bool) {
	e, _, ok := t.v.Indexed()
	return e, ok
}
func (t *testTarget) Var() ir.Variable { return t.v }
