package ir

import (
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/symb"
)

// testExpr is a minimal Expression used only by this package's own tests, to exercise the
// builder and verifier without depending on any concrete frontend.
type testExpr struct {
	free []Variable
	c    float64
}

func constExpr(c float64) *testExpr             { return &testExpr{c: c} }
func varExpr(v Variable) *testExpr              { return &testExpr{free: []Variable{v}} }
func (e *testExpr) FreeVariables() []Variable    { return e.free }
func (e *testExpr) CallsTo(string) []CallExpression { return nil }
func (e *testExpr) Range() (int, int)            { return 0, 0 }
func (e *testExpr) Text() string                 { return "" }
func (e *testExpr) EvalInterval(map[string]ival.Interval) ival.Interval {
	return ival.Singleton(e.c)
}
func (e *testExpr) EvalSymbolic(map[string]symb.Expr) symb.Expr {
	return symb.Constant(e.c)
}

// testVar is a minimal, non-indexed Variable keyed by name.
type testVar struct{ name string }

func (v *testVar) Name() string { return v.name }
func (v *testVar) Equal(other Variable) bool {
	o, ok := other.(*testVar)
	return ok && o.name == v.name
}
func (v *testVar) Indexed() (Expression, Variable, bool) { return nil, nil, false }
func (v *testVar) StaticIndexEqual(Variable) bool        { return false }

// testTarget is a minimal, non-indexed AssignTarget wrapping a testVar.
type testTarget struct{ v *testVar }

func target(name string) *testTarget { return &testTarget{v: &testVar{name: name}} }

func (t *testTarget) EqualVar(v Variable) bool      { return t.v.Equal(v) }
func (t *testTarget) Indexed() (Expression, bool)   { return nil, false }
func (t *testTarget) Var() Variable                 { return t.v }
