package evalengine

import (
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/symb"
)

type testExpr struct {
	free []ir.Variable
	c    float64
}

func constExpr(c float64) *testExpr   { return &testExpr{c: c} }
func varExpr(v ir.Variable) *testExpr { return &testExpr{free: []ir.Variable{v}} }

func (e *testExpr) FreeVariables() []ir.Variable             { return e.free }
func (e *testExpr) CallsTo(string) []ir.CallExpression       { return nil }
func (e *testExpr) Range() (int, int)                        { return 0, 0 }
func (e *testExpr) Text() string                              { return "" }
func (e *testExpr) EvalInterval(val map[string]ival.Interval) ival.Interval {
	if len(e.free) == 1 {
		return val[e.free[0].Name()]
	}
	return ival.Singleton(e.c)
}
func (e *testExpr) EvalSymbolic(val map[string]symb.Expr) symb.Expr {
	if len(e.free) == 1 {
		return val[e.free[0].Name()]
	}
	return symb.Constant(e.c)
}

type testCall struct {
	testExpr
	callee string
	args   []ir.Expression
}

func callExpr(callee string, args ...ir.Expression) *testCall {
	return &testCall{callee: callee, args: args}
}
func (c *testCall) Args() []ir.Expression { return c.args }
func (c *testCall) CallsTo(name string) []ir.CallExpression {
	if name == c.callee {
		return []ir.CallExpression{c}
	}
	return nil
}

type testVar struct{ name string }

func plainVar(name string) *testVar { return &testVar{name: name} }

func (v *testVar) Name() string { return v.name }
func (v *testVar) Equal(other ir.Variable) bool {
	o, ok := other.(*testVar)
	return ok && o.name == v.name
}
func (v *testVar) Indexed() (ir.Expression, ir.Variable, bool) { return nil, nil, false }
func (v *testVar) StaticIndexEqual(ir.Variable) bool           { return false }

type testTarget struct{ v *testVar }

func target(name string) *testTarget { return &testTarget{v: &testVar{name: name}} }

func (t *testTarget) EqualVar(v ir.Variable) bool    { return t.v.Equal(v) }
func (t *testTarget) Indexed() (ir.Expression, bool) { return nil, false }
func (t *testTarget) Var() ir.Variable               { return t.v }
