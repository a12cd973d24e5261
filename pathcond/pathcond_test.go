package pathcond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/pplcheck/evalengine"
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/symb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testExpr struct {
	free []ir.Variable
	c    float64
	sym  string
}

func constExpr(c float64) *testExpr { return &testExpr{c: c} }
func symVar(name string, v ir.Variable) *testExpr {
	return &testExpr{free: []ir.Variable{v}, sym: name}
}

func (e *testExpr) FreeVariables() []ir.Variable       { return e.free }
func (e *testExpr) CallsTo(string) []ir.CallExpression { return nil }
func (e *testExpr) Range() (int, int)                  { return 0, 0 }
func (e *testExpr) Text() string                       { return "" }
func (e *testExpr) EvalInterval(val map[string]ival.Interval) ival.Interval {
	return ival.Singleton(e.c)
}
func (e *testExpr) EvalSymbolic(val map[string]symb.Expr) symb.Expr {
	if len(e.free) == 1 {
		return symb.Symbol(e.free[0].Name(), symb.Bool)
	}
	return symb.Constant(e.c)
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

func TestOf_DiamondThenArmYieldsPositiveTest(t *testing.T) {
	b := ir.NewBuilder()
	cond := plainVar("cond")

	then := b.Straight(ir.KindExpr, nil)
	els := b.Straight(ir.KindExpr, nil)
	ifFrag := b.If(symVar("cond", cond), then, els, true)
	require.NoError(t, b.TopLevel(ifFrag))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G
	d := evalengine.New(bundle, evalengine.Symbolic)

	got, err := Of(d, "", b.G, then.Entry)
	require.NoError(t, err)
	assert.Equal(t, symb.Symbol("cond", symb.Bool), got)
}

func TestOf_DiamondElseArmYieldsNegatedTest(t *testing.T) {
	b := ir.NewBuilder()
	cond := plainVar("cond")

	then := b.Straight(ir.KindExpr, nil)
	els := b.Straight(ir.KindExpr, nil)
	ifFrag := b.If(symVar("cond", cond), then, els, true)
	require.NoError(t, b.TopLevel(ifFrag))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G
	d := evalengine.New(bundle, evalengine.Symbolic)

	got, err := Of(d, "", b.G, els.Entry)
	require.NoError(t, err)
	assert.Equal(t, symb.Not(symb.Symbol("cond", symb.Bool)), got)
}

func TestOf_PastJoinHasNoConstraint(t *testing.T) {
	b := ir.NewBuilder()
	cond := plainVar("cond")

	then := b.Straight(ir.KindExpr, nil)
	els := b.Straight(ir.KindExpr, nil)
	ifFrag := b.If(symVar("cond", cond), then, els, true)
	after := b.Straight(ir.KindExpr, nil)
	whole := b.Seq(ifFrag, after)
	require.NoError(t, b.TopLevel(whole))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G
	d := evalengine.New(bundle, evalengine.Symbolic)

	got, err := Of(d, "", b.G, after.Entry)
	require.NoError(t, err)
	assert.Equal(t, symb.True, got)
}
