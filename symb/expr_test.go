package symb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNotCancelsDoubleNegation(t *testing.T) {
	x := Symbol("x", Bool)
	once := Not(x)
	assert.True(t, once.IsOp())
	twice := Not(once)
	assert.True(t, Equal(x, twice), "Not(Not(x)) should cancel to x")
}

func TestStructuralEquality(t *testing.T) {
	a := MakeOp("+", Symbol("x", Real), Constant(1))
	b := MakeOp("+", Symbol("x", Real), Constant(1))
	c := MakeOp("+", Constant(1), Symbol("x", Real))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c), "operand order matters for structural equality")
}

func TestRoundTripSerialization(t *testing.T) {
	cases := []Expr{
		Symbol("mu", Real),
		Constant(3.5),
		MakeOp("+", Symbol("x", Real), Constant(1)),
		IfElse(Symbol("b", Bool), Constant(1), Constant(0)),
		Not(Symbol("b", Bool)),
		And(Symbol("a", Bool), Symbol("b", Bool), Symbol("c", Bool)),
	}
	for _, e := range cases {
		s := e.String()
		back, err := Parse(s)
		require.NoError(t, err, s)
		assert.True(t, Equal(e, back), "round trip mismatch for %s -> %s", s, back.String())
	}
}

func TestFreeSymbols(t *testing.T) {
	e := MakeOp("+", Symbol("x", Real), MakeOp("*", Symbol("y", Real), Symbol("x", Real)))
	assert.Equal(t, []string{"x", "y"}, FreeSymbols(e))
}

func TestGenerator(t *testing.T) {
	g := NewGenerator("s")
	s1 := g.For("nodeA", Real)
	s2 := g.For("nodeA", Real)
	s3 := g.For("nodeB", Real)

	assert.True(t, Equal(s1, s2), "same key must return the same symbol")
	assert.False(t, Equal(s1, s3))

	got, ok := g.Lookup("nodeA")
	require.True(t, ok)
	assert.True(t, Equal(got, s1))
}

func TestAndOrEmpty(t *testing.T) {
	assert.True(t, Equal(True, And()))
	assert.True(t, Equal(False, Or()))
}
