package sexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/pplcheck/checks/constraints"
	"go.uber.org/pplcheck/checks/funnel"
	"go.uber.org/pplcheck/checks/randomcontrolflow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestProgram_TopLevelSampleAndFactor(t *testing.T) {
	bundle, err := Program(`
		(sample x (Normal 0 1))
		(factor (* x x))
	`, "", "")
	require.NoError(t, err)

	require.NotNil(t, bundle.TopLevel)
	samples := bundle.SampleNodes()
	require.Len(t, samples, 1)
	assert.Equal(t, "Normal", samples[0].CFG.Node(samples[0].Node).Dist.Name)

	factors := bundle.FactorNodes()
	require.Len(t, factors, 1)
}

func TestProgram_DefunRegistersNamedFunction(t *testing.T) {
	bundle, err := Program(`
		(defun model
			(sample z (Normal 0 1)))
	`, "model", "")
	require.NoError(t, err)

	g, ok := bundle.Functions["model"]
	require.True(t, ok)
	assert.Equal(t, "model", bundle.Model)
	assert.NotNil(t, g)
}

func TestProgram_UnknownModelNameIsError(t *testing.T) {
	_, err := Program(`(sample x (Normal 0 1))`, "nonexistent", "")
	require.Error(t, err)
}

// TestProgram_IfStatementWiresBranch confirms the (if...) form is lowered into a Branch whose
// test the downstream Normal's mean depends on: checks/randomcontrolflow reports exactly one
// finding for it.
func TestProgram_IfStatementWiresBranch(t *testing.T) {
	bundle, err := Program(`
		(sample coin (Bernoulli 0.5))
		(if (== coin 1)
			(assign mu 5)
			(assign mu 6))
		(sample obs (Normal mu 1))
	`, "", "")
	require.NoError(t, err)

	findings := randomcontrolflow.Check(bundle)
	require.Len(t, findings, 1)
}

// TestProgram_ConstraintViolationDetected exercises the full pipeline through
// checks/constraints: sigma bound to a negative constant violates Normal's sigma > 0
// constraint (catalog-driven, independent of this frontend).
func TestProgram_ConstraintViolationDetected(t *testing.T) {
	bundle, err := Program(`(sample x (Normal 0 -1))`, "", "")
	require.NoError(t, err)

	violations, analyzable := constraints.Check(bundle)
	require.True(t, analyzable)
	require.Len(t, violations, 1)
	assert.Equal(t, "constraints", violations[0].Check)
}

// TestProgram_FunnelShapeDetected builds the canonical centered-parameterization funnel
// shape: a scale sampled at top level, then used directly as another
// distribution's scale parameter with no log/exp reparameterization in between.
func TestProgram_FunnelShapeDetected(t *testing.T) {
	bundle, err := Program(`
		(sample tau (HalfCauchy 1))
		(sample theta (Normal 0 tau))
	`, "", "")
	require.NoError(t, err)

	findings := funnel.Check(bundle)
	require.Len(t, findings, 1)
	assert.Equal(t, "funnel", findings[0].Check)
}

func TestProgram_WhileLoopParsesAndWiresBackedge(t *testing.T) {
	bundle, err := Program(`
		(assign i 0)
		(while (< i 10)
			(assign i (+ i 1)))
	`, "", "")
	require.NoError(t, err)
	require.NotNil(t, bundle.TopLevel)
}

func TestProgram_MalformedSourceIsError(t *testing.T) {
	_, err := Program(`(sample x (Normal 0 1)`, "", "")
	require.Error(t, err)
}

func TestExpr_EvalIntervalArithmetic(t *testing.T) {
	e, err := lowerExpr(mustParseOne(t, "(+ 1 (* 2 3))"))
	require.NoError(t, err)
	iv := e.EvalInterval(nil)
	assert.Equal(t, 7.0, iv.Low)
	assert.Equal(t, 7.0, iv.High)
}

func TestExpr_FreeVariablesDeduplicatesAndSorts(t *testing.T) {
	e, err := lowerExpr(mustParseOne(t, "(+ b (+ a b))"))
	require.NoError(t, err)
	vars := e.FreeVariables()
	require.Len(t, vars, 2)
	assert.Equal(t, "a", vars[0].Name())
	assert.Equal(t, "b", vars[1].Name())
}

func mustParseOne(t *testing.T, src string) node {
	t.Helper()
	forms, err := parseAll(src)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	return forms[0]
}

