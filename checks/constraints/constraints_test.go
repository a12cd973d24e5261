package constraints

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/pplcheck/ir"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleNode(b *ir.Builder, varName string, dist *ir.Distribution) ir.Fragment {
	return b.Straight(ir.KindSample, func(n *ir.Node) {
		n.Target = target(varName)
		n.Dist = dist
	})
}

func TestCheck_NegativeSigmaViolatesCatalogRange(t *testing.T) {
	b := ir.NewBuilder()
	sigma := rangedConst(-2, 10, 12)
	dist := &ir.Distribution{
		Name:       "Normal",
		ParamOrder: []string{"mu", "sigma"},
		Params:     map[string]ir.Expression{"mu": constExpr(0), "sigma": sigma},
	}
	s := sampleNode(b, "x", dist)
	require.NoError(t, b.TopLevel(s))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G

	violations, analyzable := Check(bundle)
	assert.True(t, analyzable)
	require.Len(t, violations, 1)
	assert.Equal(t, "constraints", violations[0].Check)
	assert.Equal(t, 10, violations[0].Primary().First)
	assert.Equal(t, 12, violations[0].Primary().Last)
}

func TestCheck_WithinRangeParametersProduceNoViolation(t *testing.T) {
	b := ir.NewBuilder()
	dist := &ir.Distribution{
		Name:       "Normal",
		ParamOrder: []string{"mu", "sigma"},
		Params:     map[string]ir.Expression{"mu": constExpr(0), "sigma": constExpr(1)},
	}
	s := sampleNode(b, "x", dist)
	require.NoError(t, b.TopLevel(s))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G

	violations, analyzable := Check(bundle)
	assert.True(t, analyzable)
	assert.Empty(t, violations)
}

func TestCheck_UncataloguedDistributionMarksNotAnalyzable(t *testing.T) {
	b := ir.NewBuilder()
	dist := &ir.Distribution{
		Name:       "SomeBespokeDistribution",
		ParamOrder: []string{"k"},
		Params:     map[string]ir.Expression{"k": constExpr(1)},
	}
	s := sampleNode(b, "x", dist)
	require.NoError(t, b.TopLevel(s))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G

	violations, analyzable := Check(bundle)
	assert.False(t, analyzable)
	assert.Empty(t, violations)
}

// TestCheck_SupportAssumptionNarrowsLaterParameterEstimate builds two sample nodes where the
// second's parameter expression reads the first's sampled variable. Bernoulli's support is
// DiscreteGreaterEqThan(0), i.e. [0, +Inf) — a strict subset of the unconstrained ival.Full a
// naive evaluator would fall back to. Beta's alpha parameter requires GreaterThan(0), whose
// interval projection is also [0, +Inf). Using Full as the estimate for "k" would incorrectly
// report alpha's range as [-Inf, +Inf], which is NOT a subset of [0, +Inf) and would produce a
// false-positive violation; using the resolved support assumption keeps the estimate at
// [0, +Inf), which is within bounds. This test fails if the assumptions map is not wired.
func TestCheck_SupportAssumptionNarrowsLaterParameterEstimate(t *testing.T) {
	b := ir.NewBuilder()
	k := plainVar("k")

	bernoulli := &ir.Distribution{
		Name:       "Bernoulli",
		ParamOrder: []string{"p"},
		Params:     map[string]ir.Expression{"p": constExpr(0.5)},
	}
	kSample := sampleNode(b, "k", bernoulli)

	beta := &ir.Distribution{
		Name:       "Beta",
		ParamOrder: []string{"alpha", "beta"},
		Params:     map[string]ir.Expression{"alpha": varExpr(k), "beta": constExpr(2)},
	}
	aSample := sampleNode(b, "a", beta)

	whole := b.Seq(kSample, aSample)
	require.NoError(t, b.TopLevel(whole))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G

	violations, analyzable := Check(bundle)
	assert.True(t, analyzable)
	assert.Empty(t, violations)
}

// TestCheck_ResolvedParamDependentSupportFlagsDownstreamViolation mirrors the previous test but
// with a Uniform(low=-5, high=-1) first sample: its support is ParamDependentInterval("low",
// "high"), resolving to [-5, -1], entirely negative. A Gamma's alpha parameter bound to that
// variable requires GreaterThan(0), so [-5, -1] is not a subset and a violation must be
// reported — proving the parameter-dependent support bound was actually resolved and installed,
// not skipped to Full (which would also violate, but for the wrong reason and with the wrong
// estimated range in the message).
func TestCheck_ResolvedParamDependentSupportFlagsDownstreamViolation(t *testing.T) {
	b := ir.NewBuilder()
	x := plainVar("x")

	uniform := &ir.Distribution{
		Name:       "Uniform",
		ParamOrder: []string{"low", "high"},
		Params:     map[string]ir.Expression{"low": constExpr(-5), "high": constExpr(-1)},
	}
	xSample := sampleNode(b, "x", uniform)

	gamma := &ir.Distribution{
		Name:       "Gamma",
		ParamOrder: []string{"alpha", "beta"},
		Params:     map[string]ir.Expression{"alpha": rangedVar(x, 20, 21), "beta": constExpr(1)},
	}
	gSample := sampleNode(b, "g", gamma)

	whole := b.Seq(xSample, gSample)
	require.NoError(t, b.TopLevel(whole))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G

	violations, analyzable := Check(bundle)
	assert.True(t, analyzable)
	require.Len(t, violations, 1)
	assert.Equal(t, 20, violations[0].Primary().First)
	assert.Equal(t, 21, violations[0].Primary().Last)
}

// TestCheck_IsIdempotent is property P7: running Check twice over an unchanged bundle must
// produce byte-identical violation lists. cmp.Diff (rather than reflect.DeepEqual/testify's own
// ObjectsAreEqual) gives a readable field-by-field diff on failure, which matters here since a
// violation carries several independently-computable fields (estimated/expected ranges, source
// position) that could drift against each other without the list as a whole differing in length.
func TestCheck_IsIdempotent(t *testing.T) {
	b := ir.NewBuilder()
	bernoulli := &ir.Distribution{
		Name:       "Bernoulli",
		ParamOrder: []string{"p"},
		Params:     map[string]ir.Expression{"p": rangedConst(1.5, 0, 30)},
	}
	s := sampleNode(b, "g", bernoulli)
	require.NoError(t, b.TopLevel(s))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G

	first, analyzable1 := Check(bundle)
	second, analyzable2 := Check(bundle)

	assert.Equal(t, analyzable1, analyzable2)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Check is not idempotent over an unchanged bundle (-first +second):\n%s", diff)
	}
}
