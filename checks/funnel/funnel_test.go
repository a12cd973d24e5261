package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/pplcheck/diagnostic"
	"go.uber.org/pplcheck/ir"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// buildCenteredFunnel builds the classic centered-parameterization funnel:
//
//	tau ~ HalfCauchy(scale=1)
//	theta ~ Normal(mu=0, sigma=tau)
func buildCenteredFunnel(t *testing.T) *ir.Bundle {
	t.Helper()
	b := ir.NewBuilder()
	tau := plainVar("tau")

	tauSample := b.Straight(ir.KindSample, func(n *ir.Node) {
		n.Target = target("tau")
		n.Value = rangedVar(tau, 5, 8)
		n.Dist = &ir.Distribution{
			Name:       "HalfCauchy",
			ParamOrder: []string{"scale"},
			Params:     map[string]ir.Expression{"scale": constExpr(1)},
		}
	})
	thetaSample := b.Straight(ir.KindSample, func(n *ir.Node) {
		n.Target = target("theta")
		n.Dist = &ir.Distribution{
			Name:       "Normal",
			ParamOrder: []string{"mu", "sigma"},
			Params:     map[string]ir.Expression{"mu": constExpr(0), "sigma": rangedVar(tau, 30, 33)},
		}
	})

	whole := b.Seq(tauSample, thetaSample)
	require.NoError(t, b.TopLevel(whole))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G
	return bundle
}

func TestCheck_CenteredParameterizationEmitsFunnelWarning(t *testing.T) {
	bundle := buildCenteredFunnel(t)

	findings := Check(bundle)
	require.Len(t, findings, 1)
	assert.Equal(t, "funnel", findings[0].Check)
	assert.Equal(t, diagnostic.Warning, findings[0].Severity)
	require.Len(t, findings[0].Ranges, 2)
	assert.Equal(t, 30, findings[0].Ranges[0].First)
	assert.Equal(t, 33, findings[0].Ranges[0].Last)
	assert.Equal(t, 5, findings[0].Ranges[1].First)
	assert.Equal(t, 8, findings[0].Ranges[1].Last)
}

// buildNoncenteredFunnel replaces the direct sample dependency with a fixed scale, which should
// never trigger a funnel warning.
func buildNoncenteredFunnel(t *testing.T) *ir.Bundle {
	t.Helper()
	b := ir.NewBuilder()
	thetaSample := b.Straight(ir.KindSample, func(n *ir.Node) {
		n.Target = target("theta")
		n.Dist = &ir.Distribution{
			Name:       "Normal",
			ParamOrder: []string{"mu", "sigma"},
			Params:     map[string]ir.Expression{"mu": constExpr(0), "sigma": constExpr(1)},
		}
	})
	require.NoError(t, b.TopLevel(thetaSample))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G
	return bundle
}

func TestCheck_FixedScaleProducesNoWarning(t *testing.T) {
	bundle := buildNoncenteredFunnel(t)
	assert.Empty(t, Check(bundle))
}

// TestCheck_IndirectAssignmentStillTraced verifies the recursion through a non-sample
// assignment between the scale parameter and the sample it ultimately depends on.
func TestCheck_IndirectAssignmentStillTraced(t *testing.T) {
	b := ir.NewBuilder()
	tau := plainVar("tau")

	tauSample := b.Straight(ir.KindSample, func(n *ir.Node) {
		n.Target = target("tau")
		n.Dist = &ir.Distribution{
			Name:       "HalfCauchy",
			ParamOrder: []string{"scale"},
			Params:     map[string]ir.Expression{"scale": constExpr(1)},
		}
	})
	relabel := b.Straight(ir.KindAssign, func(n *ir.Node) {
		n.Target = target("tau2")
		n.Value = varExpr(tau)
	})
	tau2 := plainVar("tau2")
	thetaSample := b.Straight(ir.KindSample, func(n *ir.Node) {
		n.Target = target("theta")
		n.Dist = &ir.Distribution{
			Name:       "Normal",
			ParamOrder: []string{"mu", "sigma"},
			Params:     map[string]ir.Expression{"mu": constExpr(0), "sigma": rangedVar(tau2, 40, 44)},
		}
	})

	whole := b.Seq(tauSample, relabel, thetaSample)
	require.NoError(t, b.TopLevel(whole))

	bundle := ir.NewBundle()
	bundle.TopLevel = b.G

	findings := Check(bundle)
	require.Len(t, findings, 1)
	assert.Equal(t, 40, findings[0].Primary().First)
}
