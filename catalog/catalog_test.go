package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/pplcheck/ival"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLookupKnown(t *testing.T) {
	e, ok := Lookup("Normal")
	require.True(t, ok)
	assert.Equal(t, Continuous, e.Kind)
	assert.Equal(t, Univariate, e.Arity)
	assert.Contains(t, e.Params, "mu")
	assert.Contains(t, e.Params, "sigma")
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("SomeMadeUpDistribution")
	assert.False(t, ok)
	assert.Equal(t, "Unknown-SomeMadeUpDistribution", NormalizeName("SomeMadeUpDistribution"))
	assert.Equal(t, "Normal", NormalizeName("Normal"))
}

func TestLookupIsDeepCopy(t *testing.T) {
	e1, _ := Lookup("Geometric")
	e1.Params["p"] = Real() // mutate the copy

	e2, _ := Lookup("Geometric")
	assert.NotEqual(t, e1.Params["p"], e2.Params["p"], "Lookup must return independent copies (P8)")
	assert.Equal(t, RealInterval(0, 1), e2.Params["p"])
}

func TestResolveParamDependentBound(t *testing.T) {
	c := ParamDependentInterval("low", "high")
	resolved := c.ResolveBounds(func(name string) ival.Interval {
		switch name {
		case "low":
			return ival.Singleton(2)
		case "high":
			return ival.Singleton(9)
		}
		return ival.Full
	})
	assert.False(t, resolved.IsParamDependent())
	got, ok := resolved.ToInterval()
	require.True(t, ok)
	assert.Equal(t, ival.Interval{Low: 2, High: 9}, got)
}

func TestToIntervalProjections(t *testing.T) {
	i, ok := Simplex().ToInterval()
	require.True(t, ok)
	assert.Equal(t, ival.Full, i)

	i, ok = PositiveDefinite().ToInterval()
	require.True(t, ok)
	assert.Equal(t, 0.0, i.Low)

	_, ok = ParamDependentInterval("low", "high").ToInterval()
	assert.False(t, ok, "unresolved param-dependent bound has no interval yet")
}

func TestAllEntriesHaveDeterministicParamOrder(t *testing.T) {
	for _, name := range Names() {
		e, ok := Lookup(name)
		require.True(t, ok)
		assert.Equal(t, len(e.Params), len(e.ParamOrder), "%s: ParamOrder must list every param exactly once", name)
		seen := map[string]bool{}
		for _, p := range e.ParamOrder {
			assert.False(t, seen[p], "%s: duplicate in ParamOrder", name)
			seen[p] = true
		}
	}
}
