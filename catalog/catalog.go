package catalog

import (
	"sort"
	"strings"
)

// Arity distinguishes univariate from multivariate distributions.
type Arity int

const (
	Univariate Arity = iota
	Multivariate
)

// Kind2 distinguishes discrete from continuous distributions. (Named Kind2 to avoid colliding
// with Constraint's Kind.)
type Kind2 int

const (
	Continuous Kind2 = iota
	Discrete
)

// Entry is one row of the distribution catalog: per-parameter constraints, a support
// constraint, and the discrete/continuous and univariate/multivariate flags.
type Entry struct {
	Name string
	Params map[string]Constraint
	ParamOrder []string // deterministic iteration order over Params 
	Support Constraint
	Kind Kind2
	Arity Arity

	// ScaleParam names the parameter, if any, that plays a scale role for this distribution.
	// Distributions name this parameter
	// differently (Normal/StudentT/LogNormal call it "sigma", HalfCauchy calls it "scale"), so
	// the funnel check asks the catalog rather than matching a literal "scale" key. Empty means
	// this distribution has no natural scale parameter (e.g. Bernoulli, Categorical, Dirichlet).
	ScaleParam string
}

// clone returns a deep copy of e so that callers (in particular Lookup) can resolve
// parameter-dependent bounds without mutating the shared table entry.
func (e Entry) clone() Entry {
	out := e
	out.Params = make(map[string]Constraint, len(e.Params))
	for k, v := range e.Params {
		out.Params[k] = v
	}
	out.ParamOrder = append([]string(nil), e.ParamOrder...)
	return out
}

func entry(name string, kind Kind2, arity Arity, support Constraint, params...paramDef) Entry {
	e := Entry{Name: name, Kind: kind, Arity: arity, Support: support, Params: map[string]Constraint{}}
	for _, p := range params {
		e.Params[p.name] = p.c
		e.ParamOrder = append(e.ParamOrder, p.name)
	}
	return e
}

type paramDef struct {
	name string
	c Constraint
}

func param(name string, c Constraint) paramDef { return paramDef{name: name, c: c} }

// table is the static distribution catalog. It is never mutated after init; Lookup always
// returns table[name].clone().
var table map[string]Entry

func init() {
	table = map[string]Entry{}
	for _, e := range []Entry{
		entry("Normal", Continuous, Univariate, Real(),
			param("mu", Real()),
			param("sigma", GreaterThan(0)),
		),
		entry("Bernoulli", Discrete, Univariate, DiscreteGreaterEqThan(0),
			param("p", RealInterval(0, 1)),
		),
		entry("Beta", Continuous, Univariate, RealInterval(0, 1),
			param("alpha", GreaterThan(0)),
			param("beta", GreaterThan(0)),
		),
		entry("Geometric", Discrete, Univariate, DiscreteGreaterEqThan(0),
			param("p", RealInterval(0, 1)),
		),
		entry("InverseGamma", Continuous, Univariate, GreaterThan(0),
			param("alpha", GreaterThan(0)),
			param("beta", GreaterThan(0)),
		),
		entry("HalfCauchy", Continuous, Univariate, GreaterThan(0),
			param("scale", GreaterThan(0)),
		),
		entry("Categorical", Discrete, Univariate, DiscreteGreaterEqThan(0),
			param("probs", Simplex()),
		),
		entry("Gamma", Continuous, Univariate, GreaterThan(0),
			param("alpha", GreaterThan(0)),
			param("beta", GreaterThan(0)),
		),
		// Distributions beyond the original scenario set's minimal catalog:
		entry("Uniform", Continuous, Univariate, ParamDependentInterval("low", "high"),
			param("low", Real()),
			param("high", Real()),
		),
		entry("Exponential", Continuous, Univariate, GreaterThan(0),
			param("rate", GreaterThan(0)),
		),
		entry("Poisson", Discrete, Univariate, DiscreteGreaterEqThan(0),
			param("rate", GreaterThan(0)),
		),
		entry("StudentT", Continuous, Univariate, Real(),
			param("nu", GreaterThan(0)),
			param("mu", Real()),
			param("sigma", GreaterThan(0)),
		),
		entry("Dirichlet", Continuous, Multivariate, Simplex(),
			param("concentration", Ordered()), // Ordered projects to Full, so elementwise positivity is not checked
		),
		entry("LogNormal", Continuous, Univariate, GreaterThan(0),
			param("mu", Real()),
			param("sigma", GreaterThan(0)),
		),
		entry("Binomial", Discrete, Univariate, FixedLowParamDependentHigh(0, "trials"),
			param("trials", DiscreteGreaterEqThan(0)),
			param("p", RealInterval(0, 1)),
		),
	} {
		table[e.Name] = e
	}
	for name, scaleParam := range map[string]string{
		"Normal": "sigma",
		"HalfCauchy": "scale",
		"StudentT": "sigma",
		"LogNormal": "sigma",
	} {
		e := table[name]
		e.ScaleParam = scaleParam
		table[name] = e
	}
}

// Lookup returns the catalog entry for name, or ok=false if name is not recognized. Callers
// treat an unrecognized name as "analysis not applicable" for that node, not as
// an error. The returned Entry is always a fresh deep copy, so callers can safely mutate it.
func Lookup(name string) (Entry, bool) {
	e, ok := table[name]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// NormalizeName returns the distribution name the catalog should be queried with: names not
// present in the catalog are prefixed with "Unknown-", so that downstream code can still
// display a meaningful name for an uncatalogued distribution while treating it as catalog-absent.
func NormalizeName(name string) string {
	if _, ok := table[name]; ok {
		return name
	}
	if strings.HasPrefix(name, "Unknown-") {
		return name
	}
	return "Unknown-" + name
}

// Names returns the sorted list of every catalogued distribution name, for tests and tooling
// that want to enumerate the whole table.
func Names() []string {
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
