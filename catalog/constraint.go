// Package catalog implements a static distribution-property table: for each
// named distribution, the per-parameter set constraints, the support constraint, and the
// discrete/continuous and univariate/multivariate flags. Entries are immutable; Lookup always
// returns a deep copy so that resolving parameter-dependent bounds (see ResolveBounds) never
// mutates the shared table.
package catalog

import (
	"math"

	"go.uber.org/pplcheck/ival"
)

// Constraint is a set constraint on a distribution parameter or its support. Exactly one
// non-zero-value field combination describes the constraint; the Kind discriminates.
type Constraint struct {
	Kind Kind

	// Bound fields, meaningful for Kind in {GreaterThan, LessThan, Interval, DiscreteGreaterEqThan}.
	// A bound may instead be parameter-dependent (ParamDependent != ""), in which case Low/High
	// are ignored until ResolveBounds substitutes the referenced parameter's interval estimate.
	Low, High float64
	LowParamDependent string
	HighParamDependent string
}

// Kind enumerates the constraint shapes below.
type Kind int

const (
	// KindReal admits all reals: (-Inf, +Inf).
	KindReal Kind = iota
	// KindGreaterThan admits (Low, +Inf).
	KindGreaterThan
	// KindLessThan admits (-Inf, High).
	KindLessThan
	// KindInterval admits [Low, High] (built via RealInterval).
	KindInterval
	// KindDiscreteGreaterEqThan admits integers >= Low.
	KindDiscreteGreaterEqThan
	// KindSimplex admits vectors on the probability simplex: a multivariate, structural
	// constraint that has no exact interval representation.
	KindSimplex
	// KindPositiveDefinite admits positive-definite matrices: multivariate/structural.
	KindPositiveDefinite
	// KindOrdered admits a vector whose elements are strictly increasing: structural.
	KindOrdered
)

// Real, GreaterThan, LessThan, RealInterval, DiscreteGreaterEqThan, Simplex, PositiveDefinite,
// and Ordered are convenience constructors for the Kind values above.
func Real() Constraint { return Constraint{Kind: KindReal} }

func GreaterThan(low float64) Constraint { return Constraint{Kind: KindGreaterThan, Low: low} }

func LessThan(high float64) Constraint { return Constraint{Kind: KindLessThan, High: high} }

func RealInterval(low, high float64) Constraint {
	return Constraint{Kind: KindInterval, Low: low, High: high}
}

func DiscreteGreaterEqThan(low float64) Constraint {
	return Constraint{Kind: KindDiscreteGreaterEqThan, Low: low}
}

func Simplex() Constraint { return Constraint{Kind: KindSimplex} }

func PositiveDefinite() Constraint { return Constraint{Kind: KindPositiveDefinite} }

func Ordered() Constraint { return Constraint{Kind: KindOrdered} }

// ParamDependentLow and ParamDependentInterval build a bound whose endpoint is resolved at use
// time by substituting the interval estimate of the named parameter expression.
func ParamDependentLow(paramName string) Constraint {
	return Constraint{Kind: KindGreaterThan, LowParamDependent: paramName}
}

func ParamDependentInterval(lowParam, highParam string) Constraint {
	return Constraint{Kind: KindInterval, LowParamDependent: lowParam, HighParamDependent: highParam}
}

// FixedLowParamDependentHigh builds an interval constraint whose low endpoint is a fixed
// literal and whose high endpoint is resolved from the named parameter.
func FixedLowParamDependentHigh(low float64, highParam string) Constraint {
	return Constraint{Kind: KindInterval, Low: low, HighParamDependent: highParam}
}

// IsParamDependent reports whether any endpoint of c must be resolved via ResolveBounds before
// ToInterval can be used.
func (c Constraint) IsParamDependent() bool {
	return c.LowParamDependent != "" || c.HighParamDependent != ""
}

// ResolveBounds substitutes any parameter-dependent endpoints using resolve, a function from
// parameter name to its interval estimate (typically the result of evaluating that parameter's
// expression under the current assumptions map). It returns a new,
// fully-resolved Constraint and leaves c untouched.
func (c Constraint) ResolveBounds(resolve func(paramName string) ival.Interval) Constraint {
	out := c
	if out.LowParamDependent != "" {
		out.Low = resolve(out.LowParamDependent).Low
		out.LowParamDependent = ""
	}
	if out.HighParamDependent != "" {
		out.High = resolve(out.HighParamDependent).High
		out.HighParamDependent = ""
	}
	return out
}

// ToInterval projects the constraint to an interval over-approximation. Multivariate/structural constraints project to generous over-approximations
// (Simplex, Ordered -> elementwise [-Inf,+Inf]; PositiveDefinite -> [0,+Inf), a scalar
// eigenvalue bound) rather than rejecting outright, except where ok=false signals the
// constraint has no interval interpretation at all.
func (c Constraint) ToInterval() (ival.Interval, bool) {
	switch c.Kind {
	case KindReal:
		return ival.Full, true
	case KindGreaterThan:
		if c.IsParamDependent() {
			return ival.Interval{}, false
		}
		return ival.Interval{Low: c.Low, High: math.Inf(1)}, true
	case KindLessThan:
		if c.IsParamDependent() {
			return ival.Interval{}, false
		}
		return ival.Interval{Low: math.Inf(-1), High: c.High}, true
	case KindInterval:
		if c.IsParamDependent() {
			return ival.Interval{}, false
		}
		return ival.Interval{Low: c.Low, High: c.High}, true
	case KindDiscreteGreaterEqThan:
		if c.IsParamDependent() {
			return ival.Interval{}, false
		}
		return ival.Interval{Low: c.Low, High: math.Inf(1)}, true
	case KindSimplex, KindOrdered:
		return ival.Full, true
	case KindPositiveDefinite:
		return ival.Interval{Low: 0, High: math.Inf(1)}, true
	default:
		return ival.Interval{}, false
	}
}
