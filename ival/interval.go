// Package ival implements the interval-arithmetic value domain used by the abstract
// evaluators (see package evalengine) to soundly over-approximate the range of a program
// expression. An Interval is a closed pair of extended reals; all operations here are sound
// over-approximations, never under-approximations: the concrete value of an expression
// evaluated under any valuation consistent with its operands' intervals always lies within
// the interval this package computes for it.
package ival

import "math"

// Interval is a closed range [Low, High] over the extended reals. Low may be -Inf and High
// may be +Inf. Low == High encodes a singleton (constant) value. An Interval with Low > High
// is never constructed by this package's operations; callers should treat such a value as a
// programming error rather than "empty".
type Interval struct {
	Low float64
	High float64
}

// Full is the top interval [-Inf, +Inf], the over-approximation used whenever an operation
// cannot soundly narrow its result.
var Full = Interval{Low: math.Inf(-1), High: math.Inf(1)}

// Singleton returns the degenerate interval [v, v].
func Singleton(v float64) Interval {
	return Interval{Low: v, High: v}
}

// Zero is the singleton interval [0, 0].
var Zero = Singleton(0)

// IsSingleton reports whether i is a degenerate interval with Low == High.
func (i Interval) IsSingleton() bool {
	return i.Low == i.High
}

// Contains reports whether v lies within i (inclusive of endpoints).
func (i Interval) Contains(v float64) bool {
	return i.Low <= v && v <= i.High
}

// Subset reports whether i is fully contained in other, i.e. i's constraint is satisfied by
// other's declared bound. This is the check package checks/constraints uses to compare an
// estimated parameter range against a catalogued required range.
func (i Interval) Subset(other Interval) bool {
	return other.Low <= i.Low && i.High <= other.High
}

// Add returns the interval of x+y for x in a, y in b.
func Add(a, b Interval) Interval {
	return Interval{Low: a.Low + b.Low, High: a.High + b.High}
}

// Neg returns the interval of -x for x in a.
func Neg(a Interval) Interval {
	return Interval{Low: -a.High, High: -a.Low}
}

// Sub returns the interval of x-y for x in a, y in b. Implemented as a + (-b), flipping the
// operand order of b's endpoints
func Sub(a, b Interval) Interval {
	return Add(a, Neg(b))
}

func min4(a, b, c, d float64) float64 {
	m := a
	for _, v := range []float64{b, c, d} {
		if math.IsNaN(m) || (!math.IsNaN(v) && v < m) {
			m = v
		}
	}
	return m
}

func max4(a, b, c, d float64) float64 {
	m := a
	for _, v := range []float64{b, c, d} {
		if math.IsNaN(m) || (!math.IsNaN(v) && v > m) {
			m = v
		}
	}
	return m
}

// Mul returns the interval of x*y for x in a, y in b: the min and max of the four endpoint
// products, ignoring any product that is NaN (an Inf*0 product)
func Mul(a, b Interval) Interval {
	p1, p2, p3, p4 := a.Low*b.Low, a.Low*b.High, a.High*b.Low, a.High*b.High
	return Interval{Low: min4(p1, p2, p3, p4), High: max4(p1, p2, p3, p4)}
}

// invEndpoints inverts the endpoints of a nonzero-straddling interval, endpoint-wise.
func invEndpoints(a Interval) Interval {
	return Interval{Low: 1 / a.High, High: 1 / a.Low}
}

// Div returns the interval of x/y for x in a, y in b. If b touches zero at exactly one
// endpoint (Low == 0 or High == 0, but not Low < 0 < High), the result is a half-infinite
// interval. If b strictly contains zero (Low < 0 < High), division is unsound to bound and the
// caller must treat it as a fatal interval error (see errs.go).
func Div(a, b Interval) (Interval, error) {
	if b.Low < 0 && b.High > 0 {
		return Interval{}, ErrDivByZero
	}
	if b.Low == 0 && b.High == 0 {
		return Interval{}, ErrDivByZero
	}
	if b.Low == 0 {
		// b is [0, High], High > 0: 1/b ranges over [1/High, +Inf]
		return Mul(a, Interval{Low: 1 / b.High, High: math.Inf(1)}), nil
	}
	if b.High == 0 {
		// b is [Low, 0], Low < 0: 1/b ranges over [-Inf, 1/Low]
		return Mul(a, Interval{Low: math.Inf(-1), High: 1 / b.Low}), nil
	}
	return Mul(a, invEndpoints(b)), nil
}

// Union returns the interval over-approximation of the (possibly disjoint) union of a and b:
// the endpointwise min of the lows and max of the highs.
func Union(a, b Interval) Interval {
	return Interval{Low: math.Min(a.Low, b.Low), High: math.Max(a.High, b.High)}
}

// UnionAll folds Union over a non-empty slice of intervals.
func UnionAll(is []Interval) Interval {
	if len(is) == 0 {
		return Full
	}
	acc := is[0]
	for _, i := range is[1:] {
		acc = Union(acc, i)
	}
	return acc
}

// Abs returns the interval of |x| for x in a, splitting on a's sign when it straddles zero.
func Abs(a Interval) Interval {
	if a.Low >= 0 {
		return a
	}
	if a.High <= 0 {
		return Neg(a)
	}
	return Interval{Low: 0, High: math.Max(-a.Low, a.High)}
}

// Exp returns the interval of exp(x) for x in a: monotone, applied pointwise.
func Exp(a Interval) Interval {
	return Interval{Low: math.Exp(a.Low), High: math.Exp(a.High)}
}

// Log returns the interval of log(x) for x in a: monotone, applied pointwise. A non-positive
// low endpoint yields -Inf rather than NaN
func Log(a Interval) Interval {
	low := math.Inf(-1)
	if a.Low > 0 {
		low = math.Log(a.Low)
	}
	high := math.Inf(-1)
	if a.High > 0 {
		high = math.Log(a.High)
	}
	return Interval{Low: low, High: high}
}

// Sqrt returns the interval of sqrt(x) for x in a, clamping the domain to [0, +Inf) since
// sqrt is undefined (in the reals) below zero; a negative low endpoint is treated as 0.
func Sqrt(a Interval) Interval {
	low := a.Low
	if low < 0 {
		low = 0
	}
	high := a.High
	if high < 0 {
		high = 0
	}
	return Interval{Low: math.Sqrt(low), High: math.Sqrt(high)}
}

// Pow returns the interval of x^n for x in base, when the exponent is the singleton integer
// n. Odd exponents are exact endpoint power; even exponents clamp the low endpoint at 0 when
// base straddles zero
func Pow(base Interval, n int) Interval {
	if n%2 != 0 {
		return Interval{Low: math.Pow(base.Low, float64(n)), High: math.Pow(base.High, float64(n))}
	}
	lp, hp := math.Pow(base.Low, float64(n)), math.Pow(base.High, float64(n))
	low, high := math.Min(lp, hp), math.Max(lp, hp)
	if base.Low < 0 && base.High > 0 {
		low = 0
	}
	return Interval{Low: low, High: high}
}

// PowNonSingletonExponent returns the top interval: a non-singleton exponent
// is not soundly boundable by this algebra and widens to Full.
func PowNonSingletonExponent() Interval {
	return Full
}

// InvLogit returns the static range [0, 1] for the logistic sigmoid, ignoring its argument.
func InvLogit(Interval) Interval { return Interval{Low: 0, High: 1} }

// Erf returns the static range [-1, 1] for the error function, ignoring its argument.
func Erf(Interval) Interval { return Interval{Low: -1, High: 1} }

// Ones returns the static range [1, 1], ignoring its argument. Provided for distributions
// whose normalizing constant is a constant array of ones (e.g. a Dirichlet concentration
// default).
func Ones(Interval) Interval { return Singleton(1) }

// Clip returns [a.Low, b.High]'s definition of clip(a, b).
func Clip(a, b Interval) Interval {
	return Interval{Low: a.Low, High: b.High}
}

// Minimum returns the interval of min(x, y) for x in a, y in b.
func Minimum(a, b Interval) Interval {
	return Interval{Low: math.Min(a.Low, b.Low), High: math.Min(a.High, b.High)}
}

// Maximum returns the interval of max(x, y) for x in a, y in b.
func Maximum(a, b Interval) Interval {
	return Interval{Low: math.Max(a.Low, b.Low), High: math.Max(a.High, b.High)}
}

// IfElse returns the interval of a conditional expression as the union of its
// then- and else-branch intervals.
func IfElse(then, els Interval) Interval {
	return Union(then, els)
}

// Switch returns the union of all case-branch intervals
func Switch(cases []Interval) Interval {
	return UnionAll(cases)
}

// Prod returns the interval of the product of an array-valued expression whose elements are
// each known to lie in elem. If elem is contained in [0,1], the product is also contained in
// [0,1] (a product of fractions is itself a fraction); otherwise no sound bound narrower than
// Full is available.
func Prod(elem Interval) Interval {
	if elem.Subset(Interval{Low: 0, High: 1}) {
		return Interval{Low: 0, High: 1}
	}
	return Full
}
