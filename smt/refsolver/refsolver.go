// Package refsolver is a minimal reference implementation of smt.Solver covering linear
// inequalities over a single real variable: the shape the absolute-continuity checker actually
// discharges when comparing a model and guide's per-sample support bounds. It is not a
// general-purpose decision procedure and exists so this repository has something runnable
// without wiring a real external solver; a production deployment is expected to replace it with
// a binding to an actual engine via the same smt.Solver interface.
package refsolver

import (
	"go.uber.org/pplcheck/smt"
	"go.uber.org/pplcheck/symb"
)

// Solver implements smt.Solver over conjunctions/disjunctions of single-variable linear
// inequalities and equalities against constants. Anything outside that fragment (a second free
// symbol, a nonlinear operator, an uninterpreted function) is reported as smt.Unknown rather
// than guessed.
type Solver struct{}

// New returns a ready-to-use reference Solver. It holds no state between calls.
func New() *Solver { return &Solver{} }

// CheckSat evaluates formula by interval-projecting the single free symbol it permits and
// checking whether the resulting range (or boolean value, for a pure boolean combination) is
// nonempty, per the bounded fragment documented on Solver.
func (s *Solver) CheckSat(formula symb.Expr) (smt.Result, error) {
	syms := symb.FreeSymbols(formula)
	if len(syms) > 1 {
		return smt.Unknown, nil
	}
	var name string
	if len(syms) == 1 {
		name = syms[0]
	}

	lo, hi, ok := rangeOf(formula, name, negInf, posInf)
	if !ok {
		return smt.Unknown, nil
	}
	if lo <= hi {
		return smt.Sat, nil
	}
	return smt.Unsat, nil
}

const (
	negInf = "-inf"
	posInf = "+inf"
)

// rangeOf computes the range of values for the free symbol named `name` that satisfy formula,
// starting from the ambient bounds [lo, hi] (sentinels negInf/posInf standing in for unbounded
// ends, since this reference solver avoids a dependency on math purely for two named extremes).
// It returns ok=false whenever formula falls outside the single-variable linear fragment.
func rangeOf(e symb.Expr, name string, lo, hi string) (float64, float64, bool) {
	// This reference implementation supports exactly the comparisons the absolute-continuity
	// checker emits: sym REL const, negation, and conjunction/disjunction of those. Anything
	// else is reported unsupported.
	switch {
	case e.IsOp() && e.OpName() == "true":
		return parseBound(lo), parseBound(hi), true
	case e.IsOp() && e.OpName() == "false":
		// An empty range: any lo > hi sentinel marks unsat to the caller.
		return 1, 0, true
	case e.IsOp() && e.OpName() == "!" && len(e.OpArgs()) == 1:
		return rangeOf(pushNegation(e.OpArgs()[0]), name, lo, hi)
	case e.IsOp() && e.OpName() == "&":
		curLo, curHi := parseBound(lo), parseBound(hi)
		for _, arg := range e.OpArgs() {
			l, h, ok := rangeOf(arg, name, lo, hi)
			if !ok {
				return 0, 0, false
			}
			if l > curLo {
				curLo = l
			}
			if h < curHi {
				curHi = h
			}
		}
		return curLo, curHi, true
	case e.IsOp() && e.OpName() == "|":
		var bestLo, bestHi float64
		set := false
		for _, arg := range e.OpArgs() {
			l, h, ok := rangeOf(arg, name, lo, hi)
			if !ok {
				return 0, 0, false
			}
			if !set || l < bestLo {
				bestLo = l
			}
			if !set || h > bestHi {
				bestHi = h
			}
			set = true
		}
		return bestLo, bestHi, set
	case e.IsOp() && isComparison(e.OpName()) && len(e.OpArgs()) == 2:
		return rangeOfComparison(e, name, lo, hi)
	default:
		return 0, 0, false
	}
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", ">", ">=", "<", "<=":
		return true
	}
	return false
}

// pushNegation rewrites !e into negation-normal form one level at a time: a comparison flips to
// its complementary comparison, "true"/"false" swap, "&"/"|" distribute by De Morgan, and a
// double negation cancels. symb.Not always constructs a literal "!" node rather than simplifying
// (by design — package symb performs no algebraic simplification), so this reference solver has
// to do that push-down itself before rangeOf can recognize the result as one of its supported
// shapes.
func pushNegation(e symb.Expr) symb.Expr {
	switch {
	case e.IsOp() && e.OpName() == "true":
		return symb.False
	case e.IsOp() && e.OpName() == "false":
		return symb.True
	case e.IsOp() && e.OpName() == "!" && len(e.OpArgs()) == 1:
		return e.OpArgs()[0]
	case e.IsOp() && e.OpName() == "&":
		args := make([]symb.Expr, len(e.OpArgs()))
		for i, a := range e.OpArgs() {
			args[i] = symb.Not(a)
		}
		return symb.Or(args...)
	case e.IsOp() && e.OpName() == "|":
		args := make([]symb.Expr, len(e.OpArgs()))
		for i, a := range e.OpArgs() {
			args[i] = symb.Not(a)
		}
		return symb.And(args...)
	case e.IsOp() && isComparison(e.OpName()) && len(e.OpArgs()) == 2:
		return symb.MakeOp(flipLogical(e.OpName()), e.OpArgs()[0], e.OpArgs()[1])
	default:
		// Unsupported shape: leave it wrapped so rangeOf's default case reports it unsupported
		// rather than silently misinterpreting it.
		return symb.Not(e)
	}
}

func flipLogical(op string) string {
	switch op {
	case "==":
		return "!="
	case "!=":
		return "=="
	case ">":
		return "<="
	case ">=":
		return "<"
	case "<":
		return ">="
	case "<=":
		return ">"
	default:
		return op
	}
}

func rangeOfComparison(e symb.Expr, name, lo, hi string) (float64, float64, bool) {
	args := e.OpArgs()
	left, right := args[0], args[1]

	sym, k, flipped, ok := asSymConst(left, right)
	if !ok || sym != name {
		return 0, 0, false
	}
	op := e.OpName()
	if flipped {
		op = flip(op)
	}

	curLo, curHi := parseBound(lo), parseBound(hi)
	switch op {
	case "==":
		return k, k, true
	case "!=":
		// A single point excluded from an otherwise unbounded range is not expressible as one
		// interval; report unsupported rather than approximate unsoundly.
		return 0, 0, false
	case ">":
		return nextAbove(k), curHi, true
	case ">=":
		return k, curHi, true
	case "<":
		return curLo, nextBelow(k), true
	case "<=":
		return curLo, k, true
	default:
		return 0, 0, false
	}
}

func asSymConst(left, right symb.Expr) (name string, k float64, flipped bool, ok bool) {
	if left.IsSym() && right.IsConst() {
		return left.SymName(), right.ConstValue(), false, true
	}
	if right.IsSym() && left.IsConst() {
		return right.SymName(), left.ConstValue(), true, true
	}
	return "", 0, false, false
}

func flip(op string) string {
	switch op {
	case ">":
		return "<"
	case ">=":
		return "<="
	case "<":
		return ">"
	case "<=":
		return ">="
	default:
		return op
	}
}

func parseBound(s string) float64 {
	if s == negInf {
		return negInfVal
	}
	return posInfVal
}

const (
	negInfVal = -1e308
	posInfVal = 1e308
)

// nextAbove/nextBelow approximate strict inequality endpoints for this reference
// implementation's purposes; it never needs exact machine-epsilon precision, only "narrower
// than the non-strict bound by a negligible, consistent amount".
func nextAbove(k float64) float64 { return k + 1e-9 }
func nextBelow(k float64) float64 { return k - 1e-9 }
