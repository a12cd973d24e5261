// Package ir implements the language-agnostic intermediate representation: the data model
// (Expression/Variable/AssignTarget/Distribution capability sets, CFG node variants)
// and the control-flow graph (construction templates, integrity invariants,
// reachability under blocking). Frontends populate this IR; the dataflow, evalengine,
// pathcond, and checks packages consume it. The IR itself never parses source text.
package ir

import (
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/symb"
)

// Expression is the capability set every frontend-supplied expression node must implement.
// Expressions are pure: evaluating one has no side effect observable by the core.
type Expression interface {
	// FreeVariables enumerates the Variables this expression reads, in a stable order.
	FreeVariables() []Variable
	// CallsTo returns the call-sites within this expression whose callee is the user-defined
	// function funcName, used by the interprocedural RD/BP extension and by funnel
	// detection when an expression is itself a call.
	CallsTo(funcName string) []CallExpression
	// EvalInterval evaluates this expression to an interval under the given valuation (a
	// mapping from free-variable name to the interval already computed for it upstream).
	EvalInterval(val map[string]ival.Interval) ival.Interval
	// EvalSymbolic evaluates this expression to a symbolic-algebra term under the given
	// valuation (a mapping from free-variable name to the symbolic value already computed for
	// it upstream).
	EvalSymbolic(val map[string]symb.Expr) symb.Expr
	// Range returns the first and last byte offsets of this expression in the original source,
	// for diagnostics.
	Range() (first, last int)
	// Text returns the best-effort source text of this expression, used only for display.
	Text() string
}

// CallExpression is the capability set an Expression exposes when it is itself a call to a
// user-defined function: the same Expression capabilities, plus its ordered argument list,
// used by the interprocedural RD/BP extension to find the expression bound to a
// given FuncArg position at this call site.
type CallExpression interface {
	Expression
	Args() []Expression
}

// Variable identifies a piece of storage by name plus lexical scope. Two Variables
// are equal iff the frontend considers them the same storage; this package never compares
// Variables structurally on its own, it always asks the Variable itself.
type Variable interface {
	// Name returns the variable's display name.
	Name() string
	// Equal reports whether v and other name the same storage, as judged by the frontend.
	Equal(other Variable) bool
	// Indexed reports whether this variable reference is of the "base[index]" form, and if so
	// returns the index expression and the base variable.
	Indexed() (index Expression, base Variable, ok bool)
	// StaticIndexEqual conservatively tests whether two indexed variables over the same base
	// provably index the same element. Implementations must return false when unsure rather
	// than claim equality — the only safe direction for the RD kill rule.
	StaticIndexEqual(other Variable) bool
}

// AssignTarget is the left-hand side of an assignment.
type AssignTarget interface {
	// EqualVar reports whether this target writes to the same storage as v.
	EqualVar(v Variable) bool
	// Indexed reports whether this target is of the "base[index]" form, and if so returns the
	// index expression.
	Indexed() (index Expression, ok bool)
	// Var returns the Variable this target writes to: an indexed Variable (Indexed() reports
	// true) for a "base[index] = ..." target, or a plain Variable otherwise. Comparing two
	// targets' indices for the RD kill rule goes through this Variable's own StaticIndexEqual,
	// never by inspecting the index Expression structurally.
	Var() Variable
}

// Distribution is a name plus an ordered mapping from parameter name to parameter expression.
// Names the catalog does not recognize are prefixed with "Unknown-" by the frontend or by
// catalog.NormalizeName before storage here; Distribution itself does not enforce this.
type Distribution struct {
	Name       string
	ParamOrder []string
	Params     map[string]Expression
}

// Param looks up a parameter expression by name.
func (d Distribution) Param(name string) (Expression, bool) {
	e, ok := d.Params[name]
	return e, ok
}
