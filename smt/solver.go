// Package smt defines the boundary between this repository's symbolic algebra (package symb)
// and an external SMT solver: the core never links a solver itself. Solver is an interface any
// caller can back with whatever engine its deployment has available. Package smt/refsolver
// provides a small reference implementation covering the single-variable linear inequalities
// the absolute-continuity checker actually needs, so the checker has something to run against
// without a real solver installed.
package smt

import "go.uber.org/pplcheck/symb"

// Result is the three-valued answer an SMT query returns: a query can be proven Sat or Unsat, or
// the solver can decline to answer (Unknown) — for instance because the query falls outside the
// solver's supported theory, or because it times out. Callers must treat Unknown conservatively:
// it is never safe to treat Unknown as either Sat or Unsat.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Solver checks the satisfiability of a symbolic formula. CheckSat must not mutate formula
// and must be safe to call concurrently from independent goroutines over independent formulas.
type Solver interface {
	CheckSat(formula symb.Expr) (Result, error)
}

// CanonicalOperators names the fixed operator vocabulary that forms the translation surface
// between package symb's Op nodes and a solver's native connectives/relations. An operator
// name outside this set is reported as unsupported rather than given a guessed meaning;
// refsolver's Solver returns Unknown for a formula outside its fragment.
var CanonicalOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "^": true,
	"&": true, "|": true, "!": true,
	"==": true, "!=": true, ">": true, ">=": true, "<": true, "<=": true,
	"ife": true, "true": true, "false": true,
}
