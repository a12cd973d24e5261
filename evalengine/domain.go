// Package evalengine implements two abstract-evaluation drivers (interval and symbolic) that
// walk an expression's free variables, resolve each one's
// reaching definitions via package dataflow, and recursively evaluate those definitions'
// expressions to produce a valuation the expression's own EvalInterval/EvalSymbolic can consume.
// Both drivers share one recursive walk, guarded by a working set of in-progress evaluations, so
// the cycle-guard behavior (interval widens to Full on a cycle, symbolic refuses and reports an
// error) lives in one place.
package evalengine

import (
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/symb"
)

// Domain selects which value algebra the driver evaluates into.
type Domain int

const (
	Interval Domain = iota
	Symbolic
)

// At identifies the point in a Bundle the driver is evaluating from: a function name ("" for
// TopLevel), its CFG, and the node whose free variables are being resolved.
type At struct {
	Func string
	CFG *ir.CFG
	Node ir.ID
}

// Driver holds the Bundle and a per-call cache of already-resolved variable valuations, so that
// a diamond in the reaching-definitions graph (the same variable needed along two paths into a
// join) is evaluated once.
type Driver struct {
	Bundle *ir.Bundle
	Domain Domain

	// SampleIntervals and SampleSymbols are optional assumptions maps, keyed by SampleKey (the
	// owning CFG plus the node's local ID — node IDs restart at 0 per CFG, so a bare ir.ID would
	// let two different functions' sample nodes collide on the same key), that let a caller
	// install a precomputed value for a sample draw instead of having the driver fall back to
	// ival.Full / a cyclic lookup when a reaching definition is itself a Sample node.
	// checks/constraints installs each sample's resolved support interval here;
	// checks/abscontinuity installs a fresh symbol per sample node here, so a reference to an
	// already-sampled variable yields that symbol rather than an expansion of the sample's own
	// (absent) value expression.
	SampleIntervals map[SampleKey]ival.Interval
	SampleSymbols map[SampleKey]symb.Expr

	ivalCache map[cacheKey]ival.Interval
	symCache map[cacheKey]symb.Expr
	working map[cacheKey]bool
}

// SampleKey identifies a sample node across an entire Bundle: the CFG it belongs to plus its
// local node ID. A bare ir.ID is not enough since every function's CFG assigns IDs starting
// from 0 again, so the same ID in two different CFGs (e.g. a model and a guide function) would
// otherwise be indistinguishable as an assumptions-map key.
type SampleKey struct {
	CFG *ir.CFG
	Node ir.ID
}

type cacheKey struct {
	cfg *ir.CFG
	node ir.ID
	v string
}

// New returns a Driver ready to evaluate expressions over bundle in the given domain.
func New(bundle *ir.Bundle, domain Domain) *Driver {
	return &Driver{
		Bundle: bundle,
		Domain: domain,
		ivalCache: map[cacheKey]ival.Interval{},
		symCache: map[cacheKey]symb.Expr{},
		working: map[cacheKey]bool{},
	}
}
