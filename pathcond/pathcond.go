// Package pathcond implements a path-condition generator: for a given node, the
// conjunction of the branch tests (each possibly negated) that every execution reaching that
// node must have satisfied. It is built directly on top of package dataflow's branch-parent
// computation and package evalengine's symbolic evaluator, adding only the side-disambiguation
// (which arm of each branch parent the node sits on) that turns a bare list of branch parents
// into a conjunction of signed conditions.
package pathcond

import (
	"go.uber.org/pplcheck/dataflow"
	"go.uber.org/pplcheck/evalengine"
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/symb"
)

// Of returns the path condition for node `at` within the named function's CFG ("" for
// TopLevel): the conjunction, over every branch parent of `at` (package dataflow's BP), of that
// branch's test (if `at` lies only on the Then side) or its negation (if only on the Else
// side). A branch parent whose two sides cannot be cleanly told apart for `at` — which BP's own
// blocked-reachability definition never actually produces, since BP only reports a branch as a
// parent when the two sides disagree — is defensively skipped rather than guessed.
func Of(d *evalengine.Driver, funcName string, g *ir.CFG, at ir.ID) (symb.Expr, error) {
	var conj []symb.Expr
	for _, branch := range dataflow.BP(g, at) {
		node := g.Node(branch)
		cond, err := d.EvalSymbolic(evalengine.At{Func: funcName, CFG: g, Node: branch}, node.Test)
		if err != nil {
			return symb.Expr{}, err
		}

		var thenReach, elseReach bool
		g.WithBlocked([]ir.ID{branch}, func() {
			thenReach = g.IsReachable(node.Then, at)
			elseReach = g.IsReachable(node.Else, at)
		})

		switch {
		case thenReach && !elseReach:
			conj = append(conj, cond)
		case elseReach && !thenReach:
			conj = append(conj, symb.Not(cond))
		}
	}
	return symb.And(conj...), nil
}
