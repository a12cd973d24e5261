// Package dataflow implements a data- and control-dependency engine: reaching
// definitions (RD) and branch parents (BP) over a CFG, including the interprocedural extension
// that crosses function-argument and function-call sites via an ir.Bundle. Both algorithms
// walk the CFG upward by native recursion over parent edges (no explicit worklist, so the
// recursion depth grows with the length of the walked path), memoize at Branch nodes to avoid
// path explosion across diamond-shaped control flow, and detect cycles by path membership.
package dataflow

import "go.uber.org/pplcheck/ir"

// exprsOf returns every Expression a node carries, in the order its node-variant table
// lists them, so RD/BP/call-site scanning can stay generic over node kind instead of
// special-casing each Kind at every call site.
func exprsOf(n *ir.Node) []ir.Expression {
	var out []ir.Expression
	switch n.Kind {
	case ir.KindAssign:
		out = append(out, n.Value)
	case ir.KindSample:
		out = append(out, n.Value)
		if n.Address != nil {
			out = append(out, n.Address)
		}
		if n.Dist != nil {
			for _, p := range n.Dist.ParamOrder {
				if e, ok := n.Dist.Params[p]; ok {
					out = append(out, e)
				}
			}
		}
	case ir.KindFactor:
		out = append(out, n.Factor)
	case ir.KindLoopIter:
		out = append(out, n.Value)
	case ir.KindFuncArg:
		if n.ArgDefault != nil {
			out = append(out, n.ArgDefault)
		}
	case ir.KindBranch:
		out = append(out, n.Test)
	case ir.KindReturn:
		out = append(out, n.ReturnExpr)
	}
	filtered := out[:0]
	for _, e := range out {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// writesTo reports whether node n is a definition (assignment/sample/loop-iter/function-arg)
// that writes to v, and if so returns its AssignTarget. For indexed
// targets, the caller is responsible for the "same static index" kill rule; writesTo only
// answers "does this node's target name the same variable storage".
func writesTo(n *ir.Node) (ir.AssignTarget, bool) {
	switch n.Kind {
	case ir.KindAssign, ir.KindSample, ir.KindLoopIter, ir.KindFuncArg:
		if n.Target != nil {
			return n.Target, true
		}
	}
	return nil, false
}

// defExpr returns the expression a definition node binds its target to: the Value expr for
// Assign/Sample/LoopIter, or the ArgDefault for FuncArg (only meaningful when the argument was
// not bound at a call site — see the interprocedural extension in callsites.go).
func defExpr(n *ir.Node) ir.Expression {
	switch n.Kind {
	case ir.KindAssign, ir.KindSample, ir.KindLoopIter:
		return n.Value
	case ir.KindFuncArg:
		return n.ArgDefault
	}
	return nil
}
