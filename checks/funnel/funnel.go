// Package funnel implements a funnel-shape detector: for every catalogued
// sample node whose distribution has a scale-like parameter, it walks the data dependencies of
// that parameter's expression and flags any reaching sample node as a centered-parameterization
// funnel risk, the classic "tau ~ HalfCauchy; theta ~ Normal(0, tau)" pattern.
package funnel

import (
	"fmt"

	"go.uber.org/pplcheck/catalog"
	"go.uber.org/pplcheck/dataflow"
	"go.uber.org/pplcheck/diagnostic"
	"go.uber.org/pplcheck/ir"
)

// Check runs the funnel detector over every sample node in bundle. Factor nodes carry no
// Distribution in this IR, so (as in package constraints) this check is scoped to Sample nodes.
func Check(bundle *ir.Bundle) []diagnostic.Finding {
	var out []diagnostic.Finding
	for _, ref := range bundle.SampleNodes() {
		node := ref.CFG.Node(ref.Node)
		if node.Dist == nil {
			continue
		}
		entry, ok := catalog.Lookup(catalog.NormalizeName(node.Dist.Name))
		if !ok || entry.ScaleParam == "" {
			continue
		}
		scaleExpr, ok := node.Dist.Param(entry.ScaleParam)
		if !ok {
			continue
		}
		first, last := scaleExpr.Range()
		seen := map[ir.ID]bool{ref.Node: true}
		walk(ref.CFG, ref.Node, ref.Func, node.Dist.Name, first, last, scaleExpr, seen, &out)
	}
	return out
}

// walk traverses the data dependencies of expr (initially a distribution's scale parameter
// expression, then recursively the value expressions of non-sample assignments it depends on),
// stopping and reporting a funnel finding the moment a dependency resolves to a Sample node, and
// never recursing past one.
func walk(g *ir.CFG, at ir.ID, funcName, outerDist string, scaleFirst, scaleLast int, expr ir.Expression, seen map[ir.ID]bool, out *[]diagnostic.Finding) {
	for _, v := range expr.FreeVariables() {
		for _, rd := range dataflow.RD(g, at, v) {
			if seen[rd] {
				continue
			}
			seen[rd] = true
			def := g.Node(rd)
			if def.Kind == ir.KindSample {
				innerName := "an unnamed sample"
				if def.Dist != nil {
					innerName = def.Dist.Name
				}
				innerFirst, innerLast := sampleNodeRange(def)
				*out = append(*out, diagnostic.Finding{
					Func: funcName,
					// Two ranges, one for each endpoint of the funnel relationship: the scale
					// parameter's own expression (the outer/funnel site) and the inner sample
					// node that feeds it, mirroring the two source locations the original
					// funnel detector reports.
					Ranges: []diagnostic.Range{
						{First: scaleFirst, Last: scaleLast},
						{First: innerFirst, Last: innerLast},
					},
					Check: "funnel",
					Severity: diagnostic.Warning,
					Message: fmt.Sprintf(
						"scale parameter of %s depends on sample %s (%s); this centered parameterization can produce a sampling funnel",
						outerDist, v.Name(), innerName,
					),
				})
				continue
			}
			if e := defExprLike(def); e != nil {
				walk(g, rd, funcName, outerDist, scaleFirst, scaleLast, e, seen, out)
			}
		}
	}
}

// sampleNodeRange returns the source range of a Sample node's own value expression, the
// convention package randomcontrolflow's rangeOf also uses for a Sample node's position. A
// Sample node whose frontend left Value unset (e.g. a bare "x := ppl.Sample(...)" draw, which
// has no separate observed-value expression) contributes the zero range.
func sampleNodeRange(n *ir.Node) (first, last int) {
	if n.Value != nil {
		return n.Value.Range()
	}
	return 0, 0
}

// defExprLike returns the expression a non-sample definition node binds its target to, mirroring
// package dataflow's own (unexported) defExpr so this package can recurse through Assign and
// LoopIter nodes without depending on dataflow's internals.
func defExprLike(n *ir.Node) ir.Expression {
	switch n.Kind {
	case ir.KindAssign, ir.KindLoopIter:
		return n.Value
	case ir.KindFuncArg:
		return n.ArgDefault
	}
	return nil
}
