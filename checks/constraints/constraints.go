// Package constraints implements parameter and support constraint verification: for every
// catalogued sample node, the per-parameter and support bounds declared in package catalog are
// checked against an interval estimate of the corresponding parameter expression, using package
// evalengine's interval domain and package dataflow's reaching definitions underneath it.
package constraints

import (
	"fmt"

	"go.uber.org/pplcheck/catalog"
	"go.uber.org/pplcheck/diagnostic"
	"go.uber.org/pplcheck/evalengine"
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/ival"
)

// node bundles together the pieces Check needs to remember about one catalogued sample node
// between its two passes: the reference into the bundle, its catalog entry, and the per-
// parameter interval estimates computed while resolving its support bound.
type node struct {
	ref ir.NodeRef
	entry catalog.Entry
	params map[string]ival.Interval
}

// Check runs the constraint verification algorithm over every sample node in
// bundle. It returns the violations found in bundle.SampleNodes() order (it does not sort them;
// diagnostic.Engine applies the deterministic order), and analyzable=false when at least one sample node's distribution was not fully catalogued
// (in which case that node contributes no violations, only the "analysis inapplicable" signal
// folded into the returned bool).
//
// Factor nodes carry no Distribution in this IR (only a log-density expression), so they have
// no per-parameter catalog entry to check against; this check is scoped to Sample nodes.
func Check(bundle *ir.Bundle) (violations []diagnostic.Finding, analyzable bool) {
	analyzable = true
	driver := evalengine.New(bundle, evalengine.Interval)
	assumptions := map[evalengine.SampleKey]ival.Interval{}
	driver.SampleIntervals = assumptions

	var catalogued []node

	// Pass 1: resolve each sample node's support bound and record it in
	// the assumptions map, so that a later sample node's parameter expression referencing an
	// earlier sampled variable sees that node's support rather than widening to Full.
	for _, ref := range bundle.SampleNodes() {
		n := ref.CFG.Node(ref.Node)
		if n.Dist == nil {
			continue
		}
		entry, ok := catalog.Lookup(catalog.NormalizeName(n.Dist.Name))
		if !ok {
			analyzable = false
			continue
		}

		params := evalParams(driver, ref, n, entry)
		resolve := resolverFor(params)
		supportIv, ok := entry.Support.ResolveBounds(resolve).ToInterval()
		if !ok {
			supportIv = ival.Full
		}
		assumptions[evalengine.SampleKey{CFG: ref.CFG, Node: ref.Node}] = supportIv

		catalogued = append(catalogued, node{ref: ref, entry: entry, params: params})
	}

	// Pass 2: with the assumptions map now fully populated, re-estimate
	// each parameter under it and compare against the catalogued constraint.
	for _, cn := range catalogued {
		n := cn.ref.CFG.Node(cn.ref.Node)
		params := evalParams(driver, cn.ref, n, cn.entry)
		resolve := resolverFor(params)

		for _, pname := range cn.entry.ParamOrder {
			expr, ok := n.Dist.Param(pname)
			if !ok {
				continue
			}
			estimated, ok := params[pname]
			if !ok {
				continue
			}
			required, ok := cn.entry.Params[pname].ResolveBounds(resolve).ToInterval()
			if !ok {
				continue
			}
			if estimated.Subset(required) {
				continue
			}
			first, last := expr.Range()
			violations = append(violations, diagnostic.Finding{
				Func: cn.ref.Func,
				Ranges: []diagnostic.Range{{First: first, Last: last}},
				Check: "constraints",
				Severity: diagnostic.Error,
				Message: fmt.Sprintf(
					"%s parameter %q of distribution %s is estimated in %s, outside required range %s",
					paramLabel(cn.ref.Func), pname, n.Dist.Name, formatInterval(estimated), formatInterval(required),
				),
			})
		}
	}

	return violations, analyzable
}

// evalParams interval-estimates every parameter expression a distribution's catalog entry
// names, skipping any parameter the Distribution does not itself supply an expression for.
func evalParams(driver *evalengine.Driver, ref ir.NodeRef, n *ir.Node, entry catalog.Entry) map[string]ival.Interval {
	out := make(map[string]ival.Interval, len(entry.ParamOrder))
	for _, pname := range entry.ParamOrder {
		expr, ok := n.Dist.Param(pname)
		if !ok {
			continue
		}
		at := evalengine.At{Func: ref.Func, CFG: ref.CFG, Node: ref.Node}
		out[pname] = driver.EvalInterval(at, expr)
	}
	return out
}

// resolverFor returns a catalog.Constraint.ResolveBounds callback backed by params, falling
// back to ival.Full for a referenced parameter name this node's distribution did not supply
// (a conservative, sound default rather than a panic or a zero interval).
func resolverFor(params map[string]ival.Interval) func(string) ival.Interval {
	return func(name string) ival.Interval {
		if iv, ok := params[name]; ok {
			return iv
		}
		return ival.Full
	}
}

func paramLabel(funcName string) string {
	if funcName == "" {
		return "top-level"
	}
	return funcName
}

func formatInterval(iv ival.Interval) string {
	return fmt.Sprintf("[%s, %s]", formatBound(iv.Low), formatBound(iv.High))
}

func formatBound(v float64) string {
	switch {
	case v == negInf:
		return "-inf"
	case v == posInf:
		return "+inf"
	default:
		return fmt.Sprintf("%g", v)
	}
}

// negInf/posInf let formatBound special-case the extended-real endpoints without importing
// math purely to compare against math.Inf(±1).
var (
	negInf = ival.Full.Low
	posInf = ival.Full.High
)
