// Package randomcontrolflow implements an HMC-assumption detector: it flags a
// sample or factor node whose value is reachable, through some chain of data dependencies, from
// a definition whose own execution is controlled by a branch testing a random variable —
// stochastic control flow, which violates Hamiltonian Monte Carlo's requirement of a
// fixed program structure (scenario S5).
package randomcontrolflow

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/pplcheck/dataflow"
	"go.uber.org/pplcheck/diagnostic"
	"go.uber.org/pplcheck/ir"
)

// Check runs the detector over every sample and factor node in bundle.
func Check(bundle *ir.Bundle) []diagnostic.Finding {
	var out []diagnostic.Finding
	refs := append(append([]ir.NodeRef(nil), bundle.SampleNodes()...), bundle.FactorNodes()...)
	for _, ref := range refs {
		deps := dependenciesOf(ref)
		if len(deps) == 0 {
			continue
		}
		out = append(out, finding(ref, deps))
	}
	return out
}

// dependenciesOf performs a worklist traversal: starting from ref's own free
// variables with the inside-control bit clear, data dependencies (reaching definitions of a
// free variable) inherit the bit unchanged, while control dependencies (the branch parents of
// whichever node is currently being visited — the branches whose decision determines whether
// that definition executes at all) set the bit and contribute their test expression's own free
// variables to the worklist. Any Sample node reached with the bit set is recorded as a
// dependency; per funnel's precedent, traversal does not continue past a Sample
// node, since that node is already the informative answer for this chain.
func dependenciesOf(ref ir.NodeRef) []ir.ID {
	g := ref.CFG
	visited := map[ir.ID]map[bool]bool{}
	seenDep := map[ir.ID]bool{}
	var deps []ir.ID

	var process func(n ir.ID, bit bool)
	process = func(n ir.ID, bit bool) {
		if visited[n] == nil {
			visited[n] = map[bool]bool{}
		}
		if visited[n][bit] {
			return
		}
		visited[n][bit] = true

		node := g.Node(n)
		if node.Kind == ir.KindSample && n != ref.Node {
			if bit && !seenDep[n] {
				seenDep[n] = true
				deps = append(deps, n)
			}
			return
		}

		for _, e := range exprsOf(node) {
			for _, v := range e.FreeVariables() {
				for _, rd := range dataflow.RD(g, n, v) {
					process(rd, bit)
				}
			}
		}

		for _, branch := range dataflow.BP(g, n) {
			bnode := g.Node(branch)
			if bnode.Test == nil {
				continue
			}
			for _, v := range bnode.Test.FreeVariables() {
				for _, rd := range dataflow.RD(g, branch, v) {
					process(rd, true)
				}
			}
		}
	}

	process(ref.Node, false)

	sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
	return deps
}

// exprsOf returns the expressions a node carries that are relevant to dependency exploration:
// for the original target (a Sample or Factor), its value/factor/distribution-parameter
// expressions; for an intermediate definition reached while walking upward, its bound value
// expression. Mirrors package dataflow's unexported exprsOf/defExpr so this package can walk
// the same node shapes without depending on dataflow's internals.
func exprsOf(n *ir.Node) []ir.Expression {
	var out []ir.Expression
	switch n.Kind {
	case ir.KindAssign, ir.KindLoopIter:
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
	case ir.KindFuncArg:
		if n.ArgDefault != nil {
			out = append(out, n.ArgDefault)
		}
	}
	filtered := out[:0]
	for _, e := range out {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func finding(ref ir.NodeRef, deps []ir.ID) diagnostic.Finding {
	g := ref.CFG
	node := g.Node(ref.Node)

	names := make([]string, 0, len(deps))
	for _, d := range deps {
		dn := g.Node(d)
		name := "an unnamed sample"
		if dn.Target != nil {
			name = dn.Target.Var().Name()
		}
		names = append(names, name)
	}

	first, last := rangeOf(node)
	return diagnostic.Finding{
		Func: ref.Func,
		Ranges: []diagnostic.Range{{First: first, Last: last}},
		Check: "randomcontrolflow",
		Severity: diagnostic.Warning,
		Message: fmt.Sprintf(
			"RandomControlDependentWarning: %s node is control-dependent on random variable(s) [%s]; stochastic control flow is not supported by HMC-family inference",
			kindLabel(node.Kind), strings.Join(names, ", "),
		),
	}
}

func rangeOf(n *ir.Node) (first, last int) {
	switch n.Kind {
	case ir.KindSample:
		if n.Value != nil {
			return n.Value.Range()
		}
	case ir.KindFactor:
		if n.Factor != nil {
			return n.Factor.Range()
		}
	}
	return 0, 0
}

func kindLabel(k ir.NodeKind) string {
	if k == ir.KindFactor {
		return "factor"
	}
	return "sample"
}
