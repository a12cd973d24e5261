package dataflow

import "go.uber.org/pplcheck/ir"

// BP computes the branch parents of node `at` within a single CFG g: walking
// upward from `at`, a Branch node B is a branch parent when control reaching `at` must have
// passed through exactly one of B's two children — that is, `at` is reachable from Then xor
// reachable from Else, with B itself blocked while testing so a loop's back-edge through B
// cannot make both sides trivially "reachable". Path-condition generation walks
// this same list to learn which test (and which side) a path must have satisfied to reach a
// node. As with RD, the walk stops revisiting a node already on the current upward path (cycle
// detection by path membership) and memoizes at Branch nodes to avoid re-walking a diamond once
// per downstream use.
func BP(g *ir.CFG, at ir.ID) []ir.ID {
	m := &bpMemo{g: g, target: at, branchMemo: map[ir.ID][]ir.ID{}}
	seen := map[ir.ID]bool{at: true}
	var out []ir.ID
	for _, p := range g.Node(at).Parents() {
		out = append(out, m.walk(p, seen)...)
	}
	return dedupIDs(out)
}

type bpMemo struct {
	g *ir.CFG
	target ir.ID
	branchMemo map[ir.ID][]ir.ID
}

func (m *bpMemo) walk(n ir.ID, onPath map[ir.ID]bool) []ir.ID {
	if onPath[n] {
		return nil
	}
	if cached, ok := m.branchMemo[n]; ok {
		return cached
	}

	var out []ir.ID
	node := m.g.Node(n)
	if node.Kind == ir.KindBranch && m.disagrees(node) {
		out = append(out, n)
	}

	onPath2 := markPath(onPath, n)
	for _, p := range node.Parents() {
		out = append(out, m.walk(p, onPath2)...)
	}
	out = dedupIDs(out)

	if node.Kind == ir.KindBranch {
		m.branchMemo[n] = out
	}
	return out
}

// disagrees reports whether `at` is reachable from exactly one of the branch's two children.
func (m *bpMemo) disagrees(branch *ir.Node) bool {
	var thenReach, elseReach bool
	m.g.WithBlocked([]ir.ID{branch.ID}, func() {
		thenReach = m.g.IsReachable(branch.Then, m.target)
		elseReach = m.g.IsReachable(branch.Else, m.target)
	})
	return thenReach != elseReach
}
