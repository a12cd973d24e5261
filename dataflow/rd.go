package dataflow

import "go.uber.org/pplcheck/ir"

// RD computes the reaching definitions of variable v at node `at` within a single CFG g:
// walking upward along parent edges from `at`, a parent is a reaching definition when it
// is an assignment/sample/function-arg/loop-iter whose target writes to v; the walk stops along
// that branch once it finds one. Loops are handled by tracking the nodes already visited on the
// current upward path and never revisiting them (a cycle contributes no further definitions
// along that path). Branch nodes are memoized so a diamond in the control-flow graph is walked
// at most once per (node, variable) pair, regardless of how many downstream uses re-trigger the
// walk through it.
//
// Indexed-target refinement: when
// both the definition's target and the use are indexed references to the same base variable,
// the definition kills (and the walk stops) only if StaticIndexEqual reports the indices
// provably equal; otherwise the definition still reaches (it might be the one that set v) but
// the walk continues upward past it, since it does not definitively account for every index. A
// definition that assigns the whole (non-indexed) base variable always kills, regardless of
// whether the use is indexed — assigning `x =...` necessarily redefines every element of `x`.
// Symmetrically, a definition of `x[i]` never kills a use of the whole (non-indexed) base `x`,
// it only reaches (other elements may still come from elsewhere).
func RD(g *ir.CFG, at ir.ID, v ir.Variable) []ir.ID {
	m := &rdMemo{g: g, v: v, branchMemo: map[ir.ID][]ir.ID{}}
	seen := map[ir.ID]bool{at: true}
	var out []ir.ID
	for _, p := range g.Node(at).Parents() {
		out = append(out, m.walk(p, seen)...)
	}
	return dedupIDs(out)
}

type rdMemo struct {
	g *ir.CFG
	v ir.Variable
	branchMemo map[ir.ID][]ir.ID
}

func (m *rdMemo) walk(n ir.ID, onPath map[ir.ID]bool) []ir.ID {
	if onPath[n] {
		return nil // cycle: terminate without revisiting
	}
	if cached, ok := m.branchMemo[n]; ok {
		return cached
	}

	node := m.g.Node(n)
	if target, ok := writesTo(node); ok {
		kills, reaches := classifyDef(target, m.v)
		if kills {
			return []ir.ID{n}
		}
		if reaches {
			// Reaches but does not kill: continue upward too, unioning this definition in.
			onPath2 := markPath(onPath, n)
			above := m.continueUpward(n, onPath2)
			return append([]ir.ID{n}, above...)
		}
		// Neither kills nor reaches (different, provably-distinct variable): keep walking.
	}

	onPath2 := markPath(onPath, n)
	result := m.continueUpward(n, onPath2)

	if node.Kind == ir.KindBranch {
		m.branchMemo[n] = result
	}
	return result
}

func (m *rdMemo) continueUpward(n ir.ID, onPath map[ir.ID]bool) []ir.ID {
	var out []ir.ID
	for _, p := range m.g.Node(n).Parents() {
		out = append(out, m.walk(p, onPath)...)
	}
	return dedupIDs(out)
}

func markPath(onPath map[ir.ID]bool, n ir.ID) map[ir.ID]bool {
	next := make(map[ir.ID]bool, len(onPath)+1)
	for k := range onPath {
		next[k] = true
	}
	next[n] = true
	return next
}

// classifyDef decides, for a definition's AssignTarget against a use of variable v, whether the
// definition kills the upward walk (is definitively the reaching definition) and/or reaches
// (should be included in the result regardless).
func classifyDef(target ir.AssignTarget, v ir.Variable) (kills, reaches bool) {
	if !target.EqualVar(v) {
		return false, false
	}
	tVar := target.Var()
	_, _, tIndexed := tVar.Indexed()
	_, _, vIndexed := v.Indexed()

	if !tIndexed {
		// Whole-variable write: always kills, whether the use is indexed or not.
		return true, true
	}
	if !vIndexed {
		// Indexed write, whole-variable use: reaches but never kills.
		return false, true
	}
	// Both indexed: kill only when we can statically prove the same index.
	if tVar.StaticIndexEqual(v) {
		return true, true
	}
	return false, true
}

func dedupIDs(ids []ir.ID) []ir.ID {
	seen := map[ir.ID]bool{}
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
