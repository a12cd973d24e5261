package ir

import "fmt"

// CFG is a control-flow graph: a node arena plus the designated Start and End sentinels.
// Parent/child edges are maintained in both directions so upward walks
// (reaching definitions, reachability) don't need to invert the graph on the fly. Multiedges
// between the same ordered pair of nodes are disallowed.
type CFG struct {
	Start ID
	End ID

	nodes []*Node // indexed by ID
}

// New returns an empty CFG containing only a freshly wired Start -> End edge, ready for a
// builder to splice sub-graphs into.
func New() *CFG {
	g := &CFG{}
	start := g.newNode(KindStart)
	end := g.newNode(KindEnd)
	g.Start = start
	g.End = end
	g.AddEdge(start, end)
	return g
}

func (g *CFG) newNode(kind NodeKind) ID {
	id := ID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{ID: id, Kind: kind, Then: -1, Else: -1})
	return id
}

// NewNode allocates and returns a node of the given kind. The caller is responsible for
// wiring its edges and populating its payload fields.
func (g *CFG) NewNode(kind NodeKind) *Node {
	id := g.newNode(kind)
	return g.nodes[id]
}

// Node returns the node for id. Panics if id is out of range, which indicates a caller bug
// (an ID from a different CFG, or a stale ID after the graph was rebuilt).
func (g *CFG) Node(id ID) *Node {
	return g.nodes[id]
}

// Nodes returns every node in the graph, in construction (ID) order — the deterministic
// traversal order reproducible diagnostics require.
func (g *CFG) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// hasEdge reports whether a child edge from->to already exists.
func (g *CFG) hasEdge(from, to ID) bool {
	for _, c := range g.nodes[from].children {
		if c == to {
			return true
		}
	}
	return false
}

// AddEdge adds a directed edge from -> to, maintaining both the child list of from and the
// parent list of to. It is a no-op if the edge already exists (multiedges disallowed).
func (g *CFG) AddEdge(from, to ID) {
	if g.hasEdge(from, to) {
		return
	}
	g.nodes[from].children = append(g.nodes[from].children, to)
	g.nodes[to].parents = append(g.nodes[to].parents, from)
}

// RemoveEdge removes the directed edge from -> to, if present, from both endpoints' adjacency
// lists.
func (g *CFG) RemoveEdge(from, to ID) {
	g.nodes[from].children = removeID(g.nodes[from].children, to)
	g.nodes[to].parents = removeID(g.nodes[to].parents, from)
}

func removeID(ids []ID, target ID) []ID {
	out := ids[:0:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// RewireChild replaces every edge into `to` with edges into `replacement`, preserving the
// order of `to`'s former parents. Used by the block-splicing templates: edges
// into/out of each sub-CFG's Start/End are rewired to the surrounding node.
func (g *CFG) RewireChild(to, replacement ID) {
	parents := append([]ID(nil), g.nodes[to].parents...)
	for _, p := range parents {
		g.RemoveEdge(p, to)
		g.AddEdge(p, replacement)
	}
}

// RewireParent replaces every edge out of `from` with edges out of `replacement`, preserving
// order.
func (g *CFG) RewireParent(from, replacement ID) {
	children := append([]ID(nil), g.nodes[from].children...)
	for _, c := range children {
		g.RemoveEdge(from, c)
		g.AddEdge(replacement, c)
	}
}

// String renders a short, deterministic debug dump of the graph (node kinds and edges), useful
// in test failure messages.
func (g *CFG) String() string {
	s := ""
	for _, n := range g.nodes {
		s += fmt.Sprintf("%d:%s children=%v\n", n.ID, n.Kind, n.children)
	}
	return s
}
