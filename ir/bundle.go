package ir

import "sort"

// Bundle is the mapping from function definition to CFG, plus optional model/guide references.
// It is constructed once per input file by a frontend and is
// immutable thereafter; every analysis in this repository is stateless over an already-built
// Bundle.
type Bundle struct {
	// TopLevel is the CFG for the program's top-level statements (outside any function).
	TopLevel *CFG
	// Functions maps function name to its CFG.
	Functions map[string]*CFG

	// Model and Guide, when set, name the entries of Functions (or TopLevel, by convention
	// named "") that the absolute-continuity checker should compare. Either may be
	// left unset when only the structural checks (constraints, funnel, random-control-flow)
	// are required.
	Model string
	Guide string
}

// NewBundle returns an empty Bundle ready to be populated by a frontend.
func NewBundle() *Bundle {
	return &Bundle{Functions: map[string]*CFG{}}
}

// Returns returns every Return node in the named function's CFG, in construction order. Used
// by the interprocedural extension ("fold in the dependencies/parents collected
// at every Return in f") and by the abstract-evaluation driver's handling of a call to a
// user-defined function.
func (bd *Bundle) Returns(funcName string) []ID {
	g, ok := bd.Functions[funcName]
	if !ok {
		return nil
	}
	var out []ID
	for _, n := range g.Nodes() {
		if n.Kind == KindReturn {
			out = append(out, n.ID)
		}
	}
	return out
}

// SampleNodes returns every Sample node across every CFG in the bundle (TopLevel and every
// function), in a deterministic order: TopLevel first, then Functions in name order, and
// within each CFG in construction order.
func (bd *Bundle) SampleNodes() []NodeRef {
	return bd.nodesOfKind(KindSample)
}

// FactorNodes returns every Factor node across every CFG in the bundle, in the same
// deterministic order as SampleNodes.
func (bd *Bundle) FactorNodes() []NodeRef {
	return bd.nodesOfKind(KindFactor)
}

func (bd *Bundle) nodesOfKind(kind NodeKind) []NodeRef {
	var out []NodeRef
	collect := func(funcName string, g *CFG) {
		for _, n := range g.Nodes() {
			if n.Kind == kind {
				out = append(out, NodeRef{Func: funcName, CFG: g, Node: n.ID})
			}
		}
	}
	if bd.TopLevel != nil {
		collect("", bd.TopLevel)
	}
	for _, name := range bd.sortedFuncNames() {
		collect(name, bd.Functions[name])
	}
	return out
}

func (bd *Bundle) sortedFuncNames() []string {
	names := make([]string, 0, len(bd.Functions))
	for name := range bd.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeRef identifies a node within a specific CFG of a Bundle: which function it belongs to
// ("" for TopLevel), the CFG itself, and the node ID within it.
type NodeRef struct {
	Func string
	CFG *CFG
	Node ID
}
