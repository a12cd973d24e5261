package ir

// Fragment is a single-entry sub-graph under construction: Entry is the first node a
// predecessor edge should attach to, Exit is the last node a successor edge should attach to.
// Breaks/Continues/Returns collects the IDs of terminal nodes created within this
// fragment that have not yet been claimed by an enclosing While/For (break, continue) or
// FuncDef (return); the enclosing construct "claims" them by rewiring their outgoing edge to
// the correct join and removing them from the list it returns upward.
type Fragment struct {
	Entry ID
	Exit ID

	Breaks []ID
	Continues []ID
	Returns []ID
}

// Builder constructs CFGs using a fixed set of splicing templates. A Builder wraps exactly
// one CFG under construction; frontends create one Builder per function (and one for the
// top-level module body).
type Builder struct {
	G *CFG
}

// NewBuilder returns a Builder over a fresh, empty CFG (Start directly wired to End).
func NewBuilder() *Builder {
	return &Builder{G: New()}
}

// Skip appends an explicit no-op node, used for empty branches.
func (b *Builder) Skip() Fragment {
	n := b.G.NewNode(KindSkip)
	return Fragment{Entry: n.ID, Exit: n.ID}
}

// Straight allocates a single straight-line node (Assign, Sample, Factor, LoopIter, FuncArg,
// Expr) and returns it as a one-node fragment. populate fills in the node's payload fields.
func (b *Builder) Straight(kind NodeKind, populate func(*Node)) Fragment {
	n := b.G.NewNode(kind)
	if populate != nil {
		populate(n)
	}
	return Fragment{Entry: n.ID, Exit: n.ID}
}

// Terminal allocates a Break, Continue, or Return node. Its single outgoing edge initially
// goes nowhere meaningful: Break/Continue/Return become special terminal nodes whose edges are
// deleted and rewired once their enclosing sub-CFG is wired; it is recorded on the returned
// Fragment so the enclosing loop or function definition can claim and fix it up later.
func (b *Builder) Terminal(kind NodeKind, populate func(*Node)) Fragment {
	n := b.G.NewNode(kind)
	if populate != nil {
		populate(n)
	}
	f := Fragment{Entry: n.ID, Exit: n.ID}
	switch kind {
	case KindBreak:
		f.Breaks = []ID{n.ID}
	case KindContinue:
		f.Continues = []ID{n.ID}
	case KindReturn:
		f.Returns = []ID{n.ID}
	}
	return f
}

// Seq concatenates fragments sequentially: each fragment's
// Exit is wired to the next fragment's Entry. An empty list returns a fresh Skip fragment.
// Unclaimed Breaks/Continues/Returns are unioned across all fragments.
func (b *Builder) Seq(frags...Fragment) Fragment {
	if len(frags) == 0 {
		return b.Skip()
	}
	out := frags[0]
	for _, f := range frags[1:] {
		b.G.AddEdge(out.Exit, f.Entry)
		out.Exit = f.Exit
		out.Breaks = append(out.Breaks, f.Breaks...)
		out.Continues = append(out.Continues, f.Continues...)
		out.Returns = append(out.Returns, f.Returns...)
	}
	return out
}

// If builds `Start → Branch → {then-sub, else-sub} → Join → End`. When hasElse is
// false, els is ignored and the Branch's orelse edge goes directly to the Join.
func (b *Builder) If(test Expression, then Fragment, els Fragment, hasElse bool) Fragment {
	branch := b.G.NewNode(KindBranch)
	branch.Test = test
	join := b.G.NewNode(KindJoin)

	b.G.AddEdge(branch.ID, then.Entry)
	branch.Then = then.Entry
	b.G.AddEdge(then.Exit, join.ID)

	if hasElse {
		b.G.AddEdge(branch.ID, els.Entry)
		branch.Else = els.Entry
		b.G.AddEdge(els.Exit, join.ID)
	} else {
		b.G.AddEdge(branch.ID, join.ID)
		branch.Else = join.ID
	}

	out := Fragment{Entry: branch.ID, Exit: join.ID}
	out.Breaks = append(out.Breaks, then.Breaks...)
	out.Continues = append(out.Continues, then.Continues...)
	out.Returns = append(out.Returns, then.Returns...)
	if hasElse {
		out.Breaks = append(out.Breaks, els.Breaks...)
		out.Continues = append(out.Continues, els.Continues...)
		out.Returns = append(out.Returns, els.Returns...)
	}
	return out
}

// While builds `Start → StartJoin → Branch → {body → StartJoin (back-edge), EndJoin} → End`.
// Every Break in body is claimed and fixed up to target EndJoin; every Continue is
// claimed and fixed up to target StartJoin. Returns inside body remain unclaimed and propagate
// to the caller (ultimately claimed by the enclosing FuncDef).
func (b *Builder) While(test Expression, body Fragment) Fragment {
	startJoin := b.G.NewNode(KindJoin)
	branch := b.G.NewNode(KindBranch)
	branch.Test = test
	endJoin := b.G.NewNode(KindJoin)

	b.G.AddEdge(startJoin.ID, branch.ID)
	b.G.AddEdge(branch.ID, body.Entry)
	branch.Then = body.Entry
	b.G.AddEdge(body.Exit, startJoin.ID) // back-edge
	b.G.AddEdge(branch.ID, endJoin.ID)
	branch.Else = endJoin.ID

	for _, id := range body.Breaks {
		b.fixupTerminal(id, endJoin.ID)
	}
	for _, id := range body.Continues {
		b.fixupTerminal(id, startJoin.ID)
	}

	return Fragment{Entry: startJoin.ID, Exit: endJoin.ID, Returns: body.Returns}
}

// For builds a While-shaped loop (driven by test, typically "more elements remain") with a
// LoopIter node representing the induction-variable binding spliced on the body-entry edge.
func (b *Builder) For(test Expression, iterTarget AssignTarget, iterExpr Expression, body Fragment) Fragment {
	iterNode := b.G.NewNode(KindLoopIter)
	iterNode.Target = iterTarget
	iterNode.Value = iterExpr
	wrappedBody := b.Seq(Fragment{Entry: iterNode.ID, Exit: iterNode.ID}, body)
	return b.While(test, wrappedBody)
}

// FuncDef builds `FuncStart → FuncArg1 → … → FuncArgN → body → FuncJoin → End`.
// Every Return within body (including ones nested in loops the caller already built) is
// claimed and fixed up to target FuncJoin. After wiring, PopulateJoinNodes is run over the
// whole graph so every Branch's JoinNodes set reflects the now-final control structure, and the
// graph is verified.
func (b *Builder) FuncDef(signature string, args []Fragment, body Fragment) error {
	funcStart := b.G.NewNode(KindFuncStart)
	funcStart.Signature = signature

	argsFragment := b.Seq(args...)
	whole := b.Seq(Fragment{Entry: funcStart.ID, Exit: funcStart.ID}, argsFragment, body)

	funcJoin := b.G.NewNode(KindJoin)

	// Splice `whole` between the graph's Start and End sentinels, replacing the placeholder
	// Start->End edge New() wired in.
	b.G.RemoveEdge(b.G.Start, b.G.End)
	b.G.AddEdge(b.G.Start, whole.Entry)
	b.G.AddEdge(whole.Exit, funcJoin.ID)
	b.G.AddEdge(funcJoin.ID, b.G.End)

	for _, id := range whole.Returns {
		b.fixupTerminal(id, funcJoin.ID)
	}

	PopulateJoinNodes(b.G)
	return Verify(b.G)
}

// TopLevel splices body directly between Start and End with no FuncStart/FuncArg wrapping. Any
// unclaimed Return within body is treated as a direct jump to End, since a top-level program
// has no enclosing function join to target.
func (b *Builder) TopLevel(body Fragment) error {
	b.G.RemoveEdge(b.G.Start, b.G.End)
	b.G.AddEdge(b.G.Start, body.Entry)
	b.G.AddEdge(body.Exit, b.G.End)

	for _, id := range body.Returns {
		b.fixupTerminal(id, b.G.End)
	}

	PopulateJoinNodes(b.G)
	return Verify(b.G)
}

// fixupTerminal deletes every outgoing edge of a Break/Continue/Return node and replaces it
// with a single edge to target.
func (b *Builder) fixupTerminal(id ID, target ID) {
	n := b.G.Node(id)
	for _, c := range append([]ID(nil), n.children...) {
		b.G.RemoveEdge(id, c)
	}
	b.G.AddEdge(id, target)
}

// PopulateJoinNodes fills in, for every Branch in g, its join-nodes set: every
// Join reachable by a forward walk from either the Then or Else successor, which (by
// construction time) already accounts for Joins reached via intervening break/continue/return
// since those terminals have been fixed up to point at their target joins before this runs.
func PopulateJoinNodes(g *CFG) {
	joins := map[ID]bool{}
	for _, n := range g.nodes {
		if n.Kind == KindJoin {
			joins[n.ID] = true
		}
	}
	for _, n := range g.nodes {
		if n.Kind != KindBranch {
			continue
		}
		n.JoinNodes = map[ID]bool{}
		reached := g.ReachableSet(n.Then)
		for id := range g.ReachableSet(n.Else) {
			reached[id] = true
		}
		for id := range reached {
			if joins[id] {
				n.JoinNodes[id] = true
			}
		}
	}
}
