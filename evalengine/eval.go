package evalengine

import (
	"go.uber.org/pplcheck/dataflow"
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/symb"
)

// EvalInterval evaluates expr as if it occurred at `at`, resolving every free variable's
// reaching definitions (package dataflow) and recursively evaluating each one's own expression.
// A cyclic dependency (a variable whose definition, directly or transitively, depends on itself)
// widens to ival.Full rather than erroring's asymmetric cycle treatment.
func (d *Driver) EvalInterval(at At, expr ir.Expression) ival.Interval {
	val := map[string]ival.Interval{}
	for _, v := range expr.FreeVariables() {
		val[v.Name()] = d.intervalOfVar(at, v)
	}
	return expr.EvalInterval(val)
}

// EvalSymbolic is EvalInterval's symbolic-domain counterpart. It returns ErrSymbolicCycle
// (wrapped with no further context, since the cycle itself is already node-addressed) when
// resolving a free variable would revisit a valuation currently in progress.
func (d *Driver) EvalSymbolic(at At, expr ir.Expression) (symb.Expr, error) {
	val := map[string]symb.Expr{}
	for _, v := range expr.FreeVariables() {
		sv, err := d.symbolicOfVar(at, v)
		if err != nil {
			return symb.Expr{}, err
		}
		val[v.Name()] = sv
	}
	return expr.EvalSymbolic(val), nil
}

func (d *Driver) intervalOfVar(at At, v ir.Variable) ival.Interval {
	key := cacheKey{cfg: at.CFG, node: at.Node, v: v.Name()}
	if cached, ok := d.ivalCache[key]; ok {
		return cached
	}
	if d.working[key] {
		return ival.Full // cycle: widen rather than recurse forever
	}
	d.working[key] = true
	defer delete(d.working, key)

	rds := dataflow.RD(at.CFG, at.Node, v)
	var vals []ival.Interval
	for _, rd := range rds {
		vals = append(vals, d.intervalOfDef(at, rd)...)
	}
	result := ival.UnionAll(vals)
	d.ivalCache[key] = result
	return result
}

// intervalOfDef evaluates the value bound by reaching-definition node rd. When rd is a FuncArg
// node, the interprocedural extension applies: the value is the union, over every
// call site of the enclosing function, of that call's corresponding argument expression
// evaluated in the caller's own context.
func (d *Driver) intervalOfDef(at At, rd ir.ID) []ival.Interval {
	node := at.CFG.Node(rd)
	if node.Kind == ir.KindFuncArg {
		return d.intervalOfFuncArg(at.Func, node)
	}
	if node.Kind == ir.KindSample {
		if iv, ok := d.SampleIntervals[SampleKey{CFG: at.CFG, Node: rd}]; ok {
			return []ival.Interval{iv}
		}
	}
	e := defExprOf(node)
	if e == nil {
		return []ival.Interval{ival.Full}
	}
	return []ival.Interval{d.EvalInterval(At{Func: at.Func, CFG: at.CFG, Node: rd}, e)}
}

func (d *Driver) intervalOfFuncArg(funcName string, node *ir.Node) []ival.Interval {
	sites := dataflow.CallSites(d.Bundle, funcName)
	var out []ival.Interval
	for _, site := range sites {
		argExpr := dataflow.ArgExprAt(site.Call, node.ArgIndex)
		if argExpr == nil {
			argExpr = node.ArgDefault
		}
		if argExpr == nil {
			continue
		}
		out = append(out, d.EvalInterval(At{Func: site.Func, CFG: site.CFG, Node: site.Node}, argExpr))
	}
	if len(out) == 0 {
		if node.ArgDefault != nil {
			// No call sites found (e.g. an unreferenced function): fall back to the default
			// expression evaluated with no caller context.
			out = append(out, d.EvalInterval(At{}, node.ArgDefault))
		} else {
			out = append(out, ival.Full)
		}
	}
	return out
}

func (d *Driver) symbolicOfVar(at At, v ir.Variable) (symb.Expr, error) {
	key := cacheKey{cfg: at.CFG, node: at.Node, v: v.Name()}
	if cached, ok := d.symCache[key]; ok {
		return cached, nil
	}
	if d.working[key] {
		return symb.Expr{}, ErrSymbolicCycle
	}
	d.working[key] = true
	defer delete(d.working, key)

	rds := dataflow.RD(at.CFG, at.Node, v)
	if len(rds) == 0 {
		return symb.Constant(0), nil
	}

	defVals := map[ir.ID]symb.Expr{}
	for _, rd := range rds {
		vs, err := d.symbolicOfDef(at, rd)
		if err != nil {
			return symb.Expr{}, err
		}
		if len(vs) == 0 {
			continue
		}
		// Multiple call-site bindings for one FuncArg definition fold together flatly (context
		// insensitivity, its "union over all call sites"); the folded value stands in
		// for that one reaching-definition id when building the ite-chain below.
		combined := vs[0]
		for _, extra := range vs[1:] {
			combined = symb.IfElse(symb.True, combined, extra)
		}
		defVals[rd] = combined
	}

	result := d.combineSymbolic(at.Func, at.CFG, at.Node, rds, defVals)
	d.symCache[key] = result
	return result, nil
}

func (d *Driver) symbolicOfDef(at At, rd ir.ID) ([]symb.Expr, error) {
	node := at.CFG.Node(rd)
	if node.Kind == ir.KindFuncArg {
		return d.symbolicOfFuncArg(at.Func, node)
	}
	if node.Kind == ir.KindSample {
		if sv, ok := d.SampleSymbols[SampleKey{CFG: at.CFG, Node: rd}]; ok {
			return []symb.Expr{sv}, nil
		}
	}
	e := defExprOf(node)
	if e == nil {
		return nil, nil
	}
	v, err := d.EvalSymbolic(At{Func: at.Func, CFG: at.CFG, Node: rd}, e)
	if err != nil {
		return nil, err
	}
	return []symb.Expr{v}, nil
}

func (d *Driver) symbolicOfFuncArg(funcName string, node *ir.Node) ([]symb.Expr, error) {
	sites := dataflow.CallSites(d.Bundle, funcName)
	var out []symb.Expr
	for _, site := range sites {
		argExpr := dataflow.ArgExprAt(site.Call, node.ArgIndex)
		if argExpr == nil {
			argExpr = node.ArgDefault
		}
		if argExpr == nil {
			continue
		}
		v, err := d.EvalSymbolic(At{Func: site.Func, CFG: site.CFG, Node: site.Node}, argExpr)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// EvalCallSymbolic evaluates a call to a user-defined function directly, for callers (such as
// the funnel and constraint checks) that discover a call expression via Expression.CallsTo
// rather than by resolving a free variable: the result is the ite-chain combination, over every
// Return in the callee, of that Return expression's value.
func (d *Driver) EvalCallSymbolic(funcName string) (symb.Expr, error) {
	g, ok := d.Bundle.Functions[funcName]
	if !ok {
		return symb.Constant(0), nil
	}
	returns := d.Bundle.Returns(funcName)
	if len(returns) == 0 {
		return symb.Constant(0), nil
	}
	vals := map[ir.ID]symb.Expr{}
	for _, r := range returns {
		n := g.Node(r)
		if n.ReturnExpr == nil {
			continue
		}
		v, err := d.EvalSymbolic(At{Func: funcName, CFG: g, Node: r}, n.ReturnExpr)
		if err != nil {
			return symb.Expr{}, err
		}
		vals[r] = v
	}
	return d.combineSymbolic(funcName, g, -1, returns, vals), nil
}

// EvalCallInterval is EvalCallSymbolic's interval-domain counterpart.
func (d *Driver) EvalCallInterval(funcName string) ival.Interval {
	g, ok := d.Bundle.Functions[funcName]
	if !ok {
		return ival.Full
	}
	var vals []ival.Interval
	for _, r := range d.Bundle.Returns(funcName) {
		n := g.Node(r)
		if n.ReturnExpr == nil {
			continue
		}
		vals = append(vals, d.EvalInterval(At{Func: funcName, CFG: g, Node: r}, n.ReturnExpr))
	}
	return ival.UnionAll(vals)
}

func defExprOf(n *ir.Node) ir.Expression {
	switch n.Kind {
	case ir.KindAssign, ir.KindSample, ir.KindLoopIter:
		return n.Value
	case ir.KindFuncArg:
		return n.ArgDefault
	}
	return nil
}

// combineSymbolic stitches multiple reaching-definition (or Return) values into a single
// symbolic term via a nested ite-chain, partitioning by the first branch parent of the
// definitions themselves that cleanly separates them into its Then side and its Else side. Pass
// at < 0 to skip branch-parent lookup entirely (used when combining Returns, which are not
// themselves reached from a single use site). When no branch parent separates them cleanly —
// the common case being a single definition, the rare case being defs the blocked-reachability
// test cannot classify — the most recently constructed definition wins, so this is not a fully
// general path-sensitive join.
func (d *Driver) combineSymbolic(funcName string, g *ir.CFG, at ir.ID, defs []ir.ID, vals map[ir.ID]symb.Expr) symb.Expr {
	ordered := make([]ir.ID, 0, len(defs))
	for _, id := range defs {
		if _, ok := vals[id]; ok {
			ordered = append(ordered, id)
		}
	}
	if len(ordered) == 0 {
		return symb.Constant(0)
	}
	if len(ordered) == 1 {
		return vals[ordered[0]]
	}

	if at >= 0 {
		var branches []ir.ID
		seen := map[ir.ID]bool{}
		for _, id := range ordered {
			for _, br := range dataflow.BP(g, id) {
				if !seen[br] {
					seen[br] = true
					branches = append(branches, br)
				}
			}
		}
		for _, branch := range branches {
			thenDefs, elseDefs, ok := splitByBranch(g, branch, ordered)
			if !ok {
				continue
			}
			node := g.Node(branch)
			condVal, err := d.EvalSymbolic(At{Func: funcName, CFG: g, Node: branch}, node.Test)
			if err != nil {
				break // cyclic test condition: fall through to most-recent-wins below
			}
			return symb.IfElse(condVal, d.combineSymbolic(funcName, g, -1, thenDefs, vals), d.combineSymbolic(funcName, g, -1, elseDefs, vals))
		}
	}

	// No disambiguating branch parent found (or its test is itself cyclic): the definition
	// constructed last (IDs are assigned in construction order) wins.
	last := ordered[0]
	for _, id := range ordered[1:] {
		if id > last {
			last = id
		}
	}
	return vals[last]
}

func splitByBranch(g *ir.CFG, branch ir.ID, defs []ir.ID) (thenDefs, elseDefs []ir.ID, ok bool) {
	node := g.Node(branch)
	g.WithBlocked([]ir.ID{branch}, func() {
		for _, d := range defs {
			thenReach := g.IsReachable(node.Then, d)
			elseReach := g.IsReachable(node.Else, d)
			switch {
			case thenReach && !elseReach:
				thenDefs = append(thenDefs, d)
			case elseReach && !thenReach:
				elseDefs = append(elseDefs, d)
			default:
				// Ambiguous (both or neither): fold into the else side rather than discarding.
				elseDefs = append(elseDefs, d)
			}
		}
	})
	if len(thenDefs) == 0 || len(elseDefs) == 0 {
		return nil, nil, false
	}
	return thenDefs, elseDefs, true
}
