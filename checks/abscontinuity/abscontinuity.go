// Package abscontinuity implements an absolute-continuity checker: given a
// guide's sample nodes (P_nodes) and a model's sample nodes (Q_nodes) over a shared IR bundle,
// it discharges "P ≪ Q" to an external SMT solver (package smt) by building the formula
//
//	¬ ( (⋀ pc(n) ⇒ dc(n), n ∈ P_nodes) ⇒ (⋀ pc(n) ⇒ dc(n), n ∈ Q_nodes) )
//
// A sat result is a counter-example witnessing that the guide can place mass somewhere the
// model cannot (a GlobalAbsoluteContinuityViolation); unsat proves the implication
// and no finding is reported; unknown is treated conservatively as "could not prove".
package abscontinuity

import (
	"fmt"
	"math"

	"go.uber.org/pplcheck/catalog"
	"go.uber.org/pplcheck/diagnostic"
	"go.uber.org/pplcheck/evalengine"
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/pathcond"
	"go.uber.org/pplcheck/smt"
	"go.uber.org/pplcheck/symb"
)

// Check runs the absolute-continuity obligation P ≪ Q over bundle, where pNodes is
// conventionally the guide's sample nodes and qNodes the model's. solver discharges the resulting formula; any
// implementation of smt.Solver works, including package smt/refsolver's reference solver for
// the single-variable linear fragment this checker always emits.
//
// Check returns an error when a path condition cannot be built (the symbolic evaluator signals a
// cycle) or when the solver itself returns an error; callers should treat
// that as "this pair of node sets is not analyzable" rather than abort the whole run.
func Check(solver smt.Solver, bundle *ir.Bundle, pNodes, qNodes []ir.NodeRef) ([]diagnostic.Finding, error) {
	gen := symb.NewGenerator("s")
	symDriver := evalengine.New(bundle, evalengine.Symbolic)
	symDriver.SampleSymbols = map[evalengine.SampleKey]symb.Expr{}
	ivalDriver := evalengine.New(bundle, evalengine.Interval)

	// Step 1: a fresh symbol per sample node in P_nodes ∪ Q_nodes, installed as assumptions so
	// a reference to an already-sampled variable resolves to its symbol rather than expanding
	// the (absent) sample value expression. The Generator is keyed by the sample's address (or,
	// lacking one, its target variable name) rather than by node ID: P_nodes and Q_nodes live in
	// different CFGs whose node IDs both start at 0, so a bare ir.ID would let an unrelated pair
	// of guide/model variables collide onto one symbol while the *same* latent variable (shared
	// address) in guide and model minted two different ones. Keying by address is what lets a
	// shared latent variable alias to the same symbol on both sides of the implication.
	for _, ref := range pNodes {
		symDriver.SampleSymbols[evalengine.SampleKey{CFG: ref.CFG, Node: ref.Node}] = gen.For(addressKey(ref), symb.Real)
	}
	for _, ref := range qNodes {
		symDriver.SampleSymbols[evalengine.SampleKey{CFG: ref.CFG, Node: ref.Node}] = gen.For(addressKey(ref), symb.Real)
	}

	pImpl, err := obligations(symDriver, ivalDriver, gen, pNodes)
	if err != nil {
		return nil, fmt.Errorf("abscontinuity: guide side: %w", err)
	}
	qImpl, err := obligations(symDriver, ivalDriver, gen, qNodes)
	if err != nil {
		return nil, fmt.Errorf("abscontinuity: model side: %w", err)
	}

	formula := symb.Not(implies(pImpl, qImpl))
	result, err := solver.CheckSat(formula)
	if err != nil {
		return nil, fmt.Errorf("abscontinuity: solver: %w", err)
	}
	if result != smt.Sat {
		// Unsat proves P ≪ Q; Unknown is "could not prove" — neither is a violation.
		return nil, nil
	}

	first, last := 0, 0
	if len(qNodes) > 0 {
		first, last = rangeOf(qNodes[0])
	} else if len(pNodes) > 0 {
		first, last = rangeOf(pNodes[0])
	}
	return []diagnostic.Finding{{
		Func: funcLabel(qNodes, pNodes),
		Ranges: []diagnostic.Range{{First: first, Last: last}},
		Check: "abscontinuity",
		Severity: diagnostic.Error,
		Message: "GlobalAbsoluteContinuityViolation: the guide's support is not absolutely " +
			"continuous with respect to the model's (the SMT solver found a satisfying " +
			"assignment where the guide's path/support constraints hold but the model's do not)",
	}}, nil
}

// obligations computes ⋀ (pc(n) ⇒ dc(n)) over nodes.
func obligations(symDriver, ivalDriver *evalengine.Driver, gen *symb.Generator, nodes []ir.NodeRef) (symb.Expr, error) {
	var conj []symb.Expr
	for _, ref := range nodes {
		pc, err := pathcond.Of(symDriver, ref.Func, ref.CFG, ref.Node)
		if err != nil {
			return symb.Expr{}, err
		}
		dc := supportCondition(ivalDriver, gen, ref)
		conj = append(conj, implies(pc, dc))
	}
	return symb.And(conj...), nil
}

// supportCondition is dc(n): the interval-projected support of the sample
// node, expressed as a linear inequality over the symbol gen minted for n. A sample whose
// support does not project to a bounded or half-bounded interval (unbounded both sides,
// or a structural constraint like Simplex/Ordered that projects to Full) contributes
// no constraint, i.e. True.
func supportCondition(driver *evalengine.Driver, gen *symb.Generator, ref ir.NodeRef) symb.Expr {
	iv, ok := supportInterval(driver, ref)
	if !ok {
		return symb.True
	}
	sym, ok := gen.Lookup(addressKey(ref))
	if !ok {
		return symb.True
	}
	var conj []symb.Expr
	if !math.IsInf(iv.Low, -1) {
		conj = append(conj, symb.MakeOp(">=", sym, symb.Constant(iv.Low)))
	}
	if !math.IsInf(iv.High, 1) {
		conj = append(conj, symb.MakeOp("<=", sym, symb.Constant(iv.High)))
	}
	if len(conj) == 0 {
		return symb.True
	}
	return symb.And(conj...)
}

// supportInterval looks up ref's distribution in the catalog and projects its (possibly
// parameter-dependent) support constraint to an interval, resolving any parameter-dependent
// endpoint against this node's own parameter expressions, mirroring package checks/constraints'
// pass-1 support resolution but scoped to a single node on demand rather
// than precomputed for the whole bundle.
func supportInterval(driver *evalengine.Driver, ref ir.NodeRef) (ival.Interval, bool) {
	n := ref.CFG.Node(ref.Node)
	if n.Dist == nil {
		return ival.Interval{}, false
	}
	entry, ok := catalog.Lookup(catalog.NormalizeName(n.Dist.Name))
	if !ok {
		return ival.Interval{}, false
	}
	resolve := func(paramName string) ival.Interval {
		expr, ok := n.Dist.Param(paramName)
		if !ok {
			return ival.Full
		}
		at := evalengine.At{Func: ref.Func, CFG: ref.CFG, Node: ref.Node}
		return driver.EvalInterval(at, expr)
	}
	return entry.Support.ResolveBounds(resolve).ToInterval()
}

// implies builds a ⇒ b as ¬a ∨ b, the only encoding available in the canonical operator set.
func implies(a, b symb.Expr) symb.Expr {
	return symb.Or(symb.Not(a), b)
}

func rangeOf(ref ir.NodeRef) (first, last int) {
	n := ref.CFG.Node(ref.Node)
	if n.Value != nil {
		return n.Value.Range()
	}
	return 0, 0
}

func funcLabel(qNodes, pNodes []ir.NodeRef) string {
	if len(qNodes) > 0 {
		return qNodes[0].Func
	}
	if len(pNodes) > 0 {
		return pNodes[0].Func
	}
	return ""
}

// addressKey returns the identity a sample node's symbol is minted against: its address
// expression's source text when the frontend supplied one (the addressing scheme a guide and
// its model use to name "the same" latent variable, mirroring the original checker's
// symbolic_name()), falling back to the sampled variable's plain name when no address
// expression is present. Either way this is independent of the owning CFG and of node ID, so a
// guide sample and a model sample that name the same site collide onto one Generator key (and
// therefore one symbol) exactly when they should.
func addressKey(ref ir.NodeRef) string {
	n := ref.CFG.Node(ref.Node)
	if n.Address != nil {
		return n.Address.Text()
	}
	if n.Target != nil {
		return n.Target.Var().Name()
	}
	return fmt.Sprintf("%s#%d", ref.Func, ref.Node)
}
