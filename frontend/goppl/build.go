// Package goppl is a frontend adapter for a small Go-embedded probabilistic-programming
// surface: ordinary Go functions that call frontend/goppl/ppl's Sample/Observe/Factor from
// otherwise-plain numeric code. It builds a host control-flow graph with golang.org/x/tools'
// go/cfg (via go/analysis's ctrlflow pass) and lowers it into this repository's own ir.CFG,
// the shape every check in checks/ operates on regardless of source frontend.
package goppl

import (
	"fmt"
	"go/ast"
	"go/token"
	"reflect"
	"sort"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/ctrlflow"
	"golang.org/x/tools/go/cfg"

	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/util/analysishelper"
	"go.uber.org/pplcheck/util/asthelper"
)

// Analyzer builds an ir.Bundle from every function in a package that imports
// frontend/goppl/ppl. It depends on ctrlflow.Analyzer for per-function CFGs and wraps its own
// run function with analysishelper.WrapRun so a translation bug surfaces as an error result
// rather than a crashed analysis run.
var Analyzer = &analysis.Analyzer{
	Name: "goppl",
	Doc: "lowers Go functions using the ppl marker API into an ir.Bundle",
	Run: analysishelper.WrapRun(run),
	Requires: []*analysis.Analyzer{ctrlflow.Analyzer},
	ResultType: reflect.TypeOf((*analysishelper.Result[*ir.Bundle])(nil)),
}

func run(pass *analysis.Pass) (*ir.Bundle, error) {
	cfgs := pass.ResultOf[ctrlflow.Analyzer].(*ctrlflow.CFGs)
	bundle := ir.NewBundle()

	for _, file := range pass.Files {
		alias := pplImportAlias(file)
		if alias == "" {
			continue
		}
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Body == nil {
				continue
			}
			g := cfgs.FuncDecl(fd)
			built, err := buildFuncCFG(pass.Fset, pass, alias, fd, g)
			if err != nil {
				return nil, fmt.Errorf("goppl: func %s: %w", fd.Name.Name, err)
			}
			bundle.Functions[fd.Name.Name] = built
		}
	}
	return bundle, nil
}

// pplImportAlias returns the local name file uses to refer to frontend/goppl/ppl, or "" if the
// file does not import it. Recognizing Sample/Observe/Factor calls by this syntactic alias,
// rather than resolving the callee through go/types, keeps the core lowering usable both from
// the full go/analysis.Pass (Analyzer, above) and from a bare *ast.File in tests (Program,
// below) without requiring a second, test-only type-checking path.
func pplImportAlias(file *ast.File) string {
	const path = `"go.uber.org/pplcheck/frontend/goppl/ppl"`
	for _, imp := range file.Imports {
		if imp.Path.Value != path {
			continue
		}
		if imp.Name != nil {
			return imp.Name.Name
		}
		return "ppl"
	}
	return ""
}

// Program builds an ir.Bundle directly from a parsed file, without a go/analysis.Pass. It
// exists so this frontend is unit-testable with nothing more than go/parser, and is exercised
// by Analyzer's run via the same buildFuncCFG core.
func Program(fset *token.FileSet, file *ast.File, model, guide string) (*ir.Bundle, error) {
	alias := pplImportAlias(file)
	if alias == "" {
		return nil, fmt.Errorf(`goppl: file does not import "go.uber.org/pplcheck/frontend/goppl/ppl"`)
	}

	bundle := ir.NewBundle()
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		g := cfg.New(fd.Body, func(*ast.CallExpr) bool { return true })
		built, err := buildFuncCFG(fset, nil, alias, fd, g)
		if err != nil {
			return nil, fmt.Errorf("goppl: func %s: %w", fd.Name.Name, err)
		}
		bundle.Functions[fd.Name.Name] = built
	}

	if model != "" {
		if _, ok := bundle.Functions[model]; !ok {
			return nil, fmt.Errorf("goppl: model function %q not defined", model)
		}
		bundle.Model = model
	}
	if guide != "" {
		if _, ok := bundle.Functions[guide]; !ok {
			return nil, fmt.Errorf("goppl: guide function %q not defined", guide)
		}
		bundle.Guide = guide
	}
	return bundle, nil
}

// buildFuncCFG lowers a single function's go/cfg block graph into an ir.CFG. go/cfg's blocks
// form an arbitrary (not recursively structured) graph, unlike the syntax-directed fragments
// ir.Builder composes, so this walks blocks directly with ir.CFG's lower-level primitives
// (NewNode/AddEdge) instead of going through Builder, then reuses the generic
// ir.PopulateJoinNodes/ir.Verify passes every builder path shares.
func buildFuncCFG(fset *token.FileSet, pass *analysis.Pass, alias string, fd *ast.FuncDecl, blockGraph *cfg.CFG) (*ir.CFG, error) {
	g := ir.New()
	g.RemoveEdge(g.Start, g.End)

	// One FuncArg node per parameter, chained straight-line ahead of the body.
	cur := g.Start
	argIndex := 0
	for _, field := range fd.Type.Params.List {
		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{{Name: fmt.Sprintf("_arg%d", argIndex)}}
		}
		for _, name := range names {
			argNode := g.NewNode(ir.KindFuncArg)
			argNode.ArgName = name.Name
			argNode.ArgIndex = argIndex
			g.AddEdge(cur, argNode.ID)
			cur = argNode.ID
			argIndex++
		}
	}

	sig := fd.Name.Name + "("
	for i, field := range fd.Type.Params.List {
		if i > 0 {
			sig += ", "
		}
		if pass != nil {
			sig += asthelper.PrintExpr(field.Type, pass, false)
		} else if id, ok := field.Type.(*ast.Ident); ok {
			sig += id.Name
		} else {
			sig += "?"
		}
	}
	sig += ")"
	funcStart := g.NewNode(ir.KindFuncStart)
	funcStart.Signature = sig
	g.AddEdge(cur, funcStart.ID)
	cur = funcStart.ID

	// funcJoin collects every live 0-successor block (go/cfg materializes a Return at every
	// point control can fall off the function, including the implicit one at the closing
	// brace). A function whose only live paths loop forever never reaches one, which leaves
	// funcJoin parentless and ir.Verify rejects it as a builder error — an acceptable fate
	// for code with no exit the rest of this repository's analyses could reason about anyway.
	funcJoin := g.NewNode(ir.KindJoin)
	g.AddEdge(funcJoin.ID, g.End)

	blocks := liveBlocks(blockGraph)
	if len(blocks) == 0 {
		g.AddEdge(cur, funcJoin.ID)
		ir.PopulateJoinNodes(g)
		if err := ir.Verify(g); err != nil {
			return nil, err
		}
		return g, nil
	}

	predCount := make(map[int32]int)
	for _, b := range blocks {
		for _, s := range b.Succs {
			predCount[s.Index]++
		}
	}

	entryID := make(map[int32]ir.ID, len(blocks))
	for _, b := range blocks {
		if predCount[b.Index] > 1 {
			entryID[b.Index] = g.NewNode(ir.KindJoin).ID
		} else {
			entryID[b.Index] = g.NewNode(ir.KindSkip).ID
		}
	}
	g.AddEdge(cur, entryID[blocks[0].Index])

	lb := &funcLowerer{fset: fset, alias: alias, g: g}
	for _, b := range blocks {
		if err := lb.lowerBlock(b, entryID, funcJoin.ID); err != nil {
			return nil, err
		}
	}

	ir.PopulateJoinNodes(g)
	if err := ir.Verify(g); err != nil {
		return nil, err
	}
	return g, nil
}

// liveBlocks returns g's reachable blocks in Index order, the stable traversal order
// the rest of buildFuncCFG requires.
func liveBlocks(g *cfg.CFG) []*cfg.Block {
	out := make([]*cfg.Block, 0, len(g.Blocks))
	for _, b := range g.Blocks {
		if b.Live {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

type funcLowerer struct {
	fset *token.FileSet
	alias string
	g *ir.CFG
}

// lowerBlock lowers one go/cfg block's content and wires it to its successors' (already
// allocated) entry nodes.
func (lb *funcLowerer) lowerBlock(b *cfg.Block, entryID map[int32]ir.ID, funcJoin ir.ID) error {
	cur := entryID[b.Index]
	nodes := b.Nodes
	isBranch := len(b.Succs) == 2

	var test ast.Expr
	if isBranch {
		last := nodes[len(nodes)-1]
		te, ok := last.(ast.Expr)
		if !ok {
			return fmt.Errorf("goppl: branch block %d's final node is not an expression, at %s", b.Index, lb.fset.Position(last.Pos()))
		}
		test = te
		nodes = nodes[:len(nodes)-1]
	}

	for _, n := range nodes {
		next, err := lb.lowerStmtNode(n)
		if err != nil {
			return err
		}
		if next < 0 {
			continue // no-op node (e.g. a var decl with no initializer)
		}
		lb.g.AddEdge(cur, next)
		cur = next
	}

	switch {
	case isBranch:
		te, err := lowerExpr(lb.fset, test)
		if err != nil {
			return err
		}
		branch := lb.g.NewNode(ir.KindBranch)
		branch.Test = te
		lb.g.AddEdge(cur, branch.ID)
		thenID := entryID[b.Succs[0].Index]
		elseID := entryID[b.Succs[1].Index]
		lb.g.AddEdge(branch.ID, thenID)
		lb.g.AddEdge(branch.ID, elseID)
		branch.Then = thenID
		branch.Else = elseID
	case len(b.Succs) == 1:
		lb.g.AddEdge(cur, entryID[b.Succs[0].Index])
	default: // 0 successors: cur is always a Return node (go/cfg materializes every exit, including implicit returns)
		lb.g.AddEdge(cur, funcJoin)
	}
	return nil
}

// lowerStmtNode lowers one ast.Node from a block's Nodes list (everything go/cfg puts in a
// block except a trailing branch test, which lowerBlock handles itself). Returns -1 for a node
// with no control-flow-relevant effect.
func (lb *funcLowerer) lowerStmtNode(n ast.Node) (ir.ID, error) {
	switch s := n.(type) {
	case *ast.ReturnStmt:
		ret := lb.g.NewNode(ir.KindReturn)
		if len(s.Results) == 1 {
			e, err := lowerExpr(lb.fset, s.Results[0])
			if err != nil {
				return -1, err
			}
			ret.ReturnExpr = e
		} else if len(s.Results) > 1 {
			return -1, fmt.Errorf("goppl: multi-value return at %s is not supported", lb.fset.Position(s.Pos()))
		}
		return ret.ID, nil
	case *ast.AssignStmt:
		return lb.lowerAssign(s)
	case *ast.ExprStmt:
		return lb.lowerExprStmt(s)
	case *ast.IncDecStmt:
		v, ok := identName(s.X)
		if !ok {
			return -1, fmt.Errorf("goppl: target of ++/-- at %s must be a simple identifier", lb.fset.Position(s.Pos()))
		}
		delta := 1.0
		if s.Tok == token.DEC {
			delta = -1.0
		}
		node := lb.g.NewNode(ir.KindAssign)
		node.Target = target{variable(v)}
		node.Value = &expr{op: "+", args: []*expr{varExpr(v, int(s.Pos()), int(s.End())), constExpr(delta, int(s.Pos()), int(s.End()))}, first: int(s.Pos()), last: int(s.End())}
		return node.ID, nil
	case *ast.ValueSpec:
		// go/cfg unwraps `var x T = expr` (and bare `var x T`) into a ValueSpec directly in
		// Nodes; only the single-name, single-initializer shape is tracked, matching this
		// adapter's single-target assignment model.
		if len(s.Names) == 1 && len(s.Values) == 1 {
			val, err := lowerExpr(lb.fset, s.Values[0])
			if err != nil {
				return -1, err
			}
			node := lb.g.NewNode(ir.KindAssign)
			node.Target = target{variable(s.Names[0].Name)}
			node.Value = val
			return node.ID, nil
		}
		return -1, nil
	case *ast.DeclStmt, *ast.EmptyStmt:
		return -1, nil
	case ast.Expr:
		// A bare expression elsewhere than a branch test (e.g. an unused condition); nothing
		// in this repository's checks reads a free-standing boolean value, so it is a no-op.
		return -1, nil
	default:
		return -1, fmt.Errorf("goppl: unsupported statement form %T at %s", n, lb.fset.Position(n.Pos()))
	}
}

func identName(e ast.Expr) (string, bool) {
	id, ok := e.(*ast.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// lowerAssign handles x := expr / x = expr, recognizing ppl.Sample on the right-hand side as a
// Sample node and everything else as an ordinary Assign. Multi-target assignment is rejected,
// matching how this repository's analyses treat an LHS the builder cannot attribute to a
// single tracked variable.
func (lb *funcLowerer) lowerAssign(s *ast.AssignStmt) (ir.ID, error) {
	if len(s.Lhs) != 1 || len(s.Rhs) != 1 {
		return -1, fmt.Errorf("goppl: assignment with %d LHS / %d RHS at %s is not supported (single-target assignment only)",
			len(s.Lhs), len(s.Rhs), lb.fset.Position(s.Pos()))
	}
	lhsName, ok := identName(s.Lhs[0])
	if !ok {
		if id, isBlank := s.Lhs[0].(*ast.Ident); isBlank && id.Name == "_" {
			lhsName = "_"
		} else {
			return -1, fmt.Errorf("goppl: assignment target at %s must be a simple identifier", lb.fset.Position(s.Pos()))
		}
	}

	if call, ok := s.Rhs[0].(*ast.CallExpr); ok {
		if name := callName(call.Fun); name == lb.alias+".Sample" {
			dist, err := lb.lowerDistCall(call)
			if err != nil {
				return -1, err
			}
			node := lb.g.NewNode(ir.KindSample)
			node.Target = target{variable(lhsName)}
			node.Dist = dist
			return node.ID, nil
		}
	}

	if s.Tok != token.ASSIGN && s.Tok != token.DEFINE {
		op, ok := compoundOps[s.Tok]
		if !ok {
			return -1, fmt.Errorf("goppl: unsupported assignment operator %v at %s", s.Tok, lb.fset.Position(s.Pos()))
		}
		rhs, err := lowerExpr(lb.fset, s.Rhs[0])
		if err != nil {
			return -1, err
		}
		node := lb.g.NewNode(ir.KindAssign)
		node.Target = target{variable(lhsName)}
		node.Value = &expr{op: op, args: []*expr{varExpr(lhsName, int(s.Pos()), int(s.Pos())), rhs}, first: int(s.Pos()), last: int(s.End())}
		return node.ID, nil
	}

	val, err := lowerExpr(lb.fset, s.Rhs[0])
	if err != nil {
		return -1, err
	}
	node := lb.g.NewNode(ir.KindAssign)
	node.Target = target{variable(lhsName)}
	node.Value = val
	return node.ID, nil
}

var compoundOps = map[token.Token]string{
	token.ADD_ASSIGN: "+", token.SUB_ASSIGN: "-", token.MUL_ASSIGN: "*", token.QUO_ASSIGN: "/",
}

// lowerExprStmt handles a bare call statement: ppl.Observe(...), ppl.Factor(...), or an
// ordinary call kept as an opaque Expr node.
func (lb *funcLowerer) lowerExprStmt(s *ast.ExprStmt) (ir.ID, error) {
	call, ok := s.X.(*ast.CallExpr)
	if !ok {
		return -1, nil
	}
	name := callName(call.Fun)
	switch name {
	case lb.alias + ".Observe":
		if len(call.Args) < 2 {
			return -1, fmt.Errorf("goppl: ppl.Observe wants (value, dist, params...), got %d args at %s", len(call.Args), lb.fset.Position(s.Pos()))
		}
		value, err := lowerExpr(lb.fset, call.Args[0])
		if err != nil {
			return -1, err
		}
		dist, err := lb.lowerDistCall(&ast.CallExpr{Fun: call.Fun, Args: call.Args[1:]})
		if err != nil {
			return -1, err
		}
		node := lb.g.NewNode(ir.KindSample)
		node.Dist = dist
		node.Value = value
		return node.ID, nil
	case lb.alias + ".Factor":
		if len(call.Args) != 1 {
			return -1, fmt.Errorf("goppl: ppl.Factor wants exactly 1 argument, got %d at %s", len(call.Args), lb.fset.Position(s.Pos()))
		}
		e, err := lowerExpr(lb.fset, call.Args[0])
		if err != nil {
			return -1, err
		}
		node := lb.g.NewNode(ir.KindFactor)
		node.Factor = e
		return node.ID, nil
	case lb.alias + ".Sample":
		return -1, fmt.Errorf("goppl: ppl.Sample result must be assigned, at %s", lb.fset.Position(s.Pos()))
	default:
		return -1, nil
	}
}

// lowerDistCall lowers a ppl.Sample/ppl.Observe call's (distName string, params...RV)
// arguments into an ir.Distribution. The distribution name must be a string literal: this
// adapter has no way to resolve a dynamic distribution name to catalog parameter names.
func (lb *funcLowerer) lowerDistCall(call *ast.CallExpr) (*ir.Distribution, error) {
	if len(call.Args) < 1 {
		return nil, fmt.Errorf("goppl: distribution call at %s is missing its distribution name", lb.fset.Position(call.Pos()))
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return nil, fmt.Errorf("goppl: distribution name at %s must be a string literal", lb.fset.Position(call.Pos()))
	}
	name := lit.Value[1 : len(lit.Value)-1] // strip surrounding quotes

	dist := &ir.Distribution{Name: name, Params: map[string]ir.Expression{}}
	paramNames := distParamNames(name, len(call.Args)-1)
	for i, a := range call.Args[1:] {
		e, err := lowerExpr(lb.fset, a)
		if err != nil {
			return nil, err
		}
		pn := paramNames[i]
		dist.Params[pn] = e
		dist.ParamOrder = append(dist.ParamOrder, pn)
	}
	return dist, nil
}

// distParamNames mirrors frontend/sexpr's table: the handful of distributions the funnel and
// constraints checks key off specific parameter names ("sigma", "scale",...) get their real
// catalog names; anything else falls back to positional names.
func distParamNames(distName string, n int) []string {
	known := map[string][]string{
		"Normal": {"mu", "sigma"},
		"StudentT": {"nu", "mu", "sigma"},
		"LogNormal": {"mu", "sigma"},
		"HalfCauchy": {"scale"},
		"Cauchy": {"x0", "gamma"},
		"Uniform": {"low", "high"},
		"Bernoulli": {"p"},
		"Categorical": {"probs"},
		"Beta": {"alpha", "beta"},
		"Gamma": {"alpha", "beta"},
		"Exponential": {"rate"},
		"Poisson": {"rate"},
		"Dirichlet": {"concentration"},
		"Binomial": {"trials", "p"},
	}
	if names, ok := known[distName]; ok && len(names) == n {
		return names
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("arg%d", i)
	}
	return out
}
