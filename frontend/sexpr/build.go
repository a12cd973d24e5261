package sexpr

import (
	"fmt"

	"go.uber.org/pplcheck/ir"
)

// Program parses source and lowers it into an ir.Bundle. Every (defun name stmt...) form at
// top level becomes an entry in Bundle.Functions; every other top-level form is sequenced into
// Bundle.TopLevel. model and guide, when non-empty, must each name a defun'd function and are
// copied onto the returned Bundle's Model/Guide fields, letting
// callers exercise the absolute-continuity check without a second parsing pass.
func Program(source string, model, guide string) (*ir.Bundle, error) {
	forms, err := parseAll(source)
	if err != nil {
		return nil, err
	}

	bundle := ir.NewBundle()

	var topForms []node
	for _, f := range forms {
		if f.isAtom() {
			return nil, fmt.Errorf("sexpr: unexpected top-level atom %q at %s", f.atom, f.pos)
		}
		if len(f.list) > 0 && f.list[0].isAtom() && f.list[0].atom == "defun" {
			name, g, err := lowerDefun(f)
			if err != nil {
				return nil, err
			}
			bundle.Functions[name] = g
			continue
		}
		topForms = append(topForms, f)
	}

	b := ir.NewBuilder()
	frag, err := lowerBlock(b, topForms)
	if err != nil {
		return nil, err
	}
	if err := b.TopLevel(frag); err != nil {
		return nil, err
	}
	bundle.TopLevel = b.G

	if model != "" {
		if _, ok := bundle.Functions[model]; !ok {
			return nil, fmt.Errorf("sexpr: model function %q not defined", model)
		}
		bundle.Model = model
	}
	if guide != "" {
		if _, ok := bundle.Functions[guide]; !ok {
			return nil, fmt.Errorf("sexpr: guide function %q not defined", guide)
		}
		bundle.Guide = guide
	}

	return bundle, nil
}

// lowerDefun lowers a (defun name stmt...) form into a zero-argument function CFG. The
// grammar has no parameter list, since Model/Guide entry points are always named and
// argument-free, matching how frontend/sexpr's tests invoke Bundle.Functions.
func lowerDefun(f node) (string, *ir.CFG, error) {
	if len(f.list) < 2 || !f.list[1].isAtom() {
		return "", nil, fmt.Errorf("sexpr: malformed defun at %s, expected (defun name stmt...)", f.pos)
	}
	name := f.list[1].atom

	b := ir.NewBuilder()
	frag, err := lowerBlock(b, f.list[2:])
	if err != nil {
		return "", nil, err
	}
	if err := b.FuncDef(name, nil, frag); err != nil {
		return "", nil, err
	}
	return name, b.G, nil
}

// lowerBlock lowers a sequence of statement forms into a single Fragment, in order.
func lowerBlock(b *ir.Builder, stmts []node) (ir.Fragment, error) {
	frags := make([]ir.Fragment, 0, len(stmts))
	for _, s := range stmts {
		f, err := lowerStmt(b, s)
		if err != nil {
			return ir.Fragment{}, err
		}
		frags = append(frags, f)
	}
	return b.Seq(frags...), nil
}

func lowerStmt(b *ir.Builder, s node) (ir.Fragment, error) {
	if s.isAtom() {
		return ir.Fragment{}, fmt.Errorf("sexpr: unexpected atom %q where a statement was expected, at %s", s.atom, s.pos)
	}
	if len(s.list) == 0 || !s.list[0].isAtom() {
		return ir.Fragment{}, fmt.Errorf("sexpr: malformed statement at %s", s.pos)
	}
	head := s.list[0].atom
	args := s.list[1:]

	switch head {
	case "sample":
		return lowerSample(b, s, args, nil)
	case "observe":
		if len(args) != 3 {
			return ir.Fragment{}, fmt.Errorf("sexpr: (observe var dist expr) wants 3 args, got %d at %s", len(args), s.pos)
		}
		return lowerSample(b, s, args[:2], &args[2])
	case "factor":
		if len(args) != 1 {
			return ir.Fragment{}, fmt.Errorf("sexpr: (factor expr) wants 1 arg, got %d at %s", len(args), s.pos)
		}
		e, err := lowerExpr(args[0])
		if err != nil {
			return ir.Fragment{}, err
		}
		return b.Straight(ir.KindFactor, func(n *ir.Node) { n.Factor = e }), nil
	case "assign":
		if len(args) != 2 || !args[0].isAtom() {
			return ir.Fragment{}, fmt.Errorf("sexpr: (assign var expr) malformed at %s", s.pos)
		}
		val, err := lowerExpr(args[1])
		if err != nil {
			return ir.Fragment{}, err
		}
		name := args[0].atom
		return b.Straight(ir.KindAssign, func(n *ir.Node) {
			n.Target = target{variable(name)}
			n.Value = val
		}), nil
	case "if":
		if len(args) != 2 && len(args) != 3 {
			return ir.Fragment{}, fmt.Errorf("sexpr: (if cond then [else]) malformed at %s", s.pos)
		}
		test, err := lowerExpr(args[0])
		if err != nil {
			return ir.Fragment{}, err
		}
		then, err := lowerStmt(b, args[1])
		if err != nil {
			return ir.Fragment{}, err
		}
		if len(args) == 2 {
			return b.If(test, then, ir.Fragment{}, false), nil
		}
		els, err := lowerStmt(b, args[2])
		if err != nil {
			return ir.Fragment{}, err
		}
		return b.If(test, then, els, true), nil
	case "while":
		if len(args) < 1 {
			return ir.Fragment{}, fmt.Errorf("sexpr: (while cond stmt...) malformed at %s", s.pos)
		}
		test, err := lowerExpr(args[0])
		if err != nil {
			return ir.Fragment{}, err
		}
		body, err := lowerBlock(b, args[1:])
		if err != nil {
			return ir.Fragment{}, err
		}
		return b.While(test, body), nil
	case "block":
		return lowerBlock(b, args)
	default:
		return ir.Fragment{}, fmt.Errorf("sexpr: unknown statement form %q at %s", head, s.pos)
	}
}

// lowerSample handles both (sample var dist) and, via obsExpr, (observe var dist expr): the
// two forms share everything but the presence of an explicit Value.
func lowerSample(b *ir.Builder, s node, args []node, obsExpr *node) (ir.Fragment, error) {
	if len(args) != 2 || !args[0].isAtom() {
		return ir.Fragment{}, fmt.Errorf("sexpr: malformed sample/observe form at %s", s.pos)
	}
	varName := args[0].atom
	dist, err := lowerDist(args[1])
	if err != nil {
		return ir.Fragment{}, err
	}
	var value *expr
	if obsExpr != nil {
		value, err = lowerExpr(*obsExpr)
		if err != nil {
			return ir.Fragment{}, err
		}
	}
	return b.Straight(ir.KindSample, func(n *ir.Node) {
		n.Target = target{variable(varName)}
		n.Dist = dist
		if value != nil {
			n.Value = value
		}
	}), nil
}

// lowerDist lowers a (<name> <arg>...) form into an ir.Distribution. Matching positional
// arguments to parameter names against the catalog's declared order is the caller's job; at the
// frontend level, this grammar keeps things positional and names them arg0, arg1,... for any
// distribution not explicitly known here, falling back to the handful of common distributions'
// real parameter names otherwise so that checks keyed off specific parameter names (e.g.
// funnel's "sigma"/"scale") still work.
func lowerDist(d node) (*ir.Distribution, error) {
	if d.isAtom() || len(d.list) == 0 || !d.list[0].isAtom() {
		return nil, fmt.Errorf("sexpr: malformed distribution form at %s", d.pos)
	}
	name := d.list[0].atom
	paramNames := distParamNames(name, len(d.list)-1)

	dist := &ir.Distribution{Name: name, Params: map[string]ir.Expression{}}
	for i, a := range d.list[1:] {
		e, err := lowerExpr(a)
		if err != nil {
			return nil, err
		}
		pn := paramNames[i]
		dist.Params[pn] = e
		dist.ParamOrder = append(dist.ParamOrder, pn)
	}
	return dist, nil
}

// distParamNames returns n parameter names for a distribution, using the catalog's own naming
// for the distributions this grammar's test scenarios actually construct and falling back to
// positional names otherwise.
func distParamNames(distName string, n int) []string {
	known := map[string][]string{
		"Normal": {"mu", "sigma"},
		"StudentT": {"nu", "mu", "sigma"},
		"LogNormal": {"mu", "sigma"},
		"HalfCauchy": {"scale"},
		"HalfNormal": {"sigma"},
		"Cauchy": {"x0", "gamma"},
		"Uniform": {"low", "high"},
		"Bernoulli": {"p"},
		"Categorical": {"probs"},
		"Beta": {"alpha", "beta"},
		"Gamma": {"alpha", "beta"},
		"Exponential": {"rate"},
		"Poisson": {"rate"},
		"Dirichlet": {"concentration"},
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

// lowerExpr lowers a fully-parenthesized prefix expression form into this frontend's expr.
func lowerExpr(n node) (*expr, error) {
	first, last := n.pos.Offset, n.pos.Offset
	if n.isAtom() {
		if n.isNumber {
			return constExpr(n.num, first, last), nil
		}
		return varExpr(n.atom, first, last), nil
	}
	if len(n.list) == 0 {
		return nil, fmt.Errorf("sexpr: empty expression form at %s", n.pos)
	}
	head := n.list[0]
	rest := n.list[1:]
	args := make([]*expr, len(rest))
	for i, a := range rest {
		e, err := lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	if head.isAtom() && isKnownOp(head.atom) {
		return opExpr(head.atom, first, last, args...), nil
	}
	if head.isAtom() {
		return callExpr(head.atom, first, last, args...), nil
	}
	return nil, fmt.Errorf("sexpr: expression head must be an operator or function name, at %s", n.pos)
}

var knownOps = func() map[string]bool {
	ops := []string{"+", "-", "*", "/", "^", "&&", "||", "!", "==", "!=", ">", ">=", "<", "<=",
		"abs", "exp", "log", "sqrt"}
	m := make(map[string]bool, len(ops))
	for _, o := range ops {
		m[o] = true
	}
	return m
}()

func isKnownOp(s string) bool { return knownOps[s] }
