package goppl

import (
	"fmt"
	"go/ast"
	"go/token"
	"sort"
	"strconv"

	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/symb"
)

// expr is this frontend's sole ir.Expression implementation. Like frontend/sexpr's expr, it is
// lowered once from the ast.Expr it was parsed from rather than re-walked from syntax on every
// evaluation; unlike sexpr, the source syntax is Go's own expression grammar, so lowering
// happens against go/ast node kinds instead of s-expression heads.
type expr struct {
	isConst bool
	constV float64

	isVar bool
	name string

	op string // "+", "-", "*", "/", "&&", "||", "!", "==", "<", etc., or "call"
	args []*expr

	call string // non-empty when op == "call": the callee's textual name

	first, last int
}

func constExpr(v float64, first, last int) *expr {
	return &expr{isConst: true, constV: v, first: first, last: last}
}

func varExpr(name string, first, last int) *expr {
	return &expr{isVar: true, name: name, first: first, last: last}
}

// lowerExpr lowers a Go expression into this frontend's expr tree. Only the subset of Go
// expression syntax a numeric model body plausibly uses is supported: literals, identifiers,
// parenthesization, unary +/-/!, binary arithmetic/comparison/boolean operators, and calls to
// ordinary (non-ppl) functions, which are preserved as opaque call terms the way frontend/sexpr
// preserves calls to functions it does not itself interpret.
func lowerExpr(fset *token.FileSet, e ast.Expr) (*expr, error) {
	first := int(e.Pos())
	last := int(e.End())
	switch n := e.(type) {
	case *ast.ParenExpr:
		return lowerExpr(fset, n.X)
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return nil, fmt.Errorf("goppl: unsupported literal kind %v at %s", n.Kind, fset.Position(n.Pos()))
		}
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("goppl: malformed numeric literal %q at %s: %w", n.Value, fset.Position(n.Pos()), err)
		}
		return constExpr(v, first, last), nil
	case *ast.Ident:
		if n.Name == "true" {
			return constExpr(1, first, last), nil
		}
		if n.Name == "false" {
			return constExpr(0, first, last), nil
		}
		return varExpr(n.Name, first, last), nil
	case *ast.UnaryExpr:
		x, err := lowerExpr(fset, n.X)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.SUB:
			return &expr{op: "-", args: []*expr{x}, first: first, last: last}, nil
		case token.ADD:
			return x, nil
		case token.NOT:
			return &expr{op: "!", args: []*expr{x}, first: first, last: last}, nil
		default:
			return nil, fmt.Errorf("goppl: unsupported unary operator %v at %s", n.Op, fset.Position(n.Pos()))
		}
	case *ast.BinaryExpr:
		x, err := lowerExpr(fset, n.X)
		if err != nil {
			return nil, err
		}
		y, err := lowerExpr(fset, n.Y)
		if err != nil {
			return nil, err
		}
		op, ok := binOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("goppl: unsupported binary operator %v at %s", n.Op, fset.Position(n.Pos()))
		}
		return &expr{op: op, args: []*expr{x, y}, first: first, last: last}, nil
	case *ast.CallExpr:
		name := callName(n.Fun)
		if name == "" {
			return nil, fmt.Errorf("goppl: unsupported call form at %s", fset.Position(n.Pos()))
		}
		args := make([]*expr, len(n.Args))
		for i, a := range n.Args {
			ae, err := lowerExpr(fset, a)
			if err != nil {
				return nil, err
			}
			args[i] = ae
		}
		return &expr{op: "call", call: name, args: args, first: first, last: last}, nil
	default:
		return nil, fmt.Errorf("goppl: unsupported expression form %T at %s", e, fset.Position(e.Pos()))
	}
}

var binOps = map[token.Token]string{
	token.ADD: "+", token.SUB: "-", token.MUL: "*", token.QUO: "/",
	token.LAND: "&&", token.LOR: "||",
	token.EQL: "==", token.NEQ: "!=",
	token.LSS: "<", token.LEQ: "<=", token.GTR: ">", token.GEQ: ">=",
}

func callName(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		if x, ok := f.X.(*ast.Ident); ok {
			return x.Name + "." + f.Sel.Name
		}
	}
	return ""
}

func (e *expr) FreeVariables() []ir.Variable {
	seen := map[string]bool{}
	var out []ir.Variable
	var walk func(*expr)
	walk = func(n *expr) {
		if n.isVar {
			if !seen[n.name] {
				seen[n.name] = true
				out = append(out, variable(n.name))
			}
			return
		}
		for _, a := range n.args {
			walk(a)
		}
	}
	walk(e)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (e *expr) CallsTo(funcName string) []ir.CallExpression {
	var out []ir.CallExpression
	var walk func(*expr)
	walk = func(n *expr) {
		if n.op == "call" && n.call == funcName {
			out = append(out, &callTerm{e: n})
		}
		for _, a := range n.args {
			walk(a)
		}
	}
	walk(e)
	return out
}

func (e *expr) Range() (int, int) { return e.first, e.last }

func (e *expr) Text() string {
	switch {
	case e.isConst:
		return fmt.Sprintf("%g", e.constV)
	case e.isVar:
		return e.name
	case e.op == "call":
		s := e.call + "("
		for i, a := range e.args {
			if i > 0 {
				s += ", "
			}
			s += a.Text()
		}
		return s + ")"
	case len(e.args) == 1:
		return e.op + e.args[0].Text()
	default:
		return "(" + e.args[0].Text() + " " + e.op + " " + e.args[1].Text() + ")"
	}
}

func (e *expr) EvalInterval(val map[string]ival.Interval) ival.Interval {
	switch {
	case e.isConst:
		return ival.Singleton(e.constV)
	case e.isVar:
		if iv, ok := val[e.name]; ok {
			return iv
		}
		return ival.Full
	case e.op == "call":
		return ival.Full
	}
	argIvals := make([]ival.Interval, len(e.args))
	for i, a := range e.args {
		argIvals[i] = a.EvalInterval(val)
	}
	switch e.op {
	case "+":
		return ival.Add(argIvals[0], argIvals[1])
	case "-":
		if len(argIvals) == 1 {
			return ival.Neg(argIvals[0])
		}
		return ival.Sub(argIvals[0], argIvals[1])
	case "*":
		return ival.Mul(argIvals[0], argIvals[1])
	case "/":
		r, err := ival.Div(argIvals[0], argIvals[1])
		if err != nil {
			return ival.Full
		}
		return r
	default:
		// Comparisons/boolean connectives are not scalar-valued; its evaluator only
		// ever asks a branch test for EvalSymbolic (via pathcond), never EvalInterval.
		return ival.Full
	}
}

func (e *expr) EvalSymbolic(val map[string]symb.Expr) symb.Expr {
	switch {
	case e.isConst:
		return symb.Constant(e.constV)
	case e.isVar:
		if sv, ok := val[e.name]; ok {
			return sv
		}
		return symb.Symbol(e.name, symb.Real)
	case e.op == "call":
		return symb.Symbol("call:"+e.call, symb.Real)
	}
	args := make([]symb.Expr, len(e.args))
	for i, a := range e.args {
		args[i] = a.EvalSymbolic(val)
	}
	switch e.op {
	case "!":
		return symb.Not(args[0])
	case "&&":
		return symb.And(args...)
	case "||":
		return symb.Or(args...)
	default:
		return symb.MakeOp(e.op, args...)
	}
}

// callTerm adapts an expr in "call" form to ir.CallExpression.
type callTerm struct{ e *expr }

func (c *callTerm) FreeVariables() []ir.Variable { return c.e.FreeVariables() }
func (c *callTerm) CallsTo(funcName string) []ir.CallExpression { return c.e.CallsTo(funcName) }
func (c *callTerm) EvalInterval(v map[string]ival.Interval) ival.Interval { return c.e.EvalInterval(v) }
func (c *callTerm) EvalSymbolic(v map[string]symb.Expr) symb.Expr { return c.e.EvalSymbolic(v) }
func (c *callTerm) Range() (int, int) { return c.e.Range() }
func (c *callTerm) Text() string { return c.e.Text() }
func (c *callTerm) Args() []ir.Expression {
	out := make([]ir.Expression, len(c.e.args))
	for i, a := range c.e.args {
		out[i] = a
	}
	return out
}
