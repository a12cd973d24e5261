package sexpr

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/ival"
	"go.uber.org/pplcheck/symb"
)

// expr is this frontend's sole ir.Expression implementation: a small arithmetic/boolean term
// tree mirroring the s-expression it was parsed from, lowered once at parse time rather than
// re-walked from node on every evaluation.
type expr struct {
	isConst bool
	constV  float64

	isVar bool
	name  string

	op   string
	args []*expr

	call string // non-empty when op == "call": the callee function name

	first, last int
}

func constExpr(v float64, first, last int) *expr {
	return &expr{isConst: true, constV: v, first: first, last: last}
}

func varExpr(name string, first, last int) *expr {
	return &expr{isVar: true, name: name, first: first, last: last}
}

func opExpr(op string, first, last int, args ...*expr) *expr {
	return &expr{op: op, args: args, first: first, last: last}
}

func callExpr(name string, first, last int, args ...*expr) *expr {
	return &expr{op: "call", call: name, args: args, first: first, last: last}
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
				s += " "
			}
			s += a.Text()
		}
		return s + ")"
	default:
		s := "(" + e.op
		for _, a := range e.args {
			s += " " + a.Text()
		}
		return s + ")"
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
		return ival.Full // interprocedural call values are resolved by the evaluator driver, not here
	}
	argIvals := make([]ival.Interval, len(e.args))
	for i, a := range e.args {
		argIvals[i] = a.EvalInterval(val)
	}
	switch e.op {
	case "+":
		return foldInterval(argIvals, ival.Add)
	case "-":
		if len(argIvals) == 1 {
			return ival.Neg(argIvals[0])
		}
		return foldInterval(argIvals, ival.Sub)
	case "*":
		return foldInterval(argIvals, ival.Mul)
	case "/":
		acc := argIvals[0]
		for _, v := range argIvals[1:] {
			r, err := ival.Div(acc, v)
			if err != nil {
				return ival.Full
			}
			acc = r
		}
		return acc
	case "^":
		if len(argIvals) == 2 && e.args[1].isConst && e.args[1].constV == math.Trunc(e.args[1].constV) {
			return ival.Pow(argIvals[0], int(e.args[1].constV))
		}
		return ival.PowNonSingletonExponent()
	case "abs":
		return ival.Abs(argIvals[0])
	case "exp":
		return ival.Exp(argIvals[0])
	case "log":
		return ival.Log(argIvals[0])
	case "sqrt":
		return ival.Sqrt(argIvals[0])
	default:
		// Comparisons/boolean connectives are not scalar-valued; interval evaluation of a
		// branch test is never requested by this repository's analyses (only EvalSymbolic is,
		// via pathcond), so this is simply the conservative top value.
		return ival.Full
	}
}

func foldInterval(ivs []ival.Interval, op func(a, b ival.Interval) ival.Interval) ival.Interval {
	acc := ivs[0]
	for _, v := range ivs[1:] {
		acc = op(acc, v)
	}
	return acc
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

func (c *callTerm) FreeVariables() []ir.Variable                          { return c.e.FreeVariables() }
func (c *callTerm) CallsTo(funcName string) []ir.CallExpression           { return c.e.CallsTo(funcName) }
func (c *callTerm) EvalInterval(v map[string]ival.Interval) ival.Interval { return c.e.EvalInterval(v) }
func (c *callTerm) EvalSymbolic(v map[string]symb.Expr) symb.Expr         { return c.e.EvalSymbolic(v) }
func (c *callTerm) Range() (int, int)                                    { return c.e.Range() }
func (c *callTerm) Text() string                                         { return c.e.Text() }
func (c *callTerm) Args() []ir.Expression {
	out := make([]ir.Expression, len(c.e.args))
	for i, a := range c.e.args {
		out[i] = a
	}
	return out
}

// variable is this frontend's ir.Variable: a plain name, no indexing support (the s-expression
// grammar has no array/indexing syntax).
type variable string

func (v variable) Name() string { return string(v) }
func (v variable) Equal(other ir.Variable) bool {
	o, ok := other.(variable)
	return ok && o == v
}
func (v variable) Indexed() (ir.Expression, ir.Variable, bool) { return nil, nil, false }
func (v variable) StaticIndexEqual(ir.Variable) bool           { return false }

// target is this frontend's ir.AssignTarget: a plain variable write.
type target struct{ v variable }

func (t target) EqualVar(v ir.Variable) bool    { return t.v.Equal(v) }
func (t target) Indexed() (ir.Expression, bool) { return nil, false }
func (t target) Var() ir.Variable               { return t.v }
