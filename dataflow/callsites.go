package dataflow

import (
	"sort"

	"go.uber.org/pplcheck/ir"
)

// CallSite identifies one occurrence of a call to a user-defined function: the function and
// CFG it occurs within, the node whose expression contains the call, and the call expression
// itself.
type CallSite struct {
	Func string
	CFG *ir.CFG
	Node ir.ID
	Call ir.CallExpression
}

// CallSites returns every call site of funcName across the whole bundle (TopLevel and every
// function), in deterministic (function-name, then construction) order. This is the
// cross-function lookup the interprocedural extension needs: "the data
// dependencies and branch parents [of a FuncArg(f,i) node] are the union over all call sites of
// f of the dependencies/parents of the corresponding argument expression at the call site".
func CallSites(bundle *ir.Bundle, funcName string) []CallSite {
	var out []CallSite
	visit := func(caller string, g *ir.CFG) {
		for _, n := range g.Nodes() {
			for _, e := range exprsOf(n) {
				for _, call := range e.CallsTo(funcName) {
					out = append(out, CallSite{Func: caller, CFG: g, Node: n.ID, Call: call})
				}
			}
		}
	}
	if bundle.TopLevel != nil {
		visit("", bundle.TopLevel)
	}
	for _, name := range sortedKeys(bundle.Functions) {
		visit(name, bundle.Functions[name])
	}
	return out
}

// ArgExprAt returns the i-th argument expression of the call, or nil if the call has fewer
// than i+1 arguments (a frontend/arity mismatch that callers should treat as "no binding" and
// fall back to the FuncArg's own ArgDefault).
func ArgExprAt(call ir.CallExpression, i int) ir.Expression {
	args := call.Args()
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

func sortedKeys(m map[string]*ir.CFG) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
