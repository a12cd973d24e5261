package symb

import "fmt"

// Generator mints fresh, uniquely-named symbols and remembers what each one stands for: a
// monotonically increasing token paired with a map back to the thing it identifies. The "thing
// identified" is an arbitrary opaque key supplied by the caller (typically a sample-node
// identity), since this package has no dependency on any particular frontend's syntax tree.
//
// Absolute continuity uses a Generator to introduce one fresh symbol per
// sample node in P_nodes ∪ Q_nodes before computing path conditions, so that references to
// already-sampled variables resolve to their symbol rather than re-expanding their defining
// expression.
type Generator struct {
	prefix string
	next int
	byKey map[any]Expr
}

// NewGenerator returns a fresh Generator. prefix is prepended to every minted symbol name
// (e.g. "s" yields "s0", "s1",...) purely for readability in rendered formulas.
func NewGenerator(prefix string) *Generator {
	return &Generator{prefix: prefix, byKey: make(map[any]Expr)}
}

// For returns the symbol associated with key, minting one of the given domain on first
// request and memoizing it so later calls with the same key return the identical symbol.
func (g *Generator) For(key any, dom Domain) Expr {
	if e, ok := g.byKey[key]; ok {
		return e
	}
	e := Symbol(fmt.Sprintf("%s%d", g.prefix, g.next), dom)
	g.next++
	g.byKey[key] = e
	return e
}

// Lookup returns the symbol previously minted for key, if any.
func (g *Generator) Lookup(key any) (Expr, bool) {
	e, ok := g.byKey[key]
	return e, ok
}
