package goppl

import "go.uber.org/pplcheck/ir"

// variable is this frontend's ir.Variable: a plain identifier name. Identity is by name within
// a function body rather than by go/types scope object, a deliberate simplification documented
// in DESIGN.md: this adapter targets straight-line/branchy numeric model code that does not
// shadow sample variables in nested blocks, so name equality is an acceptable proxy for the
// real lexical identity a full go/types-based frontend would use.
type variable string

func (v variable) Name() string { return string(v) }
func (v variable) Equal(other ir.Variable) bool {
	o, ok := other.(variable)
	return ok && o == v
}
func (v variable) Indexed() (ir.Expression, ir.Variable, bool) { return nil, nil, false }
func (v variable) StaticIndexEqual(ir.Variable) bool           { return false }

// target is this frontend's ir.AssignTarget: a plain variable write. Go's embedded-PPL surface
// has no array/indexing syntax for sample sites, so indexed targets are never produced here.
type target struct{ v variable }

func (t target) EqualVar(v ir.Variable) bool    { return t.v.Equal(v) }
func (t target) Indexed() (ir.Expression, bool) { return nil, false }
func (t target) Var() ir.Variable               { return t.v }
