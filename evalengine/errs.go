package evalengine

import "errors"

// ErrSymbolicCycle is returned when the symbolic evaluator's working-set guard finds a variable whose
// resolution depends on itself (directly or via a chain of reaching definitions). Unlike the
// interval evaluator, which can always soundly widen to ival.Full on a cycle, the symbolic
// algebra has no "top" term that remains usable by the SMT bridge, so a cycle is a hard error
// the caller must surface as a diagnostic rather than silently approximate.
var ErrSymbolicCycle = errors.New("evalengine: symbolic evaluation depends on itself (cycle)")
