package ival

import "errors"

// ErrDivByZero is returned by Div when the divisor interval strictly straddles zero (or is the
// singleton zero): division by zero is a fatal interval error rather than a silently widened
// result. Callers that can tolerate the loss of precision may catch this and substitute Full;
// the checks that evaluate intervals instead propagate it as an inapplicable-analysis signal
// for the affected node.
var ErrDivByZero = errors.New("ival: division by an interval that contains zero")
