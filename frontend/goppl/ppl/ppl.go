// Package ppl is the marker API that frontend/goppl recognizes syntactically inside an
// ordinary Go function body. A function written against these three calls is, as far as
// frontend/goppl is concerned, a probabilistic program: Sample/Observe/Factor calls become
// ir.KindSample/ir.KindFactor nodes, and everything else in the function is read as ordinary
// host-language control flow.
//
// The functions here are never actually called: frontend/goppl parses the syntax tree of a
// function importing this package and never executes it, so the bodies exist only to make the
// package import-able and type-check under an ordinary Go build.
package ppl

// RV is the type frontend/goppl expects model code to compute with: a single real-valued
// random variable. It is a plain float64 alias so model code reads like ordinary numeric Go.
type RV = float64

// Sample draws a value from the named distribution with the given parameters, in catalog
// parameter order (see catalog.Lookup's ParamOrder). The call must appear directly as the
// right-hand side of a single-target assignment (x := ppl.Sample(...) or x = ppl.Sample(...));
// frontend/goppl rejects any other placement as a builder error.
func Sample(dist string, params ...RV) RV {
	return 0
}

// Observe conditions the named distribution, with the given parameters, on value. It must
// appear as a bare expression statement.
func Observe(value RV, dist string, params ...RV) {}

// Factor adds logDensity to the accumulated log-density of the program. It must appear as a
// bare expression statement.
func Factor(logDensity RV) {}
