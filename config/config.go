package config

import "flag"

// Config is the group-box of user-tunable settings for the CLI shell (cmd/pplcheck), parsed
// from flags. Unlike the constants in const.go, every field here is meant to be overridden by
// a flag.
type Config struct {
	// RunConstraints, RunAbsContinuity, RunFunnel, and RunRandomControlFlow select which of the
	// four analyses a single invocation runs. All four default to true.
	RunConstraints bool
	RunAbsContinuity bool
	RunFunnel bool
	RunRandomControlFlow bool

	// Model and Guide name the functions the absolute-continuity check compares;
	// both must be set, or RunAbsContinuity is forced off.
	Model string
	Guide string

	// Pretty toggles colorized terminal rendering in internal/render versus plain text, for
	// piping output to a file or another tool.
	Pretty bool

	// SMTTimeoutMillis holds the -smt-timeout flag (default DefaultSMTTimeoutMillis). Nothing
	// in this module reads it: cmd/pplcheck builds its solver with refsolver.New() and no timeout.
	SMTTimeoutMillis int
}

// RegisterFlags binds fs's flags to c's fields. Call fs.Parse after this to populate c.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.RunConstraints, "constraints", true, "run distribution-parameter constraint verification")
	fs.BoolVar(&c.RunAbsContinuity, "abscontinuity", true, "run model/guide absolute-continuity verification (requires -model and -guide)")
	fs.BoolVar(&c.RunFunnel, "funnel", true, "run funnel detection")
	fs.BoolVar(&c.RunRandomControlFlow, "randomcontrolflow", true, "run random-control-flow (HMC-suitability) detection")
	fs.StringVar(&c.Model, "model", "", "name of the model function, for -abscontinuity")
	fs.StringVar(&c.Guide, "guide", "", "name of the guide function, for -abscontinuity")
	fs.BoolVar(&c.Pretty, "pretty", true, "colorize diagnostic output")
	fs.IntVar(&c.SMTTimeoutMillis, "smt-timeout", DefaultSMTTimeoutMillis, "SMT solver timeout in milliseconds")
}

// Default returns a Config with every analysis enabled and no model/guide selected, the
// baseline a caller gets without touching flags at all.
func Default() Config {
	return Config{
		RunConstraints: true,
		RunAbsContinuity: true,
		RunFunnel: true,
		RunRandomControlFlow: true,
		Pretty: true,
		SMTTimeoutMillis: DefaultSMTTimeoutMillis,
	}
}
