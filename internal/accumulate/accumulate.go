// Package accumulate coordinates the whole analysis workflow over an already-built ir.Bundle:
// it runs whichever of the four checks the caller's config.Config selects and collects their
// Findings into a single diagnostic.Engine.
package accumulate

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/pplcheck/checks/abscontinuity"
	"go.uber.org/pplcheck/checks/constraints"
	"go.uber.org/pplcheck/checks/funnel"
	"go.uber.org/pplcheck/checks/randomcontrolflow"
	"go.uber.org/pplcheck/config"
	"go.uber.org/pplcheck/diagnostic"
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/smt"
)

// Run executes every check cfg enables over bundle, reporting into a fresh diagnostic.Engine.
// A panic from any single check is recovered and surfaced as an Error Finding naming the check,
// rather than aborting the other checks or crashing the caller (the driver must never panic,
// mirroring accumulation.Analyzer's own top-level recover).
func Run(cfg config.Config, bundle *ir.Bundle, solver smt.Solver) *diagnostic.Engine {
	engine := diagnostic.NewEngine()

	if cfg.RunConstraints {
		runGuarded(engine, "constraints", func(e *diagnostic.Engine) {
			violations, analyzable := constraints.Check(bundle)
			if !analyzable {
				return
			}
			for _, f := range violations {
				e.Report(f)
			}
		})
	}

	if cfg.RunFunnel {
		runGuarded(engine, "funnel", func(e *diagnostic.Engine) {
			for _, f := range funnel.Check(bundle) {
				e.Report(f)
			}
		})
	}

	if cfg.RunRandomControlFlow {
		runGuarded(engine, "randomcontrolflow", func(e *diagnostic.Engine) {
			for _, f := range randomcontrolflow.Check(bundle) {
				e.Report(f)
			}
		})
	}

	if cfg.RunAbsContinuity && cfg.Model != "" && cfg.Guide != "" {
		runGuarded(engine, "abscontinuity", func(e *diagnostic.Engine) {
			pNodes := sampleNodesOf(bundle, cfg.Guide)
			qNodes := sampleNodesOf(bundle, cfg.Model)
			findings, err := abscontinuity.Check(solver, bundle, pNodes, qNodes)
			if err != nil {
				e.Report(diagnostic.Finding{
					Check: "abscontinuity",
					Severity: diagnostic.Warning,
					Message: fmt.Sprintf("absolute-continuity check not analyzable: %s", err),
				})
				return
			}
			for _, f := range findings {
				e.Report(f)
			}
		})
	}

	return engine
}

// sampleNodesOf returns funcName's Sample nodes, in the deterministic order ir.Bundle.Returns
// and friends already use.
func sampleNodesOf(bundle *ir.Bundle, funcName string) []ir.NodeRef {
	var out []ir.NodeRef
	for _, ref := range bundle.SampleNodes() {
		if ref.Func == funcName {
			out = append(out, ref)
		}
	}
	return out
}

// runGuarded runs f, recovering a panic into a single Error Finding tagged with checkName so
// one check's internal bug never prevents the others from reporting.
func runGuarded(e *diagnostic.Engine, checkName string, f func(*diagnostic.Engine)) {
	defer func() {
		if r := recover(); r != nil {
			e.Report(diagnostic.Finding{
				Check: checkName,
				Severity: diagnostic.Error,
				Message: fmt.Sprintf("INTERNAL PANIC in %s: %s\n%s", checkName, r, string(debug.Stack())),
			})
		}
	}()
	f(e)
}
