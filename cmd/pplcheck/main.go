// Command pplcheck is the standalone CLI for this repository's checks: it loads a source file
// through one of the two frontends (frontend/sexpr's s-expression grammar or frontend/goppl's
// Go-embedded ppl marker API), runs whichever analyses config.Config selects, and renders the
// resulting diagnostic.Engine to stdout. Its structured lifecycle logging uses go.uber.org/zap,
// kept out of the core analysis packages themselves.
package main

import (
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"os"

	"go.uber.org/zap"

	"go.uber.org/pplcheck/config"
	"go.uber.org/pplcheck/frontend/goppl"
	"go.uber.org/pplcheck/frontend/sexpr"
	"go.uber.org/pplcheck/internal/accumulate"
	"go.uber.org/pplcheck/internal/render"
	"go.uber.org/pplcheck/ir"
	"go.uber.org/pplcheck/smt/refsolver"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pplcheck: failed to initialize logger: %s\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	fs := flag.NewFlagSet("pplcheck", flag.ContinueOnError)
	cfg := config.Default()
	cfg.RegisterFlags(fs)
	frontendName := fs.String("frontend", "sexpr", `input frontend: "sexpr" or "goppl"`)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pplcheck [flags] <source-file>")
		return 2
	}
	path := fs.Arg(0)

	logger.Info("loading source", zap.String("path", path), zap.String("frontend", *frontendName))

	source, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read source file", zap.Error(err))
		return 1
	}

	bundle, fset, err := load(*frontendName, path, string(source), cfg)
	if err != nil {
		logger.Error("failed to build IR bundle", zap.Error(err))
		fmt.Fprintf(os.Stderr, "pplcheck: %s\n", err)
		return 1
	}

	logger.Info("running checks",
		zap.Bool("constraints", cfg.RunConstraints),
		zap.Bool("abscontinuity", cfg.RunAbsContinuity),
		zap.Bool("funnel", cfg.RunFunnel),
		zap.Bool("randomcontrolflow", cfg.RunRandomControlFlow),
	)

	engine := accumulate.Run(cfg, bundle, refsolver.New())

	render.Findings(os.Stdout, engine, fset, render.Options{Pretty: cfg.Pretty})
	render.Summary(os.Stdout, engine)

	if engine.HasErrors() {
		return 1
	}
	return 0
}

// load dispatches to the selected frontend, returning its ir.Bundle and, for frontend/goppl, the
// token.FileSet needed to resolve diagnostic positions (frontend/sexpr uses raw byte offsets
// into the source string directly, so it has no FileSet to report).
func load(frontendName, path, source string, cfg config.Config) (*ir.Bundle, *token.FileSet, error) {
	switch frontendName {
	case "sexpr":
		bundle, err := sexpr.Program(source, cfg.Model, cfg.Guide)
		return bundle, nil, err
	case "goppl":
		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, source, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", path, err)
		}
		bundle, err := goppl.Program(fset, file, cfg.Model, cfg.Guide)
		return bundle, fset, err
	default:
		return nil, nil, fmt.Errorf("unknown frontend %q (want sexpr or goppl)", frontendName)
	}
}
