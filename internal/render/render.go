// Package render formats a diagnostic.Engine's Findings for terminal output, colorizing with
// github.com/fatih/color and shortening source paths with util/tokenhelper.RelToCwd.
package render

import (
	"fmt"
	"go/token"
	"io"

	"github.com/fatih/color"

	"go.uber.org/pplcheck/diagnostic"
	"go.uber.org/pplcheck/util/tokenhelper"
)

// Options controls how Findings are written.
type Options struct {
	// Pretty enables ANSI color. When false, color.NoColor is forced on for the duration of
	// the call so output stays plain when piped to a file or another tool.
	Pretty bool
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	posColor   = color.New(color.FgCyan)
	checkColor = color.New(color.FgHiBlack)
)

// Findings writes every Finding in engine, in its already-deterministic order, to w. fset
// resolves each Finding's byte-offset position for display; pass nil to print raw offsets
// instead (used by callers, such as tests, with no token.FileSet on hand).
func Findings(w io.Writer, engine *diagnostic.Engine, fset *token.FileSet, opts Options) {
	prev := color.NoColor
	color.NoColor = !opts.Pretty
	defer func() { color.NoColor = prev }()

	for _, f := range engine.Findings() {
		sev := warnColor
		label := "warning"
		if f.Severity == diagnostic.Error {
			sev = errorColor
			label = "error"
		}

		pos := formatPos(fset, f.Primary().First)
		fmt.Fprint(w, posColor.Sprintf("%s: ", pos))
		fmt.Fprint(w, sev.Sprintf("%s: ", label))
		fmt.Fprint(w, checkColor.Sprintf("[%s] ", f.Check))
		if f.Func != "" {
			fmt.Fprintf(w, "(in %s) ", f.Func)
		}
		fmt.Fprintln(w, f.Message)
	}
}

func formatPos(fset *token.FileSet, offset int) string {
	if fset == nil || offset <= 0 {
		return fmt.Sprintf("offset:%d", offset)
	}
	p := fset.Position(token.Pos(offset))
	return fmt.Sprintf("%s:%d:%d", tokenhelper.RelToCwd(p.Filename), p.Line, p.Column)
}

// Summary writes a one-line count of errors and warnings in engine.
func Summary(w io.Writer, engine *diagnostic.Engine) {
	var errs, warns int
	for _, f := range engine.Findings() {
		if f.Severity == diagnostic.Error {
			errs++
		} else {
			warns++
		}
	}
	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
}
