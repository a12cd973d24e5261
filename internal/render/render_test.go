package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"go.uber.org/pplcheck/diagnostic"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFindings_PlainOutputHasNoEscapeCodes(t *testing.T) {
	engine := diagnostic.NewEngine()
	engine.Report(diagnostic.Finding{Check: "funnel", Severity: diagnostic.Warning, Message: "centered parameterization"})

	var buf bytes.Buffer
	Findings(&buf, engine, nil, Options{Pretty: false})

	out := buf.String()
	assert.Contains(t, out, "funnel")
	assert.Contains(t, out, "centered parameterization")
	assert.NotContains(t, out, "\x1b[")
}

func TestFindings_PrettyOutputHasEscapeCodes(t *testing.T) {
	engine := diagnostic.NewEngine()
	engine.Report(diagnostic.Finding{Check: "constraints", Severity: diagnostic.Error, Message: "sigma must be positive"})

	var buf bytes.Buffer
	Findings(&buf, engine, nil, Options{Pretty: true})

	assert.Contains(t, buf.String(), "\x1b[")
}

func TestSummary_CountsBySeverity(t *testing.T) {
	engine := diagnostic.NewEngine()
	engine.Report(diagnostic.Finding{Check: "a", Severity: diagnostic.Error, Message: "e"})
	engine.Report(diagnostic.Finding{Check: "b", Severity: diagnostic.Warning, Message: "w"})
	engine.Report(diagnostic.Finding{Check: "c", Severity: diagnostic.Warning, Message: "w2"})

	var buf bytes.Buffer
	Summary(&buf, engine)
	assert.Equal(t, "1 error(s), 2 warning(s)\n", buf.String())
}
