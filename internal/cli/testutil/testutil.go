// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/dialectgen/internal/cli/output"
)

// ProjectConfig is the dialectgen.yaml written by SetupTestProject.
const ProjectConfig = `functions:
  - specs/functions.yml
suites:
  - tests/calcs.yml
out_dir: generated
seeds: seeds
target:
  type: duckdb
  database: ":memory:"
`

// FunctionsDoc is the function-specification document of the test project.
const FunctionsDoc = `functions:
  - id: abs
    description: Returns the absolute value of a number.
    invocations:
      - arguments:
          - eval_type: EvalNumber
        return_type: EvalNumber
  - id: upper
    description: Converts a string to upper case.
    invocations:
      - arguments:
          - eval_type: EvalString
        return_type: EvalString
  - id: current_date
    description: Returns the current date.
    invocations:
      - arguments: []
        return_type: EvalDate
  - id: date_trunc
    description: Truncates a timestamp to the given precision.
    invocations:
      - arguments:
          - eval_type: EvalString
          - eval_type: EvalDatetime
        return_type: EvalDatetime
`

// SuiteDoc is the test-suite document of the test project. Every case
// passes against DuckDB with the seed table loaded.
const SuiteDoc = `testcases:
  - id: literal
    sql: 'select 1 as one'
    expected_names: [one]
    expected_types: [int]
    expected_results:
      - [1]
  - id: seeded
    sql: 'select key, num0 from calcs order by key'
    expected_names: [key, num0]
    expected_types: [str, float]
    expected_results:
      - [key00, 12.3]
      - [key01, -12.3]
  - id: unsupported
    sql: 'select cast(str2 as int) from calcs'
    expected_error: 'conversion'
  - id: skipped
    sql: 'select 1'
    skip: true
`

// SeedCSV is the calcs seed table of the test project.
const SeedCSV = `key,num0
key00,12.3
key01,-12.3
`

// SetupTestProject creates a temporary dialectgen project: a config file,
// one function-specification document, one test suite and one seed table.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	files := map[string]string{
		"dialectgen.yaml":     ProjectConfig,
		"specs/functions.yml": FunctionsDoc,
		"tests/calcs.yml":     SuiteDoc,
		"seeds/calcs.csv":     SeedCSV,
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
