package oracle

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/dialectgen/pkg/normalize"
	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// ErrExcluded is returned by Compile for a test case that is deliberately
// left out of the generated suite. It is not a failure.
var ErrExcluded = errors.New("test case excluded")

// TestCase is one declarative compliance test as read from a suite
// document. Nil slices mark absent fields; an empty non-nil slice is present
// and empty.
type TestCase struct {
	ID              string
	SQL             string
	ExpectedNames   []string
	ExpectedTypes   []string
	ExpectedResults [][]any
	ExpectedError   string
	// Skip excludes the test only when it holds the boolean true.
	Skip       any
	SkipReason string
	// RowCount asserts the number of returned rows. RowCountGTE turns it
	// into a lower bound.
	RowCount    *int
	RowCountGTE bool
	// Ordered overrides the suite comparison policy for this test.
	Ordered *bool
}

// Suite is an ordered list of test cases read from one document.
type Suite struct {
	Name  string
	Cases []TestCase
}

// Assertion is a compiled, executable test case.
type Assertion struct {
	ID     string
	Suite  string
	SQL    string
	Labels []string       // nil when names are not asserted
	Types  []typemap.Kind // nil when types are not asserted
	Rows   [][]Value      // nil when rows are not asserted

	RowCount        *int
	RowCountAtLeast bool // RowCount is a lower bound
	Ordered         *bool
}

// Width returns the declared column count, or -1 when neither labels, types
// nor rows declare one.
func (a *Assertion) Width() int {
	switch {
	case a.Types != nil:
		return len(a.Types)
	case a.Labels != nil:
		return len(a.Labels)
	case len(a.Rows) > 0:
		return len(a.Rows[0])
	default:
		return -1
	}
}

// Kind returns the declared kind of column i, or KindAny.
func (a *Assertion) Kind(i int) typemap.Kind {
	if i < len(a.Types) {
		return a.Types[i]
	}
	return typemap.KindAny
}

// MissingFieldError reports a test case lacking a required field.
type MissingFieldError struct {
	Suite string
	Index int
	ID    string
	Field string
}

func (e *MissingFieldError) Error() string {
	where := fmt.Sprintf("%s: test case #%d", e.Suite, e.Index)
	if e.ID != "" {
		where = fmt.Sprintf("%s: test case %s", e.Suite, e.ID)
	}
	return fmt.Sprintf("%s: missing required field %q", where, e.Field)
}

// ShapeError reports expected rows whose width disagrees with the declared
// names or types.
type ShapeError struct {
	Suite  string
	ID     string
	Detail string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: test case %s: %s", e.Suite, e.ID, e.Detail)
}

// Exclusion records why a test case was left out.
type Exclusion struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Compiler turns test cases into assertions.
type Compiler struct {
	norm  *normalize.Normalizer
	types *typemap.TestMapper
}

// NewCompiler creates a Compiler using norm for SQL and label casing. A nil
// norm uses the default rules.
func NewCompiler(norm *normalize.Normalizer) *Compiler {
	if norm == nil {
		norm = normalize.Default()
	}
	return &Compiler{norm: norm, types: typemap.NewTestMapper()}
}

// QuerySQL returns sql as it is sent to the target.
func (c *Compiler) QuerySQL(sql string) string { return c.norm.SQL(sql) }

// ExclusionReason returns why tc is excluded, or "" when it is not.
func ExclusionReason(tc TestCase) string {
	switch {
	case tc.Skip == true:
		return "skip"
	case tc.SkipReason != "":
		return "skip: " + tc.SkipReason
	case tc.ExpectedError != "":
		return "expected error: " + tc.ExpectedError
	default:
		return ""
	}
}

// Compile compiles tc. index is its position in the suite and is only used
// in errors. An excluded test returns an error wrapping ErrExcluded.
func (c *Compiler) Compile(suite string, index int, tc TestCase) (*Assertion, error) {
	if reason := ExclusionReason(tc); reason != "" {
		return nil, fmt.Errorf("%s: %w (%s)", tc.ID, ErrExcluded, reason)
	}

	if tc.ID == "" {
		return nil, &MissingFieldError{Suite: suite, Index: index, Field: "id"}
	}
	if tc.SQL == "" {
		return nil, &MissingFieldError{Suite: suite, Index: index, ID: tc.ID, Field: "sql"}
	}
	if err := checkShape(suite, tc); err != nil {
		return nil, err
	}

	a := &Assertion{
		ID:              tc.ID,
		Suite:           suite,
		SQL:             c.QuerySQL(tc.SQL),
		RowCount:        tc.RowCount,
		RowCountAtLeast: tc.RowCountGTE,
		Ordered:         tc.Ordered,
	}

	if tc.ExpectedNames != nil {
		a.Labels = make([]string, len(tc.ExpectedNames))
		for i, name := range tc.ExpectedNames {
			a.Labels[i] = c.norm.Identifier(name)
		}
	}

	if tc.ExpectedTypes != nil {
		a.Types = make([]typemap.Kind, len(tc.ExpectedTypes))
		for i, tok := range tc.ExpectedTypes {
			k, err := c.types.Map(tok)
			if err != nil {
				return nil, fmt.Errorf("%s: test case %s column %d: %w", suite, tc.ID, i+1, err)
			}
			a.Types[i] = k
		}
	}

	if tc.ExpectedResults != nil {
		a.Rows = make([][]Value, len(tc.ExpectedResults))
		for r, raw := range tc.ExpectedResults {
			row := make([]Value, len(raw))
			for col, cell := range raw {
				v, err := Coerce(a.Kind(col), cell)
				if err != nil {
					return nil, fmt.Errorf("%s: test case %s row %d column %d: %w", suite, tc.ID, r+1, col+1, err)
				}
				row[col] = v
			}
			a.Rows[r] = row
		}
	}

	return a, nil
}

func checkShape(suite string, tc TestCase) error {
	fail := func(format string, args ...any) error {
		return &ShapeError{Suite: suite, ID: tc.ID, Detail: fmt.Sprintf(format, args...)}
	}

	if tc.ExpectedNames != nil && tc.ExpectedTypes != nil && len(tc.ExpectedNames) != len(tc.ExpectedTypes) {
		return fail("%d expected names but %d expected types", len(tc.ExpectedNames), len(tc.ExpectedTypes))
	}
	for r, row := range tc.ExpectedResults {
		if tc.ExpectedTypes != nil && len(row) != len(tc.ExpectedTypes) {
			return fail("row %d has %d cells, expected %d (types)", r+1, len(row), len(tc.ExpectedTypes))
		}
		if tc.ExpectedNames != nil && len(row) != len(tc.ExpectedNames) {
			return fail("row %d has %d cells, expected %d (names)", r+1, len(row), len(tc.ExpectedNames))
		}
	}
	return nil
}

// CompileSuite compiles every test case of s in order. Excluded cases are
// returned separately; any other error aborts compilation.
func (c *Compiler) CompileSuite(s Suite) ([]*Assertion, []Exclusion, error) {
	var (
		out      []*Assertion
		excluded []Exclusion
	)
	for i, tc := range s.Cases {
		a, err := c.Compile(s.Name, i, tc)
		if errors.Is(err, ErrExcluded) {
			excluded = append(excluded, Exclusion{ID: tc.ID, Reason: ExclusionReason(tc)})
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		out = append(out, a)
	}
	return out, excluded, nil
}
