// Package specdoc reads and writes the YAML documents that feed generation:
// function-specification documents and compliance test-suite documents.
package specdoc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/dialectgen/pkg/catalog"
	"github.com/leapstack-labs/dialectgen/pkg/oracle"
)

// MissingKeyError reports a document without its top-level list.
type MissingKeyError struct {
	Name string
	Key  string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s: missing top-level key %q", e.Name, e.Key)
}

type functionsDoc struct {
	Functions *[]functionDoc `yaml:"functions"`
}

type functionDoc struct {
	ID          string          `yaml:"id,omitempty"`
	LegacyID    string          `yaml:"_id,omitempty"`
	Description string          `yaml:"description"`
	Invocations []invocationDoc `yaml:"invocations"`
}

type invocationDoc struct {
	Arguments  []argDoc `yaml:"arguments"`
	ReturnType string   `yaml:"return_type"`
}

type argDoc struct {
	EvalType string `yaml:"eval_type"`
}

type suiteDoc struct {
	TestCases *[]testCaseDoc `yaml:"testcases"`
}

type testCaseDoc struct {
	ID              string   `yaml:"id"`
	SQL             string   `yaml:"sql"`
	ExpectedNames   []string `yaml:"expected_names"`
	ExpectedTypes   []string `yaml:"expected_types"`
	ExpectedResults [][]any  `yaml:"expected_results"`
	ExpectedError   string   `yaml:"expected_error"`
	Skip            any      `yaml:"skip"`
	SkipReason      string   `yaml:"skip_reason"`
	RowCount        *int     `yaml:"row_count"`
	RowCountGTE     bool     `yaml:"row_count_gte"`
	Ordered         *bool    `yaml:"ordered"`
}

// LoadFunctions reads a function-specification document from path. The
// source is named after the file's base name.
func LoadFunctions(path string) (catalog.Source, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return catalog.Source{}, fmt.Errorf("failed to open function spec: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeFunctions(filepath.Base(path), f)
}

// DecodeFunctions reads a function-specification document. Functions may
// carry their identifier as either "id" or "_id".
func DecodeFunctions(name string, r io.Reader) (catalog.Source, error) {
	var doc functionsDoc
	if err := decode(r, &doc); err != nil {
		return catalog.Source{}, fmt.Errorf("%s: %w", name, err)
	}
	if doc.Functions == nil {
		return catalog.Source{}, &MissingKeyError{Name: name, Key: "functions"}
	}

	src := catalog.Source{Name: name, Functions: make([]catalog.FunctionSpec, 0, len(*doc.Functions))}
	for _, fd := range *doc.Functions {
		fn := catalog.FunctionSpec{ID: fd.ID, Description: fd.Description}
		if fn.ID == "" {
			fn.ID = fd.LegacyID
		}
		for _, id := range fd.Invocations {
			inv := catalog.Invocation{ReturnType: id.ReturnType}
			for _, a := range id.Arguments {
				inv.Arguments = append(inv.Arguments, catalog.Arg{EvalType: a.EvalType})
			}
			fn.Invocations = append(fn.Invocations, inv)
		}
		src.Functions = append(src.Functions, fn)
	}
	return src, nil
}

// EncodeFunctions writes specs as a function-specification document.
func EncodeFunctions(w io.Writer, specs []catalog.FunctionSpec) error {
	doc := struct {
		Functions []functionDoc `yaml:"functions"`
	}{Functions: make([]functionDoc, 0, len(specs))}

	for _, fn := range specs {
		fd := functionDoc{ID: fn.ID, Description: fn.Description}
		for _, inv := range fn.Invocations {
			id := invocationDoc{ReturnType: inv.ReturnType, Arguments: []argDoc{}}
			for _, a := range inv.Arguments {
				id.Arguments = append(id.Arguments, argDoc(a))
			}
			fd.Invocations = append(fd.Invocations, id)
		}
		doc.Functions = append(doc.Functions, fd)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode function spec: %w", err)
	}
	return enc.Close()
}

// SuiteName derives a suite name from a file path: the base name up to its
// first dot.
func SuiteName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// LoadSuite reads a test-suite document from path.
func LoadSuite(path string) (oracle.Suite, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return oracle.Suite{}, fmt.Errorf("failed to open test suite: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeSuite(SuiteName(path), f)
}

// DecodeSuite reads a test-suite document. Absent expectation lists decode
// to nil; present but empty lists decode to empty slices.
func DecodeSuite(name string, r io.Reader) (oracle.Suite, error) {
	var doc suiteDoc
	if err := decode(r, &doc); err != nil {
		return oracle.Suite{}, fmt.Errorf("%s: %w", name, err)
	}
	if doc.TestCases == nil {
		return oracle.Suite{}, &MissingKeyError{Name: name, Key: "testcases"}
	}

	suite := oracle.Suite{Name: name, Cases: make([]oracle.TestCase, 0, len(*doc.TestCases))}
	for _, td := range *doc.TestCases {
		suite.Cases = append(suite.Cases, oracle.TestCase{
			ID:              td.ID,
			SQL:             td.SQL,
			ExpectedNames:   td.ExpectedNames,
			ExpectedTypes:   td.ExpectedTypes,
			ExpectedResults: td.ExpectedResults,
			ExpectedError:   td.ExpectedError,
			Skip:            td.Skip,
			SkipReason:      td.SkipReason,
			RowCount:        td.RowCount,
			RowCountGTE:     td.RowCountGTE,
			Ordered:         td.Ordered,
		})
	}
	return suite, nil
}

// caseOut keeps absent lists absent and present empty lists as [].
type caseOut struct {
	ID              string    `yaml:"id"`
	SQL             string    `yaml:"sql"`
	ExpectedNames   *[]string `yaml:"expected_names,omitempty"`
	ExpectedTypes   *[]string `yaml:"expected_types,omitempty"`
	ExpectedResults *[][]any  `yaml:"expected_results,omitempty"`
	ExpectedError   string    `yaml:"expected_error,omitempty"`
	Skip            any       `yaml:"skip,omitempty"`
	SkipReason      string    `yaml:"skip_reason,omitempty"`
	RowCount        *int      `yaml:"row_count,omitempty"`
	RowCountGTE     bool      `yaml:"row_count_gte,omitempty"`
	Ordered         *bool     `yaml:"ordered,omitempty"`
}

func present[T any](s []T) *[]T {
	if s == nil {
		return nil
	}
	return &s
}

// EncodeSuite writes s as a test-suite document that DecodeSuite reads back
// to the same cases.
func EncodeSuite(w io.Writer, s oracle.Suite) error {
	doc := struct {
		TestCases []caseOut `yaml:"testcases"`
	}{TestCases: make([]caseOut, 0, len(s.Cases))}

	for _, tc := range s.Cases {
		doc.TestCases = append(doc.TestCases, caseOut{
			ID:              tc.ID,
			SQL:             tc.SQL,
			ExpectedNames:   present(tc.ExpectedNames),
			ExpectedTypes:   present(tc.ExpectedTypes),
			ExpectedResults: present(tc.ExpectedResults),
			ExpectedError:   tc.ExpectedError,
			Skip:            tc.Skip,
			SkipReason:      tc.SkipReason,
			RowCount:        tc.RowCount,
			RowCountGTE:     tc.RowCountGTE,
			Ordered:         tc.Ordered,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode test suite: %w", err)
	}
	return enc.Close()
}

func decode(r io.Reader, out any) error {
	err := yaml.NewDecoder(r).Decode(out)
	if errors.Is(err, io.EOF) {
		return errors.New("empty document")
	}
	return err
}
