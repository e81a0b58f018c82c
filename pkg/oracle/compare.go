package oracle

import (
	"fmt"
	"strings"
)

// MismatchKind classifies a Mismatch.
type MismatchKind string

// Mismatch kinds.
const (
	MismatchColumnCount MismatchKind = "column_count"
	MismatchLabel       MismatchKind = "label"
	MismatchType        MismatchKind = "type"
	MismatchRowCount    MismatchKind = "row_count"
	MismatchCellCount   MismatchKind = "cell_count"
	MismatchCell        MismatchKind = "cell"
	MismatchUnexpected  MismatchKind = "unexpected_row"
)

// Mismatch describes one difference between an expectation and a result.
// Row and Column are 0-based; -1 means not applicable.
type Mismatch struct {
	Kind     MismatchKind `json:"kind"`
	Row      int          `json:"row"`
	Column   int          `json:"column"`
	Expected string       `json:"expected"`
	Actual   string       `json:"actual"`
}

func (m Mismatch) String() string {
	var where string
	switch {
	case m.Row >= 0 && m.Column >= 0:
		where = fmt.Sprintf(" at row %d column %d", m.Row+1, m.Column+1)
	case m.Row >= 0:
		where = fmt.Sprintf(" at row %d", m.Row+1)
	case m.Column >= 0:
		where = fmt.Sprintf(" at column %d", m.Column+1)
	}
	return fmt.Sprintf("%s mismatch%s: expected %s, got %s", m.Kind, where, m.Expected, m.Actual)
}

// Comparator decides whether actual rows satisfy expected rows. Compare
// returns nil when they do, otherwise the first difference found.
type Comparator interface {
	Name() string
	Compare(expected, actual [][]Value) *Mismatch
}

// Policy names a comparison policy.
type Policy string

// Comparison policies.
const (
	PolicyOrdered   Policy = "ordered"
	PolicyUnordered Policy = "unordered"
)

// ParsePolicy parses a policy name. The empty string selects PolicyOrdered.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyOrdered:
		return PolicyOrdered, nil
	case PolicyUnordered:
		return PolicyUnordered, nil
	default:
		return "", fmt.Errorf("unknown comparison policy %q (known: ordered, unordered)", s)
	}
}

// ComparatorFor returns the comparator for p. tol applies to the ordered
// policy; zero or negative selects DefaultTolerance.
func ComparatorFor(p Policy, tol float64) Comparator {
	if p == PolicyUnordered {
		return UnorderedStrings{}
	}
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return OrderedTolerant{Tolerance: tol}
}

// OrderedTolerant compares rows positionally with typed cell equality and an
// absolute numeric tolerance. It relies on the server returning rows in a
// stable order.
type OrderedTolerant struct {
	Tolerance float64
}

// Name implements Comparator.
func (OrderedTolerant) Name() string { return string(PolicyOrdered) }

// Compare implements Comparator.
func (c OrderedTolerant) Compare(expected, actual [][]Value) *Mismatch {
	if len(expected) != len(actual) {
		return &Mismatch{
			Kind:     MismatchRowCount,
			Row:      -1,
			Column:   -1,
			Expected: fmt.Sprint(len(expected)),
			Actual:   fmt.Sprint(len(actual)),
		}
	}
	for r := range expected {
		if len(expected[r]) != len(actual[r]) {
			return &Mismatch{
				Kind:     MismatchCellCount,
				Row:      r,
				Column:   -1,
				Expected: fmt.Sprint(len(expected[r])),
				Actual:   fmt.Sprint(len(actual[r])),
			}
		}
		for col := range expected[r] {
			e, a := expected[r][col], actual[r][col]
			if !e.Equal(a, c.Tolerance) {
				return &Mismatch{
					Kind:     MismatchCell,
					Row:      r,
					Column:   col,
					Expected: e.String(),
					Actual:   a.String(),
				}
			}
		}
	}
	return nil
}

// UnorderedStrings renders every cell as text and requires each actual row
// to appear among the expected rows. Missing expected rows go undetected and
// type distinctions are lost; it exists for suites written against that
// looser behaviour.
type UnorderedStrings struct{}

// Name implements Comparator.
func (UnorderedStrings) Name() string { return string(PolicyUnordered) }

// Compare implements Comparator.
func (UnorderedStrings) Compare(expected, actual [][]Value) *Mismatch {
	want := make(map[string]bool, len(expected))
	for _, row := range expected {
		want[rowKey(row)] = true
	}
	for r, row := range actual {
		key := rowKey(row)
		if !want[key] {
			return &Mismatch{
				Kind:     MismatchUnexpected,
				Row:      r,
				Column:   -1,
				Expected: "one of the expected rows",
				Actual:   key,
			}
		}
	}
	return nil
}

func rowKey(row []Value) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
