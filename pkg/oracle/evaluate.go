package oracle

import (
	"fmt"

	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// Column is the metadata reported for one result column.
type Column struct {
	Label    string
	TypeName string
}

// ResultSet is a fully read query result with raw driver cells.
type ResultSet struct {
	Columns []Column
	Rows    [][]any
}

// Options selects how results are compared.
type Options struct {
	Policy    Policy
	Tolerance float64
}

func (o Options) comparator(a *Assertion) Comparator {
	p := o.Policy
	if a.Ordered != nil {
		if *a.Ordered {
			p = PolicyOrdered
		} else {
			p = PolicyUnordered
		}
	}
	return ComparatorFor(p, o.Tolerance)
}

// Evaluate checks rs against a. It returns every label and type mismatch,
// at most one row mismatch (the first the comparator finds), and any row
// count mismatch. An empty result means the assertion holds.
//
// A column whose reported type is unknown or null passes the type check.
func Evaluate(a *Assertion, rs *ResultSet, opts Options) []Mismatch {
	var out []Mismatch

	if w := a.Width(); w >= 0 && w != len(rs.Columns) {
		// Positional checks are meaningless past this point.
		return []Mismatch{{
			Kind:     MismatchColumnCount,
			Row:      -1,
			Column:   -1,
			Expected: fmt.Sprint(w),
			Actual:   fmt.Sprint(len(rs.Columns)),
		}}
	}

	for i, label := range a.Labels {
		if got := rs.Columns[i].Label; got != label {
			out = append(out, Mismatch{Kind: MismatchLabel, Row: -1, Column: i, Expected: label, Actual: got})
		}
	}

	for i, kind := range a.Types {
		reported := typemap.ClassifyReported(rs.Columns[i].TypeName)
		if !reported.Matches(kind) {
			out = append(out, Mismatch{Kind: MismatchType, Row: -1, Column: i, Expected: kind.String(), Actual: reported.Name})
		}
	}

	if a.Rows != nil {
		actual, m := coerceRows(a, rs.Rows)
		if m == nil {
			m = opts.comparator(a).Compare(a.Rows, actual)
		}
		if m != nil {
			out = append(out, *m)
		}
	}

	if n := len(rs.Rows); a.RowCount != nil {
		switch {
		case a.RowCountAtLeast && n < *a.RowCount:
			out = append(out, Mismatch{Kind: MismatchRowCount, Row: -1, Column: -1, Expected: fmt.Sprintf(">= %d", *a.RowCount), Actual: fmt.Sprint(n)})
		case !a.RowCountAtLeast && n != *a.RowCount:
			out = append(out, Mismatch{Kind: MismatchRowCount, Row: -1, Column: -1, Expected: fmt.Sprint(*a.RowCount), Actual: fmt.Sprint(n)})
		}
	}

	return out
}

// coerceRows converts actual cells with the kinds declared for their
// columns, so both sides of the comparison share a representation.
func coerceRows(a *Assertion, raw [][]any) ([][]Value, *Mismatch) {
	out := make([][]Value, len(raw))
	for r, row := range raw {
		vals := make([]Value, len(row))
		for col, cell := range row {
			v, err := Coerce(a.Kind(col), cell)
			if err != nil {
				expected := a.Kind(col).String()
				if r < len(a.Rows) && col < len(a.Rows[r]) {
					expected = a.Rows[r][col].String()
				}
				return nil, &Mismatch{Kind: MismatchCell, Row: r, Column: col, Expected: expected, Actual: fmt.Sprintf("%v (%v)", cell, err)}
			}
			vals[col] = v
		}
		out[r] = vals
	}
	return out, nil
}
