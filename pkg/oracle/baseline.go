package oracle

import (
	"context"
	"time"

	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// Record returns tc with its expectations replaced by what rs holds: the
// reported column labels, one type token per column, every row as plain
// cells and the row count. Skip settings, row_count_gte and ordering are
// kept as they were.
func Record(tc TestCase, rs *ResultSet) TestCase {
	out := tc
	out.ExpectedError = ""

	kinds := make([]typemap.Kind, len(rs.Columns))
	out.ExpectedNames = make([]string, len(rs.Columns))
	out.ExpectedTypes = make([]string, len(rs.Columns))
	for i, col := range rs.Columns {
		kinds[i] = recordedKind(col, rs.Rows, i)
		out.ExpectedNames[i] = col.Label
		out.ExpectedTypes[i] = kinds[i].Token()
	}

	out.ExpectedResults = make([][]any, len(rs.Rows))
	for r, row := range rs.Rows {
		cells := make([]any, len(row))
		for i, raw := range row {
			kind := typemap.KindAny
			if i < len(kinds) {
				kind = kinds[i]
			}
			cells[i] = plainCell(kind, raw)
		}
		out.ExpectedResults[r] = cells
	}

	n := len(rs.Rows)
	out.RowCount = &n
	return out
}

// recordedKind is the reported kind of a column, or the natural kind of its
// first non-null cell when the server reported none.
func recordedKind(col Column, rows [][]any, i int) typemap.Kind {
	if r := typemap.ClassifyReported(col.TypeName); !r.Unknown && r.Kind != typemap.KindAny {
		return r.Kind
	}
	for _, row := range rows {
		if i >= len(row) || IsNullSentinel(row[i]) {
			continue
		}
		raw := row[i]
		if b, ok := raw.([]byte); ok {
			raw = string(b)
		}
		return natural(raw).Kind
	}
	return typemap.KindString
}

func plainCell(kind typemap.Kind, raw any) any {
	v, err := Coerce(kind, raw)
	if err != nil {
		v, _ = Coerce(typemap.KindAny, raw)
	}
	return v.Plain()
}

// Plain returns v as a plain Go value: nil, bool, int64, float64 or string.
func (v Value) Plain() any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case typemap.KindBool:
		return v.Bool
	case typemap.KindLong:
		return v.Int
	case typemap.KindDouble, typemap.KindDecimal:
		return v.Float
	default:
		return v.Text
	}
}

// Baseline runs every case of s that is not excluded and records its result
// with Record. Excluded cases and cases whose query fails keep their
// expectations. One result is returned per case that ran; a failed query
// sets its Error.
func (r *Runner) Baseline(ctx context.Context, c *Compiler, s Suite) (Suite, []Result) {
	out := Suite{Name: s.Name, Cases: make([]TestCase, len(s.Cases))}
	var results []Result

	for i, tc := range s.Cases {
		out.Cases[i] = tc
		if ExclusionReason(tc) != "" || tc.SQL == "" || ctx.Err() != nil {
			continue
		}

		start := time.Now()
		res := Result{ID: tc.ID, Suite: s.Name, SQL: c.QuerySQL(tc.SQL)}
		rs, err := r.Query(ctx, res.SQL)
		if err != nil {
			res.Error = err.Error()
			r.logger.Warn("baseline query failed, keeping expectations", "suite", s.Name, "id", tc.ID, "error", err)
		} else {
			out.Cases[i] = Record(tc, rs)
			res.Passed = true
		}
		res.Duration = time.Since(start)
		results = append(results, res)
	}
	return out, results
}
