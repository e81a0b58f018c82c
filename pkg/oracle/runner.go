package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/dialectgen/pkg/adapter"
)

// Result is the outcome of one assertion.
type Result struct {
	ID         string        `json:"id"`
	Suite      string        `json:"suite"`
	SQL        string        `json:"sql"`
	Passed     bool          `json:"passed"`
	Mismatches []Mismatch    `json:"mismatches,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Report collects the results of one run.
type Report struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Policy   Policy    `json:"policy"`
	Results  []Result  `json:"results"`
	Excluded int       `json:"excluded"`
}

// Passed returns the number of passing results.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

// Failed returns the number of failing results.
func (r *Report) Failed() int { return len(r.Results) - r.Passed() }

// Merge appends the results of other into r.
func (r *Report) Merge(other *Report) {
	r.Results = append(r.Results, other.Results...)
	r.Excluded += other.Excluded
}

// Runner executes assertions against a connected adapter.
type Runner struct {
	adapter adapter.Adapter
	opts    Options
	logger  *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOptions sets the comparison options.
func WithOptions(opts Options) RunnerOption {
	return func(r *Runner) { r.opts = opts }
}

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a Runner on a connected adapter.
func NewRunner(a adapter.Adapter, opts ...RunnerOption) *Runner {
	r := &Runner{
		adapter: a,
		opts:    Options{Policy: PolicyOrdered, Tolerance: DefaultTolerance},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Query executes sql and reads the whole result.
func (r *Runner) Query(ctx context.Context, sqlStr string) (*ResultSet, error) {
	rows, err := r.adapter.Query(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convert func(any) any
	if n, ok := r.adapter.(adapter.ValueNormalizer); ok {
		convert = n.NormalizeValue
	}
	return ReadResultSet(rows.Rows, convert)
}

// Check executes one assertion. Query errors are recorded on the result,
// not returned.
func (r *Runner) Check(ctx context.Context, a *Assertion) Result {
	start := time.Now()
	res := Result{ID: a.ID, Suite: a.Suite, SQL: a.SQL}

	rs, err := r.Query(ctx, a.SQL)
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Mismatches = Evaluate(a, rs, r.opts)
		res.Passed = len(res.Mismatches) == 0
	}
	res.Duration = time.Since(start)

	if res.Passed {
		r.logger.Debug("assertion passed", "suite", a.Suite, "id", a.ID, "duration", res.Duration)
	} else {
		r.logger.Info("assertion failed", "suite", a.Suite, "id", a.ID, "mismatches", len(res.Mismatches), "error", res.Error)
	}
	return res
}

// Run executes assertions in order. A failing assertion never stops the
// ones after it; only context cancellation ends the run early.
func (r *Runner) Run(ctx context.Context, assertions []*Assertion) *Report {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Policy:  r.opts.Policy,
	}
	for _, a := range assertions {
		if ctx.Err() != nil {
			break
		}
		report.Results = append(report.Results, r.Check(ctx, a))
	}
	r.logger.Info("run finished", "run_id", report.RunID, "passed", report.Passed(), "failed", report.Failed())
	return report
}

// ReadResultSet reads column metadata and every row from rows. convert, when
// non-nil, is applied to each scanned cell.
func ReadResultSet(rows *sql.Rows, convert func(any) any) (*ResultSet, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	rs := &ResultSet{Columns: make([]Column, len(types))}
	for i, ct := range types {
		rs.Columns[i] = Column{Label: ct.Name(), TypeName: ct.DatabaseTypeName()}
	}

	for rows.Next() {
		cells := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if convert != nil {
			for i, c := range cells {
				cells[i] = convert(c)
			}
		}
		rs.Rows = append(rs.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return rs, nil
}
