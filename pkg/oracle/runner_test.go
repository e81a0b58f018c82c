package oracle

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectgen/internal/testutil"
	"github.com/leapstack-labs/dialectgen/pkg/adapter"
)

type mockAdapter struct {
	adapter.BaseSQLAdapter
	convert func(any) any
}

func (m *mockAdapter) Name() string { return "mock" }
func (m *mockAdapter) Connect(context.Context, adapter.Config) error { return nil }
func (m *mockAdapter) LoadCSV(context.Context, string, string) error { return nil }

type normalizingAdapter struct{ *mockAdapter }

func (n normalizingAdapter) NormalizeValue(v any) any { return n.convert(v) }

func newMock(t *testing.T) (*mockAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &mockAdapter{BaseSQLAdapter: adapter.BaseSQLAdapter{DB: db}}, mock
}

func TestRunner_Run(t *testing.T) {
	adp, mock := newMock(t)
	c := NewCompiler(nil)

	pass, err := c.Compile("calcs", 0, TestCase{
		ID:              "BI-821-bug",
		SQL:             "select num4, floor(calcs.num4) as floor from calcs limit 2",
		ExpectedNames:   []string{"num4", "floor"},
		ExpectedTypes:   []string{"float", "float"},
		ExpectedResults: [][]any{{"~", "~"}, {10.85, 10}},
	})
	require.NoError(t, err)

	fail, err := c.Compile("calcs", 1, TestCase{
		ID:              "wrong",
		SQL:             "select num0 from calcs",
		ExpectedTypes:   []string{"float"},
		ExpectedResults: [][]any{{12.3}},
	})
	require.NoError(t, err)

	broken, err := c.Compile("calcs", 2, TestCase{ID: "broken", SQL: "select nope from calcs"})
	require.NoError(t, err)

	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("num4").OfType("DOUBLE", 0.0),
		mock.NewColumn("floor").OfType("DOUBLE", 0.0),
	).AddRow(nil, nil).AddRow(10.85, 10.0)
	mock.ExpectQuery(`select num4, floor\(Calcs.num4\) as floor from Calcs limit 2`).WillReturnRows(rows)

	mock.ExpectQuery(`select num0 from Calcs`).WillReturnRows(
		mock.NewRowsWithColumnDefinition(mock.NewColumn("num0").OfType("DOUBLE", 0.0)).AddRow(-12.3),
	)
	mock.ExpectQuery(`select nope from Calcs`).WillReturnError(assert.AnError)

	runner := NewRunner(adp, WithLogger(testutil.NewTestLogger(t)))
	report := runner.Run(context.Background(), []*Assertion{pass, fail, broken})

	require.Len(t, report.Results, 3, "a failure does not stop the run")
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, PolicyOrdered, report.Policy)

	assert.True(t, report.Results[0].Passed, "%v", report.Results[0].Mismatches)

	assert.False(t, report.Results[1].Passed)
	require.Len(t, report.Results[1].Mismatches, 1)
	assert.Equal(t, "12.3", report.Results[1].Mismatches[0].Expected)
	assert.Equal(t, "-12.3", report.Results[1].Mismatches[0].Actual)

	assert.False(t, report.Results[2].Passed)
	assert.Contains(t, report.Results[2].Error, "failed to execute query")

	assert.Equal(t, 1, report.Passed())
	assert.Equal(t, 2, report.Failed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_Run_Canceled(t *testing.T) {
	adp, _ := newMock(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewRunner(adp).Run(ctx, []*Assertion{{ID: "a", SQL: "select 1"}})
	assert.Empty(t, report.Results)
}

func TestRunner_Query_ValueNormalizer(t *testing.T) {
	adp, mock := newMock(t)
	adp.convert = func(v any) any {
		if s, ok := v.(string); ok && s == "1.50" {
			return 1.5
		}
		return v
	}

	mock.ExpectQuery("select d").WillReturnRows(
		mock.NewRowsWithColumnDefinition(mock.NewColumn("d").OfType("DECIMAL", "")).AddRow("1.50"),
	)

	rs, err := NewRunner(normalizingAdapter{adp}).Query(context.Background(), "select d")
	require.NoError(t, err)
	assert.Equal(t, []Column{{Label: "d", TypeName: "DECIMAL"}}, rs.Columns)
	assert.Equal(t, [][]any{{1.5}}, rs.Rows)
}

func TestReport_Merge(t *testing.T) {
	r := &Report{Results: []Result{{ID: "a", Passed: true}}, Excluded: 1}
	r.Merge(&Report{Results: []Result{{ID: "b"}}, Excluded: 2})
	assert.Len(t, r.Results, 2)
	assert.Equal(t, 3, r.Excluded)
	assert.Equal(t, 1, r.Failed())
}
