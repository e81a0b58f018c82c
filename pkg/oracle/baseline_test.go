package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

func TestRecord(t *testing.T) {
	gte := TestCase{
		ID:              "staples",
		SQL:             "select key, num4, date0, bool0 from calcs",
		ExpectedResults: [][]any{{"stale"}},
		RowCountGTE:     true,
		Ordered:         ptr(false),
	}
	rs := &ResultSet{
		Columns: []Column{
			{Label: "key", TypeName: "VARCHAR"},
			{Label: "num4", TypeName: "DECIMAL(9,2)"},
			{Label: "date0", TypeName: "DATE"},
			{Label: "bool0", TypeName: ""},
		},
		Rows: [][]any{
			{"key00", 10.85, time.Date(2004, 4, 15, 0, 0, 0, 0, time.UTC), nil},
			{[]byte("key01"), nil, nil, true},
		},
	}

	got := Record(gte, rs)
	assert.Equal(t, []string{"key", "num4", "date0", "bool0"}, got.ExpectedNames)
	assert.Equal(t, []string{"str", "decimal", "date", "bool"}, got.ExpectedTypes)
	assert.Equal(t, [][]any{
		{"key00", 10.85, "2004-04-15", nil},
		{"key01", nil, nil, true},
	}, got.ExpectedResults)
	require.NotNil(t, got.RowCount)
	assert.Equal(t, 2, *got.RowCount)
	assert.True(t, got.RowCountGTE, "row_count_gte is kept")
	assert.Equal(t, ptr(false), got.Ordered)
	assert.Equal(t, [][]any{{"stale"}}, gte.ExpectedResults, "input case is not modified")

	a, err := NewCompiler(nil).Compile("calcs", 0, got)
	require.NoError(t, err, "a recorded case compiles")
	assert.Equal(t, []typemap.Kind{typemap.KindString, typemap.KindDecimal, typemap.KindDate, typemap.KindBool}, a.Types)
}

func TestRecord_EmptyResult(t *testing.T) {
	got := Record(TestCase{ID: "none", SQL: "select key from calcs where false"}, &ResultSet{
		Columns: []Column{{Label: "key", TypeName: "TEXT"}},
	})
	assert.Equal(t, []string{"str"}, got.ExpectedTypes)
	assert.NotNil(t, got.ExpectedResults, "an empty result is recorded as present")
	assert.Empty(t, got.ExpectedResults)
	assert.Equal(t, 0, *got.RowCount)
}

func TestRunner_Baseline(t *testing.T) {
	adp, mock := newMock(t)

	suite := Suite{Name: "calcs", Cases: []TestCase{
		{ID: "num4", SQL: "select num4 from calcs", ExpectedResults: [][]any{{1.0}}},
		{ID: "skipped", SQL: "select 1", Skip: true},
		{ID: "unsupported", SQL: "select cast(str2 as int) from calcs", ExpectedError: "conversion"},
		{ID: "broken", SQL: "select nope from calcs", ExpectedNames: []string{"nope"}},
	}}

	mock.ExpectQuery(`select num4 from Calcs`).WillReturnRows(
		mock.NewRowsWithColumnDefinition(mock.NewColumn("num4").OfType("DOUBLE", 0.0)).AddRow(10.85).AddRow(nil),
	)
	mock.ExpectQuery(`select nope from Calcs`).WillReturnError(assert.AnError)

	got, results := NewRunner(adp).Baseline(context.Background(), NewCompiler(nil), suite)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, got.Cases, 4)
	assert.Equal(t, "calcs", got.Name)
	assert.Equal(t, [][]any{{10.85}, {nil}}, got.Cases[0].ExpectedResults)
	assert.Equal(t, []string{"float"}, got.Cases[0].ExpectedTypes)
	assert.Equal(t, 2, *got.Cases[0].RowCount)
	assert.Equal(t, suite.Cases[1], got.Cases[1], "skipped cases are kept")
	assert.Equal(t, suite.Cases[2], got.Cases[2], "expected-error cases are kept")
	assert.Equal(t, suite.Cases[3], got.Cases[3], "a failed query keeps the expectations")

	require.Len(t, results, 2)
	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.Contains(t, results[1].Error, "failed to execute query")
}

func ptr[T any](v T) *T { return &v }
