package oracle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

func TestCompile_FloatResult(t *testing.T) {
	c := NewCompiler(nil)

	a, err := c.Compile("calcs", 0, TestCase{
		ID:              "T1",
		SQL:             "select 1.0",
		ExpectedTypes:   []string{"float"},
		ExpectedResults: [][]any{{1.0}},
	})
	require.NoError(t, err)

	assert.Equal(t, "T1", a.ID)
	assert.Equal(t, "calcs", a.Suite)
	assert.Equal(t, "select 1.0", a.SQL)
	assert.Nil(t, a.Labels)
	assert.Equal(t, []typemap.Kind{typemap.KindDouble}, a.Types)
	require.Len(t, a.Rows, 1)
	assert.Equal(t, Float(typemap.KindDouble, 1.0), a.Rows[0][0])
	assert.Equal(t, 1, a.Width())
}

func TestCompile_Exclusions(t *testing.T) {
	tests := []struct {
		name   string
		tc     TestCase
		reason string
	}{
		{
			name:   "skip true",
			tc:     TestCase{ID: "s1", SQL: "select 1", Skip: true},
			reason: "skip",
		},
		{
			name:   "expected error",
			tc:     TestCase{ID: "s2", SQL: "select x", ExpectedError: "no such column"},
			reason: "expected error: no such column",
		},
		{
			name:   "skip reason",
			tc:     TestCase{ID: "s3", SQL: "select 1", SkipReason: "flaky on server"},
			reason: "skip: flaky on server",
		},
		{
			name:   "skip without sql",
			tc:     TestCase{ID: "s4", Skip: true},
			reason: "skip",
		},
	}

	c := NewCompiler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := c.Compile("calcs", 0, tt.tc)
			assert.Nil(t, a)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrExcluded))
			assert.Equal(t, tt.reason, ExclusionReason(tt.tc))
		})
	}
}

func TestCompile_SkipMustBeTrue(t *testing.T) {
	c := NewCompiler(nil)
	for _, skip := range []any{false, "true", 1, nil} {
		a, err := c.Compile("calcs", 0, TestCase{ID: "t", SQL: "select 1", Skip: skip})
		require.NoError(t, err, "skip=%#v", skip)
		assert.NotNil(t, a)
	}
}

func TestCompileSuite_SkipYieldsNothing(t *testing.T) {
	c := NewCompiler(nil)
	got, excluded, err := c.CompileSuite(Suite{Name: "calcs", Cases: []TestCase{
		{ID: "skipped", SQL: "select 1", Skip: true},
	}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []Exclusion{{ID: "skipped", Reason: "skip"}}, excluded)
}

func TestCompileSuite_Order(t *testing.T) {
	c := NewCompiler(nil)
	got, excluded, err := c.CompileSuite(Suite{Name: "calcs", Cases: []TestCase{
		{ID: "a", SQL: "select 1"},
		{ID: "b", SQL: "select 2", ExpectedError: "boom"},
		{ID: "c", SQL: "select 3"},
	}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Len(t, excluded, 1)
}

func TestCompile_LabelsUseIdentifierCasing(t *testing.T) {
	c := NewCompiler(nil)
	a, err := c.Compile("staples", 0, TestCase{
		ID:            "labels",
		SQL:           "SELECT [Order ID] AS `order id`\nFROM staples",
		ExpectedNames: []string{"order id"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Order ID"}, a.Labels)
	assert.Equal(t, "select [Order ID] as `Order ID` from Staples", a.SQL)
}

func TestCompile_CellCoercion(t *testing.T) {
	c := NewCompiler(nil)
	a, err := c.Compile("calcs", 0, TestCase{
		ID:            "cells",
		SQL:           "select *",
		ExpectedTypes: []string{"bool", "bool", "bool", "int", "float", "varchar", "date"},
		ExpectedResults: [][]any{
			{0, "0", 1, 42, 3, "abc", "2004-04-15"},
			{"NULL", "~", nil, nil, "NULL", "NULL", nil},
			{true, false, "yes", "7", "2.5", 12, "2004-04-15"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []Value{
		Bool(false), Bool(false), Bool(true), Long(42), Float(typemap.KindDouble, 3),
		Text(typemap.KindString, "abc"), Text(typemap.KindDate, "2004-04-15"),
	}, a.Rows[0])

	for i, v := range a.Rows[1] {
		assert.True(t, v.Null, "column %d", i)
		assert.Equal(t, a.Types[i], v.Kind, "null keeps column kind")
	}

	assert.Equal(t, []Value{
		Bool(true), Bool(false), Bool(true), Long(7), Float(typemap.KindDouble, 2.5),
		Text(typemap.KindString, "12"), Text(typemap.KindDate, "2004-04-15"),
	}, a.Rows[2])
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		tc    TestCase
		check func(t *testing.T, err error)
	}{
		{
			name: "missing id",
			tc:   TestCase{SQL: "select 1"},
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, "id", missing.Field)
				assert.Equal(t, 3, missing.Index)
			},
		},
		{
			name: "missing sql",
			tc:   TestCase{ID: "x"},
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, "sql", missing.Field)
				assert.Contains(t, err.Error(), "test case x")
			},
		},
		{
			name: "names and types disagree",
			tc:   TestCase{ID: "x", SQL: "s", ExpectedNames: []string{"a", "b"}, ExpectedTypes: []string{"int"}},
			check: func(t *testing.T, err error) {
				var shape *ShapeError
				require.ErrorAs(t, err, &shape)
				assert.Contains(t, shape.Detail, "2 expected names but 1 expected types")
			},
		},
		{
			name: "row shorter than types",
			tc:   TestCase{ID: "x", SQL: "s", ExpectedTypes: []string{"int", "int"}, ExpectedResults: [][]any{{1, 2}, {1}}},
			check: func(t *testing.T, err error) {
				var shape *ShapeError
				require.ErrorAs(t, err, &shape)
				assert.Contains(t, shape.Detail, "row 2 has 1 cells")
			},
		},
		{
			name: "row longer than names",
			tc:   TestCase{ID: "x", SQL: "s", ExpectedNames: []string{"a"}, ExpectedResults: [][]any{{1, 2}}},
			check: func(t *testing.T, err error) {
				var shape *ShapeError
				require.ErrorAs(t, err, &shape)
				assert.Contains(t, shape.Detail, "(names)")
			},
		},
		{
			name: "unknown test type",
			tc:   TestCase{ID: "x", SQL: "s", ExpectedTypes: []string{"blob"}},
			check: func(t *testing.T, err error) {
				var unknown *typemap.UnknownTagError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, "blob", unknown.Tag)
			},
		},
		{
			name: "uncoercible integer",
			tc:   TestCase{ID: "x", SQL: "s", ExpectedTypes: []string{"int"}, ExpectedResults: [][]any{{"abc"}}},
			check: func(t *testing.T, err error) {
				var cell *CellError
				require.ErrorAs(t, err, &cell)
				assert.Equal(t, typemap.KindLong, cell.Kind)
				assert.Contains(t, err.Error(), "row 1 column 1")
			},
		},
	}

	c := NewCompiler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile("calcs", 3, tt.tc)
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrExcluded))
			tt.check(t, err)
		})
	}
}

func TestCompile_PassThroughFields(t *testing.T) {
	n := 17
	ordered := false
	a, err := NewCompiler(nil).Compile("calcs", 0, TestCase{
		ID:          "counts",
		SQL:         "select key from calcs",
		RowCount:    &n,
		RowCountGTE: true,
		Ordered:     &ordered,
	})
	require.NoError(t, err)
	assert.Equal(t, 17, *a.RowCount)
	assert.True(t, a.RowCountAtLeast)
	assert.False(t, *a.Ordered)
	assert.Equal(t, -1, a.Width())
	assert.Nil(t, a.Rows)
}

func TestCompile_EmptyResultsPresent(t *testing.T) {
	a, err := NewCompiler(nil).Compile("calcs", 0, TestCase{
		ID:              "empty",
		SQL:             "select 1 where false",
		ExpectedResults: [][]any{},
	})
	require.NoError(t, err)
	assert.NotNil(t, a.Rows)
	assert.Empty(t, a.Rows)
}
