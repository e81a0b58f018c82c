package duckdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectgen/pkg/adapter"
	"github.com/leapstack-labs/dialectgen/pkg/catalog"
	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

func TestEvalTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BIGINT", typemap.EvalInt64},
		{"HUGEINT", typemap.EvalInt64},
		{"INTEGER", typemap.EvalInt32},
		{"smallint", typemap.EvalInt32},
		{"DOUBLE", typemap.EvalDouble},
		{"FLOAT", typemap.EvalDouble},
		{"DECIMAL(18,3)", typemap.EvalDecimal128},
		{"VARCHAR", typemap.EvalString},
		{"DATE", typemap.EvalDate},
		{"TIMESTAMP", typemap.EvalDatetime},
		{"TIMESTAMP WITH TIME ZONE", typemap.EvalDatetime},
		{"ANY", typemap.EvalPolymorphic},
		{"INTEGER[]", typemap.EvalPolymorphic},
		{"", typemap.EvalPolymorphic},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EvalTag(tt.in))
			_, err := typemap.NewEvalMapper().Map(EvalTag(tt.in))
			assert.NoError(t, err, "every produced tag is in the vocabulary")
		})
	}
}

func TestParseArrayString(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"[]", nil},
		{"[VARCHAR]", []string{"VARCHAR"}},
		{"[DOUBLE, INTEGER]", []string{"DOUBLE", "INTEGER"}},
		{"[DECIMAL(18, 3), VARCHAR]", []string{"DECIMAL(18, 3)", "VARCHAR"}},
		{"[STRUCT(a INTEGER, b VARCHAR), INTEGER[]]", []string{"STRUCT(a INTEGER, b VARCHAR)", "INTEGER[]"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseArrayString(tt.in))
		})
	}
}

func TestExtractFunctions(t *testing.T) {
	adp := connect(t, adapter.Config{})

	specs, err := adp.ExtractFunctions(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, specs)

	byName := make(map[string]catalog.FunctionSpec, len(specs))
	for i, s := range specs {
		_, dup := byName[s.ID]
		require.False(t, dup, "function %s listed twice", s.ID)
		byName[s.ID] = s
		require.NotEmpty(t, s.Invocations, "function %s has no invocations", s.ID)
		if i > 0 {
			assert.LessOrEqual(t, specs[i-1].ID, s.ID, "functions are ordered by name")
		}
	}

	abs, ok := byName["abs"]
	require.True(t, ok, "abs is a scalar function")
	assert.Greater(t, len(abs.Invocations), 1, "abs has one overload per numeric type")
	for _, inv := range abs.Invocations {
		assert.Len(t, inv.Arguments, 1)
	}

	_, ok = byName["+"]
	assert.False(t, ok, "operators are not extracted")

	cat, err := catalog.NewBuilder().Build(catalog.Source{Name: "duckdb", Functions: specs})
	require.NoError(t, err, "extracted specifications build into a catalog")
	assert.Equal(t, len(specs), cat.Len())
}
