package duckdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/dialectgen/pkg/catalog"
	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// functionsQuery lists named scalar functions with their overloads. Symbolic
// operators are excluded. Array columns are rendered as VARCHAR so they scan
// into plain strings.
const functionsQuery = `
	SELECT
		function_name,
		COALESCE(list_transform(parameter_types, x -> COALESCE(x, ''))::VARCHAR, ''),
		COALESCE(return_type, ''),
		COALESCE(description, '')
	FROM duckdb_functions()
	WHERE function_type = 'scalar'
		AND (schema_name = 'main' OR schema_name IS NULL)
		AND regexp_matches(function_name, '^[A-Za-z_][A-Za-z0-9_]*$')
	ORDER BY function_name
`

// ExtractFunctions reads the scalar functions of the connected database as
// function specifications. Every overload becomes one invocation of the
// function; identical signatures are collapsed. DuckDB types outside the
// evaluation vocabulary map to EvalPolymorphic.
func (a *Adapter) ExtractFunctions(ctx context.Context) ([]catalog.FunctionSpec, error) {
	rows, err := a.Query(ctx, functionsQuery)
	if err != nil {
		return nil, fmt.Errorf("query functions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var specs []catalog.FunctionSpec
	index := make(map[string]int)
	seen := make(map[string]bool)

	for rows.Next() {
		var name, paramTypes, returnType, desc string
		if err := rows.Scan(&name, &paramTypes, &returnType, &desc); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		inv := catalog.Invocation{ReturnType: EvalTag(returnType)}
		for _, pt := range parseArrayString(paramTypes) {
			inv.Arguments = append(inv.Arguments, catalog.Arg{EvalType: EvalTag(pt)})
		}

		sig := name + "|" + signature(inv)
		if seen[sig] {
			continue
		}
		seen[sig] = true

		i, ok := index[name]
		if !ok {
			i = len(specs)
			index[name] = i
			specs = append(specs, catalog.FunctionSpec{ID: name, Description: desc})
		}
		specs[i].Invocations = append(specs[i].Invocations, inv)
		if specs[i].Description == "" {
			specs[i].Description = desc
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	a.Logger.Debug("extracted functions", "count", len(specs))
	return specs, nil
}

// EvalTag maps a DuckDB type name to an evaluation-type tag.
func EvalTag(duckType string) string {
	t := strings.ToUpper(strings.TrimSpace(duckType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	switch t {
	case "BIGINT", "HUGEINT", "UBIGINT", "UHUGEINT":
		return typemap.EvalInt64
	case "INTEGER", "SMALLINT", "TINYINT", "UINTEGER", "USMALLINT", "UTINYINT":
		return typemap.EvalInt32
	case "DOUBLE", "FLOAT":
		return typemap.EvalDouble
	case "DECIMAL":
		return typemap.EvalDecimal128
	case "VARCHAR":
		return typemap.EvalString
	case "DATE":
		return typemap.EvalDate
	case "TIMESTAMP", "TIMESTAMP WITH TIME ZONE", "TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS":
		return typemap.EvalDatetime
	default:
		return typemap.EvalPolymorphic
	}
}

func signature(inv catalog.Invocation) string {
	parts := make([]string, 0, len(inv.Arguments)+1)
	for _, arg := range inv.Arguments {
		parts = append(parts, arg.EvalType)
	}
	parts = append(parts, inv.ReturnType)
	return strings.Join(parts, ",")
}

// parseArrayString parses DuckDB array string format "[a, b, c]" into a slice.
func parseArrayString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return nil
	}

	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	if s == "" {
		return nil
	}

	// Nested types such as DECIMAL(18, 3) or STRUCT(a INTEGER, b VARCHAR)
	// contain commas, so split only at depth zero.
	var result []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				result = append(result, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	result = append(result, strings.TrimSpace(s[start:]))
	return result
}
