package duckdb

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectgen/internal/testutil"
	"github.com/leapstack-labs/dialectgen/pkg/adapter"
	"github.com/leapstack-labs/dialectgen/pkg/oracle"
)

func connect(t *testing.T, cfg adapter.Config) *Adapter {
	t.Helper()
	adp := New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(context.Background(), cfg))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "empty path",
			setupPath: func(_ *testing.T) string {
				return ""
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "tdvt.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := tt.setupPath(t)
			adp := connect(t, adapter.Config{Path: dbPath})
			assert.True(t, adp.IsConnected())
			assert.Equal(t, "duckdb", adp.Name())

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.Exec(ctx, "SELECT 1")
			},
		},
		{
			name: "query without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Query(ctx, "SELECT 1")
				return err
			},
		},
		{
			name: "load csv without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.LoadCSV(ctx, "calcs", "calcs.csv")
			},
		},
		{
			name: "extract without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.ExtractFunctions(ctx)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation(context.Background(), New(nil))
			assert.Error(t, err, "expected error when operating without connection")
		})
	}
}

func TestAdapter_Close(t *testing.T) {
	tests := []struct {
		name    string
		connect bool
	}{
		{"close without connect", false},
		{"close after connect", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adp := New(nil)
			if tt.connect {
				require.NoError(t, adp.Connect(context.Background(), adapter.Config{Path: ":memory:"}))
			}
			assert.NoError(t, adp.Close())
		})
	}
}

func TestConnect_WithParams(t *testing.T) {
	adp := connect(t, adapter.Config{
		Path: ":memory:",
		Params: map[string]any{
			"extensions": []any{"json"},
			"settings":   map[string]any{"threads": "2"},
			"init":       []any{"CREATE TABLE calcs (key VARCHAR, num0 DOUBLE)"},
		},
	})
	ctx := context.Background()

	var threads string
	require.NoError(t, adp.DB.QueryRowContext(ctx, "SELECT current_setting('threads')").Scan(&threads))
	assert.Equal(t, "2", threads)

	var ext string
	require.NoError(t, adp.DB.QueryRowContext(ctx,
		"SELECT extension_name FROM duckdb_extensions() WHERE loaded AND extension_name = 'json'").Scan(&ext))
	assert.Equal(t, "json", ext)

	require.NoError(t, adp.Exec(ctx, "INSERT INTO calcs VALUES ('key00', 12.3)"))
}

func TestConnect_InvalidParams(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), adapter.Config{
		Path:   ":memory:",
		Params: map[string]any{"secrets": []any{}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duckdb params")
	assert.False(t, adp.IsConnected())
}

func TestConnect_FailingInitClosesConnection(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), adapter.Config{
		Params: map[string]any{"init": []any{"SELECT * FROM no_such_table"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init statement 1")
	assert.False(t, adp.IsConnected())
}

func TestAdapter_LoadCSV(t *testing.T) {
	adp := connect(t, adapter.Config{Path: ":memory:"})
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "calcs.csv")
	csvContent := `key,num0,str0
key00,12.3,FURNITURE
key01,-12.3,FURNITURE
key02,15.7,OFFICE SUPPLIES`
	require.NoError(t, os.WriteFile(csvPath, []byte(csvContent), 0o600))

	require.NoError(t, adp.LoadCSV(ctx, "Calcs", csvPath))
	// Loading again replaces the table.
	require.NoError(t, adp.LoadCSV(ctx, "Calcs", csvPath))

	var count int
	require.NoError(t, adp.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM "Calcs"`).Scan(&count))
	assert.Equal(t, 3, count)

	var num0 float64
	require.NoError(t, adp.DB.QueryRowContext(ctx, `SELECT num0 FROM "Calcs" WHERE key = 'key01'`).Scan(&num0))
	assert.InDelta(t, -12.3, num0, 1e-9)
}

func TestAdapter_NormalizeValue(t *testing.T) {
	adp := New(nil)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"decimal", duckdb.Decimal{Width: 18, Scale: 2, Value: big.NewInt(1085)}, 10.85},
		{"negative decimal", duckdb.Decimal{Width: 18, Scale: 3, Value: big.NewInt(-12300)}, -12.3},
		{"decimal pointer", &duckdb.Decimal{Width: 4, Scale: 0, Value: big.NewInt(7)}, 7.0},
		{"nil decimal pointer", (*duckdb.Decimal)(nil), nil},
		{"interval", duckdb.Interval{Months: 1, Days: 2, Micros: 3}, "1 months 2 days 3 microseconds"},
		{"passthrough", "FURNITURE", "FURNITURE"},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adp.NormalizeValue(tt.in)
			if f, ok := tt.want.(float64); ok {
				require.IsType(t, 0.0, got)
				assert.InDelta(t, f, got.(float64), 1e-12)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdapter_QueryDecimalThroughOracle(t *testing.T) {
	adp := connect(t, adapter.Config{})

	rows, err := adp.Query(context.Background(), "SELECT CAST(10.85 AS DECIMAL(9, 2)) AS d")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var raw any
	require.NoError(t, rows.Scan(&raw))
	assert.InDelta(t, 10.85, adp.NormalizeValue(raw), 1e-12)
}

func TestAdapter_DecimalLiteralSatisfiesFloat(t *testing.T) {
	adp := connect(t, adapter.Config{})

	a, err := oracle.NewCompiler(nil).Compile("scenario", 0, oracle.TestCase{
		ID:              "fractional literal",
		SQL:             "select 1.0 as x",
		ExpectedNames:   []string{"x"},
		ExpectedTypes:   []string{"float"},
		ExpectedResults: [][]any{{1.0}},
	})
	require.NoError(t, err)

	runner := oracle.NewRunner(adp)
	rs, err := runner.Query(context.Background(), a.SQL)
	require.NoError(t, err)
	require.Len(t, rs.Columns, 1)
	assert.Contains(t, rs.Columns[0].TypeName, "DECIMAL")

	res := runner.Check(context.Background(), a)
	assert.Empty(t, res.Error)
	assert.True(t, res.Passed, "mismatches: %v", res.Mismatches)
}
