// Package duckdb provides a DuckDB database adapter.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marcboeker/go-duckdb"

	"github.com/leapstack-labs/dialectgen/pkg/adapter"
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Name returns the registry name of the adapter.
func (a *Adapter) Name() string {
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" (or an empty path) for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return fmt.Errorf("invalid duckdb params: %w", err)
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.params = params

	if err := a.applyParams(ctx); err != nil {
		_ = db.Close()
		a.DB = nil
		return err
	}

	a.Logger.Debug("connected to duckdb", slog.String("path", path), slog.Int("extensions", len(params.Extensions)))
	return nil
}

// applyParams installs extensions, applies settings in key order, then runs
// the init statements.
func (a *Adapter) applyParams(ctx context.Context) error {
	for _, ext := range a.params.Extensions {
		if err := a.Exec(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	keys := make([]string, 0, len(a.params.Settings))
	for k := range a.params.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.ReplaceAll(a.params.Settings[k], "'", "''")
		if err := a.Exec(ctx, fmt.Sprintf("SET %s = '%s'", k, v)); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}

	for i, stmt := range a.params.Init {
		if err := a.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init statement %d: %w", i+1, err)
		}
	}
	return nil
}

// LoadCSV loads data from a CSV file into a table.
// DuckDB will automatically infer the schema from the CSV file.
func (a *Adapter) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		adapter.QuoteIdent(tableName),
		strings.ReplaceAll(absPath, "'", "''"),
	)

	if err := a.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	return nil
}

// NormalizeValue converts DuckDB-specific cell types into plain values.
// Decimals become float64 and intervals become their text form.
func (a *Adapter) NormalizeValue(v any) any {
	switch x := v.(type) {
	case duckdb.Decimal:
		return decimalFloat(x)
	case *duckdb.Decimal:
		if x == nil {
			return nil
		}
		return decimalFloat(*x)
	case duckdb.Interval:
		return fmt.Sprintf("%d months %d days %d microseconds", x.Months, x.Days, x.Micros)
	default:
		return v
	}
}

func decimalFloat(d duckdb.Decimal) float64 {
	if d.Value == nil {
		return 0
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Scale)), nil)
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(d.Value), new(big.Float).SetInt(scale)).Float64()
	return f
}

// Ensure Adapter implements the adapter interfaces.
var (
	_ adapter.Adapter         = (*Adapter)(nil)
	_ adapter.ValueNormalizer = (*Adapter)(nil)
)
