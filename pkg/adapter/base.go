package adapter

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, and Query implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// InsertDialect describes how a driver without a native CSV reader spells
// seed tables.
type InsertDialect struct {
	// Placeholder formats the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Types names the column types inferred from the CSV cells.
	Types TypeNames
}

// LoadCSVInserts loads a CSV file through plain DROP, CREATE TABLE and INSERT
// statements, replacing any existing table. The header row names the
// columns; their types are inferred from the data rows.
func (b *BaseSQLAdapter) LoadCSVInserts(ctx context.Context, tableName, filePath string, dialect InsertDialect) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	f, err := os.Open(filePath) //nolint:gosec // path comes from the seed directory listing
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("CSV file %s has no header row", filePath)
	}

	header, data := records[0], records[1:]
	types := InferColumnTypes(len(header), data)
	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		cols[i] = QuoteIdent(h) + " " + dialect.Types.DDL(types[i])
		marks[i] = dialect.Placeholder(i + 1)
	}

	table := QuoteIdent(tableName)
	if _, err := b.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	//nolint:gosec // identifiers are quoted
	if _, err := b.DB.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	//nolint:gosec // identifiers are quoted
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(marks, ", ")))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for n, rec := range data {
		args := make([]any, len(rec))
		for i, v := range rec {
			t := ColumnText
			if i < len(types) {
				t = types[i]
			}
			args[i] = t.Convert(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert row %d into %s: %w", n+1, tableName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit CSV load: %w", err)
	}
	if b.Logger != nil {
		b.Logger.Debug("loaded CSV", "table", tableName, "rows", len(data))
	}
	return nil
}

// QuoteIdent double-quotes a SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
