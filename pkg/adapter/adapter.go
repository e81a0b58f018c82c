// Package adapter provides the database adapter contract used by the
// compliance-test oracle and the function extractor.
//
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves by name from init().
package adapter

import (
	"context"
	"database/sql"
)

// Config holds configuration for connecting to a database.
type Config struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
}

// OptionAuthDatabase is the Config.Options key holding the database the
// credentials are checked against.
const OptionAuthDatabase = "authSource"

// Rows wraps sql.Rows to provide a consistent interface.
type Rows struct {
	*sql.Rows
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Name returns the registry name of the adapter ("duckdb", "postgres", ...).
	Name() string

	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows (e.g., INSERT, UPDATE, CREATE).
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// LoadCSV loads data from a CSV file into a table.
	// If the table doesn't exist, it will be created with inferred schema.
	LoadCSV(ctx context.Context, tableName string, filePath string) error
}

// ValueNormalizer is implemented by adapters whose driver scans cells into
// driver-specific types. NormalizeValue converts such a cell into a plain Go
// value (int64, float64, string, bool, time.Time, []byte or nil).
type ValueNormalizer interface {
	NormalizeValue(v any) any
}
