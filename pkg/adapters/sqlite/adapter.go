// Package sqlite provides a SQLite database adapter backed by the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	"github.com/leapstack-labs/dialectgen/pkg/adapter"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
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
	return "sqlite"
}

// Connect opens the database file at cfg.Path, or a private in-memory
// database when the path is empty or ":memory:". Options become _pragma
// parameters of the DSN, applied in key order.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildDSN(cfg)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.Logger.Debug("connected to sqlite", slog.String("dsn", dsn))
	return nil
}

func buildDSN(cfg adapter.Config) string {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if len(cfg.Options) == 0 {
		return path
	}

	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		q.Add("_pragma", fmt.Sprintf("%s(%s)", k, cfg.Options[k]))
	}
	return "file:" + path + "?" + q.Encode()
}

// The driver reports declared column types, so these names are what a typed
// test sees.
var insertDialect = adapter.InsertDialect{
	Placeholder: func(int) string { return "?" },
	Types: adapter.TypeNames{
		adapter.ColumnText:      "TEXT",
		adapter.ColumnInteger:   "INTEGER",
		adapter.ColumnFloat:     "REAL",
		adapter.ColumnBoolean:   "BOOLEAN",
		adapter.ColumnDate:      "DATE",
		adapter.ColumnTimestamp: "TIMESTAMP",
	},
}

// LoadCSV loads a CSV file into a table whose column types are inferred from
// the cells, replacing any existing table.
func (a *Adapter) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	return a.LoadCSVInserts(ctx, tableName, filePath, insertDialect)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
