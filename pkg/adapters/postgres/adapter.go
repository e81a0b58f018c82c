// Package postgres provides a PostgreSQL database adapter.
package postgres

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/leapstack-labs/dialectgen/pkg/adapter"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	return "postgres"
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	if cfg.Schema != "" {
		if _, err := db.ExecContext(ctx, "SET search_path TO "+sanitizeIdentifier(cfg.Schema)); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to set search_path: %w", err)
		}
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string in key=value
// form. Of the options sslmode and application_name are passed through. The
// auth database names the database to connect to when no database is
// configured; otherwise it is ignored, since a PostgreSQL login is checked
// against the whole cluster.
func buildPostgresDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dbname := cfg.Database
	if dbname == "" {
		dbname = cfg.Options[adapter.OptionAuthDatabase]
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		quoteDSNValue(host), port, quoteDSNValue(dbname), quoteDSNValue(sslmode))

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", quoteDSNValue(cfg.Username))
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", quoteDSNValue(cfg.Password))
	}
	if app, ok := cfg.Options["application_name"]; ok {
		dsn += fmt.Sprintf(" application_name=%s", quoteDSNValue(app))
	}

	return dsn
}

// quoteDSNValue quotes an empty value or one containing spaces or quotes.
func quoteDSNValue(v string) string {
	if v == "" {
		return "''"
	}
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// LoadCSV loads data from a CSV file into a table using COPY FROM STDIN,
// replacing any existing table. Column types are inferred from the cells.
// The table name is folded to lower case so unquoted references in test SQL
// resolve to it.
func (a *Adapter) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	file, err := os.Open(absPath) //nolint:gosec // seed paths come from configuration
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("failed to read CSV header: %s is empty", absPath)
	}

	headers := records[0]
	types := adapter.InferColumnTypes(len(headers), records[1:])

	table := sanitizeIdentifier(tableName)
	if err := a.createTable(ctx, table, headers, types); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to reset file: %w", err)
	}

	if err := a.copyFromCSV(ctx, table, file); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}

	a.Logger.Debug("loaded seed", slog.String("table", table), slog.String("path", absPath))
	return nil
}

var columnTypes = adapter.TypeNames{
	adapter.ColumnText:      "TEXT",
	adapter.ColumnInteger:   "BIGINT",
	adapter.ColumnFloat:     "DOUBLE PRECISION",
	adapter.ColumnBoolean:   "BOOLEAN",
	adapter.ColumnDate:      "DATE",
	adapter.ColumnTimestamp: "TIMESTAMP",
}

// createTable creates or replaces a table with the given column types.
func (a *Adapter) createTable(ctx context.Context, table string, columns []string, types []adapter.ColumnType) error {
	if _, err := a.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return err
	}

	colDefs := make([]string, 0, len(columns))
	for i, col := range columns {
		t := adapter.ColumnText
		if i < len(types) {
			t = types[i]
		}
		colDefs = append(colDefs, sanitizeIdentifier(col)+" "+columnTypes.DDL(t))
	}

	_, err := a.DB.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(colDefs, ", ")))
	return err
}

// copyFromCSV streams the file through the pgx connection's COPY protocol.
func (a *Adapter) copyFromCSV(ctx context.Context, table string, file *os.File) error {
	conn, err := a.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return conn.Raw(func(driverConn any) error {
		pgxConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		copySQL := fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, HEADER true)", table)
		_, err := pgxConn.Conn().PgConn().CopyFrom(ctx, file, copySQL)
		return err
	})
}

// sanitizeIdentifier lower-cases a name and quotes it when it is not a plain
// identifier or collides with a reserved word.
func sanitizeIdentifier(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = strings.ReplaceAll(safe, "-", "_")
	if !isPlainIdentifier(safe) || isReservedWord(safe) {
		return adapter.QuoteIdent(safe)
	}
	return safe
}

func isPlainIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

var reservedWords = map[string]bool{
	"user": true, "order": true, "group": true, "table": true,
	"select": true, "from": true, "where": true, "index": true,
}

// isReservedWord checks if a name is a PostgreSQL reserved word.
func isReservedWord(name string) bool {
	return reservedWords[strings.ToLower(name)]
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
