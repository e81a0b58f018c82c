package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/dialectgen/pkg/adapter"
)

// LoadSeeds loads every .csv file in dir into a table named after the file
// (Calcs.csv becomes table Calcs), in directory order. A missing directory
// loads nothing. It returns the table names loaded.
func LoadSeeds(ctx context.Context, a adapter.Adapter, dir string, logger *slog.Logger) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no seeds directory", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read seeds directory: %w", err)
	}

	var tables []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}

		table := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		path := filepath.Join(dir, entry.Name())
		logger.Debug("loading seed file", "table", table, "path", path)

		if err := a.LoadCSV(ctx, table, path); err != nil {
			return tables, fmt.Errorf("failed to load seed %s: %w", entry.Name(), err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}
