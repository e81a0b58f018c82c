// Package duckdb provides a DuckDB database adapter.
//
// This file registers the DuckDB adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/dialectgen/pkg/adapters/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/dialectgen/pkg/adapter"
)

func init() {
	adapter.Register(adapter.Registration{
		Name:          "duckdb",
		New:           func(logger *slog.Logger) adapter.Adapter { return New(logger) },
		Embedded:      true,
		DefaultSchema: "main",
	})
}
