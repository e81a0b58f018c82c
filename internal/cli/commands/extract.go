package commands

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dialectgen/internal/specdoc"
	"github.com/leapstack-labs/dialectgen/pkg/adapter"
	"github.com/leapstack-labs/dialectgen/pkg/adapters/duckdb"
)

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	var (
		outFile  string
		database string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a function specification from DuckDB",
		Long: `Read the scalar functions of a DuckDB database and write them as a
function-specification document.

Every overload becomes one invocation; DuckDB types outside the evaluation
vocabulary become EvalPolymorphic. The database is the DuckDB target from
dialectgen.yaml, the --database path, or an in-memory database. The document
goes to stdout unless --out is given.`,
		Example: `  # Built-in functions of an in-memory DuckDB
  dialectgen extract --out specs/duckdb_functions.yml

  # Functions of a database with extensions loaded through target params
  dialectgen extract --target analytics > specs/analytics.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			cfg := adapter.Config{Type: "duckdb"}
			if t := cc.Cfg.Target; t != nil && t.Type == "duckdb" {
				cfg = t.AdapterConfig()
			}
			if database != "" {
				cfg.Path = database
			}

			adp := duckdb.New(cc.Logger)
			if err := adp.Connect(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("failed to connect to duckdb: %w", err)
			}
			defer func() { _ = adp.Close() }()

			specs, err := adp.ExtractFunctions(cmd.Context())
			if err != nil {
				return err
			}

			overloaded := 0
			for _, s := range specs {
				if len(s.Invocations) > 1 {
					overloaded++
				}
			}
			cc.Logger.Info("functions extracted", "functions", len(specs), "overloaded", overloaded)

			var buf bytes.Buffer
			if err := specdoc.EncodeFunctions(&buf, specs); err != nil {
				return err
			}

			if outFile == "" {
				_, err := cc.Renderer.Writer().Write(buf.Bytes())
				return err
			}
			if err := writeArtifact(outFile, buf.Bytes()); err != nil {
				return err
			}
			cc.Renderer.Success("wrote " + strconv.Itoa(len(specs)) + " functions to " + relPath(outFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "Write the document to this file instead of stdout")
	cmd.Flags().StringVar(&database, "database", "", "DuckDB database file (default: target database or in-memory)")

	return cmd
}
