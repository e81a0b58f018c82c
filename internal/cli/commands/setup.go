package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dialectgen/internal/cli/config"
	"github.com/leapstack-labs/dialectgen/internal/cli/output"
	"github.com/leapstack-labs/dialectgen/internal/specdoc"
	"github.com/leapstack-labs/dialectgen/pkg/catalog"
	"github.com/leapstack-labs/dialectgen/pkg/normalize"
	"github.com/leapstack-labs/dialectgen/pkg/oracle"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// getConfig returns the configuration loaded by the root command, loading
// defaults when a command runs on its own.
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}

// inputPaths returns args when given, otherwise the configured paths.
func inputPaths(args, configured []string) []string {
	if len(args) > 0 {
		return args
	}
	return configured
}

// buildCatalog loads the function-specification files in order and builds
// one catalog from them.
func buildCatalog(paths []string, logger *slog.Logger) (*catalog.Catalog, []string, error) {
	if err := config.ValidateInputs("functions", paths); err != nil {
		return nil, nil, err
	}

	sources := make([]catalog.Source, 0, len(paths))
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		src, err := specdoc.LoadFunctions(p)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("loaded function spec", "path", p, "functions", len(src.Functions))
		sources = append(sources, src)
		names = append(names, src.Name)
	}

	cat, err := catalog.NewBuilder(catalog.WithLogger(logger)).Build(sources...)
	if err != nil {
		return nil, nil, err
	}
	return cat, names, nil
}

// compiledSuite is a suite file with its compiled assertions.
type compiledSuite struct {
	Path       string
	Suite      oracle.Suite
	Assertions []*oracle.Assertion
	Excluded   []oracle.Exclusion
}

// compileSuites loads and compiles the test-suite files in order.
func compileSuites(cfg *config.Config, paths []string, logger *slog.Logger) ([]compiledSuite, error) {
	if err := config.ValidateInputs("suites", paths); err != nil {
		return nil, err
	}

	norm, err := normalize.New(cfg.NormalizeRules())
	if err != nil {
		return nil, err
	}
	compiler := oracle.NewCompiler(norm)

	out := make([]compiledSuite, 0, len(paths))
	for _, p := range paths {
		suite, err := specdoc.LoadSuite(p)
		if err != nil {
			return nil, err
		}
		assertions, excluded, err := compiler.CompileSuite(suite)
		if err != nil {
			return nil, err
		}
		for _, ex := range excluded {
			logger.Debug("test case excluded", "suite", suite.Name, "id", ex.ID, "reason", ex.Reason)
		}
		out = append(out, compiledSuite{Path: p, Suite: suite, Assertions: assertions, Excluded: excluded})
	}
	return out, nil
}

// writeArtifact writes data to path, creating parent directories.
func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // generated sources are meant to be readable
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// relPath shortens path for display relative to the working directory.
func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(rel) && len(rel) < len(path) {
		return rel
	}
	return path
}
