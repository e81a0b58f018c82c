package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dialectgen/internal/cli/config"
	"github.com/leapstack-labs/dialectgen/pkg/normalize"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "project", "normalize", "target"
}

// getConfigSchema returns the configuration schema, following the koanf
// tags of config.Config.
func getConfigSchema() []ConfigField {
	rules := normalize.DefaultRules()
	return []ConfigField{
		{Name: "functions", Type: "[]string", Description: "Function-specification files, in merge order", Category: "project"},
		{Name: "suites", Type: "[]string", Description: "Test-suite files", Category: "project"},
		{Name: "out_dir", Type: "string", Default: config.DefaultOutDir, Description: "Directory generated packages are written under", Category: "project"},
		{Name: "package", Type: "string", Default: config.DefaultPackage, Description: "Package name of the generated catalog", Category: "project"},
		{Name: "test_package", Type: "string", Default: config.DefaultTestPackage, Description: "Package name of the generated test file", Category: "project"},
		{Name: "comparison", Type: "string", Default: config.DefaultComparison, Description: "Row comparison policy: ordered or unordered", Category: "project"},
		{Name: "tolerance", Type: "float", Default: strconv.FormatFloat(config.DefaultTolerance, 'g', -1, 64), Description: "Absolute tolerance for numeric cells", Category: "project"},
		{Name: "parallel", Type: "int", Default: strconv.Itoa(config.DefaultParallel), Description: "Suites verified concurrently", Category: "project"},
		{Name: "seeds", Type: "string", Description: "Directory of CSV files loaded before verify", Category: "project"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: auto, text, markdown or json", Category: "project"},

		{Name: "tables", Type: "[]string", Default: strings.Join(rules.Tables, ", "), Description: "Table names restored to their canonical case", Category: "normalize"},
		{Name: "phrases", Type: "[]string", Default: strconv.Itoa(len(rules.Phrases)) + " Staples columns", Description: "Column phrases restored to their canonical case", Category: "normalize"},
		{Name: "bool_min", Type: "int", Default: strconv.Itoa(rules.BoolMin), Description: "Lowest N of the bool<N>_ columns that lose their trailing underscore", Category: "normalize"},
		{Name: "bool_max", Type: "int", Default: strconv.Itoa(rules.BoolMax), Description: "Highest N of the bool<N>_ columns that lose their trailing underscore", Category: "normalize"},

		{Name: "type", Type: "string", Default: config.DefaultTargetType, Description: "Database type: duckdb, postgres or sqlite", Category: "target"},
		{Name: "database", Type: "string", Description: "File path (duckdb, sqlite) or database name", Category: "target"},
		{Name: "host", Type: "string", Description: "Database host", Category: "target"},
		{Name: "port", Type: "int", Default: "5432 for postgres", Description: "Database port", Category: "target"},
		{Name: "user", Type: "string", Description: "Database username", Category: "target"},
		{Name: "password", Type: "string", Description: "Database password", Category: "target"},
		{Name: "auth_database", Type: "string", Description: "Database the credentials are checked against; postgres connects to it when database is empty", Category: "target"},
		{Name: "schema", Type: "string", Default: "main, public for postgres", Description: "Default schema", Category: "target"},
		{Name: "options", Type: "map[string]string", Description: "Additional driver-specific options", Category: "target"},
		{Name: "params", Type: "map[string]any", Description: "Adapter-specific settings (DuckDB extensions, settings)", Category: "target"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "dialectgen configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("dialectgen reads `dialectgen.yaml` from the working directory or the nearest parent directory. Relative paths in the file resolve against the directory holding it.")

	fields := getConfigSchema()
	sections := []struct {
		category string
		title    string
		intro    string
	}{
		{"project", "Project Settings", "Top-level keys:"},
		{"normalize", "Normalization", "The `normalize` key overrides parts of the SQL rewriting applied to test cases. Omitted keys keep the defaults."},
		{"target", "Target", "The `target` key names the database `verify` runs against. Entries under `targets` are merged over it when selected with `--target`."},
	}
	for _, sec := range sections {
		w.Header(2, sec.title)
		w.Paragraph(sec.intro)

		var rows [][]string
		for _, f := range fields {
			if f.Category != sec.category {
				continue
			}
			defVal := "-"
			if f.Default != "" {
				defVal = InlineCode(f.Default)
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
		}
		w.Table([]string{"Field", "Type", "Default", "Description"}, rows)
	}

	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# dialectgen.yaml

functions:
  - specs/scalar_functions.yml
  - specs/aggregate_functions.yml
suites:
  - tests/calcs.yml
  - tests/logical.yml
out_dir: generated
comparison: ordered
tolerance: 0.005
seeds: testdata/seeds

target:
  type: duckdb
  database: ":memory:"

targets:
  ci:
    type: postgres
    host: localhost
    user: dialectgen
    password: ${POSTGRES_PASSWORD}
    database: tdvt`)

	w.Header(2, "Environment Variables")
	w.Paragraph("Use `${VAR_NAME}` syntax to reference environment variables in target settings:")
	w.CodeBlock("yaml", `target:
  type: postgres
  password: ${POSTGRES_PASSWORD}`)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
