package commands

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dialectgen/internal/cli/output"
	"github.com/leapstack-labs/dialectgen/internal/codegen"
)

// Generated catalog file names.
const (
	CatalogFile     = "functions_gen.go"
	CatalogJSONFile = "functions.json"
)

// catalogOptions holds flags for the catalog command.
type catalogOptions struct {
	JSON  bool
	Stamp bool
	Watch bool
}

// catalogResult summarizes one catalog generation.
type catalogResult struct {
	Sources      []string `json:"sources"`
	Files        []string `json:"files"`
	Functions    int      `json:"functions"`
	Numeric      int      `json:"numeric"`
	String       int      `json:"string"`
	Date         int      `json:"date"`
	System       int      `json:"system"`
	Unclassified []string `json:"unclassified,omitempty"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand() *cobra.Command {
	opts := &catalogOptions{}

	cmd := &cobra.Command{
		Use:   "catalog [spec files...]",
		Short: "Generate the function catalog",
		Long: `Generate the function catalog from function-specification documents.

Specification files are merged in the order given (or the order of
"functions" in dialectgen.yaml). Each function is cataloged from its first
invocation. The catalog is written as Go source to
<out_dir>/<package>/functions_gen.go, and with --json also as functions.json.`,
		Example: `  # Generate from the configured specification files
  dialectgen catalog

  # Merge scalar and aggregate specs, also writing JSON
  dialectgen catalog specs/scalar_functions.yml specs/aggregate_functions.yml --json

  # Regenerate whenever a specification file changes
  dialectgen catalog --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			paths := inputPaths(args, cc.Cfg.Functions)
			generate := func() error { return runCatalog(cc, paths, opts) }

			if err := generate(); err != nil {
				return err
			}
			if !opts.Watch {
				return nil
			}
			cc.Renderer.Muted("Watching specification files for changes (Ctrl+C to stop)")
			return watchInputs(cmd.Context(), paths, cc.Logger, generate)
		},
	}

	cmd.Flags().StringSlice("functions", nil, "Function-specification files, in merge order")
	cmd.Flags().String("out-dir", "", "Output directory")
	cmd.Flags().String("package", "", "Package name of the generated file")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Also write functions.json")
	cmd.Flags().BoolVar(&opts.Stamp, "stamp", false, "Record the generation time in the generated file")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Regenerate when inputs change")

	return cmd
}

func runCatalog(cc *CommandContext, paths []string, opts *catalogOptions) error {
	cat, sources, err := buildCatalog(paths, cc.Logger)
	if err != nil {
		return err
	}

	genOpts := codegen.Options{Package: cc.Cfg.Package, Sources: sources}
	if opts.Stamp {
		genOpts.Stamp = time.Now().UTC().Format(time.RFC3339)
	}
	src, err := codegen.CatalogSource(cat, genOpts)
	if err != nil {
		return err
	}

	dir := filepath.Join(cc.Cfg.OutDir, cc.Cfg.Package)
	goFile := filepath.Join(dir, CatalogFile)
	if err := writeArtifact(goFile, src); err != nil {
		return err
	}
	files := []string{goFile}

	if opts.JSON {
		data, err := codegen.CatalogJSON(cat)
		if err != nil {
			return err
		}
		jsonFile := filepath.Join(dir, CatalogJSONFile)
		if err := writeArtifact(jsonFile, data); err != nil {
			return err
		}
		files = append(files, jsonFile)
	}

	cats := cat.Categories()
	res := catalogResult{
		Sources:      sources,
		Files:        files,
		Functions:    cat.Len(),
		Numeric:      len(cats.Numeric),
		String:       len(cats.String),
		Date:         len(cats.Date),
		System:       len(cats.System),
		Unclassified: cats.Unclassified,
	}
	cc.Logger.Info("catalog generated", "functions", res.Functions, "file", goFile)
	return renderCatalogResult(cc.Renderer, res)
}

func renderCatalogResult(r *output.Renderer, res catalogResult) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}

	r.Header(2, "Function catalog")
	r.KeyValue("Sources", strings.Join(res.Sources, ", "))
	r.KeyValue("Functions", strconv.Itoa(res.Functions))
	r.KeyValue("Categories", fmt.Sprintf("numeric %d, string %d, date %d, system %d",
		res.Numeric, res.String, res.Date, res.System))
	if len(res.Unclassified) > 0 {
		r.Warning("unclassified argument types in: " + strings.Join(res.Unclassified, ", "))
	}
	for _, f := range res.Files {
		r.Success("wrote " + relPath(f))
	}
	return nil
}
