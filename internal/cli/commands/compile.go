package commands

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dialectgen/internal/cli/output"
	"github.com/leapstack-labs/dialectgen/internal/codegen"
	"github.com/leapstack-labs/dialectgen/pkg/oracle"
)

// SuiteFile is the name of the generated compliance-test file.
const SuiteFile = "tdvt_gen_test.go"

type compileOptions struct {
	Stamp bool
	Watch bool
}

type suiteSummary struct {
	Suite    string             `json:"suite"`
	Path     string             `json:"path"`
	Tests    int                `json:"tests"`
	Excluded []oracle.Exclusion `json:"excluded,omitempty"`
}

type compileResult struct {
	File   string         `json:"file"`
	Policy oracle.Policy  `json:"policy"`
	Suites []suiteSummary `json:"suites"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile [suite files...]",
		Short: "Generate the compliance-test suite",
		Long: `Compile test-suite documents into a go test file.

Each test case becomes one test function that runs its normalized SQL against
the target named by the ADL_TEST_* environment variables and checks column
labels, column types and rows. Test cases marked skip, or expecting an error,
are left out. The file is written to <out_dir>/<test_package>/tdvt_gen_test.go.`,
		Example: `  # Compile the configured suites
  dialectgen compile

  # Compile two suites with unordered comparison
  dialectgen compile tests/calcs.yml tests/logical.yml --comparison unordered

  # Recompile whenever a suite changes
  dialectgen compile --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			paths := inputPaths(args, cc.Cfg.Suites)
			generate := func() error { return runCompile(cc, paths, opts) }

			if err := generate(); err != nil {
				return err
			}
			if !opts.Watch {
				return nil
			}
			cc.Renderer.Muted("Watching suite files for changes (Ctrl+C to stop)")
			return watchInputs(cmd.Context(), paths, cc.Logger, generate)
		},
	}

	cmd.Flags().StringSlice("suites", nil, "Test-suite files")
	cmd.Flags().String("out-dir", "", "Output directory")
	cmd.Flags().String("test-package", "", "Package name of the generated test file")
	cmd.Flags().String("comparison", "", "Row comparison policy (ordered|unordered)")
	cmd.Flags().Float64("tolerance", 0, "Absolute tolerance for numeric cells")
	cmd.Flags().BoolVar(&opts.Stamp, "stamp", false, "Record the generation time in the generated file")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Regenerate when inputs change")

	_ = cmd.RegisterFlagCompletionFunc("comparison", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(oracle.PolicyOrdered), string(oracle.PolicyUnordered)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runCompile(cc *CommandContext, paths []string, opts *compileOptions) error {
	policy, err := oracle.ParsePolicy(cc.Cfg.Comparison)
	if err != nil {
		return err
	}

	suites, err := compileSuites(cc.Cfg, paths, cc.Logger)
	if err != nil {
		return err
	}

	compiled := make([]codegen.CompiledSuite, 0, len(suites))
	res := compileResult{Policy: policy}
	sources := make([]string, 0, len(suites))
	for _, s := range suites {
		compiled = append(compiled, codegen.CompiledSuite{Name: s.Suite.Name, Assertions: s.Assertions})
		sources = append(sources, filepath.Base(s.Path))
		res.Suites = append(res.Suites, suiteSummary{
			Suite:    s.Suite.Name,
			Path:     s.Path,
			Tests:    len(s.Assertions),
			Excluded: s.Excluded,
		})
	}

	genOpts := codegen.SuiteOptions{
		Options:   codegen.Options{Package: cc.Cfg.TestPackage, Sources: sources},
		Policy:    policy,
		Tolerance: cc.Cfg.Tolerance,
	}
	if opts.Stamp {
		genOpts.Stamp = time.Now().UTC().Format(time.RFC3339)
	}
	src, err := codegen.SuiteSource(compiled, genOpts)
	if err != nil {
		return err
	}

	res.File = filepath.Join(cc.Cfg.OutDir, cc.Cfg.TestPackage, SuiteFile)
	if err := writeArtifact(res.File, src); err != nil {
		return err
	}
	cc.Logger.Info("suite compiled", "suites", len(suites), "file", res.File)
	return renderCompileResult(cc.Renderer, res, cc.Cfg.Verbose)
}

func renderCompileResult(r *output.Renderer, res compileResult, verbose bool) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}

	r.Header(2, "Compliance suite")
	rows := make([][]string, 0, len(res.Suites))
	total := 0
	for _, s := range res.Suites {
		total += s.Tests
		rows = append(rows, []string{s.Suite, strconv.Itoa(s.Tests), strconv.Itoa(len(s.Excluded))})
	}
	r.Table([]string{"Suite", "Tests", "Excluded"}, rows)

	if verbose {
		for _, s := range res.Suites {
			for _, ex := range s.Excluded {
				r.StatusLine(s.Suite+"/"+ex.ID, "excluded", ex.Reason)
			}
		}
	}

	r.KeyValue("Comparison", string(res.Policy))
	r.Success("wrote " + strconv.Itoa(total) + " tests to " + relPath(res.File))
	return nil
}
