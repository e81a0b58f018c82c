package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dialectgen/internal/cli/output"
	"github.com/leapstack-labs/dialectgen/pkg/adapter"
	"github.com/leapstack-labs/dialectgen/pkg/oracle"
)

// AssertionsFailedError is returned by verify when any assertion fails.
type AssertionsFailedError struct {
	Failed int
	Total  int
}

func (e *AssertionsFailedError) Error() string {
	return fmt.Sprintf("%d of %d assertions failed", e.Failed, e.Total)
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [suite files...]",
		Short: "Run compliance suites against the target database",
		Long: `Compile test-suite documents and run them directly against the configured
target, without generating a test file.

Each suite file gets its own connection; up to --parallel suites run at once.
CSV files in the seeds directory are loaded as one table per file: once,
before any suite runs, when connections share a database (a server or a
database file), otherwise into every connection. Suites on an embedded
database file run one at a time. A failing test never stops the tests after
it. The command fails when any assertion fails.

With --baseline the suites are not checked. Every test that is not excluded
is run and its names, types, rows and row count are written as the new
expectations, one document per suite file, into the given directory.`,
		Example: `  # Verify the configured suites against the default target
  dialectgen verify

  # Verify against a named target with seed data, four suites at a time
  dialectgen verify --target ci --seeds testdata/seeds --parallel 4

  # Machine-readable report
  dialectgen verify tests/calcs.yml -o json

  # Record what the target returns as the expected results
  dialectgen verify --baseline testdata/baseline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			baseline, _ := cmd.Flags().GetString("baseline")
			return runVerify(cmd.Context(), cc, inputPaths(args, cc.Cfg.Suites), baseline)
		},
	}

	cmd.Flags().StringSlice("suites", nil, "Test-suite files")
	cmd.Flags().String("comparison", "", "Row comparison policy (ordered|unordered)")
	cmd.Flags().Float64("tolerance", 0, "Absolute tolerance for numeric cells")
	cmd.Flags().Int("parallel", 0, "Number of suites run concurrently")
	cmd.Flags().String("seeds", "", "Directory of CSV files loaded before the suites run")
	cmd.Flags().String("baseline", "", "Record results as expectations into this directory instead of checking them")

	return cmd
}

// seedPlan says where seed tables are loaded and how many suites may run at
// once.
type seedPlan struct {
	once     bool // seeds load on one connection before any suite runs
	parallel int
}

func planSeeding(reg adapter.Registration, target adapter.Config, parallel int) seedPlan {
	p := seedPlan{parallel: max(parallel, 1)}
	if !reg.Shared(target) {
		return p
	}
	p.once = true
	if reg.Embedded {
		// An embedded database file is held by one open database at a time.
		p.parallel = 1
	}
	return p
}

func runVerify(ctx context.Context, cc *CommandContext, paths []string, baselineDir string) error {
	policy, err := oracle.ParsePolicy(cc.Cfg.Comparison)
	if err != nil {
		return err
	}
	opts := oracle.Options{Policy: policy, Tolerance: cc.Cfg.Tolerance}

	suites, err := compileSuites(cc.Cfg, paths, cc.Logger)
	if err != nil {
		return err
	}

	target := cc.Cfg.Target.AdapterConfig()
	reg, err := adapter.Resolve(target)
	if err != nil {
		return err
	}

	report := &oracle.Report{RunID: uuid.NewString(), Started: time.Now().UTC(), Policy: policy}
	logger := cc.Logger.With("run_id", report.RunID)

	plan := planSeeding(reg, target, cc.Cfg.Parallel)
	if plan.parallel < cc.Cfg.Parallel {
		logger.Info("embedded database file, running suites one at a time", "path", target.Path)
	}
	if plan.once && cc.Cfg.Seeds != "" {
		if err := seedShared(ctx, cc, target, logger); err != nil {
			return err
		}
	}

	if baselineDir != "" {
		return runBaseline(ctx, cc, suites, plan, baselineDir, report.RunID)
	}

	reports := make([]*oracle.Report, len(suites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(plan.parallel)
	for i, s := range suites {
		g.Go(func() error {
			rep, err := verifySuite(gctx, cc, s, opts, !plan.once)
			if err != nil {
				return fmt.Errorf("suite %s: %w", s.Suite.Name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, rep := range reports {
		report.Merge(rep)
	}
	logger.Info("verify finished", "passed", report.Passed(), "failed", report.Failed(), "excluded", report.Excluded)

	if err := renderReport(cc.Renderer, report); err != nil {
		return err
	}
	if failed := report.Failed(); failed > 0 {
		return &AssertionsFailedError{Failed: failed, Total: len(report.Results)}
	}
	return nil
}

// openTarget connects a new adapter to the configured target.
func openTarget(ctx context.Context, target adapter.Config, logger *slog.Logger) (adapter.Adapter, error) {
	adp, err := adapter.NewAdapter(target, logger)
	if err != nil {
		return nil, err
	}
	if err := adp.Connect(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target.Type, err)
	}
	return adp, nil
}

func loadSeeds(ctx context.Context, cc *CommandContext, adp adapter.Adapter, logger *slog.Logger) error {
	tables, err := oracle.LoadSeeds(ctx, adp, cc.Cfg.Seeds, logger)
	if err != nil {
		return err
	}
	if len(tables) > 0 {
		logger.Debug("seeds loaded", "tables", tables)
	}
	return nil
}

// seedShared loads the seeds once into a database every suite connection
// shares.
func seedShared(ctx context.Context, cc *CommandContext, target adapter.Config, logger *slog.Logger) error {
	adp, err := openTarget(ctx, target, logger)
	if err != nil {
		return err
	}
	defer func() { _ = adp.Close() }()
	return loadSeeds(ctx, cc, adp, logger)
}

// verifySuite runs one compiled suite on a fresh connection, loading the
// seeds into it first when seed is set.
func verifySuite(ctx context.Context, cc *CommandContext, s compiledSuite, opts oracle.Options, seed bool) (*oracle.Report, error) {
	target := cc.Cfg.Target.AdapterConfig()
	logger := cc.Logger.With("suite", s.Suite.Name)

	adp, err := openTarget(ctx, target, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = adp.Close() }()

	if seed {
		if err := loadSeeds(ctx, cc, adp, logger); err != nil {
			return nil, err
		}
	}

	runner := oracle.NewRunner(adp, oracle.WithOptions(opts), oracle.WithLogger(logger))
	rep := runner.Run(ctx, s.Assertions)
	rep.Excluded += len(s.Excluded)
	return rep, nil
}

func renderReport(r *output.Renderer, report *oracle.Report) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(report)
	}

	r.Header(2, "Verify")
	r.KeyValue("Run", report.RunID)
	r.KeyValue("Comparison", string(report.Policy))

	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		status := "pass"
		var detail string
		switch {
		case res.Error != "":
			status = "error"
			detail = res.Error
		case !res.Passed:
			status = "fail"
			parts := make([]string, len(res.Mismatches))
			for i, m := range res.Mismatches {
				parts[i] = m.String()
			}
			detail = strings.Join(parts, "; ")
		}
		rows = append(rows, []string{res.Suite, res.ID, status, res.Duration.Round(time.Millisecond).String(), detail})
	}
	if len(rows) > 0 {
		r.Table([]string{"Suite", "Test", "Status", "Time", "Detail"}, rows)
	}

	summary := fmt.Sprintf("%d passed, %d failed, %d excluded", report.Passed(), report.Failed(), report.Excluded)
	if report.Failed() > 0 {
		r.Error(summary)
	} else {
		r.Success(summary)
	}
	r.Muted("Total " + strconv.Itoa(len(report.Results)) + " assertions")
	return nil
}
