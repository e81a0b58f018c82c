package commands

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dialectgen/internal/cli/output"
	"github.com/leapstack-labs/dialectgen/internal/specdoc"
	"github.com/leapstack-labs/dialectgen/pkg/normalize"
	"github.com/leapstack-labs/dialectgen/pkg/oracle"
)

// baselineResult is the JSON form of a baseline run.
type baselineResult struct {
	RunID   string          `json:"run_id"`
	Dir     string          `json:"dir"`
	Files   []string        `json:"files"`
	Results []oracle.Result `json:"results"`
}

// BaselineFailedError is returned when baseline queries fail. Their cases
// keep the expectations they had.
type BaselineFailedError struct {
	Failed int
	Total  int
}

func (e *BaselineFailedError) Error() string {
	return fmt.Sprintf("%d of %d baseline queries failed", e.Failed, e.Total)
}

func runBaseline(ctx context.Context, cc *CommandContext, suites []compiledSuite, plan seedPlan, dir, runID string) error {
	norm, err := normalize.New(cc.Cfg.NormalizeRules())
	if err != nil {
		return err
	}
	compiler := oracle.NewCompiler(norm)

	files := make([]string, len(suites))
	results := make([][]oracle.Result, len(suites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(plan.parallel)
	for i, s := range suites {
		g.Go(func() error {
			path := filepath.Join(dir, filepath.Base(s.Path))
			res, err := baselineSuite(gctx, cc, s, compiler, !plan.once, path)
			if err != nil {
				return fmt.Errorf("suite %s: %w", s.Suite.Name, err)
			}
			files[i], results[i] = path, res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	res := baselineResult{RunID: runID, Dir: dir, Files: files}
	failed := 0
	for _, rs := range results {
		for _, r := range rs {
			if !r.Passed {
				failed++
			}
		}
		res.Results = append(res.Results, rs...)
	}
	cc.Logger.Info("baseline finished", "run_id", runID, "recorded", len(res.Results)-failed, "failed", failed, "dir", dir)

	if err := renderBaseline(cc.Renderer, res, failed); err != nil {
		return err
	}
	if failed > 0 {
		return &BaselineFailedError{Failed: failed, Total: len(res.Results)}
	}
	return nil
}

// baselineSuite records one suite on a fresh connection and writes the
// updated document to path.
func baselineSuite(ctx context.Context, cc *CommandContext, s compiledSuite, compiler *oracle.Compiler, seed bool, path string) ([]oracle.Result, error) {
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

	recorded, results := oracle.NewRunner(adp, oracle.WithLogger(logger)).Baseline(ctx, compiler, s.Suite)

	var buf bytes.Buffer
	if err := specdoc.EncodeSuite(&buf, recorded); err != nil {
		return nil, err
	}
	if err := writeArtifact(path, buf.Bytes()); err != nil {
		return nil, err
	}
	logger.Debug("baseline written", "path", path, "cases", len(recorded.Cases))
	return results, nil
}

func renderBaseline(r *output.Renderer, res baselineResult, failed int) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}

	r.Header(2, "Baseline")
	r.KeyValue("Run", res.RunID)
	r.KeyValue("Directory", relPath(res.Dir))

	rows := make([][]string, 0, len(res.Results))
	for _, rs := range res.Results {
		status := "recorded"
		if !rs.Passed {
			status = "error"
		}
		rows = append(rows, []string{rs.Suite, rs.ID, status, rs.Duration.Round(time.Millisecond).String(), rs.Error})
	}
	if len(rows) > 0 {
		r.Table([]string{"Suite", "Test", "Status", "Time", "Detail"}, rows)
	}
	for _, f := range res.Files {
		r.Muted("Wrote " + relPath(f))
	}

	summary := strconv.Itoa(len(res.Results)-failed) + " recorded, " + strconv.Itoa(failed) + " failed"
	if failed > 0 {
		r.Error(summary)
	} else {
		r.Success(summary)
	}
	return nil
}
