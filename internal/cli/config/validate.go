package config

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/dialectgen/internal/cli/output"
	"github.com/leapstack-labs/dialectgen/pkg/adapter"
	"github.com/leapstack-labs/dialectgen/pkg/normalize"
	"github.com/leapstack-labs/dialectgen/pkg/oracle"
)

// Validate checks option values. Input files are checked by the commands
// that read them, so help and version work without a project.
func (c *Config) Validate() error {
	if _, err := oracle.ParsePolicy(c.Comparison); err != nil {
		return fmt.Errorf("invalid comparison: %w", err)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", c.Tolerance)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if _, err := normalize.New(c.NormalizeRules()); err != nil {
		return fmt.Errorf("invalid normalize rules: %w", err)
	}
	if c.Target != nil {
		if err := c.Target.Validate(); err != nil {
			return fmt.Errorf("invalid target configuration: %w", err)
		}
	}
	return nil
}

// Validate checks the target type against the adapter registry.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	_, err := adapter.Resolve(adapter.Config{Type: t.Type})
	return err
}

// ValidateInputs checks that the given input files exist.
func ValidateInputs(kind string, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no %s files configured\nHint: set %s in dialectgen.yaml or pass --%s", kind, kind, kind)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%s file %s: %w", kind, p, err)
		}
	}
	return nil
}
