package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectgen/internal/testutil"
	"github.com/leapstack-labs/dialectgen/pkg/normalize"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/dialectgen/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/dialectgen/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/dialectgen/pkg/adapters/sqlite"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dialectgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestTargetConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		target    TargetConfig
		wantErr   bool
		errSubstr string
	}{
		{name: "empty type", target: TargetConfig{}, wantErr: true, errSubstr: "target type is required"},
		{name: "duckdb", target: TargetConfig{Type: "duckdb"}},
		{name: "postgres", target: TargetConfig{Type: "postgres"}},
		{name: "sqlite", target: TargetConfig{Type: "sqlite"}},
		{name: "unknown mongodb", target: TargetConfig{Type: "mongodb"}, wantErr: true, errSubstr: "unknown adapter type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestTargetConfig_ApplyDefaults(t *testing.T) {
	pg := &TargetConfig{Type: "Postgres"}
	pg.ApplyDefaults()
	assert.Equal(t, "postgres", pg.Type)
	assert.Equal(t, 5432, pg.Port)
	assert.Equal(t, "public", pg.Schema)

	duck := &TargetConfig{Type: "duckdb", Schema: "tdvt"}
	duck.ApplyDefaults()
	assert.Equal(t, "tdvt", duck.Schema)
	assert.Zero(t, duck.Port)

	lite := &TargetConfig{Type: "sqlite"}
	lite.ApplyDefaults()
	assert.Empty(t, lite.Schema, "sqlite registers no default schema")
	assert.Equal(t, "main", DefaultSchemaForType("unregistered"))
}

func TestTargetConfig_AdapterConfig(t *testing.T) {
	target := &TargetConfig{
		Type:         "duckdb",
		Database:     "/tmp/tdvt.duckdb",
		User:         "reader",
		AuthDatabase: "admin",
		Options:      map[string]string{"sslmode": "require"},
		Params:       map[string]any{"extensions": []any{"json"}},
	}
	cfg := target.AdapterConfig()

	assert.Equal(t, "duckdb", cfg.Type)
	assert.Equal(t, "/tmp/tdvt.duckdb", cfg.Path)
	assert.Equal(t, "reader", cfg.Username)
	assert.Equal(t, map[string]string{"sslmode": "require", "authSource": "admin"}, cfg.Options)
	assert.Equal(t, target.Params, cfg.Params)
	assert.Len(t, target.Options, 1, "target options are not modified")

	pg := (&TargetConfig{Type: "postgres", Database: "tdvt"}).AdapterConfig()
	assert.Empty(t, pg.Path, "server targets carry no path")
	assert.Equal(t, "tdvt", pg.Database)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"multiple variables", "${TEST_VAR_ONE}/${TEST_VAR_TWO}", "value_one/value_two"},
		{"unset variable stays as-is", "${UNSET_VARIABLE}", "${UNSET_VARIABLE}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
		{"mixed set and unset", "${TEST_VAR_ONE}:${UNSET_VAR}", "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestMergeTargetConfig(t *testing.T) {
	override := &TargetConfig{Type: "postgres"}
	assert.Same(t, override, MergeTargetConfig(nil, override))

	base := &TargetConfig{
		Type:     "postgres",
		Host:     "localhost",
		User:     "base",
		Options:  map[string]string{"sslmode": "disable", "application_name": "dialectgen"},
		Params:   map[string]any{"a": 1},
		Password: "secret",
	}
	assert.Same(t, base, MergeTargetConfig(base, nil))

	merged := MergeTargetConfig(base, &TargetConfig{
		Host:         "ci-db",
		AuthDatabase: "admin",
		Options:      map[string]string{"sslmode": "require"},
	})
	assert.Equal(t, "postgres", merged.Type)
	assert.Equal(t, "ci-db", merged.Host)
	assert.Equal(t, "base", merged.User)
	assert.Equal(t, "secret", merged.Password)
	assert.Equal(t, "admin", merged.AuthDatabase)
	assert.Equal(t, map[string]string{"sslmode": "require", "application_name": "dialectgen"}, merged.Options)
	assert.Equal(t, "disable", base.Options["sslmode"], "base is not modified")
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPackage, cfg.Package)
	assert.Equal(t, DefaultTestPackage, cfg.TestPackage)
	assert.Equal(t, DefaultComparison, cfg.Comparison)
	assert.InDelta(t, DefaultTolerance, cfg.Tolerance, 1e-12)
	assert.Equal(t, DefaultParallel, cfg.Parallel)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, "main", cfg.Target.Schema)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultOutDir), cfg.OutDir)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, `functions:
  - specs/scalar_functions.yml
  - specs/aggregate_functions.yml
suites:
  - tests/calcs.yml
out_dir: gen
package: mongofuncs
comparison: unordered
tolerance: 0.01
parallel: 4
seeds: seeds
normalize:
  tables: [Calcs]
  bool_max: 5
target:
  type: postgres
  host: ${TEST_DIALECTGEN_HOST}
  user: tdvt
  password: ${TEST_DIALECTGEN_PWD}
`)
	t.Setenv("TEST_DIALECTGEN_HOST", "db.internal")
	t.Setenv("TEST_DIALECTGEN_PWD", "hunter2")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	root := filepath.Dir(path)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, []string{
		filepath.Join(root, "specs/scalar_functions.yml"),
		filepath.Join(root, "specs/aggregate_functions.yml"),
	}, cfg.Functions)
	assert.Equal(t, []string{filepath.Join(root, "tests/calcs.yml")}, cfg.Suites)
	assert.Equal(t, filepath.Join(root, "gen"), cfg.OutDir)
	assert.Equal(t, filepath.Join(root, "seeds"), cfg.Seeds)
	assert.Equal(t, "mongofuncs", cfg.Package)
	assert.Equal(t, "unordered", cfg.Comparison)
	assert.InDelta(t, 0.01, cfg.Tolerance, 1e-12)
	assert.Equal(t, 4, cfg.Parallel)

	assert.Equal(t, "db.internal", cfg.Target.Host)
	assert.Equal(t, "hunter2", cfg.Target.Password)
	assert.Equal(t, 5432, cfg.Target.Port)

	rules := cfg.NormalizeRules()
	assert.Equal(t, []string{"Calcs"}, rules.Tables)
	assert.Equal(t, normalize.DefaultRules().Phrases, rules.Phrases)
	assert.Equal(t, 0, rules.BoolMin)
	assert.Equal(t, 5, rules.BoolMax)
}

func TestLoadConfig_FoundUpward(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "package: upward\n")
	nested := filepath.Join(filepath.Dir(path), "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "upward", cfg.Package)
	assert.Equal(t, filepath.Dir(path), cfg.ProjectRoot)
}

func TestLoadConfigWithTarget_Named(t *testing.T) {
	path := writeConfig(t, `target:
  type: postgres
  host: localhost
  user: tdvt
targets:
  ci:
    host: ci-db
    port: 6543
  local:
    type: duckdb
    database: tdvt.duckdb
`)

	t.Run("merged over base", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(path, "ci", nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.Target.Type)
		assert.Equal(t, "ci-db", cfg.Target.Host)
		assert.Equal(t, 6543, cfg.Target.Port)
		assert.Equal(t, "tdvt", cfg.Target.User)
	})

	t.Run("embedded database path resolved", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(path, "local", nil)
		require.NoError(t, err)
		assert.Equal(t, "duckdb", cfg.Target.Type)
		assert.Equal(t, filepath.Join(filepath.Dir(path), "tdvt.duckdb"), cfg.Target.Database)
	})

	t.Run("unknown name", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfigWithTarget(path, "prod", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `target "prod" is not defined`)
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errStr  string
	}{
		{"comparison", "comparison: sorted\n", "invalid comparison"},
		{"tolerance", "tolerance: -1\n", "tolerance must not be negative"},
		{"parallel", "parallel: 0\n", "parallel must be at least 1"},
		{"output", "output: html\n", "unknown output mode"},
		{"bool range", "normalize:\n  bool_min: 4\n  bool_max: 1\n", "invalid normalize rules"},
		{"target type", "target:\n  type: oracle\n", "unknown adapter type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errStr)
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, "package: from_file\nparallel: 2\n")

	newFlags := func() *pflag.FlagSet {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("package", "", "")
		flags.Int("parallel", 1, "")
		flags.StringSlice("functions", nil, "")
		flags.Bool("watch", false, "")
		return flags
	}

	t.Run("env over file", func(t *testing.T) {
		ResetConfig()
		t.Setenv("DIALECTGEN_PACKAGE", "from_env")
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "from_env", cfg.Package)
		assert.Equal(t, 2, cfg.Parallel)
	})

	t.Run("flag over env", func(t *testing.T) {
		ResetConfig()
		t.Setenv("DIALECTGEN_PACKAGE", "from_env")
		flags := newFlags()
		require.NoError(t, flags.Set("package", "from_flag"))
		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "from_flag", cfg.Package)
	})

	t.Run("unset flag falls back", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfig(path, newFlags())
		require.NoError(t, err)
		assert.Equal(t, "from_file", cfg.Package)
		assert.Equal(t, 2, cfg.Parallel)
	})

	t.Run("nested env key", func(t *testing.T) {
		ResetConfig()
		t.Setenv("DIALECTGEN_TARGET__TYPE", "sqlite")
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Target.Type)
	})

	t.Run("flag paths relative to working directory", func(t *testing.T) {
		ResetConfig()
		cwd := t.TempDir()
		t.Chdir(cwd)
		flags := newFlags()
		require.NoError(t, flags.Set("functions", "a.yml,b.yml"))
		require.NoError(t, flags.Set("watch", "true"))
		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(wd, "a.yml"), filepath.Join(wd, "b.yml")}, cfg.Functions)
	})
}

func TestValidateInputs(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "calcs.yml")
	require.NoError(t, os.WriteFile(existing, []byte("testcases: []\n"), 0600))

	assert.NoError(t, ValidateInputs("suites", []string{existing}))

	err := ValidateInputs("suites", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--suites")

	err = ValidateInputs("functions", []string{filepath.Join(dir, "missing.yml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yml")
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "discard fallback")

	logger := testutil.NewTestLogger(t)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestFlagKey(t *testing.T) {
	key, ok := FlagKey("out-dir")
	assert.True(t, ok)
	assert.Equal(t, "out_dir", key)

	_, ok = FlagKey("watch")
	assert.False(t, ok, "command-local flags never reach the configuration")
}
