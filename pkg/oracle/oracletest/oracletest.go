// Package oracletest runs compiled assertions from go test. Generated
// compliance suites call Run once per test function.
//
// The target is configured through the environment:
//
//	ADL_TEST_TYPE     adapter name (default postgres)
//	ADL_TEST_HOST     server host; tests skip when unset for server adapters
//	ADL_TEST_PORT     server port
//	ADL_TEST_USER     user name
//	ADL_TEST_PWD      password
//	ADL_TEST_AUTH_DB  authentication database
//	ADL_TEST_DB       database name (default tdvt)
//	ADL_TEST_PATH     database file for embedded adapters (duckdb, sqlite)
package oracletest

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/leapstack-labs/dialectgen/internal/testutil"
	"github.com/leapstack-labs/dialectgen/pkg/adapter"
	"github.com/leapstack-labs/dialectgen/pkg/oracle"

	// Register adapters selectable through ADL_TEST_TYPE.
	_ "github.com/leapstack-labs/dialectgen/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/dialectgen/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/dialectgen/pkg/adapters/sqlite"
)

// Environment variable names.
const (
	EnvType   = "ADL_TEST_TYPE"
	EnvHost   = "ADL_TEST_HOST"
	EnvPort   = "ADL_TEST_PORT"
	EnvUser   = "ADL_TEST_USER"
	EnvPwd    = "ADL_TEST_PWD"
	EnvAuthDB = "ADL_TEST_AUTH_DB"
	EnvDB     = "ADL_TEST_DB"
	EnvPath   = "ADL_TEST_PATH"
)

// ConfigFromEnv builds an adapter config from getenv. ok is false when the
// environment names an unknown adapter or no reachable target: a file for
// embedded adapters, a host for server adapters.
func ConfigFromEnv(getenv func(string) string) (cfg adapter.Config, ok bool) {
	cfg = adapter.Config{
		Type:     getenv(EnvType),
		Host:     getenv(EnvHost),
		Username: getenv(EnvUser),
		Password: getenv(EnvPwd),
		Database: getenv(EnvDB),
		Path:     getenv(EnvPath),
		Options:  map[string]string{},
	}
	if cfg.Type == "" {
		cfg.Type = "postgres"
	}
	if cfg.Database == "" {
		cfg.Database = "tdvt"
	}
	if p, err := strconv.Atoi(getenv(EnvPort)); err == nil {
		cfg.Port = p
	}
	if auth := getenv(EnvAuthDB); auth != "" {
		cfg.Options[adapter.OptionAuthDatabase] = auth
	}

	r, ok := adapter.Lookup(cfg.Type)
	if !ok {
		return cfg, false
	}
	if cfg.Port == 0 && !r.Embedded {
		cfg.Port = r.DefaultPort
	}
	return cfg, r.Configured(cfg)
}

// Connect opens a connection to the configured target and closes it when
// the test ends. The test is skipped when no target is configured.
func Connect(t testing.TB) adapter.Adapter {
	t.Helper()

	cfg, ok := ConfigFromEnv(os.Getenv)
	if !ok {
		t.Skipf("no %s target configured (set %s or %s)", cfg.Type, EnvHost, EnvPath)
	}

	adp, err := adapter.NewAdapter(cfg, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("creating adapter: %v", err)
	}
	if err := adp.Connect(context.Background(), cfg); err != nil {
		t.Fatalf("connecting to %s: %v", cfg.Type, err)
	}
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

// Run executes a on the configured target and reports every mismatch.
func Run(t testing.TB, a *oracle.Assertion, opts oracle.Options) {
	t.Helper()

	runner := oracle.NewRunner(Connect(t), oracle.WithOptions(opts), oracle.WithLogger(testutil.NewTestLogger(t)))
	rs, err := runner.Query(context.Background(), a.SQL)
	if err != nil {
		t.Fatalf("executing %q: %v", a.SQL, err)
	}
	AssertResult(t, a, rs, opts)
}

// AssertResult reports each mismatch between rs and a as a test error,
// with the expected and actual rows when values differ.
func AssertResult(t testing.TB, a *oracle.Assertion, rs *oracle.ResultSet, opts oracle.Options) bool {
	t.Helper()

	mismatches := oracle.Evaluate(a, rs, opts)
	for _, m := range mismatches {
		t.Errorf("%s: %s", a.ID, m)
		if m.Kind == oracle.MismatchCell || m.Kind == oracle.MismatchUnexpected || m.Kind == oracle.MismatchRowCount {
			t.Logf("expected rows:\n%s", oracle.FormatRows(a.Rows))
			t.Logf("actual rows: %v", rs.Rows)
		}
	}
	return len(mismatches) == 0
}

// Int returns a pointer to n. Generated suites use it for row-count fields.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }
