// Package config provides configuration management for the dialectgen CLI.
//
// Values come from defaults, a dialectgen.yaml file, DIALECTGEN_ environment
// variables and explicitly set flags, in increasing precedence.
package config

import (
	"strings"

	"github.com/leapstack-labs/dialectgen/pkg/adapter"
	"github.com/leapstack-labs/dialectgen/pkg/normalize"
)

// TargetConfig holds the database the oracle runs against.
type TargetConfig struct {
	Type string `koanf:"type"` // duckdb, postgres, sqlite

	// File path for embedded databases, database name for servers.
	Database string `koanf:"database"`

	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	AuthDatabase string `koanf:"auth_database"`
	Schema       string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific settings (e.g. DuckDB extensions)
	Params map[string]any `koanf:"params"`
}

// NormalizeConfig overrides parts of the default normalization rules.
// Empty fields keep the defaults.
type NormalizeConfig struct {
	Tables  []string `koanf:"tables"`
	Phrases []string `koanf:"phrases"`
	BoolMin *int     `koanf:"bool_min"`
	BoolMax *int     `koanf:"bool_max"`
}

// Config holds all CLI configuration options.
type Config struct {
	Functions    []string                 `koanf:"functions"`
	Suites       []string                 `koanf:"suites"`
	OutDir       string                   `koanf:"out_dir"`
	Package      string                   `koanf:"package"`
	TestPackage  string                   `koanf:"test_package"`
	Comparison   string                   `koanf:"comparison"`
	Tolerance    float64                  `koanf:"tolerance"`
	Parallel     int                      `koanf:"parallel"`
	Seeds        string                   `koanf:"seeds"`
	Verbose      bool                     `koanf:"verbose"`
	OutputFormat string                   `koanf:"output"`
	Normalize    *NormalizeConfig         `koanf:"normalize"`
	Target       *TargetConfig            `koanf:"target"`
	Targets      map[string]*TargetConfig `koanf:"targets"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutDir      = "generated"
	DefaultPackage     = "functions"
	DefaultTestPackage = "tdvt"
	DefaultComparison  = "ordered"
	DefaultTolerance   = 0.005
	DefaultParallel    = 1
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultTargetType  = "duckdb"
)

// NormalizeRules returns the default rules with the configured overrides.
func (c *Config) NormalizeRules() normalize.Rules {
	rules := normalize.DefaultRules()
	n := c.Normalize
	if n == nil {
		return rules
	}
	if len(n.Tables) > 0 {
		rules.Tables = n.Tables
	}
	if len(n.Phrases) > 0 {
		rules.Phrases = n.Phrases
	}
	if n.BoolMin != nil {
		rules.BoolMin = *n.BoolMin
	}
	if n.BoolMax != nil {
		rules.BoolMax = *n.BoolMax
	}
	return rules
}

// DefaultSchemaForType returns the schema used when a target names none.
func DefaultSchemaForType(dbType string) string {
	if r, ok := adapter.Lookup(dbType); ok {
		return r.DefaultSchema
	}
	return "main"
}

// ApplyDefaults fills in type-dependent defaults.
func (t *TargetConfig) ApplyDefaults() {
	if t == nil {
		return
	}
	t.Type = strings.ToLower(t.Type)
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	if r, ok := adapter.Lookup(t.Type); ok && !r.Embedded && t.Port == 0 {
		t.Port = r.DefaultPort
	}
}

// AdapterConfig converts the target into an adapter connection config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	cfg := adapter.Config{
		Type:     strings.ToLower(t.Type),
		Database: t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  make(map[string]string, len(t.Options)+1),
		Params:   t.Params,
	}
	for k, v := range t.Options {
		cfg.Options[k] = v
	}
	if t.AuthDatabase != "" {
		cfg.Options[adapter.OptionAuthDatabase] = t.AuthDatabase
	}
	if r, ok := adapter.Lookup(cfg.Type); ok && r.Embedded {
		cfg.Path = t.Database
	}
	return cfg
}
