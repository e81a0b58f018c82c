package duckdb

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Extensions to install and load before tests run (e.g., "icu", "json").
	Extensions []string `mapstructure:"extensions"`

	// Settings to apply at session level (e.g., TimeZone, threads).
	Settings map[string]string `mapstructure:"settings"`

	// Init statements executed after connecting, in order. Typically used to
	// attach a fixture database or create views over seed files.
	Init []string `mapstructure:"init"`
}

// ParseParams decodes raw target params. Unknown keys are rejected so that a
// misspelled setting does not go unnoticed.
func ParseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return p, nil
}
