package oracle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dialectgen/internal/testutil"
)

type seedRecorder struct {
	mockAdapter
	loaded map[string]string
	fail   string
}

func (s *seedRecorder) LoadCSV(_ context.Context, table, path string) error {
	if table == s.fail {
		return errors.New("copy failed")
	}
	s.loaded[table] = path
	return nil
}

func TestLoadSeeds(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Calcs.csv", "Staples.CSV", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("a\n1\n"), 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0750))

	rec := &seedRecorder{loaded: map[string]string{}}
	tables, err := LoadSeeds(context.Background(), rec, dir, testutil.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Calcs", "Staples"}, tables)
	assert.Equal(t, filepath.Join(dir, "Calcs.csv"), rec.loaded["Calcs"])
	assert.Len(t, rec.loaded, 2)
}

func TestLoadSeeds_MissingDir(t *testing.T) {
	rec := &seedRecorder{loaded: map[string]string{}}

	tables, err := LoadSeeds(context.Background(), rec, filepath.Join(t.TempDir(), "none"), nil)
	require.NoError(t, err)
	assert.Empty(t, tables)

	tables, err = LoadSeeds(context.Background(), rec, "", nil)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestLoadSeeds_Error(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Calcs.csv"), []byte("a\n"), 0600))

	rec := &seedRecorder{loaded: map[string]string{}, fail: "Calcs"}
	_, err := LoadSeeds(context.Background(), rec, dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load seed Calcs.csv")
}
