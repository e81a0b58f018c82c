package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanExample(t *testing.T) {
	in := "  # Compile\n  dialectgen compile\n\n    --watch\n"
	assert.Equal(t, "# Compile\ndialectgen compile\n\n  --watch", cleanExample(in))
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "Row comparison policy (ordered|unordered)", cleanDescription("Row comparison\n  policy   (ordered|unordered)"))
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "# CLI Reference")
	assert.Contains(t, string(index), "[`verify`](/cli/verify)")
	assert.Contains(t, string(index), "`DIALECTGEN_TARGET__HOST`")

	page, err := os.ReadFile(filepath.Join(dir, "compile.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "dialectgen compile [suite files...]")
	assert.Contains(t, string(page), "`--comparison`")
}

func TestGenerateConfigDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateConfigDocs(dir))

	page, err := os.ReadFile(filepath.Join(dir, "configuration.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "| `tolerance` | float | `0.005` |")
	assert.Contains(t, string(page), "| `tables` | []string | `Calcs, Staples` |")
}
