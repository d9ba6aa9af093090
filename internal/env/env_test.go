package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	t.Setenv("DRE_TEST_STR", "dre")
	t.Setenv("DRE_TEST_INT", " 42 ")
	t.Setenv("DRE_TEST_BAD_INT", "forty")
	t.Setenv("DRE_TEST_FLOAT", "0.05")
	t.Setenv("DRE_TEST_BOOL", "true")

	assert.Equal(t, "dre", GetString("DRE_TEST_STR", "x"))
	assert.Equal(t, "x", GetString("DRE_TEST_MISSING", "x"))
	assert.Equal(t, 42, GetInt("DRE_TEST_INT", 1))
	assert.Equal(t, 1, GetInt("DRE_TEST_BAD_INT", 1))
	assert.InDelta(t, 0.05, GetFloat("DRE_TEST_FLOAT", 0), 1e-12)
	assert.True(t, GetBool("DRE_TEST_BOOL", false))
	assert.False(t, GetBool("DRE_TEST_MISSING", false))
}

func TestLoad_DoesNotOverrideAndIgnoresMissingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DRE_TEST_FROM_FILE=file\nDRE_TEST_PRESET=file\n"), 0o600))

	t.Setenv("DRE_TEST_PRESET", "process")
	t.Cleanup(func() { os.Unsetenv("DRE_TEST_FROM_FILE") })

	require.NoError(t, Load(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "file", os.Getenv("DRE_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("DRE_TEST_PRESET"))
}
