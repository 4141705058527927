package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Cache.Dir)
	assert.False(t, cfg.Cache.Disabled)
	assert.Equal(t, "build/transformed", cfg.Output.Dir)
	assert.Empty(t, cfg.Platform.Version)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	metadata := filepath.Join(dir, "platform-metadata-8.4.jar")
	require.NoError(t, os.WriteFile(metadata, []byte("zip"), 0644))

	content := `platform:
  version: "8.4"
  metadata: ` + metadata + `
cache:
  dir: /tmp/jarweave-cache
output:
  dir: out
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jarweave.yml"), []byte(content), 0644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8.4", cfg.Platform.Version)
	assert.Equal(t, metadata, cfg.Platform.Metadata)
	assert.Equal(t, "/tmp/jarweave-cache", cfg.Cache.Dir)
	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestLoadRejectsMissingMetadataFile(t *testing.T) {
	dir := t.TempDir()
	content := `platform:
  metadata: /nonexistent/metadata.jar
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jarweave.yml"), []byte(content), 0644))
	chdir(t, dir)

	_, err := Load()
	assert.Error(t, err)
}
