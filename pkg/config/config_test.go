package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
demo:
  buffer_size: 2048
  sequence_len: 10
  temp_file: "a.dat"
force_gc:
  enabled: true
  gc_interval: 1s
server:
  port: "9099"
`)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.Demo.BufferSize)
	assert.Equal(t, 10, cfg.Demo.SequenceLen)
	assert.Equal(t, "a.dat", cfg.Demo.TempFile)
	assert.Equal(t, time.Second, cfg.ForceGC.GCInterval)
	assert.Equal(t, "9099", cfg.Server.Port)

	// Unset fields fall back to defaults.
	assert.Equal(t, "temp.dat", cfg.Demo.ScratchFile)
	assert.Equal(t, 30*time.Second, cfg.ForceGC.FreeOsMemInterval)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultBufferSize, cfg.Demo.BufferSize)
	assert.Equal(t, DefaultSequenceLen, cfg.Demo.SequenceLen)
	assert.Equal(t, "temp1.dat", cfg.Demo.TempFile)
	assert.Equal(t, "temp.dat", cfg.Demo.ScratchFile)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", Test)
	path, err := PathFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "config/config.test.yaml", path)

	t.Setenv("APP_ENV", "staging")
	_, err = PathFromEnv()
	assert.Error(t, err)
}
