package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/config"
)

func TestDefault(t *testing.T) {
	d := config.Default()
	assert.Equal(t, "", d.DataDir)
	assert.Equal(t, int64(0), d.DefaultLimit)
	assert.Equal(t, 64, d.MaxVarlenHops)
	assert.True(t, d.EnableReverseFunction)
}

func TestLoadEmptyPathAppliesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadFileOverridesSomeFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cyql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /var/lib/cyql\ndefault_limit: 1000\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/cyql", cfg.DataDir)
	assert.Equal(t, int64(1000), cfg.DefaultLimit)
	assert.Equal(t, 64, cfg.MaxVarlenHops, "field absent from the file keeps its default")
	assert.True(t, cfg.EnableReverseFunction)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cyql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_limit: 1000\n"), 0o644))

	t.Setenv(config.EnvDefaultLimit, "25")
	t.Setenv(config.EnvEnableReverse, "false")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(25), cfg.DefaultLimit, "env var wins over the file")
	assert.False(t, cfg.EnableReverseFunction)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/cyql.yaml")
	assert.Error(t, err)
}

func TestGetSetWith(t *testing.T) {
	defer config.Set(config.Default())

	custom := config.Default()
	custom.MaxVarlenHops = 8
	restore := config.With(custom)
	assert.Equal(t, 8, config.Get().MaxVarlenHops)

	restore()
	assert.Equal(t, config.Default(), config.Get())
}
