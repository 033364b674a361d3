package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Init(dir))

	configPath := filepath.Join(dir, ConfigDir, ConfigFile)
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ConfigDir, "logs")); err != nil {
		t.Errorf("logs dir not created: %v", err)
	}

	// Default config must load cleanly.
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Scan.BatchSize)
	assert.True(t, cfg.FilterSet()[' '])
	assert.Len(t, cfg.Tiers(), 3)
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	assert.Error(t, Init(dir))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Scan.BatchSize)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	cfg.Scan.BatchSize = 25
	require.NoError(t, SaveConfig(dir, cfg))

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 25, loaded.Scan.BatchSize)
}
