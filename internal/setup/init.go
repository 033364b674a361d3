// Package setup handles taskscan vault initialization and config loading.
package setup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/notedeck/taskscan/internal/model"
	atomicyaml "github.com/notedeck/taskscan/internal/yaml"
	"github.com/notedeck/taskscan/templates"
)

// ConfigDir is the per-vault configuration directory.
const ConfigDir = ".taskscan"

// ConfigFile is the configuration filename inside ConfigDir.
const ConfigFile = "config.yaml"

// Init creates the .taskscan/ directory in vaultDir and materializes the
// default configuration. It refuses to overwrite an existing setup.
func Init(vaultDir string) error {
	absDir, err := filepath.Abs(vaultDir)
	if err != nil {
		return fmt.Errorf("resolve vault dir: %w", err)
	}

	base := filepath.Join(absDir, ConfigDir)
	if _, err := os.Stat(base); err == nil {
		return fmt.Errorf("%s already exists", base)
	}

	for _, d := range []string{"logs"} {
		if err := os.MkdirAll(filepath.Join(base, d), 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", d, err)
		}
	}

	configPath := filepath.Join(base, ConfigFile)
	if err := atomicyaml.AtomicWriteRaw(configPath, templates.DefaultConfig()); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// LoadConfig reads the vault's configuration and applies defaults. A missing
// config file is not an error: the defaults apply as-is.
func LoadConfig(vaultDir string) (model.Config, error) {
	var cfg model.Config

	path := filepath.Join(vaultDir, ConfigDir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		if err := atomicyaml.ReadFile(path, &cfg); err != nil {
			return model.Config{}, fmt.Errorf("load config: %w", err)
		}
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig writes cfg back to the vault's config file atomically.
func SaveConfig(vaultDir string, cfg model.Config) error {
	path := filepath.Join(vaultDir, ConfigDir, ConfigFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := atomicyaml.AtomicWrite(path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// LogPath returns the vault's event log path.
func LogPath(vaultDir string) string {
	return filepath.Join(vaultDir, ConfigDir, "logs", "events.jsonl")
}
