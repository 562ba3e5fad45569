// Package config loads hookline configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the hookline configuration.
type Config struct {
	// Plugins configures plugin discovery.
	Plugins PluginConfig `toml:"plugins"`

	// Engine configures dispatch behavior.
	Engine EngineConfig `toml:"engine"`

	// Log configures the structured logger.
	Log LogConfig `toml:"log"`
}

// PluginConfig configures plugin discovery and reloading.
type PluginConfig struct {
	// Paths are plugin search directories, checked in order. Empty means
	// the default search paths.
	Paths []string `toml:"paths"`

	// Watch enables automatic reload when plugin sources change.
	Watch bool `toml:"watch"`
}

// EngineConfig configures hook dispatch.
type EngineConfig struct {
	// ExceptionsBubble controls whether first-match dispatch propagates
	// hook function failures to the caller.
	ExceptionsBubble bool `toml:"exceptions_bubble"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Engine: EngineConfig{ExceptionsBubble: true},
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultPath returns the default config file location,
// ~/.config/hookline/config.toml, or "" when the home directory is
// unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hookline", "config.toml")
}

// Load reads configuration from path. A missing file is not an error;
// defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
