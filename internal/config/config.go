// Package config loads the optional per-project mrmd configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigPath is the relative path of the project config file.
const ConfigPath = ".mrmd.toml"

// Defaults used when neither the config file nor a CLI flag sets a value.
const (
	DefaultServerPort  = 8080
	DefaultSyncPort    = 4444
	DefaultRuntimePort = 8765
)

// Config holds per-project settings. Every field is optional; zero
// values mean "not set" and are filled in by ApplyDefaults.
type Config struct {
	Server struct {
		Port int `toml:"port"`
	} `toml:"server"`

	Sync struct {
		Port int `toml:"port"`
	} `toml:"sync"`

	Runtime struct {
		Port    int   `toml:"port"`
		Enabled *bool `toml:"enabled"`
	} `toml:"runtime"`

	Docs struct {
		Dir string `toml:"dir"`
	} `toml:"docs"`
}

// Load reads and parses the project config from the project root.
// Returns (nil, nil) if the config file is not present.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, ConfigPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigPath, err)
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields. Safe to call on a nil receiver's
// behalf via LoadOrDefault.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Sync.Port == 0 {
		c.Sync.Port = DefaultSyncPort
	}
	if c.Runtime.Port == 0 {
		c.Runtime.Port = DefaultRuntimePort
	}
}

// RuntimeEnabled reports whether the Python runtime should be started.
// Unset means enabled.
func (c *Config) RuntimeEnabled() bool {
	return c.Runtime.Enabled == nil || *c.Runtime.Enabled
}

// LoadOrDefault loads the project config, substituting a default
// config when the file is absent. Parse errors still surface.
func LoadOrDefault(root string) (*Config, error) {
	cfg, err := Load(root)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
