// Package config provides application configuration management with support for
// TOML files, .env files, environment variable overrides and Vault-held secrets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ruteri/legal-document-registry/interfaces"
)

const (
	// DefaultConfigFile is read when no path is given and the file exists.
	DefaultConfigFile = "config.toml"

	// DefaultEnvFile is loaded into the process environment if present.
	DefaultEnvFile = ".env"
)

// Config represents the root service configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	Chain    ChainConfig    `toml:"chain"`
	Storage  StorageConfig  `toml:"storage"`
	Pinning  PinningConfig  `toml:"pinning"`
	Vault    VaultConfig    `toml:"vault"`
	Workflow WorkflowConfig `toml:"workflow"`
}

// Load reads path, or DefaultConfigFile if path is empty and the file exists.
// A missing default file yields an empty configuration, left for Finalize
// and the environment to fill.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return &Config{}, nil
		}
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, interfaces.ConfigErrorf("read config: %v", err)
	}
	return Parse(data)
}

// Parse decodes a TOML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, interfaces.ConfigErrorf("parse config: %v", err)
	}
	return &cfg, nil
}

// LoadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return interfaces.ConfigErrorf("load %s: %v", path, err)
	}
	return nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
// Every returned error wraps interfaces.ErrConfig.
func (c *Config) Finalize() error {
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Chain.Finalize(); err != nil {
		return fmt.Errorf("chain: %w", err)
	}
	if err := c.Storage.Finalize(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Pinning.Finalize(); err != nil {
		return fmt.Errorf("pinning: %w", err)
	}
	if err := c.Vault.Finalize(); err != nil {
		return fmt.Errorf("vault: %w", err)
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Chain.Merge(&overlay.Chain)
	c.Storage.Merge(&overlay.Storage)
	c.Pinning.Merge(&overlay.Pinning)
	c.Vault.Merge(&overlay.Vault)
	c.Workflow.Merge(&overlay.Workflow)
}

func setFromEnv(target *string, name string) {
	if v := os.Getenv(name); v != "" {
		*target = v
	}
}
