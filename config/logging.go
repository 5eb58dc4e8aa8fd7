package config

import (
	"os"
	"strconv"

	"github.com/ruteri/legal-document-registry/common"
)

const (
	EnvLogJSON    = "LOG_JSON"
	EnvLogDebug   = "LOG_DEBUG"
	EnvLogService = "LOG_SERVICE"
)

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	JSON    bool   `toml:"json"`
	Debug   bool   `toml:"debug"`
	Service string `toml:"service"`
}

// Options converts the configuration into logger options.
func (c *LoggingConfig) Options() *common.LoggingOpts {
	return &common.LoggingOpts{
		JSON:    c.JSON,
		Debug:   c.Debug,
		Service: c.Service,
		Version: common.Version,
	}
}

// Finalize applies defaults and loads environment overrides.
func (c *LoggingConfig) Finalize() error {
	if c.Service == "" {
		c.Service = "legal-document-registry"
	}
	setFromEnv(&c.Service, EnvLogService)
	if v, err := strconv.ParseBool(os.Getenv(EnvLogJSON)); err == nil {
		c.JSON = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvLogDebug)); err == nil {
		c.Debug = v
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.JSON {
		c.JSON = true
	}
	if overlay.Debug {
		c.Debug = true
	}
	if overlay.Service != "" {
		c.Service = overlay.Service
	}
}
