package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ruteri/legal-document-registry/interfaces"
)

const (
	EnvListenAddr  = "LISTEN_ADDR"
	EnvMetricsAddr = "METRICS_ADDR"
	EnvPprof       = "ENABLE_PPROF"
)

// ServerConfig configures the HTTP API and metrics listeners.
type ServerConfig struct {
	ListenAddr       string `toml:"listen_addr"`
	MetricsAddr      string `toml:"metrics_addr"`
	EnablePprof      bool   `toml:"enable_pprof"`
	DrainDuration    string `toml:"drain_duration"`
	ShutdownTimeout  string `toml:"shutdown_timeout"`
	ReadTimeout      string `toml:"read_timeout"`
	WriteTimeout     string `toml:"write_timeout"`
	drainDuration    time.Duration
	shutdownTimeout  time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
}

func (c *ServerConfig) DrainDurationValue() time.Duration   { return c.drainDuration }
func (c *ServerConfig) ShutdownTimeoutValue() time.Duration { return c.shutdownTimeout }
func (c *ServerConfig) ReadTimeoutValue() time.Duration     { return c.readTimeout }
func (c *ServerConfig) WriteTimeoutValue() time.Duration    { return c.writeTimeout }

// Finalize applies defaults, loads environment overrides, and validates the server configuration.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.ListenAddr != "" {
		c.ListenAddr = overlay.ListenAddr
	}
	if overlay.MetricsAddr != "" {
		c.MetricsAddr = overlay.MetricsAddr
	}
	if overlay.EnablePprof {
		c.EnablePprof = true
	}
	if overlay.DrainDuration != "" {
		c.DrainDuration = overlay.DrainDuration
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.ReadTimeout != "" {
		c.ReadTimeout = overlay.ReadTimeout
	}
	if overlay.WriteTimeout != "" {
		c.WriteTimeout = overlay.WriteTimeout
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:8080"
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = "127.0.0.1:8090"
	}
	if c.DrainDuration == "" {
		c.DrainDuration = "45s"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "60s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "5m"
	}
}

func (c *ServerConfig) loadEnv() {
	setFromEnv(&c.ListenAddr, EnvListenAddr)
	setFromEnv(&c.MetricsAddr, EnvMetricsAddr)
	if v, err := strconv.ParseBool(os.Getenv(EnvPprof)); err == nil {
		c.EnablePprof = v
	}
}

func (c *ServerConfig) validate() (err error) {
	if c.drainDuration, err = parseDuration("drain_duration", c.DrainDuration); err != nil {
		return err
	}
	if c.shutdownTimeout, err = parseDuration("shutdown_timeout", c.ShutdownTimeout); err != nil {
		return err
	}
	if c.readTimeout, err = parseDuration("read_timeout", c.ReadTimeout); err != nil {
		return err
	}
	if c.writeTimeout, err = parseDuration("write_timeout", c.WriteTimeout); err != nil {
		return err
	}
	return nil
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, interfaces.ConfigErrorf("invalid %s: %v", name, err)
	}
	if d < 0 {
		return 0, interfaces.ConfigErrorf("%s must not be negative", name)
	}
	return d, nil
}
