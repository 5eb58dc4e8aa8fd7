package config

import (
	"strings"
	"time"

	"github.com/docker/go-units"

	"github.com/ruteri/legal-document-registry/interfaces"
)

const (
	EnvStorageURI     = "STORAGE_URI"
	EnvMaxUploadSize  = "STORAGE_MAX_UPLOAD_SIZE"
	EnvGatewayURL     = "STORAGE_GATEWAY_URL"
	EnvUploadTimeout  = "STORAGE_UPLOAD_TIMEOUT"
	DefaultStorageURI = "https://api.pinata.cloud"
)

// StorageConfig selects the content store and the accepted uploads.
type StorageConfig struct {
	// URI selects the primary store by scheme: https, http, ipfs, s3 or file.
	URI string `toml:"uri"`

	// Mirrors receive a copy of every upload. Their failures are logged only.
	Mirrors []string `toml:"mirrors"`

	// MaxUploadSize is a human size such as "10MiB".
	MaxUploadSize string `toml:"max_upload_size"`

	// AllowedTypes lists accepted file extensions without the dot.
	AllowedTypes []string `toml:"allowed_types"`

	GatewayURL    string `toml:"gateway_url"`
	UploadTimeout string `toml:"upload_timeout"`

	maxUploadSize int64
	uploadTimeout time.Duration
}

func (c *StorageConfig) MaxUploadSizeBytes() int64        { return c.maxUploadSize }
func (c *StorageConfig) UploadTimeoutValue() time.Duration { return c.uploadTimeout }

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *StorageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.URI != "" {
		c.URI = overlay.URI
	}
	if len(overlay.Mirrors) > 0 {
		c.Mirrors = overlay.Mirrors
	}
	if size, err := units.RAMInBytes(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSize = size
	}
	if len(overlay.AllowedTypes) > 0 {
		c.AllowedTypes = overlay.AllowedTypes
	}
	if overlay.GatewayURL != "" {
		c.GatewayURL = overlay.GatewayURL
	}
	if overlay.UploadTimeout != "" {
		c.UploadTimeout = overlay.UploadTimeout
	}
}

func (c *StorageConfig) loadDefaults() {
	if c.URI == "" {
		c.URI = DefaultStorageURI
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MiB"
	}
	if len(c.AllowedTypes) == 0 {
		c.AllowedTypes = []string{"pdf", "doc", "docx"}
	}
	if c.GatewayURL == "" {
		c.GatewayURL = interfaces.DefaultGatewayURL
	}
	if c.UploadTimeout == "" {
		c.UploadTimeout = "2m"
	}
}

func (c *StorageConfig) loadEnv() {
	setFromEnv(&c.URI, EnvStorageURI)
	setFromEnv(&c.MaxUploadSize, EnvMaxUploadSize)
	setFromEnv(&c.GatewayURL, EnvGatewayURL)
	setFromEnv(&c.UploadTimeout, EnvUploadTimeout)
}

func (c *StorageConfig) validate() (err error) {
	if !strings.Contains(c.URI, "://") {
		return interfaces.ConfigErrorf("invalid storage uri %q", c.URI)
	}

	size, err := units.RAMInBytes(c.MaxUploadSize)
	if err != nil {
		return interfaces.ConfigErrorf("invalid max_upload_size: %v", err)
	}
	if size <= 0 {
		return interfaces.ConfigErrorf("max_upload_size must be positive")
	}
	c.maxUploadSize = size

	for i, t := range c.AllowedTypes {
		c.AllowedTypes[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
	}

	if c.uploadTimeout, err = parseDuration("upload_timeout", c.UploadTimeout); err != nil {
		return err
	}
	return nil
}
