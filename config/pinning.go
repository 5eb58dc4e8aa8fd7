package config

const (
	EnvPinningAPIKey    = "PINNING_API_KEY"
	EnvPinningAPISecret = "PINNING_API_SECRET"
)

// PinningConfig holds the pinning service credential pair. Missing
// credentials are not rejected here, since secrets may still be resolved
// from Vault after Finalize. Building a pinning store without them is a
// configuration error at startup.
type PinningConfig struct {
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
}

// Complete reports whether both credential values are set.
func (c *PinningConfig) Complete() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// Finalize loads environment overrides.
func (c *PinningConfig) Finalize() error {
	setFromEnv(&c.APIKey, EnvPinningAPIKey)
	setFromEnv(&c.APISecret, EnvPinningAPISecret)
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *PinningConfig) Merge(overlay *PinningConfig) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.APISecret != "" {
		c.APISecret = overlay.APISecret
	}
}
