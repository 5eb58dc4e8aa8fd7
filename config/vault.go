package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/ruteri/legal-document-registry/interfaces"
)

const (
	EnvVaultAddr  = "VAULT_ADDR"
	EnvVaultToken = "VAULT_TOKEN"

	// Keys read from the KV v2 secret.
	VaultKeyPinningAPIKey    = "pinning_api_key"
	VaultKeyPinningAPISecret = "pinning_api_secret"
	VaultKeyPrivateKey       = "private_key"
)

// VaultConfig points at a KV v2 secret holding credentials. Vault is not
// consulted when Address is empty.
type VaultConfig struct {
	Address    string `toml:"address"`
	Token      string `toml:"token"`
	MountPath  string `toml:"mount_path"`
	SecretPath string `toml:"secret_path"`
	Timeout    string `toml:"timeout"`

	timeout time.Duration
}

// Enabled reports whether a Vault address is configured.
func (c *VaultConfig) Enabled() bool {
	return c.Address != ""
}

// Finalize applies defaults, loads environment overrides, and validates the vault configuration.
func (c *VaultConfig) Finalize() (err error) {
	if c.MountPath == "" {
		c.MountPath = "secret"
	}
	if c.SecretPath == "" {
		c.SecretPath = "legal-document-registry"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	setFromEnv(&c.Address, EnvVaultAddr)
	setFromEnv(&c.Token, EnvVaultToken)

	if c.Address != "" && c.Token == "" {
		return interfaces.ConfigErrorf("token required when address is set")
	}
	c.timeout, err = parseDuration("timeout", c.Timeout)
	return err
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *VaultConfig) Merge(overlay *VaultConfig) {
	if overlay.Address != "" {
		c.Address = overlay.Address
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.MountPath != "" {
		c.MountPath = overlay.MountPath
	}
	if overlay.SecretPath != "" {
		c.SecretPath = overlay.SecretPath
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// Read fetches the string values of the configured KV v2 secret.
func (c *VaultConfig) Read(ctx context.Context) (map[string]string, error) {
	config := api.DefaultConfig()
	config.Address = c.Address
	if c.timeout > 0 {
		config.Timeout = c.timeout
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, interfaces.ConfigErrorf("create vault client: %v", err)
	}
	client.SetToken(c.Token)

	mountPath := strings.Trim(c.MountPath, "/")
	secretPath := strings.Trim(c.SecretPath, "/")
	path := fmt.Sprintf("%s/data/%s", mountPath, secretPath)

	secret, err := client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, interfaces.ConfigErrorf("read vault secret %s: %v", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, interfaces.ConfigErrorf("vault secret %s not found", path)
	}

	// KV v2 nests the values under "data".
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, interfaces.ConfigErrorf("invalid data format in vault secret %s", path)
	}

	values := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			values[k] = s
		}
	}
	return values, nil
}

// ResolveSecrets fills unset pinning credentials and, when no signing
// identity is configured, the private key from Vault.
func (c *Config) ResolveSecrets(ctx context.Context, log *slog.Logger) error {
	if !c.Vault.Enabled() {
		return nil
	}

	values, err := c.Vault.Read(ctx)
	if err != nil {
		return err
	}

	resolved := []string{}
	if c.Pinning.APIKey == "" && values[VaultKeyPinningAPIKey] != "" {
		c.Pinning.APIKey = values[VaultKeyPinningAPIKey]
		resolved = append(resolved, VaultKeyPinningAPIKey)
	}
	if c.Pinning.APISecret == "" && values[VaultKeyPinningAPISecret] != "" {
		c.Pinning.APISecret = values[VaultKeyPinningAPISecret]
		resolved = append(resolved, VaultKeyPinningAPISecret)
	}
	if !c.Chain.HasSigner() && values[VaultKeyPrivateKey] != "" {
		c.Chain.PrivateKey = values[VaultKeyPrivateKey]
		resolved = append(resolved, VaultKeyPrivateKey)
	}

	if log != nil {
		log.Info("resolved secrets from vault", "address", c.Vault.Address, "keys", resolved)
	}
	return nil
}
