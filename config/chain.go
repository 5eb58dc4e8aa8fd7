package config

import (
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ruteri/legal-document-registry/interfaces"
)

const (
	EnvRPCURL              = "REGISTRY_RPC_URL"
	EnvContractAddress     = "REGISTRY_CONTRACT_ADDRESS"
	EnvChainID             = "REGISTRY_CHAIN_ID"
	EnvPrivateKey          = "REGISTRY_PRIVATE_KEY"
	EnvKeystorePath        = "REGISTRY_KEYSTORE_PATH"
	EnvKeystorePassphrase  = "REGISTRY_KEYSTORE_PASSPHRASE"
	EnvCallTimeout         = "REGISTRY_CALL_TIMEOUT"
	EnvConfirmationTimeout = "REGISTRY_CONFIRMATION_TIMEOUT"
)

// ChainConfig identifies the registry contract and the signing identity.
type ChainConfig struct {
	RPCURL          string `toml:"rpc_url"`
	ContractAddress string `toml:"contract_address"`

	// ChainID is queried from the endpoint when zero.
	ChainID int64 `toml:"chain_id"`

	// PrivateKey and KeystorePath are alternative signing identities.
	// Without either, the registry is read-only.
	PrivateKey         string `toml:"private_key"`
	KeystorePath       string `toml:"keystore_path"`
	KeystorePassphrase string `toml:"keystore_passphrase"`

	CallTimeout         string `toml:"call_timeout"`
	ConfirmationTimeout string `toml:"confirmation_timeout"`

	callTimeout         time.Duration
	confirmationTimeout time.Duration
}

// Address returns the parsed contract address.
func (c *ChainConfig) Address() common.Address {
	return common.HexToAddress(c.ContractAddress)
}

// ChainIDValue returns the configured chain id, or nil if it must be queried.
func (c *ChainConfig) ChainIDValue() *big.Int {
	if c.ChainID == 0 {
		return nil
	}
	return big.NewInt(c.ChainID)
}

// HasSigner reports whether a signing identity is configured.
func (c *ChainConfig) HasSigner() bool {
	return c.PrivateKey != "" || c.KeystorePath != ""
}

func (c *ChainConfig) CallTimeoutValue() time.Duration         { return c.callTimeout }
func (c *ChainConfig) ConfirmationTimeoutValue() time.Duration { return c.confirmationTimeout }

// Finalize applies defaults, loads environment overrides, and validates the chain configuration.
func (c *ChainConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ChainConfig) Merge(overlay *ChainConfig) {
	if overlay.RPCURL != "" {
		c.RPCURL = overlay.RPCURL
	}
	if overlay.ContractAddress != "" {
		c.ContractAddress = overlay.ContractAddress
	}
	if overlay.ChainID != 0 {
		c.ChainID = overlay.ChainID
	}
	if overlay.PrivateKey != "" {
		c.PrivateKey = overlay.PrivateKey
	}
	if overlay.KeystorePath != "" {
		c.KeystorePath = overlay.KeystorePath
	}
	if overlay.KeystorePassphrase != "" {
		c.KeystorePassphrase = overlay.KeystorePassphrase
	}
	if overlay.CallTimeout != "" {
		c.CallTimeout = overlay.CallTimeout
	}
	if overlay.ConfirmationTimeout != "" {
		c.ConfirmationTimeout = overlay.ConfirmationTimeout
	}
}

func (c *ChainConfig) loadDefaults() {
	if c.CallTimeout == "" {
		c.CallTimeout = "30s"
	}
	if c.ConfirmationTimeout == "" {
		c.ConfirmationTimeout = "2m"
	}
}

func (c *ChainConfig) loadEnv() {
	setFromEnv(&c.RPCURL, EnvRPCURL)
	setFromEnv(&c.ContractAddress, EnvContractAddress)
	setFromEnv(&c.PrivateKey, EnvPrivateKey)
	setFromEnv(&c.KeystorePath, EnvKeystorePath)
	setFromEnv(&c.KeystorePassphrase, EnvKeystorePassphrase)
	setFromEnv(&c.CallTimeout, EnvCallTimeout)
	setFromEnv(&c.ConfirmationTimeout, EnvConfirmationTimeout)
	if v, err := strconv.ParseInt(os.Getenv(EnvChainID), 10, 64); err == nil {
		c.ChainID = v
	}
}

func (c *ChainConfig) validate() (err error) {
	if c.RPCURL == "" {
		return interfaces.ConfigErrorf("rpc_url required")
	}
	if c.ContractAddress == "" {
		return interfaces.ConfigErrorf("contract_address required")
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return interfaces.ConfigErrorf("invalid contract_address %q", c.ContractAddress)
	}
	if c.ChainID < 0 {
		return interfaces.ConfigErrorf("chain_id must not be negative")
	}
	if c.PrivateKey != "" && c.KeystorePath != "" {
		return interfaces.ConfigErrorf("private_key and keystore_path are mutually exclusive")
	}
	if c.callTimeout, err = parseDuration("call_timeout", c.CallTimeout); err != nil {
		return err
	}
	if c.confirmationTimeout, err = parseDuration("confirmation_timeout", c.ConfirmationTimeout); err != nil {
		return err
	}
	return nil
}
