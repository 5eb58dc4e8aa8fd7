package flags

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ruteri/legal-document-registry/config"
	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/registry"
	"github.com/ruteri/legal-document-registry/storage"
	"github.com/ruteri/legal-document-registry/workflow"
)

// Components are the collaborators shared by the binaries.
type Components struct {
	Client   *ethclient.Client
	Registry *registry.OnchainRegistryClient
	Signer   *registry.KeyedSigner
	Store    interfaces.ContentStore
	Policy   *storage.FilePolicy
}

// Close releases the chain connection.
func (c *Components) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// NewComponents builds the content store, then dials the chain and builds
// the registry client and the signer (when configured). Store configuration
// errors are reported before any connection is made.
func NewComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	factory := storage.NewStoreFactory(logger, storage.PinningCredentials{
		APIKey:    cfg.Pinning.APIKey,
		APISecret: cfg.Pinning.APISecret,
	})
	store, err := factory.CreateMirrorStore(cfg.Storage.URI, cfg.Storage.Mirrors)
	if err != nil {
		return nil, err
	}
	policy := storage.NewFilePolicy(cfg.Storage.MaxUploadSizeBytes(), cfg.Storage.AllowedTypes)

	logger.Info("Connecting to Ethereum RPC", "address", cfg.Chain.RPCURL)
	client, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return nil, interfaces.ConfigErrorf("dial %s: %v", cfg.Chain.RPCURL, err)
	}

	c := &Components{
		Client: client,
		Store:  storage.NewCheckedStore(store, policy),
		Policy: policy,
	}

	c.Registry, err = registry.NewOnchainRegistryClient(client, client, cfg.Chain.Address(), logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Registry.SetTimeouts(cfg.Chain.CallTimeoutValue(), cfg.Chain.ConfirmationTimeoutValue())

	if cfg.Chain.HasSigner() {
		chainID := cfg.Chain.ChainIDValue()
		if chainID == nil {
			if chainID, err = client.ChainID(ctx); err != nil {
				c.Close()
				return nil, fmt.Errorf("%w: querying chain id: %v", interfaces.ErrRegistryCall, err)
			}
		}
		if c.Signer, err = newSigner(&cfg.Chain, chainID); err != nil {
			c.Close()
			return nil, err
		}
		c.Registry.SetSigner(c.Signer)
		logger.Info("Registry signer configured", "address", c.Signer.Address().Hex(), "chainID", chainID)
	} else {
		logger.Warn("No signing identity configured, registry is read-only")
	}

	return c, nil
}

func newSigner(cfg *config.ChainConfig, chainID *big.Int) (*registry.KeyedSigner, error) {
	if cfg.KeystorePath != "" {
		keyJSON, err := os.ReadFile(cfg.KeystorePath)
		if err != nil {
			return nil, interfaces.ConfigErrorf("reading keystore: %v", err)
		}
		return registry.NewKeystoreSigner(keyJSON, cfg.KeystorePassphrase, chainID)
	}
	return registry.NewKeyedSignerFromHex(cfg.PrivateKey, chainID)
}

// NewPublisher wires the publish workflow to the components.
func (c *Components) NewPublisher(cfg *config.Config, logger *slog.Logger) *workflow.Publisher {
	return workflow.NewPublisher(c.Store, c.Registry, c.Policy, workflow.Timeouts{
		Upload: cfg.Storage.UploadTimeoutValue(),
		Submit: cfg.Chain.CallTimeoutValue() + cfg.Chain.ConfirmationTimeoutValue(),
		Fetch:  cfg.Chain.CallTimeoutValue(),
	}, logger)
}

// NewLister wires the listing workflow to the components.
func (c *Components) NewLister(cfg *config.Config, logger *slog.Logger) *workflow.Lister {
	return workflow.NewLister(c.Registry, cfg.Workflow.ListingConcurrency, cfg.Chain.CallTimeoutValue(), logger)
}
