package registry

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// KeyedSigner signs transactions with an in-process private key.
type KeyedSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// NewKeyedSigner creates a signer from an in-memory key.
func NewKeyedSigner(key *ecdsa.PrivateKey, chainID *big.Int) (*KeyedSigner, error) {
	if key == nil {
		return nil, interfaces.ConfigErrorf("no signing key configured")
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, interfaces.ConfigErrorf("invalid chain id %v", chainID)
	}

	return &KeyedSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).Set(chainID),
	}, nil
}

// NewKeyedSignerFromHex parses a hex-encoded private key, with or without 0x prefix.
func NewKeyedSignerFromHex(hexKey string, chainID *big.Int) (*KeyedSigner, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, interfaces.ConfigErrorf("no signing key configured")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, interfaces.ConfigErrorf("invalid private key: %v", err)
	}
	return NewKeyedSigner(key, chainID)
}

// NewKeystoreSigner decrypts a JSON keystore file with passphrase.
func NewKeystoreSigner(keyJSON []byte, passphrase string, chainID *big.Int) (*KeyedSigner, error) {
	key, err := keystore.DecryptKey(keyJSON, passphrase)
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, interfaces.ConfigErrorf("keystore passphrase rejected")
		}
		return nil, interfaces.ConfigErrorf("reading keystore: %v", err)
	}
	return NewKeyedSigner(key.PrivateKey, chainID)
}

// Address returns the signing account.
func (s *KeyedSigner) Address() common.Address {
	return s.address
}

// ChainID returns the chain the signer produces transactions for.
func (s *KeyedSigner) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// TransactOpts returns fresh transaction options bound to ctx.
func (s *KeyedSigner) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("creating transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}
