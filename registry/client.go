package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/metrics"
)

// ErrNoTransactOpts is returned when a transaction is attempted without a signer.
var ErrNoTransactOpts = fmt.Errorf("%w: no authorized transactor available", interfaces.ErrConfig)

const (
	DefaultCallTimeout         = 30 * time.Second
	DefaultConfirmationTimeout = 2 * time.Minute
)

// OnchainRegistryClient implements interfaces.DocumentRegistry against a
// DocumentRegistry contract deployed on an Ethereum-compatible chain.
type OnchainRegistryClient struct {
	contract *bind.BoundContract
	abi      abi.ABI
	client   bind.ContractBackend
	backend  bind.DeployBackend
	address  common.Address
	signer   interfaces.Signer

	callTimeout         time.Duration
	confirmationTimeout time.Duration

	log *slog.Logger
}

// NewOnchainRegistryClient creates a client for the contract at address. The
// ContractBackend serves reads and transaction submission, the DeployBackend
// is polled for receipts. The client starts read-only; call SetSigner to enable
// Publish and Revoke.
func NewOnchainRegistryClient(client bind.ContractBackend, backend bind.DeployBackend, address common.Address, log *slog.Logger) (*OnchainRegistryClient, error) {
	if client == nil || backend == nil {
		return nil, interfaces.ConfigErrorf("no network backend configured")
	}
	if address == (common.Address{}) {
		return nil, interfaces.ConfigErrorf("no registry contract address configured")
	}
	if log == nil {
		log = slog.Default()
	}

	parsed, err := ParseDocumentRegistryABI()
	if err != nil {
		return nil, err
	}

	return &OnchainRegistryClient{
		contract:            bind.NewBoundContract(address, parsed, client, client, client),
		abi:                 parsed,
		client:              client,
		backend:             backend,
		address:             address,
		callTimeout:         DefaultCallTimeout,
		confirmationTimeout: DefaultConfirmationTimeout,
		log:                 log.With("contract", address.Hex()),
	}, nil
}

// SetSigner sets the identity used for state-changing calls.
func (c *OnchainRegistryClient) SetSigner(signer interfaces.Signer) {
	c.signer = signer
}

// SetTimeouts overrides the per-call and confirmation deadlines. Zero values keep the current setting.
func (c *OnchainRegistryClient) SetTimeouts(call, confirmation time.Duration) {
	if call > 0 {
		c.callTimeout = call
	}
	if confirmation > 0 {
		c.confirmationTimeout = confirmation
	}
}

// Address returns the contract address.
func (c *OnchainRegistryClient) Address() common.Address {
	return c.address
}

// Publish submits a new document record and waits for it to be mined.
// The returned confirmation carries the identifier from the DocumentPublished
// log in the receipt, or a nil DocumentID if the receipt holds none.
func (c *OnchainRegistryClient) Publish(ctx context.Context, title, docType, jurisdiction, contentHash string) (*interfaces.Confirmation, error) {
	receipt, err := c.transact(ctx, methodPublish, title, docType, jurisdiction, contentHash)
	if err != nil {
		return nil, err
	}

	confirmation := confirmationFromReceipt(receipt)
	if id, ok := c.publishedIDFromReceipt(receipt); ok {
		confirmation.DocumentID = &id
	} else {
		c.log.Warn("publish receipt carries no DocumentPublished log", "txHash", receipt.TxHash.Hex())
	}

	return confirmation, nil
}

// Get fetches the record for id.
func (c *OnchainRegistryClient) Get(ctx context.Context, id interfaces.DocumentID) (record *interfaces.DocumentRecord, err error) {
	defer observe(methodGet, time.Now(), &err)

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var out []interface{}
	if err := c.contract.Call(c.callOpts(callCtx), &out, methodGet, [32]byte(id)); err != nil {
		return nil, c.classify(methodGet, err)
	}

	return decodeRecord(id, out)
}

// Revoke marks the record revoked. Only the publisher of a non-revoked record may revoke it.
func (c *OnchainRegistryClient) Revoke(ctx context.Context, id interfaces.DocumentID) (*interfaces.Confirmation, error) {
	if c.signer == nil {
		return nil, ErrNoTransactOpts
	}

	record, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Revoked {
		return nil, fmt.Errorf("%w: document %s is already revoked", interfaces.ErrNotAuthorized, id)
	}
	if record.Publisher != c.signer.Address() {
		return nil, fmt.Errorf("%w: %s is not the publisher of %s", interfaces.ErrNotAuthorized, c.signer.Address().Hex(), id)
	}

	receipt, err := c.transact(ctx, methodRevoke, [32]byte(id))
	if err != nil {
		return nil, err
	}

	confirmation := confirmationFromReceipt(receipt)
	confirmation.DocumentID = &id
	return confirmation, nil
}

// Verify reports whether a record with exactly these three values exists.
func (c *OnchainRegistryClient) Verify(ctx context.Context, contentHash string, timestamp uint64, publisher common.Address) (valid bool, err error) {
	defer observe(methodVerify, time.Now(), &err)

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var out []interface{}
	err = c.contract.Call(c.callOpts(callCtx), &out, methodVerify, contentHash, new(big.Int).SetUint64(timestamp), publisher)
	if err != nil {
		err = c.classify(methodVerify, err)
		if errors.Is(err, interfaces.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("%w: unexpected %s output length %d", interfaces.ErrRegistryCall, methodVerify, len(out))
	}

	result, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("%w: unexpected %s output type %T", interfaces.ErrRegistryCall, methodVerify, out[0])
	}
	return result, nil
}

// PublishedNotifications returns every DocumentPublished log from genesis to
// the latest block, in chain order. Duplicates are not removed.
func (c *OnchainRegistryClient) PublishedNotifications(ctx context.Context) (notifications []interfaces.PublishedNotification, err error) {
	defer observe("filterPublished", time.Now(), &err)

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{c.address},
		Topics:    [][]common.Hash{{c.abi.Events[eventPublished].ID}},
	}

	logs, err := c.client.FilterLogs(callCtx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: filtering %s logs: %v", interfaces.ErrRegistryCall, eventPublished, err)
	}

	notifications = make([]interfaces.PublishedNotification, 0, len(logs))
	for _, l := range logs {
		n, err := c.decodePublished(l)
		if err != nil {
			c.log.Warn("skipping undecodable log", "txHash", l.TxHash.Hex(), "index", l.Index, "err", err)
			continue
		}
		notifications = append(notifications, *n)
	}

	return notifications, nil
}

// transact preflights method as a call from the signer's address so contract
// errors decode precisely, then signs, sends and waits for the receipt.
func (c *OnchainRegistryClient) transact(ctx context.Context, method string, params ...interface{}) (receipt *types.Receipt, err error) {
	if c.signer == nil {
		return nil, ErrNoTransactOpts
	}
	defer observe(method, time.Now(), &err)

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: callCtx, From: c.signer.Address()}, &out, method, params...); err != nil {
		return nil, c.classify(method, err)
	}

	opts, err := c.signer.TransactOpts(callCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrConfig, err)
	}

	tx, err := c.contract.Transact(opts, method, params...)
	if err != nil {
		return nil, c.classify(method, err)
	}
	c.log.Info("transaction sent", "method", method, "txHash", tx.Hash().Hex(), "from", opts.From.Hex())

	waitCtx, cancelWait := context.WithTimeout(ctx, c.confirmationTimeout)
	defer cancelWait()

	receipt, err = bind.WaitMined(waitCtx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: waiting for %s transaction %s: %v", interfaces.ErrRegistryCall, method, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s transaction %s failed in block %d", interfaces.ErrRegistryCall, method, tx.Hash().Hex(), receipt.BlockNumber)
	}

	c.log.Info("transaction confirmed", "method", method, "txHash", tx.Hash().Hex(), "block", receipt.BlockNumber)
	return receipt, nil
}

func (c *OnchainRegistryClient) callOpts(ctx context.Context) *bind.CallOpts {
	opts := &bind.CallOpts{Context: ctx}
	if c.signer != nil {
		opts.From = c.signer.Address()
	}
	return opts
}

func (c *OnchainRegistryClient) publishedIDFromReceipt(receipt *types.Receipt) (interfaces.DocumentID, bool) {
	eventID := c.abi.Events[eventPublished].ID
	for _, l := range receipt.Logs {
		if l.Address != c.address || len(l.Topics) == 0 || l.Topics[0] != eventID {
			continue
		}
		n, err := c.decodePublished(*l)
		if err != nil {
			c.log.Warn("undecodable DocumentPublished log in receipt", "txHash", receipt.TxHash.Hex(), "err", err)
			continue
		}
		return n.DocumentID, true
	}
	return interfaces.DocumentID{}, false
}

type publishedEvent struct {
	DocId     [32]byte
	Title     string
	IpfsHash  string
	Publisher common.Address
}

func (c *OnchainRegistryClient) decodePublished(l types.Log) (*interfaces.PublishedNotification, error) {
	var ev publishedEvent
	if err := c.contract.UnpackLog(&ev, eventPublished, l); err != nil {
		return nil, err
	}

	return &interfaces.PublishedNotification{
		DocumentID:  interfaces.DocumentID(ev.DocId),
		Title:       ev.Title,
		ContentHash: ev.IpfsHash,
		Publisher:   ev.Publisher,
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
	}, nil
}

// documentTuple mirrors DocumentRegistry.Document. Field names follow the ABI component names.
type documentTuple struct {
	Publisher    common.Address
	Title        string
	DocType      string
	Jurisdiction string
	IpfsHash     string
	Timestamp    *big.Int
	IsRevoked    bool
}

func decodeRecord(id interfaces.DocumentID, out []interface{}) (*interfaces.DocumentRecord, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: unexpected %s output length %d", interfaces.ErrRegistryCall, methodGet, len(out))
	}

	tuple := *abi.ConvertType(out[0], new(documentTuple)).(*documentTuple)

	// The contract returns a zeroed struct for unknown identifiers.
	if tuple.Publisher == (common.Address{}) {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
	}

	var timestamp uint64
	if tuple.Timestamp != nil {
		timestamp = tuple.Timestamp.Uint64()
	}

	return &interfaces.DocumentRecord{
		ID:           id,
		Publisher:    tuple.Publisher,
		Title:        tuple.Title,
		DocType:      tuple.DocType,
		Jurisdiction: tuple.Jurisdiction,
		ContentHash:  tuple.IpfsHash,
		Timestamp:    timestamp,
		Revoked:      tuple.IsRevoked,
	}, nil
}

func confirmationFromReceipt(receipt *types.Receipt) *interfaces.Confirmation {
	confirmation := &interfaces.Confirmation{TxHash: receipt.TxHash}
	if receipt.BlockNumber != nil {
		confirmation.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return confirmation
}

func observe(method string, start time.Time, err *error) {
	metrics.RecordRegistryCall(method, *err, time.Since(start))
}
