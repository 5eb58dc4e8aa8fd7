package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// testChain is an in-memory chain hosting a single DocumentRegistry contract.
// It decodes calldata against the contract ABI and applies the contract rules
// directly, so the client's encoding, signing and log decoding are exercised
// without compiled bytecode.
type testChain struct {
	mu sync.Mutex

	abi      abi.ABI
	address  common.Address
	chainID  *big.Int
	txSigner types.Signer

	documents map[[32]byte]*storedDocument
	logs      []types.Log
	receipts  map[common.Hash]*types.Receipt
	nonces    map[common.Address]uint64

	blockNumber uint64
	genesisTime uint64

	// suppressEvents mines publish transactions without their DocumentPublished log.
	suppressEvents bool
	// filterErr fails FilterLogs.
	filterErr error
	// sent counts transactions accepted by SendTransaction.
	sent int
}

// storedDocument field names follow the getDocument tuple components.
type storedDocument struct {
	Publisher    common.Address
	Title        string
	DocType      string
	Jurisdiction string
	IpfsHash     string
	Timestamp    *big.Int
	IsRevoked    bool
}

// revertError mimics the JSON-RPC error returned for reverted executions.
type revertError struct {
	data []byte
}

func (e *revertError) Error() string          { return "execution reverted" }
func (e *revertError) ErrorCode() int         { return 3 }
func (e *revertError) ErrorData() interface{} { return hexutil.Encode(e.data) }

func newTestChain(address common.Address, chainID *big.Int) *testChain {
	parsed, err := ParseDocumentRegistryABI()
	if err != nil {
		panic(err)
	}

	return &testChain{
		abi:         parsed,
		address:     address,
		chainID:     chainID,
		txSigner:    types.LatestSignerForChainID(chainID),
		documents:   make(map[[32]byte]*storedDocument),
		receipts:    make(map[common.Hash]*types.Receipt),
		nonces:      make(map[common.Address]uint64),
		genesisTime: 1700000000,
	}
}

func (c *testChain) timestamp() *big.Int {
	return new(big.Int).SetUint64(c.genesisTime + c.blockNumber*12)
}

func (c *testChain) revert(name string, args ...interface{}) error {
	contractErr := c.abi.Errors[name]
	packed, err := contractErr.Inputs.Pack(args...)
	if err != nil {
		panic(err)
	}
	data := append(append([]byte{}, contractErr.ID[:4]...), packed...)
	return &revertError{data: data}
}

// execute runs calldata from sender. Without commit, state is left untouched.
func (c *testChain) execute(from common.Address, data []byte, commit bool) ([]byte, []*types.Log, error) {
	if len(data) < 4 {
		return nil, nil, errors.New("execution reverted")
	}
	method, err := c.abi.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}

	switch method.Name {
	case methodPublish:
		title, docType, jurisdiction, ipfsHash := args[0].(string), args[1].(string), args[2].(string), args[3].(string)
		id := [32]byte(DeriveDocumentID(title, docType, jurisdiction, ipfsHash))
		if _, exists := c.documents[id]; exists {
			return nil, nil, c.revert(errorAlreadyExists, id)
		}

		var logs []*types.Log
		if commit {
			c.documents[id] = &storedDocument{
				Publisher:    from,
				Title:        title,
				DocType:      docType,
				Jurisdiction: jurisdiction,
				IpfsHash:     ipfsHash,
				Timestamp:    c.timestamp(),
			}
			if !c.suppressEvents {
				logs = append(logs, c.publishedLog(id, title, ipfsHash, from))
			}
		}
		ret, err := method.Outputs.Pack(id)
		return ret, logs, err

	case methodRevoke:
		id := args[0].([32]byte)
		doc, exists := c.documents[id]
		if !exists || doc.IsRevoked || doc.Publisher != from {
			return nil, nil, c.revert(errorNotAuthorized)
		}

		var logs []*types.Log
		if commit {
			doc.IsRevoked = true
			event := c.abi.Events[eventRevoked]
			logs = append(logs, &types.Log{
				Address: c.address,
				Topics:  []common.Hash{event.ID, common.Hash(id), common.BytesToHash(from.Bytes())},
			})
		}
		return nil, logs, nil

	case methodGet:
		id := args[0].([32]byte)
		doc, exists := c.documents[id]
		if !exists {
			doc = &storedDocument{Timestamp: new(big.Int)}
		}
		ret, err := method.Outputs.Pack(*doc)
		return ret, nil, err

	case methodVerify:
		ipfsHash, timestamp, publisher := args[0].(string), args[1].(*big.Int), args[2].(common.Address)
		valid := false
		for _, doc := range c.documents {
			if doc.IpfsHash == ipfsHash && doc.Timestamp.Cmp(timestamp) == 0 && doc.Publisher == publisher {
				valid = true
				break
			}
		}
		ret, err := method.Outputs.Pack(valid)
		return ret, nil, err
	}

	return nil, nil, fmt.Errorf("unsupported method %s", method.Name)
}

func (c *testChain) publishedLog(id [32]byte, title, ipfsHash string, publisher common.Address) *types.Log {
	event := c.abi.Events[eventPublished]
	data, err := event.Inputs.NonIndexed().Pack(title, ipfsHash)
	if err != nil {
		panic(err)
	}
	return &types.Log{
		Address: c.address,
		Topics:  []common.Hash{event.ID, common.Hash(id), common.BytesToHash(publisher.Bytes())},
		Data:    data,
	}
}

// appendLog records a log outside any transaction.
func (c *testChain) appendLog(l *types.Log) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockNumber++
	l.BlockNumber = c.blockNumber
	c.logs = append(c.logs, *l)
}

func (c *testChain) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if contract == c.address {
		return []byte{0x60, 0x80, 0x60, 0x40}, nil
	}
	return nil, nil
}

func (c *testChain) PendingCodeAt(ctx context.Context, contract common.Address) ([]byte, error) {
	return c.CodeAt(ctx, contract, nil)
}

func (c *testChain) CodeAtHash(ctx context.Context, contract common.Address, blockHash common.Hash) ([]byte, error) {
	return c.CodeAt(ctx, contract, nil)
}

func (c *testChain) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call.To == nil || *call.To != c.address {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ret, _, err := c.execute(call.From, call.Data, false)
	return ret, err
}

func (c *testChain) PendingCallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
	return c.CallContract(ctx, call, nil)
}

func (c *testChain) CallContractAtHash(ctx context.Context, call ethereum.CallMsg, blockHash common.Hash) ([]byte, error) {
	return c.CallContract(ctx, call, nil)
}

func (c *testChain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &types.Header{Number: new(big.Int).SetUint64(c.blockNumber)}, nil
}

func (c *testChain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], nil
}

func (c *testChain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (c *testChain) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (c *testChain) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, _, err := c.execute(call.From, call.Data, false); err != nil {
		return 0, err
	}
	return 250_000, nil
}

func (c *testChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	from, err := types.Sender(c.txSigner, tx)
	if err != nil {
		return err
	}
	if tx.Nonce() != c.nonces[from] {
		return fmt.Errorf("nonce mismatch: have %d want %d", tx.Nonce(), c.nonces[from])
	}
	if tx.To() == nil || *tx.To() != c.address {
		return errors.New("unexpected transaction target")
	}

	c.nonces[from]++
	c.blockNumber++
	c.sent++

	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: new(big.Int).SetUint64(c.blockNumber),
		GasUsed:     100_000,
	}

	_, logs, execErr := c.execute(from, tx.Data(), true)
	if execErr != nil {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		for i, l := range logs {
			l.BlockNumber = c.blockNumber
			l.TxHash = tx.Hash()
			l.Index = uint(i)
			c.logs = append(c.logs, *l)
		}
		receipt.Logs = logs
	}

	c.receipts[tx.Hash()] = receipt
	return nil
}

func (c *testChain) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt, exists := c.receipts[txHash]
	if !exists {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (c *testChain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filterErr != nil {
		return nil, c.filterErr
	}

	var matched []types.Log
	for _, l := range c.logs {
		if len(q.Addresses) > 0 && !containsAddress(q.Addresses, l.Address) {
			continue
		}
		if q.FromBlock != nil && l.BlockNumber < q.FromBlock.Uint64() {
			continue
		}
		if q.ToBlock != nil && l.BlockNumber > q.ToBlock.Uint64() {
			continue
		}
		if len(q.Topics) > 0 && len(q.Topics[0]) > 0 && (len(l.Topics) == 0 || !containsHash(q.Topics[0], l.Topics[0])) {
			continue
		}
		matched = append(matched, l)
	}
	return matched, nil
}

func (c *testChain) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("subscriptions not supported")
}

func containsAddress(addresses []common.Address, target common.Address) bool {
	for _, a := range addresses {
		if a == target {
			return true
		}
	}
	return false
}

func containsHash(hashes []common.Hash, target common.Hash) bool {
	for _, h := range hashes {
		if h == target {
			return true
		}
	}
	return false
}

var testContractAddress = common.HexToAddress("0xf9225ef9648d273db99a71A2F11255329C31832a")

func mustKey() *KeyedSigner {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	signer, err := NewKeyedSigner(key, big.NewInt(1337))
	if err != nil {
		panic(err)
	}
	return signer
}
