package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// classify maps a failed contract call onto the interfaces error kinds.
// Custom contract errors are decoded from the revert payload when the
// backend exposes one.
func (c *OnchainRegistryClient) classify(method string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", interfaces.ErrRegistryCall, method, err)
	}

	data, ok := revertData(err)
	if !ok || len(data) < 4 {
		return fmt.Errorf("%w: %s: %v", interfaces.ErrRegistryCall, method, err)
	}

	for name, contractErr := range c.abi.Errors {
		if !bytes.Equal(data[:4], contractErr.ID[:4]) {
			continue
		}
		switch name {
		case errorAlreadyExists:
			unpacked, uerr := contractErr.Unpack(data)
			if uerr != nil {
				return fmt.Errorf("%w: %s: undecodable %s: %v", interfaces.ErrRegistryCall, method, name, uerr)
			}
			values, _ := unpacked.([]interface{})
			if len(values) != 1 {
				return fmt.Errorf("%w: %s: malformed %s", interfaces.ErrRegistryCall, method, name)
			}
			id, _ := values[0].([32]byte)
			return &interfaces.DuplicateRecordError{ID: interfaces.DocumentID(id)}
		case errorNotAuthorized:
			return fmt.Errorf("%w: %s rejected by contract", interfaces.ErrNotAuthorized, method)
		default:
			return fmt.Errorf("%w: %s reverted with %s", interfaces.ErrRegistryCall, method, name)
		}
	}

	if reason, rerr := abi.UnpackRevert(data); rerr == nil {
		return fmt.Errorf("%w: %s reverted: %s", interfaces.ErrRegistryCall, method, reason)
	}
	return fmt.Errorf("%w: %s reverted with %s", interfaces.ErrRegistryCall, method, hexutil.Encode(data))
}

// revertData extracts the revert payload carried by JSON-RPC execution errors.
func revertData(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}

	switch data := dataErr.ErrorData().(type) {
	case string:
		decoded, err := hexutil.Decode(data)
		if err != nil {
			return nil, false
		}
		return decoded, true
	case []byte:
		return data, true
	default:
		return nil, false
	}
}
