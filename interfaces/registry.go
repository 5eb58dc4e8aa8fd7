package interfaces

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// DocumentRegistry is the client side of the DocumentRegistry contract.
type DocumentRegistry interface {
	// Publish submits a new record and waits for the transaction to settle.
	// Returns a DuplicateRecordError if the derived identifier already exists.
	Publish(ctx context.Context, title, docType, jurisdiction, contentHash string) (*Confirmation, error)

	// Get fetches a record. Returns ErrNotFound if no record has the identifier.
	Get(ctx context.Context, id DocumentID) (*DocumentRecord, error)

	// Revoke marks a record revoked. Returns ErrNotFound for unknown records and
	// ErrNotAuthorized when the caller is not the publisher or the record is
	// already revoked.
	Revoke(ctx context.Context, id DocumentID) (*Confirmation, error)

	// Verify checks whether a record matches all three values. It never
	// mutates state and returns false rather than an error for unknown tuples.
	Verify(ctx context.Context, contentHash string, timestamp uint64, publisher common.Address) (bool, error)

	// PublishedNotifications enumerates every DocumentPublished notification
	// emitted by the registry, in chain order.
	PublishedNotifications(ctx context.Context) ([]PublishedNotification, error)
}

// Signer is the signing identity for state-changing registry calls.
type Signer interface {
	// Address returns the account that signs transactions.
	Address() common.Address

	// TransactOpts returns fresh transaction options bound to ctx.
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
}
