package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// MockRegistryClient is an in-memory DocumentRegistry with the same rules as
// the contract. It needs no chain and is used for development and tests.
// The client starts read-only; call SetSigner to enable Publish and Revoke.
type MockRegistryClient struct {
	mutex         sync.RWMutex
	records       map[interfaces.DocumentID]*interfaces.DocumentRecord
	notifications []interfaces.PublishedNotification
	signer        *common.Address
	blockNumber   uint64
	now           func() time.Time
}

// NewMockRegistryClient creates an empty mock registry.
func NewMockRegistryClient() *MockRegistryClient {
	return &MockRegistryClient{
		records: make(map[interfaces.DocumentID]*interfaces.DocumentRecord),
		now:     time.Now,
	}
}

// SetSigner enables state-changing calls as the given account.
func (m *MockRegistryClient) SetSigner(address common.Address) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.signer = &address
}

// SetClock overrides the clock used for record timestamps.
func (m *MockRegistryClient) SetClock(now func() time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.now = now
}

// DeriveDocumentID computes the identifier the mock assigns to a submission.
func DeriveDocumentID(title, docType, jurisdiction, contentHash string) interfaces.DocumentID {
	return interfaces.DocumentID(crypto.Keccak256Hash([]byte(title), []byte(docType), []byte(jurisdiction), []byte(contentHash)))
}

// Publish stores a new record and emits a published notification.
func (m *MockRegistryClient) Publish(ctx context.Context, title, docType, jurisdiction, contentHash string) (*interfaces.Confirmation, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.signer == nil {
		return nil, ErrNoTransactOpts
	}

	id := DeriveDocumentID(title, docType, jurisdiction, contentHash)
	if _, exists := m.records[id]; exists {
		return nil, &interfaces.DuplicateRecordError{ID: id}
	}

	m.blockNumber++
	txHash := crypto.Keccak256Hash(id[:], []byte(fmt.Sprint(m.blockNumber)))

	m.records[id] = &interfaces.DocumentRecord{
		ID:           id,
		Publisher:    *m.signer,
		Title:        title,
		DocType:      docType,
		Jurisdiction: jurisdiction,
		ContentHash:  contentHash,
		Timestamp:    uint64(m.now().Unix()),
	}
	m.notifications = append(m.notifications, interfaces.PublishedNotification{
		DocumentID:  id,
		Title:       title,
		ContentHash: contentHash,
		Publisher:   *m.signer,
		BlockNumber: m.blockNumber,
		TxHash:      txHash,
	})

	return &interfaces.Confirmation{TxHash: txHash, BlockNumber: m.blockNumber, DocumentID: &id}, nil
}

// Get returns a copy of the stored record.
func (m *MockRegistryClient) Get(ctx context.Context, id interfaces.DocumentID) (*interfaces.DocumentRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	record, exists := m.records[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
	}
	copied := *record
	return &copied, nil
}

// Revoke marks a record revoked if the signer published it.
func (m *MockRegistryClient) Revoke(ctx context.Context, id interfaces.DocumentID) (*interfaces.Confirmation, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.signer == nil {
		return nil, ErrNoTransactOpts
	}

	record, exists := m.records[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
	}
	if record.Revoked || record.Publisher != *m.signer {
		return nil, fmt.Errorf("%w: revoke %s", interfaces.ErrNotAuthorized, id)
	}

	record.Revoked = true
	m.blockNumber++
	return &interfaces.Confirmation{
		TxHash:      crypto.Keccak256Hash(id[:], []byte("revoke"), []byte(fmt.Sprint(m.blockNumber))),
		BlockNumber: m.blockNumber,
		DocumentID:  &id,
	}, nil
}

// Verify reports whether any record matches all three values.
func (m *MockRegistryClient) Verify(ctx context.Context, contentHash string, timestamp uint64, publisher common.Address) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, record := range m.records {
		if record.ContentHash == contentHash && record.Timestamp == timestamp && record.Publisher == publisher {
			return true, nil
		}
	}
	return false, nil
}

// PublishedNotifications returns all notifications in emission order.
func (m *MockRegistryClient) PublishedNotifications(ctx context.Context) ([]interfaces.PublishedNotification, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return append([]interfaces.PublishedNotification(nil), m.notifications...), nil
}

// EmitPublishedNotification appends a raw notification without touching records.
// It is used to reproduce chains that carry repeated or orphaned logs.
func (m *MockRegistryClient) EmitPublishedNotification(n interfaces.PublishedNotification) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.notifications = append(m.notifications, n)
}
