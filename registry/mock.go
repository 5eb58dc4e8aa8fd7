package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// MockRegistry mocks the DocumentRegistry interface
type MockRegistry struct {
	mock.Mock
}

// Publish mocks the Publish method
func (m *MockRegistry) Publish(ctx context.Context, title, docType, jurisdiction, contentHash string) (*interfaces.Confirmation, error) {
	args := m.Called(ctx, title, docType, jurisdiction, contentHash)
	confirmation, _ := args.Get(0).(*interfaces.Confirmation)
	return confirmation, args.Error(1)
}

// Get mocks the Get method
func (m *MockRegistry) Get(ctx context.Context, id interfaces.DocumentID) (*interfaces.DocumentRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*interfaces.DocumentRecord)
	return record, args.Error(1)
}

// Revoke mocks the Revoke method
func (m *MockRegistry) Revoke(ctx context.Context, id interfaces.DocumentID) (*interfaces.Confirmation, error) {
	args := m.Called(ctx, id)
	confirmation, _ := args.Get(0).(*interfaces.Confirmation)
	return confirmation, args.Error(1)
}

// Verify mocks the Verify method
func (m *MockRegistry) Verify(ctx context.Context, contentHash string, timestamp uint64, publisher common.Address) (bool, error) {
	args := m.Called(ctx, contentHash, timestamp, publisher)
	return args.Bool(0), args.Error(1)
}

// PublishedNotifications mocks the PublishedNotifications method
func (m *MockRegistry) PublishedNotifications(ctx context.Context) ([]interfaces.PublishedNotification, error) {
	args := m.Called(ctx)
	notifications, _ := args.Get(0).([]interfaces.PublishedNotification)
	return notifications, args.Error(1)
}
