package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// MockContentStore mocks the ContentStore interface
type MockContentStore struct {
	mock.Mock
	StoreName string
}

// Upload mocks the Upload method
func (m *MockContentStore) Upload(ctx context.Context, file interfaces.FileUpload) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

// Name returns the configured store name
func (m *MockContentStore) Name() string {
	if m.StoreName == "" {
		return "mock"
	}
	return m.StoreName
}

// LocationURI returns a mock location
func (m *MockContentStore) LocationURI() string {
	return "mock:" + m.Name()
}
