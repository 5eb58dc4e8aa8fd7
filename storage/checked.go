package storage

import (
	"context"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// CheckedStore applies a FilePolicy in front of another store, so every
// path that reaches a backend is held to the same size and type limits.
type CheckedStore struct {
	store  interfaces.ContentStore
	policy *FilePolicy
}

// NewCheckedStore wraps store with policy.
func NewCheckedStore(store interfaces.ContentStore, policy *FilePolicy) *CheckedStore {
	return &CheckedStore{store: store, policy: policy}
}

// Upload rejects files the policy does not accept with a
// *interfaces.ValidationError on FileField, without contacting the store.
func (c *CheckedStore) Upload(ctx context.Context, file interfaces.FileUpload) (string, error) {
	if msg := c.policy.Check(&file); msg != "" {
		verr := interfaces.NewValidationError()
		verr.Add(FileField, msg)
		return "", verr
	}
	return c.store.Upload(ctx, file)
}

func (c *CheckedStore) Name() string {
	return c.store.Name()
}

func (c *CheckedStore) LocationURI() string {
	return c.store.LocationURI()
}
