package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
)

func TestFileBackend_Upload(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, discardLogger())
	require.NoError(t, err)

	data := []byte("%PDF-1.4 lease")
	sum := sha256.Sum256(data)
	expected := hex.EncodeToString(sum[:])

	hash, err := backend.Upload(context.Background(), interfaces.FileUpload{Name: "lease.pdf", Data: data})
	require.NoError(t, err)
	assert.Equal(t, expected, hash)

	stored, err := os.ReadFile(backend.Path(hash))
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	// Identical content maps to the same file.
	again, err := backend.Upload(context.Background(), interfaces.FileUpload{Name: "copy.pdf", Data: data})
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileBackend_CanceledContext(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = backend.Upload(ctx, interfaces.FileUpload{Name: "a.pdf", Data: []byte("x")})
	assert.ErrorIs(t, err, interfaces.ErrUpload)
}
