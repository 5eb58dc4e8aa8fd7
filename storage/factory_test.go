package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
)

func TestStoreFactory_StoreFor(t *testing.T) {
	factory := NewStoreFactory(discardLogger(), PinningCredentials{APIKey: "key", APISecret: "secret"})
	dir := t.TempDir()

	tests := []struct {
		name     string
		uri      string
		wantType interface{}
		wantErr  bool
	}{
		{name: "pinning", uri: "https://api.pinata.cloud", wantType: &PinningBackend{}},
		{name: "plain http pinning", uri: "http://localhost:8080/", wantType: &PinningBackend{}},
		{name: "ipfs", uri: "ipfs://localhost:5001/?timeout=10s", wantType: &IPFSBackend{}},
		{name: "ipfs default port", uri: "ipfs://localhost", wantType: &IPFSBackend{}},
		{name: "s3", uri: "s3://AKID:SECRET@docs/archive/?region=eu-west-1", wantType: &S3Backend{}},
		{name: "file", uri: "file://" + filepath.Join(dir, "docs"), wantType: &FileBackend{}},
		{name: "unsupported scheme", uri: "ftp://example.com", wantErr: true},
		{name: "pinning without host", uri: "https://", wantErr: true},
		{name: "ipfs bad timeout", uri: "ipfs://localhost:5001/?timeout=soon", wantErr: true},
		{name: "s3 without bucket", uri: "s3:///prefix", wantErr: true},
		{name: "empty file path", uri: "file://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := factory.StoreFor(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, interfaces.ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, store)
		})
	}
}

func TestStoreFactory_CreateMirrorStore(t *testing.T) {
	factory := NewStoreFactory(discardLogger(), PinningCredentials{APIKey: "key", APISecret: "secret"})
	dir := t.TempDir()

	store, err := factory.CreateMirrorStore("https://api.pinata.cloud", nil)
	require.NoError(t, err)
	assert.IsType(t, &PinningBackend{}, store)

	store, err = factory.CreateMirrorStore("https://api.pinata.cloud", []string{"file://" + dir, "ftp://broken"})
	require.NoError(t, err)
	mirrored, ok := store.(*MirrorStore)
	require.True(t, ok)
	assert.Len(t, mirrored.mirrors, 1, "unusable mirrors are skipped")

	_, err = factory.CreateMirrorStore("ftp://broken", []string{"file://" + dir})
	assert.ErrorIs(t, err, interfaces.ErrConfig)
}

func TestStoreFactory_MissingPinningCredentials(t *testing.T) {
	dir := t.TempDir()

	for _, creds := range []PinningCredentials{{}, {APIKey: "key"}, {APISecret: "secret"}} {
		factory := NewStoreFactory(discardLogger(), creds)

		_, err := factory.StoreFor("https://api.pinata.cloud")
		assert.ErrorIs(t, err, ErrMissingPinningCredentials)
		assert.ErrorIs(t, err, interfaces.ErrConfig)

		_, err = factory.CreateMirrorStore("https://api.pinata.cloud", nil)
		assert.ErrorIs(t, err, ErrMissingPinningCredentials)

		_, err = factory.CreateMirrorStore("file://"+dir, []string{"https://api.pinata.cloud"})
		assert.ErrorIs(t, err, ErrMissingPinningCredentials, "a pinning mirror without credentials is not skipped")

		store, err := factory.CreateMirrorStore("file://"+dir, []string{"ipfs://localhost:5001"})
		require.NoError(t, err, "stores other than pinning do not need the credentials")
		assert.IsType(t, &MirrorStore{}, store)
	}
}

func TestRedactURI(t *testing.T) {
	assert.Equal(t, "s3://AKID:xxxxx@docs/prefix", redactURI("s3://AKID:SECRET@docs/prefix"))
	assert.Equal(t, "https://api.pinata.cloud", redactURI("https://api.pinata.cloud"))
}
