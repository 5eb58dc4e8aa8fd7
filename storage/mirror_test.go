package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMirrorStore_Upload(t *testing.T) {
	file := interfaces.FileUpload{Name: "nda.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 test")}
	testErr := errors.New("test error")

	tests := []struct {
		name          string
		setupMocks    func() (*MockContentStore, []*MockContentStore)
		expectedHash  string
		expectedError error
	}{
		{
			name: "primary and mirrors succeed",
			setupMocks: func() (*MockContentStore, []*MockContentStore) {
				primary := &MockContentStore{StoreName: "primary"}
				primary.On("Upload", mock.Anything, file).Return("QmPrimary", nil)

				mirror := &MockContentStore{StoreName: "mirror"}
				mirror.On("Upload", mock.Anything, file).Return("abcdef", nil)

				return primary, []*MockContentStore{mirror}
			},
			expectedHash: "QmPrimary",
		},
		{
			name: "mirror failure does not fail the upload",
			setupMocks: func() (*MockContentStore, []*MockContentStore) {
				primary := &MockContentStore{StoreName: "primary"}
				primary.On("Upload", mock.Anything, file).Return("QmPrimary", nil)

				failing := &MockContentStore{StoreName: "failing"}
				failing.On("Upload", mock.Anything, file).Return("", testErr)

				healthy := &MockContentStore{StoreName: "healthy"}
				healthy.On("Upload", mock.Anything, file).Return("abcdef", nil)

				return primary, []*MockContentStore{failing, healthy}
			},
			expectedHash: "QmPrimary",
		},
		{
			name: "primary failure skips mirrors",
			setupMocks: func() (*MockContentStore, []*MockContentStore) {
				primary := &MockContentStore{StoreName: "primary"}
				primary.On("Upload", mock.Anything, file).Return("", &interfaces.UploadError{StatusCode: 500, Err: testErr})

				// This mock should not be called as the primary fails
				mirror := &MockContentStore{StoreName: "mirror"}

				return primary, []*MockContentStore{mirror}
			},
			expectedError: interfaces.ErrUpload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary, mirrorMocks := tt.setupMocks()
			mirrors := make([]interfaces.ContentStore, 0, len(mirrorMocks))
			for _, m := range mirrorMocks {
				mirrors = append(mirrors, m)
			}

			store := NewMirrorStore(primary, mirrors, discardLogger())
			hash, err := store.Upload(context.Background(), file)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedHash, hash)

			primary.AssertExpectations(t)
			for _, m := range mirrorMocks {
				m.AssertExpectations(t)
			}
		})
	}
}

func TestMirrorStore_Identity(t *testing.T) {
	primary := &MockContentStore{StoreName: "primary"}
	mirror := &MockContentStore{StoreName: "mirror"}

	store := NewMirrorStore(primary, []interfaces.ContentStore{mirror}, nil)
	assert.Equal(t, "primary", store.Name())
	assert.Equal(t, "mirror:[mock:primary,mock:mirror]", store.LocationURI())
}
