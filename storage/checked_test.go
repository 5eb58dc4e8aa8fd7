package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/go-units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
)

func TestCheckedStore_Upload(t *testing.T) {
	inner := &MockContentStore{StoreName: "primary"}
	inner.On("Upload", mock.Anything, mock.Anything).Return("QmAccepted", nil).Once()

	store := NewCheckedStore(inner, NewFilePolicy(1*units.KiB, []string{"pdf"}))
	assert.Equal(t, "primary", store.Name())
	assert.Equal(t, "mock:primary", store.LocationURI())

	cid, err := store.Upload(context.Background(), interfaces.FileUpload{Name: "nda.pdf", Data: pdfBytes(512)})
	require.NoError(t, err)
	assert.Equal(t, "QmAccepted", cid)

	rejected := []interfaces.FileUpload{
		{Name: "huge.pdf", Data: pdfBytes(2 * units.KiB)},
		{Name: "lease.docx", Data: docxBytes(t)},
		{Name: "empty.pdf"},
	}
	for _, file := range rejected {
		_, err := store.Upload(context.Background(), file)
		require.ErrorIs(t, err, interfaces.ErrValidation, file.Name)

		var verr *interfaces.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, FileField)
	}

	inner.AssertNumberOfCalls(t, "Upload", 1)
}
