package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
)

func TestS3Backend_Upload(t *testing.T) {
	data := []byte("%PDF-1.4 deed")
	sum := sha256.Sum256(data)
	expected := hex.EncodeToString(sum[:])

	var gotPath string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	backend, err := NewS3Backend("docs", "archive/", "us-east-1", server.URL, "AKID", "SECRET", discardLogger())
	require.NoError(t, err)

	hash, err := backend.Upload(context.Background(), interfaces.FileUpload{Name: "deed.pdf", ContentType: "application/pdf", Data: data})
	require.NoError(t, err)
	assert.Equal(t, expected, hash)
	assert.Equal(t, "/docs/archive/"+expected, gotPath)
	assert.Equal(t, data, gotBody)
	assert.NotContains(t, backend.LocationURI(), "SECRET")
}

func TestS3Backend_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`))
	}))
	defer server.Close()

	backend, err := NewS3Backend("docs", "", "us-east-1", server.URL, "AKID", "SECRET", discardLogger())
	require.NoError(t, err)

	_, err = backend.Upload(context.Background(), interfaces.FileUpload{Name: "deed.pdf", Data: []byte("x")})
	var uploadErr *interfaces.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, http.StatusForbidden, uploadErr.StatusCode)
}

func TestS3Backend_NoCredentials(t *testing.T) {
	backend, err := NewS3Backend("docs", "", "us-east-1", "http://127.0.0.1:1", "", "", discardLogger())
	require.NoError(t, err)

	_, err = backend.Upload(context.Background(), interfaces.FileUpload{Name: "deed.pdf", Data: []byte("x")})
	assert.ErrorIs(t, err, interfaces.ErrConfig)
}
