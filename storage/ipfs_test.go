package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
)

func TestIPFSBackend_Upload(t *testing.T) {
	var added int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v0/version":
			// The shell client checks the daemon version before adding.
			_, _ = w.Write([]byte(`{"Version":"0.20.0"}`))
		case "/api/v0/add":
			added++
			assert.Equal(t, "true", r.URL.Query().Get("pin"))
			_, _ = w.Write([]byte(`{"Name":"","Hash":"QmTestCID","Size":"12"}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	backend := NewIPFSBackend(u.Hostname(), u.Port(), 5*time.Second, discardLogger())
	cid, err := backend.Upload(context.Background(), interfaces.FileUpload{Name: "will.pdf", Data: []byte("%PDF-1.4 will")})
	require.NoError(t, err)
	assert.Equal(t, "QmTestCID", cid)
	assert.Equal(t, 1, added)
}

func TestIPFSBackend_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"Message":"node offline","Code":0,"Type":"error"}`))
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	backend := NewIPFSBackend(u.Hostname(), u.Port(), 5*time.Second, discardLogger())
	_, err = backend.Upload(context.Background(), interfaces.FileUpload{Name: "will.pdf", Data: []byte("x")})
	assert.ErrorIs(t, err, interfaces.ErrUpload)
}
