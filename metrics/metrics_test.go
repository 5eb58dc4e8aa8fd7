package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "config", Outcome(interfaces.ConfigErrorf("missing key")))
	assert.Equal(t, "duplicate", Outcome(&interfaces.DuplicateRecordError{}))
	assert.Equal(t, "upload", Outcome(&interfaces.UploadError{StatusCode: 500, Err: errors.New("boom")}))
	assert.Equal(t, "registry", Outcome(fmt.Errorf("%w: timeout", interfaces.ErrRegistryCall)))
	assert.Equal(t, "error", Outcome(errors.New("other")))
}

func TestMetricsServer(t *testing.T) {
	_, err := New("legal_document_registry", "127.0.0.1:0")
	require.NoError(t, err)
	// A second server shares the build info gauge.
	_, err = New("legal_document_registry", "127.0.0.1:0")
	require.NoError(t, err)

	RecordRegistryCall("publishDocument", nil, 50*time.Millisecond)
	RecordUpload("pinning", 1024, nil, time.Second)
	RecordSubmission(interfaces.ErrSubmissionInFlight)
	RecordListing(3, 1)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `legal_document_registry_registry_calls_total{method="publishDocument",outcome="ok"}`)
	assert.Contains(t, text, `legal_document_registry_storage_uploaded_bytes_total{store="pinning"} 1024`)
	assert.Contains(t, text, `legal_document_registry_workflow_submissions_total{outcome="in_flight"}`)
	assert.Contains(t, text, `legal_document_registry_build_info{version="dev"} 1`)
}
