package clients

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ruteri/legal-document-registry/api"
	"github.com/ruteri/legal-document-registry/interfaces"
)

// statusKinds lists the error kinds the server reports with each status.
var statusKinds = map[int][]error{
	http.StatusNotFound:           {interfaces.ErrNotFound},
	http.StatusForbidden:          {interfaces.ErrNotAuthorized},
	http.StatusConflict:           {interfaces.ErrDuplicateRecord, interfaces.ErrSubmissionInFlight},
	http.StatusBadGateway:         {interfaces.ErrUpload, interfaces.ErrRegistryCall},
	http.StatusServiceUnavailable: {interfaces.ErrConfig},
}

// APIError is a non-2xx response from the registry server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Is matches the interfaces error kind the server reported. Statuses shared by
// several kinds are told apart by the message.
func (e *APIError) Is(target error) bool {
	kinds := statusKinds[e.StatusCode]
	for _, kind := range kinds {
		if kind != target {
			continue
		}
		if len(kinds) == 1 || strings.Contains(e.Message, target.Error()) {
			return true
		}
	}
	return false
}

// decodeError turns an error response into *interfaces.ValidationError for
// field failures and *APIError otherwise.
func decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var parsed api.ErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if resp.StatusCode == http.StatusBadRequest && len(parsed.Fields) > 0 {
		verr := interfaces.NewValidationError()
		for field, message := range parsed.Fields {
			verr.Add(field, message)
		}
		return verr
	}
	return &APIError{StatusCode: resp.StatusCode, Message: parsed.Error}
}
