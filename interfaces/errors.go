package interfaces

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrConfig is returned when credentials, the signing identity or the
	// network endpoint are missing. It is fatal and never retried.
	ErrConfig = errors.New("configuration error")

	// ErrValidation is returned when a publish form fails validation.
	ErrValidation = errors.New("validation failed")

	// ErrUpload is returned when the content store rejects or fails an upload.
	ErrUpload = errors.New("upload failed")

	// ErrDuplicateRecord is returned when the registry already holds the derived identifier.
	ErrDuplicateRecord = errors.New("document already exists")

	// ErrNotFound is returned when no record exists for an identifier.
	ErrNotFound = errors.New("document not found")

	// ErrNotAuthorized is returned when the caller may not modify a record.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrRegistryCall is returned for any other on-chain failure.
	ErrRegistryCall = errors.New("registry call failed")

	// ErrSubmission wraps unclassified failures caught at the workflow boundary.
	ErrSubmission = errors.New("submission failed")

	// ErrSubmissionInFlight is returned when a form is modified or submitted
	// while an upload or submission for it is still running.
	ErrSubmissionInFlight = errors.New("submission already in progress")
)

// ConfigErrorf formats a configuration error wrapping ErrConfig.
func ConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// ValidationError carries field-level messages keyed by form field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty validation error.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UploadError describes a content store failure.
type UploadError struct {
	// StatusCode is the HTTP status returned by the store, 0 for transport failures.
	StatusCode int

	// Err is the underlying error.
	Err error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s with status %d: %v", ErrUpload, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrUpload, e.Err)
}

// Unwrap returns the underlying error.
func (e *UploadError) Unwrap() error {
	return e.Err
}

// Is matches ErrUpload.
func (e *UploadError) Is(target error) bool {
	return target == ErrUpload
}

// DuplicateRecordError is returned by the registry when the derived identifier exists.
type DuplicateRecordError struct {
	ID DocumentID
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateRecord, e.ID)
}

// Is matches ErrDuplicateRecord.
func (e *DuplicateRecordError) Is(target error) bool {
	return target == ErrDuplicateRecord
}
