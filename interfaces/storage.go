package interfaces

import (
	"context"
)

// ContentStore uploads files to a content-addressed store.
type ContentStore interface {
	// Upload transmits the file and returns its content hash.
	// Missing credentials fail with ErrConfig before any network call;
	// transport and store-side failures are reported as *UploadError.
	Upload(ctx context.Context, file FileUpload) (string, error)

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this store, with secrets redacted.
	LocationURI() string
}
