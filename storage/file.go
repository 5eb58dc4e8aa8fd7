package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// FileBackend keeps files in a local directory named by the hex SHA-256 of
// their content. It is meant for development and as a local mirror.
type FileBackend struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a new file storage backend using the specified base directory.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, interfaces.ConfigErrorf("failed to create base directory: %v", err)
	}

	return &FileBackend{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Upload writes the file and returns its content hash. Re-uploading
// identical content is a no-op.
func (b *FileBackend) Upload(ctx context.Context, file interfaces.FileUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &interfaces.UploadError{Err: err}
	}

	hash := sha256.Sum256(file.Data)
	contentHash := hex.EncodeToString(hash[:])
	filePath := filepath.Join(b.baseDir, contentHash)

	if _, err := os.Stat(filePath); err == nil {
		return contentHash, nil
	}

	tmp, err := os.CreateTemp(b.baseDir, ".upload-*")
	if err != nil {
		return "", &interfaces.UploadError{Err: fmt.Errorf("failed to create file: %w", err)}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(file.Data); err != nil {
		tmp.Close()
		return "", &interfaces.UploadError{Err: fmt.Errorf("failed to write file: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return "", &interfaces.UploadError{Err: fmt.Errorf("failed to write file: %w", err)}
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return "", &interfaces.UploadError{Err: fmt.Errorf("failed to store file: %w", err)}
	}

	b.log.Debug("Stored file",
		slog.String("path", filePath),
		slog.String("file", file.Name))

	return contentHash, nil
}

// Path returns where content with the given hash is kept.
func (b *FileBackend) Path(contentHash string) string {
	return filepath.Join(b.baseDir, contentHash)
}

// Name returns a unique identifier for this storage backend.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this storage backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}
