package storage

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// MirrorStore uploads to a primary store and copies every successful upload
// to its mirrors. The content hash is always the primary's, and mirror
// failures are logged without failing the upload.
type MirrorStore struct {
	primary interfaces.ContentStore
	mirrors []interfaces.ContentStore
	log     *slog.Logger
}

// NewMirrorStore creates a mirrored store.
func NewMirrorStore(primary interfaces.ContentStore, mirrors []interfaces.ContentStore, logger *slog.Logger) *MirrorStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MirrorStore{
		primary: primary,
		mirrors: mirrors,
		log:     logger,
	}
}

// Upload stores the file in the primary, then in each mirror.
func (m *MirrorStore) Upload(ctx context.Context, file interfaces.FileUpload) (string, error) {
	start := time.Now()

	contentHash, err := m.primary.Upload(ctx, file)
	if err != nil {
		return "", err
	}

	for _, mirror := range m.mirrors {
		mirrorHash, err := mirror.Upload(ctx, file)
		if err != nil {
			m.log.Warn("Failed to mirror upload",
				slog.String("backend_name", mirror.Name()),
				slog.String("contentHash", contentHash),
				"err", err)
			continue
		}
		m.log.Debug("Mirrored upload",
			slog.String("backend_name", mirror.Name()),
			slog.String("contentHash", contentHash),
			slog.String("mirrorHash", mirrorHash))
	}

	m.log.Info("Successfully stored content",
		slog.String("backend_name", m.primary.Name()),
		slog.String("contentHash", contentHash),
		slog.Int("mirrors", len(m.mirrors)),
		slog.Duration("duration", time.Since(start)))

	return contentHash, nil
}

// Name returns the primary's name.
func (m *MirrorStore) Name() string {
	return m.primary.Name()
}

// LocationURI lists the primary followed by the mirrors.
func (m *MirrorStore) LocationURI() string {
	locations := []string{m.primary.LocationURI()}
	for _, mirror := range m.mirrors {
		locations = append(locations, mirror.LocationURI())
	}

	return "mirror:[" + strings.Join(locations, ",") + "]"
}
