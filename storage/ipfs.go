package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// IPFSBackend adds files directly to an IPFS node through its HTTP API.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates a backend for the IPFS API at host:port.
func NewIPFSBackend(host, port string, timeout time.Duration, log *slog.Logger) *IPFSBackend {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	sh := shell.NewShell(apiURL)
	if timeout > 0 {
		sh.SetTimeout(timeout)
	}

	return &IPFSBackend{
		shell:       sh,
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout),
	}
}

// Upload adds and pins the file, returning its CID.
func (b *IPFSBackend) Upload(ctx context.Context, file interfaces.FileUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &interfaces.UploadError{Err: err}
	}

	start := time.Now()

	type result struct {
		cid string
		err error
	}
	done := make(chan result, 1)
	go func() {
		cid, err := b.shell.Add(bytes.NewReader(file.Data), shell.Pin(true))
		done <- result{cid, err}
	}()

	select {
	case <-ctx.Done():
		return "", &interfaces.UploadError{Err: ctx.Err()}
	case r := <-done:
		if r.err != nil {
			b.log.Warn("Failed to add file to IPFS",
				slog.String("host", b.host),
				slog.String("file", file.Name),
				"err", r.err)
			return "", &interfaces.UploadError{Err: fmt.Errorf("failed to add data to IPFS: %w", r.err)}
		}

		b.log.Debug("Stored file in IPFS",
			slog.String("ipfsCID", r.cid),
			slog.String("file", file.Name),
			slog.Duration("duration", time.Since(start)))
		return r.cid, nil
	}
}

// Name returns a unique identifier for this storage backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}
