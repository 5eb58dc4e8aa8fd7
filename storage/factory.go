package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// ErrMissingPinningCredentials is returned when a pinning service store is
// configured without an API key and secret.
var ErrMissingPinningCredentials = fmt.Errorf("%w: pinning service api key and secret are required", interfaces.ErrConfig)

// PinningCredentials is the pinning service credential pair.
type PinningCredentials struct {
	APIKey    string
	APISecret string
}

// Complete reports whether both values are set.
func (c PinningCredentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// StoreFactory creates content stores from URI strings.
type StoreFactory struct {
	log     *slog.Logger
	pinning PinningCredentials
}

// NewStoreFactory creates a factory. The pinning credentials are handed to
// every pinning service store it creates.
func NewStoreFactory(logger *slog.Logger, pinning PinningCredentials) *StoreFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreFactory{
		log:     logger,
		pinning: pinning,
	}
}

// StoreFor creates a content store from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - https://, http:// - Pinata-compatible pinning service
//   - ipfs:// - IPFS node HTTP API
//   - s3:// - Amazon S3 or compatible object storage
//   - file:// - Local filesystem storage
//
// Returns an error wrapping interfaces.ErrConfig if the URI is invalid or the
// scheme is unsupported.
func (sf *StoreFactory) StoreFor(locationURI string) (interfaces.ContentStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, interfaces.ConfigErrorf("invalid store uri: %v", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "https", "http":
		return sf.createPinningBackend(u)
	case "ipfs":
		return sf.createIPFSBackend(u)
	case "s3":
		return sf.createS3Backend(u)
	case "file":
		return sf.createFileBackend(u)
	default:
		return nil, interfaces.ConfigErrorf("unsupported store scheme: %q", u.Scheme)
	}
}

// CreateMirrorStore creates the primary store and wraps it with mirrors.
// A mirror that cannot be created is skipped with a warning, unless it is a
// pinning store without credentials. A primary that cannot be created is an
// error.
func (sf *StoreFactory) CreateMirrorStore(primaryURI string, mirrorURIs []string) (interfaces.ContentStore, error) {
	primary, err := sf.StoreFor(primaryURI)
	if err != nil {
		return nil, err
	}
	if len(mirrorURIs) == 0 {
		return primary, nil
	}

	mirrors := make([]interfaces.ContentStore, 0, len(mirrorURIs))
	for _, uri := range mirrorURIs {
		mirror, err := sf.StoreFor(uri)
		if errors.Is(err, ErrMissingPinningCredentials) {
			return nil, fmt.Errorf("mirror %s: %w", redactURI(uri), err)
		}
		if err != nil {
			sf.log.Warn("Failed to create mirror store",
				"err", err,
				slog.String("locationURI", redactURI(uri)))
			continue
		}
		mirrors = append(mirrors, mirror)
	}

	return NewMirrorStore(primary, mirrors, sf.log), nil
}

// createPinningBackend creates a pinning service client.
// URI format: https://api.pinata.cloud
func (sf *StoreFactory) createPinningBackend(u *url.URL) (interfaces.ContentStore, error) {
	sf.log.Debug("Creating pinning backend", slog.String("uri", u.String()))

	if u.Host == "" {
		return nil, interfaces.ConfigErrorf("missing host in pinning uri")
	}
	if !sf.pinning.Complete() {
		return nil, ErrMissingPinningCredentials
	}

	endpoint := fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, strings.TrimSuffix(u.Path, "/"))
	return NewPinningBackend(endpoint, sf.pinning.APIKey, sf.pinning.APISecret, sf.log), nil
}

// createIPFSBackend creates an IPFS storage backend.
// URI format: ipfs://host:port/?timeout=30s
func (sf *StoreFactory) createIPFSBackend(u *url.URL) (interfaces.ContentStore, error) {
	sf.log.Debug("Creating IPFS backend", slog.String("uri", u.String()))

	host := u.Hostname()
	if host == "" {
		return nil, interfaces.ConfigErrorf("missing host in ipfs uri")
	}
	port := u.Port()
	if port == "" {
		port = "5001" // Default IPFS API port
	}

	timeout := 30 * time.Second
	if raw := u.Query().Get("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, interfaces.ConfigErrorf("invalid ipfs timeout: %v", err)
		}
		timeout = parsed
	}

	return NewIPFSBackend(host, port, timeout, sf.log), nil
}

// createS3Backend creates an S3 or S3-compatible storage backend.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com
func (sf *StoreFactory) createS3Backend(u *url.URL) (interfaces.ContentStore, error) {
	sf.log.Debug("Creating S3 backend", slog.String("uri", redactURI(u.String())))

	bucketName := u.Host
	if bucketName == "" {
		return nil, interfaces.ConfigErrorf("missing bucket in s3 uri")
	}

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1" // Default region
	}

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	return NewS3Backend(bucketName, strings.TrimPrefix(u.Path, "/"), region, query.Get("endpoint"), accessKey, secretKey, sf.log)
}

// createFileBackend creates a file system storage backend.
// URI format: file:///absolute/path/ or file://./relative/path/
func (sf *StoreFactory) createFileBackend(u *url.URL) (interfaces.ContentStore, error) {
	sf.log.Debug("Creating file backend", slog.String("uri", u.String()))

	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, interfaces.ConfigErrorf("empty path in file uri: %s", u.String())
	}

	return NewFileBackend(path, sf.log)
}

// redactURI removes the password from URIs before logging.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid uri>"
	}
	return u.Redacted()
}
