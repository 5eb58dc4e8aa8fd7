package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/ruteri/legal-document-registry/interfaces"
)

const pinFilePath = "/pinning/pinFileToIPFS"

// PinningBackend uploads files to a Pinata-compatible pinning service.
type PinningBackend struct {
	endpoint    string
	apiKey      string
	apiSecret   string
	client      *http.Client
	log         *slog.Logger
	locationURI string
}

// pinResponse is the pinning service's reply to pinFileToIPFS.
type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// NewPinningBackend creates a client for the pinning service at endpoint.
// Credentials are checked on upload, not here.
func NewPinningBackend(endpoint, apiKey, apiSecret string, log *slog.Logger) *PinningBackend {
	endpoint = strings.TrimSuffix(endpoint, "/")
	return &PinningBackend{
		endpoint:    endpoint,
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		client:      &http.Client{Timeout: 5 * time.Minute},
		log:         log,
		locationURI: endpoint,
	}
}

// Upload pins the file and returns its content hash. Missing credentials
// fail with interfaces.ErrConfig before any request is made.
func (b *PinningBackend) Upload(ctx context.Context, file interfaces.FileUpload) (string, error) {
	if b.apiKey == "" || b.apiSecret == "" {
		return "", interfaces.ConfigErrorf("pinning service credentials missing")
	}

	start := time.Now()

	body, contentType, err := encodePinRequest(file)
	if err != nil {
		return "", &interfaces.UploadError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+pinFilePath, body)
	if err != nil {
		return "", &interfaces.UploadError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", b.apiKey)
	req.Header.Set("pinata_secret_api_key", b.apiSecret)

	resp, err := b.client.Do(req)
	if err != nil {
		b.log.Warn("Pinning request failed", "err", err, slog.String("file", file.Name))
		return "", &interfaces.UploadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		b.log.Warn("Pinning service rejected upload",
			slog.Int("status", resp.StatusCode),
			slog.String("file", file.Name))
		return "", &interfaces.UploadError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(msg))),
		}
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", &interfaces.UploadError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if pinned.IpfsHash == "" {
		return "", &interfaces.UploadError{StatusCode: resp.StatusCode, Err: errors.New("response carries no content hash")}
	}

	b.log.Debug("Pinned file",
		slog.String("file", file.Name),
		slog.String("contentHash", pinned.IpfsHash),
		slog.Int64("size", file.Size()),
		slog.Duration("duration", time.Since(start)))

	return pinned.IpfsHash, nil
}

// Name returns identifier for logging.
func (b *PinningBackend) Name() string {
	return "pinning"
}

// LocationURI returns the service endpoint.
func (b *PinningBackend) LocationURI() string {
	return b.locationURI
}

func encodePinRequest(file interfaces.FileUpload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}

	metadata, err := json.Marshal(map[string]string{"name": file.Name})
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("pinataMetadata", string(metadata)); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
