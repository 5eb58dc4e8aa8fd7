package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/ruteri/legal-document-registry/api"
	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/workflow"
)

// DocumentClient talks to a registry-server over HTTP.
type DocumentClient struct {
	// ServerAddr is the base URL of the server, e.g. http://127.0.0.1:8080
	ServerAddr string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewDocumentClient creates a client for the server at serverAddr.
func NewDocumentClient(serverAddr string) *DocumentClient {
	return &DocumentClient{ServerAddr: strings.TrimSuffix(serverAddr, "/")}
}

// CreateDraft opens an empty server-side draft.
func (c *DocumentClient) CreateDraft(ctx context.Context) (*api.DraftView, error) {
	var view api.DraftView
	if err := c.doJSON(ctx, http.MethodPost, "/api/drafts", nil, http.StatusCreated, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetDraft returns a draft's state.
func (c *DocumentClient) GetDraft(ctx context.Context, id uuid.UUID) (*api.DraftView, error) {
	var view api.DraftView
	if err := c.doJSON(ctx, http.MethodGet, "/api/drafts/"+id.String(), nil, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// UpdateDraft applies a field patch to a draft.
func (c *DocumentClient) UpdateDraft(ctx context.Context, id uuid.UUID, patch workflow.FormPatch) (*api.DraftView, error) {
	var view api.DraftView
	if err := c.doJSON(ctx, http.MethodPatch, "/api/drafts/"+id.String(), patch, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// AttachFile sets a draft's file.
func (c *DocumentClient) AttachFile(ctx context.Context, id uuid.UUID, file interfaces.FileUpload) (*api.DraftView, error) {
	body, contentType, err := encodeMultipart(nil, &file)
	if err != nil {
		return nil, err
	}

	var view api.DraftView
	if err := c.do(ctx, http.MethodPut, "/api/drafts/"+id.String()+"/file", body, contentType, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SubmitDraft runs the publish workflow of a draft and waits for the outcome.
func (c *DocumentClient) SubmitDraft(ctx context.Context, id uuid.UUID) (*api.PublishView, error) {
	var view api.PublishView
	if err := c.doJSON(ctx, http.MethodPost, "/api/drafts/"+id.String()+"/submit", nil, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteDraft discards a draft.
func (c *DocumentClient) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/drafts/"+id.String(), nil, http.StatusNoContent, nil)
}

// Publish validates, uploads and records a document in one request.
func (c *DocumentClient) Publish(ctx context.Context, form workflow.PublishForm) (*api.PublishView, error) {
	fields := map[string]string{
		"title":          form.Title,
		"docType":        form.DocType,
		"jurisdiction":   form.Jurisdiction,
		"author":         form.Author,
		"effectiveDate":  form.EffectiveDate,
		"expirationDate": form.ExpirationDate,
		"description":    form.Description,
		"category":       form.Category,
		"tags":           strings.Join(form.Tags, ","),
	}
	body, contentType, err := encodeMultipart(fields, form.File)
	if err != nil {
		return nil, err
	}

	var view api.PublishView
	if err := c.do(ctx, http.MethodPost, "/api/documents", body, contentType, http.StatusCreated, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListDocuments returns every distinct published document.
func (c *DocumentClient) ListDocuments(ctx context.Context) ([]api.ListingEntryView, error) {
	var views []api.ListingEntryView
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents", nil, http.StatusOK, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetDocument returns a single record.
func (c *DocumentClient) GetDocument(ctx context.Context, id interfaces.DocumentID) (*api.DocumentView, error) {
	var view api.DocumentView
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents/"+id.String(), nil, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// RevokeDocument revokes a record published by the server's signer.
func (c *DocumentClient) RevokeDocument(ctx context.Context, id interfaces.DocumentID) (*interfaces.Confirmation, error) {
	var confirmation interfaces.Confirmation
	if err := c.doJSON(ctx, http.MethodPost, "/api/documents/"+id.String()+"/revoke", nil, http.StatusOK, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

// Verify checks whether contentHash was published at timestamp by publisher.
func (c *DocumentClient) Verify(ctx context.Context, contentHash string, timestamp uint64, publisher common.Address) (bool, error) {
	query := url.Values{}
	query.Set("contentHash", contentHash)
	query.Set("timestamp", strconv.FormatUint(timestamp, 10))
	query.Set("publisher", publisher.Hex())

	var resp api.VerifyResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/verify?"+query.Encode(), nil, http.StatusOK, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

// Info returns the server's upload constraints.
func (c *DocumentClient) Info(ctx context.Context) (*api.InfoResponse, error) {
	var info api.InfoResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/info", nil, http.StatusOK, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *DocumentClient) doJSON(ctx context.Context, method, path string, in interface{}, expectedStatus int, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("could not encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, expectedStatus, out)
}

func (c *DocumentClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, expectedStatus int, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.ServerAddr+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}

func encodeMultipart(fields map[string]string, file *interfaces.FileUpload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if file != nil {
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
