package api

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/workflow"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`

	// Fields carries per-field messages for validation failures.
	Fields map[string]string `json:"fields,omitempty"`
}

// DocumentView is a registry record with its publication time and gateway link.
type DocumentView struct {
	*interfaces.DocumentRecord
	PublishedAt time.Time `json:"publishedAt"`
	GatewayURL  string    `json:"gatewayUrl,omitempty"`
}

// NewDocumentView decorates record. Returns nil for a nil record.
func NewDocumentView(record *interfaces.DocumentRecord, gatewayURL string) *DocumentView {
	if record == nil {
		return nil
	}
	return &DocumentView{
		DocumentRecord: record,
		PublishedAt:    record.Time(),
		GatewayURL:     record.GatewayURL(gatewayURL),
	}
}

// ListingEntryView is one distinct published document. Document is nil and
// Error set when its record could not be fetched.
type ListingEntryView struct {
	ID          interfaces.DocumentID `json:"id"`
	Title       string                `json:"title"`
	ContentHash string                `json:"contentHash"`
	Publisher   common.Address        `json:"publisher"`
	BlockNumber uint64                `json:"blockNumber"`
	TxHash      common.Hash           `json:"txHash"`
	Document    *DocumentView         `json:"document,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// NewListingEntryView converts a listing entry, carrying a fetch failure as Error.
func NewListingEntryView(entry workflow.ListingEntry, gatewayURL string) ListingEntryView {
	view := ListingEntryView{
		ID:          entry.ID,
		Title:       entry.Notification.Title,
		ContentHash: entry.Notification.ContentHash,
		Publisher:   entry.Notification.Publisher,
		BlockNumber: entry.Notification.BlockNumber,
		TxHash:      entry.Notification.TxHash,
		Document:    NewDocumentView(entry.Record, gatewayURL),
	}
	if entry.Err != nil {
		view.Error = entry.Err.Error()
	}
	return view
}

// PublishView is the outcome of a confirmed publication.
type PublishView struct {
	ContentHash  string                   `json:"contentHash"`
	PageCount    int                      `json:"pageCount,omitempty"`
	Confirmation *interfaces.Confirmation `json:"confirmation"`
	Document     *DocumentView            `json:"document,omitempty"`

	// FollowUp is set when the record could not be read back after confirmation.
	FollowUp string `json:"followUpError,omitempty"`
}

// FileView describes an attached file without its content.
type FileView struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// DraftView is the state of a server-side publish workflow.
type DraftView struct {
	ID     uuid.UUID            `json:"id"`
	State  workflow.State       `json:"state"`
	Form   workflow.PublishForm `json:"form"`
	File   *FileView            `json:"file,omitempty"`
	Error  *ErrorResponse       `json:"error,omitempty"`
	Result *PublishView         `json:"result,omitempty"`
}

// VerifyResponse answers a verification query.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// InfoResponse lists the upload constraints clients must respect.
type InfoResponse struct {
	MaxUploadSize int64    `json:"maxUploadSize"`
	AllowedTypes  []string `json:"allowedTypes"`
	OpenDrafts    int      `json:"openDrafts"`
}
