package interfaces

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultGatewayURL is the public gateway used to link content hashes.
const DefaultGatewayURL = "https://ipfs.io/ipfs/"

// DocumentID is the 32-byte identifier the registry derives from submission content.
type DocumentID [32]byte

// NewDocumentIDFromBytes creates a document ID from a 32-byte slice.
func NewDocumentIDFromBytes(source []byte) (DocumentID, error) {
	if len(source) != 32 {
		return DocumentID{}, errors.New("invalid document ID length: must be 32 bytes")
	}

	var id DocumentID
	copy(id[:], source)
	return id, nil
}

// NewDocumentIDFromHex parses a 64-char hex string, with or without 0x prefix.
func NewDocumentIDFromHex(source string) (DocumentID, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(source, "0x"), "0X")
	if len(clean) != 64 {
		return DocumentID{}, errors.New("invalid document ID length: hex string must be 64 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return DocumentID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewDocumentIDFromBytes(raw)
}

// String returns the 0x-prefixed hex representation.
func (id DocumentID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Bytes returns the raw 32 bytes.
func (id DocumentID) Bytes() []byte {
	return id[:]
}

// IsZero reports whether the identifier is all zeroes.
func (id DocumentID) IsZero() bool {
	return id == DocumentID{}
}

// MarshalText implements encoding.TextMarshaler.
func (id DocumentID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *DocumentID) UnmarshalText(text []byte) error {
	parsed, err := NewDocumentIDFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// DocumentRecord is the registry's read model of a published document.
// Every field except Revoked is immutable once the record is accepted.
type DocumentRecord struct {
	ID           DocumentID     `json:"id"`
	Publisher    common.Address `json:"publisher"`
	Title        string         `json:"title"`
	DocType      string         `json:"docType"`
	Jurisdiction string         `json:"jurisdiction"`
	ContentHash  string         `json:"contentHash"`
	Timestamp    uint64         `json:"timestamp"`
	Revoked      bool           `json:"revoked"`
}

// Time converts the registry timestamp (seconds since epoch) to time.Time.
func (r *DocumentRecord) Time() time.Time {
	return time.Unix(int64(r.Timestamp), 0).UTC()
}

// GatewayURL links the record's content hash through a gateway base URL.
// Returns an empty string when the record carries no content hash.
func (r *DocumentRecord) GatewayURL(base string) string {
	if r.ContentHash == "" {
		return ""
	}
	if base == "" {
		base = DefaultGatewayURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + r.ContentHash
}

// Confirmation is a settled registry transaction.
type Confirmation struct {
	TxHash      common.Hash `json:"txHash"`
	BlockNumber uint64      `json:"blockNumber"`

	// DocumentID is nil when no DocumentPublished notification was found in
	// the receipt; the identifier is then unknown and must not be guessed.
	DocumentID *DocumentID `json:"documentId,omitempty"`
}

// PublishedNotification is a decoded DocumentPublished log.
type PublishedNotification struct {
	DocumentID  DocumentID     `json:"documentId"`
	Title       string         `json:"title"`
	ContentHash string         `json:"contentHash"`
	Publisher   common.Address `json:"publisher"`
	BlockNumber uint64         `json:"blockNumber"`
	TxHash      common.Hash    `json:"txHash"`
}

// FileUpload is a single file payload.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (f *FileUpload) Size() int64 {
	return int64(len(f.Data))
}
