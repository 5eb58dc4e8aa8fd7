package api

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/workflow"
)

func TestNewListingEntryView(t *testing.T) {
	id := interfaces.DocumentID{0x01}
	notification := interfaces.PublishedNotification{
		DocumentID:  id,
		Title:       "NDA",
		ContentHash: "QmNDA",
		Publisher:   common.HexToAddress("0x02"),
		BlockNumber: 42,
		TxHash:      common.HexToHash("0x03"),
	}

	t.Run("with record", func(t *testing.T) {
		record := &interfaces.DocumentRecord{ID: id, Title: "NDA", ContentHash: "QmNDA", Timestamp: 1700000000}
		view := NewListingEntryView(workflow.ListingEntry{ID: id, Notification: notification, Record: record}, "https://gw.example/ipfs")

		assert.Equal(t, id, view.ID)
		assert.Equal(t, "NDA", view.Title)
		assert.Equal(t, "QmNDA", view.ContentHash)
		assert.Equal(t, notification.Publisher, view.Publisher)
		assert.Equal(t, uint64(42), view.BlockNumber)
		assert.Equal(t, notification.TxHash, view.TxHash)
		assert.Empty(t, view.Error)
		require.NotNil(t, view.Document)
		assert.Equal(t, "https://gw.example/ipfs/QmNDA", view.Document.GatewayURL)
		assert.Equal(t, record.Time(), view.Document.PublishedAt)
	})

	t.Run("fetch failed", func(t *testing.T) {
		view := NewListingEntryView(workflow.ListingEntry{ID: id, Notification: notification, Err: errors.New("rpc unavailable")}, "")

		assert.Equal(t, "NDA", view.Title)
		assert.Nil(t, view.Document)
		assert.Equal(t, "rpc unavailable", view.Error)
	})
}
