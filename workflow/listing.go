package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/metrics"
)

// DefaultListingConcurrency bounds concurrent record fetches.
const DefaultListingConcurrency = 8

// ListingEntry is one published document. Record is nil and Err set when
// the record could not be fetched.
type ListingEntry struct {
	ID           interfaces.DocumentID
	Notification interfaces.PublishedNotification
	Record       *interfaces.DocumentRecord
	Err          error
}

// Listing is a loaded set of published documents with an optional selection.
type Listing struct {
	Entries []ListingEntry

	mu       sync.Mutex
	selected int
}

// Lister loads listings from a registry.
type Lister struct {
	registry     interfaces.DocumentRegistry
	concurrency  int
	fetchTimeout time.Duration
	log          *slog.Logger
}

// NewLister creates a lister fetching at most concurrency records at once.
func NewLister(registry interfaces.DocumentRegistry, concurrency int, fetchTimeout time.Duration, log *slog.Logger) *Lister {
	if concurrency < 1 {
		concurrency = DefaultListingConcurrency
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Lister{
		registry:     registry,
		concurrency:  concurrency,
		fetchTimeout: fetchTimeout,
		log:          log,
	}
}

// Load enumerates every publication, drops repeated identifiers keeping the
// first occurrence, and fetches each record. A failed enumeration fails the
// listing; a failed fetch is recorded on its entry only.
func (l *Lister) Load(ctx context.Context) (*Listing, error) {
	notifications, err := l.registry.PublishedNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}

	seen := make(map[interfaces.DocumentID]struct{}, len(notifications))
	entries := make([]ListingEntry, 0, len(notifications))
	for _, n := range notifications {
		if _, dup := seen[n.DocumentID]; dup {
			continue
		}
		seen[n.DocumentID] = struct{}{}
		entries = append(entries, ListingEntry{ID: n.DocumentID, Notification: n})
	}

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i := range entries {
		entry := &entries[i]
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
			defer cancel()
			entry.Record, entry.Err = l.registry.Get(fetchCtx, entry.ID)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
			l.log.Warn("Could not fetch document", "err", e.Err, slog.String("documentID", e.ID.String()))
		}
	}
	metrics.RecordListing(len(entries)-failed, failed)

	l.log.Debug("Loaded listing",
		slog.Int("notifications", len(notifications)),
		slog.Int("documents", len(entries)),
		slog.Int("failed", failed))

	return &Listing{Entries: entries, selected: -1}, nil
}

// Select marks the entry with the given id for detail view.
func (l *Listing) Select(id interfaces.DocumentID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.Entries {
		if l.Entries[i].ID == id {
			l.selected = i
			return nil
		}
	}
	return fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
}

// Selected returns the selected entry, if any.
func (l *Listing) Selected() (*ListingEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.selected < 0 || l.selected >= len(l.Entries) {
		return nil, false
	}
	return &l.Entries[l.selected], true
}

// ClearSelection drops the selection.
func (l *Listing) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selected = -1
}
