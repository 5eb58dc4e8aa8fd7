package httpserver

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/ruteri/legal-document-registry/workflow"
)

// ErrDraftLimit is returned when the draft store is full.
var ErrDraftLimit = errors.New("too many open drafts")

// draftStore keeps one publish workflow per draft id.
type draftStore struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*workflow.PublishWorkflow
	max    int
}

func newDraftStore(max int) *draftStore {
	return &draftStore{
		drafts: make(map[uuid.UUID]*workflow.PublishWorkflow),
		max:    max,
	}
}

func (s *draftStore) create(publisher *workflow.Publisher) (uuid.UUID, *workflow.PublishWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.drafts) >= s.max {
		return uuid.Nil, nil, ErrDraftLimit
	}

	id := uuid.New()
	wf := publisher.NewWorkflow()
	s.drafts[id] = wf
	return id, wf, nil
}

func (s *draftStore) get(id uuid.UUID) (*workflow.PublishWorkflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.drafts[id]
	return wf, ok
}

func (s *draftStore) delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

func (s *draftStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
