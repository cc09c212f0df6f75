// Package scopedraft manages the session-scoped list of milestone proposals
// a consultant assembles before submitting a scope.
package scopedraft

import (
	"context"
	"sync"

	"github.com/seda-works/marketplace_layer/internal/app/domain/milestone"
)

// Draft is an unpublished scope: the target project plus an ordered list of
// milestone proposals. Order is the slice index.
type Draft struct {
	ProjectID string               `json:"project_id"`
	Proposals []milestone.Proposal `json:"proposals"`
}

// DraftStore keeps at most one draft per consultant session. Implementations
// are keyed by an opaque session id supplied by the caller; this layer never
// owns session storage itself.
//
// Concurrent mutations from the same session race: the store guarantees
// memory safety only, not draft-level serialization. That mirrors the
// upstream behavior and is deliberate.
type DraftStore interface {
	Get(ctx context.Context, sessionID string) (Draft, bool, error)
	Put(ctx context.Context, sessionID string, d Draft) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-process DraftStore for tests and single-node runs.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

var _ DraftStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory draft store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (Draft, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[sessionID]
	if !ok {
		return Draft{}, false, nil
	}
	cloned := d
	cloned.Proposals = append([]milestone.Proposal(nil), d.Proposals...)
	return cloned, true, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.Proposals = append([]milestone.Proposal(nil), d.Proposals...)
	s.drafts[sessionID] = d
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, sessionID)
	return nil
}
