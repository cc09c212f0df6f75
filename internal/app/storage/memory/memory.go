// Package memory provides a thread-safe in-memory shadow store. It is
// intended for tests and for running without a configured database.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/storage"
)

// Store implements the shadow store interfaces in memory.
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	projects   map[int64]storage.ProjectRecord
	milestones map[int64]storage.MilestoneRecord
}

var _ storage.ProjectStore = (*Store)(nil)
var _ storage.MilestoneStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:     1,
		projects:   make(map[int64]storage.ProjectRecord),
		milestones: make(map[int64]storage.MilestoneRecord),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// --- ProjectStore ------------------------------------------------------------

func (s *Store) CreateProject(_ context.Context, rec storage.ProjectRecord) (storage.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextIDLocked()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.projects[rec.ID] = rec
	return rec, nil
}

func (s *Store) UpdateProject(_ context.Context, rec storage.ProjectRecord) (storage.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.projects[rec.ID]
	if !ok {
		return storage.ProjectRecord{}, service.NewNotFoundError("project record", fmtID(rec.ID))
	}
	rec.CreatedAt = original.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	s.projects[rec.ID] = rec
	return rec, nil
}

func (s *Store) GetProject(_ context.Context, id int64) (storage.ProjectRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.projects[id]
	if !ok {
		return storage.ProjectRecord{}, service.NewNotFoundError("project record", fmtID(id))
	}
	return rec, nil
}

func (s *Store) GetProjectByExternalID(_ context.Context, externalID string) (storage.ProjectRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.projects {
		if rec.ExternalID == externalID {
			return rec, nil
		}
	}
	return storage.ProjectRecord{}, service.NewNotFoundError("project record", externalID)
}

func (s *Store) ListProjects(_ context.Context) ([]storage.ProjectRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.ProjectRecord, 0, len(s.projects))
	for _, rec := range s.projects {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteProject(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return service.NewNotFoundError("project record", fmtID(id))
	}
	delete(s.projects, id)
	return nil
}

// --- MilestoneStore ----------------------------------------------------------

func (s *Store) CreateMilestone(_ context.Context, rec storage.MilestoneRecord) (storage.MilestoneRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextIDLocked()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.milestones[rec.ID] = rec
	return rec, nil
}

func (s *Store) UpdateMilestone(_ context.Context, rec storage.MilestoneRecord) (storage.MilestoneRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.milestones[rec.ID]
	if !ok {
		return storage.MilestoneRecord{}, service.NewNotFoundError("milestone record", fmtID(rec.ID))
	}
	rec.CreatedAt = original.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	s.milestones[rec.ID] = rec
	return rec, nil
}

func (s *Store) GetMilestone(_ context.Context, id int64) (storage.MilestoneRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.milestones[id]
	if !ok {
		return storage.MilestoneRecord{}, service.NewNotFoundError("milestone record", fmtID(id))
	}
	return rec, nil
}

func (s *Store) GetMilestoneByExternalID(_ context.Context, externalID string) (storage.MilestoneRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.milestones {
		if rec.ExternalID == externalID {
			return rec, nil
		}
	}
	return storage.MilestoneRecord{}, service.NewNotFoundError("milestone record", externalID)
}

func (s *Store) ListMilestones(_ context.Context, projectExternalID string) ([]storage.MilestoneRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.MilestoneRecord
	for _, rec := range s.milestones {
		if rec.ProjectID == projectExternalID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (s *Store) DeleteMilestone(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.milestones[id]; !ok {
		return service.NewNotFoundError("milestone record", fmtID(id))
	}
	delete(s.milestones, id)
	return nil
}

func fmtID(id int64) string {
	return strconv.FormatInt(id, 10)
}
