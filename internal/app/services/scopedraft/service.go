package scopedraft

import (
	"context"
	"fmt"
	"strings"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/domain/milestone"
	"github.com/seda-works/marketplace_layer/internal/app/metrics"
	"github.com/seda-works/marketplace_layer/pkg/logger"
)

// Remote is the slice of the adapter client that draft publication needs.
type Remote interface {
	CreateMilestone(ctx context.Context, projectID string, p milestone.Proposal, order int) (milestone.Milestone, error)
	ProposeScope(ctx context.Context, projectID string) error
}

// Service manages scope drafts and their publication to the adapter.
type Service struct {
	drafts DraftStore
	remote Remote
	log    *logger.Logger
}

// New constructs a scope draft service.
func New(drafts DraftStore, remote Remote, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("scopedraft")
	}
	return &Service{drafts: drafts, remote: remote, log: log}
}

// Describe advertises the service for the composition root's inventory.
func (s *Service) Describe() service.Descriptor {
	return service.Descriptor{
		Name:         "scopedraft",
		Layer:        service.LayerWorkflow,
		Capabilities: []string{"draft", "publish_scope"},
	}
}

// Start opens a draft for the given project. A consultant may scope only one
// project at a time: an open draft for a different project is a conflict,
// while restarting the same project's draft returns it unchanged.
func (s *Service) Start(ctx context.Context, sessionID, projectID string) (Draft, error) {
	if strings.TrimSpace(projectID) == "" {
		return Draft{}, service.RequiredError("project_id")
	}

	existing, ok, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return Draft{}, err
	}
	if ok && existing.ProjectID != projectID {
		return Draft{}, service.NewConflictError(
			fmt.Sprintf("a scope draft for project %s is already open in this session", existing.ProjectID))
	}
	if ok {
		return existing, nil
	}

	d := Draft{ProjectID: projectID}
	if err := s.drafts.Put(ctx, sessionID, d); err != nil {
		return Draft{}, err
	}
	s.log.WithField("project_id", projectID).Info("scope draft started")
	return d, nil
}

// Get returns the session's draft, if any.
func (s *Service) Get(ctx context.Context, sessionID string) (Draft, bool, error) {
	return s.drafts.Get(ctx, sessionID)
}

// HasDraftFor reports whether the session holds an open draft for projectID.
// State derivation uses this to distinguish scoping-in-progress from
// waiting-for-approval.
func (s *Service) HasDraftFor(ctx context.Context, sessionID, projectID string) (bool, error) {
	d, ok, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return ok && d.ProjectID == projectID, nil
}

// Append adds a milestone proposal to the end of the draft.
func (s *Service) Append(ctx context.Context, sessionID string, p milestone.Proposal) (Draft, error) {
	if strings.TrimSpace(p.Title) == "" {
		return Draft{}, service.RequiredError("title")
	}

	d, ok, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return Draft{}, err
	}
	if !ok {
		return Draft{}, service.NewNotFoundError("scope draft", "")
	}

	d.Proposals = append(d.Proposals, p)
	if err := s.drafts.Put(ctx, sessionID, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Swap exchanges the proposals at positions i and j. Pairwise exchange is the
// only reordering primitive; there is no arbitrary move.
func (s *Service) Swap(ctx context.Context, sessionID string, i, j int) (Draft, error) {
	d, ok, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return Draft{}, err
	}
	if !ok {
		return Draft{}, service.NewNotFoundError("scope draft", "")
	}
	if i < 0 || i >= len(d.Proposals) || j < 0 || j >= len(d.Proposals) {
		return Draft{}, service.NewConflictError(
			fmt.Sprintf("milestone positions %d and %d are out of range (draft has %d)", i, j, len(d.Proposals)))
	}

	d.Proposals[i], d.Proposals[j] = d.Proposals[j], d.Proposals[i]
	if err := s.drafts.Put(ctx, sessionID, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Remove deletes the proposal at position i. Later positions shift down, so
// callers must not hold indices across calls.
func (s *Service) Remove(ctx context.Context, sessionID string, i int) (Draft, error) {
	d, ok, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return Draft{}, err
	}
	if !ok {
		return Draft{}, service.NewNotFoundError("scope draft", "")
	}
	if i < 0 || i >= len(d.Proposals) {
		return Draft{}, service.NewConflictError(
			fmt.Sprintf("milestone position %d is out of range (draft has %d)", i, len(d.Proposals)))
	}

	d.Proposals = append(d.Proposals[:i], d.Proposals[i+1:]...)
	if err := s.drafts.Put(ctx, sessionID, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Flush publishes the draft: every proposal becomes a remote milestone, in
// order, and the scope is proposed for client validation. The draft is
// cleared only when everything succeeded. On any failure the stored draft is
// left fully intact for retry — though the adapter may then already hold a
// prefix of the milestones, which a retry will recreate. That partial-prefix
// hazard is inherited behavior, not a bug to fix here.
func (s *Service) Flush(ctx context.Context, sessionID string) ([]milestone.Milestone, error) {
	d, ok, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, service.NewNotFoundError("scope draft", "")
	}
	if len(d.Proposals) == 0 {
		return nil, service.NewValidationError("milestones", "at least one milestone is required")
	}

	created := make([]milestone.Milestone, 0, len(d.Proposals))
	for i, p := range d.Proposals {
		ms, err := s.remote.CreateMilestone(ctx, d.ProjectID, p, i)
		if err != nil {
			metrics.RecordDraftFlush(false)
			s.log.WithError(err).
				WithField("project_id", d.ProjectID).
				WithField("position", i).
				Warn("scope flush aborted, draft retained")
			return nil, err
		}
		created = append(created, ms)
	}

	if err := s.remote.ProposeScope(ctx, d.ProjectID); err != nil {
		metrics.RecordDraftFlush(false)
		s.log.WithError(err).WithField("project_id", d.ProjectID).Warn("scope proposal failed, draft retained")
		return nil, err
	}

	if err := s.drafts.Delete(ctx, sessionID); err != nil {
		return nil, err
	}
	metrics.RecordDraftFlush(true)
	s.log.WithField("project_id", d.ProjectID).
		WithField("milestones", len(created)).
		Info("scope published")
	return created, nil
}

// Abandon discards the session's draft without publishing it.
func (s *Service) Abandon(ctx context.Context, sessionID string) error {
	return s.drafts.Delete(ctx, sessionID)
}
