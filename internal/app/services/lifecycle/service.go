// Package lifecycle is the workflow façade: every project and milestone
// transition goes through here. The adapter is tried first; if it is
// unreachable the mutation lands in the local shadow store instead.
//
// The two stores are not reconciled. A successful fallback leaves the adapter
// on its old raw state, so reads through the adapter keep showing the prior
// workflow state while the shadow store shows the new one. That divergence is
// inherited, documented behavior; the stores sit behind interfaces so a
// reconciliation job can be added later without touching call sites.
package lifecycle

import (
	"context"
	"strings"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/domain/milestone"
	"github.com/seda-works/marketplace_layer/internal/app/domain/project"
	"github.com/seda-works/marketplace_layer/internal/app/metrics"
	"github.com/seda-works/marketplace_layer/internal/app/services/scopedraft"
	"github.com/seda-works/marketplace_layer/internal/app/storage"
	"github.com/seda-works/marketplace_layer/pkg/logger"
)

// Remote is the slice of the adapter client that workflow mutations need.
type Remote interface {
	CreateProject(ctx context.Context, p project.Project) (project.Project, error)
	AssignConsultant(ctx context.Context, projectID, developerID string) error
	ApproveProposal(ctx context.Context, projectID string) error
	RejectProposal(ctx context.Context, projectID, reason string) error
	ApproveScope(ctx context.Context, projectID string) error
	RejectScope(ctx context.Context, projectID, reason string) error
	AssignTeam(ctx context.Context, projectID string, assignments map[string]string) error
	MarkCompleted(ctx context.Context, projectID string) error
	SubmitTaskForReview(ctx context.Context, projectID, milestoneID, docs string) error
	CompleteTask(ctx context.Context, projectID, milestoneID string) error
	RejectTask(ctx context.Context, projectID, milestoneID, reason string) error
	PayMilestone(ctx context.Context, projectID, milestoneID string) error
}

// Service drives the project/milestone workflow.
type Service struct {
	remote     Remote
	projects   storage.ProjectStore
	milestones storage.MilestoneStore
	drafts     *scopedraft.Service
	log        *logger.Logger
}

// New constructs the lifecycle service.
func New(remote Remote, projects storage.ProjectStore, milestones storage.MilestoneStore, drafts *scopedraft.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("lifecycle")
	}
	return &Service{
		remote:     remote,
		projects:   projects,
		milestones: milestones,
		drafts:     drafts,
		log:        log,
	}
}

// Describe advertises the service for the composition root's inventory.
func (s *Service) Describe() service.Descriptor {
	return service.Descriptor{
		Name:         "lifecycle",
		Layer:        service.LayerWorkflow,
		Capabilities: []string{"proposal", "scope", "team", "submission", "settlement"},
	}
}

// SubmitProposal registers a client's project proposal. On fallback the
// shadow record starts in the pending state a fresh proposal derives to.
func (s *Service) SubmitProposal(ctx context.Context, p project.Project) (project.Project, error) {
	var fields []service.FieldError
	if strings.TrimSpace(p.Title) == "" {
		fields = append(fields, service.FieldError{Field: "title", Message: "is required"})
	}
	if strings.TrimSpace(p.ClientID) == "" {
		fields = append(fields, service.FieldError{Field: "client_id", Message: "is required"})
	}
	if len(fields) > 0 {
		return project.Project{}, service.NewValidationErrors(fields...)
	}

	created, err := s.remote.CreateProject(ctx, p)
	if err == nil {
		return created, nil
	}
	if !service.IsRemoteUnavailable(err) {
		return project.Project{}, err
	}

	s.warnFallback("submit_proposal", p.Title, err)
	rec, ferr := s.projects.CreateProject(ctx, storage.ProjectRecord{
		Title:           p.Title,
		Summary:         p.Summary,
		Description:     p.Description,
		URL:             p.URL,
		BudgetRef:       p.BudgetRef,
		DeliveryTimeRef: p.DeliveryTimeRef,
		DeliveryDate:    p.DeliveryDate,
		State:           project.StateProposalPending,
		ClientID:        p.ClientID,
	})
	if ferr != nil {
		return project.Project{}, ferr
	}
	p.ExternalID = "" // no adapter identity until the remote write lands
	p.CreatedAt = rec.CreatedAt
	return p, nil
}

// AssignConsultant records the coordinator assignment.
func (s *Service) AssignConsultant(ctx context.Context, projectID, developerID string) error {
	if strings.TrimSpace(developerID) == "" {
		return service.RequiredError("developer_id")
	}
	err := s.remote.AssignConsultant(ctx, projectID, developerID)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("assign_consultant", projectID, err)
	return s.fallbackProject(ctx, projectID, project.StateWaitingForProposalApproval, "", func(rec *storage.ProjectRecord) {
		rec.ConsultantID = developerID
	})
}

// ApproveProposal records the consultant accepting the proposal and moving on
// to scoping.
func (s *Service) ApproveProposal(ctx context.Context, projectID string) error {
	err := s.remote.ApproveProposal(ctx, projectID)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("approve_proposal", projectID, err)
	return s.fallbackProject(ctx, projectID, project.StateScopingInProgress, "", nil)
}

// RejectProposal records the consultant rejecting the proposal.
func (s *Service) RejectProposal(ctx context.Context, projectID, reason string) error {
	err := s.remote.RejectProposal(ctx, projectID, reason)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("reject_proposal", projectID, err)
	return s.fallbackProject(ctx, projectID, project.StateProposalRejected, reason, nil)
}

// SubmitScope publishes the session's draft as the project's scope. There is
// no shadow fallback for scope submission: milestones only exist remotely
// until published, so a failed flush simply retains the draft.
func (s *Service) SubmitScope(ctx context.Context, sessionID string) ([]milestone.Milestone, error) {
	return s.drafts.Flush(ctx, sessionID)
}

// AcceptScope records the client accepting the proposed scope.
func (s *Service) AcceptScope(ctx context.Context, projectID string) error {
	err := s.remote.ApproveScope(ctx, projectID)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("accept_scope", projectID, err)
	return s.fallbackProject(ctx, projectID, project.StateWaitingForTeamAssignment, "", nil)
}

// RejectScope sends the scope back to the consultant.
func (s *Service) RejectScope(ctx context.Context, projectID, reason string) error {
	err := s.remote.RejectScope(ctx, projectID, reason)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("reject_scope", projectID, err)
	return s.fallbackProject(ctx, projectID, project.StateScopingInProgress, reason, nil)
}

// AssignTeam records milestone-to-developer assignments and moves the project
// into progress.
func (s *Service) AssignTeam(ctx context.Context, projectID string, assignments map[string]string) error {
	if len(assignments) == 0 {
		return service.RequiredError("assignments")
	}
	err := s.remote.AssignTeam(ctx, projectID, assignments)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("assign_team", projectID, err)

	if ferr := s.fallbackProject(ctx, projectID, project.StateInProgress, "", nil); ferr != nil {
		return ferr
	}
	for milestoneID, developerID := range assignments {
		devID := developerID
		if ferr := s.fallbackMilestone(ctx, projectID, milestoneID, "assign_team", milestone.StateInProgress,
			func(rec *storage.MilestoneRecord) { rec.DeveloperID = devID },
			milestone.StateWaitingDeveloperAssignment, milestone.StateCreating); ferr != nil {
			return ferr
		}
	}
	return nil
}

// SubmitMilestoneForReview hands milestone work to the client, attaching the
// developer's documentation links.
func (s *Service) SubmitMilestoneForReview(ctx context.Context, projectID, milestoneID, docs string) error {
	err := s.remote.SubmitTaskForReview(ctx, projectID, milestoneID, docs)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("submit_milestone_for_review", milestoneID, err)
	return s.fallbackMilestone(ctx, projectID, milestoneID, "submit_milestone_for_review",
		milestone.StateWaitingClientAcceptSubmission,
		func(rec *storage.MilestoneRecord) { rec.Docs = docs },
		milestone.StateInProgress, milestone.StateSubmissionRejected)
}

// AcceptSubmission records the client accepting a milestone submission.
func (s *Service) AcceptSubmission(ctx context.Context, projectID, milestoneID string) error {
	err := s.remote.CompleteTask(ctx, projectID, milestoneID)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("accept_submission", milestoneID, err)
	return s.fallbackMilestone(ctx, projectID, milestoneID, "accept_submission",
		milestone.StateCompleted, nil,
		milestone.StateWaitingClientAcceptSubmission)
}

// RejectSubmission records the client rejecting a milestone submission.
func (s *Service) RejectSubmission(ctx context.Context, projectID, milestoneID, reason string) error {
	err := s.remote.RejectTask(ctx, projectID, milestoneID, reason)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("reject_submission", milestoneID, err)
	return s.fallbackMilestone(ctx, projectID, milestoneID, "reject_submission",
		milestone.StateSubmissionRejected, nil,
		milestone.StateWaitingClientAcceptSubmission)
}

// MarkMilestonePaid triggers settlement for an accepted milestone.
func (s *Service) MarkMilestonePaid(ctx context.Context, projectID, milestoneID string) error {
	err := s.remote.PayMilestone(ctx, projectID, milestoneID)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("mark_milestone_paid", milestoneID, err)
	return s.fallbackMilestone(ctx, projectID, milestoneID, "mark_milestone_paid",
		milestone.StateCompleted, nil,
		milestone.StateCompleted, milestone.StateWaitingClientAcceptSubmission)
}

// MarkCompleted records the whole project as completed.
func (s *Service) MarkCompleted(ctx context.Context, projectID string) error {
	err := s.remote.MarkCompleted(ctx, projectID)
	if err == nil || !service.IsRemoteUnavailable(err) {
		return err
	}
	s.warnFallback("mark_completed", projectID, err)
	return s.fallbackProject(ctx, projectID, project.StateCompleted, "", nil)
}

func (s *Service) warnFallback(operation, id string, err error) {
	metrics.RecordFallback(operation)
	s.log.WithError(err).
		WithField("operation", operation).
		WithField("id", id).
		Warn("adapter unreachable, recording transition in shadow store")
}

// fallbackProject upserts the shadow project record by external id, setting
// the new workflow state directly. mutate, when non-nil, applies additional
// field changes.
func (s *Service) fallbackProject(ctx context.Context, externalID string, state project.State, reason string, mutate func(*storage.ProjectRecord)) error {
	rec, err := s.projects.GetProjectByExternalID(ctx, externalID)
	if service.IsNotFound(err) {
		rec = storage.ProjectRecord{ExternalID: externalID}
		rec.State = state
		rec.RejectionReason = reason
		if mutate != nil {
			mutate(&rec)
		}
		_, cerr := s.projects.CreateProject(ctx, rec)
		return cerr
	}
	if err != nil {
		return err
	}

	rec.State = state
	if reason != "" {
		rec.RejectionReason = reason
	}
	if mutate != nil {
		mutate(&rec)
	}
	_, err = s.projects.UpdateProject(ctx, rec)
	return err
}

// fallbackMilestone upserts the shadow milestone record. When the record
// already exists its current state must be one of the allowed source states
// for this operation; anything else is a sequencing bug surfaced as an
// unsupported transition.
func (s *Service) fallbackMilestone(ctx context.Context, projectID, externalID, operation string, state milestone.State, mutate func(*storage.MilestoneRecord), allowedFrom ...milestone.State) error {
	rec, err := s.milestones.GetMilestoneByExternalID(ctx, externalID)
	if service.IsNotFound(err) {
		rec = storage.MilestoneRecord{ExternalID: externalID, ProjectID: projectID}
		rec.State = state
		if mutate != nil {
			mutate(&rec)
		}
		_, cerr := s.milestones.CreateMilestone(ctx, rec)
		return cerr
	}
	if err != nil {
		return err
	}

	allowed := false
	for _, from := range allowedFrom {
		if rec.State == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return service.NewUnsupportedTransitionError(operation, string(rec.State))
	}

	rec.State = state
	if mutate != nil {
		mutate(&rec)
	}
	_, err = s.milestones.UpdateMilestone(ctx, rec)
	return err
}
