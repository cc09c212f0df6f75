package lifecycle

import (
	"context"
	"testing"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/domain/milestone"
	"github.com/seda-works/marketplace_layer/internal/app/domain/party"
	"github.com/seda-works/marketplace_layer/internal/app/domain/project"
	"github.com/seda-works/marketplace_layer/internal/app/services/projects"
	"github.com/seda-works/marketplace_layer/internal/app/services/scopedraft"
	"github.com/seda-works/marketplace_layer/internal/app/storage"
	"github.com/seda-works/marketplace_layer/internal/app/storage/memory"
	"github.com/seda-works/marketplace_layer/pkg/testutil"
)

type fixture struct {
	adapter *testutil.FakeAdapter
	shadow  *memory.Store
	drafts  *scopedraft.Service
	svc     *Service
	reads   *projects.Service
}

func newFixture() *fixture {
	adapter := testutil.NewFakeAdapter()
	shadow := memory.New()
	drafts := scopedraft.New(scopedraft.NewMemoryStore(), adapter, nil)
	return &fixture{
		adapter: adapter,
		shadow:  shadow,
		drafts:  drafts,
		svc:     New(adapter, shadow, shadow, drafts, nil),
		reads:   projects.New(adapter, nil),
	}
}

func TestSubmitProposal_Validation(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.SubmitProposal(context.Background(), project.Project{})
	if !service.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if fx.adapter.CallCount("CreateProject") != 0 {
		t.Fatal("invalid proposal must not reach the adapter")
	}
}

func TestSubmitProposal_RemoteSuccess(t *testing.T) {
	fx := newFixture()
	cl := fx.adapter.AddClient(party.Client{Name: "Acme"})

	created, err := fx.svc.SubmitProposal(context.Background(), project.Project{
		Title:    "storefront",
		ClientID: cl.ExternalID,
	})
	if err != nil {
		t.Fatalf("submit proposal: %v", err)
	}
	if created.ExternalID == "" {
		t.Fatal("remote creation should assign an external id")
	}

	view, err := fx.reads.GetProject(context.Background(), created.ExternalID, false)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if view.State != project.StateProposalPending {
		t.Fatalf("fresh proposal should be pending, got %q", view.State)
	}
}

func TestSubmitProposal_FallbackWritesShadowRecord(t *testing.T) {
	fx := newFixture()
	fx.adapter.FailOp("CreateProject", testutil.Unavailable("create project"))

	created, err := fx.svc.SubmitProposal(context.Background(), project.Project{
		Title:    "storefront",
		ClientID: "cli-1",
	})
	if err != nil {
		t.Fatalf("fallback submit should succeed: %v", err)
	}
	if created.ExternalID != "" {
		t.Fatalf("shadow-only proposal must not carry an adapter id, got %q", created.ExternalID)
	}

	recs, err := fx.shadow.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("list shadow projects: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 shadow record, got %d", len(recs))
	}
	if recs[0].State != project.StateProposalPending {
		t.Fatalf("shadow record state = %q, want %q", recs[0].State, project.StateProposalPending)
	}
	if recs[0].Title != "storefront" || recs[0].ClientID != "cli-1" {
		t.Fatalf("shadow record fields not copied: %+v", recs[0])
	}
}

// A successful fallback does not touch the adapter, so adapter reads keep
// showing the old workflow state while the shadow store shows the new one.
// This pins that documented divergence.
func TestRejectProposal_FallbackDivergesFromAdapter(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	prj := fx.adapter.SeedProject(project.Project{
		Title:        "storefront",
		ConsultantID: "dev-1",
		Status:       project.StatusDeployed,
	})
	fx.adapter.FailOp("RejectProposal", testutil.Unavailable("reject proposal"))

	if err := fx.svc.RejectProposal(ctx, prj.ExternalID, "scope too vague"); err != nil {
		t.Fatalf("fallback reject should succeed: %v", err)
	}

	rec, err := fx.shadow.GetProjectByExternalID(ctx, prj.ExternalID)
	if err != nil {
		t.Fatalf("shadow record missing: %v", err)
	}
	if rec.State != project.StateProposalRejected {
		t.Fatalf("shadow state = %q, want %q", rec.State, project.StateProposalRejected)
	}
	if rec.RejectionReason != "scope too vague" {
		t.Fatalf("rejection reason not recorded: %q", rec.RejectionReason)
	}

	view, err := fx.reads.GetProject(ctx, prj.ExternalID, false)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if view.State != project.StateWaitingForProposalApproval {
		t.Fatalf("adapter read should still show the pre-fallback state, got %q", view.State)
	}
}

func TestRejectProposal_NonTransportErrorPropagates(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	err := fx.svc.RejectProposal(ctx, "prj-missing", "reason")
	if !service.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	recs, _ := fx.shadow.ListProjects(ctx)
	if len(recs) != 0 {
		t.Fatal("a non-transport error must not write to the shadow store")
	}
}

func TestAssignConsultant_RequiresDeveloper(t *testing.T) {
	fx := newFixture()
	if err := fx.svc.AssignConsultant(context.Background(), "prj-1", " "); !service.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignTeam_FallbackUpsertsMilestones(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	fx.adapter.FailOp("AssignTeam", testutil.Unavailable("assign team"))

	assignments := map[string]string{"mst-1": "dev-1", "mst-2": "dev-2"}
	if err := fx.svc.AssignTeam(ctx, "prj-1", assignments); err != nil {
		t.Fatalf("fallback assign team: %v", err)
	}

	rec, err := fx.shadow.GetProjectByExternalID(ctx, "prj-1")
	if err != nil {
		t.Fatalf("shadow project missing: %v", err)
	}
	if rec.State != project.StateInProgress {
		t.Fatalf("project state = %q, want %q", rec.State, project.StateInProgress)
	}

	for milestoneID, developerID := range assignments {
		m, err := fx.shadow.GetMilestoneByExternalID(ctx, milestoneID)
		if err != nil {
			t.Fatalf("shadow milestone %s missing: %v", milestoneID, err)
		}
		if m.State != milestone.StateInProgress || m.DeveloperID != developerID {
			t.Fatalf("milestone %s = %+v", milestoneID, m)
		}
	}
}

func TestAcceptSubmission_UnsupportedTransition(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	if _, err := fx.shadow.CreateMilestone(ctx, storage.MilestoneRecord{
		ExternalID: "mst-1",
		ProjectID:  "prj-1",
		State:      milestone.StateCompleted,
	}); err != nil {
		t.Fatalf("seed shadow milestone: %v", err)
	}
	fx.adapter.FailOp("CompleteTask", testutil.Unavailable("complete task"))

	err := fx.svc.AcceptSubmission(ctx, "prj-1", "mst-1")
	if !service.IsUnsupportedTransition(err) {
		t.Fatalf("expected unsupported transition, got %v", err)
	}
}

func TestSubmitScope_FailedFlushLeavesDraft(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	prj := fx.adapter.SeedProject(project.Project{ConsultantID: "dev-1", Status: project.StatusDeployed})

	if _, err := fx.drafts.Start(ctx, "sess", prj.ExternalID); err != nil {
		t.Fatalf("start draft: %v", err)
	}
	if _, err := fx.drafts.Append(ctx, "sess", milestone.Proposal{Title: "design"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	fx.adapter.FailOp("CreateMilestone", testutil.Unavailable("create milestone"))

	if _, err := fx.svc.SubmitScope(ctx, "sess"); !service.IsRemoteUnavailable(err) {
		t.Fatalf("expected remote unavailable, got %v", err)
	}
	if ok, _ := fx.drafts.HasDraftFor(ctx, "sess", prj.ExternalID); !ok {
		t.Fatal("draft should survive a failed scope submission")
	}
}

// Walks a project from proposal to completion through the full workflow,
// checking the derived state after each transition.
func TestFullWorkflow(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	cl := fx.adapter.AddClient(party.Client{Name: "Acme"})
	consultant := fx.adapter.AddDeveloper(party.Developer{Name: "Ada"})
	worker := fx.adapter.AddDeveloper(party.Developer{Name: "Grace"})

	created, err := fx.svc.SubmitProposal(ctx, project.Project{Title: "storefront", ClientID: cl.ExternalID})
	if err != nil {
		t.Fatalf("submit proposal: %v", err)
	}
	id := created.ExternalID
	assertState(t, fx, id, false, project.StateProposalPending)

	if err := fx.svc.AssignConsultant(ctx, id, consultant.ExternalID); err != nil {
		t.Fatalf("assign consultant: %v", err)
	}
	assertState(t, fx, id, false, project.StateWaitingForProposalApproval)

	if _, err := fx.drafts.Start(ctx, "sess", id); err != nil {
		t.Fatalf("start draft: %v", err)
	}
	assertState(t, fx, id, true, project.StateScopingInProgress)

	for _, title := range []string{"design", "build"} {
		if _, err := fx.drafts.Append(ctx, "sess", milestone.Proposal{Title: title}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if _, err := fx.drafts.Swap(ctx, "sess", 0, 1); err != nil {
		t.Fatalf("swap: %v", err)
	}

	published, err := fx.svc.SubmitScope(ctx, "sess")
	if err != nil {
		t.Fatalf("submit scope: %v", err)
	}
	if len(published) != 2 || published[0].Title != "build" || published[1].Title != "design" {
		t.Fatalf("published order should follow the swapped draft: %+v", published)
	}
	assertState(t, fx, id, false, project.StateScopeValidationNeeded)

	view, err := fx.reads.GetProject(ctx, id, false)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if len(view.Milestones) != 2 {
		t.Fatalf("expected 2 milestones in the view, got %d", len(view.Milestones))
	}
	for _, mv := range view.Milestones {
		if mv.State != milestone.StateWaitingDeveloperAssignment {
			t.Fatalf("published milestone state = %q", mv.State)
		}
	}

	if err := fx.svc.AcceptScope(ctx, id); err != nil {
		t.Fatalf("accept scope: %v", err)
	}
	assertState(t, fx, id, false, project.StateWaitingForTeamAssignment)

	first := published[0].ExternalID
	if err := fx.svc.AssignTeam(ctx, id, map[string]string{first: worker.ExternalID}); err != nil {
		t.Fatalf("assign team: %v", err)
	}
	assertState(t, fx, id, false, project.StateInProgress)

	view, err = fx.reads.GetProject(ctx, id, false)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	mv := view.Milestones[0]
	if mv.State != milestone.StateInProgress {
		t.Fatalf("assigned milestone state = %q", mv.State)
	}
	if mv.Developer == nil || mv.Developer.ExternalID != worker.ExternalID {
		t.Fatalf("milestone developer not resolved: %+v", mv.Developer)
	}

	if err := fx.svc.SubmitMilestoneForReview(ctx, id, first, "https://docs.example/handoff"); err != nil {
		t.Fatalf("submit milestone for review: %v", err)
	}
	raw, _ := fx.adapter.SnapshotMilestone(first)
	if milestone.DeriveState(raw) != milestone.StateWaitingClientAcceptSubmission {
		t.Fatalf("milestone should await client acceptance, got %q", milestone.DeriveState(raw))
	}

	if err := fx.svc.AcceptSubmission(ctx, id, first); err != nil {
		t.Fatalf("accept submission: %v", err)
	}
	if err := fx.svc.MarkMilestonePaid(ctx, id, first); err != nil {
		t.Fatalf("mark milestone paid: %v", err)
	}
	raw, _ = fx.adapter.SnapshotMilestone(first)
	if milestone.DeriveState(raw) != milestone.StateCompleted {
		t.Fatalf("paid milestone should be completed, got %q", milestone.DeriveState(raw))
	}

	if err := fx.svc.MarkCompleted(ctx, id); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	assertState(t, fx, id, false, project.StateCompleted)
}

func assertState(t *testing.T, fx *fixture, id string, hasDraft bool, want project.State) {
	t.Helper()
	view, err := fx.reads.GetProject(context.Background(), id, hasDraft)
	if err != nil {
		t.Fatalf("get project %s: %v", id, err)
	}
	if view.State != want {
		t.Fatalf("project state = %q, want %q", view.State, want)
	}
}
