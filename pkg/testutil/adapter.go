// Package testutil provides common testing utilities, including an in-memory
// simulation of the adapter.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/domain/milestone"
	"github.com/seda-works/marketplace_layer/internal/app/domain/party"
	"github.com/seda-works/marketplace_layer/internal/app/domain/project"
)

type failPlan struct {
	err  error
	skip int
}

// FakeAdapter simulates the remote system in memory: raw statuses move the
// way the adapter moves them, and individual operations can be made to fail
// to exercise fallback paths. It satisfies the Remote interfaces of the
// lifecycle, projects, and scopedraft services.
type FakeAdapter struct {
	mu         sync.Mutex
	projects   map[string]project.Project
	milestones map[string]milestone.Milestone
	clients    []party.Client
	developers []party.Developer
	nextID     int
	failures   map[string]*failPlan
	calls      map[string]int
}

// NewFakeAdapter creates an empty fake adapter.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		projects:   make(map[string]project.Project),
		milestones: make(map[string]milestone.Milestone),
		failures:   make(map[string]*failPlan),
		calls:      make(map[string]int),
	}
}

// FailOp makes every subsequent call to the named operation return err.
func (f *FakeAdapter) FailOp(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = &failPlan{err: err}
}

// FailOpAfter lets the named operation succeed n times, then fail with err.
func (f *FakeAdapter) FailOpAfter(op string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = &failPlan{err: err, skip: n}
}

// Unavailable is a convenient RemoteUnavailableError for failure plans.
func Unavailable(op string) error {
	return service.NewRemoteUnavailableError(op, fmt.Errorf("connection refused"))
}

func (f *FakeAdapter) checkLocked(op string) error {
	f.calls[op]++
	plan, ok := f.failures[op]
	if !ok {
		return nil
	}
	if f.calls[op] > plan.skip {
		return plan.err
	}
	return nil
}

// CallCount reports how many times the named operation was invoked.
func (f *FakeAdapter) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeAdapter) nextIDLocked(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// AddClient seeds a client into the roster.
func (f *FakeAdapter) AddClient(c party.Client) party.Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ExternalID == "" {
		c.ExternalID = f.nextIDLocked("cli")
	}
	f.clients = append(f.clients, c)
	return c
}

// AddDeveloper seeds a developer into the roster.
func (f *FakeAdapter) AddDeveloper(d party.Developer) party.Developer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ExternalID == "" {
		d.ExternalID = f.nextIDLocked("dev")
	}
	f.developers = append(f.developers, d)
	return d
}

// SeedProject stores a project as-is, assigning an id when absent.
func (f *FakeAdapter) SeedProject(p project.Project) project.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ExternalID == "" {
		p.ExternalID = f.nextIDLocked("prj")
	}
	f.projects[p.ExternalID] = p
	return p
}

// SeedMilestone stores a milestone as-is, assigning an id when absent.
func (f *FakeAdapter) SeedMilestone(m milestone.Milestone) milestone.Milestone {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ExternalID == "" {
		m.ExternalID = f.nextIDLocked("mst")
	}
	f.milestones[m.ExternalID] = m
	return m
}

// SnapshotProject returns the current raw project record.
func (f *FakeAdapter) SnapshotProject(id string) (project.Project, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	return p, ok
}

// SnapshotMilestone returns the current raw milestone record.
func (f *FakeAdapter) SnapshotMilestone(id string) (milestone.Milestone, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.milestones[id]
	return m, ok
}

// --- reads -------------------------------------------------------------------

func (f *FakeAdapter) Project(_ context.Context, id string) (project.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked("Project"); err != nil {
		return project.Project{}, err
	}
	p, ok := f.projects[id]
	if !ok {
		return project.Project{}, service.NewNotFoundError("project", id)
	}
	return p, nil
}

func (f *FakeAdapter) ProjectsByClient(_ context.Context, clientID string) ([]project.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked("ProjectsByClient"); err != nil {
		return nil, err
	}
	var out []project.Project
	for _, p := range f.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	sortProjects(out)
	return out, nil
}

func (f *FakeAdapter) ProjectsByDeveloper(_ context.Context, developerID string) ([]project.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked("ProjectsByDeveloper"); err != nil {
		return nil, err
	}
	// The adapter returns the superset; the aggregator narrows it.
	out := make([]project.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}

func (f *FakeAdapter) Milestones(_ context.Context, projectID string) ([]milestone.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked("Milestones"); err != nil {
		return nil, err
	}
	var out []milestone.Milestone
	for _, m := range f.milestones {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (f *FakeAdapter) Clients(_ context.Context) ([]party.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked("Clients"); err != nil {
		return nil, err
	}
	return append([]party.Client(nil), f.clients...), nil
}

func (f *FakeAdapter) Developers(_ context.Context) ([]party.Developer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked("Developers"); err != nil {
		return nil, err
	}
	return append([]party.Developer(nil), f.developers...), nil
}

// --- project workflow --------------------------------------------------------

func (f *FakeAdapter) CreateProject(_ context.Context, p project.Project) (project.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked("CreateProject"); err != nil {
		return project.Project{}, err
	}
	p.ExternalID = f.nextIDLocked("prj")
	f.projects[p.ExternalID] = p
	return p, nil
}

func (f *FakeAdapter) AssignConsultant(_ context.Context, projectID, developerID string) error {
	return f.mutateProject("AssignConsultant", projectID, func(p *project.Project) {
		p.ConsultantID = developerID
		p.Status = project.StatusDeployed
	})
}

func (f *FakeAdapter) ApproveProposal(_ context.Context, projectID string) error {
	return f.mutateProject("ApproveProposal", projectID, func(p *project.Project) {
		p.Status = project.StatusDeployed
	})
}

func (f *FakeAdapter) RejectProposal(_ context.Context, projectID, reason string) error {
	return f.mutateProject("RejectProposal", projectID, func(p *project.Project) {
		p.Status = project.StatusRejectedByCoordinator
		p.ProposalRejectionReason = reason
	})
}

func (f *FakeAdapter) ProposeScope(_ context.Context, projectID string) error {
	return f.mutateProject("ProposeScope", projectID, func(p *project.Project) {
		p.Status = project.StatusScopeProposed
	})
}

func (f *FakeAdapter) ApproveScope(_ context.Context, projectID string) error {
	return f.mutateProject("ApproveScope", projectID, func(p *project.Project) {
		p.Status = project.StatusScopeAccepted
	})
}

func (f *FakeAdapter) RejectScope(_ context.Context, projectID, reason string) error {
	return f.mutateProject("RejectScope", projectID, func(p *project.Project) {
		p.Status = project.StatusDeployed
		p.ProposalRejectionReason = reason
	})
}

func (f *FakeAdapter) AssignTeam(_ context.Context, projectID string, assignments map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked("AssignTeam"); err != nil {
		return err
	}
	p, ok := f.projects[projectID]
	if !ok {
		return service.NewNotFoundError("project", projectID)
	}
	p.Status = project.StatusTeamAssigned
	f.projects[projectID] = p
	for milestoneID, developerID := range assignments {
		m, ok := f.milestones[milestoneID]
		if !ok {
			return service.NewNotFoundError("milestone", milestoneID)
		}
		m.DeveloperID = developerID
		m.Status = milestone.StatusTaskInProgress
		f.milestones[milestoneID] = m
	}
	return nil
}

func (f *FakeAdapter) MarkCompleted(_ context.Context, projectID string) error {
	return f.mutateProject("MarkCompleted", projectID, func(p *project.Project) {
		p.Status = project.StatusCompleted
	})
}

// --- milestone workflow ------------------------------------------------------

func (f *FakeAdapter) CreateMilestone(_ context.Context, projectID string, prop milestone.Proposal, order int) (milestone.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked("CreateMilestone"); err != nil {
		return milestone.Milestone{}, err
	}
	if _, ok := f.projects[projectID]; !ok {
		return milestone.Milestone{}, service.NewNotFoundError("project", projectID)
	}
	m := milestone.Milestone{
		ExternalID:      f.nextIDLocked("mst"),
		ProjectID:       projectID,
		Title:           prop.Title,
		Description:     prop.Description,
		Budget:          prop.Budget,
		DeliveryTimeRef: prop.DeliveryTimeRef,
		DeliveryDate:    prop.DeliveryDate,
		DisplayOrder:    order,
		Status:          milestone.StatusPending,
		Docs:            prop.Docs,
	}
	f.milestones[m.ExternalID] = m
	return m, nil
}

func (f *FakeAdapter) SubmitTaskForReview(_ context.Context, _, milestoneID, docs string) error {
	return f.mutateMilestone("SubmitTaskForReview", milestoneID, func(m *milestone.Milestone) {
		m.Status = milestone.StatusInReview
		m.Docs = docs
	})
}

func (f *FakeAdapter) CompleteTask(_ context.Context, _, milestoneID string) error {
	return f.mutateMilestone("CompleteTask", milestoneID, func(m *milestone.Milestone) {
		m.Status = milestone.StatusCompleted
	})
}

func (f *FakeAdapter) RejectTask(_ context.Context, _, milestoneID, _ string) error {
	return f.mutateMilestone("RejectTask", milestoneID, func(m *milestone.Milestone) {
		m.Status = milestone.StatusRejected
	})
}

func (f *FakeAdapter) PayMilestone(_ context.Context, _, milestoneID string) error {
	return f.mutateMilestone("PayMilestone", milestoneID, func(m *milestone.Milestone) {
		m.Status = milestone.StatusCompleted
	})
}

func (f *FakeAdapter) mutateProject(op, projectID string, mutate func(*project.Project)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked(op); err != nil {
		return err
	}
	p, ok := f.projects[projectID]
	if !ok {
		return service.NewNotFoundError("project", projectID)
	}
	mutate(&p)
	f.projects[projectID] = p
	return nil
}

func (f *FakeAdapter) mutateMilestone(op, milestoneID string, mutate func(*milestone.Milestone)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkLocked(op); err != nil {
		return err
	}
	m, ok := f.milestones[milestoneID]
	if !ok {
		return service.NewNotFoundError("milestone", milestoneID)
	}
	mutate(&m)
	f.milestones[milestoneID] = m
	return nil
}

func sortProjects(ps []project.Project) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ExternalID < ps[j].ExternalID })
}
