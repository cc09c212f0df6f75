// Package projects aggregates adapter reads into the denormalized project
// views the rest of the application consumes. The adapter cannot join, so
// every view is assembled here from independent fetches.
package projects

import (
	"context"
	"sort"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/domain/milestone"
	"github.com/seda-works/marketplace_layer/internal/app/domain/party"
	"github.com/seda-works/marketplace_layer/internal/app/domain/project"
	"github.com/seda-works/marketplace_layer/internal/app/metrics"
	"github.com/seda-works/marketplace_layer/pkg/logger"
)

// Remote is the slice of the adapter client that aggregation needs.
type Remote interface {
	Project(ctx context.Context, id string) (project.Project, error)
	ProjectsByClient(ctx context.Context, clientID string) ([]project.Project, error)
	ProjectsByDeveloper(ctx context.Context, developerID string) ([]project.Project, error)
	Milestones(ctx context.Context, projectID string) ([]milestone.Milestone, error)
	Clients(ctx context.Context) ([]party.Client, error)
	Developers(ctx context.Context) ([]party.Developer, error)
}

// MilestoneView is a milestone with its derived state and resolved developer.
type MilestoneView struct {
	milestone.Milestone
	State     milestone.State
	Developer *party.Developer
}

// ProjectView is a project with its derived state and resolved relations. A
// reference the rosters cannot resolve is nil: partial views are preferred to
// failing the whole read.
type ProjectView struct {
	project.Project
	State      project.State
	Client     *party.Client
	Consultant *party.Developer
	Milestones []MilestoneView
}

// Filter narrows ListProjects. At most one of the fields is honored, client
// first.
type Filter struct {
	ClientID    string
	DeveloperID string
}

// Service assembles project views from the adapter.
type Service struct {
	remote Remote
	log    *logger.Logger
}

// New constructs the aggregator.
func New(remote Remote, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("projects")
	}
	return &Service{remote: remote, log: log}
}

// Describe advertises the service for the composition root's inventory.
func (s *Service) Describe() service.Descriptor {
	return service.Descriptor{
		Name:         "projects",
		Layer:        service.LayerRead,
		Capabilities: []string{"get", "list"},
	}
}

// GetProject assembles one project view. hasDraft tells derivation whether
// the calling session holds an open scope draft for this project. The roster
// fetches are O(all clients + all developers) per call; the adapter offers
// nothing better.
func (s *Service) GetProject(ctx context.Context, id string, hasDraft bool) (ProjectView, error) {
	p, err := s.remote.Project(ctx, id)
	if err != nil {
		return ProjectView{}, err
	}

	milestones, err := s.remote.Milestones(ctx, p.ExternalID)
	if err != nil {
		return ProjectView{}, err
	}
	clients, err := s.remote.Clients(ctx)
	if err != nil {
		return ProjectView{}, err
	}
	developers, err := s.remote.Developers(ctx)
	if err != nil {
		return ProjectView{}, err
	}

	return s.buildView(p, milestones, clients, developers, hasDraft), nil
}

// ListProjects assembles views for every project matching the filter, most
// recently created first. Without a filter the result is the union of every
// client's and every developer's projects, de-duplicated by id.
func (s *Service) ListProjects(ctx context.Context, f Filter) ([]ProjectView, error) {
	clients, err := s.remote.Clients(ctx)
	if err != nil {
		return nil, err
	}
	developers, err := s.remote.Developers(ctx)
	if err != nil {
		return nil, err
	}

	var raw []project.Project
	switch {
	case f.ClientID != "":
		raw, err = s.remote.ProjectsByClient(ctx, f.ClientID)
		if err != nil {
			return nil, err
		}
	case f.DeveloperID != "":
		candidates, err := s.remote.ProjectsByDeveloper(ctx, f.DeveloperID)
		if err != nil {
			return nil, err
		}
		raw, err = s.narrowToParticipant(ctx, candidates, f.DeveloperID)
		if err != nil {
			return nil, err
		}
	default:
		raw, err = s.unionAll(ctx, clients, developers)
		if err != nil {
			return nil, err
		}
	}

	views := make([]ProjectView, 0, len(raw))
	for _, p := range raw {
		milestones, err := s.remote.Milestones(ctx, p.ExternalID)
		if err != nil {
			return nil, err
		}
		views = append(views, s.buildView(p, milestones, clients, developers, false))
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

// narrowToParticipant keeps projects where the developer is the consultant or
// holds at least one assigned milestone.
func (s *Service) narrowToParticipant(ctx context.Context, candidates []project.Project, developerID string) ([]project.Project, error) {
	var out []project.Project
	for _, p := range candidates {
		if p.ConsultantID == developerID {
			out = append(out, p)
			continue
		}
		milestones, err := s.remote.Milestones(ctx, p.ExternalID)
		if err != nil {
			return nil, err
		}
		for _, m := range milestones {
			if m.DeveloperID == developerID {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (s *Service) unionAll(ctx context.Context, clients []party.Client, developers []party.Developer) ([]project.Project, error) {
	seen := make(map[string]bool)
	var out []project.Project

	for _, cl := range clients {
		ps, err := s.remote.ProjectsByClient(ctx, cl.ExternalID)
		if err != nil {
			return nil, err
		}
		for _, p := range ps {
			if !seen[p.ExternalID] {
				seen[p.ExternalID] = true
				out = append(out, p)
			}
		}
	}
	for _, d := range developers {
		ps, err := s.remote.ProjectsByDeveloper(ctx, d.ExternalID)
		if err != nil {
			return nil, err
		}
		for _, p := range ps {
			if !seen[p.ExternalID] {
				seen[p.ExternalID] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (s *Service) buildView(p project.Project, milestones []milestone.Milestone, clients []party.Client, developers []party.Developer, hasDraft bool) ProjectView {
	view := ProjectView{
		Project:    p,
		State:      project.DeriveState(p, hasDraft),
		Client:     findClient(clients, p.ClientID),
		Consultant: findDeveloper(developers, p.ConsultantID),
	}
	if view.State == project.StateInvalid {
		metrics.RecordUnmappedState("project")
		s.log.WithField("project_id", p.ExternalID).
			WithField("raw_state", string(p.Status)).
			Warn("project raw state did not map to a workflow state")
	}

	view.Milestones = make([]MilestoneView, len(milestones))
	for i, m := range milestones {
		mv := MilestoneView{
			Milestone: m,
			State:     milestone.DeriveState(m),
			Developer: findDeveloper(developers, m.DeveloperID),
		}
		if mv.State == milestone.StateInvalid {
			metrics.RecordUnmappedState("milestone")
			s.log.WithField("milestone_id", m.ExternalID).
				WithField("raw_state", string(m.Status)).
				Warn("milestone raw state did not map to a workflow state")
		}
		view.Milestones[i] = mv
	}
	return view
}

func findClient(roster []party.Client, id string) *party.Client {
	if id == "" {
		return nil
	}
	for i := range roster {
		if roster[i].ExternalID == id {
			return &roster[i]
		}
	}
	return nil
}

func findDeveloper(roster []party.Developer, id string) *party.Developer {
	if id == "" {
		return nil
	}
	for i := range roster {
		if roster[i].ExternalID == id {
			return &roster[i]
		}
	}
	return nil
}
