package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	neturl "net/url"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/domain/project"
)

// CreateProject registers a client's project proposal with the adapter.
func (c *Client) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
	body := map[string]interface{}{
		"title":        p.Title,
		"summary":      p.Summary,
		"description":  p.Description,
		"url":          p.URL,
		"budget":       p.BudgetRef,
		"deliveryTime": p.DeliveryTimeRef,
		"deliveryDate": formatTime(p.DeliveryDate),
		"client":       p.ClientID,
	}
	data, err := c.request(ctx, http.MethodPost, "/projects", body)
	if err != nil {
		return project.Project{}, err
	}
	var w wireProject
	if err := json.Unmarshal(data, &w); err != nil {
		return project.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return toProject(w), nil
}

// Project fetches one project by its external id.
func (c *Client) Project(ctx context.Context, id string) (project.Project, error) {
	data, err := c.request(ctx, http.MethodGet, "/projects/"+neturl.PathEscape(id), nil)
	if err != nil {
		if service.IsNotFound(err) {
			return project.Project{}, service.NewNotFoundError("project", id)
		}
		return project.Project{}, err
	}
	var w wireProject
	if err := json.Unmarshal(data, &w); err != nil {
		return project.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return toProject(w), nil
}

// UpdateProject pushes edited project fields to the adapter.
func (c *Client) UpdateProject(ctx context.Context, p project.Project) (project.Project, error) {
	body := map[string]interface{}{
		"title":        p.Title,
		"summary":      p.Summary,
		"description":  p.Description,
		"url":          p.URL,
		"budget":       p.BudgetRef,
		"deliveryTime": p.DeliveryTimeRef,
		"deliveryDate": formatTime(p.DeliveryDate),
	}
	data, err := c.request(ctx, http.MethodPut, "/projects/"+neturl.PathEscape(p.ExternalID), body)
	if err != nil {
		if service.IsNotFound(err) {
			return project.Project{}, service.NewNotFoundError("project", p.ExternalID)
		}
		return project.Project{}, err
	}
	var w wireProject
	if err := json.Unmarshal(data, &w); err != nil {
		return project.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return toProject(w), nil
}

// ProjectsByClient lists the projects commissioned by one client.
func (c *Client) ProjectsByClient(ctx context.Context, clientID string) ([]project.Project, error) {
	data, err := c.request(ctx, http.MethodGet, "/clients/"+neturl.PathEscape(clientID)+"/projects", nil)
	if err != nil {
		return nil, err
	}
	var ws []wireProject
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return toProjects(ws), nil
}

// ProjectsByDeveloper lists the projects a developer participates in, either
// as consultant or through an assigned milestone. The adapter returns the
// superset; callers narrow it.
func (c *Client) ProjectsByDeveloper(ctx context.Context, developerID string) ([]project.Project, error) {
	data, err := c.request(ctx, http.MethodGet, "/developers/"+neturl.PathEscape(developerID)+"/projects", nil)
	if err != nil {
		return nil, err
	}
	var ws []wireProject
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return toProjects(ws), nil
}

// AssignConsultant records the coordinator assignment for a project.
func (c *Client) AssignConsultant(ctx context.Context, projectID, developerID string) error {
	body := map[string]string{"coordinator": developerID}
	_, err := c.request(ctx, http.MethodPost, "/projects/"+neturl.PathEscape(projectID)+"/coordinator", body)
	return c.projectActionErr(err, projectID)
}

// ApproveProposal records the consultant's approval of a project proposal.
func (c *Client) ApproveProposal(ctx context.Context, projectID string) error {
	_, err := c.request(ctx, http.MethodPost, "/projects/"+neturl.PathEscape(projectID)+"/approve", nil)
	return c.projectActionErr(err, projectID)
}

// RejectProposal records the consultant's rejection of a project proposal.
func (c *Client) RejectProposal(ctx context.Context, projectID, reason string) error {
	body := map[string]string{"reason": reason}
	_, err := c.request(ctx, http.MethodPost, "/projects/"+neturl.PathEscape(projectID)+"/reject", body)
	return c.projectActionErr(err, projectID)
}

// ProposeScope submits the project's milestones as a scope for client
// validation.
func (c *Client) ProposeScope(ctx context.Context, projectID string) error {
	_, err := c.request(ctx, http.MethodPost, "/projects/"+neturl.PathEscape(projectID)+"/scope/propose", nil)
	return c.projectActionErr(err, projectID)
}

// ApproveScope records the client accepting the proposed scope.
func (c *Client) ApproveScope(ctx context.Context, projectID string) error {
	_, err := c.request(ctx, http.MethodPost, "/projects/"+neturl.PathEscape(projectID)+"/scope/approve", nil)
	return c.projectActionErr(err, projectID)
}

// RejectScope records the client rejecting the proposed scope.
func (c *Client) RejectScope(ctx context.Context, projectID, reason string) error {
	body := map[string]string{"reason": reason}
	_, err := c.request(ctx, http.MethodPost, "/projects/"+neturl.PathEscape(projectID)+"/scope/reject", body)
	return c.projectActionErr(err, projectID)
}

// AssignTeam records milestone-to-developer assignments for a project.
func (c *Client) AssignTeam(ctx context.Context, projectID string, assignments map[string]string) error {
	type assignment struct {
		Milestone string `json:"milestone"`
		Developer string `json:"developer"`
	}
	payload := struct {
		Assignments []assignment `json:"assignments"`
	}{}
	for milestoneID, developerID := range assignments {
		payload.Assignments = append(payload.Assignments, assignment{Milestone: milestoneID, Developer: developerID})
	}
	_, err := c.request(ctx, http.MethodPost, "/projects/"+neturl.PathEscape(projectID)+"/team", payload)
	return c.projectActionErr(err, projectID)
}

// MarkCompleted records the project as completed.
func (c *Client) MarkCompleted(ctx context.Context, projectID string) error {
	_, err := c.request(ctx, http.MethodPost, "/projects/"+neturl.PathEscape(projectID)+"/complete", nil)
	return c.projectActionErr(err, projectID)
}

func (c *Client) projectActionErr(err error, projectID string) error {
	if err == nil {
		return nil
	}
	if service.IsNotFound(err) {
		return service.NewNotFoundError("project", projectID)
	}
	return err
}
