package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/domain/milestone"
)

// Milestones lists a project's milestones.
func (c *Client) Milestones(ctx context.Context, projectID string) ([]milestone.Milestone, error) {
	data, err := c.request(ctx, http.MethodGet, "/projects/"+neturl.PathEscape(projectID)+"/milestones", nil)
	if err != nil {
		if service.IsNotFound(err) {
			return nil, service.NewNotFoundError("project", projectID)
		}
		return nil, err
	}
	var ws []wireMilestone
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode milestones: %w", err)
	}
	return toMilestones(ws), nil
}

// Milestone fetches one milestone of a project.
func (c *Client) Milestone(ctx context.Context, projectID, milestoneID string) (milestone.Milestone, error) {
	data, err := c.request(ctx, http.MethodGet, milestonePath(projectID, milestoneID), nil)
	if err != nil {
		if service.IsNotFound(err) {
			return milestone.Milestone{}, service.NewNotFoundError("milestone", milestoneID)
		}
		return milestone.Milestone{}, err
	}
	var w wireMilestone
	if err := json.Unmarshal(data, &w); err != nil {
		return milestone.Milestone{}, fmt.Errorf("decode milestone: %w", err)
	}
	return toMilestone(w), nil
}

// CreateMilestone publishes one draft proposal as a milestone of the project.
// Order is the position the consultant gave the proposal within the scope.
func (c *Client) CreateMilestone(ctx context.Context, projectID string, p milestone.Proposal, order int) (milestone.Milestone, error) {
	body := map[string]interface{}{
		"title":        p.Title,
		"description":  p.Description,
		"budget":       p.Budget,
		"deliveryTime": p.DeliveryTimeRef,
		"deliveryDate": formatTime(p.DeliveryDate),
		"docs":         p.Docs,
		"order":        order,
	}
	data, err := c.request(ctx, http.MethodPost, "/projects/"+neturl.PathEscape(projectID)+"/milestones", body)
	if err != nil {
		if service.IsNotFound(err) {
			return milestone.Milestone{}, service.NewNotFoundError("project", projectID)
		}
		return milestone.Milestone{}, err
	}
	var w wireMilestone
	if err := json.Unmarshal(data, &w); err != nil {
		return milestone.Milestone{}, fmt.Errorf("decode milestone: %w", err)
	}
	return toMilestone(w), nil
}

// UpdateMilestone pushes edited milestone fields to the adapter.
func (c *Client) UpdateMilestone(ctx context.Context, m milestone.Milestone) (milestone.Milestone, error) {
	body := map[string]interface{}{
		"title":        m.Title,
		"description":  m.Description,
		"budget":       m.Budget,
		"deliveryTime": m.DeliveryTimeRef,
		"deliveryDate": formatTime(m.DeliveryDate),
		"order":        m.DisplayOrder,
		"docs":         m.Docs,
	}
	data, err := c.request(ctx, http.MethodPut, milestonePath(m.ProjectID, m.ExternalID), body)
	if err != nil {
		if service.IsNotFound(err) {
			return milestone.Milestone{}, service.NewNotFoundError("milestone", m.ExternalID)
		}
		return milestone.Milestone{}, err
	}
	var w wireMilestone
	if err := json.Unmarshal(data, &w); err != nil {
		return milestone.Milestone{}, fmt.Errorf("decode milestone: %w", err)
	}
	return toMilestone(w), nil
}

// DeleteMilestone removes a milestone that has not been locked by an accepted
// scope.
func (c *Client) DeleteMilestone(ctx context.Context, projectID, milestoneID string) error {
	_, err := c.request(ctx, http.MethodDelete, milestonePath(projectID, milestoneID), nil)
	return c.milestoneActionErr(err, milestoneID)
}

// SubmitTaskForReview hands a milestone's work to the client for review,
// attaching the developer's documentation links.
func (c *Client) SubmitTaskForReview(ctx context.Context, projectID, milestoneID, docs string) error {
	body := map[string]string{"docs": docs}
	_, err := c.request(ctx, http.MethodPost, milestonePath(projectID, milestoneID)+"/review", body)
	return c.milestoneActionErr(err, milestoneID)
}

// CompleteTask records the client accepting a milestone submission.
func (c *Client) CompleteTask(ctx context.Context, projectID, milestoneID string) error {
	_, err := c.request(ctx, http.MethodPost, milestonePath(projectID, milestoneID)+"/complete", nil)
	return c.milestoneActionErr(err, milestoneID)
}

// RejectTask records the client rejecting a milestone submission.
func (c *Client) RejectTask(ctx context.Context, projectID, milestoneID, reason string) error {
	body := map[string]string{"reason": reason}
	_, err := c.request(ctx, http.MethodPost, milestonePath(projectID, milestoneID)+"/reject", body)
	return c.milestoneActionErr(err, milestoneID)
}

// PayMilestone triggers settlement of an accepted milestone.
func (c *Client) PayMilestone(ctx context.Context, projectID, milestoneID string) error {
	_, err := c.request(ctx, http.MethodPost, milestonePath(projectID, milestoneID)+"/pay", nil)
	return c.milestoneActionErr(err, milestoneID)
}

func (c *Client) milestoneActionErr(err error, milestoneID string) error {
	if err == nil {
		return nil
	}
	if service.IsNotFound(err) {
		return service.NewNotFoundError("milestone", milestoneID)
	}
	return err
}

func milestonePath(projectID, milestoneID string) string {
	return "/projects/" + neturl.PathEscape(projectID) + "/milestones/" + neturl.PathEscape(milestoneID)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
