package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	neturl "net/url"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/domain/party"
)

// Clients fetches the full client roster. The adapter has no filtered lookup
// beyond id and email, so aggregation works from the whole list.
func (c *Client) Clients(ctx context.Context) ([]party.Client, error) {
	data, err := c.request(ctx, http.MethodGet, "/clients", nil)
	if err != nil {
		return nil, err
	}
	var ws []wireParty
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	out := make([]party.Client, len(ws))
	for i, w := range ws {
		out[i] = toClient(w)
	}
	return out, nil
}

// ClientByID fetches one client.
func (c *Client) ClientByID(ctx context.Context, id string) (party.Client, error) {
	data, err := c.request(ctx, http.MethodGet, "/clients/"+neturl.PathEscape(id), nil)
	if err != nil {
		if service.IsNotFound(err) {
			return party.Client{}, service.NewNotFoundError("client", id)
		}
		return party.Client{}, err
	}
	var w wireParty
	if err := json.Unmarshal(data, &w); err != nil {
		return party.Client{}, fmt.Errorf("decode client: %w", err)
	}
	return toClient(w), nil
}

// ClientByEmail looks a client up by email address.
func (c *Client) ClientByEmail(ctx context.Context, email string) (party.Client, error) {
	data, err := c.request(ctx, http.MethodGet, "/clients/email/"+neturl.PathEscape(email), nil)
	if err != nil {
		if service.IsNotFound(err) {
			return party.Client{}, service.NewNotFoundError("client", email)
		}
		return party.Client{}, err
	}
	var w wireParty
	if err := json.Unmarshal(data, &w); err != nil {
		return party.Client{}, fmt.Errorf("decode client: %w", err)
	}
	return toClient(w), nil
}

// CreateClient registers a client with the adapter.
func (c *Client) CreateClient(ctx context.Context, cl party.Client) (party.Client, error) {
	body := map[string]string{
		"name":   cl.Name,
		"email":  cl.Email,
		"wallet": cl.Wallet,
	}
	data, err := c.request(ctx, http.MethodPost, "/clients", body)
	if err != nil {
		return party.Client{}, err
	}
	var w wireParty
	if err := json.Unmarshal(data, &w); err != nil {
		return party.Client{}, fmt.Errorf("decode client: %w", err)
	}
	return toClient(w), nil
}

// Developers fetches the full developer roster.
func (c *Client) Developers(ctx context.Context) ([]party.Developer, error) {
	data, err := c.request(ctx, http.MethodGet, "/developers", nil)
	if err != nil {
		return nil, err
	}
	var ws []wireParty
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode developers: %w", err)
	}
	out := make([]party.Developer, len(ws))
	for i, w := range ws {
		out[i] = toDeveloper(w)
	}
	return out, nil
}

// DeveloperByID fetches one developer.
func (c *Client) DeveloperByID(ctx context.Context, id string) (party.Developer, error) {
	data, err := c.request(ctx, http.MethodGet, "/developers/"+neturl.PathEscape(id), nil)
	if err != nil {
		if service.IsNotFound(err) {
			return party.Developer{}, service.NewNotFoundError("developer", id)
		}
		return party.Developer{}, err
	}
	var w wireParty
	if err := json.Unmarshal(data, &w); err != nil {
		return party.Developer{}, fmt.Errorf("decode developer: %w", err)
	}
	return toDeveloper(w), nil
}

// DeveloperByEmail looks a developer up by email address.
func (c *Client) DeveloperByEmail(ctx context.Context, email string) (party.Developer, error) {
	data, err := c.request(ctx, http.MethodGet, "/developers/email/"+neturl.PathEscape(email), nil)
	if err != nil {
		if service.IsNotFound(err) {
			return party.Developer{}, service.NewNotFoundError("developer", email)
		}
		return party.Developer{}, err
	}
	var w wireParty
	if err := json.Unmarshal(data, &w); err != nil {
		return party.Developer{}, fmt.Errorf("decode developer: %w", err)
	}
	return toDeveloper(w), nil
}

// CreateDeveloper registers a developer with the adapter.
func (c *Client) CreateDeveloper(ctx context.Context, d party.Developer) (party.Developer, error) {
	body := map[string]string{
		"name":   d.Name,
		"email":  d.Email,
		"wallet": d.Wallet,
	}
	data, err := c.request(ctx, http.MethodPost, "/developers", body)
	if err != nil {
		return party.Developer{}, err
	}
	var w wireParty
	if err := json.Unmarshal(data, &w); err != nil {
		return party.Developer{}, fmt.Errorf("decode developer: %w", err)
	}
	return toDeveloper(w), nil
}
