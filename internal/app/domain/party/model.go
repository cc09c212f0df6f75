// Package party defines the client and developer roster entities.
package party

import "time"

// Client commissions projects and validates scopes and submissions.
type Client struct {
	ExternalID string
	Name       string
	Email      string
	Wallet     string
	CreatedAt  time.Time
}

// Developer builds milestones. A developer acting as a project's coordinator
// is referred to as its consultant.
type Developer struct {
	ExternalID string
	Name       string
	Email      string
	Wallet     string
	CreatedAt  time.Time
}
