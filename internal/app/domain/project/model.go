// Package project defines the project domain model and its derived workflow
// state. The adapter owns the raw status; everything richer is computed here.
package project

import "time"

// Status is the raw, adapter-owned lifecycle status of a project. The value
// set is controlled by the remote system; values outside the known constants
// must be tolerated and surface as StateInvalid on derivation.
type Status string

const (
	StatusDeployed              Status = "deployed"
	StatusScopeProposed         Status = "scope_proposed"
	StatusScopeAccepted         Status = "scope_accepted"
	StatusTeamAssigned          Status = "team_assigned"
	StatusCompleted             Status = "completed"
	StatusRejectedByCoordinator Status = "rejected_by_coordinator"
)

// Known reports whether s is a status this model maps to a workflow state.
func (s Status) Known() bool {
	switch s {
	case StatusDeployed, StatusScopeProposed, StatusScopeAccepted,
		StatusTeamAssigned, StatusCompleted, StatusRejectedByCoordinator:
		return true
	}
	return false
}

// Project is a commissioned software project. ExternalID is the adapter's
// identifier (a contract address in production). ConsultantID is empty until
// a consultant has been assigned, and that absence is itself meaningful to
// state derivation.
type Project struct {
	ExternalID              string
	Title                   string
	Summary                 string
	Description             string
	URL                     string
	BudgetRef               string
	DeliveryTimeRef         string
	DeliveryDate            time.Time
	Status                  Status
	CoordinatorApproval     string
	ClientID                string
	ConsultantID            string
	ProposalRejectionReason string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}
