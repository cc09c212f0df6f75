// Package milestone defines the milestone domain model, the draft proposal
// shape, and the derived milestone workflow state.
package milestone

import "time"

// Status is the raw, adapter-owned lifecycle status of a milestone. An empty
// status means the milestone only exists as a draft proposal and has not been
// published to the adapter yet.
type Status string

const (
	StatusPending        Status = "pending"
	StatusTaskInProgress Status = "task_in_progress"
	StatusInReview       Status = "in_review"
	StatusCompleted      Status = "completed"
	StatusRejected       Status = "rejected"
)

// Milestone is one deliverable within a project's scope. DisplayOrder is
// insertion-relative and consultant-controlled; DeveloperID is empty until a
// team has been assigned.
type Milestone struct {
	ExternalID      string
	ProjectID       string
	Title           string
	Description     string
	Budget          string
	DeliveryTimeRef string
	DeliveryDate    time.Time
	DisplayOrder    int
	Status          Status
	DeveloperID     string
	Docs            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Proposal is an unpublished milestone inside a scope draft. It has no
// identity of its own; its position in the draft is its order.
type Proposal struct {
	Title           string
	Description     string
	Budget          string
	DeliveryTimeRef string
	DeliveryDate    time.Time
	Docs            string
}

// State is the derived workflow state of a milestone.
type State string

const (
	StateCreating                      State = "creating_milestone"
	StateWaitingDeveloperAssignment    State = "waiting_developer_assignment"
	StateInProgress                    State = "milestone_in_progress"
	StateWaitingClientAcceptSubmission State = "waiting_client_accept_submission"
	StateCompleted                     State = "milestone_completed"
	StateSubmissionRejected            State = "submission_rejected_by_client"
	StateInvalid                       State = "invalid"
)

// DeriveState maps a milestone's raw status to its workflow state. Total and
// pure; unknown statuses come back as StateInvalid.
func DeriveState(m Milestone) State {
	switch m.Status {
	case "":
		return StateCreating
	case StatusPending:
		return StateWaitingDeveloperAssignment
	case StatusTaskInProgress:
		return StateInProgress
	case StatusInReview:
		return StateWaitingClientAcceptSubmission
	case StatusCompleted:
		return StateCompleted
	case StatusRejected:
		return StateSubmissionRejected
	}
	return StateInvalid
}
