package project

// State is the derived workflow state of a project. It is never persisted by
// this system; every read recomputes it from the raw adapter fields.
type State string

const (
	StateProposalPending            State = "proposal_pending"
	StateProposalRejected           State = "proposal_rejected"
	StateWaitingForProposalApproval State = "waiting_for_proposal_approval"
	StateScopingInProgress          State = "scoping_in_progress"
	StateScopeValidationNeeded      State = "scope_validation_needed"
	StateWaitingForTeamAssignment   State = "waiting_for_team_assignment"
	StateInProgress                 State = "project_in_progress"
	StateCompleted                  State = "completed"
	StateInvalid                    State = "invalid"
)

// DeriveState maps a project's raw adapter fields, plus whether the current
// session holds an open scope draft for it, to a workflow state. The mapping
// is total and pure: every input resolves to exactly one state, and raw
// combinations the model does not recognize come back as StateInvalid so the
// caller can log the anomaly instead of crashing on it.
//
// Precedence matters: a project with no consultant is a pending proposal no
// matter what the raw status says.
func DeriveState(p Project, hasDraft bool) State {
	if p.ConsultantID == "" {
		return StateProposalPending
	}

	switch p.Status {
	case StatusRejectedByCoordinator:
		return StateProposalRejected
	case StatusDeployed:
		if p.CoordinatorApproval != "" {
			return StateInvalid
		}
		if hasDraft {
			return StateScopingInProgress
		}
		return StateWaitingForProposalApproval
	case StatusScopeProposed:
		// A proposed scope that already carries a rejection reason has no
		// resolved state upstream; surface it rather than guess one.
		if p.ProposalRejectionReason != "" {
			return StateInvalid
		}
		return StateScopeValidationNeeded
	case StatusScopeAccepted:
		return StateWaitingForTeamAssignment
	case StatusTeamAssigned:
		return StateInProgress
	case StatusCompleted:
		return StateCompleted
	}

	return StateInvalid
}
