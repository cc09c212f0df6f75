package project

import "testing"

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name     string
		p        Project
		hasDraft bool
		want     State
	}{
		{
			name: "no consultant assigned",
			p:    Project{Status: StatusDeployed},
			want: StateProposalPending,
		},
		{
			name: "no consultant wins over any raw status",
			p:    Project{Status: StatusTeamAssigned},
			want: StateProposalPending,
		},
		{
			name: "rejected by coordinator",
			p:    Project{ConsultantID: "dev-1", Status: StatusRejectedByCoordinator},
			want: StateProposalRejected,
		},
		{
			name: "deployed without draft",
			p:    Project{ConsultantID: "dev-1", Status: StatusDeployed},
			want: StateWaitingForProposalApproval,
		},
		{
			name:     "deployed with open draft",
			p:        Project{ConsultantID: "dev-1", Status: StatusDeployed},
			hasDraft: true,
			want:     StateScopingInProgress,
		},
		{
			name: "deployed with coordinator approval set is unmapped",
			p:    Project{ConsultantID: "dev-1", Status: StatusDeployed, CoordinatorApproval: "approved"},
			want: StateInvalid,
		},
		{
			name: "scope proposed",
			p:    Project{ConsultantID: "dev-1", Status: StatusScopeProposed},
			want: StateScopeValidationNeeded,
		},
		{
			name: "scope proposed with rejection reason is unmapped",
			p:    Project{ConsultantID: "dev-1", Status: StatusScopeProposed, ProposalRejectionReason: "too vague"},
			want: StateInvalid,
		},
		{
			name: "scope accepted",
			p:    Project{ConsultantID: "dev-1", Status: StatusScopeAccepted},
			want: StateWaitingForTeamAssignment,
		},
		{
			name: "team assigned",
			p:    Project{ConsultantID: "dev-1", Status: StatusTeamAssigned},
			want: StateInProgress,
		},
		{
			name: "completed",
			p:    Project{ConsultantID: "dev-1", Status: StatusCompleted},
			want: StateCompleted,
		},
		{
			name: "unknown adapter status",
			p:    Project{ConsultantID: "dev-1", Status: Status("halted_by_oracle")},
			want: StateInvalid,
		},
		{
			name: "empty status with consultant",
			p:    Project{ConsultantID: "dev-1"},
			want: StateInvalid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveState(tc.p, tc.hasDraft)
			if got != tc.want {
				t.Fatalf("DeriveState = %q, want %q", got, tc.want)
			}
			// Derivation is pure: a second call with identical input must
			// agree with the first.
			if again := DeriveState(tc.p, tc.hasDraft); again != got {
				t.Fatalf("second derivation %q differs from first %q", again, got)
			}
		})
	}
}

func TestStatusKnown(t *testing.T) {
	for _, s := range []Status{
		StatusDeployed, StatusScopeProposed, StatusScopeAccepted,
		StatusTeamAssigned, StatusCompleted, StatusRejectedByCoordinator,
	} {
		if !s.Known() {
			t.Errorf("status %q should be known", s)
		}
	}
	if Status("halted_by_oracle").Known() {
		t.Error("unexpected status should not be known")
	}
	if Status("").Known() {
		t.Error("empty status should not be known")
	}
}
