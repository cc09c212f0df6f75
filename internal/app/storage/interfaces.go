// Package storage defines the shadow store: the local relational fallback
// that receives lifecycle writes when the adapter is unreachable. Unlike the
// adapter, the shadow store keys rows by integer surrogate ids and stores the
// derived workflow state directly in its state column.
package storage

import (
	"context"
	"time"

	"github.com/seda-works/marketplace_layer/internal/app/domain/milestone"
	"github.com/seda-works/marketplace_layer/internal/app/domain/project"
)

// ProjectRecord is the shadow store's copy of a project. ExternalID carries
// the adapter identifier for correlation; State holds the derived workflow
// state, not the adapter's raw status vocabulary.
type ProjectRecord struct {
	ID              int64         `db:"id"`
	ExternalID      string        `db:"external_id"`
	Title           string        `db:"title"`
	Summary         string        `db:"summary"`
	Description     string        `db:"description"`
	URL             string        `db:"url"`
	BudgetRef       string        `db:"budget_ref"`
	DeliveryTimeRef string        `db:"delivery_time_ref"`
	DeliveryDate    time.Time     `db:"delivery_date"`
	State           project.State `db:"state"`
	ClientID        string        `db:"client_id"`
	ConsultantID    string        `db:"consultant_id"`
	RejectionReason string        `db:"rejection_reason"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

// MilestoneRecord is the shadow store's copy of a milestone, keyed by the
// owning project's external id.
type MilestoneRecord struct {
	ID              int64           `db:"id"`
	ExternalID      string          `db:"external_id"`
	ProjectID       string          `db:"project_external_id"`
	Title           string          `db:"title"`
	Description     string          `db:"description"`
	Budget          string          `db:"budget"`
	DeliveryTimeRef string          `db:"delivery_time_ref"`
	DeliveryDate    time.Time       `db:"delivery_date"`
	DisplayOrder    int             `db:"display_order"`
	State           milestone.State `db:"state"`
	DeveloperID     string          `db:"developer_id"`
	Docs            string          `db:"docs"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// ProjectStore persists shadow project records.
type ProjectStore interface {
	CreateProject(ctx context.Context, rec ProjectRecord) (ProjectRecord, error)
	UpdateProject(ctx context.Context, rec ProjectRecord) (ProjectRecord, error)
	GetProject(ctx context.Context, id int64) (ProjectRecord, error)
	GetProjectByExternalID(ctx context.Context, externalID string) (ProjectRecord, error)
	ListProjects(ctx context.Context) ([]ProjectRecord, error)
	DeleteProject(ctx context.Context, id int64) error
}

// MilestoneStore persists shadow milestone records.
type MilestoneStore interface {
	CreateMilestone(ctx context.Context, rec MilestoneRecord) (MilestoneRecord, error)
	UpdateMilestone(ctx context.Context, rec MilestoneRecord) (MilestoneRecord, error)
	GetMilestone(ctx context.Context, id int64) (MilestoneRecord, error)
	GetMilestoneByExternalID(ctx context.Context, externalID string) (MilestoneRecord, error)
	ListMilestones(ctx context.Context, projectExternalID string) ([]MilestoneRecord, error)
	DeleteMilestone(ctx context.Context, id int64) error
}
