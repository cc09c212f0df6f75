// Package postgres implements the shadow store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/storage"
)

// Store implements the shadow store interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.ProjectStore = (*Store)(nil)
var _ storage.MilestoneStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database at dsn and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open shadow database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping shadow database: %w", err)
	}
	return New(db), nil
}

// --- ProjectStore ------------------------------------------------------------

const projectColumns = `id, external_id, title, summary, description, url,
	budget_ref, delivery_time_ref, delivery_date, state, client_id,
	consultant_id, rejection_reason, created_at, updated_at`

func (s *Store) CreateProject(ctx context.Context, rec storage.ProjectRecord) (storage.ProjectRecord, error) {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO shadow_projects (external_id, title, summary, description,
			url, budget_ref, delivery_time_ref, delivery_date, state,
			client_id, consultant_id, rejection_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`, rec.ExternalID, rec.Title, rec.Summary, rec.Description, rec.URL,
		rec.BudgetRef, rec.DeliveryTimeRef, rec.DeliveryDate, rec.State,
		rec.ClientID, rec.ConsultantID, rec.RejectionReason,
		rec.CreatedAt, rec.UpdatedAt).Scan(&rec.ID)
	if err != nil {
		return storage.ProjectRecord{}, err
	}
	return rec, nil
}

func (s *Store) UpdateProject(ctx context.Context, rec storage.ProjectRecord) (storage.ProjectRecord, error) {
	existing, err := s.GetProject(ctx, rec.ID)
	if err != nil {
		return storage.ProjectRecord{}, err
	}

	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE shadow_projects
		SET title = $2, summary = $3, description = $4, url = $5,
			budget_ref = $6, delivery_time_ref = $7, delivery_date = $8,
			state = $9, client_id = $10, consultant_id = $11,
			rejection_reason = $12, updated_at = $13
		WHERE id = $1
	`, rec.ID, rec.Title, rec.Summary, rec.Description, rec.URL,
		rec.BudgetRef, rec.DeliveryTimeRef, rec.DeliveryDate, rec.State,
		rec.ClientID, rec.ConsultantID, rec.RejectionReason, rec.UpdatedAt)
	if err != nil {
		return storage.ProjectRecord{}, err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return storage.ProjectRecord{}, service.NewNotFoundError("project record", fmtID(rec.ID))
	}
	return rec, nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (storage.ProjectRecord, error) {
	var rec storage.ProjectRecord
	err := s.db.GetContext(ctx, &rec, `
		SELECT `+projectColumns+`
		FROM shadow_projects
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ProjectRecord{}, service.NewNotFoundError("project record", fmtID(id))
	}
	if err != nil {
		return storage.ProjectRecord{}, err
	}
	return rec, nil
}

func (s *Store) GetProjectByExternalID(ctx context.Context, externalID string) (storage.ProjectRecord, error) {
	var rec storage.ProjectRecord
	err := s.db.GetContext(ctx, &rec, `
		SELECT `+projectColumns+`
		FROM shadow_projects
		WHERE external_id = $1
	`, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ProjectRecord{}, service.NewNotFoundError("project record", externalID)
	}
	if err != nil {
		return storage.ProjectRecord{}, err
	}
	return rec, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]storage.ProjectRecord, error) {
	var out []storage.ProjectRecord
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+projectColumns+`
		FROM shadow_projects
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shadow_projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return service.NewNotFoundError("project record", fmtID(id))
	}
	return nil
}

// --- MilestoneStore ----------------------------------------------------------

const milestoneColumns = `id, external_id, project_external_id, title,
	description, budget, delivery_time_ref, delivery_date, display_order,
	state, developer_id, docs, created_at, updated_at`

func (s *Store) CreateMilestone(ctx context.Context, rec storage.MilestoneRecord) (storage.MilestoneRecord, error) {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO shadow_milestones (external_id, project_external_id,
			title, description, budget, delivery_time_ref, delivery_date,
			display_order, state, developer_id, docs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, rec.ExternalID, rec.ProjectID, rec.Title, rec.Description, rec.Budget,
		rec.DeliveryTimeRef, rec.DeliveryDate, rec.DisplayOrder, rec.State,
		rec.DeveloperID, rec.Docs, rec.CreatedAt, rec.UpdatedAt).Scan(&rec.ID)
	if err != nil {
		return storage.MilestoneRecord{}, err
	}
	return rec, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, rec storage.MilestoneRecord) (storage.MilestoneRecord, error) {
	existing, err := s.GetMilestone(ctx, rec.ID)
	if err != nil {
		return storage.MilestoneRecord{}, err
	}

	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE shadow_milestones
		SET title = $2, description = $3, budget = $4, delivery_time_ref = $5,
			delivery_date = $6, display_order = $7, state = $8,
			developer_id = $9, docs = $10, updated_at = $11
		WHERE id = $1
	`, rec.ID, rec.Title, rec.Description, rec.Budget, rec.DeliveryTimeRef,
		rec.DeliveryDate, rec.DisplayOrder, rec.State, rec.DeveloperID,
		rec.Docs, rec.UpdatedAt)
	if err != nil {
		return storage.MilestoneRecord{}, err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return storage.MilestoneRecord{}, service.NewNotFoundError("milestone record", fmtID(rec.ID))
	}
	return rec, nil
}

func (s *Store) GetMilestone(ctx context.Context, id int64) (storage.MilestoneRecord, error) {
	var rec storage.MilestoneRecord
	err := s.db.GetContext(ctx, &rec, `
		SELECT `+milestoneColumns+`
		FROM shadow_milestones
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.MilestoneRecord{}, service.NewNotFoundError("milestone record", fmtID(id))
	}
	if err != nil {
		return storage.MilestoneRecord{}, err
	}
	return rec, nil
}

func (s *Store) GetMilestoneByExternalID(ctx context.Context, externalID string) (storage.MilestoneRecord, error) {
	var rec storage.MilestoneRecord
	err := s.db.GetContext(ctx, &rec, `
		SELECT `+milestoneColumns+`
		FROM shadow_milestones
		WHERE external_id = $1
	`, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.MilestoneRecord{}, service.NewNotFoundError("milestone record", externalID)
	}
	if err != nil {
		return storage.MilestoneRecord{}, err
	}
	return rec, nil
}

func (s *Store) ListMilestones(ctx context.Context, projectExternalID string) ([]storage.MilestoneRecord, error) {
	var out []storage.MilestoneRecord
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+milestoneColumns+`
		FROM shadow_milestones
		WHERE project_external_id = $1
		ORDER BY display_order ASC
	`, projectExternalID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteMilestone(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shadow_milestones WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return service.NewNotFoundError("milestone record", fmtID(id))
	}
	return nil
}

func fmtID(id int64) string {
	return strconv.FormatInt(id, 10)
}
