package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/domain/project"
	"github.com/seda-works/marketplace_layer/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateProject(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO shadow_projects`).
		WithArgs("0xabc", "storefront", "", "", "", "", "",
			sqlmock.AnyArg(), "proposal_rejected", "cli-1", "", "too vague",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	rec, err := store.CreateProject(context.Background(), storage.ProjectRecord{
		ExternalID:      "0xabc",
		Title:           "storefront",
		State:           project.StateProposalRejected,
		ClientID:        "cli-1",
		RejectionReason: "too vague",
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if rec.ID != 7 {
		t.Fatalf("id = %d, want 7", rec.ID)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Fatal("timestamps should be set on create")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetProjectByExternalID(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	cols := []string{"id", "external_id", "title", "summary", "description",
		"url", "budget_ref", "delivery_time_ref", "delivery_date", "state",
		"client_id", "consultant_id", "rejection_reason", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM shadow_projects\s+WHERE external_id = \$1`).
		WithArgs("0xabc").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(7), "0xabc", "storefront", "", "", "", "", "", now,
			"waiting_for_team_assignment", "cli-1", "dev-1", "", now, now))

	rec, err := store.GetProjectByExternalID(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("get by external id: %v", err)
	}
	if rec.ID != 7 || rec.State != project.StateWaitingForTeamAssignment {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM shadow_projects\s+WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetProject(context.Background(), 99)
	if !service.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProject_PreservesCreatedAt(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "external_id", "title", "summary", "description",
		"url", "budget_ref", "delivery_time_ref", "delivery_date", "state",
		"client_id", "consultant_id", "rejection_reason", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM shadow_projects\s+WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(7), "0xabc", "storefront", "", "", "", "", "", created,
			"scoping_in_progress", "cli-1", "dev-1", "", created, created))

	mock.ExpectExec(`UPDATE shadow_projects`).
		WithArgs(int64(7), "storefront", "", "", "", "", "", sqlmock.AnyArg(),
			"waiting_for_team_assignment", "cli-1", "dev-1", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := store.UpdateProject(context.Background(), storage.ProjectRecord{
		ID:           7,
		ExternalID:   "0xabc",
		Title:        "storefront",
		State:        project.StateWaitingForTeamAssignment,
		ClientID:     "cli-1",
		ConsultantID: "dev-1",
	})
	if err != nil {
		t.Fatalf("update project: %v", err)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Fatalf("update must preserve created_at, got %v", rec.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteMilestone_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM shadow_milestones WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteMilestone(context.Background(), 42)
	if !service.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
