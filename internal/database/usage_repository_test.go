package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jonesrussell/seo-auditor/internal/database"
	"github.com/jonesrussell/seo-auditor/internal/domain"
)

var usageDay = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

func TestUsageRepository_GetForDay(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewUsageRepository(db)
	ctx := context.Background()

	columns := []string{
		"account_id", "usage_date", "audit_runs", "bulk_edits",
		"meta_updates", "alt_text_updates", "metrics_calls", "sitemap_generations",
	}

	mock.ExpectQuery("SELECT (.+) FROM usage_records").
		WithArgs("acct-1", usageDay).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"acct-1", usageDay, 3, 0, 12, 0, 5, 1,
		))

	record, err := repo.GetForDay(ctx, "acct-1", usageDay)
	if err != nil {
		t.Fatalf("GetForDay() error = %v", err)
	}
	if record.AuditRuns != 3 || record.MetaUpdates != 12 {
		t.Errorf("record = %+v, want audit_runs 3 meta_updates 12", record)
	}

	// Absent row maps to the domain sentinel so the tracker can treat
	// it as all-zero.
	mock.ExpectQuery("SELECT (.+) FROM usage_records").
		WithArgs("acct-2", usageDay).
		WillReturnRows(sqlmock.NewRows(columns))

	if _, err := repo.GetForDay(ctx, "acct-2", usageDay); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetForDay() error = %v, want ErrNotFound", err)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestUsageRepository_IncrementAction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewUsageRepository(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO usage_records").
		WithArgs("acct-1", usageDay, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.IncrementAction(ctx, "acct-1", usageDay, domain.ActionAuditRuns, 1); err != nil {
		t.Errorf("IncrementAction() error = %v", err)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestUsageRepository_IncrementAction_RejectsUnknownAction(t *testing.T) {
	db, _ := newMockDB(t)
	repo := database.NewUsageRepository(db)

	err := repo.IncrementAction(context.Background(), "acct-1", usageDay, domain.Action("teleports"), 1)
	if err == nil {
		t.Error("IncrementAction() with unknown action should fail before touching the database")
	}
}

func TestUsageRepository_DeleteBefore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewUsageRepository(db)

	mock.ExpectExec("DELETE FROM usage_records").
		WithArgs(usageDay).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.DeleteBefore(context.Background(), usageDay)
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if deleted != 4 {
		t.Errorf("DeleteBefore() = %d, want 4", deleted)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}
