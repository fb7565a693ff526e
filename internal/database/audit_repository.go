package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/seo-auditor/internal/domain"
)

// auditSelectList is the column list for SELECT on audits (single
// source for schema changes).
const auditSelectList = `id, account_id, status, score,
			critical_count, high_count, medium_count, low_count,
			partial, error_message, created_at, started_at, completed_at`

// AuditRepository manages audit records in PostgreSQL.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreatePending inserts a pending audit for the account, but only when
// the account has no pending or running audit. The existence check and
// the insert are one atomic statement, so two concurrent start calls
// cannot both succeed even across process instances. Returns
// domain.ErrAuditInProgress when the slot is taken.
func (r *AuditRepository) CreatePending(ctx context.Context, audit *domain.Audit) error {
	query := `
		INSERT INTO audits (id, account_id, status, created_at)
		SELECT $1, $2, 'pending', NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM audits
			WHERE account_id = $2 AND status IN ('pending', 'running')
		)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, audit.ID, audit.AccountID).Scan(&audit.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAuditInProgress
	}
	if err != nil {
		return fmt.Errorf("create pending audit: %w", err)
	}
	audit.Status = domain.AuditPending
	return nil
}

// MarkRunning transitions a pending audit to running and records its
// start time. Returns domain.ErrNotFound when the audit is missing or
// not pending.
func (r *AuditRepository) MarkRunning(ctx context.Context, id string) error {
	query := `
		UPDATE audits
		SET status = 'running', started_at = NOW()
		WHERE id = $1 AND status = 'pending'`
	if err := r.execExpectOneRow(ctx, query, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("mark running: %w", err)
	}
	return nil
}

// MarkCompleted transitions a running audit to its terminal success
// state, recording the score, severity counters and the partial flag.
func (r *AuditRepository) MarkCompleted(
	ctx context.Context,
	id string,
	score int,
	counts domain.SeverityCounts,
	partial bool,
) error {
	query := `
		UPDATE audits
		SET status = 'completed',
		    score = $2,
		    critical_count = $3,
		    high_count = $4,
		    medium_count = $5,
		    low_count = $6,
		    partial = $7,
		    completed_at = NOW()
		WHERE id = $1 AND status = 'running'`
	err := r.execExpectOneRow(ctx, query, id, score,
		counts.Critical, counts.High, counts.Medium, counts.Low, partial)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// MarkFailed transitions a running or pending audit to its terminal
// failure state. Severity counters reflect any partial issues gathered
// before the fatal error.
func (r *AuditRepository) MarkFailed(
	ctx context.Context,
	id string,
	errorMsg string,
	counts domain.SeverityCounts,
	partial bool,
) error {
	query := `
		UPDATE audits
		SET status = 'failed',
		    error_message = $2,
		    critical_count = $3,
		    high_count = $4,
		    medium_count = $5,
		    low_count = $6,
		    partial = $7,
		    completed_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'running')`
	err := r.execExpectOneRow(ctx, query, id, errorMsg,
		counts.Critical, counts.High, counts.Medium, counts.Low, partial)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// FailAbandoned fails running audits whose start time is older than
// olderThan. This handles audits whose owning process crashed
// mid-pipeline and left the record running forever.
func (r *AuditRepository) FailAbandoned(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE audits
		SET status = 'failed',
		    error_message = 'audit abandoned: process did not report a result',
		    completed_at = NOW()
		WHERE status = 'running'
		  AND started_at < NOW() - $1::interval`

	result, err := r.db.ExecContext(ctx, query, olderThan.String())
	if err != nil {
		return 0, fmt.Errorf("fail abandoned: %w", err)
	}
	return result.RowsAffected()
}

// GetByID retrieves a single audit.
func (r *AuditRepository) GetByID(ctx context.Context, id string) (*domain.Audit, error) {
	query := `SELECT ` + auditSelectList + ` FROM audits WHERE id = $1`

	audit, err := scanAudit(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get audit by id: %w", err)
	}
	return audit, nil
}

// ListByAccount returns the account's audits, newest first.
func (r *AuditRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Audit, error) {
	query := `SELECT ` + auditSelectList + `
		FROM audits
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	return scanAudits(rows)
}

// LatestTerminal returns the account's most recently finished audit,
// or domain.ErrNotFound when the account has never finished one.
func (r *AuditRepository) LatestTerminal(ctx context.Context, accountID string) (*domain.Audit, error) {
	query := `SELECT ` + auditSelectList + `
		FROM audits
		WHERE account_id = $1 AND status IN ('completed', 'failed')
		ORDER BY completed_at DESC
		LIMIT 1`

	audit, err := scanAudit(r.db.QueryRowContext(ctx, query, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest terminal audit: %w", err)
	}
	return audit, nil
}

// HasActive reports whether the account has a pending or running audit.
func (r *AuditRepository) HasActive(ctx context.Context, accountID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM audits
		WHERE account_id = $1 AND status IN ('pending', 'running')
	)`

	var active bool
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&active); err != nil {
		return false, fmt.Errorf("has active audit: %w", err)
	}
	return active, nil
}

// execExpectOneRow runs an exec and returns domain.ErrNotFound when no
// row was affected.
func (r *AuditRepository) execExpectOneRow(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		return fmt.Errorf("get affected rows: %w", rowsErr)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (*domain.Audit, error) {
	var a domain.Audit
	err := row.Scan(
		&a.ID, &a.AccountID, &a.Status, &a.Score,
		&a.Counts.Critical, &a.Counts.High, &a.Counts.Medium, &a.Counts.Low,
		&a.Partial, &a.ErrorMessage, &a.CreatedAt, &a.StartedAt, &a.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAudits(rows *sql.Rows) ([]domain.Audit, error) {
	var audits []domain.Audit
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, *audit)
	}
	return audits, rows.Err()
}
