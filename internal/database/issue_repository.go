package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/seo-auditor/internal/domain"
)

const issueSelectList = `id, audit_id, issue_type, severity,
			resource_type, resource_id, resource_label,
			message, suggestion, fixed`

// IssueRepository manages issue records in PostgreSQL.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new repository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// InsertBatch inserts all issues in one transaction. Either every
// issue lands or none does.
func (r *IssueRepository) InsertBatch(ctx context.Context, issues []*domain.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert issues: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
		INSERT INTO issues (id, audit_id, issue_type, severity,
			resource_type, resource_id, resource_label,
			message, suggestion, fixed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert issues: %w", err)
	}
	defer stmt.Close()

	for _, issue := range issues {
		_, execErr := stmt.ExecContext(ctx,
			issue.ID, issue.AuditID, issue.Type, issue.Severity,
			issue.ResourceType, issue.ResourceID, issue.ResourceLabel,
			issue.Message, issue.Suggestion, issue.Fixed,
		)
		if execErr != nil {
			return fmt.Errorf("insert issue %s: %w", issue.ID, execErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit insert issues: %w", commitErr)
	}
	return nil
}

// ListByAudit returns every issue found by an audit, worst first.
func (r *IssueRepository) ListByAudit(ctx context.Context, auditID string) ([]domain.Issue, error) {
	query := `SELECT ` + issueSelectList + `
		FROM issues
		WHERE audit_id = $1
		ORDER BY
			CASE severity
				WHEN 'critical' THEN 0
				WHEN 'high' THEN 1
				WHEN 'medium' THEN 2
				ELSE 3
			END,
			resource_label ASC`

	rows, err := r.db.QueryContext(ctx, query, auditID)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var issues []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		scanErr := rows.Scan(
			&issue.ID, &issue.AuditID, &issue.Type, &issue.Severity,
			&issue.ResourceType, &issue.ResourceID, &issue.ResourceLabel,
			&issue.Message, &issue.Suggestion, &issue.Fixed,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("scan issue: %w", scanErr)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// SetFixed updates the fixed flag on one issue. Returns
// domain.ErrNotFound when the issue does not exist.
func (r *IssueRepository) SetFixed(ctx context.Context, id string, fixed bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE issues SET fixed = $2 WHERE id = $1`, id, fixed)
	if err != nil {
		return fmt.Errorf("set issue fixed: %w", err)
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

// CountBySeverity tallies an audit's issues per severity class.
func (r *IssueRepository) CountBySeverity(ctx context.Context, auditID string) (domain.SeverityCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE severity = 'critical'),
			COUNT(*) FILTER (WHERE severity = 'high'),
			COUNT(*) FILTER (WHERE severity = 'medium'),
			COUNT(*) FILTER (WHERE severity = 'low')
		FROM issues
		WHERE audit_id = $1`

	var counts domain.SeverityCounts
	err := r.db.QueryRowContext(ctx, query, auditID).Scan(
		&counts.Critical, &counts.High, &counts.Medium, &counts.Low,
	)
	if err != nil {
		return domain.SeverityCounts{}, fmt.Errorf("count issues by severity: %w", err)
	}
	return counts, nil
}
