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

// actionColumns whitelists the counter column per metered action.
// Column names are never interpolated from caller input directly.
var actionColumns = map[domain.Action]string{
	domain.ActionAuditRuns:          "audit_runs",
	domain.ActionBulkEdits:          "bulk_edits",
	domain.ActionMetaUpdates:        "meta_updates",
	domain.ActionAltTextUpdates:     "alt_text_updates",
	domain.ActionMetricsCalls:       "metrics_calls",
	domain.ActionSitemapGenerations: "sitemap_generations",
}

// UsageRepository manages daily usage counters in PostgreSQL.
type UsageRepository struct {
	db *sqlx.DB
}

// NewUsageRepository creates a new repository.
func NewUsageRepository(db *sqlx.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// GetForDay returns the usage record for (account, day), or
// domain.ErrNotFound when no action has been recorded yet that day.
func (r *UsageRepository) GetForDay(ctx context.Context, accountID string, day time.Time) (*domain.UsageRecord, error) {
	query := `
		SELECT account_id, usage_date, audit_runs, bulk_edits,
		       meta_updates, alt_text_updates, metrics_calls, sitemap_generations
		FROM usage_records
		WHERE account_id = $1 AND usage_date = $2`

	var record domain.UsageRecord
	err := r.db.QueryRowContext(ctx, query, accountID, day).Scan(
		&record.AccountID, &record.Day,
		&record.AuditRuns, &record.BulkEdits, &record.MetaUpdates,
		&record.AltTextUpdates, &record.MetricsCalls, &record.SitemapGenerations,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get usage for day: %w", err)
	}
	return &record, nil
}

// IncrementAction adds amount to one counter of the (account, day)
// row, creating the row if it does not exist. The upsert is a single
// atomic statement, so concurrent increments from multiple processes
// never lose updates.
func (r *UsageRepository) IncrementAction(
	ctx context.Context,
	accountID string,
	day time.Time,
	action domain.Action,
	amount int,
) error {
	column, ok := actionColumns[action]
	if !ok {
		return fmt.Errorf("unknown metered action %q", action)
	}

	query := fmt.Sprintf(`
		INSERT INTO usage_records (account_id, usage_date, %[1]s)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, usage_date)
		DO UPDATE SET %[1]s = usage_records.%[1]s + $3`, column)

	if _, err := r.db.ExecContext(ctx, query, accountID, day, amount); err != nil {
		return fmt.Errorf("increment %s: %w", action, err)
	}
	return nil
}

// DeleteBefore removes usage rows dated before day. Housekeeping only;
// stale rows are never read because lookups address today's date.
func (r *UsageRepository) DeleteBefore(ctx context.Context, day time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM usage_records WHERE usage_date < $1`, day)
	if err != nil {
		return 0, fmt.Errorf("delete stale usage: %w", err)
	}
	return result.RowsAffected()
}
