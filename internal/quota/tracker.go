// Package quota tracks per-account daily usage of metered actions.
//
// Records are keyed by (account, UTC day), so the day rollover is
// implicit: a read or increment for "today" simply addresses today's
// row, and a row dated yesterday is never consulted again. Correctness
// does not depend on the housekeeping batch having run.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/clock"
	"github.com/jonesrussell/seo-auditor/internal/domain"
	"github.com/jonesrussell/seo-auditor/internal/logger"
)

// UsageRepository is the persistence contract for usage records.
type UsageRepository interface {
	// GetForDay returns the record for (account, day), or
	// domain.ErrNotFound when none exists yet.
	GetForDay(ctx context.Context, accountID string, day time.Time) (*domain.UsageRecord, error)
	// IncrementAction atomically upserts the (account, day) row and
	// adds amount to the action's counter.
	IncrementAction(ctx context.Context, accountID string, day time.Time, action domain.Action, amount int) error
	// DeleteBefore removes records older than day. Housekeeping only.
	DeleteBefore(ctx context.Context, day time.Time) (int64, error)
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed   bool `json:"allowed"`
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
}

// Tracker enforces daily limits on metered actions.
type Tracker struct {
	repo   UsageRepository
	clock  clock.Clock
	logger logger.Logger
}

// NewTracker creates a usage tracker.
func NewTracker(repo UsageRepository, clk clock.Clock, log logger.Logger) *Tracker {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Tracker{repo: repo, clock: clk, logger: log}
}

// CanPerform reports whether the account may perform amount more units
// of action today under its tier's limit. It never mutates state; a
// zero amount checks headroom without consuming any.
func (t *Tracker) CanPerform(
	ctx context.Context,
	accountID string,
	tier domain.PlanTier,
	action domain.Action,
	amount int,
) (*Decision, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("unknown metered action %q", action)
	}
	if amount < 0 {
		return nil, fmt.Errorf("negative amount %d for %s", amount, action)
	}

	used, err := t.usedToday(ctx, accountID, action)
	if err != nil {
		return nil, err
	}

	limit := domain.LimitFor(tier, action)
	return &Decision{
		Allowed:   used+amount <= limit,
		Used:      used,
		Limit:     limit,
		Remaining: remaining(used, limit),
	}, nil
}

// Increment records amount units of action against today's counters.
// Callers must have seen CanPerform return allowed first; the tracker
// does not re-check here.
func (t *Tracker) Increment(ctx context.Context, accountID string, action domain.Action, amount int) error {
	if !action.IsValid() {
		return fmt.Errorf("unknown metered action %q", action)
	}
	if amount <= 0 {
		return nil
	}

	day := domain.UTCDay(t.clock.Now())
	if err := t.repo.IncrementAction(ctx, accountID, day, action, amount); err != nil {
		return fmt.Errorf("increment %s for %s: %w", action, accountID, err)
	}
	return nil
}

// Status returns the per-action usage snapshot for the account today.
func (t *Tracker) Status(ctx context.Context, accountID string, tier domain.PlanTier) (*domain.UsageStatus, error) {
	day := domain.UTCDay(t.clock.Now())

	record, err := t.repo.GetForDay(ctx, accountID, day)
	if errors.Is(err, domain.ErrNotFound) {
		record = &domain.UsageRecord{AccountID: accountID, Day: day}
	} else if err != nil {
		return nil, fmt.Errorf("usage status for %s: %w", accountID, err)
	}

	status := &domain.UsageStatus{
		AccountID: accountID,
		Day:       day,
		Tier:      tier,
		Actions:   make([]domain.ActionUsage, 0, len(domain.AllActions())),
	}
	for _, action := range domain.AllActions() {
		used := record.Counter(action)
		limit := domain.LimitFor(tier, action)
		status.Actions = append(status.Actions, domain.ActionUsage{
			Action:    action,
			Used:      used,
			Limit:     limit,
			Remaining: remaining(used, limit),
		})
	}
	return status, nil
}

// ResetStale deletes usage rows older than today. Rollover never
// depends on this running; it only reclaims storage.
func (t *Tracker) ResetStale(ctx context.Context) (int64, error) {
	today := domain.UTCDay(t.clock.Now())

	deleted, err := t.repo.DeleteBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("reset stale usage: %w", err)
	}
	if deleted > 0 {
		t.logger.Info("purged stale usage records", logger.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (t *Tracker) usedToday(ctx context.Context, accountID string, action domain.Action) (int, error) {
	day := domain.UTCDay(t.clock.Now())

	record, err := t.repo.GetForDay(ctx, accountID, day)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load usage for %s: %w", accountID, err)
	}
	return record.Counter(action), nil
}

func remaining(used, limit int) int {
	if used >= limit {
		return 0
	}
	return limit - used
}
