package quota_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/clock"
	"github.com/jonesrussell/seo-auditor/internal/domain"
	"github.com/jonesrussell/seo-auditor/internal/logger"
	"github.com/jonesrussell/seo-auditor/internal/quota"
)

// fakeUsageRepo stores records by (account, day) like the real table.
type fakeUsageRepo struct {
	mu      sync.Mutex
	records map[string]*domain.UsageRecord
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{records: make(map[string]*domain.UsageRecord)}
}

func (f *fakeUsageRepo) key(accountID string, day time.Time) string {
	return accountID + "|" + day.Format("2006-01-02")
}

func (f *fakeUsageRepo) GetForDay(_ context.Context, accountID string, day time.Time) (*domain.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.records[f.key(accountID, day)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeUsageRepo) IncrementAction(_ context.Context, accountID string, day time.Time, action domain.Action, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := f.key(accountID, day)
	record, ok := f.records[key]
	if !ok {
		record = &domain.UsageRecord{AccountID: accountID, Day: day}
		f.records[key] = record
	}

	switch action {
	case domain.ActionAuditRuns:
		record.AuditRuns += amount
	case domain.ActionBulkEdits:
		record.BulkEdits += amount
	case domain.ActionMetaUpdates:
		record.MetaUpdates += amount
	case domain.ActionAltTextUpdates:
		record.AltTextUpdates += amount
	case domain.ActionMetricsCalls:
		record.MetricsCalls += amount
	case domain.ActionSitemapGenerations:
		record.SitemapGenerations += amount
	}
	return nil
}

func (f *fakeUsageRepo) DeleteBefore(_ context.Context, day time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for key, record := range f.records {
		if record.Day.Before(day) {
			delete(f.records, key)
			deleted++
		}
	}
	return deleted, nil
}

var trackerStart = time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)

func newTracker() (*quota.Tracker, *fakeUsageRepo, *clock.Fake) {
	repo := newFakeUsageRepo()
	clk := clock.NewFake(trackerStart)
	return quota.NewTracker(repo, clk, logger.NewNop()), repo, clk
}

func TestTracker_AllowsWithinLimit(t *testing.T) {
	tracker, _, _ := newTracker()
	ctx := context.Background()

	decision, err := tracker.CanPerform(ctx, "acct-1", domain.TierFree, domain.ActionAuditRuns, 1)
	if err != nil {
		t.Fatalf("CanPerform() error = %v", err)
	}

	if !decision.Allowed {
		t.Error("first audit run of the day should be allowed")
	}
	if decision.Used != 0 || decision.Limit != 10 || decision.Remaining != 10 {
		t.Errorf("decision = %+v, want used 0 limit 10 remaining 10", decision)
	}
}

func TestTracker_RejectsPastLimit(t *testing.T) {
	tracker, _, _ := newTracker()
	ctx := context.Background()

	for range 10 {
		if err := tracker.Increment(ctx, "acct-1", domain.ActionAuditRuns, 1); err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
	}

	decision, err := tracker.CanPerform(ctx, "acct-1", domain.TierFree, domain.ActionAuditRuns, 1)
	if err != nil {
		t.Fatalf("CanPerform() error = %v", err)
	}

	if decision.Allowed {
		t.Error("11th audit run of the day should be rejected")
	}
	if decision.Used != 10 {
		t.Errorf("Used = %d, want 10", decision.Used)
	}
	if decision.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0 (never negative)", decision.Remaining)
	}
}

func TestTracker_ZeroAmountCheckAtLimit(t *testing.T) {
	tracker, _, _ := newTracker()
	ctx := context.Background()

	_ = tracker.Increment(ctx, "acct-1", domain.ActionSitemapGenerations, 5)

	decision, err := tracker.CanPerform(ctx, "acct-1", domain.TierFree, domain.ActionSitemapGenerations, 0)
	if err != nil {
		t.Fatalf("CanPerform() error = %v", err)
	}
	if !decision.Allowed {
		t.Error("zero-amount check at exactly the limit should be allowed")
	}

	decision, _ = tracker.CanPerform(ctx, "acct-1", domain.TierFree, domain.ActionSitemapGenerations, 1)
	if decision.Allowed {
		t.Error("one unit past the limit should be rejected")
	}
}

func TestTracker_ProTierLimits(t *testing.T) {
	tracker, _, _ := newTracker()
	ctx := context.Background()

	_ = tracker.Increment(ctx, "acct-1", domain.ActionAuditRuns, 10)

	decision, err := tracker.CanPerform(ctx, "acct-1", domain.TierPro, domain.ActionAuditRuns, 1)
	if err != nil {
		t.Fatalf("CanPerform() error = %v", err)
	}
	if !decision.Allowed {
		t.Error("10 used should still be allowed on the pro tier")
	}
	if decision.Limit != 100 {
		t.Errorf("Limit = %d, want 100", decision.Limit)
	}
}

func TestTracker_RollsOverAtUTCMidnight(t *testing.T) {
	tracker, _, clk := newTracker()
	ctx := context.Background()

	_ = tracker.Increment(ctx, "acct-1", domain.ActionAuditRuns, 10)

	decision, _ := tracker.CanPerform(ctx, "acct-1", domain.TierFree, domain.ActionAuditRuns, 1)
	if decision.Allowed {
		t.Fatal("limit should be reached before rollover")
	}

	// Next UTC day: yesterday's record must read as all zero without
	// any reset call.
	clk.Advance(24 * time.Hour)

	decision, err := tracker.CanPerform(ctx, "acct-1", domain.TierFree, domain.ActionAuditRuns, 1)
	if err != nil {
		t.Fatalf("CanPerform() error = %v", err)
	}
	if !decision.Allowed {
		t.Error("usage should roll over implicitly on the next UTC day")
	}
	if decision.Used != 0 {
		t.Errorf("Used = %d after rollover, want 0", decision.Used)
	}

	status, err := tracker.Status(ctx, "acct-1", domain.TierFree)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	for _, usage := range status.Actions {
		if usage.Used != 0 {
			t.Errorf("Status %s Used = %d after rollover, want 0", usage.Action, usage.Used)
		}
	}
}

func TestTracker_StatusSnapshot(t *testing.T) {
	tracker, _, _ := newTracker()
	ctx := context.Background()

	_ = tracker.Increment(ctx, "acct-1", domain.ActionAuditRuns, 3)
	_ = tracker.Increment(ctx, "acct-1", domain.ActionMetaUpdates, 7)

	status, err := tracker.Status(ctx, "acct-1", domain.TierFree)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if len(status.Actions) != 6 {
		t.Fatalf("Status has %d actions, want 6", len(status.Actions))
	}

	byAction := make(map[domain.Action]domain.ActionUsage)
	for _, usage := range status.Actions {
		byAction[usage.Action] = usage
	}

	if got := byAction[domain.ActionAuditRuns]; got.Used != 3 || got.Remaining != 7 {
		t.Errorf("audit_runs = %+v, want used 3 remaining 7", got)
	}
	if got := byAction[domain.ActionMetaUpdates]; got.Used != 7 || got.Remaining != 43 {
		t.Errorf("meta_updates = %+v, want used 7 remaining 43", got)
	}
}

func TestTracker_ResetStalePurgesOldRows(t *testing.T) {
	tracker, repo, clk := newTracker()
	ctx := context.Background()

	_ = tracker.Increment(ctx, "acct-1", domain.ActionAuditRuns, 1)
	_ = tracker.Increment(ctx, "acct-2", domain.ActionBulkEdits, 1)

	clk.Advance(48 * time.Hour)
	_ = tracker.Increment(ctx, "acct-1", domain.ActionAuditRuns, 1)

	deleted, err := tracker.ResetStale(ctx)
	if err != nil {
		t.Fatalf("ResetStale() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("ResetStale() deleted = %d, want 2", deleted)
	}

	// Today's row survives.
	today := domain.UTCDay(clk.Now())
	if _, err := repo.GetForDay(ctx, "acct-1", today); err != nil {
		t.Errorf("today's record should survive the purge: %v", err)
	}
}

func TestTracker_UnknownActionRejected(t *testing.T) {
	tracker, _, _ := newTracker()

	if _, err := tracker.CanPerform(context.Background(), "acct-1", domain.TierFree, domain.Action("teleports"), 1); err == nil {
		t.Error("CanPerform() with unknown action should fail")
	}
}
