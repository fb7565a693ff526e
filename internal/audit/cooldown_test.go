package audit_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/audit"
	"github.com/jonesrussell/seo-auditor/internal/clock"
	"github.com/jonesrussell/seo-auditor/internal/domain"
)

// fakeAuditRepo keeps audits in memory and enforces the same status
// conditions as the SQL repository.
type fakeAuditRepo struct {
	mu     sync.Mutex
	audits map[string]*domain.Audit
	now    func() time.Time

	createErr error
	failCalls int
}

func newFakeAuditRepo(clk clock.Clock) *fakeAuditRepo {
	return &fakeAuditRepo{
		audits: make(map[string]*domain.Audit),
		now:    clk.Now,
	}
}

func (f *fakeAuditRepo) CreatePending(_ context.Context, a *domain.Audit) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.audits {
		if existing.AccountID == a.AccountID && !existing.Status.IsTerminal() {
			return domain.ErrAuditInProgress
		}
	}
	a.Status = domain.AuditPending
	a.CreatedAt = f.now()
	copied := *a
	f.audits[a.ID] = &copied
	return nil
}

func (f *fakeAuditRepo) MarkRunning(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.audits[id]
	if !ok || a.Status != domain.AuditPending {
		return domain.ErrNotFound
	}
	now := f.now()
	a.Status = domain.AuditRunning
	a.StartedAt = &now
	return nil
}

func (f *fakeAuditRepo) MarkCompleted(_ context.Context, id string, score int, counts domain.SeverityCounts, partial bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.audits[id]
	if !ok || a.Status != domain.AuditRunning {
		return domain.ErrNotFound
	}
	now := f.now()
	a.Status = domain.AuditCompleted
	a.Score = &score
	a.Counts = counts
	a.Partial = partial
	a.CompletedAt = &now
	return nil
}

func (f *fakeAuditRepo) MarkFailed(_ context.Context, id, errorMsg string, counts domain.SeverityCounts, partial bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failCalls++
	a, ok := f.audits[id]
	if !ok || a.Status.IsTerminal() {
		return domain.ErrNotFound
	}
	now := f.now()
	a.Status = domain.AuditFailed
	a.ErrorMessage = &errorMsg
	a.Counts = counts
	a.Partial = partial
	a.CompletedAt = &now
	return nil
}

func (f *fakeAuditRepo) FailAbandoned(_ context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := f.now().Add(-olderThan)
	var reaped int64
	for _, a := range f.audits {
		if a.Status == domain.AuditRunning && a.StartedAt != nil && a.StartedAt.Before(cutoff) {
			now := f.now()
			msg := "audit abandoned: process did not report a result"
			a.Status = domain.AuditFailed
			a.ErrorMessage = &msg
			a.CompletedAt = &now
			reaped++
		}
	}
	return reaped, nil
}

func (f *fakeAuditRepo) GetByID(_ context.Context, id string) (*domain.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.audits[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAuditRepo) ListByAccount(_ context.Context, accountID string, limit int) ([]domain.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var audits []domain.Audit
	for _, a := range f.audits {
		if a.AccountID == accountID {
			audits = append(audits, *a)
		}
	}
	sort.Slice(audits, func(i, j int) bool {
		return audits[i].CreatedAt.After(audits[j].CreatedAt)
	})
	if len(audits) > limit {
		audits = audits[:limit]
	}
	return audits, nil
}

func (f *fakeAuditRepo) LatestTerminal(_ context.Context, accountID string) (*domain.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *domain.Audit
	for _, a := range f.audits {
		if a.AccountID != accountID || !a.Status.IsTerminal() || a.CompletedAt == nil {
			continue
		}
		if latest == nil || a.CompletedAt.After(*latest.CompletedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeAuditRepo) HasActive(_ context.Context, accountID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.audits {
		if a.AccountID == accountID && !a.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

// seedTerminal inserts a finished audit completed at the given time.
func (f *fakeAuditRepo) seedTerminal(accountID string, status domain.AuditStatus, completedAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a := domain.NewAudit(accountID)
	a.Status = status
	a.CompletedAt = &completedAt
	f.audits[a.ID] = a
}

var cooldownStart = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func TestGuard_FirstAuditAlwaysAllowed(t *testing.T) {
	clk := clock.NewFake(cooldownStart)
	guard := audit.NewGuard(newFakeAuditRepo(clk), time.Hour, clk)

	decision, err := guard.CanStart(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("CanStart() error = %v", err)
	}
	if !decision.Allowed {
		t.Error("account with no history should be allowed")
	}
}

func TestGuard_InclusiveBoundary(t *testing.T) {
	clk := clock.NewFake(cooldownStart)
	repo := newFakeAuditRepo(clk)
	guard := audit.NewGuard(repo, time.Hour, clk)
	ctx := context.Background()

	repo.seedTerminal("acct-1", domain.AuditCompleted, cooldownStart)

	// One millisecond before the boundary: rejected.
	clk.Set(cooldownStart.Add(time.Hour - time.Millisecond))
	decision, err := guard.CanStart(ctx, "acct-1")
	if err != nil {
		t.Fatalf("CanStart() error = %v", err)
	}
	if decision.Allowed {
		t.Error("1ms before the cooldown boundary should be rejected")
	}
	if want := cooldownStart.Add(time.Hour); !decision.NextAllowedAt.Equal(want) {
		t.Errorf("NextAllowedAt = %v, want %v", decision.NextAllowedAt, want)
	}

	// Exactly at the boundary: allowed.
	clk.Set(cooldownStart.Add(time.Hour))
	decision, err = guard.CanStart(ctx, "acct-1")
	if err != nil {
		t.Fatalf("CanStart() error = %v", err)
	}
	if !decision.Allowed {
		t.Error("exactly the cooldown having elapsed should be allowed")
	}
}

func TestGuard_FailedAuditAlsoStartsCooldown(t *testing.T) {
	clk := clock.NewFake(cooldownStart)
	repo := newFakeAuditRepo(clk)
	guard := audit.NewGuard(repo, time.Hour, clk)

	repo.seedTerminal("acct-1", domain.AuditFailed, cooldownStart)
	clk.Set(cooldownStart.Add(10 * time.Minute))

	decision, err := guard.CanStart(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("CanStart() error = %v", err)
	}
	if decision.Allowed {
		t.Error("a failed audit anchors the cooldown the same as a completed one")
	}
}

func TestGuard_ActiveAuditBlocks(t *testing.T) {
	clk := clock.NewFake(cooldownStart)
	repo := newFakeAuditRepo(clk)
	guard := audit.NewGuard(repo, time.Hour, clk)
	ctx := context.Background()

	if err := repo.CreatePending(ctx, domain.NewAudit("acct-1")); err != nil {
		t.Fatalf("seed pending audit: %v", err)
	}

	decision, err := guard.CanStart(ctx, "acct-1")
	if err != nil {
		t.Fatalf("CanStart() error = %v", err)
	}
	if decision.Allowed {
		t.Error("an in-flight audit must block a new start")
	}
}

func TestFakeRepo_CreatePendingExcludesConcurrentStarts(t *testing.T) {
	// The conditional insert is the real mutual exclusion; the fake
	// mirrors it so service tests exercise the same contract.
	clk := clock.NewFake(cooldownStart)
	repo := newFakeAuditRepo(clk)
	ctx := context.Background()

	var successes int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.CreatePending(ctx, domain.NewAudit("acct-1")); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrAuditInProgress) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("%d concurrent starts succeeded, want exactly 1", successes)
	}
}
