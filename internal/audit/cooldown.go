// Package audit orchestrates the audit lifecycle: admission through
// the cooldown guard and usage quota, the check pipeline run, scoring,
// and the terminal state transition.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/clock"
	"github.com/jonesrussell/seo-auditor/internal/domain"
)

// AuditRepository is the persistence contract the orchestration layer
// depends on.
type AuditRepository interface {
	CreatePending(ctx context.Context, audit *domain.Audit) error
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, score int, counts domain.SeverityCounts, partial bool) error
	MarkFailed(ctx context.Context, id string, errorMsg string, counts domain.SeverityCounts, partial bool) error
	FailAbandoned(ctx context.Context, olderThan time.Duration) (int64, error)
	GetByID(ctx context.Context, id string) (*domain.Audit, error)
	ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Audit, error)
	LatestTerminal(ctx context.Context, accountID string) (*domain.Audit, error)
	HasActive(ctx context.Context, accountID string) (bool, error)
}

// CooldownDecision is the outcome of a cooldown check.
type CooldownDecision struct {
	Allowed       bool
	NextAllowedAt time.Time
}

// Guard enforces the audit cooldown: one finished audit per account
// per cooldown interval, and never two active audits at once.
type Guard struct {
	repo     AuditRepository
	cooldown time.Duration
	clock    clock.Clock
}

// NewGuard creates a cooldown guard.
func NewGuard(repo AuditRepository, cooldown time.Duration, clk clock.Clock) *Guard {
	if clk == nil {
		clk = clock.New()
	}
	return &Guard{repo: repo, cooldown: cooldown, clock: clk}
}

// CanStart reports whether the account may start an audit now. An
// account with no finished audit is always allowed. The boundary is
// inclusive: exactly the cooldown having elapsed is sufficient.
//
// This check is advisory; the atomic conditional insert in
// AuditRepository.CreatePending is what actually excludes concurrent
// starts.
func (g *Guard) CanStart(ctx context.Context, accountID string) (*CooldownDecision, error) {
	active, err := g.repo.HasActive(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("check active audit: %w", err)
	}
	if active {
		// No completion time to anchor on while an audit is in
		// flight; the earliest plausible retry is one cooldown out.
		return &CooldownDecision{
			Allowed:       false,
			NextAllowedAt: g.clock.Now().Add(g.cooldown),
		}, nil
	}

	last, err := g.repo.LatestTerminal(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return &CooldownDecision{Allowed: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest audit: %w", err)
	}
	if last.CompletedAt == nil {
		return &CooldownDecision{Allowed: true}, nil
	}

	nextAllowed := last.CompletedAt.Add(g.cooldown)
	if g.clock.Now().Sub(*last.CompletedAt) >= g.cooldown {
		return &CooldownDecision{Allowed: true, NextAllowedAt: nextAllowed}, nil
	}
	return &CooldownDecision{Allowed: false, NextAllowedAt: nextAllowed}, nil
}
