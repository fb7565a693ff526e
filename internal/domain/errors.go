package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when an entity is not found in the database.
var ErrNotFound = errors.New("entity not found")

// ErrAuditInProgress is returned when an account already has a pending
// or running audit.
var ErrAuditInProgress = errors.New("audit already in progress")

// ErrPipelineFailed is returned when zero checks succeeded or the
// content fetch failed; the audit transitions to FAILED.
var ErrPipelineFailed = errors.New("audit pipeline failed")

// RateLimitedError is returned when the cooldown has not elapsed or a
// concurrent audit is already running. Recoverable: retry after
// NextAllowedAt.
type RateLimitedError struct {
	AccountID     string
	NextAllowedAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("account %s rate limited until %s",
		e.AccountID, e.NextAllowedAt.UTC().Format(time.RFC3339))
}

// QuotaExceededError is returned when a metered action's daily limit is
// reached. Recoverable next UTC day.
type QuotaExceededError struct {
	AccountID string
	Action    Action
	Used      int
	Limit     int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("account %s exceeded daily %s quota (%d of %d used)",
		e.AccountID, e.Action, e.Used, e.Limit)
}

// Remaining returns the unused allowance, never negative.
func (e *QuotaExceededError) Remaining() int {
	if e.Used >= e.Limit {
		return 0
	}
	return e.Limit - e.Used
}
