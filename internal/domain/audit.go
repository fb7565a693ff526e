// Package domain contains the core models for the seo-auditor service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditStatus represents the lifecycle state of an audit.
type AuditStatus string

const (
	// AuditPending means the audit record exists but has not started.
	AuditPending AuditStatus = "pending"
	// AuditRunning means the check pipeline is executing.
	AuditRunning AuditStatus = "running"
	// AuditCompleted is the terminal success state (possibly partial).
	AuditCompleted AuditStatus = "completed"
	// AuditFailed is the terminal failure state.
	AuditFailed AuditStatus = "failed"
)

var validStatuses = map[AuditStatus]bool{
	AuditPending:   true,
	AuditRunning:   true,
	AuditCompleted: true,
	AuditFailed:    true,
}

// IsValid reports whether s is a recognised audit status.
func (s AuditStatus) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal reports whether s admits no further transitions.
func (s AuditStatus) IsTerminal() bool {
	return s == AuditCompleted || s == AuditFailed
}

// SeverityCounts holds per-severity issue totals for one audit.
type SeverityCounts struct {
	Critical int `db:"critical_count" json:"critical"`
	High     int `db:"high_count"     json:"high"`
	Medium   int `db:"medium_count"   json:"medium"`
	Low      int `db:"low_count"      json:"low"`
}

// Total returns the issue count across all severities.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}

// Add increments the counter matching sev.
func (c *SeverityCounts) Add(sev Severity) {
	switch sev {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	}
}

// Audit is one execution of the check pipeline against an account's
// storefront content. Score is set only in a terminal state; the
// severity counters sum to the total issue count.
type Audit struct {
	ID           string         `db:"id"            json:"id"`
	AccountID    string         `db:"account_id"    json:"account_id"`
	Status       AuditStatus    `db:"status"        json:"status"`
	Score        *int           `db:"score"         json:"score,omitempty"`
	Counts       SeverityCounts `json:"issue_counts"`
	Partial      bool           `db:"partial"       json:"partial"`
	ErrorMessage *string        `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time      `db:"created_at"    json:"created_at"`
	StartedAt    *time.Time     `db:"started_at"    json:"started_at,omitempty"`
	CompletedAt  *time.Time     `db:"completed_at"  json:"completed_at,omitempty"`
}

// NewAudit creates a pending audit for an account.
func NewAudit(accountID string) *Audit {
	return &Audit{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Status:    AuditPending,
	}
}
