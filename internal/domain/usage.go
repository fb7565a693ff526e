package domain

import (
	"time"
)

// Action is one of the metered operations capped per account per UTC day.
type Action string

const (
	ActionAuditRuns          Action = "audit_runs"
	ActionBulkEdits          Action = "bulk_edits"
	ActionMetaUpdates        Action = "meta_updates"
	ActionAltTextUpdates     Action = "alt_text_updates"
	ActionMetricsCalls       Action = "metrics_calls"
	ActionSitemapGenerations Action = "sitemap_generations"
)

// actionCount is the number of metered actions.
const actionCount = 6

// AllActions returns the metered actions in display order.
func AllActions() []Action {
	actions := make([]Action, 0, actionCount)
	actions = append(actions,
		ActionAuditRuns, ActionBulkEdits, ActionMetaUpdates,
		ActionAltTextUpdates, ActionMetricsCalls, ActionSitemapGenerations,
	)
	return actions
}

// IsValid reports whether a is a recognised metered action.
func (a Action) IsValid() bool {
	_, ok := freeLimits[a]
	return ok
}

// PlanTier is the account's billing tier.
type PlanTier string

const (
	TierFree PlanTier = "free"
	TierPro  PlanTier = "pro"
)

var freeLimits = map[Action]int{
	ActionAuditRuns:          10,
	ActionBulkEdits:          10,
	ActionMetaUpdates:        50,
	ActionAltTextUpdates:     100,
	ActionMetricsCalls:       100,
	ActionSitemapGenerations: 5,
}

var proLimits = map[Action]int{
	ActionAuditRuns:          100,
	ActionBulkEdits:          100,
	ActionMetaUpdates:        500,
	ActionAltTextUpdates:     1000,
	ActionMetricsCalls:       1000,
	ActionSitemapGenerations: 50,
}

// LimitFor returns the daily limit for an action on the given tier.
// Unknown tiers fall back to the free tier.
func LimitFor(tier PlanTier, action Action) int {
	if tier == TierPro {
		return proLimits[action]
	}
	return freeLimits[action]
}

// UsageRecord holds one account's metered-action counters for one UTC
// day. Exactly one record exists per (account, day); a record dated
// before today reads as all zero.
type UsageRecord struct {
	AccountID          string    `db:"account_id"          json:"account_id"`
	Day                time.Time `db:"usage_date"          json:"day"`
	AuditRuns          int       `db:"audit_runs"          json:"audit_runs"`
	BulkEdits          int       `db:"bulk_edits"          json:"bulk_edits"`
	MetaUpdates        int       `db:"meta_updates"        json:"meta_updates"`
	AltTextUpdates     int       `db:"alt_text_updates"    json:"alt_text_updates"`
	MetricsCalls       int       `db:"metrics_calls"       json:"metrics_calls"`
	SitemapGenerations int       `db:"sitemap_generations" json:"sitemap_generations"`
}

// Counter returns the stored count for an action.
func (r *UsageRecord) Counter(action Action) int {
	switch action {
	case ActionAuditRuns:
		return r.AuditRuns
	case ActionBulkEdits:
		return r.BulkEdits
	case ActionMetaUpdates:
		return r.MetaUpdates
	case ActionAltTextUpdates:
		return r.AltTextUpdates
	case ActionMetricsCalls:
		return r.MetricsCalls
	case ActionSitemapGenerations:
		return r.SitemapGenerations
	default:
		return 0
	}
}

// ActionUsage is one action's usage against its daily limit.
type ActionUsage struct {
	Action    Action `json:"action"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

// UsageStatus is the per-action usage snapshot for one account today.
type UsageStatus struct {
	AccountID string        `json:"account_id"`
	Day       time.Time     `json:"day"`
	Tier      PlanTier      `json:"tier"`
	Actions   []ActionUsage `json:"actions"`
}

// UTCDay truncates t to its UTC calendar day.
func UTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
