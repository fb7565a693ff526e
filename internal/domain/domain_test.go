package domain_test

import (
	"testing"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/domain"
)

func TestAuditStatus_IsTerminal(t *testing.T) {
	testCases := []struct {
		status domain.AuditStatus
		want   bool
	}{
		{domain.AuditPending, false},
		{domain.AuditRunning, false},
		{domain.AuditCompleted, true},
		{domain.AuditFailed, true},
	}

	for _, tc := range testCases {
		if got := tc.status.IsTerminal(); got != tc.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestSeverityCounts_TotalMatchesAdds(t *testing.T) {
	var counts domain.SeverityCounts

	severities := []domain.Severity{
		domain.SeverityCritical, domain.SeverityCritical,
		domain.SeverityHigh,
		domain.SeverityMedium, domain.SeverityMedium, domain.SeverityMedium,
		domain.SeverityLow,
	}
	for _, sev := range severities {
		counts.Add(sev)
	}

	if counts.Total() != len(severities) {
		t.Errorf("Total() = %d, want %d", counts.Total(), len(severities))
	}
	if counts.Critical != 2 || counts.High != 1 || counts.Medium != 3 || counts.Low != 1 {
		t.Errorf("counts = %+v, want 2/1/3/1", counts)
	}
}

func TestSeverityFor_FixedClasses(t *testing.T) {
	testCases := []struct {
		issueType domain.IssueType
		want      domain.Severity
	}{
		{domain.IssueBrokenLink, domain.SeverityCritical},
		{domain.IssueMixedContent, domain.SeverityCritical},
		{domain.IssueMissingTitle, domain.SeverityHigh},
		{domain.IssueIndexingDirective, domain.SeverityHigh},
		{domain.IssueDuplicateTitle, domain.SeverityMedium},
		{domain.IssueMissingDescription, domain.SeverityMedium},
		{domain.IssueMissingAltText, domain.SeverityLow},
	}

	for _, tc := range testCases {
		if got := domain.SeverityFor(tc.issueType); got != tc.want {
			t.Errorf("SeverityFor(%s) = %s, want %s", tc.issueType, got, tc.want)
		}
	}
}

func TestNewIssue_AssignsIdentityAndSeverity(t *testing.T) {
	issue := domain.NewIssue("audit-1", domain.IssueDraft{
		Type:          domain.IssueBrokenLink,
		ResourceType:  domain.ResourcePage,
		ResourceID:    "page-1",
		ResourceLabel: "About us",
		Message:       "link returns 404",
	})

	if issue.ID == "" {
		t.Error("NewIssue() should assign an ID")
	}
	if issue.AuditID != "audit-1" {
		t.Errorf("AuditID = %q, want audit-1", issue.AuditID)
	}
	if issue.Severity != domain.SeverityCritical {
		t.Errorf("Severity = %s, want critical", issue.Severity)
	}
	if issue.Fixed {
		t.Error("new issues must not be marked fixed")
	}
}

func TestLimitFor_Tiers(t *testing.T) {
	if got := domain.LimitFor(domain.TierFree, domain.ActionAuditRuns); got != 10 {
		t.Errorf("free audit_runs limit = %d, want 10", got)
	}
	if got := domain.LimitFor(domain.TierFree, domain.ActionSitemapGenerations); got != 5 {
		t.Errorf("free sitemap_generations limit = %d, want 5", got)
	}
	if got := domain.LimitFor(domain.TierPro, domain.ActionAuditRuns); got != 100 {
		t.Errorf("pro audit_runs limit = %d, want 100", got)
	}
	// Unknown tier falls back to free.
	if got := domain.LimitFor(domain.PlanTier("enterprise"), domain.ActionAuditRuns); got != 10 {
		t.Errorf("unknown tier audit_runs limit = %d, want free fallback 10", got)
	}
}

func TestUsageRecord_Counter(t *testing.T) {
	rec := domain.UsageRecord{
		AuditRuns:    3,
		MetricsCalls: 42,
	}

	if got := rec.Counter(domain.ActionAuditRuns); got != 3 {
		t.Errorf("Counter(audit_runs) = %d, want 3", got)
	}
	if got := rec.Counter(domain.ActionMetricsCalls); got != 42 {
		t.Errorf("Counter(metrics_calls) = %d, want 42", got)
	}
	if got := rec.Counter(domain.ActionBulkEdits); got != 0 {
		t.Errorf("Counter(bulk_edits) = %d, want 0", got)
	}
}

func TestUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2026-03-01 03:00 UTC+9 is 2026-02-28 18:00 UTC.
	local := time.Date(2026, 3, 1, 3, 0, 0, 0, loc)

	got := domain.UTCDay(local)
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("UTCDay() = %v, want %v", got, want)
	}
}

func TestQuotaExceededError_RemainingNeverNegative(t *testing.T) {
	err := &domain.QuotaExceededError{
		AccountID: "acct-1",
		Action:    domain.ActionAuditRuns,
		Used:      12,
		Limit:     10,
	}

	if got := err.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}
