package domain

import (
	"github.com/google/uuid"
)

// IssueType identifies one class of SEO defect.
type IssueType string

const (
	IssueMissingTitle       IssueType = "missing-title"
	IssueDuplicateTitle     IssueType = "duplicate-title"
	IssueMissingDescription IssueType = "missing-description"
	IssueMissingAltText     IssueType = "missing-alt-text"
	IssueBrokenLink         IssueType = "broken-link"
	IssueMixedContent       IssueType = "mixed-content"
	IssueIndexingDirective  IssueType = "indexing-directive"
)

// Severity classifies how damaging an issue type is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// issueSeverities maps each issue type to its fixed severity class.
var issueSeverities = map[IssueType]Severity{
	IssueMissingTitle:       SeverityHigh,
	IssueDuplicateTitle:     SeverityMedium,
	IssueMissingDescription: SeverityMedium,
	IssueMissingAltText:     SeverityLow,
	IssueBrokenLink:         SeverityCritical,
	IssueMixedContent:       SeverityCritical,
	IssueIndexingDirective:  SeverityHigh,
}

// SeverityFor returns the fixed severity class for an issue type.
func SeverityFor(t IssueType) Severity {
	if sev, ok := issueSeverities[t]; ok {
		return sev
	}
	return SeverityLow
}

// IsValid reports whether t is a recognised issue type.
func (t IssueType) IsValid() bool {
	_, ok := issueSeverities[t]
	return ok
}

// ResourceType identifies what kind of storefront resource an issue
// points at.
type ResourceType string

const (
	ResourceProduct    ResourceType = "product"
	ResourceCollection ResourceType = "collection"
	ResourcePage       ResourceType = "page"
	ResourceImage      ResourceType = "image"
)

// IssueDraft is an issue as produced by a check, before it is bound to
// an audit and assigned an identity.
type IssueDraft struct {
	Type          IssueType
	ResourceType  ResourceType
	ResourceID    string
	ResourceLabel string
	Message       string
	Suggestion    string
}

// Issue is a persisted SEO defect found by an audit. Issues are
// immutable after the audit completes except for the Fixed flag.
type Issue struct {
	ID            string       `db:"id"             json:"id"`
	AuditID       string       `db:"audit_id"       json:"audit_id"`
	Type          IssueType    `db:"issue_type"     json:"type"`
	Severity      Severity     `db:"severity"       json:"severity"`
	ResourceType  ResourceType `db:"resource_type"  json:"resource_type"`
	ResourceID    string       `db:"resource_id"    json:"resource_id"`
	ResourceLabel string       `db:"resource_label" json:"resource_label"`
	Message       string       `db:"message"        json:"message"`
	Suggestion    string       `db:"suggestion"     json:"suggestion"`
	Fixed         bool         `db:"fixed"          json:"fixed"`
}

// NewIssue materialises a draft against an audit, assigning identity
// and the fixed severity class for the draft's type.
func NewIssue(auditID string, draft IssueDraft) *Issue {
	return &Issue{
		ID:            uuid.NewString(),
		AuditID:       auditID,
		Type:          draft.Type,
		Severity:      SeverityFor(draft.Type),
		ResourceType:  draft.ResourceType,
		ResourceID:    draft.ResourceID,
		ResourceLabel: draft.ResourceLabel,
		Message:       draft.Message,
		Suggestion:    draft.Suggestion,
	}
}
