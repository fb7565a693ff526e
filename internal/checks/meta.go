package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonesrussell/seo-auditor/internal/domain"
)

// MissingTitleCheck flags resources that have no meta title set.
type MissingTitleCheck struct{}

func NewMissingTitleCheck() *MissingTitleCheck { return &MissingTitleCheck{} }

func (c *MissingTitleCheck) Name() string { return "missing-title" }

func (c *MissingTitleCheck) IssueType() domain.IssueType { return domain.IssueMissingTitle }

func (c *MissingTitleCheck) Run(_ context.Context, content *domain.StoreContent) ([]domain.IssueDraft, error) {
	var issues []domain.IssueDraft
	for _, res := range flattenResources(content) {
		if strings.TrimSpace(res.MetaTitle) != "" {
			continue
		}
		issues = append(issues, domain.IssueDraft{
			Type:          domain.IssueMissingTitle,
			ResourceType:  res.Type,
			ResourceID:    res.ID,
			ResourceLabel: res.Label,
			Message:       fmt.Sprintf("%s %q has no meta title", res.Type, res.Label),
			Suggestion:    "Set a unique meta title of 50-60 characters describing the page content",
		})
	}
	return issues, nil
}

// DuplicateTitleCheck flags meta titles shared by more than one
// resource. Every resource carrying a duplicated title is reported,
// not just the second and later occurrences.
type DuplicateTitleCheck struct{}

func NewDuplicateTitleCheck() *DuplicateTitleCheck { return &DuplicateTitleCheck{} }

func (c *DuplicateTitleCheck) Name() string { return "duplicate-title" }

func (c *DuplicateTitleCheck) IssueType() domain.IssueType { return domain.IssueDuplicateTitle }

func (c *DuplicateTitleCheck) Run(_ context.Context, content *domain.StoreContent) ([]domain.IssueDraft, error) {
	resources := flattenResources(content)

	counts := make(map[string]int)
	for _, res := range resources {
		title := normalizeTitle(res.MetaTitle)
		if title == "" {
			continue
		}
		counts[title]++
	}

	var issues []domain.IssueDraft
	for _, res := range resources {
		title := normalizeTitle(res.MetaTitle)
		if title == "" || counts[title] < 2 {
			continue
		}
		issues = append(issues, domain.IssueDraft{
			Type:          domain.IssueDuplicateTitle,
			ResourceType:  res.Type,
			ResourceID:    res.ID,
			ResourceLabel: res.Label,
			Message:       fmt.Sprintf("meta title %q is shared by %d resources", res.MetaTitle, counts[title]),
			Suggestion:    "Give each page a distinct meta title so search engines can tell them apart",
		})
	}
	return issues, nil
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// MissingDescriptionCheck flags resources that have no meta
// description set.
type MissingDescriptionCheck struct{}

func NewMissingDescriptionCheck() *MissingDescriptionCheck { return &MissingDescriptionCheck{} }

func (c *MissingDescriptionCheck) Name() string { return "missing-description" }

func (c *MissingDescriptionCheck) IssueType() domain.IssueType { return domain.IssueMissingDescription }

func (c *MissingDescriptionCheck) Run(_ context.Context, content *domain.StoreContent) ([]domain.IssueDraft, error) {
	var issues []domain.IssueDraft
	for _, res := range flattenResources(content) {
		if strings.TrimSpace(res.Description) != "" {
			continue
		}
		issues = append(issues, domain.IssueDraft{
			Type:          domain.IssueMissingDescription,
			ResourceType:  res.Type,
			ResourceID:    res.ID,
			ResourceLabel: res.Label,
			Message:       fmt.Sprintf("%s %q has no meta description", res.Type, res.Label),
			Suggestion:    "Write a meta description of 120-160 characters summarising the page",
		})
	}
	return issues, nil
}
