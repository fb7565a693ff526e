package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonesrussell/seo-auditor/internal/domain"
)

// IndexingDirectiveCheck flags published pages that tell search
// engines not to index them. Unpublished pages are ignored; hiding a
// draft is intentional.
type IndexingDirectiveCheck struct{}

func NewIndexingDirectiveCheck() *IndexingDirectiveCheck { return &IndexingDirectiveCheck{} }

func (c *IndexingDirectiveCheck) Name() string { return "indexing-directive" }

func (c *IndexingDirectiveCheck) IssueType() domain.IssueType { return domain.IssueIndexingDirective }

func (c *IndexingDirectiveCheck) Run(_ context.Context, content *domain.StoreContent) ([]domain.IssueDraft, error) {
	var issues []domain.IssueDraft
	for _, page := range content.Pages {
		if !page.Published {
			continue
		}
		directive := strings.ToLower(page.RobotsDirective)
		if !strings.Contains(directive, "noindex") && !strings.Contains(directive, "none") {
			continue
		}
		issues = append(issues, domain.IssueDraft{
			Type:          domain.IssueIndexingDirective,
			ResourceType:  domain.ResourcePage,
			ResourceID:    page.ID,
			ResourceLabel: page.Title,
			Message:       fmt.Sprintf("published page %q carries a %q robots directive and will not be indexed", page.Title, page.RobotsDirective),
			Suggestion:    "Remove the noindex directive if this page should appear in search results",
		})
	}
	return issues, nil
}
