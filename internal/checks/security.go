package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonesrussell/seo-auditor/internal/domain"
)

// insecureRefs are the attribute prefixes that load a subresource over
// plain HTTP from within an HTTPS page.
var insecureRefs = []string{
	`src="http://`,
	`src='http://`,
	`href="http://`,
	`href='http://`,
}

// MixedContentCheck flags pages served over HTTPS whose body embeds
// resources over plain HTTP. Browsers block or downgrade these, which
// breaks the page and its search ranking.
type MixedContentCheck struct{}

func NewMixedContentCheck() *MixedContentCheck { return &MixedContentCheck{} }

func (c *MixedContentCheck) Name() string { return "mixed-content" }

func (c *MixedContentCheck) IssueType() domain.IssueType { return domain.IssueMixedContent }

func (c *MixedContentCheck) Run(_ context.Context, content *domain.StoreContent) ([]domain.IssueDraft, error) {
	var issues []domain.IssueDraft
	for _, page := range content.Pages {
		if !strings.HasPrefix(page.URL, "https://") {
			continue
		}
		count := insecureRefCount(page.BodyHTML)
		if count == 0 {
			continue
		}
		issues = append(issues, domain.IssueDraft{
			Type:          domain.IssueMixedContent,
			ResourceType:  domain.ResourcePage,
			ResourceID:    page.ID,
			ResourceLabel: page.Title,
			Message:       fmt.Sprintf("page %q embeds %d resource(s) over insecure http://", page.Title, count),
			Suggestion:    "Serve all embedded images, scripts and stylesheets over https://",
		})
	}
	return issues, nil
}

func insecureRefCount(body string) int {
	lower := strings.ToLower(body)
	count := 0
	for _, ref := range insecureRefs {
		count += strings.Count(lower, ref)
	}
	return count
}
