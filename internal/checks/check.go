// Package checks implements the SEO analyzers that inspect storefront
// content, and the concurrent pipeline that runs them.
package checks

import (
	"context"

	"github.com/jonesrussell/seo-auditor/internal/domain"
)

// Check is one independent analyzer. Each check owns exactly one issue
// type and emits per-resource issue drafts for it.
type Check interface {
	// Name identifies the check in logs and results.
	Name() string
	// IssueType is the single issue type this check emits.
	IssueType() domain.IssueType
	// Run inspects the content and returns the issues found. An error
	// means the check itself failed and produced no usable result.
	Run(ctx context.Context, content *domain.StoreContent) ([]domain.IssueDraft, error)
}

// Result is the outcome of one check within a pipeline run.
type Result struct {
	Check  string
	Type   domain.IssueType
	Issues []domain.IssueDraft
	Err    error
}

// Succeeded reports whether the check completed without error.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// resource is the flattened view the metadata checks iterate over.
// Products, collections and pages all carry a meta title and a meta
// description, so one pass covers all three.
type resource struct {
	Type        domain.ResourceType
	ID          string
	Label       string
	MetaTitle   string
	Description string
}

func flattenResources(content *domain.StoreContent) []resource {
	resources := make([]resource, 0, len(content.Products)+len(content.Collections)+len(content.Pages))
	for _, p := range content.Products {
		resources = append(resources, resource{
			Type:        domain.ResourceProduct,
			ID:          p.ID,
			Label:       p.Title,
			MetaTitle:   p.MetaTitle,
			Description: p.MetaDescription,
		})
	}
	for _, c := range content.Collections {
		resources = append(resources, resource{
			Type:        domain.ResourceCollection,
			ID:          c.ID,
			Label:       c.Title,
			MetaTitle:   c.MetaTitle,
			Description: c.MetaDescription,
		})
	}
	for _, p := range content.Pages {
		resources = append(resources, resource{
			Type:        domain.ResourcePage,
			ID:          p.ID,
			Label:       p.Title,
			MetaTitle:   p.MetaTitle,
			Description: p.MetaDescription,
		})
	}
	return resources
}
