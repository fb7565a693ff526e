package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonesrussell/seo-auditor/internal/domain"
)

// AltTextCheck flags storefront images that carry no alt text.
type AltTextCheck struct{}

func NewAltTextCheck() *AltTextCheck { return &AltTextCheck{} }

func (c *AltTextCheck) Name() string { return "missing-alt-text" }

func (c *AltTextCheck) IssueType() domain.IssueType { return domain.IssueMissingAltText }

func (c *AltTextCheck) Run(_ context.Context, content *domain.StoreContent) ([]domain.IssueDraft, error) {
	var issues []domain.IssueDraft

	for _, product := range content.Products {
		for _, image := range product.Images {
			if strings.TrimSpace(image.Alt) != "" {
				continue
			}
			issues = append(issues, domain.IssueDraft{
				Type:          domain.IssueMissingAltText,
				ResourceType:  domain.ResourceImage,
				ResourceID:    image.ID,
				ResourceLabel: product.Title,
				Message:       fmt.Sprintf("image on product %q has no alt text", product.Title),
				Suggestion:    "Describe the image in a short alt text so it is accessible and indexable",
			})
		}
	}

	for _, collection := range content.Collections {
		if collection.Image == nil || strings.TrimSpace(collection.Image.Alt) != "" {
			continue
		}
		issues = append(issues, domain.IssueDraft{
			Type:          domain.IssueMissingAltText,
			ResourceType:  domain.ResourceImage,
			ResourceID:    collection.Image.ID,
			ResourceLabel: collection.Title,
			Message:       fmt.Sprintf("image on collection %q has no alt text", collection.Title),
			Suggestion:    "Describe the image in a short alt text so it is accessible and indexable",
		})
	}

	return issues, nil
}
