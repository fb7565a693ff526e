package checks_test

import (
	"context"
	"testing"

	"github.com/jonesrussell/seo-auditor/internal/checks"
	"github.com/jonesrussell/seo-auditor/internal/domain"
)

func TestMissingTitleCheck_FlagsAllResourceKinds(t *testing.T) {
	content := &domain.StoreContent{
		Products: []domain.Product{
			{ID: "p1", Title: "Blue Mug", MetaTitle: "Blue Mug | Shop"},
			{ID: "p2", Title: "Red Mug", MetaTitle: "   "},
		},
		Collections: []domain.Collection{
			{ID: "c1", Title: "Mugs"},
		},
		Pages: []domain.Page{
			{ID: "pg1", Title: "About", MetaTitle: "About Us"},
		},
	}

	issues, err := checks.NewMissingTitleCheck().Run(context.Background(), content)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(issues))
	}
	if issues[0].ResourceID != "p2" || issues[0].ResourceType != domain.ResourceProduct {
		t.Errorf("issues[0] = %+v, want product p2", issues[0])
	}
	if issues[1].ResourceID != "c1" || issues[1].ResourceType != domain.ResourceCollection {
		t.Errorf("issues[1] = %+v, want collection c1", issues[1])
	}
}

func TestDuplicateTitleCheck_FlagsEveryDuplicate(t *testing.T) {
	content := &domain.StoreContent{
		Products: []domain.Product{
			{ID: "p1", Title: "Blue Mug", MetaTitle: "Mugs | Shop"},
			{ID: "p2", Title: "Red Mug", MetaTitle: "mugs | shop"},
			{ID: "p3", Title: "Green Mug", MetaTitle: "Green Mug | Shop"},
		},
		Pages: []domain.Page{
			{ID: "pg1", Title: "Mug Guide", MetaTitle: "Mugs | Shop"},
		},
	}

	issues, err := checks.NewDuplicateTitleCheck().Run(context.Background(), content)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Case-insensitive match: p1, p2 and pg1 all share the title.
	if len(issues) != 3 {
		t.Fatalf("got %d issues, want 3", len(issues))
	}
	flagged := make(map[string]bool)
	for _, issue := range issues {
		flagged[issue.ResourceID] = true
	}
	for _, id := range []string{"p1", "p2", "pg1"} {
		if !flagged[id] {
			t.Errorf("resource %s not flagged", id)
		}
	}
	if flagged["p3"] {
		t.Error("unique title p3 should not be flagged")
	}
}

func TestDuplicateTitleCheck_IgnoresEmptyTitles(t *testing.T) {
	content := &domain.StoreContent{
		Products: []domain.Product{
			{ID: "p1", Title: "A"},
			{ID: "p2", Title: "B"},
		},
	}

	issues, err := checks.NewDuplicateTitleCheck().Run(context.Background(), content)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("empty titles are missing, not duplicated: got %d issues", len(issues))
	}
}

func TestMissingDescriptionCheck(t *testing.T) {
	content := &domain.StoreContent{
		Products: []domain.Product{
			{ID: "p1", Title: "Blue Mug", MetaDescription: "A sturdy blue mug."},
			{ID: "p2", Title: "Red Mug"},
		},
	}

	issues, err := checks.NewMissingDescriptionCheck().Run(context.Background(), content)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(issues) != 1 || issues[0].ResourceID != "p2" {
		t.Errorf("got %+v, want one issue for p2", issues)
	}
	if issues[0].Type != domain.IssueMissingDescription {
		t.Errorf("Type = %q, want missing-description", issues[0].Type)
	}
}
