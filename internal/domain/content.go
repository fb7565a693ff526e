package domain

import (
	"context"
	"time"
)

// Image is a storefront image with its alt text.
type Image struct {
	ID  string `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Product is a storefront product as seen by the check pipeline.
type Product struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Handle          string  `json:"handle"`
	URL             string  `json:"url"`
	MetaTitle       string  `json:"meta_title"`
	MetaDescription string  `json:"meta_description"`
	Images          []Image `json:"images"`
}

// Collection is a storefront collection.
type Collection struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	Image           *Image `json:"image,omitempty"`
}

// Page is a storefront content page.
type Page struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	BodyHTML        string `json:"body_html"`
	RobotsDirective string `json:"robots_directive"`
	Published       bool   `json:"published"`
}

// StoreContent is everything one audit analyses, fetched in a single
// external call per audit.
type StoreContent struct {
	Products    []Product    `json:"products"`
	Collections []Collection `json:"collections"`
	Pages       []Page       `json:"pages"`
}

// ContentProvider fetches a storefront's content. It is an external
// collaborator; its latency and failure modes are opaque to the core.
type ContentProvider interface {
	FetchContent(ctx context.Context, accountID string) (*StoreContent, error)
}

// AccountSignals are the read-only account attributes the core
// consults: the billing tier for quota limits and the bonus signals
// for the scoring engine.
type AccountSignals struct {
	Tier                 PlanTier   `json:"tier"`
	SitemapGenerated     bool       `json:"sitemap_generated"`
	MetricsConnected     bool       `json:"metrics_connected"`
	LastAuditCompletedAt *time.Time `json:"last_audit_completed_at,omitempty"`
}

// AccountProvider supplies account signals. Owned by an external
// collaborator; consumed read-only here.
type AccountProvider interface {
	AccountSignals(ctx context.Context, accountID string) (*AccountSignals, error)
}
