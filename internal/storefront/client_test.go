package storefront_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/seo-auditor/internal/config"
	"github.com/jonesrussell/seo-auditor/internal/domain"
	"github.com/jonesrussell/seo-auditor/internal/storefront"
)

func newTestClient(serverURL string) *storefront.Client {
	return storefront.NewClient(&config.StorefrontConfig{
		BaseURL:  serverURL,
		APIToken: "token-123",
		Timeout:  5 * time.Second,
	})
}

func TestClient_FetchContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acct-1/content", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"products": [{"id": "p1", "title": "Blue Mug", "meta_title": "Blue Mug | Shop"}],
			"collections": [],
			"pages": [{"id": "pg1", "title": "About", "published": true}]
		}`))
	}))
	defer server.Close()

	content, err := newTestClient(server.URL).FetchContent(context.Background(), "acct-1")
	require.NoError(t, err)

	require.Len(t, content.Products, 1)
	assert.Equal(t, "p1", content.Products[0].ID)
	require.Len(t, content.Pages, 1)
	assert.True(t, content.Pages[0].Published)
}

func TestClient_AccountSignals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acct-1/signals", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tier": "pro", "sitemap_generated": true, "metrics_connected": false}`))
	}))
	defer server.Close()

	signals, err := newTestClient(server.URL).AccountSignals(context.Background(), "acct-1")
	require.NoError(t, err)

	assert.Equal(t, domain.TierPro, signals.Tier)
	assert.True(t, signals.SitemapGenerated)
	assert.False(t, signals.MetricsConnected)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchContent(context.Background(), "acct-1")
	require.Error(t, err)
}
