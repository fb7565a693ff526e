// Package storefront is the HTTP client for the external content
// provider. It supplies the content snapshot the check pipeline
// analyses and the read-only account signals the scoring engine and
// quota tracker consult.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonesrussell/seo-auditor/internal/config"
	"github.com/jonesrussell/seo-auditor/internal/domain"
)

// Client talks to the storefront provider API.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a storefront client from the service
// configuration.
func NewClient(cfg *config.StorefrontConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchContent retrieves the account's full content snapshot in a
// single call.
func (c *Client) FetchContent(ctx context.Context, accountID string) (*domain.StoreContent, error) {
	var content domain.StoreContent
	if err := c.getJSON(ctx, fmt.Sprintf("/accounts/%s/content", accountID), &content); err != nil {
		return nil, fmt.Errorf("fetch content for %s: %w", accountID, err)
	}
	return &content, nil
}

// AccountSignals retrieves the account's tier and bonus signals.
func (c *Client) AccountSignals(ctx context.Context, accountID string) (*domain.AccountSignals, error) {
	var signals domain.AccountSignals
	if err := c.getJSON(ctx, fmt.Sprintf("/accounts/%s/signals", accountID), &signals); err != nil {
		return nil, fmt.Errorf("fetch signals for %s: %w", accountID, err)
	}
	return &signals, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(target); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}
