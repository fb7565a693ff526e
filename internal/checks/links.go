package checks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/domain"
	"github.com/jonesrussell/seo-auditor/internal/logger"
	"github.com/jonesrussell/seo-auditor/internal/retry"
)

const (
	defaultProbeTimeout     = 10 * time.Second
	defaultProbeConcurrency = 8
)

// BrokenLinkCheck probes every resource URL over HTTP and reports the
// ones that are unreachable or answer with an error status. Transient
// network failures are retried with backoff before a URL is declared
// broken.
type BrokenLinkCheck struct {
	client      *http.Client
	retryCfg    retry.Config
	concurrency int
	logger      logger.Logger
}

// NewBrokenLinkCheck creates the link probe. A nil client gets a
// default with a bounded timeout.
func NewBrokenLinkCheck(client *http.Client, log logger.Logger) *BrokenLinkCheck {
	if client == nil {
		client = &http.Client{Timeout: defaultProbeTimeout}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BrokenLinkCheck{
		client:      client,
		retryCfg:    retry.DefaultConfig(),
		concurrency: defaultProbeConcurrency,
		logger:      log,
	}
}

func (c *BrokenLinkCheck) Name() string { return "broken-link" }

func (c *BrokenLinkCheck) IssueType() domain.IssueType { return domain.IssueBrokenLink }

type linkTarget struct {
	URL          string
	ResourceType domain.ResourceType
	ResourceID   string
	Label        string
}

func (c *BrokenLinkCheck) Run(ctx context.Context, content *domain.StoreContent) ([]domain.IssueDraft, error) {
	targets := collectTargets(content)
	if len(targets) == 0 {
		return nil, nil
	}

	var (
		mu     sync.Mutex
		issues []domain.IssueDraft
		wg     sync.WaitGroup
		sem    = make(chan struct{}, c.concurrency)
	)

	for _, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			reason := c.probe(ctx, target.URL)
			if reason == "" {
				return
			}

			mu.Lock()
			issues = append(issues, domain.IssueDraft{
				Type:          domain.IssueBrokenLink,
				ResourceType:  target.ResourceType,
				ResourceID:    target.ResourceID,
				ResourceLabel: target.Label,
				Message:       fmt.Sprintf("%s %q is unreachable: %s", target.ResourceType, target.Label, reason),
				Suggestion:    "Fix or remove the broken URL so visitors and crawlers do not hit a dead end",
			})
			mu.Unlock()
		}()
	}
	wg.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return issues, nil
}

// probe returns an empty string when the URL is healthy, otherwise a
// short human-readable reason.
func (c *BrokenLinkCheck) probe(ctx context.Context, url string) string {
	var status int

	err := retry.Do(ctx, c.retryCfg, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodHead, url, http.NoBody)
		if reqErr != nil {
			return reqErr
		}

		resp, doErr := c.client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		return nil
	})
	if err != nil {
		c.logger.Debug("link probe failed",
			logger.String("url", url),
			logger.Error(err))
		return "request failed: " + err.Error()
	}

	if status >= http.StatusBadRequest {
		return fmt.Sprintf("HTTP %d", status)
	}
	return ""
}

func collectTargets(content *domain.StoreContent) []linkTarget {
	var targets []linkTarget
	for _, p := range content.Products {
		if strings.TrimSpace(p.URL) == "" {
			continue
		}
		targets = append(targets, linkTarget{
			URL:          p.URL,
			ResourceType: domain.ResourceProduct,
			ResourceID:   p.ID,
			Label:        p.Title,
		})
	}
	for _, col := range content.Collections {
		if strings.TrimSpace(col.URL) == "" {
			continue
		}
		targets = append(targets, linkTarget{
			URL:          col.URL,
			ResourceType: domain.ResourceCollection,
			ResourceID:   col.ID,
			Label:        col.Title,
		})
	}
	for _, page := range content.Pages {
		if strings.TrimSpace(page.URL) == "" {
			continue
		}
		targets = append(targets, linkTarget{
			URL:          page.URL,
			ResourceType: domain.ResourcePage,
			ResourceID:   page.ID,
			Label:        page.Title,
		})
	}
	return targets
}
