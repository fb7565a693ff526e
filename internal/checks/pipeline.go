package checks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/domain"
	"github.com/jonesrussell/seo-auditor/internal/logger"
)

const defaultCheckTimeout = 30 * time.Second

// Runner executes a fixed set of checks concurrently against one
// content snapshot. Checks share no mutable state; each writes only
// its own slot of the result slice, which is the single serialization
// point.
type Runner struct {
	checks  []Check
	timeout time.Duration
	logger  logger.Logger
}

// NewRunner creates a pipeline over the given checks. A zero timeout
// gets the default per-check deadline.
func NewRunner(checks []Check, timeout time.Duration, log logger.Logger) *Runner {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{checks: checks, timeout: timeout, logger: log}
}

// DefaultChecks returns the full analyzer set in a stable order.
func DefaultChecks(client *http.Client, log logger.Logger) []Check {
	return []Check{
		NewMissingTitleCheck(),
		NewDuplicateTitleCheck(),
		NewMissingDescriptionCheck(),
		NewAltTextCheck(),
		NewBrokenLinkCheck(client, log),
		NewMixedContentCheck(),
		NewIndexingDirectiveCheck(),
	}
}

// Run executes every check concurrently and collects their results.
// A failing check yields a Result with Err set; it never aborts the
// other checks. Results are returned in the runner's check order.
func (r *Runner) Run(ctx context.Context, content *domain.StoreContent) []Result {
	results := make([]Result, len(r.checks))

	done := make(chan int, len(r.checks))
	for i, check := range r.checks {
		go func() {
			results[i] = r.runOne(ctx, check, content)
			done <- i
		}()
	}
	for range r.checks {
		<-done
	}

	return results
}

func (r *Runner) runOne(ctx context.Context, check Check, content *domain.StoreContent) (result Result) {
	result = Result{Check: check.Name(), Type: check.IssueType()}

	// A panicking analyzer is a failed analyzer, not a failed audit.
	defer func() {
		if rec := recover(); rec != nil {
			result.Err = fmt.Errorf("check %s panicked: %v", check.Name(), rec)
			result.Issues = nil
			r.logger.Error("check panicked",
				logger.String("check", check.Name()),
				logger.String("panic", fmt.Sprint(rec)))
		}
	}()

	checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	issues, err := check.Run(checkCtx, content)
	if err != nil {
		result.Err = fmt.Errorf("check %s: %w", check.Name(), err)
		r.logger.Warn("check failed",
			logger.String("check", check.Name()),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return result
	}

	result.Issues = issues
	r.logger.Debug("check completed",
		logger.String("check", check.Name()),
		logger.Int("issues", len(issues)),
		logger.Duration("elapsed", time.Since(start)))
	return result
}

// Aggregate flattens pipeline results into the union of all issues
// plus the number of checks that succeeded.
func Aggregate(results []Result) (issues []domain.IssueDraft, succeeded int) {
	for _, result := range results {
		if !result.Succeeded() {
			continue
		}
		succeeded++
		issues = append(issues, result.Issues...)
	}
	return issues, succeeded
}
