package audit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jonesrussell/seo-auditor/internal/cache"
	"github.com/jonesrussell/seo-auditor/internal/checks"
	"github.com/jonesrussell/seo-auditor/internal/clock"
	"github.com/jonesrussell/seo-auditor/internal/config"
	"github.com/jonesrussell/seo-auditor/internal/domain"
	"github.com/jonesrussell/seo-auditor/internal/events"
	"github.com/jonesrussell/seo-auditor/internal/logger"
	"github.com/jonesrussell/seo-auditor/internal/quota"
	"github.com/jonesrussell/seo-auditor/internal/scoring"
	"github.com/jonesrussell/seo-auditor/internal/telemetry"
)

// defaultListLimit caps audit history listings.
const defaultListLimit = 20

// IssueRepository is the persistence contract for issues.
type IssueRepository interface {
	InsertBatch(ctx context.Context, issues []*domain.Issue) error
	ListByAudit(ctx context.Context, auditID string) ([]domain.Issue, error)
	SetFixed(ctx context.Context, id string, fixed bool) error
}

// QuotaTracker is the usage-governance contract.
type QuotaTracker interface {
	CanPerform(ctx context.Context, accountID string, tier domain.PlanTier, action domain.Action, amount int) (*quota.Decision, error)
	Increment(ctx context.Context, accountID string, action domain.Action, amount int) error
	Status(ctx context.Context, accountID string, tier domain.PlanTier) (*domain.UsageStatus, error)
}

// PipelineRunner executes the analyzer set against one content
// snapshot.
type PipelineRunner interface {
	Run(ctx context.Context, content *domain.StoreContent) []checks.Result
}

// ServiceDeps carries the service's collaborators.
type ServiceDeps struct {
	Audits    AuditRepository
	Issues    IssueRepository
	Guard     *Guard
	Quota     QuotaTracker
	Runner    PipelineRunner
	Content   domain.ContentProvider
	Accounts  domain.AccountProvider
	Cache     cache.Store
	Events    *events.Publisher
	Telemetry *telemetry.Provider
	Clock     clock.Clock
	Logger    logger.Logger
	Config    config.AuditConfig
	CacheTTL  time.Duration
}

// Service drives the audit state machine. Admission runs in the
// caller's request; the pipeline itself runs in the background and
// reports its terminal state through the repository.
type Service struct {
	audits    AuditRepository
	issues    IssueRepository
	guard     *Guard
	quota     QuotaTracker
	runner    PipelineRunner
	content   domain.ContentProvider
	accounts  domain.AccountProvider
	cache     cache.Store
	events    *events.Publisher
	telemetry *telemetry.Provider
	clock     clock.Clock
	logger    logger.Logger
	cfg       config.AuditConfig
	cacheTTL  time.Duration
}

// NewService creates the audit orchestrator.
func NewService(deps ServiceDeps) *Service {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Events == nil {
		deps.Events = events.NewPublisher(nil, "", deps.Logger)
	}
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.NewProvider(prometheus.NewRegistry())
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = cache.DefaultTTL
	}
	return &Service{
		audits:    deps.Audits,
		issues:    deps.Issues,
		guard:     deps.Guard,
		quota:     deps.Quota,
		runner:    deps.Runner,
		content:   deps.Content,
		accounts:  deps.Accounts,
		cache:     deps.Cache,
		events:    deps.Events,
		telemetry: deps.Telemetry,
		clock:     deps.Clock,
		logger:    deps.Logger,
		cfg:       deps.Config,
		cacheTTL:  deps.CacheTTL,
	}
}

// StartAudit admits a new audit for the account and launches the
// pipeline in the background. The returned audit is pending; callers
// poll GetAudit for the terminal state.
//
// Admission errors are structured: *domain.RateLimitedError when the
// cooldown has not elapsed or an audit is already active, and
// *domain.QuotaExceededError when the daily audit-run quota is spent.
func (s *Service) StartAudit(ctx context.Context, accountID string) (*domain.Audit, error) {
	signals, err := s.accounts.AccountSignals(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account signals: %w", err)
	}

	cooldown, err := s.guard.CanStart(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !cooldown.Allowed {
		s.telemetry.Metrics.RateLimitDenials.Inc()
		return nil, &domain.RateLimitedError{
			AccountID:     accountID,
			NextAllowedAt: cooldown.NextAllowedAt,
		}
	}

	decision, err := s.quota.CanPerform(ctx, accountID, signals.Tier, domain.ActionAuditRuns, 1)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.telemetry.Metrics.QuotaDenials.WithLabelValues(string(domain.ActionAuditRuns)).Inc()
		return nil, &domain.QuotaExceededError{
			AccountID: accountID,
			Action:    domain.ActionAuditRuns,
			Used:      decision.Used,
			Limit:     decision.Limit,
		}
	}

	audit := domain.NewAudit(accountID)
	if createErr := s.audits.CreatePending(ctx, audit); createErr != nil {
		if errors.Is(createErr, domain.ErrAuditInProgress) {
			// Lost the race against a concurrent start call.
			s.telemetry.Metrics.RateLimitDenials.Inc()
			return nil, &domain.RateLimitedError{
				AccountID:     accountID,
				NextAllowedAt: s.clock.Now().Add(s.cfg.Cooldown),
			}
		}
		return nil, fmt.Errorf("create audit: %w", createErr)
	}

	if incErr := s.quota.Increment(ctx, accountID, domain.ActionAuditRuns, 1); incErr != nil {
		s.logger.Error("usage increment failed after admission",
			logger.String("account_id", accountID),
			logger.String("audit_id", audit.ID),
			logger.Error(incErr))
	}

	s.telemetry.Metrics.AuditsStarted.Inc()
	s.logger.Info("audit admitted",
		logger.String("account_id", accountID),
		logger.String("audit_id", audit.ID))

	go s.run(audit, signals)

	return audit, nil
}

// runTimeout bounds one whole pipeline execution.
func (s *Service) runTimeout() time.Duration {
	return s.cfg.FetchTimeout + s.cfg.CheckTimeout + time.Minute
}

// run executes the pipeline for one admitted audit. It owns the
// audit's transition to a terminal state; every exit path lands in
// completed or failed.
func (s *Service) run(audit *domain.Audit, signals *domain.AccountSignals) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout())
	defer cancel()

	ctx, span := s.telemetry.Tracer.Start(ctx, "audit.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("audit.id", audit.ID),
		attribute.String("account.id", audit.AccountID),
	)

	started := time.Now()

	if err := s.audits.MarkRunning(ctx, audit.ID); err != nil {
		// Reaped or raced; never overwrite a terminal state.
		s.logger.Warn("audit could not start",
			logger.String("audit_id", audit.ID),
			logger.Error(err))
		return
	}

	fetchCtx, fetchCancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	content, err := s.content.FetchContent(fetchCtx, audit.AccountID)
	fetchCancel()
	if err != nil {
		span.SetStatus(codes.Error, "content fetch failed")
		s.fail(ctx, audit, "fetch", fmt.Sprintf("content fetch failed: %v", err), nil)
		return
	}

	results := s.runner.Run(ctx, content)
	drafts, succeeded := checks.Aggregate(results)
	for _, result := range results {
		if !result.Succeeded() {
			s.telemetry.Metrics.CheckFailures.WithLabelValues(result.Check).Inc()
		}
	}

	issues := make([]*domain.Issue, 0, len(drafts))
	var counts domain.SeverityCounts
	for _, draft := range drafts {
		issue := domain.NewIssue(audit.ID, draft)
		counts.Add(issue.Severity)
		issues = append(issues, issue)
	}

	if succeeded == 0 {
		span.SetStatus(codes.Error, "zero checks succeeded")
		s.fail(ctx, audit, "pipeline", domain.ErrPipelineFailed.Error(), issues)
		return
	}

	if insertErr := s.issues.InsertBatch(ctx, issues); insertErr != nil {
		span.SetStatus(codes.Error, "issue persistence failed")
		s.fail(ctx, audit, "persist", fmt.Sprintf("persist issues: %v", insertErr), nil)
		return
	}

	partial := succeeded < len(results)
	breakdown := scoring.Score(scoring.Input{
		Base:             scoring.BaseScore,
		CriticalCount:    counts.Critical,
		HighCount:        counts.High,
		SitemapPresent:   signals.SitemapGenerated,
		MetricsConnected: signals.MetricsConnected,
	})

	if completeErr := s.audits.MarkCompleted(ctx, audit.ID, breakdown.Score, counts, partial); completeErr != nil {
		s.logger.Error("audit completion not persisted",
			logger.String("audit_id", audit.ID),
			logger.Error(completeErr))
		return
	}

	s.invalidateScore(ctx, audit.AccountID)
	s.observeIssues(counts)
	s.telemetry.Metrics.AuditsCompleted.WithLabelValues(strconv.FormatBool(partial)).Inc()
	s.telemetry.Metrics.AuditDuration.Observe(time.Since(started).Seconds())

	event := events.NewEvent(events.TypeAuditCompleted, audit.AccountID, audit.ID)
	event.Score = &breakdown.Score
	event.IssueCount = counts.Total()
	event.Partial = partial
	s.events.PublishAsync(event)

	s.logger.Info("audit completed",
		logger.String("audit_id", audit.ID),
		logger.Int("score", breakdown.Score),
		logger.Int("issues", counts.Total()),
		logger.Bool("partial", partial),
		logger.Duration("elapsed", time.Since(started)))
}

// fail transitions the audit to its terminal failure state. Partial
// issues gathered before the fatal error are persisted rather than
// discarded.
func (s *Service) fail(ctx context.Context, audit *domain.Audit, stage, message string, partialIssues []*domain.Issue) {
	var counts domain.SeverityCounts
	partial := len(partialIssues) > 0
	if partial {
		if insertErr := s.issues.InsertBatch(ctx, partialIssues); insertErr != nil {
			s.logger.Error("partial issues not persisted",
				logger.String("audit_id", audit.ID),
				logger.Error(insertErr))
			partial = false
		} else {
			for _, issue := range partialIssues {
				counts.Add(issue.Severity)
			}
		}
	}

	if failErr := s.audits.MarkFailed(ctx, audit.ID, message, counts, partial); failErr != nil {
		s.logger.Error("audit failure not persisted",
			logger.String("audit_id", audit.ID),
			logger.Error(failErr))
		return
	}

	s.telemetry.Metrics.AuditsFailed.WithLabelValues(stage).Inc()

	event := events.NewEvent(events.TypeAuditFailed, audit.AccountID, audit.ID)
	event.IssueCount = counts.Total()
	event.Partial = partial
	s.events.PublishAsync(event)

	s.logger.Error("audit failed",
		logger.String("audit_id", audit.ID),
		logger.String("account_id", audit.AccountID),
		logger.String("stage", stage),
		logger.String("reason", message))
}

// GetAudit returns one audit with its issues.
func (s *Service) GetAudit(ctx context.Context, id string) (*domain.Audit, []domain.Issue, error) {
	audit, err := s.audits.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	issues, err := s.issues.ListByAudit(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load issues for audit %s: %w", id, err)
	}
	return audit, issues, nil
}

// ListAudits returns the account's audit history, newest first.
func (s *Service) ListAudits(ctx context.Context, accountID string, limit int) ([]domain.Audit, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.audits.ListByAccount(ctx, accountID, limit)
}

// MarkIssueFixed flips one issue's fixed flag and invalidates the
// account's cached score so the next read recomputes.
func (s *Service) MarkIssueFixed(ctx context.Context, accountID, issueID string, fixed bool) error {
	if err := s.issues.SetFixed(ctx, issueID, fixed); err != nil {
		return err
	}
	s.invalidateScore(ctx, accountID)
	return nil
}

// HealthScore returns the account's current score breakdown, computed
// from the latest completed audit and cached until the TTL or the next
// invalidation.
func (s *Service) HealthScore(ctx context.Context, accountID string) (scoring.Breakdown, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.ScoreKey(accountID), s.cacheTTL,
		func(ctx context.Context) (scoring.Breakdown, error) {
			return s.computeScore(ctx, accountID)
		})
}

func (s *Service) computeScore(ctx context.Context, accountID string) (scoring.Breakdown, error) {
	last, err := s.audits.LatestTerminal(ctx, accountID)
	if err != nil {
		return scoring.Breakdown{}, err
	}
	if last.Status != domain.AuditCompleted {
		return scoring.Breakdown{}, domain.ErrNotFound
	}

	signals, err := s.accounts.AccountSignals(ctx, accountID)
	if err != nil {
		return scoring.Breakdown{}, fmt.Errorf("load account signals: %w", err)
	}

	return scoring.Score(scoring.Input{
		Base:             scoring.BaseScore,
		CriticalCount:    last.Counts.Critical,
		HighCount:        last.Counts.High,
		SitemapPresent:   signals.SitemapGenerated,
		MetricsConnected: signals.MetricsConnected,
	}), nil
}

// UsageStatus returns the account's metered-action usage for today.
func (s *Service) UsageStatus(ctx context.Context, accountID string) (*domain.UsageStatus, error) {
	signals, err := s.accounts.AccountSignals(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account signals: %w", err)
	}
	return s.quota.Status(ctx, accountID, signals.Tier)
}

func (s *Service) invalidateScore(ctx context.Context, accountID string) {
	if err := s.cache.Delete(ctx, cache.ScoreKey(accountID)); err != nil {
		s.logger.Warn("score cache invalidation failed",
			logger.String("account_id", accountID),
			logger.Error(err))
	}
}

func (s *Service) observeIssues(counts domain.SeverityCounts) {
	metrics := s.telemetry.Metrics.IssuesFound
	metrics.WithLabelValues(string(domain.SeverityCritical)).Add(float64(counts.Critical))
	metrics.WithLabelValues(string(domain.SeverityHigh)).Add(float64(counts.High))
	metrics.WithLabelValues(string(domain.SeverityMedium)).Add(float64(counts.Medium))
	metrics.WithLabelValues(string(domain.SeverityLow)).Add(float64(counts.Low))
}
