package bootstrap

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/seo-auditor/internal/api"
	"github.com/jonesrussell/seo-auditor/internal/audit"
	"github.com/jonesrussell/seo-auditor/internal/cache"
	"github.com/jonesrussell/seo-auditor/internal/checks"
	"github.com/jonesrussell/seo-auditor/internal/clock"
	"github.com/jonesrussell/seo-auditor/internal/config"
	"github.com/jonesrussell/seo-auditor/internal/database"
	"github.com/jonesrussell/seo-auditor/internal/events"
	"github.com/jonesrussell/seo-auditor/internal/logger"
	"github.com/jonesrussell/seo-auditor/internal/quota"
	"github.com/jonesrussell/seo-auditor/internal/storefront"
	"github.com/jonesrussell/seo-auditor/internal/telemetry"
)

// App holds the wired application: the HTTP server plus the background
// workers that share its lifetime.
type App struct {
	Server    *api.Server
	reaper    *audit.Reaper
	scheduler *audit.Scheduler
	logger    logger.Logger
}

// BuildApp wires repositories, governance, the check pipeline and the
// HTTP layer.
func BuildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, log logger.Logger) (*App, error) {
	clk := clock.New()
	tel := telemetry.NewProvider(nil)

	auditRepo := database.NewAuditRepository(db)
	issueRepo := database.NewIssueRepository(db)
	usageRepo := database.NewUsageRepository(db)

	store := cache.NewInstrumented(
		buildCache(cfg, redisClient, clk),
		tel.Metrics.CacheHits,
		tel.Metrics.CacheMisses,
	)
	tracker := quota.NewTracker(usageRepo, clk, log)
	guard := audit.NewGuard(auditRepo, cfg.Audit.Cooldown, clk)

	probeClient := &http.Client{Timeout: cfg.Audit.CheckTimeout}
	runner := checks.NewRunner(checks.DefaultChecks(probeClient, log), cfg.Audit.CheckTimeout, log)

	client := storefront.NewClient(&cfg.Storefront)
	publisher := events.NewPublisher(redisClient, "", log)

	service := audit.NewService(audit.ServiceDeps{
		Audits:    auditRepo,
		Issues:    issueRepo,
		Guard:     guard,
		Quota:     tracker,
		Runner:    runner,
		Content:   client,
		Accounts:  client,
		Cache:     store,
		Events:    publisher,
		Telemetry: tel,
		Clock:     clk,
		Logger:    log,
		Config:    cfg.Audit,
		CacheTTL:  cfg.Cache.TTL,
	})

	router := api.NewRouter(cfg.Service.Debug)
	api.SetupRoutes(router,
		api.NewAuditHandler(service, log),
		api.NewUsageHandler(service, log),
		tel.Handler(),
	)

	scheduler, schedErr := audit.NewScheduler(tracker, log)
	if schedErr != nil {
		return nil, schedErr
	}

	return &App{
		Server:    api.NewServer(&cfg.Service, router, log),
		reaper:    audit.NewReaper(auditRepo, cfg.Audit.AbandonedAfter, cfg.Audit.ReaperInterval, tel, log),
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// StartWorkers launches the reaper and the housekeeping scheduler,
// with an eager sweep so audits abandoned before a restart are failed
// immediately.
func (a *App) StartWorkers() {
	a.reaper.Sweep()
	a.reaper.Start()
	a.scheduler.Start()
}

// StopWorkers halts background workers and waits for in-flight runs.
func (a *App) StopWorkers() {
	a.scheduler.Stop()
	a.reaper.Stop()
}

func buildCache(cfg *config.Config, redisClient *redis.Client, clk clock.Clock) cache.Store {
	if cfg.Cache.Backend == "redis" && redisClient != nil {
		return cache.NewRedis(redisClient, cfg.Cache.TTL)
	}
	return cache.NewMemory(cfg.Cache.MaxEntries, cfg.Cache.TTL, clk)
}
