// Package telemetry provides OpenTelemetry instrumentation for the
// seo-auditor service. It exports Prometheus metrics and provides
// tracing capabilities.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "seo-auditor"

// Metrics holds all seo-auditor Prometheus metrics.
type Metrics struct {
	// Audit lifecycle metrics
	AuditsStarted   prometheus.Counter
	AuditsCompleted *prometheus.CounterVec
	AuditsFailed    *prometheus.CounterVec
	AuditDuration   prometheus.Histogram
	AuditsReaped    prometheus.Counter

	// Governance metrics
	RateLimitDenials prometheus.Counter
	QuotaDenials     *prometheus.CounterVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Check metrics
	CheckFailures *prometheus.CounterVec
	IssuesFound   *prometheus.CounterVec
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry against the given registerer. A
// nil registerer uses the process-wide default.
func NewProvider(reg prometheus.Registerer) *Provider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(promauto.With(reg)),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics
// endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics(factory promauto.Factory) *Metrics {
	m := &Metrics{}
	initAuditMetrics(m, factory)
	initGovernanceMetrics(m, factory)
	initCacheMetrics(m, factory)
	initCheckMetrics(m, factory)
	return m
}

func initAuditMetrics(m *Metrics, factory promauto.Factory) {
	m.AuditsStarted = factory.NewCounter(prometheus.CounterOpts{
		Name: "seo_auditor_audits_started_total",
		Help: "Total audits that entered the pending state",
	})

	m.AuditsCompleted = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "seo_auditor_audits_completed_total",
		Help: "Total audits that reached the completed state",
	}, []string{"partial"})

	m.AuditsFailed = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "seo_auditor_audits_failed_total",
		Help: "Total audits that reached the failed state",
	}, []string{"stage"})

	m.AuditDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "seo_auditor_audit_duration_seconds",
		Help:    "Wall time from pipeline start to terminal state",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	m.AuditsReaped = factory.NewCounter(prometheus.CounterOpts{
		Name: "seo_auditor_audits_reaped_total",
		Help: "Total abandoned running audits failed by the reaper",
	})
}

func initGovernanceMetrics(m *Metrics, factory promauto.Factory) {
	m.RateLimitDenials = factory.NewCounter(prometheus.CounterOpts{
		Name: "seo_auditor_rate_limit_denials_total",
		Help: "Total audit starts rejected by the cooldown guard",
	})

	m.QuotaDenials = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "seo_auditor_quota_denials_total",
		Help: "Total actions rejected by the daily usage quota",
	}, []string{"action"})
}

func initCacheMetrics(m *Metrics, factory promauto.Factory) {
	m.CacheHits = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "seo_auditor_cache_hits_total",
		Help: "Total cache reads that returned a live entry",
	}, []string{"namespace"})

	m.CacheMisses = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "seo_auditor_cache_misses_total",
		Help: "Total cache reads that missed or hit an expired entry",
	}, []string{"namespace"})
}

func initCheckMetrics(m *Metrics, factory promauto.Factory) {
	m.CheckFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "seo_auditor_check_failures_total",
		Help: "Total analyzer runs that failed inside the pipeline",
	}, []string{"check"})

	m.IssuesFound = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "seo_auditor_issues_found_total",
		Help: "Total issues found, by severity class",
	}, []string{"severity"})
}
