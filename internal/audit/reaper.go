package audit

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/logger"
	"github.com/jonesrussell/seo-auditor/internal/telemetry"
)

const reapTimeout = 30 * time.Second

// Reaper periodically fails running audits whose owning process died
// without reporting a result. Without it, a crash mid-pipeline would
// hold the account's audit slot forever.
type Reaper struct {
	repo      AuditRepository
	olderThan time.Duration
	interval  time.Duration
	telemetry *telemetry.Provider
	logger    logger.Logger

	mu       sync.Mutex
	started  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewReaper creates an abandoned-audit reaper.
func NewReaper(repo AuditRepository, olderThan, interval time.Duration, tel *telemetry.Provider, log logger.Logger) *Reaper {
	if log == nil {
		log = logger.NewNop()
	}
	return &Reaper{
		repo:      repo,
		olderThan: olderThan,
		interval:  interval,
		telemetry: tel,
		logger:    log,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the sweep loop. Calling Start twice is a no-op.
func (r *Reaper) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	r.wg.Add(1)
	go r.loop()

	r.logger.Info("audit reaper started",
		logger.Duration("interval", r.interval),
		logger.Duration("abandoned_after", r.olderThan))
}

// Stop halts the sweep loop and waits for an in-flight sweep.
func (r *Reaper) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	r.mu.Unlock()

	close(r.stopChan)
	r.wg.Wait()
	r.logger.Info("audit reaper stopped")
}

func (r *Reaper) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stopChan:
			return
		}
	}
}

// Sweep fails abandoned audits once. Exposed so bootstrap can run an
// eager sweep at startup before the first tick.
func (r *Reaper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), reapTimeout)
	defer cancel()

	reaped, err := r.repo.FailAbandoned(ctx, r.olderThan)
	if err != nil {
		r.logger.Error("abandoned audit sweep failed", logger.Error(err))
		return
	}
	if reaped > 0 {
		if r.telemetry != nil {
			r.telemetry.Metrics.AuditsReaped.Add(float64(reaped))
		}
		r.logger.Warn("failed abandoned audits", logger.Int64("reaped", reaped))
	}
}
