package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/seo-auditor/internal/logger"
)

// usageResetSchedule runs shortly after UTC midnight. Quota rollover
// never depends on this job; it only reclaims stale rows.
const usageResetSchedule = "5 0 * * *"

const housekeepingTimeout = time.Minute

// UsagePurger is the housekeeping half of the quota tracker.
type UsagePurger interface {
	ResetStale(ctx context.Context) (int64, error)
}

// Scheduler runs daily housekeeping jobs on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	purger UsagePurger
	logger logger.Logger
}

// NewScheduler creates the housekeeping scheduler. Jobs run in UTC so
// the purge aligns with the quota day boundary.
func NewScheduler(purger UsagePurger, log logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.NewNop()
	}

	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		purger: purger,
		logger: log,
	}

	if _, err := s.cron.AddFunc(usageResetSchedule, s.purgeStaleUsage); err != nil {
		return nil, fmt.Errorf("schedule usage purge: %w", err)
	}
	return s, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("housekeeping scheduler started",
		logger.String("usage_purge", usageResetSchedule))
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("housekeeping scheduler stopped")
}

func (s *Scheduler) purgeStaleUsage() {
	ctx, cancel := context.WithTimeout(context.Background(), housekeepingTimeout)
	defer cancel()

	if _, err := s.purger.ResetStale(ctx); err != nil {
		s.logger.Error("stale usage purge failed", logger.Error(err))
	}
}
