package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/abygeorge8848/VolunteeringPortal/config"
)

// jobTimeout bounds a single run of any job
const jobTimeout = 2 * time.Minute

// ResetTokenPurger deletes expired password reset tokens
type ResetTokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler runs housekeeping jobs on cron specs
type Scheduler struct {
	cron   *cron.Cron
	purger ResetTokenPurger
	logger *zap.Logger
}

// NewScheduler registers every job from cfg. Specs use the standard five-field
// cron syntax or descriptors such as "@every 1h".
func NewScheduler(cfg *config.JobsConfig, purger ResetTokenPurger, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		purger: purger,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(cfg.PurgeResetTokensSpec, s.PurgeResetTokens); err != nil {
		return nil, fmt.Errorf("schedule purge_reset_tokens %q: %w", cfg.PurgeResetTokensSpec, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("job scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("job scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("job scheduler stop timed out")
	}
}

// PurgeResetTokens one run of the expired-token purge
func (s *Scheduler) PurgeResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.logger.Error("purge reset tokens failed", zap.Error(err))
		return
	}
	s.logger.Info("purged expired reset tokens",
		zap.Int64("deleted", n),
		zap.Duration("took", time.Since(start)))
}
