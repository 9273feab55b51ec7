package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Job is one refresh. Errors are logged and the next tick still runs.
type Job func(ctx context.Context) error

// Scheduler re-runs a job on a fixed interval until its context is cancelled.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(interval time.Duration, job Job, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// A slow refresh must not overlap the next tick.
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		job:       job,
		interval:  interval,
		logger:    logger,
	}
}

// Run starts the schedule, with the first run immediately, and blocks until
// ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		s.logger.Debug("scheduler: running refresh")
		if err := s.job(ctx); err != nil {
			s.logger.Error("scheduler: refresh failed", zap.Error(err))
			return
		}
		s.logger.Debug("scheduler: refresh completed")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	defer s.scheduler.Stop()

	<-ctx.Done()
	return nil
}
