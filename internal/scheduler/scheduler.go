package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/example/farm-dashboard/internal/timewindow"
)

// Warmer rebuilds a cached payload.
type Warmer interface {
	Warm(ctx context.Context) error
}

// Scheduler periodically pre-warms the all-farms dashboard cache.
type Scheduler struct {
	cron     *cron.Cron
	warmer   Warmer
	schedule string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. schedule is a standard
// five-field cron expression evaluated in KST.
func NewScheduler(schedule string, warmer Warmer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(timewindow.KST)),
		warmer:   warmer,
		schedule: schedule,
		timeout:  time.Minute,
		logger:   logger.Named("scheduler"),
	}
}

// Start registers the warm job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.warmDashboard); err != nil {
		return fmt.Errorf("schedule dashboard warm %q: %w", s.schedule, err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) warmDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.warmer.Warm(ctx); err != nil {
		s.logger.Error("failed to warm dashboard cache", zap.Error(err))
		return
	}
	s.logger.Info("dashboard cache warmed", zap.Duration("duration", time.Since(start)))
}
