package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/terraincognita07/autobuyer/internal/schedule"
	"github.com/terraincognita07/autobuyer/internal/services"
	"go.uber.org/zap"
)

// ReminderRunner is the daily job body.
type ReminderRunner interface {
	Run(ctx context.Context, target, now time.Time) (services.RunReport, error)
}

// Scheduler triggers reminder runs on a cron schedule in the configured time zone.
type Scheduler struct {
	cron     *cron.Cron
	runner   ReminderRunner
	schedule string
	location *time.Location
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewScheduler(runner ReminderRunner, schedule string, location *time.Location, logger *zap.Logger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	c := cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:     c,
		runner:   runner,
		schedule: schedule,
		location: location,
		timeout:  10 * time.Minute,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the reminder job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runReminders); err != nil {
		return fmt.Errorf("schedule reminder job %q: %w", s.schedule, err)
	}
	s.logger.Info("scheduled reminder job",
		zap.String("schedule", s.schedule),
		zap.String("time_zone", s.location.String()),
	)
	s.cron.Start()
	return nil
}

// Stop halts the cron loop. The returned context is done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce executes a reminder run for tomorrow, using the scheduler's clock.
func (s *Scheduler) RunOnce(ctx context.Context) (services.RunReport, error) {
	now := services.LocalNow(s.now(), s.location)
	return s.runner.Run(ctx, schedule.ReminderTarget(now), now)
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("reminder job failed", zap.Error(err))
		return
	}
	s.logger.Info("reminder job finished",
		zap.String("run_id", report.RunID),
		zap.Int("due", report.Due),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
	)
}
