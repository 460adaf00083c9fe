package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/config"
)

// Reporter produces the daily production export and summary.
type Reporter interface {
	Export(ctx context.Context, dates []string) (int, error)
	DailySummary(ctx context.Context) (string, error)
}

// Sender delivers the summary to the owner.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reporter Reporter
	sender   Sender
	export   bool
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
// exportSheet turns on the production sheet export step of the daily job.
func NewScheduler(cfg config.ReportingConfig, reporter Reporter, sender Sender, exportSheet bool, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		reporter: reporter,
		sender:   sender,
		export:   exportSheet,
		logger:   logger,
	}, nil
}

// Start registers the daily job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runDaily); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s.RunDaily(ctx)
}

// RunDaily exports the production sheet and sends the summary to the owner.
// Failures are logged; one step failing does not skip the other.
func (s *Scheduler) RunDaily(ctx context.Context) {
	s.logger.Info("running daily production report")

	if s.export {
		if n, err := s.reporter.Export(ctx, nil); err != nil {
			s.logger.Error("failed to export production sheet", zap.Error(err))
		} else {
			s.logger.Info("production sheet exported", zap.Int("rows", n))
		}
	}

	summary, err := s.reporter.DailySummary(ctx)
	if err != nil {
		s.logger.Error("failed to build daily summary", zap.Error(err))
		return
	}

	if err := s.sender.Send(ctx, summary); err != nil {
		s.logger.Error("failed to send daily summary", zap.Error(err))
	} else {
		s.logger.Info("daily summary sent successfully")
	}
}
