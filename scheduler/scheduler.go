// Package scheduler runs the monthly suggestion jobs with gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/models"
)

const (
	// GenerateCron fires at 00:00 on the 1st of every month.
	GenerateCron = "0 0 1 * *"
	// CleanupCron fires at 02:00 on the 1st of every month.
	CleanupCron = "0 2 1 * *"
	// RetentionMonths is how many months of reports stay active.
	RetentionMonths = 12

	jobTimeout = 30 * time.Minute
)

// SuggestionJobs is the part of the suggestion service the jobs call.
type SuggestionJobs interface {
	GenerateForAll(ctx context.Context, month string) (*dto.GenerationSummary, error)
	MarkOldInactive(ctx context.Context, cutoffMonth string) (int64, error)
	CurrentMonth() string
}

// Scheduler owns the cron jobs and their lifecycle.
type Scheduler struct {
	scheduler gocron.Scheduler
	jobs      SuggestionJobs
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger

	started   bool
	startedMu sync.Mutex
}

// New creates a scheduler whose cron expressions are evaluated in loc.
func New(jobs SuggestionJobs, loc *time.Location, logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		scheduler: s,
		jobs:      jobs,
		location:  loc,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// RegisterSuggestionJobs adds the monthly generation and cleanup jobs.
func (s *Scheduler) RegisterSuggestionJobs() error {
	_, err := s.scheduler.NewJob(
		gocron.CronJob(GenerateCron, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			s.GenerateMonthly(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("suggestions", "generate"),
		gocron.WithName("suggestions-generate"),
	)
	if err != nil {
		return err
	}

	_, err = s.scheduler.NewJob(
		gocron.CronJob(CleanupCron, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			s.Cleanup(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("suggestions", "cleanup"),
		gocron.WithName("suggestions-cleanup"),
	)
	if err != nil {
		return err
	}

	s.logger.Info("registered suggestion jobs",
		zap.String("generate", GenerateCron),
		zap.String("cleanup", CleanupCron),
		zap.String("timezone", s.location.String()),
	)
	return nil
}

// GenerateMonthly builds this month's report for every MLA.
func (s *Scheduler) GenerateMonthly(ctx context.Context) {
	month := s.jobs.CurrentMonth()
	start := time.Now()

	summary, err := s.jobs.GenerateForAll(ctx, month)
	if err != nil {
		s.logger.Error("monthly suggestion generation failed", zap.String("month", month), zap.Error(err))
		return
	}
	s.logger.Info("monthly suggestion generation finished",
		zap.String("month", month),
		zap.Int("generated", summary.Generated),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", time.Since(start)),
	)
}

// Cleanup archives reports older than RetentionMonths.
func (s *Scheduler) Cleanup(ctx context.Context) {
	cutoff := CutoffMonth(s.now().In(s.location), RetentionMonths)

	updated, err := s.jobs.MarkOldInactive(ctx, cutoff)
	if err != nil {
		s.logger.Error("suggestion cleanup failed", zap.String("cutoff", cutoff), zap.Error(err))
		return
	}
	s.logger.Info("suggestion cleanup finished", zap.String("cutoff", cutoff), zap.Int64("updated", updated))
}

// CutoffMonth returns the month that lies months before now's month.
func CutoffMonth(now time.Time, months int) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -months, 0).Format(models.MonthLayout)
}

func (s *Scheduler) Start() {
	s.startedMu.Lock()
	defer s.startedMu.Unlock()

	if s.started {
		return
	}
	s.scheduler.Start()
	s.started = true
	s.logger.Info("scheduler started", zap.Int("job_count", len(s.scheduler.Jobs())))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() error {
	s.startedMu.Lock()
	defer s.startedMu.Unlock()

	if !s.started {
		return nil
	}
	err := s.scheduler.Shutdown()
	s.started = false
	if err != nil {
		s.logger.Error("scheduler shutdown with error", zap.Error(err))
		return err
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []gocron.Job {
	return s.scheduler.Jobs()
}
