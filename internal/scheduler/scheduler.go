// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package scheduler runs the weekly report batch on a cron schedule.
//
// The scheduler:
//   - Checks on a configurable interval (default: 1 minute) whether the cron
//     expression has fired, evaluated in the business timezone
//   - On fire, lists users with quotes in the previous complete week
//   - Generates each missing report with bounded concurrency, each run under
//     its own timeout
//
// Reports that already exist are skipped, so a restart or a second fire in the
// same week does not regenerate anything.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quotebook/internal/calendar"
	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/metrics"
	"github.com/tomtom215/quotebook/internal/models"
	"github.com/tomtom215/quotebook/internal/report"
)

// DefaultCron fires every Monday at 09:00 business time.
const DefaultCron = "0 9 * * 1"

// Runner generates and stores one user's report.
type Runner interface {
	Run(ctx context.Context, userID string, opts report.RunOptions) (*models.WeeklyReport, error)
}

// UserLister finds the users who saved quotes in a week.
type UserLister interface {
	UsersWithQuotes(ctx context.Context, week, year int) ([]string, error)
}

// Config holds configuration for the weekly batch.
type Config struct {
	// Enabled controls whether the scheduler is active
	Enabled bool

	// Cron is the 5-field schedule in business time
	Cron string

	// CheckInterval is how often the schedule is checked (default: 1 minute)
	CheckInterval time.Duration

	// MaxConcurrent is the maximum number of reports generated concurrently
	MaxConcurrent int

	// ExecutionTimeout bounds a single user's report generation
	ExecutionTimeout time.Duration
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Cron:             DefaultCron,
		CheckInterval:    time.Minute,
		MaxConcurrent:    4,
		ExecutionTimeout: 2 * time.Minute,
	}
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	Week      models.WeekRange
	Users     int
	Generated int
	Skipped   int
	Failed    int
}

// Scheduler fans out weekly report generation.
type Scheduler struct {
	runner Runner
	users  UserLister
	cal    *calendar.Calendar
	cron   *CronExpression
	config Config
	logger zerolog.Logger

	// Runtime state
	mu      sync.Mutex
	running bool
	nextRun time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a scheduler. It fails on an unparsable cron expression.
func NewScheduler(runner Runner, users UserLister, cal *calendar.Calendar, config Config) (*Scheduler, error) {
	if runner == nil || users == nil || cal == nil {
		return nil, errors.New("scheduler: runner, user lister and calendar are required")
	}
	if config.Cron == "" {
		config.Cron = DefaultCron
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	if config.ExecutionTimeout <= 0 {
		config.ExecutionTimeout = 2 * time.Minute
	}

	cron, err := ParseCron(config.Cron)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	return &Scheduler{
		runner: runner,
		users:  users,
		cal:    cal,
		cron:   cron,
		config: config,
		logger: logging.WithComponent("weekly-scheduler"),
	}, nil
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.nextRun = s.cron.NextRun(s.cal.Now(), s.cal.Location())
	next := s.nextRun
	s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info().Msg("Weekly scheduler disabled")
		go func() {
			defer close(s.doneCh)
			<-s.stopCh
		}()
		return nil
	}

	s.logger.Info().
		Str("cron", s.config.Cron).
		Time("next_run", next).
		Int("max_concurrent", s.config.MaxConcurrent).
		Msg("Starting weekly scheduler")

	go s.run(ctx)
	return nil
}

// Stop stops the scheduler loop and waits for an in-flight batch to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.logger.Info().Msg("Weekly scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns when the batch will next fire.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkAndExecute(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// checkAndExecute runs the batch when the schedule has fired.
func (s *Scheduler) checkAndExecute(ctx context.Context) {
	now := s.cal.Now()

	s.mu.Lock()
	due := !s.nextRun.IsZero() && !now.Before(s.nextRun)
	if due {
		s.nextRun = s.cron.NextRun(now, s.cal.Location())
	}
	next := s.nextRun
	s.mu.Unlock()

	if !due {
		return
	}

	if _, err := s.RunBatch(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Weekly batch failed")
	}
	s.logger.Info().Time("next_run", next).Msg("Next weekly batch scheduled")
}

// RunBatch generates missing reports for the previous complete week.
func (s *Scheduler) RunBatch(ctx context.Context) (BatchResult, error) {
	start := time.Now()
	week := s.cal.PreviousCompleteWeek()
	result := BatchResult{Week: week}

	// Per-user pipeline logs carry trigger=weekly_batch, separating them from
	// reports requested over the API.
	ctx = logging.ContextWithNewCorrelationID(ctx)
	ctx = logging.ContextWithLogger(ctx, logging.Logger().With().Str("trigger", "weekly_batch").Logger())
	log := logging.Ctx(ctx).With().Str("component", "weekly-scheduler").
		Int("iso_week", week.ISOWeek).Int("iso_year", week.ISOYear).Logger()

	users, err := s.users.UsersWithQuotes(ctx, week.ISOWeek, week.ISOYear)
	if err != nil {
		return result, fmt.Errorf("list users: %w", err)
	}
	result.Users = len(users)
	log.Info().Int("users", len(users)).Msg("Starting weekly batch")

	var generated, skipped, failed atomic.Int64
	meta := &models.WeekMeta{ISOWeek: week.ISOWeek, ISOYear: week.ISOYear}

	sem := make(chan struct{}, s.config.MaxConcurrent)
	var wg sync.WaitGroup

	for _, userID := range users {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{} // Acquire semaphore

		go func(userID string) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore

			execCtx, cancel := context.WithTimeout(ctx, s.config.ExecutionTimeout)
			defer cancel()

			_, err := s.runner.Run(execCtx, userID, report.RunOptions{Week: meta, SkipExisting: true})
			switch {
			case err == nil:
				generated.Add(1)
			case errors.Is(err, report.ErrAlreadyGenerated):
				skipped.Add(1)
			default:
				failed.Add(1)
				log.Error().Err(err).Str("user_id", userID).Msg("Weekly report failed")
			}
		}(userID)
	}

	wg.Wait()

	result.Generated = int(generated.Load())
	result.Skipped = int(skipped.Load())
	result.Failed = int(failed.Load())
	metrics.RecordBatchRun(time.Since(start), result.Generated, result.Skipped, result.Failed)

	log.Info().
		Int("generated", result.Generated).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Dur("duration", time.Since(start)).
		Msg("Weekly batch complete")

	return result, ctx.Err()
}
