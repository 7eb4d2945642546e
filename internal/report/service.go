// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/quotebook/internal/calendar"
	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/metrics"
	"github.com/tomtom215/quotebook/internal/models"
)

// ErrAlreadyGenerated is returned by Run when SkipExisting is set and the week
// already has a report.
var ErrAlreadyGenerated = errors.New("report: already generated for week")

// Store is the persistence the Service reads quotes and profiles from and
// writes reports to.
type Store interface {
	QuotesForWeek(ctx context.Context, userID string, week, year int) ([]models.Quote, error)
	Profile(ctx context.Context, userID string) (*models.UserProfile, error)
	HasReport(ctx context.Context, userID string, week, year int) (bool, error)
	SaveReport(ctx context.Context, r *models.WeeklyReport) error
}

// Notifier announces stored reports to delivery.
type Notifier interface {
	PublishReportGenerated(ctx context.Context, r *models.WeeklyReport) error
}

// RunOptions controls a single Service.Run.
type RunOptions struct {
	// Week selects the ISO week; nil means the previous complete week.
	Week *models.WeekMeta

	// SkipExisting returns ErrAlreadyGenerated instead of regenerating.
	SkipExisting bool
}

// Service loads a user's week, assembles the report, stores it and announces it.
type Service struct {
	assembler *Assembler
	store     Store
	notifier  Notifier
	cal       *calendar.Calendar
}

// NewService creates a Service. notifier may be nil.
func NewService(assembler *Assembler, store Store, notifier Notifier, cal *calendar.Calendar) (*Service, error) {
	if assembler == nil || store == nil || cal == nil {
		return nil, errors.New("report: service requires assembler, store and calendar")
	}
	return &Service{assembler: assembler, store: store, notifier: notifier, cal: cal}, nil
}

// Calendar returns the business calendar used to resolve default weeks.
func (s *Service) Calendar() *calendar.Calendar {
	return s.cal
}

// Run generates and stores the report for userID.
func (s *Service) Run(ctx context.Context, userID string, opts RunOptions) (*models.WeeklyReport, error) {
	meta := opts.Week
	if meta == nil {
		prev := s.cal.PreviousCompleteWeek()
		meta = &models.WeekMeta{ISOWeek: prev.ISOWeek, ISOYear: prev.ISOYear}
	}
	if err := calendar.ValidateWeek(meta.ISOWeek, meta.ISOYear); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingWeekMetadata, err)
	}

	if opts.SkipExisting {
		exists, err := s.store.HasReport(ctx, userID, meta.ISOWeek, meta.ISOYear)
		if err != nil {
			return nil, fmt.Errorf("check existing report: %w", err)
		}
		if exists {
			return nil, ErrAlreadyGenerated
		}
	}

	quotes, err := s.store.QuotesForWeek(ctx, userID, meta.ISOWeek, meta.ISOYear)
	if err != nil {
		return nil, fmt.Errorf("load quotes: %w", err)
	}

	profile := models.UserProfile{UserID: userID}
	if p, err := s.store.Profile(ctx, userID); err == nil && p != nil {
		profile = *p
	} else if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("user_id", userID).Msg("No profile, generating without personalization")
	}

	r, err := s.assembler.Generate(ctx, userID, quotes, profile, meta)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveReport(ctx, r); err != nil {
		metrics.ReportsGenerated.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("save report: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.PublishReportGenerated(ctx, r); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("report_id", r.ID).Msg("Report stored but event not published")
		}
	}
	return r, nil
}
