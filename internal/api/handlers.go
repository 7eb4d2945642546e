// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package api provides the HTTP surface: manual report triggers, report
// lookup, quote and profile ingestion, the business calendar, health and
// Prometheus metrics.
package api

import (
	"context"
	"time"

	"github.com/tomtom215/quotebook/internal/calendar"
	"github.com/tomtom215/quotebook/internal/models"
	"github.com/tomtom215/quotebook/internal/report"
)

// ReportRunner generates and stores a report.
type ReportRunner interface {
	Run(ctx context.Context, userID string, opts report.RunOptions) (*models.WeeklyReport, error)
}

// Store is the persistence the handlers read and write.
type Store interface {
	FindByUserWeek(ctx context.Context, userID string, week, year int) (*models.WeeklyReport, error)
	SaveQuote(ctx context.Context, q *models.Quote) error
	SaveProfile(ctx context.Context, p *models.UserProfile) error
	Ping() error
}

// SchedulerStatus reports the weekly batch state for health checks.
type SchedulerStatus interface {
	IsRunning() bool
	NextRun() time.Time
}

// Handler holds the dependencies of every HTTP handler.
type Handler struct {
	reports   ReportRunner
	store     Store
	cal       *calendar.Calendar
	scheduler SchedulerStatus
	version   string
	startTime time.Time
}

// NewHandler creates a Handler. scheduler may be nil.
func NewHandler(reports ReportRunner, store Store, cal *calendar.Calendar, scheduler SchedulerStatus, version string) *Handler {
	return &Handler{
		reports:   reports,
		store:     store,
		cal:       cal,
		scheduler: scheduler,
		version:   version,
		startTime: time.Now(),
	}
}
