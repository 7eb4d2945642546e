// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/models"
	"github.com/tomtom215/quotebook/internal/report"
	"github.com/tomtom215/quotebook/internal/store"
)

// userPath is the validated {userID} path parameter.
type userPath struct {
	UserID string `validate:"required,max=128"`
}

// TriggerReportRequest is the optional body of a manual trigger. Both fields
// are given together or both omitted; omitted means the previous complete week.
type TriggerReportRequest struct {
	ISOWeek *int `json:"iso_week" validate:"omitempty,min=1,max=53"`
	ISOYear *int `json:"iso_year" validate:"omitempty,min=2000,max=2100"`
}

// TriggerReport generates (or regenerates) a user's weekly report.
//
// POST /api/v1/users/{userID}/reports
func (h *Handler) TriggerReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if apiErr := validateRequest(&userPath{UserID: userID}); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	var req TriggerReportRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON object", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}
	if (req.ISOWeek == nil) != (req.ISOYear == nil) {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "iso_week and iso_year must be supplied together", nil)
		return
	}

	opts := report.RunOptions{}
	if req.ISOWeek != nil {
		opts.Week = &models.WeekMeta{ISOWeek: *req.ISOWeek, ISOYear: *req.ISOYear}
	}

	ctx := logging.ContextWithUserID(r.Context(), userID)
	generated, err := h.reports.Run(ctx, userID, opts)
	switch {
	case err == nil:
		respondData(w, http.StatusCreated, generated, start)
	case errors.Is(err, report.ErrMissingWeekMetadata):
		respondError(w, r, http.StatusBadRequest, "INVALID_WEEK", err.Error(), nil)
	default:
		respondError(w, r, http.StatusInternalServerError, "REPORT_FAILED", "Report generation failed", err)
	}
}

// GetReport returns a stored report.
//
// GET /api/v1/users/{userID}/reports/{year}/{week}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if apiErr := validateRequest(&userPath{UserID: userID}); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	year, yearErr := strconv.Atoi(chi.URLParam(r, "year"))
	week, weekErr := strconv.Atoi(chi.URLParam(r, "week"))
	if yearErr != nil || weekErr != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "year and week must be integers", nil)
		return
	}
	if apiErr := validateRequest(&models.WeekMeta{ISOWeek: week, ISOYear: year}); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	found, err := h.store.FindByUserWeek(r.Context(), userID, week, year)
	switch {
	case err == nil:
		respondData(w, http.StatusOK, found, start)
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "No report for this week", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, "STORE_ERROR", "Failed to load report", err)
	}
}

// PreviousWeek returns the most recent complete ISO week in business time.
//
// GET /api/v1/calendar/previous-week
func (h *Handler) PreviousWeek(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, h.cal.PreviousCompleteWeek(), time.Now())
}
