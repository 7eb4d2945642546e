// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/quotebook/internal/models"
)

// CreateQuoteRequest is the body of a quote submission.
type CreateQuoteRequest struct {
	Text      string     `json:"text" validate:"required,max=4096"`
	Author    string     `json:"author" validate:"max=256"`
	Source    string     `json:"source" validate:"max=256"`
	Category  string     `json:"category" validate:"max=64"`
	CreatedAt *time.Time `json:"created_at"`
}

// CreateQuote stores a quote. Its week coordinates are derived from created_at
// (or the current time) in business time.
//
// POST /api/v1/users/{userID}/quotes
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if apiErr := validateRequest(&userPath{UserID: userID}); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	var req CreateQuoteRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON object", nil)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	q := &models.Quote{
		UserID:   userID,
		Text:     req.Text,
		Author:   strings.TrimSpace(req.Author),
		Source:   strings.TrimSpace(req.Source),
		Category: strings.TrimSpace(req.Category),
	}
	if req.CreatedAt != nil {
		q.CreatedAt = *req.CreatedAt
	}

	if err := h.store.SaveQuote(r.Context(), q); err != nil {
		respondError(w, r, http.StatusInternalServerError, "STORE_ERROR", "Failed to save quote", err)
		return
	}
	respondData(w, http.StatusCreated, q, start)
}

// UpdateProfileRequest is the body of a profile update.
type UpdateProfileRequest struct {
	Name        string             `json:"name" validate:"max=128"`
	TestResults map[string]string  `json:"test_results"`
	Preferences models.Preferences `json:"preferences"`
}

// UpdateProfile inserts or replaces a user's profile.
//
// PUT /api/v1/users/{userID}/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if apiErr := validateRequest(&userPath{UserID: userID}); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON object", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	p := &models.UserProfile{
		UserID:      userID,
		Name:        req.Name,
		TestResults: req.TestResults,
		Preferences: req.Preferences,
	}
	if err := h.store.SaveProfile(r.Context(), p); err != nil {
		respondError(w, r, http.StatusInternalServerError, "STORE_ERROR", "Failed to save profile", err)
		return
	}
	respondData(w, http.StatusOK, p, start)
}
