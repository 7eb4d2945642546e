// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package models

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// ============================================================================
// Week coordinates
// ============================================================================

// WeekRange is an ISO week with its instant boundaries.
// Start is Monday 00:00 and End is Sunday 23:59:59.999 in the business timezone.
type WeekRange struct {
	ISOWeek int       `json:"iso_week"`
	ISOYear int       `json:"iso_year"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Contains reports whether t falls inside the week.
func (w WeekRange) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WeekMeta is caller-supplied week metadata for a report.
type WeekMeta struct {
	ISOWeek int `json:"iso_week" validate:"required,min=1,max=53"`
	ISOYear int `json:"iso_year" validate:"required,min=2000,max=2100"`
}

// ============================================================================
// Report values
// ============================================================================

// Price is a normalized recommendation price. Known is false when the catalog
// value could not be parsed into a non-negative amount.
type Price struct {
	Amount float64
	Known  bool
}

// UnknownPrice is the marker used for unparsable prices.
var UnknownPrice = Price{}

// MarshalJSON encodes a known price as a number and an unknown price as "unknown".
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Known {
		return []byte(`"unknown"`), nil
	}
	return []byte(strconv.FormatFloat(p.Amount, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts the forms written by MarshalJSON.
func (p *Price) UnmarshalJSON(data []byte) error {
	var amount float64
	if err := json.Unmarshal(data, &amount); err != nil {
		*p = UnknownPrice
		return nil //nolint:nilerr // any non-number is the unknown marker
	}
	*p = Price{Amount: amount, Known: true}
	return nil
}

// Recommendation is a catalog entry selected for a report.
type Recommendation struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	BookSlug    string `json:"book_slug"`
	Reasoning   string `json:"reasoning"`
	Link        string `json:"link"`

	// RawPrice is the catalog price before normalization.
	RawPrice string `json:"-"`
}

// ReportMetrics summarizes reading activity over the report week.
type ReportMetrics struct {
	Quotes            int `json:"quotes"`
	UniqueAuthors     int `json:"unique_authors"`
	ActiveDays        int `json:"active_days"`
	ProgressQuotesPct int `json:"progress_quotes_pct"`
	ProgressDaysPct   int `json:"progress_days_pct"`
}

// WeeklyReport is the assembled output of the pipeline.
// It is stored once per (UserID, ISOWeek, ISOYear); regeneration replaces it.
type WeeklyReport struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	WeekNumber      int              `json:"week_number"`
	Year            int              `json:"year"`
	WeekStart       time.Time        `json:"week_start"`
	WeekEnd         time.Time        `json:"week_end"`
	Analysis        WeeklyAnalysis   `json:"analysis"`
	Recommendations []Recommendation `json:"recommendations"`
	PromoCode       PromoCode        `json:"promo_code"`
	Metrics         ReportMetrics    `json:"metrics"`
	QuoteIDs        []string         `json:"quote_ids,omitempty"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
