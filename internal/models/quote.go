// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package models

import "time"

// Quote is a single passage saved by a reader.
//
// WeekNumber and YearNumber are cached ISO-week coordinates of CreatedAt in the
// business timezone. The store derives them on write and the backfill job repairs
// historical rows whose coordinates drifted.
type Quote struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id" validate:"required"`
	Text       string    `json:"text" validate:"required"`
	Author     string    `json:"author,omitempty"`
	Source     string    `json:"source,omitempty"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	WeekNumber int       `json:"week_number"`
	YearNumber int       `json:"year_number"`
}

// UserProfile is the read-only reader profile used to personalize prompts.
type UserProfile struct {
	UserID      string            `json:"user_id"`
	Name        string            `json:"name"`
	TestResults map[string]string `json:"test_results,omitempty"`
	Preferences Preferences       `json:"preferences"`
}

// Preferences holds the reader's stated interests.
type Preferences struct {
	MainThemes     []string `json:"main_themes,omitempty"`
	Personality    string   `json:"personality,omitempty"`
	ReadingHabits  string   `json:"reading_habits,omitempty"`
	ReportLanguage string   `json:"report_language,omitempty"`
}
