// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package models provides the data structures shared by the weekly report pipeline.
//
// Quotes, profiles, catalog entries, promo codes and UTM templates are reference or
// input data owned by the store. WeeklyAnalysis, Recommendation and ReportMetrics are
// value objects produced while a report is assembled; WeeklyReport is the final output
// handed to persistence and delivery.
package models
