// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package report

import (
	"testing"
	"time"

	"github.com/tomtom215/quotebook/internal/models"
)

func TestComputeMetrics(t *testing.T) {
	t.Parallel()

	day := func(d, h int) time.Time { return time.Date(2025, time.January, d, h, 0, 0, 0, time.UTC) }
	quotes := []models.Quote{
		{Author: "Фромм", CreatedAt: day(6, 9)},
		{Author: " Фромм ", CreatedAt: day(6, 15)},
		{Author: "Рильке", CreatedAt: day(7, 10)},
		{Author: "", CreatedAt: day(8, 11)},
		{Author: "   ", CreatedAt: day(8, 12)},
	}

	got := ComputeMetrics(quotes, time.UTC, 30, 7)
	want := models.ReportMetrics{Quotes: 5, UniqueAuthors: 2, ActiveDays: 3, ProgressQuotesPct: 17, ProgressDaysPct: 43}
	if got != want {
		t.Errorf("ComputeMetrics() = %+v, want %+v", got, want)
	}
}

func TestComputeMetrics_BusinessTimezone(t *testing.T) {
	t.Parallel()

	minsk := time.FixedZone("UTC+03:00", 3*60*60)
	quotes := []models.Quote{
		// 01:30 on Jan 7 in business time.
		{CreatedAt: time.Date(2025, time.January, 6, 22, 30, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2025, time.January, 7, 10, 0, 0, 0, time.UTC)},
	}

	if got := ComputeMetrics(quotes, minsk, 30, 7).ActiveDays; got != 1 {
		t.Errorf("ActiveDays in business time = %d, want 1", got)
	}
	if got := ComputeMetrics(quotes, time.UTC, 30, 7).ActiveDays; got != 2 {
		t.Errorf("ActiveDays in UTC = %d, want 2", got)
	}
}

func TestProgressPct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, target, want int
	}{
		{0, 30, 0},
		{5, 30, 17},
		{15, 30, 50},
		{30, 30, 100},
		{45, 30, 100},
		{3, 7, 43},
		{7, 7, 100},
		{1, 0, 0},
	}

	for _, tt := range tests {
		if got := progressPct(tt.n, tt.target); got != tt.want {
			t.Errorf("progressPct(%d, %d) = %d, want %d", tt.n, tt.target, got, tt.want)
		}
	}
}

func TestComputeMetrics_Empty(t *testing.T) {
	t.Parallel()

	got := ComputeMetrics(nil, time.UTC, 30, 7)
	if got != (models.ReportMetrics{}) {
		t.Errorf("ComputeMetrics(nil) = %+v, want zero", got)
	}
}
