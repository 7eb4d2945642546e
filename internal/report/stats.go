// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package report

import (
	"math"
	"strings"
	"time"

	"github.com/tomtom215/quotebook/internal/models"
)

// ComputeMetrics summarizes the week's quotes. Dates are taken in loc so that
// a quote saved shortly after midnight business time counts for the new day.
func ComputeMetrics(quotes []models.Quote, loc *time.Location, targetQuotes, targetDays int) models.ReportMetrics {
	authors := make(map[string]struct{})
	days := make(map[string]struct{})

	for i := range quotes {
		if author := strings.TrimSpace(quotes[i].Author); author != "" {
			authors[author] = struct{}{}
		}
		days[quotes[i].CreatedAt.In(loc).Format(time.DateOnly)] = struct{}{}
	}

	return models.ReportMetrics{
		Quotes:            len(quotes),
		UniqueAuthors:     len(authors),
		ActiveDays:        len(days),
		ProgressQuotesPct: progressPct(len(quotes), targetQuotes),
		ProgressDaysPct:   progressPct(len(days), targetDays),
	}
}

// progressPct returns min(100, round(n/target*100)).
func progressPct(n, target int) int {
	if target <= 0 {
		return 0
	}
	pct := int(math.Round(float64(n) / float64(target) * 100))
	return min(pct, 100)
}
