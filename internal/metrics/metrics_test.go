// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAnalysisFallback(t *testing.T) {
	before := testutil.ToFloat64(AnalysisFallbacks.WithLabelValues("ai_unavailable"))
	RecordAnalysisFallback("ai_unavailable")
	RecordAnalysisFallback("ai_unavailable")

	if got := testutil.ToFloat64(AnalysisFallbacks.WithLabelValues("ai_unavailable")) - before; got != 2 {
		t.Errorf("ai_unavailable fallbacks delta = %v, want 2", got)
	}
}

func TestRecordBatchRun(t *testing.T) {
	generated := testutil.ToFloat64(BatchUsers.WithLabelValues("generated"))
	failed := testutil.ToFloat64(BatchUsers.WithLabelValues("failed"))

	RecordBatchRun(3*time.Second, 5, 2, 1)

	if got := testutil.ToFloat64(BatchUsers.WithLabelValues("generated")) - generated; got != 5 {
		t.Errorf("generated delta = %v, want 5", got)
	}
	if got := testutil.ToFloat64(BatchUsers.WithLabelValues("failed")) - failed; got != 1 {
		t.Errorf("failed delta = %v, want 1", got)
	}
	if testutil.ToFloat64(BatchLastRun) == 0 {
		t.Error("BatchLastRun not set")
	}
}

func TestRecordEventPublish(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("closed"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(EventsPublished.WithLabelValues("reports.weekly.generated", tt.result))
			RecordEventPublish("reports.weekly.generated", tt.err)
			after := testutil.ToFloat64(EventsPublished.WithLabelValues("reports.weekly.generated", tt.result))
			if after-before != 1 {
				t.Errorf("%s delta = %v, want 1", tt.result, after-before)
			}
		})
	}
}
