// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/quotebook/internal/models"
)

// Health reports store connectivity and scheduler state. It answers 503 when
// the store cannot serve reads.
//
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	status := models.HealthStatus{
		Status:  "healthy",
		Version: h.version,
		StoreOK: h.store != nil && h.store.Ping() == nil,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	if h.scheduler != nil {
		status.SchedulerOn = h.scheduler.IsRunning()
		if next := h.scheduler.NextRun(); !next.IsZero() {
			status.NextBatch = &next
		}
	}

	code := http.StatusOK
	if !status.StoreOK {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondData(w, code, status, start)
}
