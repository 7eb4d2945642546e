// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package models

import "time"

// APIResponse is the envelope for every HTTP API response.
//
// Successful responses carry Status "success" and Data; failures carry
// Status "error" and Error.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a machine-readable error code with a human-readable message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status      string     `json:"status"`
	Version     string     `json:"version"`
	StoreOK     bool       `json:"store_ok"`
	Uptime      float64    `json:"uptime_seconds"`
	SchedulerOn bool       `json:"scheduler_running"`
	NextBatch   *time.Time `json:"next_batch,omitempty"`
}
