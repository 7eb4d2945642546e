// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the weekly report pipeline:
// - report generation outcomes and latency
// - AI analysis: parser tiers, fallbacks, request latency
// - collaborator fallbacks (catalog, promo, templates, prior report)
// - circuit breakers
// - weekly batch runs
// - HTTP API

var (
	// Report Metrics
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebook_reports_generated_total",
			Help: "Total number of weekly reports assembled",
		},
		[]string{"outcome"}, // "success", "missing_week", "store_error"
	)

	ReportGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quotebook_report_generation_duration_seconds",
			Help:    "Time to assemble a single weekly report",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SecondaryThemesMined = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quotebook_secondary_themes_mined",
			Help:    "Number of secondary themes mined per report",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// Analysis Metrics
	AnalysisParserTier = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebook_analysis_parser_tier_total",
			Help: "AI responses decoded, by the parser tier that succeeded",
		},
		[]string{"tier"}, // "strict_json", "salvaged_json", "regex"
	)

	AnalysisFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebook_analysis_fallbacks_total",
			Help: "Analyses replaced by the keyword fallback",
		},
		[]string{"reason"}, // "ai_unavailable", "malformed_response"
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotebook_ai_request_duration_seconds",
			Help:    "Duration of AI completion requests",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"status"}, // "success", "error"
	)

	// Collaborator Metrics
	CollaboratorFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebook_collaborator_fallbacks_total",
			Help: "Static fallbacks used because a collaborator failed or returned nothing",
		},
		[]string{"collaborator"}, // "catalog", "promo", "utm_template", "prior_report", "theme_corpus"
	)

	InvalidPrices = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quotebook_invalid_prices_total",
			Help: "Recommendation prices normalized to unknown",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Batch Metrics
	BatchRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quotebook_batch_run_duration_seconds",
			Help:    "Duration of a weekly batch run",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		},
	)

	BatchUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebook_batch_users_total",
			Help: "Users processed by weekly batch runs",
		},
		[]string{"result"}, // "generated", "skipped", "failed"
	)

	BatchLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quotebook_batch_last_run_timestamp",
			Help: "Unix timestamp of the last completed batch run",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebook_events_published_total",
			Help: "Report events published to delivery",
		},
		[]string{"topic", "result"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebook_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotebook_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordReport records the outcome and duration of one report generation.
func RecordReport(outcome string, duration time.Duration) {
	ReportsGenerated.WithLabelValues(outcome).Inc()
	ReportGenerationDuration.Observe(duration.Seconds())
}

// RecordAIRequest records an AI completion call.
func RecordAIRequest(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AIRequestDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordParserTier counts the parser tier that decoded an AI response.
func RecordParserTier(tier string) {
	AnalysisParserTier.WithLabelValues(tier).Inc()
}

// RecordAnalysisFallback counts a fallback analysis by reason.
func RecordAnalysisFallback(reason string) {
	AnalysisFallbacks.WithLabelValues(reason).Inc()
}

// RecordCollaboratorFallback counts a static fallback for a collaborator.
func RecordCollaboratorFallback(collaborator string) {
	CollaboratorFallbacks.WithLabelValues(collaborator).Inc()
}

// RecordBatchRun records a completed weekly batch.
func RecordBatchRun(duration time.Duration, generated, skipped, failed int) {
	BatchRunDuration.Observe(duration.Seconds())
	BatchUsers.WithLabelValues("generated").Add(float64(generated))
	BatchUsers.WithLabelValues("skipped").Add(float64(skipped))
	BatchUsers.WithLabelValues("failed").Add(float64(failed))
	BatchLastRun.Set(float64(time.Now().Unix()))
}

// RecordEventPublish counts a publish attempt on topic.
func RecordEventPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
