// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/quotebook/internal/middleware"
)

// RouterConfig configures routing middleware.
type RouterConfig struct {
	// TriggerRateLimit caps manual report triggers per client IP per
	// TriggerRateWindow. 0 disables the limit.
	TriggerRateLimit  int
	TriggerRateWindow time.Duration
}

// Router builds the HTTP handler tree.
type Router struct {
	handler *Handler
	config  RouterConfig
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, config RouterConfig) *Router {
	return &Router{handler: handler, config: config}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	r.Get("/healthz", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/calendar/previous-week", router.handler.PreviousWeek)

		r.Route("/users/{userID}", func(r chi.Router) {
			// Each trigger may call the AI provider
			r.With(router.triggerRateLimit()).Post("/reports", router.handler.TriggerReport)
			r.Get("/reports/{year}/{week}", router.handler.GetReport)
			r.Post("/quotes", router.handler.CreateQuote)
			r.Put("/profile", router.handler.UpdateProfile)
		})
	})

	return r
}

func (router *Router) triggerRateLimit() func(http.Handler) http.Handler {
	if router.config.TriggerRateLimit <= 0 || router.config.TriggerRateWindow <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		router.config.TriggerRateLimit,
		router.config.TriggerRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many report requests, retry later", nil)
		}),
	)
}
