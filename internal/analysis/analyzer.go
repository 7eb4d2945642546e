// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package analysis turns a week of quotes into a WeeklyAnalysis.
//
// The AI provider is untrusted free-text output: responses go through a tiered
// parser (strict JSON, salvaged JSON substring, labeled regex fields) and any
// provider failure surfaces as ErrAIUnavailable so the caller can switch to the
// deterministic keyword Fallback.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/metrics"
	"github.com/tomtom215/quotebook/internal/resilience"
)

var (
	// ErrAIUnavailable covers network, auth, timeout and breaker failures of the provider.
	ErrAIUnavailable = errors.New("analysis: AI provider unavailable")

	// ErrMalformedResponse marks a response that parsed but lacks summary or insights.
	ErrMalformedResponse = errors.New("analysis: malformed AI response")
)

// Completer is the AI provider: one user-role prompt in, free text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds analyzer limits.
type Config struct {
	// Timeout bounds a single analysis including rate-limit wait.
	Timeout time.Duration

	// RequestsPerMinute caps provider calls; 0 disables limiting.
	RequestsPerMinute int

	// Burst is the limiter bucket size.
	Burst int

	Breaker resilience.BreakerConfig
}

// DefaultConfig returns a 30s timeout and 30 requests per minute.
func DefaultConfig() Config {
	return Config{
		Timeout:           30 * time.Second,
		RequestsPerMinute: 30,
		Burst:             3,
		Breaker:           resilience.DefaultBreakerConfig(),
	}
}

// Analyzer calls the AI provider under a timeout, rate limiter and circuit breaker.
type Analyzer struct {
	completer Completer
	cfg       Config
	limiter   *rate.Limiter
	breaker   *resilience.Breaker[string]
}

// NewAnalyzer creates an Analyzer. A nil completer yields an analyzer that always
// reports ErrAIUnavailable.
func NewAnalyzer(completer Completer, cfg Config) *Analyzer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	return &Analyzer{
		completer: completer,
		cfg:       cfg,
		limiter:   rate.NewLimiter(limit, cfg.Burst),
		breaker:   resilience.NewBreaker[string]("ai-provider", cfg.Breaker),
	}
}

type completion struct {
	text string
	err  error
}

// Analyze requests an analysis and parses the response.
// The returned result may be incomplete; the caller validates it.
func (a *Analyzer) Analyze(ctx context.Context, in PromptInput) (Result, error) {
	if a == nil || a.completer == nil {
		return Result{}, fmt.Errorf("%w: no provider configured", ErrAIUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	if err := a.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("%w: rate limiter: %w", ErrAIUnavailable, err)
	}

	prompt := BuildPrompt(in)
	start := time.Now()

	// The provider may ignore ctx; the select keeps the timeout authoritative.
	done := make(chan completion, 1)
	go func() {
		text, err := a.breaker.Execute(func() (string, error) {
			return a.completer.Complete(ctx, prompt)
		})
		done <- completion{text: text, err: err}
	}()

	var res completion
	select {
	case res = <-done:
	case <-ctx.Done():
		res = completion{err: ctx.Err()}
	}
	metrics.RecordAIRequest(time.Since(start), res.err)

	if res.err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrAIUnavailable, res.err)
	}

	parsed := Parse(res.text)
	metrics.RecordParserTier(string(parsed.Tier))
	logging.Ctx(ctx).Debug().Str("component", "analysis").Str("tier", string(parsed.Tier)).
		Int("response_bytes", len(res.text)).Msg("AI response parsed")

	return parsed, nil
}
