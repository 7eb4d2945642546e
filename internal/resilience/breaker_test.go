// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/quotebook/internal/metrics"
)

func TestBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	b := NewBreaker[string]("test-opens", BreakerConfig{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour})
	boom := errors.New("provider down")

	for i := 0; i < 3; i++ {
		if _, err := b.Execute(func() (string, error) { return "", boom }); !errors.Is(err, boom) {
			t.Fatalf("Execute() #%d error = %v, want %v", i, err, boom)
		}
	}

	if b.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", b.State())
	}

	_, err := b.Execute(func() (string, error) { return "ok", nil })
	if !IsRejected(err) {
		t.Errorf("Execute() on open breaker error = %v, want rejection", err)
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-opens")); got != 2 {
		t.Errorf("circuit_breaker_state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-opens", "rejected")); got != 1 {
		t.Errorf("rejected requests = %v, want 1", got)
	}
}

func TestBreakerPassesResults(t *testing.T) {
	t.Parallel()

	b := NewBreaker[int]("test-passes", DefaultBreakerConfig())
	got, err := b.Execute(func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Errorf("Execute() = %d, %v, want 42, nil", got, err)
	}
	if b.Name() != "test-passes" {
		t.Errorf("Name() = %q", b.Name())
	}
}
