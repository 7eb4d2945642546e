// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package analysis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type mockCompleter struct {
	response string
	err      error
	delay    time.Duration
	calls    atomic.Int32
	prompt   atomic.Value
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	m.prompt.Store(prompt)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.response, m.err
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = time.Second
	cfg.RequestsPerMinute = 0
	return cfg
}

func TestAnalyzer_Success(t *testing.T) {
	t.Parallel()

	mock := &mockCompleter{response: "```json\n{\"summary\":\"итог\",\"insights\":\"мысли\",\"dominantThemes\":[\"Время\"]}\n```"}
	a := NewAnalyzer(mock, testConfig())

	res, err := a.Analyze(context.Background(), PromptInput{Quotes: quotes("Время лечит")})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.Tier != TierStrictJSON || res.Analysis.Summary != "итог" {
		t.Errorf("Analyze() = %+v", res)
	}
	if p, _ := mock.prompt.Load().(string); !strings.Contains(p, "Время лечит") {
		t.Errorf("prompt does not include the quote: %q", p)
	}
}

func TestAnalyzer_ProviderError(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(&mockCompleter{err: errors.New("401 unauthorized")}, testConfig())
	_, err := a.Analyze(context.Background(), PromptInput{})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Errorf("Analyze() error = %v, want ErrAIUnavailable", err)
	}
}

func TestAnalyzer_TimeoutIsUnavailable(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	a := NewAnalyzer(&mockCompleter{response: `{"summary":"late","insights":"late"}`, delay: 500 * time.Millisecond}, cfg)

	start := time.Now()
	_, err := a.Analyze(context.Background(), PromptInput{})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("Analyze() error = %v, want ErrAIUnavailable", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Analyze() error = %v, want wrapped DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("Analyze() returned after %v, timeout not enforced", elapsed)
	}
}

func TestAnalyzer_NilCompleter(t *testing.T) {
	t.Parallel()

	_, err := NewAnalyzer(nil, testConfig()).Analyze(context.Background(), PromptInput{})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Errorf("Analyze() error = %v, want ErrAIUnavailable", err)
	}

	var nilAnalyzer *Analyzer
	if _, err := nilAnalyzer.Analyze(context.Background(), PromptInput{}); !errors.Is(err, ErrAIUnavailable) {
		t.Errorf("nil Analyzer error = %v, want ErrAIUnavailable", err)
	}
}

func TestAnalyzer_BreakerShortCircuits(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Breaker.MinRequests = 2
	cfg.Breaker.FailureRatio = 0.5
	cfg.Breaker.Timeout = time.Hour
	mock := &mockCompleter{err: errors.New("503")}
	a := NewAnalyzer(mock, cfg)

	for i := 0; i < 4; i++ {
		if _, err := a.Analyze(context.Background(), PromptInput{}); !errors.Is(err, ErrAIUnavailable) {
			t.Fatalf("Analyze() #%d error = %v", i, err)
		}
	}
	if got := mock.calls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2 (breaker open afterwards)", got)
	}
}
