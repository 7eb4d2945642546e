// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCorrelationIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if id := CorrelationIDFromContext(ctx); id != "" {
		t.Errorf("CorrelationIDFromContext(empty) = %q, want empty", id)
	}

	ctx = ContextWithNewCorrelationID(ctx)
	if id := CorrelationIDFromContext(ctx); len(id) != 8 {
		t.Errorf("generated correlation ID length = %d, want 8", len(id))
	}
}

func TestCtxAddsContextFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithCorrelationID(ctx, "abc12345")
	ctx = ContextWithUserID(ctx, "user-42")

	Ctx(ctx).Warn().Msg("fallback used")

	out := buf.String()
	for _, want := range []string{`"correlation_id":"abc12345"`, `"user_id":"user-42"`, "fallback used"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.WithGroup("supervisor").Warn("service restarted", slog.String("service", "weekly-scheduler"), slog.Int("attempt", 2))

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("missing warn level: %s", out)
	}
	if !strings.Contains(out, `"supervisor.service":"weekly-scheduler"`) {
		t.Errorf("missing grouped attribute: %s", out)
	}
	if !strings.Contains(out, `"supervisor.attempt":2`) {
		t.Errorf("missing int attribute: %s", out)
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true for warn logger, want false")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false for warn logger, want true")
	}
}

// Not parallel: Init changes the process-wide level.
func TestInitReconfiguresLevel(t *testing.T) {
	previous := GetLevel()
	prevLogger := Logger()
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(previous)
		SetLogger(prevLogger)
	})

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	if got := GetLevel(); got != zerolog.WarnLevel {
		t.Fatalf("GetLevel() = %v, want warn", got)
	}

	Debug().Msg("dropped")
	logger := WithComponent("weekly-scheduler")
	logger.Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("debug event written at warn level: %s", out)
	}
	if !strings.Contains(out, `"component":"weekly-scheduler"`) || !strings.Contains(out, "kept") {
		t.Errorf("component logger output = %s", out)
	}
}
