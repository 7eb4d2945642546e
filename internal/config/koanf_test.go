// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// isolateConfig points CONFIG_PATH at a file in a temp dir and moves into
// that dir so no config.yaml from the working tree is picked up.
func isolateConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "quotebook.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	t.Setenv(ConfigPathEnvVar, path)
	return path
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := defaultConfig()

	if cfg.Business.OffsetMinutes != 180 {
		t.Errorf("Business.OffsetMinutes = %d, want 180", cfg.Business.OffsetMinutes)
	}
	if cfg.AI.Enabled {
		t.Error("AI.Enabled should be false by default")
	}
	if cfg.Report.TargetQuotes != 30 || cfg.Report.TargetDays != 7 {
		t.Errorf("Report targets = %d/%d, want 30/7", cfg.Report.TargetQuotes, cfg.Report.TargetDays)
	}
	if cfg.Report.MaxRecommendations != 2 {
		t.Errorf("Report.MaxRecommendations = %d, want 2", cfg.Report.MaxRecommendations)
	}
	if cfg.Report.FallbackDiscount != 20 || cfg.Report.FallbackValidity != 72*time.Hour {
		t.Errorf("fallback promo = %d%%/%v, want 20%%/72h", cfg.Report.FallbackDiscount, cfg.Report.FallbackValidity)
	}
	if cfg.Scheduler.Cron != "0 9 * * 1" {
		t.Errorf("Scheduler.Cron = %q, want Monday 09:00", cfg.Scheduler.Cron)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
	}{
		{"BUSINESS_TZ_OFFSET_MINUTES", "business.offset_minutes"},
		{"AI_API_KEY", "ai.api_key"},
		{"OPENAI_API_KEY", "ai.api_key"},
		{"AI_BREAKER_FAILURE_RATIO", "ai.breaker.failure_ratio"},
		{"REPORT_TARGET_QUOTES", "report.target_quotes"},
		{"PROMO_FALLBACK_CODES", "report.fallback_codes"},
		{"STORAGE_PATH", "storage.path"},
		{"SCHEDULER_CRON", "scheduler.cron"},
		{"HTTP_PORT", "server.port"},
		{"log_level", "logging.level"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty when nothing exists", got)
	}

	if err := os.WriteFile("config.yml", []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yml" {
		t.Errorf("findConfigFile() = %q, want config.yml", got)
	}

	explicit := filepath.Join(dir, "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, explicit)
	if got := ActiveConfigFile(); got != explicit {
		t.Errorf("ActiveConfigFile() = %q, want %q", got, explicit)
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateConfig(t, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BUSINESS_TZ_OFFSET_MINUTES", "-300")
	t.Setenv("AI_TIMEOUT", "45s")
	t.Setenv("PROMO_FALLBACK_CODES", "ALPHA, BETA,,")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Business.OffsetMinutes != -300 {
		t.Errorf("Business.OffsetMinutes = %d, want -300", cfg.Business.OffsetMinutes)
	}
	if cfg.AI.Timeout != 45*time.Second {
		t.Errorf("AI.Timeout = %v, want 45s", cfg.AI.Timeout)
	}
	if !slices.Equal(cfg.Report.FallbackCodes, []string{"ALPHA", "BETA"}) {
		t.Errorf("Report.FallbackCodes = %v, want [ALPHA BETA]", cfg.Report.FallbackCodes)
	}

	// Defaults survive for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Report.TargetQuotes != 30 {
		t.Errorf("Report.TargetQuotes = %d, want 30 (default)", cfg.Report.TargetQuotes)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	isolateConfig(t, `
business:
  offset_minutes: 120
ai:
  enabled: true
  api_key: sk-file
  model: gpt-test
report:
  target_quotes: 21
  fallback_codes: [ONE, TWO]
scheduler:
  cron: "30 8 * * 1"
logging:
  format: console
`)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Business.OffsetMinutes != 120 {
		t.Errorf("Business.OffsetMinutes = %d, want 120", cfg.Business.OffsetMinutes)
	}
	if !cfg.AI.Enabled || cfg.AI.APIKey != "sk-file" || cfg.AI.Model != "gpt-test" {
		t.Errorf("AI = %+v, want enabled with file key and model", cfg.AI)
	}
	if cfg.Report.TargetQuotes != 21 {
		t.Errorf("Report.TargetQuotes = %d, want 21", cfg.Report.TargetQuotes)
	}
	if !slices.Equal(cfg.Report.FallbackCodes, []string{"ONE", "TWO"}) {
		t.Errorf("Report.FallbackCodes = %v, want [ONE TWO]", cfg.Report.FallbackCodes)
	}
	if cfg.Scheduler.Cron != "30 8 * * 1" {
		t.Errorf("Scheduler.Cron = %q", cfg.Scheduler.Cron)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	isolateConfig(t, `
ai:
  api_key: sk-file
report:
  target_quotes: 21
`)
	t.Setenv("AI_API_KEY", "sk-env")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.AI.APIKey != "sk-env" {
		t.Errorf("AI.APIKey = %q, want env to win", cfg.AI.APIKey)
	}
	if cfg.Report.TargetQuotes != 21 {
		t.Errorf("Report.TargetQuotes = %d, want file value 21", cfg.Report.TargetQuotes)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"offset too far east", map[string]string{"BUSINESS_TZ_OFFSET_MINUTES": "900"}, "BUSINESS_TZ_OFFSET_MINUTES"},
		{"bad cron", map[string]string{"SCHEDULER_CRON": "every monday"}, "SCHEDULER_CRON"},
		{"cron that never fires", map[string]string{"SCHEDULER_CRON": "0 9 30 2 *"}, "SCHEDULER_CRON"},
		{"bad cron ignored when disabled", map[string]string{"SCHEDULER_CRON": "nope", "SCHEDULER_ENABLED": "false"}, ""},
		{"zero target quotes", map[string]string{"REPORT_TARGET_QUOTES": "0"}, "REPORT_TARGET_QUOTES"},
		{"three recommendations", map[string]string{"REPORT_MAX_RECOMMENDATIONS": "3"}, "REPORT_MAX_RECOMMENDATIONS"},
		{"invalid log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"ai base url without scheme", map[string]string{"AI_ENABLED": "true", "AI_BASE_URL": "api.local/v1"}, "AI_BASE_URL"},
		{"ai base url with path", map[string]string{"AI_ENABLED": "true", "AI_BASE_URL": "https://api.local/v1"}, ""},
		{"in-memory needs no path", map[string]string{"STORAGE_PATH": "", "STORAGE_INMEMORY": "true"}, ""},
		{"port out of range", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("LoadWithKoanf() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("LoadWithKoanf() error = nil, want error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestBreakerConfigResilience(t *testing.T) {
	t.Parallel()
	b := BreakerConfig{MaxRequests: 1, Interval: time.Second, Timeout: 2 * time.Second, MinRequests: 4, FailureRatio: 0.5}
	r := b.Resilience()
	if r.MaxRequests != 1 || r.Interval != time.Second || r.Timeout != 2*time.Second || r.MinRequests != 4 || r.FailureRatio != 0.5 {
		t.Errorf("Resilience() = %+v", r)
	}
}
