// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/quotebook/config.yaml",
	"/etc/quotebook/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Business: BusinessConfig{
			OffsetMinutes: 180,
		},
		AI: AIConfig{
			Enabled:           false,
			BaseURL:           "",
			APIKey:            "",
			Model:             "gpt-4o-mini",
			Timeout:           30 * time.Second,
			RequestsPerMinute: 30,
			Burst:             3,
			MaxRetries:        3,
			RetryBaseDelay:    time.Second,
			Breaker:           defaultBreaker(),
		},
		Report: ReportConfig{
			TargetQuotes:       30,
			TargetDays:         7,
			MaxRecommendations: 2,
			PromoContext:       "weekly_report",
			LinkContext:        "weekly_report",
			LinkBaseURL:        "",
			FallbackCodes:      []string{"READER20", "WISDOM20", "QUOTES20", "BOOKS20"},
			FallbackDiscount:   20,
			FallbackValidity:   72 * time.Hour,
			ThemeCorpusTTL:     10 * time.Minute,
			CatalogBreaker:     defaultBreaker(),
		},
		Storage: StorageConfig{
			Path:     "/data/quotebook",
			InMemory: false,
			SeedFile: "",
		},
		Scheduler: SchedulerConfig{
			Enabled:          true,
			Cron:             "0 9 * * 1",
			CheckInterval:    time.Minute,
			MaxConcurrent:    4,
			ExecutionTimeout: 2 * time.Minute,
		},
		Events: EventsConfig{
			BufferSize:   256,
			LogDelivered: true,
			Breaker:      defaultBreaker(),
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              3857,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      3 * time.Minute,
			ShutdownTimeout:   30 * time.Second,
			TriggerRateLimit:  10,
			TriggerRateWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

func defaultBreaker() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  2,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources.
//
// Environment variables take precedence over the config file, which takes
// precedence over defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"report.fallback_codes",
}

// processSliceFields converts comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Business calendar
	"business_tz_offset_minutes": "business.offset_minutes",

	// AI provider
	"ai_enabled":               "ai.enabled",
	"ai_base_url":              "ai.base_url",
	"ai_api_key":               "ai.api_key",
	"openai_api_key":           "ai.api_key",
	"ai_model":                 "ai.model",
	"ai_timeout":               "ai.timeout",
	"ai_requests_per_minute":   "ai.requests_per_minute",
	"ai_burst":                 "ai.burst",
	"ai_max_retries":           "ai.max_retries",
	"ai_retry_base_delay":      "ai.retry_base_delay",
	"ai_breaker_timeout":       "ai.breaker.timeout",
	"ai_breaker_failure_ratio": "ai.breaker.failure_ratio",
	"ai_breaker_min_requests":  "ai.breaker.min_requests",
	"ai_breaker_max_requests":  "ai.breaker.max_requests",

	// Report content
	"report_target_quotes":       "report.target_quotes",
	"report_target_days":         "report.target_days",
	"report_max_recommendations": "report.max_recommendations",
	"report_promo_context":       "report.promo_context",
	"report_link_context":        "report.link_context",
	"report_link_base_url":       "report.link_base_url",
	"promo_fallback_codes":       "report.fallback_codes",
	"promo_fallback_discount":    "report.fallback_discount",
	"promo_fallback_validity":    "report.fallback_validity",
	"theme_corpus_ttl":           "report.theme_corpus_ttl",

	// Storage
	"data_path":        "storage.path",
	"storage_path":     "storage.path",
	"storage_inmemory": "storage.in_memory",
	"seed_file":        "storage.seed_file",

	// Scheduler
	"scheduler_enabled":        "scheduler.enabled",
	"scheduler_cron":           "scheduler.cron",
	"scheduler_check_interval": "scheduler.check_interval",
	"scheduler_max_concurrent": "scheduler.max_concurrent",
	"scheduler_exec_timeout":   "scheduler.execution_timeout",

	// Events
	"events_buffer_size":   "events.buffer_size",
	"events_log_delivered": "events.log_delivered",

	// HTTP server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"trigger_rate_limit":    "server.trigger_rate_limit",
	"trigger_rate_window":   "server.trigger_rate_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" so unrelated environment does not leak into config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// WatchConfigFile calls callback whenever the config file changes.
// The caller reloads with Load and guards its own copy of the configuration.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}

// ActiveConfigFile returns the config file Load would read, or "" if none exists.
func ActiveConfigFile() string {
	return findConfigFile()
}
