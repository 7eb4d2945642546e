// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package config loads the Quotebook configuration.
//
// Configuration is layered, lowest priority first:
//  1. Built-in defaults (defaultConfig)
//  2. YAML config file (CONFIG_PATH or one of DefaultConfigPaths)
//  3. Environment variables (see envTransformFunc for the accepted names)
//
// Example config.yaml:
//
//	business:
//	  offset_minutes: 180
//	ai:
//	  enabled: true
//	  model: gpt-4o-mini
//	report:
//	  target_quotes: 30
//	storage:
//	  path: /data/quotebook
//	scheduler:
//	  cron: "0 9 * * 1"
package config

import (
	"time"

	"github.com/tomtom215/quotebook/internal/resilience"
)

// Config is the root configuration.
type Config struct {
	Business  BusinessConfig  `koanf:"business"`
	AI        AIConfig        `koanf:"ai"`
	Report    ReportConfig    `koanf:"report"`
	Storage   StorageConfig   `koanf:"storage"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Events    EventsConfig    `koanf:"events"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// BusinessConfig defines the business calendar.
type BusinessConfig struct {
	// OffsetMinutes is the fixed business timezone offset from UTC.
	// ISO weeks, day boundaries and the schedule are evaluated in this zone.
	// Default: 180 (UTC+3)
	OffsetMinutes int `koanf:"offset_minutes"`
}

// AIConfig configures the text analysis provider.
type AIConfig struct {
	// Enabled turns provider calls on. When disabled, or when no API key is
	// set, every report uses the keyword fallback analysis.
	Enabled bool `koanf:"enabled"`

	// BaseURL of an OpenAI-compatible endpoint. Empty uses the provider default.
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`

	// Timeout bounds a single analysis request.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerMinute caps provider calls across all reports. 0 disables limiting.
	RequestsPerMinute int `koanf:"requests_per_minute"`
	Burst             int `koanf:"burst"`

	// MaxRetries on provider rate-limit responses.
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// ReportConfig controls report content.
type ReportConfig struct {
	// TargetQuotes and TargetDays are the weekly goals progress is measured against.
	TargetQuotes int `koanf:"target_quotes"`
	TargetDays   int `koanf:"target_days"`

	// MaxRecommendations per report (1 or 2).
	MaxRecommendations int `koanf:"max_recommendations"`

	// PromoContext selects promo codes; LinkContext selects UTM templates.
	PromoContext string `koanf:"promo_context"`
	LinkContext  string `koanf:"link_context"`

	// LinkBaseURL is used when no UTM template matches. Empty uses the built-in site.
	LinkBaseURL string `koanf:"link_base_url"`

	// FallbackCodes, FallbackDiscount and FallbackValidity define the static
	// promo code used when no active code exists for PromoContext.
	FallbackCodes    []string      `koanf:"fallback_codes"`
	FallbackDiscount int           `koanf:"fallback_discount"`
	FallbackValidity time.Duration `koanf:"fallback_validity"`

	// ThemeCorpusTTL is how long the catalog theme list is cached.
	ThemeCorpusTTL time.Duration `koanf:"theme_corpus_ttl"`

	// CatalogBreaker guards catalog reads during recommendation.
	CatalogBreaker BreakerConfig `koanf:"catalog_breaker"`
}

// StorageConfig configures the embedded store.
type StorageConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path"`

	// InMemory keeps all data in memory. Intended for development.
	InMemory bool `koanf:"in_memory"`

	// SeedFile, when set, is loaded into the store at startup.
	SeedFile string `koanf:"seed_file"`
}

// SchedulerConfig controls the weekly batch.
type SchedulerConfig struct {
	Enabled bool `koanf:"enabled"`

	// Cron is a 5-field expression in business time.
	// Default: "0 9 * * 1" (Monday 09:00)
	Cron string `koanf:"cron"`

	CheckInterval    time.Duration `koanf:"check_interval"`
	MaxConcurrent    int           `koanf:"max_concurrent"`
	ExecutionTimeout time.Duration `koanf:"execution_timeout"`
}

// EventsConfig configures the in-process report event bus.
type EventsConfig struct {
	// BufferSize of the output channel per subscriber.
	BufferSize int64 `koanf:"buffer_size"`

	// LogDelivered subscribes a consumer that logs every generated report.
	LogDelivered bool `koanf:"log_delivered"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// TriggerRateLimit caps manual report triggers per client per TriggerRateWindow.
	TriggerRateLimit  int           `koanf:"trigger_rate_limit"`
	TriggerRateWindow time.Duration `koanf:"trigger_rate_window"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads the configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Resilience converts the breaker settings for resilience.NewBreaker.
func (b BreakerConfig) Resilience() resilience.BreakerConfig {
	return resilience.BreakerConfig{
		MaxRequests:  b.MaxRequests,
		Interval:     b.Interval,
		Timeout:      b.Timeout,
		MinRequests:  b.MinRequests,
		FailureRatio: b.FailureRatio,
	}
}
