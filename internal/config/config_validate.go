// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/quotebook/internal/calendar"
	"github.com/tomtom215/quotebook/internal/recommend"
	"github.com/tomtom215/quotebook/internal/scheduler"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateBusiness(); err != nil {
		return err
	}

	if err := c.validateAI(); err != nil {
		return err
	}

	if err := c.validateReport(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateScheduler(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateBusiness() error {
	offset := c.Business.OffsetMinutes
	if offset < calendar.MinOffsetMinutes || offset > calendar.MaxOffsetMinutes {
		return fmt.Errorf("BUSINESS_TZ_OFFSET_MINUTES must be between %d and %d, got %d",
			calendar.MinOffsetMinutes, calendar.MaxOffsetMinutes, offset)
	}
	return nil
}

// validateAI validates provider settings (only if enabled)
func (c *Config) validateAI() error {
	if !c.AI.Enabled {
		return nil
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI_MODEL is required when AI_ENABLED=true")
	}
	if c.AI.BaseURL != "" {
		if err := validateHTTPURL(c.AI.BaseURL, "AI_BASE_URL"); err != nil {
			return err
		}
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive, got %v", c.AI.Timeout)
	}
	if c.AI.RequestsPerMinute < 0 {
		return fmt.Errorf("AI_REQUESTS_PER_MINUTE must be non-negative, got %d", c.AI.RequestsPerMinute)
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("AI_MAX_RETRIES must be non-negative, got %d", c.AI.MaxRetries)
	}
	return validateBreaker(c.AI.Breaker, "ai.breaker")
}

func (c *Config) validateReport() error {
	r := c.Report
	if r.TargetQuotes <= 0 {
		return fmt.Errorf("REPORT_TARGET_QUOTES must be positive, got %d", r.TargetQuotes)
	}
	if r.TargetDays <= 0 || r.TargetDays > 7 {
		return fmt.Errorf("REPORT_TARGET_DAYS must be between 1 and 7, got %d", r.TargetDays)
	}
	if r.MaxRecommendations < 1 || r.MaxRecommendations > recommend.MaxRecommendations {
		return fmt.Errorf("REPORT_MAX_RECOMMENDATIONS must be between 1 and %d, got %d",
			recommend.MaxRecommendations, r.MaxRecommendations)
	}
	if r.PromoContext == "" || r.LinkContext == "" {
		return fmt.Errorf("report promo_context and link_context are required")
	}
	if r.LinkBaseURL != "" {
		if err := validateHTTPURL(r.LinkBaseURL, "REPORT_LINK_BASE_URL"); err != nil {
			return err
		}
	}
	if r.FallbackDiscount <= 0 || r.FallbackDiscount > 100 {
		return fmt.Errorf("PROMO_FALLBACK_DISCOUNT must be between 1 and 100, got %d", r.FallbackDiscount)
	}
	if r.FallbackValidity <= 0 {
		return fmt.Errorf("PROMO_FALLBACK_VALIDITY must be positive, got %v", r.FallbackValidity)
	}
	if len(r.FallbackCodes) == 0 {
		return fmt.Errorf("PROMO_FALLBACK_CODES must list at least one code")
	}
	return validateBreaker(r.CatalogBreaker, "report.catalog_breaker")
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("STORAGE_PATH is required unless STORAGE_INMEMORY=true")
	}
	return nil
}

// validateScheduler validates the weekly batch (only if enabled)
func (c *Config) validateScheduler() error {
	s := c.Scheduler
	if !s.Enabled {
		return nil
	}
	if _, err := scheduler.ParseCron(s.Cron); err != nil {
		return fmt.Errorf("SCHEDULER_CRON is invalid: %w", err)
	}
	if s.CheckInterval <= 0 {
		return fmt.Errorf("SCHEDULER_CHECK_INTERVAL must be positive, got %v", s.CheckInterval)
	}
	if s.MaxConcurrent <= 0 {
		return fmt.Errorf("SCHEDULER_MAX_CONCURRENT must be positive, got %d", s.MaxConcurrent)
	}
	if s.ExecutionTimeout <= 0 {
		return fmt.Errorf("SCHEDULER_EXEC_TIMEOUT must be positive, got %v", s.ExecutionTimeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.TriggerRateLimit < 0 {
		return fmt.Errorf("TRIGGER_RATE_LIMIT must be non-negative, got %d", c.Server.TriggerRateLimit)
	}
	if c.Server.TriggerRateLimit > 0 && c.Server.TriggerRateWindow <= 0 {
		return fmt.Errorf("TRIGGER_RATE_WINDOW must be positive when TRIGGER_RATE_LIMIT is set")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func validateBreaker(b BreakerConfig, name string) error {
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		return fmt.Errorf("%s.failure_ratio must be in (0, 1], got %v", name, b.FailureRatio)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("%s.timeout must be positive, got %v", name, b.Timeout)
	}
	return nil
}

// validateHTTPURL checks for an absolute http(s) URL without query parameters.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
