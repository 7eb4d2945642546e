// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package recommend

import (
	"fmt"

	"github.com/tomtom215/quotebook/internal/resilience"
)

// MaxRecommendations is the hard cap per report.
const MaxRecommendations = 2

// Config contains matcher configuration.
type Config struct {
	// Limit is the number of recommendations per report, 1..MaxRecommendations.
	Limit int

	// LinkContext is passed to the link generator.
	LinkContext string

	// Breaker guards catalog reads.
	Breaker resilience.BreakerConfig
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Limit:       MaxRecommendations,
		LinkContext: "weekly_report",
		Breaker:     resilience.DefaultBreakerConfig(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Limit < 1 || c.Limit > MaxRecommendations {
		return fmt.Errorf("recommend: limit must be 1..%d, got %d", MaxRecommendations, c.Limit)
	}
	if c.LinkContext == "" {
		return fmt.Errorf("recommend: link context is required")
	}
	return nil
}
