// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package models

import "time"

// CatalogEntry is a recommendable book analysis from the catalog.
//
// TargetThemes are free-text tags and form the corpus for secondary theme mining.
// Price is kept as entered by editors ("1 200 BYN", "$12.50") and normalized when a
// report is assembled.
type CatalogEntry struct {
	BookSlug     string   `json:"book_slug" yaml:"book_slug" validate:"required,slug"`
	Title        string   `json:"title" yaml:"title" validate:"required"`
	Author       string   `json:"author,omitempty" yaml:"author"`
	Description  string   `json:"description" yaml:"description"`
	Categories   []string `json:"categories,omitempty" yaml:"categories"`
	TargetThemes []string `json:"target_themes,omitempty" yaml:"target_themes"`
	Reasoning    string   `json:"reasoning" yaml:"reasoning"`
	Price        string   `json:"price,omitempty" yaml:"price"`
	Priority     int      `json:"priority" yaml:"priority"`
	Universal    bool     `json:"universal" yaml:"universal"`
	Active       bool     `json:"active" yaml:"active"`
}

// PromoCode is a discount code offered alongside recommendations.
type PromoCode struct {
	Code        string    `json:"code" yaml:"code" validate:"required"`
	Discount    int       `json:"discount" yaml:"discount" validate:"gte=0,lte=100"`
	ValidUntil  time.Time `json:"valid_until" yaml:"valid_until"`
	Description string    `json:"description" yaml:"description"`
	Contexts    []string  `json:"contexts,omitempty" yaml:"contexts"`
	Active      bool      `json:"active" yaml:"active"`
}

// IsUsable reports whether the code is active and unexpired at now.
func (p *PromoCode) IsUsable(now time.Time) bool {
	return p.Active && (p.ValidUntil.IsZero() || now.Before(p.ValidUntil))
}

// AppliesTo reports whether the code is scoped to the given context.
// A code without contexts applies everywhere.
func (p *PromoCode) AppliesTo(context string) bool {
	if len(p.Contexts) == 0 {
		return true
	}
	for _, c := range p.Contexts {
		if c == context {
			return true
		}
	}
	return false
}
