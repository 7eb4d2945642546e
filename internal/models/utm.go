// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// UTMTemplate builds tracked outbound links for one context.
//
// Every string field may contain {book_slug}, {context} or {user_id} placeholders.
type UTMTemplate struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Context  string `json:"context" yaml:"context" validate:"required"`
	BaseURL  string `json:"base_url" yaml:"base_url" validate:"required,url"`
	Source   string `json:"source" yaml:"source"`
	Medium   string `json:"medium" yaml:"medium"`
	Campaign string `json:"campaign" yaml:"campaign"`
	Content  string `json:"content" yaml:"content"`
	Active   bool   `json:"active" yaml:"active"`
}

// GenerateLink substitutes vars into the template and appends the UTM parameters.
// Existing query parameters on BaseURL are kept.
func (t *UTMTemplate) GenerateLink(vars map[string]string) (string, error) {
	base := expandPlaceholders(t.BaseURL, vars)
	if base == "" {
		return "", errors.New("utm template: empty base url")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("utm template %s: %w", t.ID, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("utm template %s: base url %q is not absolute", t.ID, base)
	}

	q := u.Query()
	setIfPresent(q, "utm_source", expandPlaceholders(t.Source, vars))
	setIfPresent(q, "utm_medium", expandPlaceholders(t.Medium, vars))
	setIfPresent(q, "utm_campaign", expandPlaceholders(t.Campaign, vars))
	setIfPresent(q, "utm_content", expandPlaceholders(t.Content, vars))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func expandPlaceholders(s string, vars map[string]string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
