// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package themes mines secondary themes: catalog free-text tags that literally occur
// in a week's quote texts.
package themes

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tomtom215/quotebook/internal/cache"
)

const (
	// MinThemeLength drops short tags that match too much text.
	MinThemeLength = 4

	// MaxSecondaryThemes caps the result.
	MaxSecondaryThemes = 5

	// denseWeekQuotes is the quote count above which a theme needs two hits.
	denseWeekQuotes = 15
)

// Mine returns up to MaxSecondaryThemes lower-cased catalog themes found in the
// quote texts, most frequent first. A theme counts once per quote. Themes equal to a
// canonical category (case-insensitive) are excluded. Weeks with more than 15 quotes
// require at least two occurrences.
//
// Ties are broken alphabetically so repeated runs return the same order.
func Mine(quoteTexts, catalogThemes, canonicalKeys []string) []string {
	if len(quoteTexts) == 0 || len(catalogThemes) == 0 {
		return []string{}
	}

	canonical := make(map[string]struct{}, len(canonicalKeys))
	for _, k := range canonicalKeys {
		canonical[strings.ToUpper(strings.TrimSpace(k))] = struct{}{}
	}

	ac := cache.NewAhoCorasick()
	seen := make(map[string]struct{})
	for _, raw := range catalogThemes {
		theme := strings.ToLower(strings.TrimSpace(raw))
		if utf8.RuneCountInString(theme) < MinThemeLength {
			continue
		}
		if _, dup := seen[theme]; dup {
			continue
		}
		if _, isCanonical := canonical[strings.ToUpper(theme)]; isCanonical {
			continue
		}
		seen[theme] = struct{}{}
		ac.AddPattern(theme, nil)
	}
	if len(seen) == 0 {
		return []string{}
	}
	ac.Build()

	freq := make(map[string]int)
	for _, text := range quoteTexts {
		for _, theme := range ac.DistinctPatterns(text) {
			freq[theme]++
		}
	}

	minFreq := 1
	if len(quoteTexts) > denseWeekQuotes {
		minFreq = 2
	}

	out := make([]string, 0, len(freq))
	for theme, n := range freq {
		if n >= minFreq {
			out = append(out, theme)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if freq[out[i]] != freq[out[j]] {
			return freq[out[i]] > freq[out[j]]
		}
		return out[i] < out[j]
	})

	if len(out) > MaxSecondaryThemes {
		out = out[:MaxSecondaryThemes]
	}
	return out
}
