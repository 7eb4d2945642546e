// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package recommend matches a week's themes to catalog entries.
//
// Matching is rule-based and deterministic for a given catalog:
//
//  1. Themes are ordered dominant first, then secondary, then the reader's stated
//     interests, without duplicates.
//  2. The catalog returns active entries for those themes; when none match, the
//     universal entries are used instead.
//  3. Entries are deduplicated by book slug and capped at two; each receives a
//     tracked link and reasoning extended by the week's emotional tone.
//
// If the catalog fails or has nothing at all, a single book from a static
// theme-keyed table is returned, so a report always carries a recommendation.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/metrics"
	"github.com/tomtom215/quotebook/internal/models"
	"github.com/tomtom215/quotebook/internal/resilience"
)

// ErrCatalogUnavailable is logged when the catalog fails or is empty.
var ErrCatalogUnavailable = errors.New("recommend: catalog unavailable")

// Catalog is the catalog read interface.
type Catalog interface {
	FindActiveByThemes(ctx context.Context, themes []string) ([]models.CatalogEntry, error)
	FindUniversal(ctx context.Context) ([]models.CatalogEntry, error)
}

// LinkBuilder produces tracked links for a book.
type LinkBuilder interface {
	BuildLink(ctx context.Context, bookSlug, linkContext string) string
}

// Matcher selects recommendations for a report.
type Matcher struct {
	catalog Catalog
	links   LinkBuilder
	cfg     Config
	breaker *resilience.Breaker[[]models.CatalogEntry]
	logger  zerolog.Logger
}

// NewMatcher creates a Matcher. catalog may be nil, in which case the static table
// is always used.
func NewMatcher(catalog Catalog, links LinkBuilder, cfg Config) (*Matcher, error) {
	if links == nil {
		return nil, errors.New("recommend: link builder is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Matcher{
		catalog: catalog,
		links:   links,
		cfg:     cfg,
		breaker: resilience.NewBreaker[[]models.CatalogEntry]("catalog", cfg.Breaker),
		logger:  logging.WithComponent("recommend"),
	}, nil
}

// Recommend returns at most Config.Limit recommendations with unique book slugs.
// It never fails and always returns at least one entry. Only the week's themes
// select books; the profile does not widen the catalog query.
func (m *Matcher) Recommend(ctx context.Context, analysis *models.WeeklyAnalysis, _ *models.UserProfile) []models.Recommendation {
	themes := OrderedThemes(analysis)

	entries, err := m.lookup(ctx, themes)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("component", "recommend").Str("error_class", "catalog_unavailable").
			Strs("themes", themes).Msg("Catalog unavailable, using static recommendation")
		metrics.RecordCollaboratorFallback("catalog")
		entries = []models.CatalogEntry{staticFallback(themes)}
	}

	entries = dedupeBySlug(entries)
	if len(entries) > m.cfg.Limit {
		entries = entries[:m.cfg.Limit]
	}

	var tone string
	if analysis != nil {
		tone = analysis.EmotionalTone
	}
	recs := make([]models.Recommendation, 0, len(entries))
	for i := range entries {
		recs = append(recs, m.toRecommendation(ctx, &entries[i], tone))
	}
	return recs
}

func (m *Matcher) lookup(ctx context.Context, themes []string) ([]models.CatalogEntry, error) {
	if m.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", ErrCatalogUnavailable)
	}

	if len(themes) > 0 {
		matched, err := m.breaker.Execute(func() ([]models.CatalogEntry, error) {
			return m.catalog.FindActiveByThemes(ctx, themes)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: find by themes: %w", ErrCatalogUnavailable, err)
		}
		if len(dedupeBySlug(matched)) > 0 {
			return matched, nil
		}
	}

	m.logger.Debug().Strs("themes", themes).Msg("No theme match, using universal recommendations")
	universal, err := m.breaker.Execute(func() ([]models.CatalogEntry, error) {
		return m.catalog.FindUniversal(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: find universal: %w", ErrCatalogUnavailable, err)
	}
	if len(dedupeBySlug(universal)) == 0 {
		return nil, fmt.Errorf("%w: no universal entries", ErrCatalogUnavailable)
	}
	return universal, nil
}

func (m *Matcher) toRecommendation(ctx context.Context, e *models.CatalogEntry, tone string) models.Recommendation {
	return models.Recommendation{
		Title:       e.Title,
		Author:      e.Author,
		Description: e.Description,
		BookSlug:    e.BookSlug,
		Reasoning:   personalizeReasoning(e.Reasoning, tone),
		Link:        m.links.BuildLink(ctx, e.BookSlug, m.cfg.LinkContext),
		RawPrice:    e.Price,
	}
}

// OrderedThemes lists dominant themes, then secondary themes, keeping the first
// occurrence of each (case-insensitive).
func OrderedThemes(analysis *models.WeeklyAnalysis) []string {
	var themes []string
	seen := make(map[string]struct{})
	add := func(list []string) {
		for _, t := range list {
			t = strings.TrimSpace(t)
			key := strings.ToLower(t)
			if t == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			themes = append(themes, t)
		}
	}

	if analysis != nil {
		add(analysis.DominantThemes)
		add(analysis.SecondaryThemes)
	}
	return themes
}

// dedupeBySlug keeps the first entry per non-empty slug.
func dedupeBySlug(entries []models.CatalogEntry) []models.CatalogEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]models.CatalogEntry, 0, len(entries))
	for i := range entries {
		slug := entries[i].BookSlug
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, entries[i])
	}
	return out
}
