// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package promo

import (
	"context"
	"errors"
	"net/url"

	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/metrics"
	"github.com/tomtom215/quotebook/internal/models"
)

// DefaultLinkBaseURL is the landing page used when no template is available.
const DefaultLinkBaseURL = "https://anna-busel.com/books"

// TemplateStore is the UTM template read interface.
type TemplateStore interface {
	TemplatesForContext(ctx context.Context, linkContext string) ([]models.UTMTemplate, error)
}

// LinkGenerator builds tracked outbound links.
type LinkGenerator struct {
	store   TemplateStore
	baseURL string
}

// NewLinkGenerator creates a LinkGenerator. store may be nil.
func NewLinkGenerator(store TemplateStore, baseURL string) *LinkGenerator {
	if baseURL == "" {
		baseURL = DefaultLinkBaseURL
	}
	return &LinkGenerator{store: store, baseURL: baseURL}
}

// BuildLink returns a tracked URL for bookSlug in linkContext. It never fails.
func (g *LinkGenerator) BuildLink(ctx context.Context, bookSlug, linkContext string) string {
	if g.store != nil {
		link, err := g.fromTemplate(ctx, bookSlug, linkContext)
		if err == nil {
			return link
		}
		logging.Ctx(ctx).Warn().Err(err).Str("component", "links").Str("book_slug", bookSlug).
			Str("error_class", "catalog_unavailable").Msg("UTM template unavailable, using default link")
	}

	metrics.RecordCollaboratorFallback("utm_template")
	return g.defaultLink(bookSlug, linkContext)
}

var errNoTemplate = errors.New("no active utm template")

func (g *LinkGenerator) fromTemplate(ctx context.Context, bookSlug, linkContext string) (string, error) {
	templates, err := g.store.TemplatesForContext(ctx, linkContext)
	if err != nil {
		return "", err
	}

	vars := map[string]string{
		"book_slug": bookSlug,
		"context":   linkContext,
		"user_id":   logging.UserIDFromContext(ctx),
	}
	var lastErr error = errNoTemplate
	for i := range templates {
		if !templates[i].Active {
			continue
		}
		link, err := templates[i].GenerateLink(vars)
		if err == nil {
			return link, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// defaultLink decorates the base URL with utm parameters derived from the slug.
func (g *LinkGenerator) defaultLink(bookSlug, linkContext string) string {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		u = &url.URL{Scheme: "https", Host: "anna-busel.com", Path: "/books"}
	}

	if linkContext == "" {
		linkContext = ContextWeeklyReport
	}
	q := u.Query()
	q.Set("utm_source", "telegram_bot")
	q.Set("utm_medium", linkContext)
	q.Set("utm_campaign", "reader_recommendations")
	q.Set("utm_content", bookSlug)
	u.RawQuery = q.Encode()
	return u.String()
}
