// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package report assembles weekly reports.
//
// Generation runs as a fixed sequence of stages:
//
//	week resolved → analysis obtained → secondary themes mined →
//	recommendations matched → promo attached → metrics computed → report assembled
//
// Every collaborator failure after week resolution is absorbed: the AI falls back
// to keyword analysis, the catalog and promo store fall back to static tables,
// and unparsable prices become "unknown". Only ErrMissingWeekMetadata is returned
// to the caller, because a report without a week cannot be dated.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quotebook/internal/analysis"
	"github.com/tomtom215/quotebook/internal/calendar"
	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/metrics"
	"github.com/tomtom215/quotebook/internal/models"
	"github.com/tomtom215/quotebook/internal/themes"
)

// ErrMissingWeekMetadata is returned when the report week cannot be determined.
var ErrMissingWeekMetadata = errors.New("report: missing week metadata")

// Analyzer produces the AI analysis of a week.
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.PromptInput) (analysis.Result, error)
}

// ThemeCorpus supplies catalog target themes for secondary theme mining.
type ThemeCorpus interface {
	TargetThemes(ctx context.Context) ([]string, error)
}

// Recommender matches themes to books. It never fails.
type Recommender interface {
	Recommend(ctx context.Context, analysis *models.WeeklyAnalysis, profile *models.UserProfile) []models.Recommendation
}

// PromoAssigner attaches a promo code. It never fails.
type PromoAssigner interface {
	Assign(ctx context.Context, promoContext string) models.PromoCode
}

// PriorReports looks up an earlier report for comparison context.
type PriorReports interface {
	FindByUserWeek(ctx context.Context, userID string, week, year int) (*models.WeeklyReport, error)
}

// Config holds assembler settings.
type Config struct {
	TargetQuotes int
	TargetDays   int
	PromoContext string
}

// DefaultConfig returns 30 quotes and 7 days as weekly targets.
func DefaultConfig() Config {
	return Config{
		TargetQuotes: 30,
		TargetDays:   7,
		PromoContext: "weekly_report",
	}
}

// Deps are the assembler's collaborators. Calendar, Recommender and Promo are
// required; the rest may be nil.
type Deps struct {
	Calendar    *calendar.Calendar
	Analyzer    Analyzer
	Corpus      ThemeCorpus
	Recommender Recommender
	Promo       PromoAssigner
	Prior       PriorReports
}

// Assembler runs the report pipeline for one user at a time. It holds no
// per-run state and is safe for concurrent use.
type Assembler struct {
	deps   Deps
	cfg    Config
	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithIDGenerator overrides report ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(a *Assembler) { a.newID = newID }
}

// NewAssembler creates an Assembler.
func NewAssembler(deps Deps, cfg Config, opts ...Option) (*Assembler, error) {
	if deps.Calendar == nil {
		return nil, errors.New("report: calendar is required")
	}
	if deps.Recommender == nil {
		return nil, errors.New("report: recommender is required")
	}
	if deps.Promo == nil {
		return nil, errors.New("report: promo assigner is required")
	}
	if cfg.TargetQuotes <= 0 || cfg.TargetDays <= 0 {
		return nil, fmt.Errorf("report: targets must be positive, got quotes=%d days=%d", cfg.TargetQuotes, cfg.TargetDays)
	}
	if cfg.PromoContext == "" {
		cfg.PromoContext = DefaultConfig().PromoContext
	}

	a := &Assembler{
		deps:   deps,
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logging.WithComponent("report"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Generate builds the weekly report for userID from the quotes of the report week.
// When weekMeta is nil the previous complete week in business time is used.
func (a *Assembler) Generate(ctx context.Context, userID string, quotes []models.Quote, profile models.UserProfile, weekMeta *models.WeekMeta) (*models.WeeklyReport, error) {
	start := time.Now()
	ctx = logging.ContextWithUserID(ctx, userID)
	log := logging.Ctx(ctx)

	week, err := a.resolveWeek(weekMeta)
	if err != nil {
		metrics.RecordReport("missing_week", time.Since(start))
		return nil, err
	}

	weekAnalysis := a.analyze(ctx, userID, quotes, profile, week)

	weekAnalysis.SecondaryThemes = a.mineThemes(ctx, quotes)
	metrics.SecondaryThemesMined.Observe(float64(len(weekAnalysis.SecondaryThemes)))

	recs := a.deps.Recommender.Recommend(ctx, &weekAnalysis, &profile)
	for i := range recs {
		a.normalizePrice(ctx, &recs[i])
	}

	promoCode := a.deps.Promo.Assign(ctx, a.cfg.PromoContext)

	quoteIDs := make([]string, 0, len(quotes))
	for i := range quotes {
		if quotes[i].ID != "" {
			quoteIDs = append(quoteIDs, quotes[i].ID)
		}
	}

	report := &models.WeeklyReport{
		ID:              a.newID(),
		UserID:          userID,
		WeekNumber:      week.ISOWeek,
		Year:            week.ISOYear,
		WeekStart:       week.Start,
		WeekEnd:         week.End,
		Analysis:        weekAnalysis,
		Recommendations: recs,
		PromoCode:       promoCode,
		Metrics:         ComputeMetrics(quotes, a.deps.Calendar.Location(), a.cfg.TargetQuotes, a.cfg.TargetDays),
		QuoteIDs:        quoteIDs,
		GeneratedAt:     a.now(),
	}

	metrics.RecordReport("success", time.Since(start))
	log.Info().
		Str("component", "report").
		Str("report_id", report.ID).
		Int("iso_week", report.WeekNumber).
		Int("iso_year", report.Year).
		Int("quotes", report.Metrics.Quotes).
		Str("analysis_source", string(weekAnalysis.Source)).
		Int("recommendations", len(recs)).
		Msg("Weekly report assembled")

	return report, nil
}

func (a *Assembler) resolveWeek(meta *models.WeekMeta) (models.WeekRange, error) {
	if meta == nil {
		return a.deps.Calendar.PreviousCompleteWeek(), nil
	}
	if meta.ISOWeek == 0 || meta.ISOYear == 0 {
		return models.WeekRange{}, fmt.Errorf("%w: iso_week=%d iso_year=%d", ErrMissingWeekMetadata, meta.ISOWeek, meta.ISOYear)
	}
	if err := calendar.ValidateWeek(meta.ISOWeek, meta.ISOYear); err != nil {
		return models.WeekRange{}, fmt.Errorf("%w: %w", ErrMissingWeekMetadata, err)
	}
	return a.deps.Calendar.WeekRange(meta.ISOWeek, meta.ISOYear), nil
}

// analyze returns the AI analysis, or the keyword fallback when the provider
// fails or its answer lacks a summary or insights.
func (a *Assembler) analyze(ctx context.Context, userID string, quotes []models.Quote, profile models.UserProfile, week models.WeekRange) models.WeeklyAnalysis {
	log := logging.Ctx(ctx)

	if a.deps.Analyzer != nil {
		in := analysis.PromptInput{
			Quotes:         quotes,
			Profile:        profile,
			Week:           week,
			PreviousReport: a.previousReport(ctx, userID, week),
		}

		res, err := a.deps.Analyzer.Analyze(ctx, in)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("component", "report").Str("error_class", "ai_unavailable").
				Msg("AI analysis unavailable, using fallback analysis")
			metrics.RecordAnalysisFallback("ai_unavailable")
		case !res.Analysis.IsComplete():
			log.Warn().Err(analysis.ErrMalformedResponse).Str("component", "report").Str("error_class", "malformed_ai_response").
				Str("tier", string(res.Tier)).Msg("AI analysis incomplete, using fallback analysis")
			metrics.RecordAnalysisFallback("malformed_response")
		default:
			res.Analysis.Source = models.AnalysisSourceAI
			return res.Analysis
		}
	} else {
		metrics.RecordAnalysisFallback("no_provider")
	}

	return analysis.Fallback(quotes, profile)
}

// previousReport renders the prior week's summary and insights, or "" when no
// report exists.
func (a *Assembler) previousReport(ctx context.Context, userID string, week models.WeekRange) string {
	if a.deps.Prior == nil {
		return ""
	}

	prevWeek, prevYear := calendar.PreviousWeek(week.ISOWeek, week.ISOYear)
	prior, err := a.deps.Prior.FindByUserWeek(ctx, userID, prevWeek, prevYear)
	if err != nil || prior == nil {
		a.logger.Debug().Err(err).Int("iso_week", prevWeek).Int("iso_year", prevYear).Msg("No prior report for comparison")
		return ""
	}

	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(prior.Analysis.Summary); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(prior.Analysis.Insights); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}

func (a *Assembler) mineThemes(ctx context.Context, quotes []models.Quote) []string {
	if a.deps.Corpus == nil || len(quotes) == 0 {
		return []string{}
	}

	corpus, err := a.deps.Corpus.TargetThemes(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("component", "report").Str("error_class", "catalog_unavailable").
			Msg("Theme corpus unavailable, skipping secondary themes")
		metrics.RecordCollaboratorFallback("theme_corpus")
		return []string{}
	}

	texts := make([]string, len(quotes))
	for i := range quotes {
		texts[i] = quotes[i].Text
	}
	return themes.Mine(texts, corpus, models.CanonicalCategoryKeys())
}

func (a *Assembler) normalizePrice(ctx context.Context, rec *models.Recommendation) {
	price, err := NormalizePrice(rec.RawPrice)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("component", "report").Str("error_class", "invalid_price").
			Str("book_slug", rec.BookSlug).Msg("Recommendation price normalized to unknown")
		metrics.InvalidPrices.Inc()
	}
	rec.Price = price
}
