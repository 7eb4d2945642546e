// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package report

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/quotebook/internal/analysis"
	"github.com/tomtom215/quotebook/internal/calendar"
	"github.com/tomtom215/quotebook/internal/models"
	"github.com/tomtom215/quotebook/internal/promo"
	"github.com/tomtom215/quotebook/internal/recommend"
)

// Wednesday of ISO week 2 of 2025; the previous complete week is 2025-W01.
var testNow = time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC)

type mockAnalyzer struct {
	mu     sync.Mutex
	result analysis.Result
	err    error
	inputs []analysis.PromptInput
}

func (m *mockAnalyzer) Analyze(_ context.Context, in analysis.PromptInput) (analysis.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, in)
	return m.result, m.err
}

type mockCorpus struct {
	themes []string
	err    error
}

func (m *mockCorpus) TargetThemes(context.Context) ([]string, error) {
	return m.themes, m.err
}

type mockRecommender struct {
	recs     []models.Recommendation
	analysis *models.WeeklyAnalysis
}

func (m *mockRecommender) Recommend(_ context.Context, a *models.WeeklyAnalysis, _ *models.UserProfile) []models.Recommendation {
	m.analysis = a
	out := make([]models.Recommendation, len(m.recs))
	copy(out, m.recs)
	return out
}

type mockPromo struct{}

func (mockPromo) Assign(context.Context, string) models.PromoCode {
	return models.PromoCode{Code: "TEST10", Discount: 10, Active: true}
}

type mockPrior struct {
	report    *models.WeeklyReport
	err       error
	requested [2]int
}

func (m *mockPrior) FindByUserWeek(_ context.Context, _ string, week, year int) (*models.WeeklyReport, error) {
	m.requested = [2]int{week, year}
	return m.report, m.err
}

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, string) (string, error) {
	return "", errors.New("provider down")
}

func testCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.New(calendar.DefaultOffsetMinutes, calendar.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("calendar.New() error = %v", err)
	}
	return cal
}

func testQuotes() []models.Quote {
	at := func(d, h int) time.Time { return time.Date(2025, time.January, d, h, 0, 0, 0, time.UTC) }
	return []models.Quote{
		{ID: "q1", Text: "Любовь и тишина лечат", Author: "Фромм", CreatedAt: at(1, 9)},
		{ID: "q2", Text: "В тишине рождается свобода", Author: "Фромм", CreatedAt: at(1, 15)},
		{ID: "q3", Text: "Свобода требует ответственности", Author: "Рильке", CreatedAt: at(2, 10)},
		{ID: "q4", Text: "Счастье в мелочах", CreatedAt: at(3, 11)},
		{ID: "q5", Text: "Любовь это выбор", CreatedAt: at(3, 12)},
	}
}

func newTestAssembler(t *testing.T, deps Deps) *Assembler {
	t.Helper()
	if deps.Calendar == nil {
		deps.Calendar = testCalendar(t)
	}
	if deps.Recommender == nil {
		deps.Recommender = &mockRecommender{}
	}
	if deps.Promo == nil {
		deps.Promo = mockPromo{}
	}
	a, err := NewAssembler(deps, DefaultConfig(),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return "report-1" }),
	)
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}
	return a
}

func TestGenerate_AIAnalysis(t *testing.T) {
	t.Parallel()

	ai := &mockAnalyzer{result: analysis.Result{
		Analysis: models.WeeklyAnalysis{Summary: "Неделя о свободе", DominantThemes: []string{"Свобода"}, Insights: "Вы ищете опору", EmotionalTone: "спокойный"},
		Tier:     analysis.TierStrictJSON,
	}}
	rec := &mockRecommender{recs: []models.Recommendation{
		{BookSlug: "a", RawPrice: "1,200 BYN"},
		{BookSlug: "b", RawPrice: "по запросу"},
	}}
	a := newTestAssembler(t, Deps{
		Analyzer:    ai,
		Corpus:      &mockCorpus{themes: []string{"тишина", "свобода", "ЛЮБОВЬ", "мечта"}},
		Recommender: rec,
	})

	report, err := a.Generate(context.Background(), "user-1", testQuotes(), models.UserProfile{Name: "Анна"}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if report.ID != "report-1" || report.UserID != "user-1" || !report.GeneratedAt.Equal(testNow) {
		t.Errorf("identity = %q/%q/%v", report.ID, report.UserID, report.GeneratedAt)
	}
	if report.WeekNumber != 1 || report.Year != 2025 {
		t.Errorf("week = %d/%d, want 1/2025", report.WeekNumber, report.Year)
	}
	if report.Analysis.Source != models.AnalysisSourceAI || report.Analysis.Summary != "Неделя о свободе" {
		t.Errorf("analysis = %+v", report.Analysis)
	}
	// "ЛЮБОВЬ" is a canonical category and "мечта" never appears.
	if want := []string{"свобода", "тишина"}; !reflect.DeepEqual(report.Analysis.SecondaryThemes, want) {
		t.Errorf("SecondaryThemes = %v, want %v", report.Analysis.SecondaryThemes, want)
	}
	if rec.analysis == nil || len(rec.analysis.SecondaryThemes) != 2 {
		t.Error("recommender did not receive mined secondary themes")
	}

	if got := report.Recommendations[0].Price; got != (models.Price{Amount: 1200, Known: true}) {
		t.Errorf("price[0] = %+v", got)
	}
	if got := report.Recommendations[1].Price; got != models.UnknownPrice {
		t.Errorf("price[1] = %+v, want unknown", got)
	}
	if report.PromoCode.Code != "TEST10" {
		t.Errorf("PromoCode = %+v", report.PromoCode)
	}
	wantMetrics := models.ReportMetrics{Quotes: 5, UniqueAuthors: 2, ActiveDays: 3, ProgressQuotesPct: 17, ProgressDaysPct: 43}
	if report.Metrics != wantMetrics {
		t.Errorf("Metrics = %+v, want %+v", report.Metrics, wantMetrics)
	}
	if len(report.QuoteIDs) != 5 {
		t.Errorf("QuoteIDs = %v", report.QuoteIDs)
	}
	if len(ai.inputs) != 1 || ai.inputs[0].Week.ISOWeek != 1 || ai.inputs[0].PreviousReport != "" {
		t.Errorf("analyzer input = %+v", ai.inputs)
	}
}

func TestGenerate_EndToEndFallback(t *testing.T) {
	t.Parallel()

	analyzerCfg := analysis.DefaultConfig()
	analyzerCfg.Timeout = time.Second
	analyzerCfg.RequestsPerMinute = 0

	matcher, err := recommend.NewMatcher(nil, promo.NewLinkGenerator(nil, ""), recommend.DefaultConfig())
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}

	a := newTestAssembler(t, Deps{
		Analyzer:    analysis.NewAnalyzer(failingCompleter{}, analyzerCfg),
		Corpus:      &mockCorpus{err: errors.New("catalog down")},
		Recommender: matcher,
		Promo:       promo.NewAssigner(nil, promo.DefaultConfig(), promo.WithClock(func() time.Time { return testNow })),
	})

	report, err := a.Generate(context.Background(), "user-1", testQuotes(), models.UserProfile{}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if report.Analysis.Summary == "" || report.Analysis.Insights == "" {
		t.Errorf("fallback analysis incomplete: %+v", report.Analysis)
	}
	if report.Analysis.Source != models.AnalysisSourceFallback {
		t.Errorf("Source = %q, want fallback", report.Analysis.Source)
	}
	if len(report.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want exactly 1", len(report.Recommendations))
	}
	if report.Recommendations[0].Link == "" || !report.Recommendations[0].Price.Known {
		t.Errorf("fallback recommendation = %+v", report.Recommendations[0])
	}
	if report.PromoCode.Discount != 20 {
		t.Errorf("PromoCode.Discount = %d, want 20", report.PromoCode.Discount)
	}
	if !report.PromoCode.ValidUntil.Equal(testNow.Add(72 * time.Hour)) {
		t.Errorf("PromoCode.ValidUntil = %v", report.PromoCode.ValidUntil)
	}
	if len(report.Analysis.SecondaryThemes) != 0 {
		t.Errorf("SecondaryThemes = %v, want none", report.Analysis.SecondaryThemes)
	}
}

func TestGenerate_MalformedAIResponseFallsBack(t *testing.T) {
	t.Parallel()

	ai := &mockAnalyzer{result: analysis.Result{
		Analysis: models.WeeklyAnalysis{Summary: "Только резюме"},
		Tier:     analysis.TierSalvagedJSON,
	}}
	a := newTestAssembler(t, Deps{Analyzer: ai})

	report, err := a.Generate(context.Background(), "user-1", testQuotes(), models.UserProfile{}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if report.Analysis.Source != models.AnalysisSourceFallback || report.Analysis.Insights == "" {
		t.Errorf("analysis = %+v, want complete fallback", report.Analysis)
	}
}

func TestGenerate_WeekMeta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		meta     *models.WeekMeta
		wantWeek int
		wantYear int
		wantErr  bool
	}{
		{"explicit week", &models.WeekMeta{ISOWeek: 53, ISOYear: 2020}, 53, 2020, false},
		{"computed week", nil, 1, 2025, false},
		{"missing week", &models.WeekMeta{ISOYear: 2025}, 0, 0, true},
		{"missing year", &models.WeekMeta{ISOWeek: 10}, 0, 0, true},
		{"week the year lacks", &models.WeekMeta{ISOWeek: 53, ISOYear: 2025}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newTestAssembler(t, Deps{})
			report, err := a.Generate(context.Background(), "user-1", nil, models.UserProfile{}, tt.meta)

			if tt.wantErr {
				if !errors.Is(err, ErrMissingWeekMetadata) {
					t.Fatalf("Generate() error = %v, want ErrMissingWeekMetadata", err)
				}
				if report != nil {
					t.Error("report returned with error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if report.WeekNumber != tt.wantWeek || report.Year != tt.wantYear {
				t.Errorf("week = %d/%d, want %d/%d", report.WeekNumber, report.Year, tt.wantWeek, tt.wantYear)
			}
			if report.WeekStart.Weekday() != time.Monday {
				t.Errorf("WeekStart %v is not a Monday", report.WeekStart)
			}
		})
	}
}

func TestGenerate_PriorReportContext(t *testing.T) {
	t.Parallel()

	ai := &mockAnalyzer{err: errors.New("unused")}
	prior := &mockPrior{report: &models.WeeklyReport{Analysis: models.WeeklyAnalysis{Summary: "Прошлая неделя", Insights: "Прошлый вывод"}}}
	a := newTestAssembler(t, Deps{Analyzer: ai, Prior: prior})

	if _, err := a.Generate(context.Background(), "user-1", testQuotes(), models.UserProfile{}, &models.WeekMeta{ISOWeek: 1, ISOYear: 2025}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if prior.requested != [2]int{52, 2024} {
		t.Errorf("prior lookup for %v, want week 52 of 2024", prior.requested)
	}
	if want := "Прошлая неделя\nПрошлый вывод"; ai.inputs[0].PreviousReport != want {
		t.Errorf("PreviousReport = %q, want %q", ai.inputs[0].PreviousReport, want)
	}
}

func TestGenerate_PriorReportAbsentIsNotFatal(t *testing.T) {
	t.Parallel()

	ai := &mockAnalyzer{err: errors.New("unused")}
	a := newTestAssembler(t, Deps{Analyzer: ai, Prior: &mockPrior{err: errors.New("not found")}})

	if _, err := a.Generate(context.Background(), "user-1", testQuotes(), models.UserProfile{}, nil); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if ai.inputs[0].PreviousReport != "" {
		t.Errorf("PreviousReport = %q, want empty", ai.inputs[0].PreviousReport)
	}
}

func TestNewAssembler_Validation(t *testing.T) {
	t.Parallel()

	cal := testCalendar(t)
	tests := []struct {
		name string
		deps Deps
		cfg  Config
	}{
		{"no calendar", Deps{Recommender: &mockRecommender{}, Promo: mockPromo{}}, DefaultConfig()},
		{"no recommender", Deps{Calendar: cal, Promo: mockPromo{}}, DefaultConfig()},
		{"no promo", Deps{Calendar: cal, Recommender: &mockRecommender{}}, DefaultConfig()},
		{"zero targets", Deps{Calendar: cal, Recommender: &mockRecommender{}, Promo: mockPromo{}}, Config{}},
	}

	for _, tt := range tests {
		if _, err := NewAssembler(tt.deps, tt.cfg); err == nil {
			t.Errorf("%s: NewAssembler() succeeded", tt.name)
		}
	}
}
