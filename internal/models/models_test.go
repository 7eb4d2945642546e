// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestCanonicalCategoryKeys(t *testing.T) {
	t.Parallel()

	keys := CanonicalCategoryKeys()
	if len(keys) != 14 {
		t.Fatalf("len(CanonicalCategoryKeys()) = %d, want 14", len(keys))
	}

	keys[0] = "mutated"
	if CanonicalCategoryKeys()[0] == "mutated" {
		t.Error("CanonicalCategoryKeys returned shared backing array")
	}

	if !IsCanonicalCategory("любовь") {
		t.Error("IsCanonicalCategory(любовь) = false, want true")
	}
	if IsCanonicalCategory("любовь к себе") {
		t.Error("IsCanonicalCategory(любовь к себе) = true, want false")
	}
}

func TestPriceJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price Price
		want  string
	}{
		{"known", Price{Amount: 60, Known: true}, `60`},
		{"fractional", Price{Amount: 12.5, Known: true}, `12.5`},
		{"unknown", UnknownPrice, `"unknown"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(tt.price)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var back Price
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back != tt.price {
				t.Errorf("Unmarshal() = %+v, want %+v", back, tt.price)
			}
		})
	}
}

func TestPromoCodeUsability(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	code := PromoCode{Code: "READER20", Active: true, ValidUntil: now.Add(time.Hour), Contexts: []string{"weekly_report"}}

	if !code.IsUsable(now) {
		t.Error("IsUsable() = false before expiry, want true")
	}
	if code.IsUsable(now.Add(2 * time.Hour)) {
		t.Error("IsUsable() = true after expiry, want false")
	}
	if !code.AppliesTo("weekly_report") || code.AppliesTo("onboarding") {
		t.Error("AppliesTo() does not respect contexts")
	}
}

func TestWeekRangeContains(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	w := WeekRange{ISOWeek: 10, ISOYear: 2025, Start: start, End: start.AddDate(0, 0, 7).Add(-time.Millisecond)}

	if !w.Contains(start) || !w.Contains(w.End) {
		t.Error("Contains() excludes boundary instants")
	}
	if w.Contains(start.AddDate(0, 0, 7)) {
		t.Error("Contains() includes next Monday")
	}
}

func TestUTMTemplateGenerateLink(t *testing.T) {
	t.Parallel()

	tmpl := UTMTemplate{
		ID:       "weekly",
		Context:  "weekly_report",
		BaseURL:  "https://example.com/books/{book_slug}?ref=bot",
		Source:   "telegram_bot",
		Medium:   "{context}",
		Campaign: "reader_recommendations",
		Content:  "{book_slug}",
	}

	got, err := tmpl.GenerateLink(map[string]string{"book_slug": "art-of-loving", "context": "weekly_report"})
	if err != nil {
		t.Fatalf("GenerateLink() error = %v", err)
	}
	want := "https://example.com/books/art-of-loving?ref=bot&utm_campaign=reader_recommendations&utm_content=art-of-loving&utm_medium=weekly_report&utm_source=telegram_bot"
	if got != want {
		t.Errorf("GenerateLink() = %s, want %s", got, want)
	}

	bad := UTMTemplate{ID: "bad", BaseURL: "/relative"}
	if _, err := bad.GenerateLink(nil); err == nil {
		t.Error("GenerateLink() with relative base succeeded")
	}
}
