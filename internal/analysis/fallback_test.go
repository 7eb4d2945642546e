// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package analysis

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/quotebook/internal/models"
)

func quotes(texts ...string) []models.Quote {
	out := make([]models.Quote, len(texts))
	for i, text := range texts {
		out[i] = models.Quote{ID: string(rune('a' + i)), UserID: "u1", Text: text}
	}
	return out
}

func TestFallback_ThemesByFrequency(t *testing.T) {
	t.Parallel()

	qs := quotes(
		"Счастье любит тишину",
		"Счастье не в деньгах, а в радости",
		"Любовь — это когда сердце открыто",
		"Мудрость приходит с годами",
	)

	got := Fallback(qs, models.UserProfile{Name: "Мария"})

	want := []string{ThemeHappiness, ThemeLove, ThemeWisdom}
	if !reflect.DeepEqual(got.DominantThemes, want) {
		t.Errorf("DominantThemes = %v, want %v", got.DominantThemes, want)
	}
	if got.EmotionalTone != "радостный" {
		t.Errorf("EmotionalTone = %q, want радостный", got.EmotionalTone)
	}
	if !got.IsComplete() {
		t.Errorf("Fallback() incomplete: %+v", got)
	}
	if !strings.HasPrefix(got.Summary, "Мария, на этой неделе вы сохранили 4 цитаты.") {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Source != models.AnalysisSourceFallback {
		t.Errorf("Source = %q, want fallback", got.Source)
	}
}

func TestFallback_NoMatchesAndNoQuotes(t *testing.T) {
	t.Parallel()

	got := Fallback(quotes("Abc def"), models.UserProfile{})
	if !reflect.DeepEqual(got.DominantThemes, []string{ThemeReflections}) {
		t.Errorf("DominantThemes = %v, want [%s]", got.DominantThemes, ThemeReflections)
	}
	if !strings.HasPrefix(got.Summary, "На этой неделе вы сохранили 1 цитату.") {
		t.Errorf("Summary = %q", got.Summary)
	}

	empty := Fallback(nil, models.UserProfile{})
	if !empty.IsComplete() {
		t.Errorf("Fallback(nil) incomplete: %+v", empty)
	}
}

func TestFallback_CountsThemeOncePerQuote(t *testing.T) {
	t.Parallel()

	qs := quotes(
		"любовь, любовь и снова любовь",
		"счастье",
		"радость и счастье",
	)
	got := Fallback(qs, models.UserProfile{})
	if got.DominantThemes[0] != ThemeHappiness {
		t.Errorf("DominantThemes[0] = %q, want %q", got.DominantThemes[0], ThemeHappiness)
	}
}

func TestPluralRu(t *testing.T) {
	t.Parallel()

	tests := map[int]string{1: "цитату", 2: "цитаты", 5: "цитат", 11: "цитат", 21: "цитату", 24: "цитаты", 112: "цитат"}
	for n, want := range tests {
		if got := pluralRu(n, "цитату", "цитаты", "цитат"); got != want {
			t.Errorf("pluralRu(%d) = %q, want %q", n, got, want)
		}
	}
}
