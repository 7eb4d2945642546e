// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package analysis

import (
	"strings"
	"testing"

	"github.com/tomtom215/quotebook/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	in := PromptInput{
		Quotes: []models.Quote{
			{Text: "Жизнь — это то, что происходит, пока мы строим планы", Author: "Джон Леннон"},
			{Text: "Без автора"},
		},
		Profile: models.UserProfile{
			Name:        "Анна",
			TestResults: map[string]string{"b_goal": "найти себя", "a_mood": "спокойное"},
			Preferences: models.Preferences{MainThemes: []string{"психология", "любовь"}},
		},
		Week:           models.WeekRange{ISOWeek: 10, ISOYear: 2025},
		PreviousReport: "Прошлая неделя была о поиске опоры.",
	}

	prompt := BuildPrompt(in)

	for _, want := range []string{
		"Имя: Анна",
		"Неделя: 10, 2025 год",
		"1. \"Жизнь — это то, что происходит, пока мы строим планы\" (Джон Леннон)",
		"2. \"Без автора\"\n",
		"Интересующие темы: психология, любовь",
		"Прошлая неделя была о поиске опоры.",
		`"dominantThemes"`,
		`"personalGrowth"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if strings.Index(prompt, "a_mood") > strings.Index(prompt, "b_goal") {
		t.Error("test results are not sorted by key")
	}
}

func TestBuildPrompt_NoPreviousReport(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(PromptInput{Quotes: []models.Quote{{Text: "x"}}})
	if strings.Contains(prompt, "прошлой недели") {
		t.Error("prompt mentions previous week without a previous report")
	}
	if !strings.Contains(prompt, "Имя: Читатель") {
		t.Error("prompt missing default name")
	}
}
