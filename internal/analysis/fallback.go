// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/quotebook/internal/cache"
	"github.com/tomtom215/quotebook/internal/models"
)

// Fallback theme names. The recommendation fallback table is keyed on the same words.
const (
	ThemeLove        = "Любовь"
	ThemeWisdom      = "Мудрость"
	ThemeGrowth      = "Саморазвитие"
	ThemeFamily      = "Семья"
	ThemeHappiness   = "Счастье"
	ThemeMeaning     = "Смысл жизни"
	ThemeTime        = "Время"
	ThemeReflections = "Размышления"
)

type themeKeywords struct {
	theme    string
	tone     string
	keywords []string
}

// fallbackThemes maps word stems found in quote texts to themes, in priority order.
var fallbackThemes = []themeKeywords{
	{theme: ThemeLove, tone: "тёплый", keywords: []string{"любов", "люблю", "любим", "сердц", "нежност"}},
	{theme: ThemeWisdom, tone: "размышляющий", keywords: []string{"мудр", "знани", "истин", "понима"}},
	{theme: ThemeGrowth, tone: "вдохновлённый", keywords: []string{"развит", "расти", "вырос", "цель", "мечт", "измен"}},
	{theme: ThemeFamily, tone: "тёплый", keywords: []string{"семья", "семьи", "семье", "семью", "мама", "отец", "дети", "детств", "родител"}},
	{theme: ThemeHappiness, tone: "радостный", keywords: []string{"счаст", "радост", "радов", "улыб"}},
	{theme: ThemeMeaning, tone: "размышляющий", keywords: []string{"смысл", "жизн", "судьб"}},
	{theme: ThemeTime, tone: "спокойный", keywords: []string{"время", "времен", "мгновен", "прошл", "будущ"}},
}

const maxFallbackThemes = 3

// fallbackMatcher is built once; the keyword table is immutable.
var fallbackMatcher = func() *cache.AhoCorasick {
	ac := cache.NewAhoCorasick()
	for i, t := range fallbackThemes {
		for _, kw := range t.keywords {
			ac.AddPattern(kw, i)
		}
	}
	ac.Build()
	return ac
}()

// Fallback builds a deterministic analysis from keyword matches over the quotes.
// Summary and Insights are always non-empty.
func Fallback(quotes []models.Quote, profile models.UserProfile) models.WeeklyAnalysis {
	themes := fallbackDominantThemes(quotes)
	tone := "размышляющий"
	for _, t := range fallbackThemes {
		if t.theme == themes[0] {
			tone = t.tone
			break
		}
	}

	return models.WeeklyAnalysis{
		Summary:        fallbackSummary(len(quotes), themes, profile.Name),
		DominantThemes: themes,
		EmotionalTone:  tone,
		Insights:       fallbackInsights(len(quotes), themes),
		PersonalGrowth: "Продолжайте сохранять цитаты каждый день: регулярность помогает увидеть, как меняются ваши интересы и что для вас по-настоящему важно.",
		Source:         models.AnalysisSourceFallback,
	}
}

func fallbackDominantThemes(quotes []models.Quote) []string {
	counts := make([]int, len(fallbackThemes))
	for _, q := range quotes {
		seen := make(map[int]bool)
		for _, m := range fallbackMatcher.Search(q.Text) {
			idx, _ := m.Data.(int)
			if !seen[idx] {
				seen[idx] = true
				counts[idx]++
			}
		}
	}

	order := make([]int, 0, len(fallbackThemes))
	for i, c := range counts {
		if c > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	if len(order) == 0 {
		return []string{ThemeReflections}
	}
	if len(order) > maxFallbackThemes {
		order = order[:maxFallbackThemes]
	}

	themes := make([]string, len(order))
	for i, idx := range order {
		themes[i] = fallbackThemes[idx].theme
	}
	return themes
}

func fallbackSummary(n int, themes []string, name string) string {
	var sb strings.Builder
	if name = strings.TrimSpace(name); name != "" {
		sb.WriteString(name)
		sb.WriteString(", н")
	} else {
		sb.WriteString("Н")
	}

	if n == 0 {
		sb.WriteString("а этой неделе вы не сохранили ни одной цитаты. Даже одна строчка, которая отозвалась, может стать началом нового размышления.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "а этой неделе вы сохранили %d %s. В них звучат темы: %s.",
		n, pluralRu(n, "цитату", "цитаты", "цитат"), strings.ToLower(strings.Join(themes, ", ")))
	return sb.String()
}

func fallbackInsights(n int, themes []string) string {
	if n == 0 {
		return "Попробуйте на следующей неделе записывать хотя бы одну мысль в день: так легче заметить, что вас волнует."
	}
	return fmt.Sprintf("Ваш выбор цитат показывает, что сейчас для вас особенно значимы темы «%s». "+
		"Обратите внимание, какие мысли откликаются сильнее всего, и попробуйте записать, почему именно они.",
		strings.ToLower(strings.Join(themes, "», «")))
}

// pluralRu picks the Russian plural form for n.
func pluralRu(n int, one, few, many string) string {
	n %= 100
	if n >= 11 && n <= 14 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	default:
		return many
	}
}
