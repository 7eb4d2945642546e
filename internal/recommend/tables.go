// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package recommend

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tomtom215/quotebook/internal/models"
)

// toneClauses extends a recommendation's reasoning according to the week's
// emotional tone. Keys are lower-case; unknown tones add nothing.
var toneClauses = map[string]string{
	"вдохновлённый": "и поддержит ваше творческое настроение",
	"вдохновленный": "и поддержит ваше творческое настроение",
	"inspired":      "и поддержит ваше творческое настроение",
	"радостный":     "и продлит ощущение радости этой недели",
	"joyful":        "и продлит ощущение радости этой недели",
	"размышляющий":  "и даст пищу для глубоких размышлений",
	"задумчивый":    "и даст пищу для глубоких размышлений",
	"reflective":    "и даст пищу для глубоких размышлений",
	"тёплый":        "и сохранит тепло, которым наполнены ваши цитаты",
	"теплый":        "и сохранит тепло, которым наполнены ваши цитаты",
	"warm":          "и сохранит тепло, которым наполнены ваши цитаты",
	"грустный":      "и бережно поддержит вас в непростой момент",
	"меланхоличный": "и бережно поддержит вас в непростой момент",
	"sad":           "и бережно поддержит вас в непростой момент",
	"тревожный":     "и поможет обрести внутреннюю опору",
	"anxious":       "и поможет обрести внутреннюю опору",
	"спокойный":     "и сохранит ваше внутреннее равновесие",
	"calm":          "и сохранит ваше внутреннее равновесие",
}

const genericReasoning = "Эта книга созвучна темам вашей недели"

// personalizeReasoning appends the tone clause to the catalog reasoning.
func personalizeReasoning(reasoning, tone string) string {
	base := strings.TrimSpace(reasoning)
	if base == "" {
		base = genericReasoning
	}

	clause, ok := toneClauses[strings.ToLower(strings.TrimSpace(tone))]
	if !ok {
		return base
	}
	return strings.TrimRight(base, ".!… ") + " " + clause + "."
}

type fallbackBook struct {
	key   string
	stems []string
	entry models.CatalogEntry
}

// fallbackBooks is used when the catalog is unavailable, checked in order against
// the week's themes.
var fallbackBooks = []fallbackBook{
	{
		key:   "love",
		stems: []string{"любов", "love"},
		entry: models.CatalogEntry{
			BookSlug:    "art_of_loving",
			Title:       "Искусство любить",
			Author:      "Эрих Фромм",
			Description: "Разбор о том, почему любовь — это умение, которому можно научиться.",
			Reasoning:   "Книга поможет по-новому взглянуть на любовь к себе и к близким",
			Price:       "$8",
		},
	},
	{
		key:   "wisdom",
		stems: []string{"мудр", "wisdom"},
		entry: models.CatalogEntry{
			BookSlug:    "letters_to_young_poet",
			Title:       "Письма к молодому поэту",
			Author:      "Райнер Мария Рильке",
			Description: "Разбор писем о терпении, одиночестве и внутренней работе.",
			Reasoning:   "Письма Рильке отвечают на вопросы, которые звучат в ваших цитатах",
			Price:       "$8",
		},
	},
	{
		key:   "self-development",
		stems: []string{"саморазвит", "развит", "поиск себя", "рост", "growth"},
		entry: models.CatalogEntry{
			BookSlug:    "be_yourself",
			Title:       "Быть собой",
			Author:      "Анна Бусел",
			Description: "Курс о том, как слышать себя и выбирать своё.",
			Reasoning:   "Курс поддержит ваш путь к себе",
			Price:       "$12",
		},
	},
	{
		key:   "family",
		stems: []string{"семь", "семей", "family"},
		entry: models.CatalogEntry{
			BookSlug:    "family_and_how_to_survive_it",
			Title:       "Семья и как в ней уцелеть",
			Author:      "Робин Скиннер, Джон Клиз",
			Description: "Разбор о семейных ролях и о том, как мы их выбираем.",
			Reasoning:   "Книга поможет взглянуть на семейные отношения спокойнее",
			Price:       "$8",
		},
	},
	{
		key:   "happiness",
		stems: []string{"счаст", "радост", "happiness"},
		entry: models.CatalogEntry{
			BookSlug:    "flow",
			Title:       "Поток",
			Author:      "Михай Чиксентмихайи",
			Description: "Разбор о том, из чего на самом деле складывается счастье.",
			Reasoning:   "Книга о счастье как о состоянии, которое можно создавать",
			Price:       "$8",
		},
	},
}

// universalFallbackBook is recommended when no fallback theme matches.
var universalFallbackBook = models.CatalogEntry{
	BookSlug:    "little_prince",
	Title:       "Маленький принц",
	Author:      "Антуан де Сент-Экзюпери",
	Description: "Разбор сказки для взрослых о любви, дружбе и ответственности.",
	Reasoning:   "Вечная книга, в которой каждый находит что-то своё",
	Price:       "$6",
}

// staticFallback picks one book for the first theme with a fallback entry.
func staticFallback(themes []string) models.CatalogEntry {
	for _, theme := range themes {
		lower := strings.ToLower(theme)
		for _, fb := range fallbackBooks {
			for _, stem := range fb.stems {
				if hasWordPrefix(lower, stem) {
					return fb.entry
				}
			}
		}
	}
	return universalFallbackBook
}

// hasWordPrefix reports whether stem occurs in s at the start of a word, so
// "рост" matches "личностный рост" but not "простота".
func hasWordPrefix(s, stem string) bool {
	for offset := 0; ; {
		i := strings.Index(s[offset:], stem)
		if i < 0 {
			return false
		}
		at := offset + i
		if at == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(s[:at])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		offset = at + len(stem)
	}
}
