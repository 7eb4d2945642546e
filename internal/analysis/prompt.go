// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/quotebook/internal/models"
)

// PromptInput is everything the analysis prompt is built from.
type PromptInput struct {
	Quotes         []models.Quote
	Profile        models.UserProfile
	Week           models.WeekRange
	PreviousReport string
}

// BuildPrompt renders the single user-role prompt sent to the AI provider.
// The model is asked for a bare JSON object with five fixed keys; the parser
// tolerates anything else it sends back.
func BuildPrompt(in PromptInput) string {
	var sb strings.Builder

	sb.WriteString("Ты опытный психолог и литературный куратор. Проанализируй цитаты, которые читатель сохранил за неделю, ")
	sb.WriteString("и составь бережный персональный разбор.\n\n")

	name := strings.TrimSpace(in.Profile.Name)
	if name == "" {
		name = "Читатель"
	}
	fmt.Fprintf(&sb, "Имя: %s\n", name)
	if in.Week.ISOWeek > 0 {
		fmt.Fprintf(&sb, "Неделя: %d, %d год\n", in.Week.ISOWeek, in.Week.ISOYear)
	}

	if len(in.Profile.TestResults) > 0 {
		sb.WriteString("Результаты вступительного теста:\n")
		keys := make([]string, 0, len(in.Profile.TestResults))
		for k := range in.Profile.TestResults {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %s\n", k, in.Profile.TestResults[k])
		}
	}
	if p := in.Profile.Preferences; len(p.MainThemes) > 0 || p.Personality != "" {
		if len(p.MainThemes) > 0 {
			fmt.Fprintf(&sb, "Интересующие темы: %s\n", strings.Join(p.MainThemes, ", "))
		}
		if p.Personality != "" {
			fmt.Fprintf(&sb, "Тип личности: %s\n", p.Personality)
		}
	}

	sb.WriteString("\nЦитаты недели:\n")
	for i, q := range in.Quotes {
		fmt.Fprintf(&sb, "%d. \"%s\"", i+1, strings.TrimSpace(q.Text))
		if author := strings.TrimSpace(q.Author); author != "" {
			fmt.Fprintf(&sb, " (%s)", author)
		}
		sb.WriteByte('\n')
	}

	if prev := strings.TrimSpace(in.PreviousReport); prev != "" {
		sb.WriteString("\nРазбор прошлой недели (для сравнения динамики):\n")
		sb.WriteString(prev)
		sb.WriteByte('\n')
	}

	sb.WriteString(`
Верни ТОЛЬКО JSON-объект без markdown и пояснений, строго с ключами:
{
  "summary": "краткий итог недели в 2-3 предложениях",
  "dominantThemes": ["тема 1", "тема 2"],
  "emotionalTone": "одно слово: эмоциональный тон недели",
  "insights": "психологические наблюдения, 3-4 предложения",
  "personalGrowth": "рекомендация для личностного роста"
}`)

	return sb.String()
}
