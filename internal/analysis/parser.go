// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package analysis

import (
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/quotebook/internal/models"
)

// Tier names the parser stage that produced a candidate.
type Tier string

const (
	TierStrictJSON   Tier = "strict_json"
	TierSalvagedJSON Tier = "salvaged_json"
	TierRegex        Tier = "regex"
)

// Placeholders used by the regex tier when a field cannot be found.
const (
	placeholderSummary        = "Ваши цитаты этой недели говорят о внутреннем поиске и стремлении лучше понять себя."
	placeholderInsights       = "Выбранные вами цитаты показывают, что вы много размышляете о важном. Продолжайте собирать мысли, которые откликаются."
	placeholderTone           = "размышляющий"
	placeholderPersonalGrowth = "Продолжайте читать и записывать то, что откликается: так складывается ваша собственная карта смыслов."
	placeholderTheme          = "Размышления"
)

// Result is a parsed, possibly partial, analysis candidate.
type Result struct {
	Analysis models.WeeklyAnalysis
	Tier     Tier
}

type parseTier struct {
	name  Tier
	parse func(raw string) (models.WeeklyAnalysis, bool)
}

// tiers are tried in order; the first to succeed wins. The last tier never fails.
var tiers = []parseTier{
	{name: TierStrictJSON, parse: parseStrictJSON},
	{name: TierSalvagedJSON, parse: parseSalvagedJSON},
	{name: TierRegex, parse: parseLabeledFields},
}

// Parse extracts an analysis candidate from free-text model output.
// It never fails; callers must still check IsComplete on the result.
func Parse(raw string) Result {
	for _, t := range tiers {
		if a, ok := t.parse(raw); ok {
			a.Source = models.AnalysisSourceAI
			return Result{Analysis: a, Tier: t.name}
		}
	}
	// unreachable: the regex tier always succeeds
	return Result{Tier: TierRegex}
}

// ============================================================================
// JSON tiers
// ============================================================================

func parseStrictJSON(raw string) (models.WeeklyAnalysis, bool) {
	return decodeObject(stripCodeFences(raw))
}

// parseSalvagedJSON decodes the outermost {...} span, dropping any prose around it.
func parseSalvagedJSON(raw string) (models.WeeklyAnalysis, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return models.WeeklyAnalysis{}, false
	}
	return decodeObject(raw[start : end+1])
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeObject(s string) (models.WeeklyAnalysis, bool) {
	if s == "" {
		return models.WeeklyAnalysis{}, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil || fields == nil {
		return models.WeeklyAnalysis{}, false
	}

	return models.WeeklyAnalysis{
		Summary:        stringField(fields, "summary"),
		DominantThemes: listField(fields, "dominantThemes", "dominant_themes", "themes"),
		EmotionalTone:  stringField(fields, "emotionalTone", "emotional_tone", "tone"),
		Insights:       stringField(fields, "insights", "insight"),
		PersonalGrowth: stringField(fields, "personalGrowth", "personal_growth", "growth"),
	}, true
}

func stringField(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case []any:
			if s := strings.Join(toStrings(v), " "); s != "" {
				return s
			}
		}
	}
	return ""
}

func listField(fields map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case []any:
			if out := toStrings(v); len(out) > 0 {
				return out
			}
		case string:
			if out := splitList(v); len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func toStrings(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ============================================================================
// Regex tier
// ============================================================================

type labeledField struct {
	quoted   *regexp.Regexp
	unquoted *regexp.Regexp
}

func newLabeledField(labels ...string) labeledField {
	alt := strings.Join(labels, "|")
	return labeledField{
		quoted:   regexp.MustCompile(`(?is)["']?(?:` + alt + `)["']?\s*[:=]\s*"([^"]+)"`),
		unquoted: regexp.MustCompile(`(?im)^[\s*#-]*["']?(?:` + alt + `)["']?\s*[:=]\s*(.+)$`),
	}
}

func (f labeledField) find(text string) string {
	if m := f.quoted.FindStringSubmatch(text); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			return s
		}
	}
	if m := f.unquoted.FindStringSubmatch(text); m != nil {
		s := strings.TrimSpace(m[1])
		s = strings.TrimRight(s, ",")
		s = strings.Trim(s, `"' `)
		if s != "" {
			return s
		}
	}
	return ""
}

var (
	summaryField  = newLabeledField("summary", "резюме", "итог")
	insightsField = newLabeledField("insights", "insight", "инсайты", "выводы")
	toneField     = newLabeledField("emotionalTone", "emotional_tone", "tone", "тон", "настроение")
	growthField   = newLabeledField("personalGrowth", "personal_growth", "growth", "личностный рост", "рост")
	themesPattern = regexp.MustCompile(`(?is)["']?(?:dominantThemes|dominant_themes|themes|темы)["']?\s*[:=]\s*\[([^\]]*)\]`)
)

func parseLabeledFields(raw string) (models.WeeklyAnalysis, bool) {
	a := models.WeeklyAnalysis{
		Summary:        orDefault(summaryField.find(raw), placeholderSummary),
		Insights:       orDefault(insightsField.find(raw), placeholderInsights),
		EmotionalTone:  orDefault(toneField.find(raw), placeholderTone),
		PersonalGrowth: orDefault(growthField.find(raw), placeholderPersonalGrowth),
	}

	if m := themesPattern.FindStringSubmatch(raw); m != nil {
		a.DominantThemes = splitList(m[1])
	}
	if len(a.DominantThemes) == 0 {
		a.DominantThemes = []string{placeholderTheme}
	}

	return a, true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
