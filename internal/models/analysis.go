// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package models

import "strings"

// AnalysisSource records where a WeeklyAnalysis came from.
type AnalysisSource string

const (
	// AnalysisSourceAI means the analysis was parsed from the AI response.
	AnalysisSourceAI AnalysisSource = "ai"

	// AnalysisSourceFallback means the keyword-based fallback produced the analysis.
	AnalysisSourceFallback AnalysisSource = "fallback"
)

// WeeklyAnalysis is the psychological reading of a week's quotes.
//
// Summary and Insights are never empty on an analysis that reaches a report.
type WeeklyAnalysis struct {
	Summary         string         `json:"summary"`
	DominantThemes  []string       `json:"dominant_themes"`
	SecondaryThemes []string       `json:"secondary_themes,omitempty"`
	EmotionalTone   string         `json:"emotional_tone"`
	Insights        string         `json:"insights"`
	PersonalGrowth  string         `json:"personal_growth,omitempty"`
	Source          AnalysisSource `json:"source"`
}

// IsComplete reports whether both Summary and Insights carry text.
func (a *WeeklyAnalysis) IsComplete() bool {
	return strings.TrimSpace(a.Summary) != "" && strings.TrimSpace(a.Insights) != ""
}
