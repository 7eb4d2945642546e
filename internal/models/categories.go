// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package models

import "strings"

// canonicalCategories are the 14 top-level quote categories. Dominant themes use
// them; secondary theme mining must never return one.
var canonicalCategories = [...]string{
	"КРИЗИСЫ",
	"Я — ЖЕНЩИНА",
	"ЛЮБОВЬ",
	"ОДИНОЧЕСТВО",
	"СМЕРТЬ",
	"СЕМЕЙНЫЕ ОТНОШЕНИЯ",
	"СМЫСЛ ЖИЗНИ",
	"СЧАСТЬЕ",
	"ВРЕМЯ И ПРИВЫЧКИ",
	"ДОБРО И ЗЛО",
	"ОБЩЕСТВО",
	"ПОИСК СЕБЯ",
	"ПСИХОЛОГИЯ",
	"ДРУГОЕ",
}

// CanonicalCategoryKeys returns a copy of the canonical category keys.
func CanonicalCategoryKeys() []string {
	out := make([]string, len(canonicalCategories))
	copy(out, canonicalCategories[:])
	return out
}

// IsCanonicalCategory reports whether s names a canonical category, ignoring case.
func IsCanonicalCategory(s string) bool {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range canonicalCategories {
		if c == upper {
			return true
		}
	}
	return false
}
