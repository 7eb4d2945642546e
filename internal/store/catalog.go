// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/quotebook/internal/models"
)

// SaveCatalogEntry inserts or replaces a catalog entry by slug.
func (s *Store) SaveCatalogEntry(_ context.Context, entry *models.CatalogEntry) error {
	if entry.BookSlug == "" {
		return fmt.Errorf("save catalog entry: empty book slug")
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return s.putJSON(txn, catalogKeyPrefix+entry.BookSlug, entry)
	})
	if err != nil {
		return err
	}
	s.invalidateThemes()
	return nil
}

// CatalogEntry returns one entry by slug.
func (s *Store) CatalogEntry(_ context.Context, slug string) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	err := s.db.View(func(txn *badger.Txn) error {
		return s.getJSON(txn, catalogKeyPrefix+slug, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) activeCatalog() ([]models.CatalogEntry, error) {
	var entries []models.CatalogEntry
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, catalogKeyPrefix, func(e *models.CatalogEntry) error {
			if e.Active {
				entries = append(entries, *e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	return entries, nil
}

// FindActiveByThemes returns active entries whose target themes or categories
// match one of themes, case-insensitively. Entries matching an earlier theme come
// first, then higher priority, then slug order.
func (s *Store) FindActiveByThemes(_ context.Context, themes []string) ([]models.CatalogEntry, error) {
	rank := make(map[string]int, len(themes))
	for i, t := range themes {
		key := strings.ToLower(strings.TrimSpace(t))
		if _, ok := rank[key]; !ok && key != "" {
			rank[key] = i
		}
	}
	if len(rank) == 0 {
		return []models.CatalogEntry{}, nil
	}

	entries, err := s.activeCatalog()
	if err != nil {
		return nil, err
	}

	type ranked struct {
		entry models.CatalogEntry
		best  int
	}
	var matches []ranked
	for _, e := range entries {
		best := -1
		for _, tag := range append(append([]string{}, e.TargetThemes...), e.Categories...) {
			if r, ok := rank[strings.ToLower(strings.TrimSpace(tag))]; ok && (best < 0 || r < best) {
				best = r
			}
		}
		if best >= 0 {
			matches = append(matches, ranked{entry: e, best: best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].best != matches[j].best {
			return matches[i].best < matches[j].best
		}
		if matches[i].entry.Priority != matches[j].entry.Priority {
			return matches[i].entry.Priority > matches[j].entry.Priority
		}
		return matches[i].entry.BookSlug < matches[j].entry.BookSlug
	})

	out := make([]models.CatalogEntry, len(matches))
	for i := range matches {
		out[i] = matches[i].entry
	}
	return out, nil
}

// FindUniversal returns active entries flagged for general recommendation,
// highest priority first.
func (s *Store) FindUniversal(_ context.Context) ([]models.CatalogEntry, error) {
	entries, err := s.activeCatalog()
	if err != nil {
		return nil, err
	}

	out := make([]models.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Universal {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].BookSlug < out[j].BookSlug
	})
	return out, nil
}

// TargetThemes returns the target themes of all active entries.
func (s *Store) TargetThemes(_ context.Context) ([]string, error) {
	if s.themes != nil {
		if cached, ok := s.themes.Get(themeCorpusKey); ok {
			return cached, nil
		}
	}

	entries, err := s.activeCatalog()
	if err != nil {
		return nil, err
	}

	var corpus []string
	for _, e := range entries {
		corpus = append(corpus, e.TargetThemes...)
	}

	if s.themes != nil {
		s.themes.Set(themeCorpusKey, corpus)
	}
	return corpus, nil
}

func (s *Store) invalidateThemes() {
	if s.themes != nil {
		s.themes.Delete(themeCorpusKey)
	}
}
