// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/quotebook/internal/models"
)

// SavePromoCode inserts or replaces a promo code.
func (s *Store) SavePromoCode(_ context.Context, code *models.PromoCode) error {
	if code.Code == "" {
		return fmt.Errorf("save promo code: empty code")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return s.putJSON(txn, promoKeyPrefix+code.Code, code)
	})
}

// RandomActiveForContext picks uniformly among usable codes that apply to
// promoContext. Returns ErrNotFound when there are none.
func (s *Store) RandomActiveForContext(_ context.Context, promoContext string) (*models.PromoCode, error) {
	now := s.now()

	var candidates []models.PromoCode
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, promoKeyPrefix, func(p *models.PromoCode) error {
			if p.IsUsable(now) && p.AppliesTo(promoContext) {
				candidates = append(candidates, *p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan promo codes: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: promo code for %q", ErrNotFound, promoContext)
	}

	s.mu.Lock()
	pick := candidates[s.rng.IntN(len(candidates))]
	s.mu.Unlock()
	return &pick, nil
}

// SaveUTMTemplate inserts or replaces a UTM template.
func (s *Store) SaveUTMTemplate(_ context.Context, tmpl *models.UTMTemplate) error {
	if tmpl.ID == "" {
		return fmt.Errorf("save utm template: empty id")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return s.putJSON(txn, utmKeyPrefix+tmpl.ID, tmpl)
	})
}

// TemplatesForContext returns the active templates for linkContext in ID order.
func (s *Store) TemplatesForContext(_ context.Context, linkContext string) ([]models.UTMTemplate, error) {
	var out []models.UTMTemplate
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, utmKeyPrefix, func(t *models.UTMTemplate) error {
			if t.Active && t.Context == linkContext {
				out = append(out, *t)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan utm templates: %w", err)
	}
	return out, nil
}
