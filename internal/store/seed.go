// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/models"
	"github.com/tomtom215/quotebook/internal/validation"
)

// SeedFile is the YAML document of reference data loaded by Seed.
//
//	catalog:
//	  - book_slug: art_of_loving
//	    title: Искусство любить
//	    target_themes: [любовь, близость]
//	    price: "$8"
//	    active: true
//	promo_codes:
//	  - code: READER20
//	    discount: 20
//	    contexts: [weekly_report]
//	    active: true
//	utm_templates:
//	  - id: weekly
//	    context: weekly_report
//	    base_url: https://anna-busel.com/books/{book_slug}
//	    source: telegram_bot
//	    active: true
type SeedFile struct {
	Catalog      []models.CatalogEntry `yaml:"catalog"`
	PromoCodes   []models.PromoCode    `yaml:"promo_codes"`
	UTMTemplates []models.UTMTemplate  `yaml:"utm_templates"`
}

// LoadSeedFile reads and decodes a seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML and validates every record.
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}

	for i := range seed.Catalog {
		if err := validation.ValidateStruct(&seed.Catalog[i]); err != nil {
			return nil, fmt.Errorf("catalog[%d] (%s): %w", i, seed.Catalog[i].BookSlug, err)
		}
	}
	for i := range seed.PromoCodes {
		if err := validation.ValidateStruct(&seed.PromoCodes[i]); err != nil {
			return nil, fmt.Errorf("promo_codes[%d] (%s): %w", i, seed.PromoCodes[i].Code, err)
		}
	}
	for i := range seed.UTMTemplates {
		if err := validation.ValidateStruct(&seed.UTMTemplates[i]); err != nil {
			return nil, fmt.Errorf("utm_templates[%d] (%s): %w", i, seed.UTMTemplates[i].ID, err)
		}
	}
	return &seed, nil
}

// Seed writes the seed records, replacing existing ones with the same key.
func (s *Store) Seed(ctx context.Context, seed *SeedFile) error {
	for i := range seed.Catalog {
		if err := s.SaveCatalogEntry(ctx, &seed.Catalog[i]); err != nil {
			return err
		}
	}
	for i := range seed.PromoCodes {
		if err := s.SavePromoCode(ctx, &seed.PromoCodes[i]); err != nil {
			return err
		}
	}
	for i := range seed.UTMTemplates {
		if err := s.SaveUTMTemplate(ctx, &seed.UTMTemplates[i]); err != nil {
			return err
		}
	}

	logging.Ctx(ctx).Info().
		Int("catalog", len(seed.Catalog)).
		Int("promo_codes", len(seed.PromoCodes)).
		Int("utm_templates", len(seed.UTMTemplates)).
		Msg("Reference data seeded")
	return nil
}
