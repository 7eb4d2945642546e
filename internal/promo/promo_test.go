// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package promo

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/quotebook/internal/models"
)

type mockPromoStore struct {
	code *models.PromoCode
	err  error
	ctx  string
}

func (m *mockPromoStore) RandomActiveForContext(_ context.Context, promoContext string) (*models.PromoCode, error) {
	m.ctx = promoContext
	return m.code, m.err
}

func TestAssign_UsesStore(t *testing.T) {
	t.Parallel()

	store := &mockPromoStore{code: &models.PromoCode{Code: "SPRING30", Discount: 30, Active: true}}
	a := NewAssigner(store, DefaultConfig())

	got := a.Assign(context.Background(), ContextWeeklyReport)
	if got.Code != "SPRING30" || got.Discount != 30 {
		t.Errorf("Assign() = %+v, want SPRING30", got)
	}
	if store.ctx != ContextWeeklyReport {
		t.Errorf("store queried with context %q", store.ctx)
	}
}

func TestAssign_Fallback(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		store Store
	}{
		{"no store", nil},
		{"store error", &mockPromoStore{err: errors.New("connection reset")}},
		{"store empty", &mockPromoStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := NewAssigner(tt.store, cfg, WithClock(func() time.Time { return now }), WithRand(rand.New(rand.NewPCG(1, 2))))
			got := a.Assign(context.Background(), ContextWeeklyReport)

			if got.Discount != 20 {
				t.Errorf("Discount = %d, want 20", got.Discount)
			}
			if !slices.Contains(cfg.FallbackCodes, got.Code) {
				t.Errorf("Code = %q, not in static list", got.Code)
			}
			if want := now.Add(72 * time.Hour); !got.ValidUntil.Equal(want) {
				t.Errorf("ValidUntil = %s, want %s", got.ValidUntil, want)
			}
		})
	}
}

func TestAssign_FallbackCoversAllCodes(t *testing.T) {
	t.Parallel()

	a := NewAssigner(nil, DefaultConfig(), WithRand(rand.New(rand.NewPCG(7, 7))))
	seen := make(map[string]bool)
	for i := 0; i < 400; i++ {
		seen[a.Assign(context.Background(), ContextWeeklyReport).Code] = true
	}
	if len(seen) != len(DefaultConfig().FallbackCodes) {
		t.Errorf("fallback picked %d distinct codes, want %d", len(seen), len(DefaultConfig().FallbackCodes))
	}
}
