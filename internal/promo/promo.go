// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package promo selects promo codes and builds tracked links for reports.
//
// Both operations prefer the store-backed collaborator and fall back to static
// values when it errors or has nothing for the context.
package promo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/metrics"
	"github.com/tomtom215/quotebook/internal/models"
)

// ContextWeeklyReport scopes promo codes and links to weekly reports.
const ContextWeeklyReport = "weekly_report"

// Store is the promo read interface.
type Store interface {
	// RandomActiveForContext returns an active code for the context, or an error
	// when none exists.
	RandomActiveForContext(ctx context.Context, promoContext string) (*models.PromoCode, error)
}

// Config controls the static fallback.
type Config struct {
	FallbackCodes    []string
	FallbackDiscount int
	FallbackValidity time.Duration
}

// DefaultConfig returns the static fallback: 20% off, valid for three days.
func DefaultConfig() Config {
	return Config{
		FallbackCodes:    []string{"READER20", "WISDOM20", "QUOTES20", "BOOKS20"},
		FallbackDiscount: 20,
		FallbackValidity: 72 * time.Hour,
	}
}

// Assigner picks a promo code for a context.
type Assigner struct {
	store Store
	cfg   Config
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// AssignerOption configures an Assigner.
type AssignerOption func(*Assigner)

// WithClock overrides the clock used for the fallback validity window.
func WithClock(now func() time.Time) AssignerOption {
	return func(a *Assigner) { a.now = now }
}

// WithRand overrides the source of the fallback choice.
func WithRand(rng *rand.Rand) AssignerOption {
	return func(a *Assigner) { a.rng = rng }
}

// NewAssigner creates an Assigner. store may be nil.
func NewAssigner(store Store, cfg Config, opts ...AssignerOption) *Assigner {
	def := DefaultConfig()
	if len(cfg.FallbackCodes) == 0 {
		cfg.FallbackCodes = def.FallbackCodes
	}
	if cfg.FallbackDiscount <= 0 {
		cfg.FallbackDiscount = def.FallbackDiscount
	}
	if cfg.FallbackValidity <= 0 {
		cfg.FallbackValidity = def.FallbackValidity
	}

	a := &Assigner{
		store: store,
		cfg:   cfg,
		now:   time.Now,
		rng:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)), //nolint:gosec // promo choice is not security sensitive
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assign returns a promo code for promoContext. It never fails.
func (a *Assigner) Assign(ctx context.Context, promoContext string) models.PromoCode {
	if a.store != nil {
		code, err := a.store.RandomActiveForContext(ctx, promoContext)
		if err == nil && code != nil && code.Code != "" {
			return *code
		}
		if err == nil {
			err = fmt.Errorf("no active promo code for %q", promoContext)
		}
		logging.Ctx(ctx).Warn().Err(err).Str("component", "promo").Str("error_class", "catalog_unavailable").
			Msg("Promo store unavailable, using static promo code")
	}

	metrics.RecordCollaboratorFallback("promo")
	return a.fallback()
}

func (a *Assigner) fallback() models.PromoCode {
	a.mu.Lock()
	code := a.cfg.FallbackCodes[a.rng.IntN(len(a.cfg.FallbackCodes))]
	a.mu.Unlock()

	return models.PromoCode{
		Code:        code,
		Discount:    a.cfg.FallbackDiscount,
		ValidUntil:  a.now().Add(a.cfg.FallbackValidity),
		Description: fmt.Sprintf("Скидка %d%% на разборы книг", a.cfg.FallbackDiscount),
		Contexts:    []string{ContextWeeklyReport},
		Active:      true,
	}
}
