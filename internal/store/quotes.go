// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/models"
)

func quoteKey(userID, id string) string {
	return quoteKeyPrefix + userSegment(userID) + ":" + id
}

func quoteWeekKey(q *models.Quote) string {
	return quoteWeekKeyPrefix + weekKey(q.YearNumber, q.WeekNumber) + ":" + userSegment(q.UserID) + ":" + q.ID
}

// SaveQuote stores a quote, deriving its week coordinates from CreatedAt in the
// business timezone. An empty ID or zero CreatedAt is filled in.
func (s *Store) SaveQuote(_ context.Context, q *models.Quote) error {
	if q.UserID == "" {
		return errors.New("save quote: empty user id")
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now()
	}
	q.WeekNumber, q.YearNumber = s.cal.WeekInfo(q.CreatedAt)

	return s.db.Update(func(txn *badger.Txn) error {
		return s.writeQuote(txn, q)
	})
}

// writeQuote stores q and its week index entry, removing a stale index entry
// left by earlier coordinates.
func (s *Store) writeQuote(txn *badger.Txn, q *models.Quote) error {
	var prev models.Quote
	err := s.getJSON(txn, quoteKey(q.UserID, q.ID), &prev)
	switch {
	case err == nil:
		if oldKey := quoteWeekKey(&prev); oldKey != quoteWeekKey(q) {
			if err := txn.Delete([]byte(oldKey)); err != nil {
				return fmt.Errorf("delete week index: %w", err)
			}
		}
	case !errors.Is(err, ErrNotFound):
		return err
	}

	if err := s.putJSON(txn, quoteKey(q.UserID, q.ID), q); err != nil {
		return err
	}
	if err := txn.Set([]byte(quoteWeekKey(q)), []byte(q.ID)); err != nil {
		return fmt.Errorf("set week index: %w", err)
	}
	return nil
}

// QuotesForWeek returns the user's quotes in the ISO week, oldest first.
func (s *Store) QuotesForWeek(_ context.Context, userID string, week, year int) ([]models.Quote, error) {
	prefix := quoteWeekKeyPrefix + weekKey(year, week) + ":" + userSegment(userID) + ":"

	quotes := []models.Quote{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanKeys(txn, prefix, func(id string) error {
			var q models.Quote
			if err := s.getJSON(txn, quoteKey(userID, id), &q); err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil
				}
				return err
			}
			quotes = append(quotes, q)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("quotes for week: %w", err)
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.Before(quotes[j].CreatedAt)
	})
	return quotes, nil
}

// UsersWithQuotes returns the sorted IDs of users with at least one quote in the week.
func (s *Store) UsersWithQuotes(_ context.Context, week, year int) ([]string, error) {
	prefix := quoteWeekKeyPrefix + weekKey(year, week) + ":"

	seen := make(map[string]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		return scanKeys(txn, prefix, func(suffix string) error {
			// suffix is <hex user>:<quote id>.
			i := strings.IndexByte(suffix, ':')
			if i <= 0 {
				return nil
			}
			user, err := hex.DecodeString(suffix[:i])
			if err != nil {
				return fmt.Errorf("decode user segment %q: %w", suffix[:i], err)
			}
			seen[string(user)] = struct{}{}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("users with quotes: %w", err)
	}

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

// BackfillWeekCoordinates recomputes the cached week of every quote and rewrites
// the ones that disagree with the calendar. It returns the number of quotes fixed.
func (s *Store) BackfillWeekCoordinates(ctx context.Context) (int, error) {
	var stale []models.Quote
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, quoteKeyPrefix, func(q *models.Quote) error {
			week, year := s.cal.WeekInfo(q.CreatedAt)
			if q.WeekNumber != week || q.YearNumber != year {
				stale = append(stale, *q)
			}
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("scan quotes: %w", err)
	}

	log := logging.Ctx(ctx)
	fixed := 0
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return fixed, err
		}

		q := stale[i]
		oldWeek, oldYear := q.WeekNumber, q.YearNumber
		q.WeekNumber, q.YearNumber = s.cal.WeekInfo(q.CreatedAt)
		if err := s.db.Update(func(txn *badger.Txn) error { return s.writeQuote(txn, &q) }); err != nil {
			return fixed, fmt.Errorf("rewrite quote %s: %w", q.ID, err)
		}

		log.Debug().Str("quote_id", q.ID).Int("old_week", oldWeek).Int("old_year", oldYear).
			Int("iso_week", q.WeekNumber).Int("iso_year", q.YearNumber).Msg("Quote week coordinates repaired")
		fixed++
	}

	log.Info().Int("scanned_stale", len(stale)).Int("fixed", fixed).Msg("Week coordinate backfill complete")
	return fixed, nil
}

// SaveProfile inserts or replaces a user profile.
func (s *Store) SaveProfile(_ context.Context, p *models.UserProfile) error {
	if p.UserID == "" {
		return errors.New("save profile: empty user id")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return s.putJSON(txn, profileKeyPrefix+userSegment(p.UserID), p)
	})
}

// Profile returns the user's profile or ErrNotFound.
func (s *Store) Profile(_ context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.View(func(txn *badger.Txn) error {
		return s.getJSON(txn, profileKeyPrefix+userSegment(userID), &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
