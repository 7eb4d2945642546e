// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/quotebook/internal/models"
)

func reportKey(userID string, week, year int) string {
	return reportKeyPrefix + userSegment(userID) + ":" + weekKey(year, week)
}

// SaveReport stores a report under its user and week, replacing any earlier
// report for the same week.
func (s *Store) SaveReport(_ context.Context, r *models.WeeklyReport) error {
	if r.UserID == "" || r.WeekNumber == 0 || r.Year == 0 {
		return errors.New("save report: user id and week are required")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return s.putJSON(txn, reportKey(r.UserID, r.WeekNumber, r.Year), r)
	})
}

// FindByUserWeek returns the user's report for the ISO week or ErrNotFound.
func (s *Store) FindByUserWeek(_ context.Context, userID string, week, year int) (*models.WeeklyReport, error) {
	var r models.WeeklyReport
	err := s.db.View(func(txn *badger.Txn) error {
		return s.getJSON(txn, reportKey(userID, week, year), &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// HasReport reports whether a report exists for the user and week.
func (s *Store) HasReport(ctx context.Context, userID string, week, year int) (bool, error) {
	_, err := s.FindByUserWeek(ctx, userID, week, year)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
