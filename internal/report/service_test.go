// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package report

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/quotebook/internal/models"
)

type mockStore struct {
	mu       sync.Mutex
	quotes   []models.Quote
	profile  *models.UserProfile
	existing bool
	saveErr  error
	saved    []*models.WeeklyReport
	queried  [2]int
}

func (m *mockStore) QuotesForWeek(_ context.Context, _ string, week, year int) ([]models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queried = [2]int{week, year}
	return m.quotes, nil
}

func (m *mockStore) Profile(context.Context, string) (*models.UserProfile, error) {
	if m.profile == nil {
		return nil, errors.New("not found")
	}
	return m.profile, nil
}

func (m *mockStore) HasReport(context.Context, string, int, int) (bool, error) {
	return m.existing, nil
}

func (m *mockStore) SaveReport(_ context.Context, r *models.WeeklyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, r)
	return nil
}

type mockNotifier struct {
	published []string
	err       error
}

func (m *mockNotifier) PublishReportGenerated(_ context.Context, r *models.WeeklyReport) error {
	m.published = append(m.published, r.ID)
	return m.err
}

func newTestService(t *testing.T, store *mockStore, notifier Notifier) *Service {
	t.Helper()
	a := newTestAssembler(t, Deps{})
	svc, err := NewService(a, store, notifier, a.deps.Calendar)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestServiceRun(t *testing.T) {
	t.Parallel()

	store := &mockStore{quotes: testQuotes(), profile: &models.UserProfile{UserID: "user-1", Name: "Анна"}}
	notifier := &mockNotifier{err: errors.New("broker down")}
	svc := newTestService(t, store, notifier)

	r, err := svc.Run(context.Background(), "user-1", RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if store.queried != [2]int{1, 2025} {
		t.Errorf("quotes loaded for %v, want previous complete week 1/2025", store.queried)
	}
	if len(store.saved) != 1 || store.saved[0] != r {
		t.Errorf("saved = %v", store.saved)
	}
	if len(notifier.published) != 1 || notifier.published[0] != r.ID {
		t.Errorf("published = %v", notifier.published)
	}
	if r.Metrics.Quotes != 5 {
		t.Errorf("Metrics.Quotes = %d", r.Metrics.Quotes)
	}
}

func TestServiceRun_SkipExisting(t *testing.T) {
	t.Parallel()

	store := &mockStore{existing: true}
	svc := newTestService(t, store, nil)

	_, err := svc.Run(context.Background(), "user-1", RunOptions{SkipExisting: true})
	if !errors.Is(err, ErrAlreadyGenerated) {
		t.Fatalf("Run() error = %v, want ErrAlreadyGenerated", err)
	}

	// Without SkipExisting the report is regenerated.
	if _, err := svc.Run(context.Background(), "user-1", RunOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("saved %d reports, want 1", len(store.saved))
	}
}

func TestServiceRun_Errors(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &mockStore{saveErr: errors.New("disk full")}, nil)
	if _, err := svc.Run(context.Background(), "user-1", RunOptions{}); err == nil {
		t.Error("Run() with failing store succeeded")
	}

	_, err := svc.Run(context.Background(), "user-1", RunOptions{Week: &models.WeekMeta{ISOWeek: 53, ISOYear: 2025}})
	if !errors.Is(err, ErrMissingWeekMetadata) {
		t.Errorf("Run() with invalid week error = %v", err)
	}
}
