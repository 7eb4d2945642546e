// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package cache

import (
	"testing"
	"time"
)

func TestTTL_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTL[[]string](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("themes", []string{"тишина"})
	if v, ok := c.Get("themes"); !ok || len(v) != 1 {
		t.Fatalf("Get() = %v, %v, want cached value", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("themes"); ok {
		t.Error("Get() after TTL = hit, want miss")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v, want 1 hit 1 miss", stats)
	}
}

func TestTTL_DeleteAndClear(t *testing.T) {
	t.Parallel()

	c := NewTTL[int](time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after Delete = hit")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) after Clear = hit")
	}
}
