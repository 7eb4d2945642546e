// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package calendar implements ISO-8601 week arithmetic in the operator's business
// timezone.
//
// The business timezone is a fixed UTC offset in minutes (default 180, UTC+3). It is
// independent of the host TZ database so report boundaries do not move with server
// configuration.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/quotebook/internal/models"
)

const (
	// DefaultOffsetMinutes is UTC+3.
	DefaultOffsetMinutes = 180

	// MinOffsetMinutes and MaxOffsetMinutes bound real-world UTC offsets (UTC-12..UTC+14).
	MinOffsetMinutes = -12 * 60
	MaxOffsetMinutes = 14 * 60
)

var (
	// ErrInvalidOffset is returned by New for an offset outside the real-world range.
	ErrInvalidOffset = errors.New("calendar: invalid business timezone offset")

	// ErrInvalidWeek is returned by ValidateWeek for a week the ISO year does not have.
	ErrInvalidWeek = errors.New("calendar: invalid ISO week")
)

// Calendar computes week boundaries in the business timezone.
// It is immutable and safe for concurrent use.
type Calendar struct {
	loc   *time.Location
	clock func() time.Time
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Calendar) {
		c.clock = clock
	}
}

// New creates a Calendar for the given UTC offset in minutes.
func New(offsetMinutes int, opts ...Option) (*Calendar, error) {
	if offsetMinutes < MinOffsetMinutes || offsetMinutes > MaxOffsetMinutes {
		return nil, fmt.Errorf("%w: %d minutes (allowed %d..%d)", ErrInvalidOffset, offsetMinutes, MinOffsetMinutes, MaxOffsetMinutes)
	}

	c := &Calendar{
		loc:   time.FixedZone(zoneName(offsetMinutes), offsetMinutes*60),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func zoneName(offsetMinutes int) string {
	sign := '+'
	if offsetMinutes < 0 {
		sign = '-'
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}

// Location returns the business timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant expressed in the business timezone.
func (c *Calendar) Now() time.Time {
	return c.clock().In(c.loc)
}

// WeekInfo returns the ISO week and ISO year of t as seen in the business timezone.
//
// The ISO year is the calendar year of the Thursday in t's Monday-based week and the
// week number counts Thursdays from that year's start, so late December dates can
// belong to week 1 of the next year and early January dates to week 52/53 of the
// previous one.
func (c *Calendar) WeekInfo(t time.Time) (week, year int) {
	local := t.In(c.loc)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	thursday := date.AddDate(0, 0, 3-isoWeekday(date))
	year = thursday.Year()
	week = (thursday.YearDay()-1)/7 + 1
	return week, year
}

// CurrentWeekInfo returns the ISO coordinates of Now.
func (c *Calendar) CurrentWeekInfo() (week, year int) {
	return c.WeekInfo(c.Now())
}

// WeekRange returns the boundaries of the given ISO week.
// January 4th is always in week 1, so week 1 starts on the Monday of that date.
// The caller is responsible for passing a week the year has; see ValidateWeek.
func (c *Calendar) WeekRange(week, year int) models.WeekRange {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, c.loc)
	monday := jan4.AddDate(0, 0, -isoWeekday(jan4)+(week-1)*7)
	end := monday.AddDate(0, 0, 7).Add(-time.Millisecond)

	return models.WeekRange{
		ISOWeek: week,
		ISOYear: year,
		Start:   monday,
		End:     end,
	}
}

// WeeksInYear returns 53 when January 1 or December 31 of year is a Thursday, else 52.
func WeeksInYear(year int) int {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	dec31 := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if jan1.Weekday() == time.Thursday || dec31.Weekday() == time.Thursday {
		return 53
	}
	return 52
}

// PreviousWeek returns the ISO week before (week, year), rolling week 1 back to the
// last week of the previous ISO year.
func PreviousWeek(week, year int) (prevWeek, prevYear int) {
	if week <= 1 {
		return WeeksInYear(year - 1), year - 1
	}
	return week - 1, year
}

// PreviousCompleteWeek returns the range of the week before the current one.
func (c *Calendar) PreviousCompleteWeek() models.WeekRange {
	week, year := c.CurrentWeekInfo()
	return c.WeekRange(PreviousWeek(week, year))
}

// ValidateWeek checks that week exists in the ISO year.
func ValidateWeek(week, year int) error {
	if year <= 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidWeek, year)
	}
	if week < 1 || week > WeeksInYear(year) {
		return fmt.Errorf("%w: week %d of %d (year has %d)", ErrInvalidWeek, week, year, WeeksInYear(year))
	}
	return nil
}

// isoWeekday maps Monday..Sunday to 0..6.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
