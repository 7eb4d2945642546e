// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package scheduler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CronExpression is a parsed 5-field cron expression:
// minute hour day-of-month month day-of-week.
type CronExpression struct {
	Minutes     []int // 0-59
	Hours       []int // 0-23
	DaysOfMonth []int // 1-31
	Months      []int // 1-12
	DaysOfWeek  []int // 0-6 (0 = Sunday)
}

type cronField struct {
	name     string
	min, max int
}

var cronFields = [5]cronField{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 7},
}

// ParseCron parses a standard 5-field cron expression.
//
// Supported syntax: "*", "n", "n-m", "n,m,o", "*/s", "n-m/s" and "n/s".
// Day-of-week 7 is Sunday, like 0.
//
// Examples:
//   - "0 9 * * 1" - Every Monday at 09:00
//   - "30 8 * * 1-5" - Weekdays at 08:30
func ParseCron(expr string) (*CronExpression, error) {
	fields := strings.Fields(expr)
	if len(fields) != len(cronFields) {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}

	var values [5][]int
	for i, f := range cronFields {
		v, err := parseField(fields[i], f.min, f.max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", f.name, err)
		}
		values[i] = v
	}

	dow := values[4]
	for i, d := range dow {
		if d == 7 {
			dow[i] = 0
		}
	}

	c := &CronExpression{
		Minutes:     values[0],
		Hours:       values[1],
		DaysOfMonth: values[2],
		Months:      values[3],
		DaysOfWeek:  sortedUnique(dow),
	}

	// The NextRun window covers a leap year, so a zero result means the
	// day/month combination (e.g. "0 9 30 2 *") can never occur.
	if c.NextRun(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC), time.UTC).IsZero() {
		return nil, fmt.Errorf("cron expression %q never fires", expr)
	}
	return c, nil
}

// NextRun returns the first matching minute strictly after the given time,
// evaluated in loc (UTC when nil). It returns the zero time when nothing matches
// within four years.
func (c *CronExpression) NextRun(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc).Truncate(time.Minute).Add(time.Minute)

	limit := t.AddDate(4, 0, 0)
	for t.Before(limit) {
		if c.matches(t) {
			return t
		}
		// Skip whole days and hours that cannot match.
		switch {
		case !slices.Contains(c.Months, int(t.Month())) || !c.dayMatches(t):
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
		case !slices.Contains(c.Hours, t.Hour()):
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
		default:
			t = t.Add(time.Minute)
		}
	}
	return time.Time{}
}

func (c *CronExpression) matches(t time.Time) bool {
	return slices.Contains(c.Minutes, t.Minute()) &&
		slices.Contains(c.Hours, t.Hour()) &&
		slices.Contains(c.Months, int(t.Month())) &&
		c.dayMatches(t)
}

// dayMatches ORs day-of-month and day-of-week when both are restricted, as cron does.
func (c *CronExpression) dayMatches(t time.Time) bool {
	domMatch := slices.Contains(c.DaysOfMonth, t.Day())
	dowMatch := slices.Contains(c.DaysOfWeek, int(t.Weekday()))

	domWildcard := len(c.DaysOfMonth) == 31
	dowWildcard := len(c.DaysOfWeek) == 7

	switch {
	case domWildcard && dowWildcard:
		return true
	case domWildcard:
		return dowMatch
	case dowWildcard:
		return domMatch
	default:
		return domMatch || dowMatch
	}
}

func parseField(field string, minVal, maxVal int) ([]int, error) {
	var out []int
	for _, part := range strings.Split(field, ",") {
		values, err := parsePart(part, minVal, maxVal)
		if err != nil {
			return nil, err
		}
		out = append(out, values...)
	}
	return sortedUnique(out), nil
}

// parsePart parses one list element: a value, range or stepped range.
func parsePart(part string, minVal, maxVal int) ([]int, error) {
	rangeExpr, stepExpr, hasStep := strings.Cut(part, "/")
	step := 1
	if hasStep {
		s, err := strconv.Atoi(stepExpr)
		if err != nil || s <= 0 {
			return nil, fmt.Errorf("invalid step value: %s", stepExpr)
		}
		step = s
	}

	var start, end int
	switch {
	case rangeExpr == "*":
		start, end = minVal, maxVal
	case strings.Contains(rangeExpr, "-"):
		lo, hi, _ := strings.Cut(rangeExpr, "-")
		var err error
		if start, err = strconv.Atoi(lo); err != nil {
			return nil, fmt.Errorf("invalid range start: %s", lo)
		}
		if end, err = strconv.Atoi(hi); err != nil {
			return nil, fmt.Errorf("invalid range end: %s", hi)
		}
		if start > end {
			return nil, fmt.Errorf("invalid range: %d-%d", start, end)
		}
	default:
		v, err := strconv.Atoi(rangeExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %s", rangeExpr)
		}
		start, end = v, v
		if hasStep {
			end = maxVal
		}
	}

	if start < minVal || end > maxVal {
		return nil, fmt.Errorf("value out of range: %d-%d (allowed %d-%d)", start, end, minVal, maxVal)
	}

	out := make([]int, 0, (end-start)/step+1)
	for v := start; v <= end; v += step {
		out = append(out, v)
	}
	return out, nil
}

func sortedUnique(values []int) []int {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
