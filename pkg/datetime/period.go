// Package datetime provides helpers for the period identifiers used by the
// data source.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MonthLayout is the layout of monthly period ids, e.g. 2025-06.
	MonthLayout = "2006-01"

	// DayLayout is the layout of daily period ids, e.g. 2025-06-08.
	DayLayout = "2006-01-02"
)

// PeriodStart returns the first day of the period named by id. Weekly ids
// follow ISO 8601 (2025-W23); monthly and daily ids use MonthLayout and
// DayLayout.
func PeriodStart(id string) (time.Time, error) {
	id = strings.TrimSpace(id)
	if year, week, ok := strings.Cut(id, "-W"); ok {
		return isoWeekStart(year, week, id)
	}
	if t, err := time.Parse(DayLayout, id); err == nil {
		return t, nil
	}
	if t, err := time.Parse(MonthLayout, id); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized period id: %q", id)
}

// MustPeriodStart is PeriodStart that panics on error, for tests and
// constant ids.
func MustPeriodStart(id string) time.Time {
	t, err := PeriodStart(id)
	if err != nil {
		panic(err)
	}
	return t
}

// PeriodBefore returns true if period first starts strictly before second.
func PeriodBefore(first, second string) (bool, error) {
	firstT, err := PeriodStart(first)
	if err != nil {
		return false, err
	}
	secondT, err := PeriodStart(second)
	if err != nil {
		return false, err
	}
	return firstT.Before(secondT), nil
}

func isoWeekStart(yearStr, weekStr, id string) (time.Time, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in period id %q: %w", id, err)
	}
	week, err := strconv.Atoi(weekStr)
	if err != nil || week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("invalid week in period id %q", id)
	}

	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	start := jan4.AddDate(0, 0, -offset+7*(week-1))

	if y, w := start.ISOWeek(); y != year || w != week {
		return time.Time{}, fmt.Errorf("week %d does not exist in %d", week, year)
	}
	return start, nil
}
