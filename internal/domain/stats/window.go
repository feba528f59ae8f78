// Package stats derives chart-ready series from entry snapshots. Every
// function is pure: deterministic given (entries, window, now) and free of
// package state, so callers can re-run them at will.
//
// All aggregations use the same window-inclusion policy: a segment
// contributes the clipped overlap between its own span and the window, never
// its whole duration on a start-time test alone.
package stats

import (
	"fmt"
	"time"
)

// Window is a half-open local-time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Period selects a predefined reporting window.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// ParsePeriod maps a user-supplied period name to a Period.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Resolve maps a period to a whole-calendar-day window relative to now, in
// now's location. PeriodWeek is the trailing 7 days including today.
// PeriodAll yields a zero Start; day-iterating aggregations clamp it to the
// earliest tracked segment.
func Resolve(p Period, now time.Time) Window {
	today := StartOfDay(now)
	switch p {
	case PeriodToday:
		return Window{Start: today, End: today.AddDate(0, 0, 1)}
	case PeriodWeek:
		return Window{Start: today.AddDate(0, 0, -6), End: today.AddDate(0, 0, 1)}
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: start.AddDate(0, 1, 0)}
	case PeriodYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: start.AddDate(1, 0, 0)}
	default:
		return Window{Start: time.Time{}, End: today.AddDate(0, 0, 1)}
	}
}

// DayRange builds a window spanning whole calendar days from first through
// last inclusive.
func DayRange(first, last time.Time) Window {
	return Window{Start: StartOfDay(first), End: StartOfDay(last).AddDate(0, 0, 1)}
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Days counts the distinct calendar days the window touches. Day stepping
// uses AddDate, so daylight-saving days count once like any other.
func (w Window) Days() int {
	days := 0
	for d := StartOfDay(w.Start); d.Before(w.End); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}
