// Package timewin computes the calendar windows reports are keyed on:
// completed Sunday-Saturday weeks and calendar months.
package timewin

import (
	"fmt"
	"time"
)

// Week is an inclusive Sunday..Saturday span. Start and End are dates at
// midnight UTC.
type Week struct {
	Start time.Time // Sunday
	End   time.Time // Saturday
}

// EndExclusive returns the day after End, for half-open [Start, end)
// range queries.
func (w Week) EndExclusive() time.Time {
	return w.End.AddDate(0, 0, 1)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MostRecentCompletedWeek returns the most recent fully completed
// Sunday-Saturday week as of today. A week counts as completed only once
// its Saturday has fully elapsed: if today is itself a Saturday, the week
// ending today is not yet complete and the prior week is returned.
func MostRecentCompletedWeek(today time.Time) Week {
	d := dateOf(today)
	// time.Weekday: Sunday=0 .. Saturday=6
	delta := (int(d.Weekday()) + 1) % 7 // days since the last Saturday
	if delta == 0 {
		delta = 7
	}
	lastSaturday := d.AddDate(0, 0, -delta)
	return Week{Start: lastSaturday.AddDate(0, 0, -6), End: lastSaturday}
}

// LastNCompletedWeeks returns the last n completed weeks, newest first.
// The weeks are contiguous going backward and never overlap.
func LastNCompletedWeeks(today time.Time, n int) []Week {
	weeks := make([]Week, 0, n)
	w := MostRecentCompletedWeek(today)
	for i := 0; i < n; i++ {
		weeks = append(weeks, w)
		w = Week{Start: w.Start.AddDate(0, 0, -7), End: w.End.AddDate(0, 0, -7)}
	}
	return weeks
}

// WeekToDate returns the current partial week, Sunday through today.
// Report generation substitutes it when the most recent completed week
// has no captured runs.
func WeekToDate(today time.Time) Week {
	d := dateOf(today)
	daysSinceSunday := int(d.Weekday())
	return Week{Start: d.AddDate(0, 0, -daysSinceSunday), End: d}
}

// MonthRange parses a YYYY-MM month and returns its half-open date range
// [first of month, first of next month).
func MonthRange(month string) (start, end time.Time, err error) {
	start, err = time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("month must be YYYY-MM: %w", err)
	}
	end = start.AddDate(0, 1, 0) // handles December -> January
	return start, end, nil
}

// PreviousMonth returns the YYYY-MM month preceding today's month.
func PreviousMonth(today time.Time) string {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 0, -1).Format("2006-01")
}
