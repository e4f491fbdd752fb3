package core

import (
	"errors"
	"time"
)

// Period is a bounded, inclusive date range over which summary statistics
// are computed.
type Period struct {
	From time.Time
	To   time.Time
}

// MonthPeriod returns the calendar-month period containing the given
// year and month.
func MonthPeriod(year, month int) Period {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		From: from,
		To:   from.AddDate(0, 1, 0).Add(-time.Nanosecond),
	}
}

// LastDays returns the period covering the last n days ending now.
func LastDays(n int, now time.Time) Period {
	return Period{From: now.AddDate(0, 0, -n), To: now}
}

func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return ErrInvalidDate
	}
	if p.To.Before(p.From) {
		return errors.New("period end before start")
	}
	return nil
}

// Contains reports whether t falls within the period (inclusive bounds).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && !t.After(p.To)
}

// CategorySummary is a derived per-category aggregate for one period.
type CategorySummary struct {
	Category   string
	Total      Money
	Count      int
	Percentage float64
	Period     Period
}

// PeriodTotals holds period-wide aggregates across all categories.
type PeriodTotals struct {
	Income      Money
	Expenses    Money
	Net         Money
	SavingsRate float64
	Count       int
	Period      Period
}

// MonthTotals is one month's slice of a multi-month breakdown.
type MonthTotals struct {
	Year        int
	Month       int
	Income      Money
	Expenses    Money
	Net         Money
	SavingsRate float64
	Count       int
}
