// Package analytics computes summary statistics over transaction sets.
// All functions are pure: they take rows already loaded from storage and
// return derived aggregates, so they need no locking and are trivially
// testable.
package analytics

import (
	"sort"

	"finsight/internal/core"
)

// Summarize groups the transactions falling inside the period by category
// and returns one summary per category.
//
// Ordering is deterministic: descending by absolute total, ties broken by
// ascending label. Percentage is each category's share of the summed
// absolute totals. An empty input yields an empty slice, never an error.
func Summarize(transactions []core.Transaction, period core.Period) []core.CategorySummary {
	type bucket struct {
		total int64
		count int
	}
	buckets := make(map[string]*bucket)

	for _, t := range transactions {
		if !period.Contains(t.OccurredOn.Time) {
			continue
		}
		b, ok := buckets[t.Category]
		if !ok {
			b = &bucket{}
			buckets[t.Category] = b
		}
		b.total += t.Amount.Cents
		b.count++
	}

	var absSum int64
	for _, b := range buckets {
		absSum += abs(b.total)
	}

	summaries := make([]core.CategorySummary, 0, len(buckets))
	for category, b := range buckets {
		pct := 0.0
		if absSum > 0 {
			pct = float64(abs(b.total)) / float64(absSum) * 100
		}
		summaries = append(summaries, core.CategorySummary{
			Category:   category,
			Total:      core.Money{Cents: b.total},
			Count:      b.count,
			Percentage: pct,
			Period:     period,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		ti, tj := abs(summaries[i].Total.Cents), abs(summaries[j].Total.Cents)
		if ti != tj {
			return ti > tj
		}
		return summaries[i].Category < summaries[j].Category
	})

	return summaries
}

// Totals computes period-wide aggregates: income (sum of positive amounts),
// expenses (absolute sum of negative amounts), net, and the savings rate.
// A period with zero income has a savings rate of 0, not an error.
func Totals(transactions []core.Transaction, period core.Period) core.PeriodTotals {
	totals := core.PeriodTotals{Period: period}

	for _, t := range transactions {
		if !period.Contains(t.OccurredOn.Time) {
			continue
		}
		totals.Count++
		if t.Amount.IsIncome() {
			totals.Income.Cents += t.Amount.Cents
		} else {
			totals.Expenses.Cents += -t.Amount.Cents
		}
	}

	totals.Net.Cents = totals.Income.Cents - totals.Expenses.Cents
	if totals.Income.Cents > 0 {
		totals.SavingsRate = float64(totals.Net.Cents) / float64(totals.Income.Cents) * 100
	}

	return totals
}

// MonthlyBreakdown groups all transactions by calendar month and returns
// one MonthTotals per month in chronological order. It feeds the trends and
// savings endpoints.
func MonthlyBreakdown(transactions []core.Transaction) []core.MonthTotals {
	type key struct {
		year  int
		month int
	}
	buckets := make(map[key]*core.MonthTotals)

	for _, t := range transactions {
		k := key{year: t.OccurredOn.Year(), month: t.OccurredOn.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &core.MonthTotals{Year: k.year, Month: k.month}
			buckets[k] = b
		}
		b.Count++
		if t.Amount.IsIncome() {
			b.Income.Cents += t.Amount.Cents
		} else {
			b.Expenses.Cents += -t.Amount.Cents
		}
	}

	months := make([]core.MonthTotals, 0, len(buckets))
	for _, b := range buckets {
		b.Net.Cents = b.Income.Cents - b.Expenses.Cents
		if b.Income.Cents > 0 {
			b.SavingsRate = float64(b.Net.Cents) / float64(b.Income.Cents) * 100
		}
		months = append(months, *b)
	}

	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})

	return months
}

// TopCategories returns the n highest-ranked summaries, or all of them when
// fewer exist. Summaries are already ordered by Summarize; n <= 0 yields an
// empty slice.
func TopCategories(summaries []core.CategorySummary, n int) []core.CategorySummary {
	if n <= 0 {
		return []core.CategorySummary{}
	}
	if n >= len(summaries) {
		return summaries
	}
	return summaries[:n]
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
