package analytics

import (
	"testing"

	"finsight/internal/core"
)

func tx(category string, cents int64, date core.Date) core.Transaction {
	return core.Transaction{
		UserID:     "u1",
		Category:   category,
		Amount:     core.Money{Cents: cents},
		OccurredOn: date,
	}
}

func TestSummarize(t *testing.T) {
	period := core.MonthPeriod(2026, 1)

	t.Run("empty input yields empty slice", func(t *testing.T) {
		got := Summarize(nil, period)
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice, got %v", got)
		}
	})

	t.Run("ordering and aggregation", func(t *testing.T) {
		txs := []core.Transaction{
			tx("Entertainment", -1500, core.NewDate(2026, 1, 5)),
			tx("Entertainment", -1500, core.NewDate(2026, 1, 20)),
			tx("Salary", 300000, core.NewDate(2026, 1, 1)),
		}

		got := Summarize(txs, period)
		if len(got) != 2 {
			t.Fatalf("expected 2 summaries, got %d", len(got))
		}
		if got[0].Category != "Salary" || got[0].Total.Cents != 300000 || got[0].Count != 1 {
			t.Fatalf("unexpected first summary: %+v", got[0])
		}
		if got[1].Category != "Entertainment" || got[1].Total.Cents != -3000 || got[1].Count != 2 {
			t.Fatalf("unexpected second summary: %+v", got[1])
		}
	})

	t.Run("ties broken by label", func(t *testing.T) {
		txs := []core.Transaction{
			tx("Zebra", -1000, core.NewDate(2026, 1, 2)),
			tx("Alpha", -1000, core.NewDate(2026, 1, 3)),
		}
		got := Summarize(txs, period)
		if got[0].Category != "Alpha" || got[1].Category != "Zebra" {
			t.Fatalf("tie should be broken by ascending label: %v, %v", got[0].Category, got[1].Category)
		}
	})

	t.Run("rows outside period excluded", func(t *testing.T) {
		txs := []core.Transaction{
			tx("Shopping", -500, core.NewDate(2025, 12, 31)),
			tx("Shopping", -700, core.NewDate(2026, 1, 10)),
			tx("Shopping", -900, core.NewDate(2026, 2, 1)),
		}
		got := Summarize(txs, period)
		if len(got) != 1 || got[0].Total.Cents != -700 || got[0].Count != 1 {
			t.Fatalf("expected only the January row, got %+v", got)
		}
	})

	t.Run("conservation of totals", func(t *testing.T) {
		txs := []core.Transaction{
			tx("Food & Dining", -4200, core.NewDate(2026, 1, 3)),
			tx("Housing", -120000, core.NewDate(2026, 1, 1)),
			tx("Salary", 500000, core.NewDate(2026, 1, 1)),
			tx("Uncategorized", -999, core.NewDate(2026, 1, 15)),
		}

		var want int64
		for _, x := range txs {
			want += x.Amount.Cents
		}

		var got int64
		for _, s := range Summarize(txs, period) {
			got += s.Total.Cents
		}
		if got != want {
			t.Fatalf("summary totals %d do not match input sum %d", got, want)
		}
	})

	t.Run("percentages sum to 100", func(t *testing.T) {
		txs := []core.Transaction{
			tx("A", -2500, core.NewDate(2026, 1, 1)),
			tx("B", -2500, core.NewDate(2026, 1, 2)),
			tx("C", 5000, core.NewDate(2026, 1, 3)),
		}
		var sum float64
		for _, s := range Summarize(txs, period) {
			sum += s.Percentage
		}
		if sum < 99.999 || sum > 100.001 {
			t.Fatalf("percentages sum to %v, want 100", sum)
		}
	})
}

func TestTotals(t *testing.T) {
	period := core.MonthPeriod(2026, 1)

	t.Run("income expenses net", func(t *testing.T) {
		txs := []core.Transaction{
			tx("Salary", 300000, core.NewDate(2026, 1, 1)),
			tx("Housing", -120000, core.NewDate(2026, 1, 2)),
			tx("Food & Dining", -30000, core.NewDate(2026, 1, 3)),
		}

		got := Totals(txs, period)
		if got.Income.Cents != 300000 {
			t.Fatalf("income = %d, want 300000", got.Income.Cents)
		}
		if got.Expenses.Cents != 150000 {
			t.Fatalf("expenses = %d, want 150000", got.Expenses.Cents)
		}
		if got.Net.Cents != 150000 {
			t.Fatalf("net = %d, want 150000", got.Net.Cents)
		}
		if got.SavingsRate != 50 {
			t.Fatalf("savings rate = %v, want 50", got.SavingsRate)
		}
		if got.Count != 3 {
			t.Fatalf("count = %d, want 3", got.Count)
		}
	})

	t.Run("zero income means zero savings rate", func(t *testing.T) {
		txs := []core.Transaction{
			tx("Shopping", -5000, core.NewDate(2026, 1, 10)),
		}
		got := Totals(txs, period)
		if got.SavingsRate != 0 {
			t.Fatalf("savings rate = %v, want 0", got.SavingsRate)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got := Totals(nil, period)
		if got.Count != 0 || got.Income.Cents != 0 || got.Expenses.Cents != 0 {
			t.Fatalf("unexpected totals for empty input: %+v", got)
		}
	})
}

func TestMonthlyBreakdown(t *testing.T) {
	txs := []core.Transaction{
		tx("Salary", 100000, core.NewDate(2026, 2, 1)),
		tx("Shopping", -20000, core.NewDate(2026, 2, 10)),
		tx("Salary", 100000, core.NewDate(2026, 1, 1)),
		tx("Salary", 100000, core.NewDate(2025, 12, 1)),
	}

	months := MonthlyBreakdown(txs)
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}
	if months[0].Year != 2025 || months[0].Month != 12 {
		t.Fatalf("months not chronological: %+v", months[0])
	}
	if months[2].Year != 2026 || months[2].Month != 2 {
		t.Fatalf("months not chronological: %+v", months[2])
	}
	feb := months[2]
	if feb.Income.Cents != 100000 || feb.Expenses.Cents != 20000 || feb.Net.Cents != 80000 {
		t.Fatalf("unexpected february totals: %+v", feb)
	}
	if feb.SavingsRate != 80 {
		t.Fatalf("february savings rate = %v, want 80", feb.SavingsRate)
	}
}

func TestTopCategories(t *testing.T) {
	summaries := []core.CategorySummary{
		{Category: "A"}, {Category: "B"}, {Category: "C"},
	}
	if got := TopCategories(summaries, 2); len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got := TopCategories(summaries, 2); got[0].Category != "A" || got[1].Category != "B" {
		t.Fatalf("expected highest-ranked summaries first, got %+v", got)
	}
	if got := TopCategories(summaries, 0); len(got) != 0 {
		t.Fatalf("n<=0 should return nothing, got %d", len(got))
	}
	if got := TopCategories(summaries, -1); len(got) != 0 {
		t.Fatalf("negative n should return nothing, got %d", len(got))
	}
	if got := TopCategories(summaries, 10); len(got) != 3 {
		t.Fatalf("n beyond length should return all, got %d", len(got))
	}
}
