package http

import (
	"time"

	"finsight/internal/core"
)

// transactionResponse is the JSON shape of a stored transaction. Amounts
// are rendered in currency units; cents stay internal.
type transactionResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source"`
	Status      string  `json:"status"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Description: t.Description,
		Amount:      t.Amount.Units(),
		Currency:    t.Currency,
		Category:    t.Category,
		Confidence:  t.Confidence,
		Source:      string(t.Source),
		Status:      string(t.Status),
		Date:        t.OccurredOn.Format("2006-01-02"),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

type categorySummaryResponse struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func toCategorySummaryResponses(summaries []core.CategorySummary) []categorySummaryResponse {
	out := make([]categorySummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, categorySummaryResponse{
			Category:   s.Category,
			Total:      s.Total.Units(),
			Count:      s.Count,
			Percentage: s.Percentage,
		})
	}
	return out
}

type periodTotalsResponse struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Net         float64 `json:"net"`
	SavingsRate float64 `json:"savings_rate"`
	Count       int     `json:"count"`
}

func toPeriodTotalsResponse(t core.PeriodTotals) periodTotalsResponse {
	return periodTotalsResponse{
		From:        t.Period.From.Format("2006-01-02"),
		To:          t.Period.To.Format("2006-01-02"),
		Income:      t.Income.Units(),
		Expenses:    t.Expenses.Units(),
		Net:         t.Net.Units(),
		SavingsRate: t.SavingsRate,
		Count:       t.Count,
	}
}

type monthTotalsResponse struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Net         float64 `json:"net"`
	SavingsRate float64 `json:"savings_rate"`
	Count       int     `json:"count"`
}

func toMonthTotalsResponses(months []core.MonthTotals) []monthTotalsResponse {
	out := make([]monthTotalsResponse, 0, len(months))
	for _, m := range months {
		out = append(out, monthTotalsResponse{
			Year:        m.Year,
			Month:       m.Month,
			Income:      m.Income.Units(),
			Expenses:    m.Expenses.Units(),
			Net:         m.Net.Units(),
			SavingsRate: m.SavingsRate,
			Count:       m.Count,
		})
	}
	return out
}
