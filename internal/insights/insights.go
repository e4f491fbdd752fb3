// Package insights composes aggregator output into short natural-language
// summaries. The template text is the contract; the remote rephrase is an
// optional nicety that degrades to the template on any failure.
package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finsight/internal/core"
)

// Rephraser is a remote LLM endpoint that rewrites template text. Failures
// are absorbed by the generator.
type Rephraser interface {
	Rephrase(ctx context.Context, text string) (string, error)
}

// Generator builds insight text from analytics output.
type Generator struct {
	rephraser Rephraser
	timeout   time.Duration
}

const defaultRephraseTimeout = 2 * time.Second

// NewGenerator creates a generator. A nil rephraser disables the remote
// call; the templated text is returned directly.
func NewGenerator(rephraser Rephraser, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = defaultRephraseTimeout
	}
	return &Generator{rephraser: rephraser, timeout: timeout}
}

// Generate composes the templated summary and optionally asks the remote
// model to rephrase it. On remote failure the template is returned
// unchanged; Generate never fails.
func (g *Generator) Generate(ctx context.Context, summaries []core.CategorySummary, totals core.PeriodTotals) string {
	text := Compose(summaries, totals)

	if g.rephraser == nil {
		return text
	}

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	rephrased, err := g.rephraser.Rephrase(cctx, text)
	if err != nil || strings.TrimSpace(rephrased) == "" {
		slog.WarnContext(ctx, "Insight rephrase failed, using template text", "error", err)
		return text
	}
	return rephrased
}

// Compose builds the plain templated summary. Exported so the HTTP layer
// can render a deterministic preview without a remote round trip.
func Compose(summaries []core.CategorySummary, totals core.PeriodTotals) string {
	if totals.Count == 0 {
		return "No transactions recorded for this period."
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Between %s and %s you recorded %d transactions: %s in, %s out (net %s).",
		totals.Period.From.Format("2 Jan 2006"),
		totals.Period.To.Format("2 Jan 2006"),
		totals.Count,
		formatAmount(totals.Income),
		formatAmount(totals.Expenses),
		formatAmount(totals.Net))

	if top, ok := topSpending(summaries); ok {
		fmt.Fprintf(&b, " You spent most on %s: %s across %d transactions (%.0f%% of activity).",
			top.Category, formatAmount(top.Total.Abs()), top.Count, top.Percentage)
	}

	if totals.Income.Cents > 0 {
		fmt.Fprintf(&b, " Your savings rate was %.1f%%.", totals.SavingsRate)
	}

	return b.String()
}

// topSpending returns the largest expense category, skipping income
// categories so "you spent most on Salary" can never happen.
func topSpending(summaries []core.CategorySummary) (core.CategorySummary, bool) {
	for _, s := range summaries {
		if s.Total.Cents < 0 {
			return s, true
		}
	}
	return core.CategorySummary{}, false
}

func formatAmount(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("$%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}
