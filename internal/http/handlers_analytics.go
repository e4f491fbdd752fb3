package http

import (
	"context"
	"log/slog"
	"net/http"

	"finsight/internal/analytics"
	"finsight/internal/core"
	"finsight/internal/storage"
)

// topCategoriesLimit caps the categories listed in the savings analysis.
const topCategoriesLimit = 3

// loadPeriodTransactions fetches one user's rows for the period, used by
// every analytics handler.
func (s *Server) loadPeriodTransactions(ctx context.Context, userID string, p core.Period) ([]core.Transaction, error) {
	return s.transactions.List(ctx, storage.ListFilter{
		UserID: userID,
		From:   p.From,
		To:     p.To,
	})
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	key := analyticsCacheKey(userID, period)
	if totals, found := s.totalsCache.Get(key); found {
		slog.DebugContext(r.Context(), "Totals cache hit", "user_id", userID)
		writeJSON(w, http.StatusOK, toPeriodTotalsResponse(totals))
		return
	}

	txs, err := s.loadPeriodTransactions(r.Context(), userID, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary load failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	totals := analytics.Totals(txs, period)
	s.totalsCache.Set(key, totals)
	writeJSON(w, http.StatusOK, toPeriodTotalsResponse(totals))
}

func (s *Server) handleAnalyticsCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	summaries, err := s.getSummaries(r.Context(), userID, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category breakdown failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute category breakdown")
		return
	}

	writeJSON(w, http.StatusOK, toCategorySummaryResponses(summaries))
}

func (s *Server) handleAnalyticsTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	// Trends span all of a user's history, not one period.
	txs, err := s.transactions.List(r.Context(), storage.ListFilter{UserID: userID})
	if err != nil {
		slog.ErrorContext(r.Context(), "Trends load failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute trends")
		return
	}

	months := analytics.MonthlyBreakdown(txs)
	writeJSON(w, http.StatusOK, toMonthTotalsResponses(months))
}

func (s *Server) handleAnalyticsSavings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	txs, err := s.loadPeriodTransactions(r.Context(), userID, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Savings load failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute savings")
		return
	}

	totals := analytics.Totals(txs, period)
	months := analytics.MonthlyBreakdown(txs)
	top := analytics.TopCategories(analytics.Summarize(txs, period), topCategoriesLimit)

	writeJSON(w, http.StatusOK, map[string]any{
		"period":         toPeriodTotalsResponse(totals),
		"savings_rate":   totals.SavingsRate,
		"months":         toMonthTotalsResponses(months),
		"top_categories": toCategorySummaryResponses(top),
	})
}

// getSummaries returns the cached category breakdown for a user and period,
// computing and caching it on a miss.
func (s *Server) getSummaries(ctx context.Context, userID string, period core.Period) ([]core.CategorySummary, error) {
	key := analyticsCacheKey(userID, period)
	if summaries, found := s.summariesCache.Get(key); found {
		slog.DebugContext(ctx, "Summaries cache hit", "user_id", userID)
		// Return a copy to prevent external mutation
		out := make([]core.CategorySummary, len(summaries))
		copy(out, summaries)
		return out, nil
	}

	txs, err := s.loadPeriodTransactions(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	summaries := analytics.Summarize(txs, period)

	// Cache a private copy so callers mutating the returned slice can't
	// corrupt later hits.
	cached := make([]core.CategorySummary, len(summaries))
	copy(cached, summaries)
	s.summariesCache.Set(key, cached)

	return summaries, nil
}
