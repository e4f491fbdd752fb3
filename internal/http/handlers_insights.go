package http

import (
	"log/slog"
	"net/http"

	"finsight/internal/analytics"
)

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
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
		slog.ErrorContext(r.Context(), "Insights load failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to generate insights")
		return
	}

	summaries := analytics.Summarize(txs, period)
	totals := analytics.Totals(txs, period)
	text := s.insights.Generate(r.Context(), summaries, totals)

	writeJSON(w, http.StatusOK, map[string]any{
		"insight":    text,
		"period":     toPeriodTotalsResponse(totals),
		"categories": toCategorySummaryResponses(summaries),
	})
}
