package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finsight/internal/core"
)

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError writes a JSON error body of the form {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parsePeriod extracts the analytics period from query parameters.
// Supported forms, in priority order:
//
//	?from=YYYY-MM-DD&to=YYYY-MM-DD  explicit range
//	?year=2026&month=3              one calendar month
//	(nothing)                       current calendar month
func parsePeriod(r *http.Request) (core.Period, error) {
	q := r.URL.Query()

	fromStr := strings.TrimSpace(q.Get("from"))
	toStr := strings.TrimSpace(q.Get("to"))
	if fromStr != "" || toStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return core.Period{}, core.ErrInvalidDate
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return core.Period{}, core.ErrInvalidDate
		}
		// Make the upper bound inclusive of the whole day.
		p := core.Period{From: from, To: to.AddDate(0, 0, 1).Add(-time.Nanosecond)}
		if err := p.Validate(); err != nil {
			return core.Period{}, err
		}
		return p, nil
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	if month < 1 || month > 12 {
		return core.Period{}, core.ErrInvalidDate
	}
	return core.MonthPeriod(year, month), nil
}

// requireUserID reads the user_id query parameter; a missing value is a
// client error handled by the caller.
func requireUserID(r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	return userID, userID != ""
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: parsedTime}, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// extractClientIP resolves the client address, considering proxies.
func extractClientIP(r *http.Request) string {
	clientIP := r.Header.Get("X-Forwarded-For")
	if clientIP == "" {
		clientIP = r.Header.Get("X-Real-IP")
	}
	if clientIP == "" {
		clientIP = r.RemoteAddr
	}
	// X-Forwarded-For may carry a chain; the first hop is the client.
	if idx := strings.IndexByte(clientIP, ','); idx > 0 {
		clientIP = strings.TrimSpace(clientIP[:idx])
	}
	return clientIP
}
