package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finsight/internal/core"
	"finsight/internal/storage"
)

type createTransactionRequest struct {
	UserID      string      `json:"user_id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Currency    string      `json:"currency"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Source      string      `json:"source"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseSignedCents(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	occurredOn, err := parseDate(strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	t := core.Transaction{
		UserID:      strings.TrimSpace(req.UserID),
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Currency:    strings.TrimSpace(req.Currency),
		Category:    strings.TrimSpace(req.Category),
		Source:      core.Source(strings.TrimSpace(req.Source)),
		OccurredOn:  occurredOn,
	}

	saved, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	s.invalidateUser(saved.UserID)
	writeJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	q := r.URL.Query()
	filter := storage.ListFilter{
		UserID:   userID,
		Category: strings.TrimSpace(q.Get("category")),
		Source:   core.Source(strings.TrimSpace(q.Get("source"))),
		Status:   core.Status(strings.TrimSpace(q.Get("status"))),
	}
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		filter.From = d.Time
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		filter.To = d.Time
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	txs, err := s.transactions.List(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	t, err := s.transactions.Get(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get transaction failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to load transaction")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

type updateTransactionRequest struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	t := core.Transaction{
		ID:          id,
		Description: sanitizeInput(req.Description),
		Category:    strings.TrimSpace(req.Category),
	}
	if req.Amount.String() != "" {
		cents, err := core.ParseSignedCents(req.Amount.String())
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount")
			return
		}
		t.Amount = core.Money{Cents: cents}
	}
	if v := strings.TrimSpace(req.Date); v != "" {
		d, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		t.OccurredOn = d
	}

	updated, err := s.transactions.Update(r.Context(), t)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Update transaction failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}

	s.invalidateUser(updated.UserID)
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Fetch first so the owning user's cache can be invalidated.
	t, err := s.transactions.Get(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete transaction lookup failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.invalidateUser(t.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	body := r.Body
	// Multipart uploads carry the CSV in a "file" field; a raw text/csv
	// body is accepted too.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()
		body = file
	}

	saved, skipped, err := s.transactions.Import(r.Context(), userID, body)
	if err != nil {
		slog.ErrorContext(r.Context(), "Import failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to import transactions")
		return
	}

	s.invalidateUser(userID)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"imported": len(saved),
		"skipped":  skipped,
	})
}

func (s *Server) handleRecategorize(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	queued, err := s.transactions.Recategorize(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recategorize failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to queue recategorization")
		return
	}

	s.invalidateUser(userID)
	writeJSON(w, http.StatusAccepted, map[string]int{"queued": queued})
}

// isValidationError reports whether the error came from domain validation
// rather than infrastructure.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrEmptyUserID) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidSource) ||
		strings.Contains(err.Error(), "description too long")
}
