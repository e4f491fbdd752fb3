package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"finsight/internal/core"
)

const (
	dateLayout = "2006-01-02"
	tsLayout   = time.RFC3339Nano
)

// SQLiteRepository owns the transactions table. It is the only component
// with write access to the persistent store.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create inserts a transaction, assigning an ID and timestamps. The stored
// row is returned.
func (r *SQLiteRepository) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Currency == "" {
		t.Currency = "USD"
	}
	if t.Category == "" {
		t.Category = core.Uncategorized
	}
	if t.Status == "" {
		t.Status = core.StatusCategorized
	}

	const q = `
		INSERT INTO transactions
			(id, user_id, description, amount_cents, currency, category, confidence, source, status, occurred_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		t.ID, t.UserID, t.Description, t.Amount.Cents, t.Currency,
		t.Category, t.Confidence, string(t.Source), string(t.Status),
		t.OccurredOn.Format(dateLayout), now.Format(tsLayout), now.Format(tsLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"amount_cents", t.Amount.Cents,
		"category", t.Category,
		"source", t.Source)

	return t, nil
}

// CreateBatch inserts multiple transactions inside one database
// transaction, assigning IDs and timestamps. Used by CSV import.
func (r *SQLiteRepository) CreateBatch(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch insert: %w", err)
	}
	defer dbtx.Rollback()

	const q = `
		INSERT INTO transactions
			(id, user_id, description, amount_cents, currency, category, confidence, source, status, occurred_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := dbtx.PrepareContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		t.ID = uuid.NewString()
		t.CreatedAt = now
		t.UpdatedAt = now
		if t.Currency == "" {
			t.Currency = "USD"
		}
		if t.Category == "" {
			t.Category = core.Uncategorized
		}
		if t.Status == "" {
			t.Status = core.StatusPending
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.UserID, t.Description, t.Amount.Cents, t.Currency,
			t.Category, t.Confidence, string(t.Source), string(t.Status),
			t.OccurredOn.Format(dateLayout), now.Format(tsLayout), now.Format(tsLayout)); err != nil {
			return nil, fmt.Errorf("insert transaction batch row: %w", err)
		}
		out = append(out, t)
	}

	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch insert: %w", err)
	}

	slog.InfoContext(ctx, "Transaction batch saved", "count", len(out))
	return out, nil
}

// Get retrieves a single transaction by ID. Returns core.ErrNotFound when
// the row does not exist.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	const q = selectColumns + ` WHERE id = ?`

	row := r.db.QueryRowContext(ctx, q, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// ListFilter narrows List results. Zero values are ignored.
type ListFilter struct {
	UserID   string
	From     time.Time
	To       time.Time
	Category string
	Source   core.Source
	Status   core.Status
	Limit    int
}

// List returns transactions matching the filter, newest occurrence first.
func (r *SQLiteRepository) List(ctx context.Context, f ListFilter) ([]core.Transaction, error) {
	q := selectColumns + ` WHERE 1=1`
	var args []any

	if f.UserID != "" {
		q += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if !f.From.IsZero() {
		q += ` AND occurred_on >= ?`
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		q += ` AND occurred_on <= ?`
		args = append(args, f.To.Format(dateLayout))
	}
	if f.Category != "" {
		q += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Source != "" {
		q += ` AND source = ?`
		args = append(args, string(f.Source))
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(f.Status))
	}

	q += ` ORDER BY occurred_on DESC, created_at DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ListPending returns rows still awaiting categorization, oldest first so
// the worker drains imports in order. An empty userID matches all users.
func (r *SQLiteRepository) ListPending(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	q := selectColumns + ` WHERE status = ?`
	args := []any{string(core.StatusPending)}
	if userID != "" {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY created_at ASC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return out, nil
}

// SetCategory updates a row's category after categorization or an explicit
// user edit, and marks the row categorized.
func (r *SQLiteRepository) SetCategory(ctx context.Context, id, category string, confidence float64) error {
	const q = `
		UPDATE transactions
		SET category = ?, confidence = ?, status = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, q, category, confidence, string(core.StatusCategorized),
		time.Now().UTC().Format(tsLayout), id)
	if err != nil {
		return fmt.Errorf("set category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction categorized", "id", id, "category", category, "confidence", confidence)
	return nil
}

// Update rewrites a transaction's user-editable fields (description,
// amount, category, date). Category edits through here are explicit user
// actions, so confidence is pinned to 1.
func (r *SQLiteRepository) Update(ctx context.Context, t core.Transaction) error {
	const q = `
		UPDATE transactions
		SET description = ?, amount_cents = ?, category = ?, confidence = ?, status = ?, occurred_on = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, q, t.Description, t.Amount.Cents, t.Category, t.Confidence,
		string(core.StatusCategorized), t.OccurredOn.Format(dateLayout),
		time.Now().UTC().Format(tsLayout), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Delete removes a transaction. Deletion only happens on explicit user
// request.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

const selectColumns = `
	SELECT id, user_id, description, amount_cents, currency, category, confidence, source, status, occurred_on, created_at, updated_at
	FROM transactions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		source     string
		status     string
		occurredOn string
		createdAt  string
		updatedAt  string
	)

	err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount.Cents, &t.Currency,
		&t.Category, &t.Confidence, &source, &status, &occurredOn, &createdAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}

	t.Source = core.Source(source)
	t.Status = core.Status(status)

	d, err := time.Parse(dateLayout, occurredOn)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse occurred_on %q: %w", occurredOn, err)
	}
	t.OccurredOn = core.Date{Time: d}

	if t.CreatedAt, err = time.Parse(tsLayout, createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if t.UpdatedAt, err = time.Parse(tsLayout, updatedAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}

	return t, nil
}
