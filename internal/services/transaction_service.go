package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"finsight/internal/amqp"
	"finsight/internal/categorize"
	"finsight/internal/core"
	"finsight/internal/storage"
)

// TransactionService orchestrates transaction operations across SQLite,
// the categorizer, and AMQP.
type TransactionService struct {
	storage     *storage.SQLiteRepository
	categorizer *categorize.Categorizer
	amqpClient  *amqp.Client
	batchHint   int
}

func NewTransactionService(storage *storage.SQLiteRepository, categorizer *categorize.Categorizer, amqpClient *amqp.Client, batchHint int) *TransactionService {
	if batchHint < 1 {
		batchHint = 50
	}
	return &TransactionService{
		storage:     storage,
		categorizer: categorizer,
		amqpClient:  amqpClient,
		batchHint:   batchHint,
	}
}

// Create validates and saves a single transaction. When the caller did not
// supply a category, the transaction is categorized inline so the response
// already carries the assigned label.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.Source == "" {
		t.Source = core.SourceManual
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if t.Category == "" {
		res := s.categorizer.Categorize(ctx, t.Description, t.Amount)
		t.Category = res.Category
		t.Confidence = res.Confidence
	} else {
		// Caller-supplied categories are explicit user choices.
		t.Confidence = 1.0
	}
	t.Status = core.StatusCategorized

	saved, err := s.storage.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	return saved, nil
}

// Import parses CSV rows from r, stores them as pending transactions, and
// publishes a categorize job so the worker picks them up. Returns the stored
// rows and the per-line parse errors.
func (s *TransactionService) Import(ctx context.Context, userID string, r io.Reader) ([]core.Transaction, []ImportError, error) {
	if userID == "" {
		return nil, nil, core.ErrEmptyUserID
	}

	parsed, parseErrs, err := ParseCSV(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse import file: %w", err)
	}
	if len(parsed) == 0 {
		return []core.Transaction{}, parseErrs, nil
	}

	for i := range parsed {
		parsed[i].UserID = userID
		parsed[i].Source = core.SourceImport
		parsed[i].Status = core.StatusPending
	}

	saved, err := s.storage.CreateBatch(ctx, parsed)
	if err != nil {
		return nil, parseErrs, fmt.Errorf("save imported transactions: %w", err)
	}

	s.publishCategorizeJob(ctx, userID)

	slog.InfoContext(ctx, "Import accepted",
		"user_id", userID,
		"rows", len(saved),
		"skipped", len(parseErrs))

	return saved, parseErrs, nil
}

// Recategorize re-queues a user's pending transactions. Used after rule
// table changes or when an earlier job was lost.
func (s *TransactionService) Recategorize(ctx context.Context, userID string) (int, error) {
	pending, err := s.storage.ListPending(ctx, userID, 0)
	if err != nil {
		return 0, fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	s.publishCategorizeJob(ctx, userID)
	return len(pending), nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.storage.Get(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, f storage.ListFilter) ([]core.Transaction, error) {
	return s.storage.List(ctx, f)
}

// Update rewrites user-editable fields. A category set here is an explicit
// user correction, so confidence is pinned to 1.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	existing, err := s.storage.Get(ctx, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}

	if t.Description == "" {
		t.Description = existing.Description
	}
	if t.Amount.Cents == 0 {
		t.Amount = existing.Amount
	}
	if t.OccurredOn.IsZero() {
		t.OccurredOn = existing.OccurredOn
	}
	if t.Category == "" {
		t.Category = existing.Category
		t.Confidence = existing.Confidence
	} else {
		t.Confidence = 1.0
	}
	t.UserID = existing.UserID
	t.Source = existing.Source

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.storage.Update(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return s.storage.Get(ctx, t.ID)
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	return s.storage.Delete(ctx, id)
}

func (s *TransactionService) publishCategorizeJob(ctx context.Context, userID string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, pending rows wait for the sweep")
		return
	}
	if err := s.amqpClient.PublishCategorizeJob(ctx, userID, s.batchHint); err != nil {
		slog.ErrorContext(ctx, "Failed to publish categorize job",
			"user_id", userID, "error", err)
		// Don't fail the request - rows are saved and the worker sweep
		// will pick them up.
	}
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
