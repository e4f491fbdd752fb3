package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finsight/internal/amqp"
	"finsight/internal/categorize"
	"finsight/internal/core"
)

// Storage is the slice of the transaction store the worker needs.
type Storage interface {
	ListPending(ctx context.Context, userID string, limit int) ([]core.Transaction, error)
	SetCategory(ctx context.Context, id, category string, confidence float64) error
}

// CategorizeWorker drains pending transactions and assigns categories.
type CategorizeWorker struct {
	storage     Storage
	categorizer *categorize.Categorizer
	batchSize   int
}

func NewCategorizeWorker(storage Storage, categorizer *categorize.Categorizer, batchSize int) *CategorizeWorker {
	if batchSize < 1 {
		batchSize = 50
	}
	return &CategorizeWorker{
		storage:     storage,
		categorizer: categorizer,
		batchSize:   batchSize,
	}
}

// HandleJob processes a single categorize job message from AMQP.
func (w *CategorizeWorker) HandleJob(ctx context.Context, msg *amqp.CategorizeJobMessage) error {
	slog.InfoContext(ctx, "Processing categorize job",
		"user_id", msg.UserID,
		"batch_hint", msg.BatchHint)

	limit := w.batchSize
	if msg.BatchHint > 0 && msg.BatchHint < limit {
		limit = msg.BatchHint
	}

	// Keep draining until the user's pending rows are gone. Each pass is
	// bounded so a huge import can't starve other jobs forever, and counts
	// only stored rows so a pass that makes no progress stops the loop
	// instead of refetching the same failing batch.
	for {
		n, err := w.categorizeBatch(ctx, msg.UserID, limit)
		if err != nil {
			return fmt.Errorf("categorize batch for user %s: %w", msg.UserID, err)
		}
		if n < limit {
			return nil
		}
	}
}

// SweepPending categorizes pending rows across all users. This is a backup
// mechanism in case AMQP messages are lost.
func (w *CategorizeWorker) SweepPending(ctx context.Context) error {
	n, err := w.categorizeBatch(ctx, "", w.batchSize)
	if err != nil {
		return fmt.Errorf("sweep pending transactions: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Sweep categorized pending transactions", "count", n)
	}
	return nil
}

// StartupCheck drains any backlog left from missed messages or worker
// downtime before the consume loop starts.
func (w *CategorizeWorker) StartupCheck(ctx context.Context) error {
	total := 0
	for {
		n, err := w.categorizeBatch(ctx, "", w.batchSize*5)
		if err != nil {
			return fmt.Errorf("startup pending check: %w", err)
		}
		total += n
		if n < w.batchSize*5 {
			break
		}
	}

	if total == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
	} else {
		slog.InfoContext(ctx, "Startup categorization completed", "count", total)
	}
	return nil
}

// categorizeBatch fetches up to limit pending rows and categorizes each.
// Returns the number of rows successfully stored; per-row storage failures
// are logged and skipped so one bad row can't wedge the queue. Rows that
// fail stay pending for a later sweep.
func (w *CategorizeWorker) categorizeBatch(ctx context.Context, userID string, limit int) (int, error) {
	pending, err := w.storage.ListPending(ctx, userID, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	done := 0
	for _, t := range pending {
		res := w.categorizer.Categorize(ctx, t.Description, t.Amount)

		if err := w.storage.SetCategory(ctx, t.ID, res.Category, res.Confidence); err != nil {
			slog.ErrorContext(ctx, "Failed to store category",
				"id", t.ID, "category", res.Category, "error", err)
			continue
		}
		done++

		slog.DebugContext(ctx, "Transaction categorized",
			"id", t.ID,
			"category", res.Category,
			"tier", res.Tier,
			"confidence", res.Confidence)
	}

	return done, nil
}
