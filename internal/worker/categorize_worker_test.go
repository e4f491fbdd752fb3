package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"finsight/internal/amqp"
	"finsight/internal/categorize"
	"finsight/internal/core"
	"finsight/internal/rules"
	"finsight/internal/storage"
)

func newTestWorker(t *testing.T, batchSize int) (*CategorizeWorker, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	categorizer := categorize.New(nil, rules.Default(), categorize.Options{})
	return NewCategorizeWorker(repo, categorizer, batchSize), repo
}

func seedPending(t *testing.T, repo *storage.SQLiteRepository, userID string, descriptions ...string) {
	t.Helper()
	batch := make([]core.Transaction, 0, len(descriptions))
	for i, desc := range descriptions {
		batch = append(batch, core.Transaction{
			UserID:      userID,
			Description: desc,
			Amount:      core.Money{Cents: int64(-100 * (i + 1))},
			Source:      core.SourceImport,
			OccurredOn:  core.NewDate(2026, 1, i+1),
		})
	}
	if _, err := repo.CreateBatch(context.Background(), batch); err != nil {
		t.Fatalf("seed pending: %v", err)
	}
}

func TestHandleJobCategorizesPending(t *testing.T) {
	w, repo := newTestWorker(t, 10)
	ctx := context.Background()

	seedPending(t, repo, "u1", "netflix subscription", "uber trip", "zzqx 8731")

	err := w.HandleJob(ctx, &amqp.CategorizeJobMessage{UserID: "u1", BatchHint: 10})
	if err != nil {
		t.Fatalf("handle job: %v", err)
	}

	pending, err := repo.ListPending(ctx, "u1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected all rows categorized, %d still pending", len(pending))
	}

	rows, err := repo.List(ctx, storage.ListFilter{UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	byDesc := make(map[string]core.Transaction)
	for _, r := range rows {
		byDesc[r.Description] = r
	}
	if got := byDesc["netflix subscription"].Category; got != "Entertainment" {
		t.Fatalf("netflix row categorized as %q", got)
	}
	if got := byDesc["uber trip"].Category; got != "Transportation" {
		t.Fatalf("uber row categorized as %q", got)
	}
	if got := byDesc["zzqx 8731"]; got.Category != core.Uncategorized || got.Confidence != 0 {
		t.Fatalf("unmatched row should stay Uncategorized with confidence 0: %+v", got)
	}
}

func TestHandleJobDrainsBeyondBatchSize(t *testing.T) {
	w, repo := newTestWorker(t, 2)
	ctx := context.Background()

	descs := make([]string, 7)
	for i := range descs {
		descs[i] = fmt.Sprintf("coffee %d", i)
	}
	seedPending(t, repo, "u1", descs...)

	if err := w.HandleJob(ctx, &amqp.CategorizeJobMessage{UserID: "u1"}); err != nil {
		t.Fatalf("handle job: %v", err)
	}

	pending, err := repo.ListPending(ctx, "u1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected drain past batch size, %d still pending", len(pending))
	}
}

func TestSweepPendingCoversAllUsers(t *testing.T) {
	w, repo := newTestWorker(t, 10)
	ctx := context.Background()

	seedPending(t, repo, "u1", "grocery run")
	seedPending(t, repo, "u2", "parking fee")

	if err := w.SweepPending(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	pending, err := repo.ListPending(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected sweep to cover all users, %d still pending", len(pending))
	}
}

func TestStartupCheckEmptyBacklog(t *testing.T) {
	w, _ := newTestWorker(t, 10)
	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("startup check on empty db: %v", err)
	}
}

// brokenStore always fails to persist categories, so every row it lists
// stays pending.
type brokenStore struct {
	rows      []core.Transaction
	listCalls int
}

func (s *brokenStore) ListPending(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	s.listCalls++
	if s.listCalls > 3 {
		return nil, errors.New("pending rows refetched after a pass without progress")
	}
	if limit > 0 && limit < len(s.rows) {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func (s *brokenStore) SetCategory(ctx context.Context, id, category string, confidence float64) error {
	return errors.New("disk full")
}

func TestHandleJobStopsWithoutProgress(t *testing.T) {
	store := &brokenStore{rows: []core.Transaction{
		{ID: "t1", UserID: "u1", Description: "netflix", Amount: core.Money{Cents: -1500}},
		{ID: "t2", UserID: "u1", Description: "uber", Amount: core.Money{Cents: -900}},
	}}
	categorizer := categorize.New(nil, rules.Default(), categorize.Options{})
	w := NewCategorizeWorker(store, categorizer, 2)

	err := w.HandleJob(context.Background(), &amqp.CategorizeJobMessage{UserID: "u1", BatchHint: 2})
	if err != nil {
		t.Fatalf("handle job: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected a single pass over the failing batch, got %d", store.listCalls)
	}
}
