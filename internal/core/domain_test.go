package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		UserID:      "u1",
		Description: "coffee at corner cafe",
		Amount:      Money{Cents: -450},
		Source:      SourceManual,
		OccurredOn:  NewDate(2026, 3, 15),
	}
}

func TestTransactionValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := validTransaction().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty user id", func(t *testing.T) {
		tx := validTransaction()
		tx.UserID = "  "
		if err := tx.Validate(); !errors.Is(err, ErrEmptyUserID) {
			t.Fatalf("expected ErrEmptyUserID, got %v", err)
		}
	})

	t.Run("empty description", func(t *testing.T) {
		tx := validTransaction()
		tx.Description = "   "
		if err := tx.Validate(); !errors.Is(err, ErrEmptyDescription) {
			t.Fatalf("expected ErrEmptyDescription, got %v", err)
		}
	})

	t.Run("description too long", func(t *testing.T) {
		tx := validTransaction()
		tx.Description = strings.Repeat("x", 201)
		if err := tx.Validate(); err == nil {
			t.Fatal("expected error for 201-char description")
		}
	})

	t.Run("zero amount", func(t *testing.T) {
		tx := validTransaction()
		tx.Amount = Money{Cents: 0}
		if err := tx.Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("zero date", func(t *testing.T) {
		tx := validTransaction()
		tx.OccurredOn = Date{}
		if err := tx.Validate(); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate, got %v", err)
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		tx := validTransaction()
		tx.Source = "carrier_pigeon"
		if err := tx.Validate(); !errors.Is(err, ErrInvalidSource) {
			t.Fatalf("expected ErrInvalidSource, got %v", err)
		}
	})
}

func TestPeriod(t *testing.T) {
	t.Run("month period bounds", func(t *testing.T) {
		p := MonthPeriod(2026, 2)
		if p.From.Day() != 1 || p.From.Month() != time.February {
			t.Fatalf("unexpected from: %v", p.From)
		}
		if !p.Contains(time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC)) {
			t.Fatal("last day of month should be contained")
		}
		if p.Contains(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatal("first day of next month should not be contained")
		}
	})

	t.Run("contains is inclusive", func(t *testing.T) {
		p := Period{
			From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		}
		if !p.Contains(p.From) || !p.Contains(p.To) {
			t.Fatal("bounds should be inclusive")
		}
	})

	t.Run("validate rejects inverted range", func(t *testing.T) {
		p := Period{
			From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		if err := p.Validate(); err == nil {
			t.Fatal("expected error for end before start")
		}
	})
}
