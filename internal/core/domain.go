package core

import (
	"errors"
	"strings"
	"time"
)

// Transaction sources. OCR-extracted rows arrive through the same ingest
// path as CSV imports; the extraction itself happens upstream.
const (
	SourceManual Source = "manual"
	SourceImport Source = "import"
	SourceOCR    Source = "ocr"
)

// Categorization statuses. Pending rows carry the Uncategorized label until
// the worker finishes them, so every stored row always has a category.
const (
	StatusCategorized Status = "categorized"
	StatusPending     Status = "pending"
)

// Uncategorized is the terminal fallback label.
const Uncategorized = "Uncategorized"

type (
	Source string

	Status string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		UserID      string
		Description string
		Amount      Money
		Currency    string
		Category    string
		Confidence  float64
		Source      Source
		Status      Status
		OccurredOn  Date
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyUserID      = errors.New("empty user id")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidSource    = errors.New("invalid source")
	ErrNotFound         = errors.New("transaction not found")
)

func (s Source) Validate() error {
	switch s {
	case SourceManual, SourceImport, SourceOCR:
		return nil
	}
	return ErrInvalidSource
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (m Money) Validate() error {
	if m.Cents == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsIncome reports whether the amount is money in.
func (m Money) IsIncome() bool {
	return m.Cents > 0
}

// Abs returns the absolute value of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.OccurredOn.Validate(); err != nil {
		return err
	}
	if err := t.Source.Validate(); err != nil {
		return err
	}
	return nil
}
