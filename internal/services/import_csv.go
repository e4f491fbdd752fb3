package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"finsight/internal/core"
)

// ImportError records a CSV line that could not be turned into a
// transaction. The import continues past bad lines.
type ImportError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// csvDateLayouts are tried in order when parsing the date column.
var csvDateLayouts = []string{"2006-01-02", "01/02/2006", "2006/01/02"}

// ParseCSV reads rows of the form date,description,amount. A header row is
// detected by a non-parseable date in the first column and skipped. Rows
// that fail validation are reported, not fatal.
func ParseCSV(r io.Reader) ([]core.Transaction, []ImportError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		out     []core.Transaction
		badRows []ImportError
		line    int
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		line++

		if len(record) < 3 {
			badRows = append(badRows, ImportError{Line: line, Reason: "expected 3 columns: date, description, amount"})
			continue
		}

		occurredOn, err := parseCSVDate(record[0])
		if err != nil {
			if line == 1 {
				// Header row.
				continue
			}
			badRows = append(badRows, ImportError{Line: line, Reason: fmt.Sprintf("invalid date %q", record[0])})
			continue
		}

		description := strings.TrimSpace(record[1])
		if description == "" {
			badRows = append(badRows, ImportError{Line: line, Reason: "empty description"})
			continue
		}

		cents, err := core.ParseSignedCents(record[2])
		if err != nil {
			badRows = append(badRows, ImportError{Line: line, Reason: fmt.Sprintf("invalid amount %q", record[2])})
			continue
		}

		out = append(out, core.Transaction{
			Description: description,
			Amount:      core.Money{Cents: cents},
			OccurredOn:  core.Date{Time: occurredOn},
			Source:      core.SourceImport,
			Status:      core.StatusPending,
		})
	}

	return out, badRows, nil
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
