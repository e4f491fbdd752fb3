// Package rules holds the static keyword table used by the rule-match tier
// of the categorizer. The table is built once at startup and never mutated,
// so concurrent lookups need no locking.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Rule maps a keyword pattern to a category label. Matching is
// case-insensitive substring matching against the transaction description.
type Rule struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

// Table is an ordered, immutable set of rules. Priority is slice order:
// the first matching rule wins.
type Table struct {
	rules  []Rule
	labels []string
}

// NewTable builds a table from the given rules. The slice is copied so
// later mutation of the caller's slice cannot affect the table.
func NewTable(rules []Rule) *Table {
	copied := make([]Rule, len(rules))
	copy(copied, rules)

	seen := make(map[string]bool)
	var labels []string
	for _, r := range copied {
		if !seen[r.Category] {
			seen[r.Category] = true
			labels = append(labels, r.Category)
		}
	}

	return &Table{rules: copied, labels: labels}
}

// Load reads a rule table from a JSON file. An empty path yields the
// default table.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}
	return NewTable(rules), nil
}

// Match returns the category of the first rule whose pattern occurs in the
// description, and whether any rule matched.
func (t *Table) Match(description string) (string, bool) {
	desc := strings.ToLower(description)
	for _, r := range t.rules {
		if strings.Contains(desc, strings.ToLower(r.Pattern)) {
			return r.Category, true
		}
	}
	return "", false
}

// Labels returns the distinct category labels known to the table, in first
// appearance order.
func (t *Table) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// Default returns the built-in rule table. Rules for the same category are
// grouped; earlier groups take precedence when a description matches more
// than one pattern (e.g. "gas station" resolves to Transportation, not
// Utilities).
func Default() *Table {
	return NewTable([]Rule{
		// Food & Dining
		{Pattern: "restaurant", Category: "Food & Dining"},
		{Pattern: "food", Category: "Food & Dining"},
		{Pattern: "dining", Category: "Food & Dining"},
		{Pattern: "cafe", Category: "Food & Dining"},
		{Pattern: "coffee", Category: "Food & Dining"},
		{Pattern: "pizza", Category: "Food & Dining"},
		{Pattern: "burger", Category: "Food & Dining"},
		{Pattern: "grocery", Category: "Food & Dining"},

		// Transportation
		{Pattern: "uber", Category: "Transportation"},
		{Pattern: "lyft", Category: "Transportation"},
		{Pattern: "taxi", Category: "Transportation"},
		{Pattern: "gas", Category: "Transportation"},
		{Pattern: "fuel", Category: "Transportation"},
		{Pattern: "parking", Category: "Transportation"},
		{Pattern: "metro", Category: "Transportation"},
		{Pattern: "bus", Category: "Transportation"},

		// Shopping
		{Pattern: "amazon", Category: "Shopping"},
		{Pattern: "walmart", Category: "Shopping"},
		{Pattern: "target", Category: "Shopping"},
		{Pattern: "shop", Category: "Shopping"},
		{Pattern: "store", Category: "Shopping"},
		{Pattern: "mall", Category: "Shopping"},

		// Entertainment
		{Pattern: "netflix", Category: "Entertainment"},
		{Pattern: "spotify", Category: "Entertainment"},
		{Pattern: "movie", Category: "Entertainment"},
		{Pattern: "game", Category: "Entertainment"},
		{Pattern: "concert", Category: "Entertainment"},
		{Pattern: "theater", Category: "Entertainment"},

		// Healthcare
		{Pattern: "doctor", Category: "Healthcare"},
		{Pattern: "hospital", Category: "Healthcare"},
		{Pattern: "pharmacy", Category: "Healthcare"},
		{Pattern: "medical", Category: "Healthcare"},
		{Pattern: "health", Category: "Healthcare"},

		// Utilities
		{Pattern: "electric", Category: "Utilities"},
		{Pattern: "water", Category: "Utilities"},
		{Pattern: "internet", Category: "Utilities"},
		{Pattern: "phone", Category: "Utilities"},
		{Pattern: "utility", Category: "Utilities"},

		// Housing
		{Pattern: "rent", Category: "Housing"},
		{Pattern: "mortgage", Category: "Housing"},
		{Pattern: "home", Category: "Housing"},
		{Pattern: "apartment", Category: "Housing"},

		// Salary
		{Pattern: "salary", Category: "Salary"},
		{Pattern: "payroll", Category: "Salary"},
		{Pattern: "income", Category: "Salary"},
		{Pattern: "deposit", Category: "Salary"},

		// Remaining labels each get one or two obvious keywords; anything
		// subtler is the remote tier's job.
		{Pattern: "insurance", Category: "Insurance"},
		{Pattern: "tuition", Category: "Education"},
		{Pattern: "flight", Category: "Travel"},
		{Pattern: "hotel", Category: "Travel"},
		{Pattern: "dividend", Category: "Investment"},
		{Pattern: "invoice", Category: "Freelance"},
		{Pattern: "gift", Category: "Gifts"},
	})
}

// AllLabels is the full label set the remote classifier may answer with.
// It is a superset of the default table's labels.
var AllLabels = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Healthcare",
	"Utilities",
	"Housing",
	"Insurance",
	"Education",
	"Travel",
	"Investment",
	"Salary",
	"Freelance",
	"Gifts",
	"Other",
}
