package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTableMatch(t *testing.T) {
	table := Default()

	cases := []struct {
		desc     string
		category string
		ok       bool
	}{
		{"Starbucks coffee", "Food & Dining", true},
		{"UBER trip downtown", "Transportation", true},
		{"NETFLIX.COM subscription", "Entertainment", true},
		{"Monthly rent payment", "Housing", true},
		{"Payroll deposit ACME", "Salary", true},
		{"flight to Lisbon", "Travel", true},
		{"cryptic merchant 938271", "", false},
	}

	for _, tc := range cases {
		got, ok := table.Match(tc.desc)
		if ok != tc.ok || got != tc.category {
			t.Fatalf("Match(%q) = (%q, %v), want (%q, %v)", tc.desc, got, ok, tc.category, tc.ok)
		}
	}
}

func TestTableMatchPriority(t *testing.T) {
	// "gas" appears before any Utilities pattern, so a gas station resolves
	// to Transportation even though "gas" could plausibly mean natural gas.
	got, ok := Default().Match("Shell gas station")
	if !ok || got != "Transportation" {
		t.Fatalf("expected Transportation, got (%q, %v)", got, ok)
	}
}

func TestTableMatchCaseInsensitive(t *testing.T) {
	got, ok := Default().Match("AMAZON MARKETPLACE")
	if !ok || got != "Shopping" {
		t.Fatalf("expected Shopping, got (%q, %v)", got, ok)
	}
}

func TestNewTableCopiesInput(t *testing.T) {
	src := []Rule{{Pattern: "book", Category: "Shopping"}}
	table := NewTable(src)
	src[0].Category = "Entertainment"

	got, ok := table.Match("bookstore purchase")
	if !ok || got != "Shopping" {
		t.Fatalf("table should be unaffected by caller mutation, got (%q, %v)", got, ok)
	}
}

func TestTableLabels(t *testing.T) {
	table := NewTable([]Rule{
		{Pattern: "a", Category: "One"},
		{Pattern: "b", Category: "Two"},
		{Pattern: "c", Category: "One"},
	})
	labels := table.Labels()
	if len(labels) != 2 || labels[0] != "One" || labels[1] != "Two" {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		table, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Len() == 0 {
			t.Fatal("default table should not be empty")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.json")
		content := `[{"pattern":"sushi","category":"Food & Dining"}]`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		table, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, ok := table.Match("sushi place"); !ok || got != "Food & Dining" {
			t.Fatalf("unexpected match: (%q, %v)", got, ok)
		}
	})

	t.Run("empty rules file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.json")
		if err := os.WriteFile(path, []byte(`[]`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatal("expected error for empty rules file")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load("/nonexistent/rules.json"); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
