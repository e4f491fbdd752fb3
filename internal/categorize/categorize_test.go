package categorize

import (
	"context"
	"errors"
	"testing"
	"time"

	"finsight/internal/core"
	"finsight/internal/rules"
)

// fakeClassifier returns canned results and records call counts.
type fakeClassifier struct {
	label string
	err   error
	calls int
	block bool
}

func (f *fakeClassifier) Classify(ctx context.Context, description string, amount core.Money) (string, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.label, f.err
}

func TestCategorizeRemoteTier(t *testing.T) {
	fc := &fakeClassifier{label: "Food & Dining"}
	c := New(fc, rules.Default(), Options{})

	res := c.Categorize(context.Background(), "mystery merchant", core.Money{Cents: -100})

	if res.Category != "Food & Dining" {
		t.Fatalf("expected remote label, got %q", res.Category)
	}
	if res.Confidence != RemoteConfidence {
		t.Fatalf("expected confidence %v, got %v", RemoteConfidence, res.Confidence)
	}
	if res.Tier != TierRemote {
		t.Fatalf("expected remote tier, got %q", res.Tier)
	}
}

func TestCategorizeRemoteFailureFallsBackToRules(t *testing.T) {
	fc := &fakeClassifier{err: errors.New("boom")}
	c := New(fc, rules.Default(), Options{RemoteRetries: 1})

	res := c.Categorize(context.Background(), "netflix subscription", core.Money{Cents: -1500})

	if res.Category != "Entertainment" || res.Tier != TierRules {
		t.Fatalf("expected rule fallback, got %+v", res)
	}
	if res.Confidence != RuleConfidence {
		t.Fatalf("expected confidence %v, got %v", RuleConfidence, res.Confidence)
	}
	if fc.calls != 2 {
		t.Fatalf("expected 2 attempts (retry once), got %d", fc.calls)
	}
}

func TestCategorizeUnknownRemoteLabelFallsThrough(t *testing.T) {
	fc := &fakeClassifier{label: "Cryptocurrency"}
	c := New(fc, rules.Default(), Options{})

	res := c.Categorize(context.Background(), "uber trip", core.Money{Cents: -800})

	if res.Category != "Transportation" || res.Tier != TierRules {
		t.Fatalf("unknown remote label should fall through to rules, got %+v", res)
	}
}

func TestCategorizeDefaultTier(t *testing.T) {
	fc := &fakeClassifier{err: errors.New("unavailable")}
	c := New(fc, rules.Default(), Options{})

	res := c.Categorize(context.Background(), "zzqx 8731", core.Money{Cents: -100})

	if res.Category != core.Uncategorized {
		t.Fatalf("expected %q, got %q", core.Uncategorized, res.Category)
	}
	if res.Confidence != DefaultConfidence || res.Tier != TierDefault {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCategorizeNilClassifierSkipsRemote(t *testing.T) {
	c := New(nil, rules.Default(), Options{})

	res := c.Categorize(context.Background(), "pharmacy pickup", core.Money{Cents: -2000})

	if res.Category != "Healthcare" || res.Tier != TierRules {
		t.Fatalf("expected rules tier with nil classifier, got %+v", res)
	}
}

func TestCategorizeRemoteTimeoutBounded(t *testing.T) {
	fc := &fakeClassifier{block: true}
	c := New(fc, rules.Default(), Options{RemoteTimeout: 20 * time.Millisecond, RemoteRetries: 0})

	start := time.Now()
	res := c.Categorize(context.Background(), "salary deposit", core.Money{Cents: 300000})
	elapsed := time.Since(start)

	if res.Category != "Salary" || res.Tier != TierRules {
		t.Fatalf("expected rules fallback after timeout, got %+v", res)
	}
	if elapsed > time.Second {
		t.Fatalf("timeout not bounded: took %v", elapsed)
	}
}

func TestCategorizeIsTotal(t *testing.T) {
	// No classifier, no rule match: the default tier still answers.
	c := New(nil, rules.NewTable([]rules.Rule{{Pattern: "never", Category: "Other"}}), Options{})

	for _, desc := range []string{"", "   ", "completely unknown"} {
		res := c.Categorize(context.Background(), desc, core.Money{Cents: -1})
		if res.Category == "" {
			t.Fatalf("Categorize returned empty category for %q", desc)
		}
	}
}

func TestCleanModelLabel(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"Food & Dining", "Food & Dining"},
		{"  Travel \n", "Travel"},
		{"\"Shopping\"", "Shopping"},
		{"```\nEntertainment\n```", "Entertainment"},
		{"Healthcare\nBecause pharmacies sell medicine.", "Healthcare"},
	}
	for _, tc := range cases {
		if got := cleanModelLabel(tc.in); got != tc.out {
			t.Fatalf("cleanModelLabel(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
