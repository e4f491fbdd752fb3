// Package categorize assigns category labels to transactions.
//
// This file implements the Strategy Pattern for the categorization fallback
// chain. Each tier (remote model, keyword rules, default) has its own
// strategy; tiers are tried in order until one produces a label, so the
// branching lives here rather than scattered across call sites.
package categorize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finsight/internal/core"
	"finsight/internal/rules"
)

// Confidence scores per tier.
const (
	RemoteConfidence  = 1.0
	RuleConfidence    = 0.6
	DefaultConfidence = 0.0
)

// Tier identifies which strategy produced a result.
type Tier string

const (
	TierRemote  Tier = "remote"
	TierRules   Tier = "rules"
	TierDefault Tier = "default"
)

// Result is the outcome of categorizing one transaction. Category is never
// empty.
type Result struct {
	Category   string
	Confidence float64
	Tier       Tier
}

// Strategy is one categorization tier. ok=false means the tier could not
// produce a label and the next tier should be tried.
type Strategy interface {
	Tier() Tier
	Categorize(ctx context.Context, description string, amount core.Money) (Result, bool)
}

// Classifier is a remote text-classification endpoint. Implementations must
// honor ctx cancellation.
type Classifier interface {
	Classify(ctx context.Context, description string, amount core.Money) (string, error)
}

// Categorizer runs the ordered fallback chain. It is safe for concurrent
// use: strategies share no mutable state.
type Categorizer struct {
	tiers []Strategy
}

// Options tune the remote tier. Zero values fall back to the defaults below.
type Options struct {
	RemoteTimeout time.Duration
	RemoteRetries int
}

const (
	defaultRemoteTimeout = 2 * time.Second
	defaultRemoteRetries = 1
)

// New builds a categorizer with the standard tier order: remote first, rules
// second, default last. A nil classifier disables the remote tier.
func New(classifier Classifier, table *rules.Table, opts Options) *Categorizer {
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = defaultRemoteTimeout
	}
	if opts.RemoteRetries < 0 {
		opts.RemoteRetries = defaultRemoteRetries
	}

	var tiers []Strategy
	if classifier != nil {
		tiers = append(tiers, &remoteStrategy{
			classifier: classifier,
			timeout:    opts.RemoteTimeout,
			retries:    opts.RemoteRetries,
			known:      labelSet(rules.AllLabels),
		})
	}
	tiers = append(tiers, &ruleStrategy{table: table}, defaultStrategy{})

	return &Categorizer{tiers: tiers}
}

// Categorize assigns a category to a transaction description. It is total:
// it never fails and never returns an empty category. Remote errors are
// logged and absorbed by falling through to the next tier.
func (c *Categorizer) Categorize(ctx context.Context, description string, amount core.Money) Result {
	for _, tier := range c.tiers {
		if res, ok := tier.Categorize(ctx, description, amount); ok {
			return res
		}
	}
	// Unreachable: defaultStrategy always succeeds.
	return Result{Category: core.Uncategorized, Confidence: DefaultConfidence, Tier: TierDefault}
}

// remoteStrategy calls the remote classifier under a bounded timeout with a
// single retry. Any failure, timeout, or unknown label falls through.
type remoteStrategy struct {
	classifier Classifier
	timeout    time.Duration
	retries    int
	known      map[string]bool
}

func (s *remoteStrategy) Tier() Tier { return TierRemote }

func (s *remoteStrategy) Categorize(ctx context.Context, description string, amount core.Money) (Result, bool) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		label, err := s.classifyOnce(ctx, description, amount)
		if err != nil {
			lastErr = err
			continue
		}
		if !s.known[label] {
			slog.WarnContext(ctx, "Remote classifier returned unknown label",
				"label", label,
				"description", description)
			return Result{}, false
		}
		return Result{Category: label, Confidence: RemoteConfidence, Tier: TierRemote}, true
	}

	slog.WarnContext(ctx, "Remote classification failed, falling back to rules",
		"error", lastErr,
		"attempts", s.retries+1)
	return Result{}, false
}

func (s *remoteStrategy) classifyOnce(ctx context.Context, description string, amount core.Money) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	label, err := s.classifier.Classify(cctx, description, amount)
	if err != nil {
		return "", fmt.Errorf("remote classify: %w", err)
	}
	return label, nil
}

// ruleStrategy matches the description against the static keyword table.
type ruleStrategy struct {
	table *rules.Table
}

func (s *ruleStrategy) Tier() Tier { return TierRules }

func (s *ruleStrategy) Categorize(_ context.Context, description string, _ core.Money) (Result, bool) {
	if s.table == nil {
		return Result{}, false
	}
	category, ok := s.table.Match(description)
	if !ok {
		return Result{}, false
	}
	return Result{Category: category, Confidence: RuleConfidence, Tier: TierRules}, true
}

// defaultStrategy always succeeds with the Uncategorized label.
type defaultStrategy struct{}

func (defaultStrategy) Tier() Tier { return TierDefault }

func (defaultStrategy) Categorize(context.Context, string, core.Money) (Result, bool) {
	return Result{Category: core.Uncategorized, Confidence: DefaultConfidence, Tier: TierDefault}, true
}

func labelSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}
