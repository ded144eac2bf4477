// Package merging combines ordered part notes into one final document.
//
// Three strategies exist. Simple concatenates the parts under a
// generated header and never calls a model. Thematic sends all parts
// to the advanced tier in one call and asks for a reorganized
// five-section document. Hierarchical first condenses groups of parts
// on the standard tier, then runs one thematic pass over the group
// summaries. The merge works only from the part notes, never from the
// original transcript.
package merging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/workspace"
)

// Strategy selects how part notes are combined.
type Strategy string

const (
	StrategyAuto         Strategy = "auto"
	StrategySimple       Strategy = "simple"
	StrategyThematic     Strategy = "thematic"
	StrategyHierarchical Strategy = "hierarchical"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultHierarchicalThreshold = 100000
	DefaultGroupSize             = 3
	DefaultTranslateTo           = "English"
)

// partSeparator joins part notes in prompts and in simple output.
const partSeparator = "\n\n---\n\n"

// Options configures a Merger. The zero value means auto strategy with
// the default threshold, group size, and translation language.
type Options struct {
	Strategy              Strategy
	HierarchicalThreshold int
	GroupSize             int
	TranslateTo           string

	// Logf receives progress and fallback messages. Optional.
	Logf func(format string, args ...any)
}

// Merger combines part notes using the configured strategy.
type Merger struct {
	client      llm.Client
	strategy    Strategy
	threshold   int
	groupSize   int
	translateTo string
	logf        func(format string, args ...any)
}

// New builds a Merger. A nil client restricts the merger to the simple
// strategy.
func New(client llm.Client, opts Options) *Merger {
	m := &Merger{
		client:      client,
		strategy:    opts.Strategy,
		threshold:   opts.HierarchicalThreshold,
		groupSize:   opts.GroupSize,
		translateTo: opts.TranslateTo,
		logf:        opts.Logf,
	}
	if m.strategy == "" {
		m.strategy = StrategyAuto
	}
	if m.threshold <= 0 {
		m.threshold = DefaultHierarchicalThreshold
	}
	if m.groupSize <= 0 {
		m.groupSize = DefaultGroupSize
	}
	if m.translateTo == "" {
		m.translateTo = DefaultTranslateTo
	}
	if m.logf == nil {
		m.logf = func(string, ...any) {}
	}
	return m
}

// Merge combines the ordered part notes into one document and reports
// which strategy actually produced it. A failed generation call falls
// back to the simple strategy so the caller always gets a document;
// only context cancellation and an empty part list surface as errors.
func (m *Merger) Merge(ctx context.Context, parts []string, meta workspace.Metadata) (string, Strategy, error) {
	if len(parts) == 0 {
		return "", "", errors.New("no part notes to merge")
	}

	strategy := m.strategy
	if strategy == StrategyAuto {
		switch {
		case m.client == nil:
			strategy = StrategySimple
		case totalSize(parts) > m.threshold:
			strategy = StrategyHierarchical
		default:
			strategy = StrategyThematic
		}
	}

	if strategy == StrategySimple {
		return Simple(parts, meta), StrategySimple, nil
	}
	if m.client == nil {
		m.logf("no generation client, falling back to simple merge")
		return Simple(parts, meta), StrategySimple, nil
	}

	var (
		merged string
		err    error
	)
	switch strategy {
	case StrategyThematic:
		merged, err = m.thematic(ctx, parts, meta)
	case StrategyHierarchical:
		merged, err = m.hierarchical(ctx, parts, meta)
	default:
		return "", "", fmt.Errorf("unknown merge strategy %q", strategy)
	}

	if err != nil {
		if ctx.Err() != nil {
			return "", strategy, err
		}
		m.logf("%s merge failed (%v), falling back to simple merge", strategy, err)
		return Simple(parts, meta), StrategySimple, nil
	}
	if strings.TrimSpace(merged) == "" {
		m.logf("%s merge returned an empty document, falling back to simple merge", strategy)
		return Simple(parts, meta), StrategySimple, nil
	}
	return merged, strategy, nil
}

func totalSize(parts []string) int {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	return total
}
