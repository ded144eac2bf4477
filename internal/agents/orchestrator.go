package agents

import (
	"context"
	"fmt"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/revision"
	"github.com/jonathan/notesmith/internal/templates"
)

// Options bound the generation loop. Zero values take the revision
// loop defaults.
type Options struct {
	MaxAttempts int
	MinScore    int

	// Logf receives progress messages. Optional.
	Logf func(format string, args ...any)
}

// Provenance records which role spent which tokens.
type Provenance struct {
	Analyst llm.Usage
	Writer  llm.Usage
	Critic  llm.Usage
}

// Total sums the per-role usage.
func (p Provenance) Total() llm.Usage {
	return llm.Usage{
		PromptTokens: p.Analyst.PromptTokens + p.Writer.PromptTokens + p.Critic.PromptTokens,
		OutputTokens: p.Analyst.OutputTokens + p.Writer.OutputTokens + p.Critic.OutputTokens,
		Calls:        p.Analyst.Calls + p.Writer.Calls + p.Critic.Calls,
	}
}

// Outcome is the final product of the three-role pipeline.
type Outcome struct {
	Note       string
	Analysis   *Analysis
	Critique   *Critique
	Attempts   int
	Passed     bool
	Provenance Provenance
}

// Orchestrator drives analyst, writer, and critic. Termination follows
// the revision loop contract: pass at or above the minimum score, best
// draft wins on exhaustion, quality failure is never an error.
type Orchestrator struct {
	client      llm.Client
	analyst     *Analyst
	writer      *Writer
	critic      *Critic
	maxAttempts int
	logf        func(format string, args ...any)
}

func NewOrchestrator(client llm.Client, opts Options) *Orchestrator {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = revision.DefaultMaxAttempts
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = revision.DefaultMinScore
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Orchestrator{
		client:      client,
		analyst:     NewAnalyst(client),
		writer:      NewWriter(client),
		critic:      NewCritic(client, minScore),
		maxAttempts: maxAttempts,
		logf:        logf,
	}
}

// GenerateNote runs analyze once, draft once, then critique and revise
// until the critique passes or attempts run out.
func (o *Orchestrator) GenerateNote(ctx context.Context, sourceText string, tmpl *templates.Template, sourceType, embedID string) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tmpl == nil {
		tmpl = templates.GetOrDefault("")
	}

	outcome := &Outcome{}

	o.logf("analyzing source (%d chars)", len(sourceText))
	var analysis *Analysis
	err := o.measure(&outcome.Provenance.Analyst, func() error {
		var err error
		analysis, err = o.analyst.Analyze(ctx, sourceText, sourceType)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("analyst: %w", err)
	}
	outcome.Analysis = analysis
	o.logf("analysis found %d sections, %d concepts", len(analysis.Structure), len(analysis.KeyConcepts))

	o.logf("drafting %s note", tmpl.Name)
	var draft string
	err = o.measure(&outcome.Provenance.Writer, func() error {
		var err error
		draft, err = o.writer.Draft(ctx, analysis, sourceText, tmpl, embedID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}

	best := draft
	var bestCritique *Critique
	bestScore := -1

	attempt := 0
	for attempt = 1; attempt <= o.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var critique *Critique
		err := o.measure(&outcome.Provenance.Critic, func() error {
			var err error
			critique, err = o.critic.Critique(ctx, draft, sourceText, analysis, tmpl, sourceType)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("critic: %w", err)
		}
		o.logf("attempt %d/%d scored %d/100", attempt, o.maxAttempts, critique.Score)

		// Strictly better only, so ties keep the earlier draft.
		if critique.Score > bestScore {
			bestScore = critique.Score
			best = draft
			bestCritique = critique
		}

		if critique.Passed {
			outcome.Passed = true
			break
		}

		if attempt < o.maxAttempts {
			o.logf("revising draft")
			var revised string
			err := o.measure(&outcome.Provenance.Writer, func() error {
				var err error
				revised, err = o.writer.Revise(ctx, draft, critique, sourceText)
				return err
			})
			switch {
			case err == nil:
				draft = revised
			case llm.IsRetryable(err):
				// Keep the current draft; the next critique sees it again.
				o.logf("revision failed (%v), keeping the current draft", err)
			default:
				return nil, fmt.Errorf("writer: %w", err)
			}
		}
	}
	if attempt > o.maxAttempts {
		attempt = o.maxAttempts
	}

	outcome.Note = best
	outcome.Critique = bestCritique
	outcome.Attempts = attempt
	return outcome, nil
}

// measure attributes the client usage delta around one call to a role.
func (o *Orchestrator) measure(usage *llm.Usage, f func() error) error {
	before := o.client.Usage()
	err := f()
	after := o.client.Usage()
	usage.PromptTokens += after.PromptTokens - before.PromptTokens
	usage.OutputTokens += after.OutputTokens - before.OutputTokens
	usage.Calls += after.Calls - before.Calls
	return err
}
