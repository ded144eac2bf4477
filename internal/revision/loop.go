// Package revision drives the attempt-verify-revise loop that gates
// generated notes on a minimum quality score.
package revision

import (
	"context"
	"fmt"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/verification"
)

// State identifies where the loop is in its lifecycle.
type State string

const (
	StateAttempting State = "attempting"
	StateScoring    State = "scoring"
	StatePassed     State = "passed"
	StateRevising   State = "revising"
	StateExhausted  State = "exhausted"
)

// Loop bounds used when the caller leaves them zero.
const (
	DefaultMaxAttempts = 3
	DefaultMinScore    = 80
)

// Generator produces one candidate note from a prompt.
type Generator func(ctx context.Context, prompt string) (string, error)

// Scorer verifies one candidate note.
type Scorer func(ctx context.Context, candidate string) verification.Score

// Loop regenerates a note until it scores at or above MinScore or the
// attempt budget runs out. Attempts past the first carry a feedback
// block describing what the previous attempt got wrong.
type Loop struct {
	MaxAttempts int
	MinScore    int

	// OnState observes transitions; attempt counts from 1. Optional.
	OnState func(state State, attempt int)
}

// Outcome reports the best candidate the loop saw.
type Outcome struct {
	Note     string
	Score    verification.Score
	Attempts int
	Passed   bool
	State    State
}

// Run executes the loop. Quality failures never produce an error; the
// error return is reserved for infrastructure failures (context
// cancellation, non-retryable generation errors, or every attempt
// failing to generate). Transient generation failures consume an
// attempt and continue.
func (l *Loop) Run(ctx context.Context, generate Generator, score Scorer, basePrompt string) (*Outcome, error) {
	maxAttempts := l.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	minScore := l.MinScore
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	outcome := &Outcome{State: StateExhausted}
	best := -1
	var lastErr error

	prompt := basePrompt
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		l.transition(StateAttempting, attempt)
		outcome.Attempts = attempt

		candidate, err := generate(ctx, prompt)
		if err != nil {
			if !llm.IsRetryable(err) {
				return outcome, fmt.Errorf("attempt %d: %w", attempt, err)
			}
			// Transient failure burns the attempt; the prompt stays as it was.
			lastErr = err
			continue
		}

		l.transition(StateScoring, attempt)
		result := score(ctx, candidate)

		// Strictly better only, so ties keep the earliest attempt.
		if result.Total > best {
			best = result.Total
			outcome.Note = candidate
			outcome.Score = result
		}

		if result.Total >= minScore {
			outcome.Passed = true
			outcome.State = StatePassed
			l.transition(StatePassed, attempt)
			return outcome, nil
		}

		if attempt < maxAttempts {
			l.transition(StateRevising, attempt)
			prompt = basePrompt + verification.FormatFeedback(result)
		}
	}

	l.transition(StateExhausted, maxAttempts)
	if best < 0 {
		return outcome, fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
	}
	return outcome, nil
}

func (l *Loop) transition(state State, attempt int) {
	if l.OnState != nil {
		l.OnState(state, attempt)
	}
}
