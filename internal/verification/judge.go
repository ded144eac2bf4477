package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/prompts"
	"github.com/jonathan/notesmith/internal/schemas"
)

// NeutralFaithfulness substitutes for the faithfulness sub-score when
// no judge verdict is available.
const NeutralFaithfulness = 80

// maxJudgeSourceLen bounds how much reference material goes into the
// judge prompt. Longer sources are truncated.
const maxJudgeSourceLen = 10000

// Judge renders a faithfulness verdict for a candidate note against
// its reference material.
type Judge interface {
	Judge(ctx context.Context, candidate, reference string) (*Verdict, error)
}

// Verdict is a judge's assessment of one candidate.
type Verdict struct {
	Score          int
	Hallucinations []string
	MissingPoints  []string
	Suggestions    []string
}

// issueLines renders the verdict's findings as feedback issues,
// keeping only the first few of each kind.
func (v *Verdict) issueLines() []string {
	var issues []string
	if len(v.Hallucinations) > 0 {
		issues = append(issues, "Content not in the source: "+strings.Join(firstN(v.Hallucinations, 3), ", "))
	}
	if len(v.MissingPoints) > 0 {
		issues = append(issues, "Missing key points: "+strings.Join(firstN(v.MissingPoints, 3), ", "))
	}
	return issues
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// JudgeError reports a failure to obtain a usable verdict.
type JudgeError struct {
	Reason string
	Cause  error
}

func (e *JudgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("faithfulness judge: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("faithfulness judge: %s", e.Reason)
}

func (e *JudgeError) Unwrap() error {
	return e.Cause
}

// LLMJudge asks the lite model tier whether a note stays faithful to
// its source, expecting a schema-validated JSON verdict.
type LLMJudge struct {
	client llm.Client
}

// NewLLMJudge wraps an LLM client as a faithfulness judge.
func NewLLMJudge(client llm.Client) *LLMJudge {
	return &LLMJudge{client: client}
}

func (j *LLMJudge) Judge(ctx context.Context, candidate, reference string) (*Verdict, error) {
	source := reference
	if len(source) > maxJudgeSourceLen {
		source = source[:maxJudgeSourceLen] + "\n... (truncated)"
	}

	prompt := prompts.MustFormat("verification.json", "faithfulness", map[string]string{
		"Source": source,
		"Note":   candidate,
	})

	raw, err := j.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &JudgeError{Reason: "generation failed", Cause: err}
	}

	if err := schemas.Validate(schemas.CritiqueSchema, raw); err != nil {
		return nil, &JudgeError{Reason: "invalid verdict", Cause: err}
	}

	var resp struct {
		Score            float64  `json:"score"`
		Hallucinations   []string `json:"hallucinations"`
		MissingKeyPoints []string `json:"missing_key_points"`
		Suggestions      []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &JudgeError{Reason: "unparseable verdict", Cause: err}
	}

	return &Verdict{
		Score:          clampScore(int(resp.Score)),
		Hallucinations: resp.Hallucinations,
		MissingPoints:  resp.MissingKeyPoints,
		Suggestions:    resp.Suggestions,
	}, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
