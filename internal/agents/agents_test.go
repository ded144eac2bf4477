package agents

import (
	"context"
	"errors"

	"github.com/jonathan/notesmith/internal/llm"
)

// fakeClient scripts one response (or error) per call, in call order,
// and records every prompt for assertions. Usage grows with each call
// so provenance deltas are measurable.
type fakeClient struct {
	responses []string
	errs      []error
	prompts   []string
	methods   []string
	tiers     []llm.ModelTier
}

func (f *fakeClient) call(method, prompt string, tier llm.ModelTier) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	f.methods = append(f.methods, method)
	f.tiers = append(f.tiers, tier)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.call("content", prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.call("json", prompt, tier)
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Usage() llm.Usage {
	n := int64(len(f.prompts))
	return llm.Usage{PromptTokens: n * 100, OutputTokens: n * 10, Calls: n}
}

func (f *fakeClient) Close() error { return nil }

const analysisJSON = `{
  "main_topic": "Goroutine scheduling",
  "content_type": "lecture",
  "structure": [
    {"section": "Intro", "timestamps": ["00:00-05:00"], "key_points": ["G-M-P model"]},
    {"section": "Work stealing", "timestamps": ["05:00-12:00"], "key_points": ["run queues", "preemption"]}
  ],
  "key_concepts": ["goroutine", "scheduler", "preemption"],
  "relationships": [{"from": "goroutine", "to": "scheduler", "type": "enables"}],
  "difficulty_level": "intermediate",
  "recommended_format": "detailed",
  "summary": "A lecture on how Go schedules goroutines."
}`

const draftNote = `# Goroutine Scheduling

## Intro
The G-M-P model [00:01] explains scheduling [02:00].

## Details
Work stealing balances run queues [05:00] and [08:00]; preemption landed later [10:00].
`
