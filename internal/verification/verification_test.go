package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/notesmith/internal/templates"
)

type stubJudge struct {
	verdict *Verdict
	err     error
}

func (s *stubJudge) Judge(_ context.Context, _, _ string) (*Verdict, error) {
	return s.verdict, s.err
}

// goodNote satisfies the detailed template and carries well-spread
// timestamp citations.
const goodNote = `# Part 1/1: Test

## Key Topics
- scheduling [00:01]

## Detailed Notes
The scheduler uses three structures [00:02] and per-core queues [00:03].

## Key Quotes
- "it just works" [00:04]

## Timeline
- [00:05] overview
- [09:59] wrap-up
`

func TestVerify_PassingNote(t *testing.T) {
	v := New(&stubJudge{verdict: &Verdict{Score: 80, Suggestions: []string{"tighten the quotes"}}}, WeightsBalanced, 0)

	score := v.Verify(context.Background(), goodNote, "reference", templates.GetOrDefault(templates.Detailed), "youtube")

	assert.Equal(t, 100, score.Citation)
	assert.Equal(t, 100, score.Structure)
	assert.Equal(t, 80, score.Faithfulness)
	assert.Equal(t, 90, score.Total) // 100*0.25 + 100*0.25 + 80*0.50
	assert.True(t, score.Passed)
	assert.Equal(t, []string{"tighten the quotes"}, score.Suggestions)
}

func TestVerify_UncitedUnstructuredNoteFails(t *testing.T) {
	v := New(nil, WeightsBalanced, 0)

	score := v.Verify(context.Background(), "just prose with no headings at all", "reference", templates.GetOrDefault(templates.Detailed), "youtube")

	assert.Equal(t, 0, score.Citation)
	assert.Equal(t, 45, score.Structure)
	assert.Equal(t, 80, score.Faithfulness)
	assert.Equal(t, 51, score.Total)
	assert.False(t, score.Passed)
	assert.NotEmpty(t, score.Issues)
}

func TestVerify_NilJudgeUsesNeutralDefault(t *testing.T) {
	v := New(nil, WeightsBalanced, 0)

	score := v.Verify(context.Background(), goodNote, "reference", templates.GetOrDefault(templates.Detailed), "youtube")

	assert.Equal(t, NeutralFaithfulness, score.Faithfulness)
	require.Len(t, score.Issues, 1)
	assert.Contains(t, score.Issues[0], "judge unavailable")
}

func TestVerify_JudgeErrorDegrades(t *testing.T) {
	v := New(&stubJudge{err: errors.New("boom")}, WeightsBalanced, 0)

	score := v.Verify(context.Background(), goodNote, "reference", templates.GetOrDefault(templates.Detailed), "youtube")

	assert.Equal(t, NeutralFaithfulness, score.Faithfulness)
	require.Len(t, score.Issues, 1)
	assert.Contains(t, score.Issues[0], "Faithfulness check failed")
	assert.True(t, score.Passed)
}

func TestVerify_JudgeFindingsBecomeIssues(t *testing.T) {
	verdict := &Verdict{
		Score:          60,
		Hallucinations: []string{"a", "b", "c", "d"},
		MissingPoints:  []string{"m"},
	}
	v := New(&stubJudge{verdict: verdict}, WeightsBalanced, 0)

	score := v.Verify(context.Background(), goodNote, "reference", templates.GetOrDefault(templates.Detailed), "youtube")

	assert.Equal(t, 60, score.Faithfulness)
	assert.Equal(t, 80, score.Total) // 25 + 25 + 30
	require.Len(t, score.Issues, 2)
	assert.Contains(t, score.Issues[0], "a, b, c")
	assert.NotContains(t, score.Issues[0], "d")
	assert.Contains(t, score.Issues[1], "m")
}

func TestVerify_FaithfulnessHeavyWeights(t *testing.T) {
	v := New(&stubJudge{verdict: &Verdict{Score: 50}}, WeightsFaithfulnessHeavy, 0)

	score := v.Verify(context.Background(), goodNote, "reference", templates.GetOrDefault(templates.Detailed), "youtube")

	assert.Equal(t, 70, score.Total) // 100*0.20 + 100*0.20 + 50*0.60
	assert.False(t, score.Passed)
}

func TestVerify_CustomThreshold(t *testing.T) {
	v := New(&stubJudge{verdict: &Verdict{Score: 80}}, WeightsBalanced, 95)

	score := v.Verify(context.Background(), goodNote, "reference", templates.GetOrDefault(templates.Detailed), "youtube")

	assert.Equal(t, 90, score.Total)
	assert.False(t, score.Passed)
}

func TestWeightsByName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Weights
		wantErr bool
	}{
		{name: "empty defaults to balanced", input: "", want: WeightsBalanced},
		{name: "balanced", input: "balanced", want: WeightsBalanced},
		{name: "faithfulness-heavy", input: "faithfulness-heavy", want: WeightsFaithfulnessHeavy},
		{name: "unknown", input: "citation-heavy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WeightsByName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFeedback(t *testing.T) {
	score := Score{
		Total:       65,
		Issues:      []string{"too few citations", "missing timeline"},
		Suggestions: []string{"cite the opening"},
	}

	feedback := FormatFeedback(score)

	assert.Contains(t, feedback, "## Feedback on the previous attempt")
	assert.Contains(t, feedback, "65/100")
	assert.Contains(t, feedback, "### Issues found:\n- too few citations\n- missing timeline\n")
	assert.Contains(t, feedback, "### Suggestions:\n- cite the opening\n")
	assert.Contains(t, feedback, "generate the note again")
}

func TestFormatFeedback_OmitsEmptySections(t *testing.T) {
	feedback := FormatFeedback(Score{Total: 79})

	assert.Contains(t, feedback, "79/100")
	assert.NotContains(t, feedback, "### Issues found")
	assert.NotContains(t, feedback, "### Suggestions")
}
