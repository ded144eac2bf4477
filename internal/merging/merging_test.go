package merging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/workspace"
)

type fakeClient struct {
	responses []string
	errs      []error
	prompts   []string
	tiers     []llm.ModelTier
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateContent(ctx, prompt, tier)
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Usage() llm.Usage              { return llm.Usage{} }
func (f *fakeClient) Close() error                  { return nil }

func testMeta() workspace.Metadata {
	return workspace.Metadata{
		Title:      "Go Concurrency Patterns",
		SourceType: "youtube",
		SourceRef:  "https://youtu.be/f6kdp27TYZs",
	}
}

func TestMerge_AutoPicksThematicForSmallInput(t *testing.T) {
	client := &fakeClient{responses: []string{"merged document"}}
	m := New(client, Options{})

	out, strategy, err := m.Merge(context.Background(), []string{"part one", "part two"}, testMeta())
	require.NoError(t, err)

	assert.Equal(t, "merged document", out)
	assert.Equal(t, StrategyThematic, strategy)
	require.Len(t, client.prompts, 1)
	assert.Equal(t, llm.TierAdvanced, client.tiers[0])
	assert.Contains(t, client.prompts[0], "### 1. Executive Summary")
	assert.Contains(t, client.prompts[0], "Go Concurrency Patterns")
	assert.Contains(t, client.prompts[0], "part one\n\n---\n\npart two")
	assert.Contains(t, client.prompts[0], "### 5. English Summary")
}

func TestMerge_AutoPicksHierarchicalPastThreshold(t *testing.T) {
	parts := make([]string, 7)
	for i := range parts {
		parts[i] = fmt.Sprintf("part-%d ", i+1) + strings.Repeat("x", 20000)
	}

	client := &fakeClient{responses: []string{"g1", "g2", "g3", "final document"}}
	m := New(client, Options{})

	out, strategy, err := m.Merge(context.Background(), parts, testMeta())
	require.NoError(t, err)

	assert.Equal(t, "final document", out)
	assert.Equal(t, StrategyHierarchical, strategy)
	require.Len(t, client.prompts, 4)

	assert.Equal(t, []llm.ModelTier{llm.TierStandard, llm.TierStandard, llm.TierStandard, llm.TierAdvanced}, client.tiers)
	assert.Contains(t, client.prompts[0], "Part 1-3 of 7")
	assert.Contains(t, client.prompts[0], "part-1")
	assert.Contains(t, client.prompts[0], "part-3")
	assert.Contains(t, client.prompts[1], "Part 4-6 of 7")
	assert.Contains(t, client.prompts[2], "Part 7-7 of 7")

	// The final pass sees only the intermediate summaries.
	assert.Contains(t, client.prompts[3], "g1\n\n---\n\ng2\n\n---\n\ng3")
	assert.NotContains(t, client.prompts[3], "part-1")
}

func TestMerge_ThematicPromptCarriesVideoEmbed(t *testing.T) {
	client := &fakeClient{responses: []string{"merged"}}
	m := New(client, Options{})

	meta := testMeta()
	meta.EmbedID = "f6kdp27TYZs"

	_, _, err := m.Merge(context.Background(), []string{"part one"}, meta)
	require.NoError(t, err)

	assert.Contains(t, client.prompts[0], "## Video embed")
	assert.Contains(t, client.prompts[0], "youtube.com/embed/f6kdp27TYZs")
}

func TestMerge_TranslateToOverride(t *testing.T) {
	client := &fakeClient{responses: []string{"merged"}}
	m := New(client, Options{TranslateTo: "Korean"})

	_, _, err := m.Merge(context.Background(), []string{"part one"}, testMeta())
	require.NoError(t, err)

	assert.Contains(t, client.prompts[0], "### 5. Korean Summary")
}

func TestMerge_GenerationFailureFallsBackToSimple(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("503 overloaded")}}

	var logged []string
	m := New(client, Options{Logf: func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}})

	out, strategy, err := m.Merge(context.Background(), []string{"part one", "part two"}, testMeta())
	require.NoError(t, err)

	assert.Equal(t, StrategySimple, strategy)
	assert.True(t, strings.HasPrefix(out, "# Go Concurrency Patterns\n"))
	assert.Contains(t, out, "part one\n\n---\n\npart two")
	require.NotEmpty(t, logged)
	assert.Contains(t, logged[len(logged)-1], "falling back to simple merge")
}

func TestMerge_EmptyResponseFallsBackToSimple(t *testing.T) {
	client := &fakeClient{responses: []string{"  \n"}}
	m := New(client, Options{})

	out, strategy, err := m.Merge(context.Background(), []string{"part one"}, testMeta())
	require.NoError(t, err)

	assert.Equal(t, StrategySimple, strategy)
	assert.Contains(t, out, "part one")
}

func TestMerge_CanceledContextDoesNotFallBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{errs: []error{ctx.Err()}}
	m := New(client, Options{})

	out, _, err := m.Merge(ctx, []string{"part one"}, testMeta())
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestMerge_ExplicitSimpleSkipsClient(t *testing.T) {
	client := &fakeClient{}
	m := New(client, Options{Strategy: StrategySimple})

	out, strategy, err := m.Merge(context.Background(), []string{"part one"}, testMeta())
	require.NoError(t, err)

	assert.Equal(t, StrategySimple, strategy)
	assert.Contains(t, out, "part one")
	assert.Empty(t, client.prompts)
}

func TestMerge_NilClientUsesSimple(t *testing.T) {
	m := New(nil, Options{})

	out, strategy, err := m.Merge(context.Background(), []string{"part one"}, testMeta())
	require.NoError(t, err)

	assert.Equal(t, StrategySimple, strategy)
	assert.Contains(t, out, "part one")
}

func TestMerge_NoParts(t *testing.T) {
	m := New(nil, Options{})

	_, _, err := m.Merge(context.Background(), nil, testMeta())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no part notes")
}

func TestMerge_CustomThresholdAndGroupSize(t *testing.T) {
	parts := []string{
		strings.Repeat("a", 60),
		strings.Repeat("b", 60),
		strings.Repeat("c", 60),
	}

	client := &fakeClient{responses: []string{"g1", "g2", "final"}}
	m := New(client, Options{HierarchicalThreshold: 100, GroupSize: 2})

	out, strategy, err := m.Merge(context.Background(), parts, testMeta())
	require.NoError(t, err)

	assert.Equal(t, "final", out)
	assert.Equal(t, StrategyHierarchical, strategy)
	require.Len(t, client.prompts, 3)
	assert.Contains(t, client.prompts[0], "Part 1-2 of 3")
	assert.Contains(t, client.prompts[1], "Part 3-3 of 3")
}
