package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/prompts"
	"github.com/jonathan/notesmith/internal/schemas"
	"github.com/jonathan/notesmith/internal/templates"
	"github.com/jonathan/notesmith/internal/verification"
)

// Prompt budgets for the source check.
const (
	maxCriticNoteLen   = 5000
	maxCriticSourceLen = 8000
)

// degradedFaithfulness substitutes when the source check cannot run.
// Slightly below the neutral default so a degraded check never carries
// a draft over the bar on its own.
const degradedFaithfulness = 75

// Critique is the critic's verdict on one draft.
type Critique struct {
	Passed       bool
	Score        int
	Citation     int
	Structure    int
	Faithfulness int
	Issues       []string
	Suggestions  []string
}

// Critic scores drafts with cheap rule checks plus one lite-tier
// source check, weighted toward faithfulness.
type Critic struct {
	client   llm.Client
	weights  verification.Weights
	minScore int
}

func NewCritic(client llm.Client, minScore int) *Critic {
	if minScore <= 0 {
		minScore = verification.DefaultThreshold
	}
	return &Critic{
		client:   client,
		weights:  verification.WeightsFaithfulnessHeavy,
		minScore: minScore,
	}
}

// Critique scores one draft against the source. Failures of the source
// check degrade to a below-neutral faithfulness score instead of
// erroring; only context cancellation surfaces as an error.
func (c *Critic) Critique(ctx context.Context, note, sourceText string, analysis *Analysis, tmpl *templates.Template, sourceType string) (*Critique, error) {
	if tmpl == nil {
		tmpl = templates.GetOrDefault("")
	}

	citationScore, citationIssues := c.checkCitations(note, sourceType)
	structureScore, structureIssues := c.checkStructure(note, tmpl)
	faithScore, faithIssues, suggestions := c.checkAgainstSource(ctx, note, sourceText, analysis)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := (citationScore*c.weights.Citation + structureScore*c.weights.Structure + faithScore*c.weights.Faithfulness) / 100

	issues := append(append(citationIssues, structureIssues...), faithIssues...)
	return &Critique{
		Passed:       total >= c.minScore,
		Score:        total,
		Citation:     citationScore,
		Structure:    structureScore,
		Faithfulness: faithScore,
		Issues:       issues,
		Suggestions:  suggestions,
	}, nil
}

// checkCitations counts source markers. Unlike the standalone
// verifier it does not penalize clustering; the source check already
// reads the whole note.
func (c *Critic) checkCitations(note, sourceType string) (int, []string) {
	count := len(verification.CitationPattern(sourceType).FindAllString(note, -1))

	switch {
	case count == 0:
		return 0, []string{"No citations at all."}
	case count < 3:
		return 40, []string{fmt.Sprintf("Too few citations (%d).", count)}
	case count < 5:
		return 70, nil
	}
	return 100, nil
}

func (c *Critic) checkStructure(note string, tmpl *templates.Template) (int, []string) {
	var issues []string
	score := 100

	for _, marker := range tmpl.Rules.RequiredMarkers {
		if !strings.Contains(note, marker) {
			issues = append(issues, fmt.Sprintf("Missing required marker %q.", strings.TrimSpace(marker)))
			score -= 20
		}
	}
	for _, keyword := range tmpl.Rules.RequiredKeywords {
		if !strings.Contains(strings.ToLower(note), strings.ToLower(keyword)) {
			issues = append(issues, fmt.Sprintf("Missing required section %q.", keyword))
			score -= 15
		}
	}
	if tmpl.Rules.RequireDiagram && !strings.Contains(note, "```mermaid") {
		issues = append(issues, "Missing mermaid diagram.")
		score -= 30
	}

	return max(0, score), issues
}

func (c *Critic) checkAgainstSource(ctx context.Context, note, sourceText string, analysis *Analysis) (int, []string, []string) {
	task := prompts.MustFormat("agents.json", "critic_task", map[string]string{
		"Note":            truncate(note, maxCriticNoteLen),
		"AnalysisContext": analysisContext(analysis),
		"SourceText":      truncate(sourceText, maxCriticSourceLen),
	})
	prompt := prompts.MustGet("agents.json", "critic_system") + "\n\n" + task

	raw, err := c.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return degradedFaithfulness, []string{fmt.Sprintf("Source check failed: %v", err)}, nil
	}
	if err := schemas.Validate(schemas.CritiqueSchema, raw); err != nil {
		return degradedFaithfulness, []string{fmt.Sprintf("Source check returned an invalid verdict: %v", err)}, nil
	}

	var verdict struct {
		Score               float64  `json:"score"`
		Hallucinations      []string `json:"hallucinations"`
		MissingKeyPoints    []string `json:"missing_key_points"`
		InaccurateCitations []string `json:"inaccurate_citations"`
		Suggestions         []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return degradedFaithfulness, []string{fmt.Sprintf("Source check returned an unparseable verdict: %v", err)}, nil
	}

	var issues []string
	for _, h := range firstN(verdict.Hallucinations, 2) {
		issues = append(issues, "Hallucination: "+h)
	}
	for _, m := range firstN(verdict.MissingKeyPoints, 2) {
		issues = append(issues, "Missing: "+m)
	}
	for _, ic := range firstN(verdict.InaccurateCitations, 2) {
		issues = append(issues, "Inaccurate citation: "+ic)
	}
	return clampScore(int(verdict.Score)), issues, verdict.Suggestions
}

func analysisContext(a *Analysis) string {
	if a == nil {
		return ""
	}
	return fmt.Sprintf("\n## Analysis reference\n- Topic: %s\n- Key concepts: %s\n- Sections: %d\n",
		a.MainTopic, strings.Join(firstN(a.KeyConcepts, 5), ", "), len(a.Structure))
}
