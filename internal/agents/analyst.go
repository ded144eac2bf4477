package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/notesmith/internal/chunking"
	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/prompts"
	"github.com/jonathan/notesmith/internal/schemas"
	"github.com/jonathan/notesmith/internal/templates"
)

// maxAnalystInput bounds how much source the analyst reads. Longer
// sources are sampled proportionally so the ending still influences
// the analysis.
const maxAnalystInput = 15000

// Analysis is the analyst's structured read of a source document.
type Analysis struct {
	MainTopic         string         `json:"main_topic"`
	ContentType       string         `json:"content_type"`
	Structure         []Section      `json:"structure"`
	KeyConcepts       []string       `json:"key_concepts"`
	Relationships     []Relationship `json:"relationships"`
	DifficultyLevel   string         `json:"difficulty_level"`
	RecommendedFormat string         `json:"recommended_format"`
	Summary           string         `json:"summary"`
}

// Section is one major segment the analyst found.
type Section struct {
	Section    string   `json:"section"`
	Timestamps []string `json:"timestamps"`
	KeyPoints  []string `json:"key_points"`
}

// Relationship links two concepts.
type Relationship struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Analyst extracts document structure before any writing happens.
type Analyst struct {
	client llm.Client
}

func NewAnalyst(client llm.Client) *Analyst {
	return &Analyst{client: client}
}

// Analyze runs one lite-tier call and validates the response shape.
func (a *Analyst) Analyze(ctx context.Context, sourceText, sourceType string) (*Analysis, error) {
	task := prompts.MustFormat("agents.json", "analyst_task", map[string]string{
		"SourceType": sourceType,
		"SourceText": chunking.Sample(sourceText, maxAnalystInput),
	})
	prompt := prompts.MustGet("agents.json", "analyst_system") + "\n\n" + task

	raw, err := a.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	if err := schemas.Validate(schemas.AnalysisSchema, raw); err != nil {
		return nil, fmt.Errorf("analysis response: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("analysis response: %w", err)
	}
	analysis.applyDefaults()
	return &analysis, nil
}

func (a *Analysis) applyDefaults() {
	if a.ContentType == "" {
		a.ContentType = "lecture"
	}
	if a.DifficultyLevel == "" {
		a.DifficultyLevel = "intermediate"
	}
	if a.RecommendedFormat == "" {
		a.RecommendedFormat = templates.DefaultName
	}
}

// MergeAnalyses folds per-chunk analyses into one document-level view.
// Topic and summary favor the earliest chunks, categorical fields take
// the most common value, and lists concatenate with order-preserving
// dedup.
func MergeAnalyses(analyses []*Analysis) *Analysis {
	if len(analyses) == 0 {
		return nil
	}
	if len(analyses) == 1 {
		return analyses[0]
	}

	merged := &Analysis{}
	for _, a := range analyses {
		if a.MainTopic != "" {
			merged.MainTopic = a.MainTopic
			break
		}
	}

	var summaries []string
	seenConcept := make(map[string]bool)
	seenRel := make(map[Relationship]bool)
	for _, a := range analyses {
		merged.Structure = append(merged.Structure, a.Structure...)
		for _, c := range a.KeyConcepts {
			if !seenConcept[c] {
				seenConcept[c] = true
				merged.KeyConcepts = append(merged.KeyConcepts, c)
			}
		}
		for _, r := range a.Relationships {
			if !seenRel[r] {
				seenRel[r] = true
				merged.Relationships = append(merged.Relationships, r)
			}
		}
		if a.Summary != "" {
			summaries = append(summaries, a.Summary)
		}
	}
	merged.Summary = strings.Join(summaries, " ")

	merged.ContentType = mostCommon(analyses, func(a *Analysis) string { return a.ContentType })
	merged.DifficultyLevel = mostCommon(analyses, func(a *Analysis) string { return a.DifficultyLevel })
	merged.RecommendedFormat = mostCommon(analyses, func(a *Analysis) string { return a.RecommendedFormat })
	merged.applyDefaults()
	return merged
}

// mostCommon picks the most frequent non-empty value; ties keep the
// value seen first.
func mostCommon(analyses []*Analysis, field func(*Analysis) string) string {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, a := range analyses {
		v := field(a)
		if v == "" {
			continue
		}
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
