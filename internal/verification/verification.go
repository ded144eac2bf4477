// Package verification scores generated notes against the source
// material before they are accepted. A note earns three sub-scores
// (citations, structure, faithfulness) combined by configurable
// weights; a note passes when the weighted total reaches the
// threshold.
package verification

import (
	"context"
	"fmt"

	"github.com/jonathan/notesmith/internal/templates"
)

// DefaultThreshold is the minimum passing total.
const DefaultThreshold = 80

// Weights distributes the three sub-scores into the total. The three
// fields must sum to 100.
type Weights struct {
	Citation     int
	Structure    int
	Faithfulness int
}

// Named weight presets selectable in config.
var (
	WeightsBalanced          = Weights{Citation: 25, Structure: 25, Faithfulness: 50}
	WeightsFaithfulnessHeavy = Weights{Citation: 20, Structure: 20, Faithfulness: 60}
)

// WeightsByName maps config values to presets.
func WeightsByName(name string) (Weights, error) {
	switch name {
	case "", "balanced":
		return WeightsBalanced, nil
	case "faithfulness-heavy":
		return WeightsFaithfulnessHeavy, nil
	}
	return Weights{}, fmt.Errorf("unknown verification weights %q (valid: balanced, faithfulness-heavy)", name)
}

// Score is the outcome of verifying one candidate note.
type Score struct {
	Passed       bool
	Total        int
	Citation     int
	Structure    int
	Faithfulness int
	Issues       []string
	Suggestions  []string
}

// Verifier scores candidate notes. A nil judge degrades the
// faithfulness sub-score to a neutral default instead of failing.
type Verifier struct {
	judge     Judge
	weights   Weights
	threshold int
}

// New builds a Verifier. A zero Weights selects the balanced preset;
// a non-positive threshold selects the default.
func New(judge Judge, weights Weights, threshold int) *Verifier {
	if weights == (Weights{}) {
		weights = WeightsBalanced
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Verifier{judge: judge, weights: weights, threshold: threshold}
}

// Verify scores candidate against the reference material it was
// generated from. The template supplies the structure rules and
// sourceType selects the citation marker style.
func (v *Verifier) Verify(ctx context.Context, candidate, reference string, tmpl *templates.Template, sourceType string) Score {
	score := Score{}

	var issues []string

	citation, citationIssues := scoreCitations(candidate, sourceType)
	issues = append(issues, citationIssues...)

	structure, structureIssues := scoreStructure(candidate, tmpl.Rules)
	issues = append(issues, structureIssues...)

	faithfulness := NeutralFaithfulness
	switch {
	case v.judge == nil:
		issues = append(issues, "Faithfulness judge unavailable, using the neutral default.")
	default:
		verdict, err := v.judge.Judge(ctx, candidate, reference)
		if err != nil {
			issues = append(issues, fmt.Sprintf("Faithfulness check failed (%v), using the neutral default.", err))
		} else {
			faithfulness = verdict.Score
			issues = append(issues, verdict.issueLines()...)
			score.Suggestions = append(score.Suggestions, verdict.Suggestions...)
		}
	}

	total := (citation*v.weights.Citation + structure*v.weights.Structure + faithfulness*v.weights.Faithfulness) / 100

	score.Passed = total >= v.threshold
	score.Total = total
	score.Citation = citation
	score.Structure = structure
	score.Faithfulness = faithfulness
	score.Issues = issues
	return score
}
