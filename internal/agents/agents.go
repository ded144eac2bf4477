// Package agents implements the three-role note pipeline: an analyst
// reads the source and produces a structural pre-analysis, a writer
// drafts the note from analysis plus source, and a critic scores each
// draft against the source. The orchestrator runs the roles under the
// same attempt and minimum-score contract as the revision loop, with a
// dedicated revision call that edits the prior draft instead of
// regenerating from scratch.
package agents

// truncate caps text at max bytes and marks the cut.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "\n... (truncated)"
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
