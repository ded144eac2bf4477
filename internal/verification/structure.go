package verification

import (
	"fmt"
	"strings"

	"github.com/jonathan/notesmith/internal/templates"
)

// scoreStructure checks the note against the template's layout rules.
// Markers are exact substring matches, keywords match
// case-insensitively, and section count looks at level-2 headings.
func scoreStructure(note string, rules templates.Rules) (int, []string) {
	var issues []string
	score := 100

	for _, marker := range rules.RequiredMarkers {
		if !strings.Contains(note, marker) {
			issues = append(issues, fmt.Sprintf("Missing required marker %q.", strings.TrimSpace(marker)))
			score -= 20
		}
	}

	lower := strings.ToLower(note)
	for _, keyword := range rules.RequiredKeywords {
		if !strings.Contains(lower, strings.ToLower(keyword)) {
			issues = append(issues, fmt.Sprintf("Missing required section %q.", keyword))
			score -= 15
		}
	}

	if rules.MinSections > 0 {
		sections := strings.Count(note, "\n## ")
		if sections < rules.MinSections {
			issues = append(issues, fmt.Sprintf("Not enough sections (%d, need at least %d).", sections, rules.MinSections))
			score -= 15
		}
	}

	if rules.RequireDiagram {
		if !strings.Contains(note, "```mermaid") {
			issues = append(issues, "Missing the mermaid diagram.")
			score -= 30
		}
		if len(rules.TreeChars) > 0 && !containsAny(note, rules.TreeChars) {
			issues = append(issues, "Missing the text tree outline.")
			score -= 20
		}
	}

	return max(0, score), issues
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
