package verification

import (
	"fmt"
	"strings"
)

// FormatFeedback renders a score as the feedback block appended to a
// generation prompt before the next attempt.
func FormatFeedback(score Score) string {
	var sb strings.Builder
	sb.WriteString("\n\n## Feedback on the previous attempt\n")
	sb.WriteString(fmt.Sprintf("Previous attempt score: %d/100\n", score.Total))

	if len(score.Issues) > 0 {
		sb.WriteString("\n### Issues found:\n")
		for _, issue := range score.Issues {
			sb.WriteString(fmt.Sprintf("- %s\n", issue))
		}
	}

	if len(score.Suggestions) > 0 {
		sb.WriteString("\n### Suggestions:\n")
		for _, suggestion := range score.Suggestions {
			sb.WriteString(fmt.Sprintf("- %s\n", suggestion))
		}
	}

	sb.WriteString("\nResolve the issues above and generate the note again.\n")
	return sb.String()
}
