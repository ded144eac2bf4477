package verification

import (
	"fmt"
	"regexp"
	"strings"
)

// Citation marker patterns by source type. Audiovisual sources cite
// timestamps, PDFs cite pages, and everything else counts any
// bracketed tag.
var (
	timestampCitation = regexp.MustCompile(`\[(\d{1,2}:\d{2}(:\d{2})?)\]`)
	pageCitation      = regexp.MustCompile(`\[(p\.?\s*\d+)\]`)
	genericCitation   = regexp.MustCompile(`\[([^\]]+)\]`)
)

// CitationPattern returns the marker regexp counted for a source type.
func CitationPattern(sourceType string) *regexp.Regexp {
	switch sourceType {
	case "youtube", "video":
		return timestampCitation
	case "pdf":
		return pageCitation
	}
	return genericCitation
}

// scoreCitations checks that the note cites its sources and that the
// citations spread across the whole document rather than clustering.
func scoreCitations(note, sourceType string) (int, []string) {
	var issues []string

	count := len(CitationPattern(sourceType).FindAllString(note, -1))

	var score int
	switch {
	case count == 0:
		score = 0
		issues = append(issues, "No citations at all. Every major claim needs a source marker.")
	case count < 3:
		score = 40
		issues = append(issues, fmt.Sprintf("Too few citations (%d). At least 5 recommended.", count))
	case count < 5:
		score = 70
		issues = append(issues, fmt.Sprintf("Citations are a little sparse (%d).", count))
	default:
		score = 100
	}

	if count > 0 {
		length := float64(len(note))
		first := strings.Index(note, "[")
		last := strings.LastIndex(note, "]")

		if float64(first) > length*0.3 {
			issues = append(issues, "No citations in the opening third of the note.")
			score = max(0, score-10)
		}
		if float64(last) < length*0.7 {
			issues = append(issues, "No citations in the closing third of the note.")
			score = max(0, score-10)
		}
	}

	return score, issues
}
