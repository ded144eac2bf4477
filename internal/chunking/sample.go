package chunking

import (
	"fmt"
	"strings"
)

// sampleSeparatorOverhead reserves room for the two section markers.
const sampleSeparatorOverhead = 100

// Sample produces a bounded preview of text by taking proportional slices
// from the start (~40%), a middle window starting at the 40%-of-lines mark
// (~30%), and the true tail (~30%), joined with section markers. Unlike
// Split, the result is a representative preview rather than full coverage;
// use it wherever a bounded look at the whole document is enough.
func Sample(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	lines := strings.Split(text, "\n")
	totalLines := len(lines)

	if totalLines <= 10 || maxLength <= sampleSeparatorOverhead {
		return text[:maxLength]
	}

	usable := maxLength - sampleSeparatorOverhead
	startBudget := int(float64(usable) * 0.40)
	midBudget := int(float64(usable) * 0.30)
	endBudget := int(float64(usable) * 0.30)

	startLines := takeLines(lines, startBudget)

	midStart := int(float64(totalLines) * 0.4)
	midLines := takeLines(lines[midStart:], midBudget)

	// Collect the tail in reverse so the true ending is always included.
	var endLines []string
	size := 0
	for i := len(lines) - 1; i >= 0; i-- {
		if size+len(lines[i])+1 > endBudget {
			break
		}
		endLines = append(endLines, lines[i])
		size += len(lines[i]) + 1
	}
	for i, j := 0, len(endLines)-1; i < j; i, j = i+1, j-1 {
		endLines[i], endLines[j] = endLines[j], endLines[i]
	}
	endStart := totalLines - len(endLines)

	parts := []string{strings.Join(startLines, "\n")}
	if len(midLines) > 0 {
		parts = append(parts, fmt.Sprintf("\n... [middle section, from line %d] ...\n", midStart))
		parts = append(parts, strings.Join(midLines, "\n"))
	}
	if len(endLines) > 0 {
		parts = append(parts, fmt.Sprintf("\n... [final section, from line %d] ...\n", endStart))
		parts = append(parts, strings.Join(endLines, "\n"))
	}

	return strings.Join(parts, "\n")
}

// takeLines accumulates whole lines from the front of src until budget chars.
func takeLines(src []string, budget int) []string {
	var out []string
	size := 0
	for _, line := range src {
		if size+len(line)+1 > budget {
			break
		}
		out = append(out, line)
		size += len(line) + 1
	}
	return out
}
