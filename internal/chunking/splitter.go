// Package chunking splits long source text into size-bounded chunks aligned
// to natural paragraph boundaries, with a configurable line overlap between
// adjacent chunks for context continuity.
package chunking

import (
	"regexp"
	"strings"
)

// Default sizing constants, shared with the pipeline configuration.
const (
	// DefaultThreshold is the text length above which chunking is needed.
	DefaultThreshold = 20000
	// DefaultChunkSize is the maximum characters per chunk.
	DefaultChunkSize = 20000
	// DefaultOverlapLines is the line overlap between adjacent chunks.
	DefaultOverlapLines = 5
)

// Chunk is a bounded, contiguous slice of source text with line-range
// provenance. StartLine and EndLine are inclusive 0-based indexes into the
// source line sequence. Adjacent chunks overlap by the configured number of
// lines, so a later chunk's StartLine is at most its predecessor's EndLine.
type Chunk struct {
	Index     int
	Text      string
	StartLine int
	EndLine   int
}

var (
	timestampRe = regexp.MustCompile(`^\[?\d{1,2}:\d{2}(:\d{2})?\]?\s`)
	pageRe      = regexp.MustCompile(`^\[p\.\d+\]`)
)

// terminalSuffixes mark a sentence-ending predecessor line.
var terminalSuffixes = []string{".", "!", "?", "。", "！", "？"}

// isParagraphBreak reports whether a split is admissible immediately before
// line: a blank line, a subtitle timestamp, a markdown heading, a PDF page
// marker, or a predecessor that ended a sentence.
func isParagraphBreak(line, prevLine string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	if timestampRe.MatchString(line) {
		return true
	}
	if strings.HasPrefix(line, "#") {
		return true
	}
	if pageRe.MatchString(line) {
		return true
	}
	trimmed := strings.TrimRight(prevLine, " \t")
	for _, suffix := range terminalSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}

// Split divides text into chunks of at most maxSize characters, preferring
// paragraph boundaries over mid-paragraph cuts. A boundary is used only when
// the closing chunk is at least half full; otherwise the cut falls at the
// current line. Every chunk after the first begins with the last
// overlapLines lines of its predecessor.
func Split(text string, maxSize, overlapLines int) []Chunk {
	lines := strings.Split(text, "\n")

	if len(text) <= maxSize {
		return []Chunk{{
			Index:     0,
			Text:      text,
			StartLine: 0,
			EndLine:   len(lines) - 1,
		}}
	}

	var chunks []Chunk
	var currentLines []string
	currentSize := 0
	chunkStart := 0
	lastBreakIdx := -1 // boundary candidate, index within currentLines

	for _, line := range lines {
		lineSize := len(line) + 1 // +1 for the newline

		if len(currentLines) > 0 && isParagraphBreak(line, currentLines[len(currentLines)-1]) {
			lastBreakIdx = len(currentLines)
		}

		if currentSize+lineSize > maxSize && len(currentLines) > 0 {
			// Use the boundary only when the chunk is at least half full.
			minBreak := len(currentLines) / 2
			splitAt := len(currentLines)
			if lastBreakIdx > minBreak {
				splitAt = lastBreakIdx
			}

			chunkLines := currentLines[:splitAt]
			remaining := currentLines[splitAt:]

			chunks = append(chunks, Chunk{
				Index:     len(chunks),
				Text:      strings.Join(chunkLines, "\n"),
				StartLine: chunkStart,
				EndLine:   chunkStart + len(chunkLines) - 1,
			})

			overlap := overlapTail(chunkLines, overlapLines)
			chunkStart = chunkStart + len(chunkLines) - len(overlap)
			currentLines = append(append([]string{}, overlap...), remaining...)
			currentSize = 0
			for _, l := range currentLines {
				currentSize += len(l) + 1
			}
			lastBreakIdx = -1
		}

		currentLines = append(currentLines, line)
		currentSize += lineSize
	}

	if len(currentLines) > 0 {
		chunks = append(chunks, Chunk{
			Index:     len(chunks),
			Text:      strings.Join(currentLines, "\n"),
			StartLine: chunkStart,
			EndLine:   chunkStart + len(currentLines) - 1,
		})
	}

	return chunks
}

// overlapTail copies the last n lines so the new chunk does not alias the
// closed chunk's backing array.
func overlapTail(lines []string, n int) []string {
	if n <= 0 || len(lines) == 0 {
		return nil
	}
	if n > len(lines) {
		n = len(lines)
	}
	tail := make([]string, n)
	copy(tail, lines[len(lines)-n:])
	return tail
}
