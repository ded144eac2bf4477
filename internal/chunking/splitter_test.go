package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sentenceLines builds n lines of width chars, each ending with a period so
// every line is an admissible boundary.
func sentenceLines(n, width int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = strings.Repeat("x", width-1) + "."
	}
	return lines
}

func TestSplit_SingleChunkWhenSmall(t *testing.T) {
	text := "first line.\nsecond line.\nthird line."
	chunks := Split(text, 20000, 5)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].StartLine)
	assert.Equal(t, 2, chunks[0].EndLine)
}

func TestSplit_ExactSizeIsSingleChunk(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := Split(text, 1000, 5)
	require.Len(t, chunks, 1)
}

func TestSplit_TranscriptYieldsThreeChunks(t *testing.T) {
	// ~45,000 chars: 450 sentence lines of 99 chars joined by newlines.
	lines := sentenceLines(450, 99)
	text := strings.Join(lines, "\n")
	require.Equal(t, 44999, len(text))

	chunks := Split(text, 20000, 5)
	require.Len(t, chunks, 3)

	// Summing line spans and subtracting the two overlap joins must
	// reproduce the source's total line count exactly.
	totalSpan := 0
	for _, c := range chunks {
		totalSpan += c.EndLine - c.StartLine + 1
	}
	overlapJoins := 0
	for i := 1; i < len(chunks); i++ {
		overlapJoins += chunks[i-1].EndLine - chunks[i].StartLine + 1
	}
	assert.Equal(t, len(lines), totalSpan-overlapJoins)
}

func TestSplit_ReconstructsSourceLines(t *testing.T) {
	cases := []struct {
		name    string
		lines   []string
		maxSize int
		overlap int
	}{
		{"sentence lines", sentenceLines(120, 80), 2000, 5},
		{"no boundaries", func() []string {
			lines := make([]string, 30)
			for i := range lines {
				lines[i] = strings.Repeat("x", 100)
			}
			return lines
		}(), 1010, 2},
		{"zero overlap", sentenceLines(90, 50), 1200, 0},
		{"mixed content", []string{
			"# Heading", "Intro sentence.", "", "[00:15] speaker one",
			"continues here.", "[p.2]", "page two text.", "tail line.",
		}, 60, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Join(tc.lines, "\n")
			chunks := Split(text, tc.maxSize, tc.overlap)
			require.NotEmpty(t, chunks)

			var rebuilt []string
			for i, c := range chunks {
				assert.Equal(t, i, c.Index)
				chunkLines := strings.Split(c.Text, "\n")
				assert.Equal(t, c.EndLine-c.StartLine+1, len(chunkLines))

				skip := 0
				if i > 0 {
					skip = chunks[i-1].EndLine - c.StartLine + 1
					require.GreaterOrEqual(t, skip, 0)
				}
				rebuilt = append(rebuilt, chunkLines[skip:]...)
			}

			assert.Equal(t, tc.lines, rebuilt)
		})
	}
}

func TestSplit_OverlapCarriesPredecessorTail(t *testing.T) {
	lines := sentenceLines(120, 80)
	text := strings.Join(lines, "\n")

	chunks := Split(text, 2000, 5)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prevLines := strings.Split(chunks[i-1].Text, "\n")
		curLines := strings.Split(chunks[i].Text, "\n")
		overlap := chunks[i-1].EndLine - chunks[i].StartLine + 1
		require.Greater(t, overlap, 0)
		assert.Equal(t, prevLines[len(prevLines)-overlap:], curLines[:overlap])
	}
}

func TestSplit_PrefersBoundaryPastHalfFill(t *testing.T) {
	// 100-char lines with no terminal punctuation; a blank line at index 15
	// is the only boundary and sits past the 50% mark of the first chunk.
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = strings.Repeat("x", 99)
	}
	lines[15] = ""
	text := strings.Join(lines, "\n")

	chunks := Split(text, 2000, 0)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, 14, chunks[0].EndLine)
	assert.Equal(t, 15, chunks[1].StartLine)
	assert.NotContains(t, chunks[0].Text, "\n\n")
}

func TestSplit_HardCutWhenBoundaryTooEarly(t *testing.T) {
	// The only boundary (blank line at index 2) is before the 50% mark, so
	// the splitter falls back to a hard cut at the overflowing line.
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = strings.Repeat("x", 100)
	}
	lines[2] = ""
	text := strings.Join(lines, "\n")

	chunks := Split(text, 1010, 2)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 9, chunks[0].EndLine)
}

func TestIsParagraphBreak(t *testing.T) {
	tests := []struct {
		name string
		line string
		prev string
		want bool
	}{
		{"blank line", "", "some text", true},
		{"whitespace only", "   ", "some text", true},
		{"bracketed timestamp", "[00:15] speaker", "text", true},
		{"bare timestamp", "12:34 speaker", "text", true},
		{"hour timestamp", "[1:02:03] speaker", "text", true},
		{"heading", "# Title", "text", true},
		{"page marker", "[p.3] contents", "text", true},
		{"prev ends period", "continuation", "sentence ends.", true},
		{"prev ends question", "continuation", "does it?", true},
		{"prev ends exclaim", "continuation", "it does!", true},
		{"prev ends cjk period", "continuation", "文です。", true},
		{"prev trailing spaces", "continuation", "sentence ends.   ", true},
		{"mid sentence", "continuation", "the sentence goes on and", false},
		{"timestamp without space", "[00:15]speaker", "text and", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isParagraphBreak(tt.line, tt.prev))
		})
	}
}

func TestComputeStats(t *testing.T) {
	text := strings.Join(sentenceLines(450, 99), "\n")
	stats := ComputeStats(text, 20000, 20000)

	assert.Equal(t, 44999, stats.Chars)
	assert.Equal(t, 450, stats.Lines)
	assert.True(t, stats.NeedsChunking)
	assert.Equal(t, 3, stats.EstimatedChunks)
}

func TestComputeStats_SmallText(t *testing.T) {
	stats := ComputeStats("hello\nworld", 20000, 20000)

	assert.Equal(t, 11, stats.Chars)
	assert.Equal(t, 2, stats.Lines)
	assert.False(t, stats.NeedsChunking)
	assert.Equal(t, 1, stats.EstimatedChunks)
}

func TestComputeStats_DefaultsApplied(t *testing.T) {
	text := strings.Repeat("a", DefaultThreshold+1)
	stats := ComputeStats(text, 0, 0)
	assert.True(t, stats.NeedsChunking)
	assert.Equal(t, 2, stats.EstimatedChunks)
}

func TestNeedsChunking(t *testing.T) {
	assert.False(t, NeedsChunking("short", 100))
	assert.True(t, NeedsChunking(strings.Repeat("a", 101), 100))
	assert.False(t, NeedsChunking(strings.Repeat("a", 100), 100))
}

func TestSample_ShortTextVerbatim(t *testing.T) {
	text := "one.\ntwo.\nthree."
	assert.Equal(t, text, Sample(text, 1000))
}

func TestSample_BoundedAndRepresentative(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %03d with some padding text here.", i)
	}
	text := strings.Join(lines, "\n")

	sample := Sample(text, 2000)

	assert.LessOrEqual(t, len(sample), 2000)
	assert.Contains(t, sample, "line 000")
	assert.Contains(t, sample, "line 199")
	assert.Contains(t, sample, "[middle section")
	assert.Contains(t, sample, "[final section")
}

func TestSample_FewLinesFallsBackToPrefix(t *testing.T) {
	text := strings.Repeat("a", 5000) + "\n" + strings.Repeat("b", 5000)
	sample := Sample(text, 100)

	assert.Equal(t, 100, len(sample))
	assert.Equal(t, strings.Repeat("a", 100), sample)
}
