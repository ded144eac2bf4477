package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_PreserveMarkdownHeadings(t *testing.T) {
	input := "# Lecture Title\n## First Topic\nContent here"
	result := CleanText(input)

	assert.Contains(t, result, "# Lecture Title")
	assert.Contains(t, result, "## First Topic")
	assert.Contains(t, result, "Content here")
}

func TestCleanText_IndentedHeadingMovesToColumnZero(t *testing.T) {
	result := CleanText("intro line\n   ## Indented Heading\nbody")

	assert.Contains(t, result, "\n## Indented Heading\n")
	assert.NotContains(t, result, " ## Indented Heading")

	// A heading as the first line sits at offset zero
	first := CleanText("  # Top")
	assert.Equal(t, "# Top", first)
}

func TestCleanText_PreserveBulletLists(t *testing.T) {
	input := "- Item 1\n- Item 2\n* Item 3"
	result := CleanText(input)

	assert.Contains(t, result, "- Item 1")
	assert.Contains(t, result, "- Item 2")
	assert.Contains(t, result, "* Item 3")
}

func TestCleanText_NestedBulletsKeepIndentation(t *testing.T) {
	input := "- outer\n  - inner"
	result := CleanText(input)

	assert.Contains(t, result, "\n  - inner")
}

func TestCleanText_PreserveTimestampPrefixes(t *testing.T) {
	input := "[00:12] Welcome to the lecture\n[01:45] First we cover goroutines"
	result := CleanText(input)

	assert.Contains(t, result, "[00:12] Welcome to the lecture")
	assert.Contains(t, result, "[01:45] First we cover goroutines")
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	input := "Line    with    multiple    spaces"
	result := CleanText(input)

	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	input := "Line 1\n\n\n\n\nLine 2"
	result := CleanText(input)

	assert.NotContains(t, result, "\n\n\n")
	assert.Contains(t, result, "\n\n")
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	input := "Line 1\r\nLine 2\rLine 3\nLine 4"
	result := CleanText(input)

	assert.NotContains(t, result, "\r")
	assert.Contains(t, result, "Line 2\nLine 3")
}

func TestCleanText_TrailingWhitespaceStripped(t *testing.T) {
	result := CleanText("Line 1   \nLine 2\t\t")

	assert.Equal(t, "Line 1\nLine 2", result)
}

func TestCleanText_EmptyInput(t *testing.T) {
	assert.Empty(t, CleanText(""))
}

func TestCleanText_OnlyWhitespace(t *testing.T) {
	assert.Empty(t, CleanText("   \n  \n  "))
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	input := "Talk with émojis 🚀 and spéciàl chàracters"
	result := CleanText(input)

	assert.Contains(t, result, "émojis")
	assert.Contains(t, result, "🚀")
	assert.Contains(t, result, "spéciàl chàracters")
}

func TestCleanText_DeterministicOutput(t *testing.T) {
	input := "Test content   with   spaces\n\n\nMultiple   blank   lines"

	assert.Equal(t, CleanText(input), CleanText(input))
}
