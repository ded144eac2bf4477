package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/notesmith/internal/templates"
)

func rulesFor(t *testing.T, name string) templates.Rules {
	t.Helper()
	tmpl, err := templates.Get(name)
	require.NoError(t, err)
	return tmpl.Rules
}

func TestScoreStructure_Detailed(t *testing.T) {
	note := "# Title\n\n## Key Topics\n\n## Detailed Notes\n\n## Key Quotes\n\n## Timeline\n"
	score, issues := scoreStructure(note, rulesFor(t, templates.Detailed))
	assert.Equal(t, 100, score)
	assert.Empty(t, issues)
}

func TestScoreStructure_PlainTextFailsDetailed(t *testing.T) {
	score, issues := scoreStructure("just prose with no headings at all", rulesFor(t, templates.Detailed))
	// Both markers missing and the section count short.
	assert.Equal(t, 45, score)
	assert.Len(t, issues, 3)
}

func TestScoreStructure_SectionCountShort(t *testing.T) {
	note := "# Title\n\n## Key Topics\n\n## Timeline\n"
	score, issues := scoreStructure(note, rulesFor(t, templates.Detailed))
	assert.Equal(t, 85, score)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "Not enough sections")
}

func TestScoreStructure_EssenceKeywords(t *testing.T) {
	full := "# T\n\n## Key Points\n- a\n\n## Connections\n\n## Summary\n"
	score, issues := scoreStructure(full, rulesFor(t, templates.Essence))
	assert.Equal(t, 100, score)
	assert.Empty(t, issues)

	// Renaming a required section drops the keyword.
	renamed := "# T\n\n## Key Points\n- a\n\n## Links\n\n## Summary\n"
	score, issues = scoreStructure(renamed, rulesFor(t, templates.Essence))
	assert.Equal(t, 85, score)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "connections")
}

func TestScoreStructure_KeywordsCaseInsensitive(t *testing.T) {
	note := "# T\n\n## KEY POINTS\n\n## CONNECTIONS\n\n## SUMMARY\n"
	score, _ := scoreStructure(note, rulesFor(t, templates.Essence))
	assert.Equal(t, 100, score)
}

func TestScoreStructure_Mindmap(t *testing.T) {
	full := "# Map\n\n```mermaid\nmindmap\n  root((topic))\n    Branch\n```\n\n## Text Outline\n\ntopic\n├── Branch\n└── Leaf\n"
	score, issues := scoreStructure(full, rulesFor(t, templates.Mindmap))
	assert.Equal(t, 100, score)
	assert.Empty(t, issues)

	// No diagram, no tree, no root keyword.
	bare := "# Notes\n\njust text mentioning mindmap once\n"
	score, issues = scoreStructure(bare, rulesFor(t, templates.Mindmap))
	assert.Equal(t, 15, score)
	assert.Len(t, issues, 4)
}

func TestScoreStructure_FloorsAtZero(t *testing.T) {
	score, _ := scoreStructure("", rulesFor(t, templates.Mindmap))
	assert.Equal(t, 0, score)
}
