// Package templates defines the note layouts the generator can target.
// Each template carries the prompt instructions that shape generation and
// the structural rules the verifier scores against.
package templates

import (
	"fmt"
	"sort"
)

// Rules lists the structural requirements a rendered note must satisfy.
// Markers and keywords are substring checks; keywords match
// case-insensitively. MinSections counts level-2 headings. Diagram
// templates additionally require a mermaid block and at least one of
// the tree characters.
type Rules struct {
	RequiredMarkers  []string
	RequiredKeywords []string
	MinSections      int
	RequireDiagram   bool
	TreeChars        []string
}

// Template describes one note layout.
type Template struct {
	Name         string
	Description  string
	Instructions string
	Rules        Rules
}

const (
	Detailed = "detailed"
	Essence  = "essence"
	Easy     = "easy"
	Mindmap  = "mindmap"
)

// DefaultName is the template used when none is configured.
const DefaultName = Detailed

var registry = map[string]*Template{
	Detailed: {
		Name:        Detailed,
		Description: "full structured notes with topics, quotes, action items, and a timeline",
		Instructions: "## Key Topics\n" +
			"The main topics this part covers, organized hierarchically.\n\n" +
			"## Detailed Notes\n" +
			"Thorough notes for each topic, including definitions and examples.\n" +
			"Every statement needs a citation to the source.\n\n" +
			"## Key Quotes\n" +
			"Especially important statements quoted verbatim.\n" +
			"- \"quote\" [citation]\n\n" +
			"## Action Items\n" +
			"Practical advice or methods mentioned in this part.\n" +
			"(omit this section if there are none)\n\n" +
			"## Timeline\n" +
			"The main points of this part in source order.\n" +
			"- [citation] one-line summary\n",
		Rules: Rules{
			RequiredMarkers: []string{"# ", "## "},
			MinSections:     4,
		},
	},
	Essence: {
		Name:        Essence,
		Description: "compressed summary of the core points and how they relate",
		Instructions: "## Key Points\n" +
			"The essential ideas only, as a short list. Each point cites the source.\n\n" +
			"## Connections\n" +
			"How the key points relate to each other.\n\n" +
			"## Summary\n" +
			"The whole part compressed into a single paragraph.\n",
		Rules: Rules{
			RequiredMarkers:  []string{"# ", "## "},
			RequiredKeywords: []string{"key points", "connections", "summary"},
			MinSections:      2,
		},
	},
	Easy: {
		Name:        Easy,
		Description: "plain-language explainer for readers new to the subject",
		Instructions: "## The Big Picture\n" +
			"What this part is about, in everyday language.\n\n" +
			"## What You Must Know\n" +
			"The points a first-time reader must not miss, each with a citation.\n\n" +
			"## Explained Simply\n" +
			"Walk through the difficult ideas using analogies and plain words.\n\n" +
			"## In One Line\n" +
			"The single sentence to remember.\n",
		Rules: Rules{
			RequiredMarkers:  []string{"# ", "## "},
			RequiredKeywords: []string{"must know", "one line"},
			MinSections:      3,
		},
	},
	Mindmap: {
		Name:        Mindmap,
		Description: "mermaid mindmap plus a text tree outline",
		Instructions: "## Mindmap\n" +
			"A mermaid mindmap of the content:\n\n" +
			"```mermaid\n" +
			"mindmap\n" +
			"  root((central topic))\n" +
			"    Branch A\n" +
			"      sub-point\n" +
			"    Branch B\n" +
			"```\n\n" +
			"## Text Outline\n" +
			"The same structure as a text tree, with citations on the leaves:\n\n" +
			"central topic\n" +
			"├── Branch A\n" +
			"│   └── sub-point [citation]\n" +
			"└── Branch B [citation]\n",
		Rules: Rules{
			RequiredMarkers:  []string{"# ", "```mermaid", "mindmap"},
			RequiredKeywords: []string{"root"},
			RequireDiagram:   true,
			TreeChars:        []string{"├", "└", "│"},
		},
	},
}

// Get returns the named template, or an error listing the valid names.
func Get(name string) (*Template, error) {
	if t, ok := registry[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown template %q (valid: %v)", name, Names())
}

// GetOrDefault returns the named template, falling back to the default
// layout when the name is unknown.
func GetOrDefault(name string) *Template {
	if t, ok := registry[name]; ok {
		return t
	}
	return registry[DefaultName]
}

// Names returns the registered template names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
