package merging

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/notesmith/internal/workspace"
)

// Simple concatenates the part notes under a generated header with
// explicit separators between parts. It makes no generation calls and
// serves as the fallback for every other strategy.
func Simple(parts []string, meta workspace.Metadata) string {
	title := meta.Title
	if title == "" {
		title = "Untitled"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Source: %s\n", meta.SourceRef)
	fmt.Fprintf(&b, "- Created: %s\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&b, "- Parts: %d\n\n", len(parts))
	if meta.EmbedID != "" {
		b.WriteString(EmbedHTML(meta.EmbedID))
		b.WriteString("\n\n")
	}
	b.WriteString("---\n\n")
	b.WriteString(strings.Join(parts, partSeparator))
	return b.String()
}
