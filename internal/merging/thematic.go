package merging

import (
	"context"
	"strings"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/prompts"
	"github.com/jonathan/notesmith/internal/workspace"
)

// thematic reorganizes all part notes into one five-section document
// with a single advanced-tier call.
func (m *Merger) thematic(ctx context.Context, parts []string, meta workspace.Metadata) (string, error) {
	return m.client.GenerateContent(ctx, m.thematicPrompt(parts, meta), llm.TierAdvanced)
}

func (m *Merger) thematicPrompt(parts []string, meta workspace.Metadata) string {
	title := meta.Title
	if title == "" {
		title = "Untitled"
	}

	videoEmbed := ""
	if meta.EmbedID != "" {
		videoEmbed = prompts.MustFormat("merge.json", "embed_instruction", map[string]string{
			"EmbedHTML": EmbedHTML(meta.EmbedID),
		})
	}

	return prompts.MustFormat("merge.json", "thematic", map[string]string{
		"Title":         title,
		"SourceType":    meta.SourceType,
		"Source":        meta.SourceRef,
		"TranslateTo":   m.translateTo,
		"VideoEmbed":    videoEmbed,
		"CombinedParts": strings.Join(parts, partSeparator),
	})
}
