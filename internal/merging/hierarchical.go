package merging

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/prompts"
	"github.com/jonathan/notesmith/internal/workspace"
)

// hierarchical condenses groups of adjacent parts into intermediate
// summaries on the standard tier, then runs one thematic pass over the
// summaries. Groups are reduced left to right so source order survives
// into the final document.
func (m *Merger) hierarchical(ctx context.Context, parts []string, meta workspace.Metadata) (string, error) {
	intermediates := make([]string, 0, (len(parts)+m.groupSize-1)/m.groupSize)

	for i := 0; i < len(parts); i += m.groupSize {
		end := min(i+m.groupSize, len(parts))
		groupRange := fmt.Sprintf("Part %d-%d", i+1, end)
		m.logf("merging %s of %d parts", groupRange, len(parts))

		prompt := prompts.MustFormat("merge.json", "group", map[string]string{
			"GroupRange": groupRange,
			"TotalParts": strconv.Itoa(len(parts)),
			"GroupText":  strings.Join(parts[i:end], partSeparator),
		})
		summary, err := m.client.GenerateContent(ctx, prompt, llm.TierStandard)
		if err != nil {
			return "", fmt.Errorf("group merge %s: %w", groupRange, err)
		}
		intermediates = append(intermediates, summary)
	}

	m.logf("merging %d intermediate summaries", len(intermediates))
	return m.thematic(ctx, intermediates, meta)
}
