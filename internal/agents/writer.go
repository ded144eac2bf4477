package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/prompts"
	"github.com/jonathan/notesmith/internal/templates"
)

// Source budgets for the writer's prompts. Revision carries the full
// prior draft, so its source window is smaller.
const (
	maxDraftSourceLen  = 12000
	maxReviseSourceLen = 8000
)

// Writer drafts and revises notes on the standard tier.
type Writer struct {
	client llm.Client
}

func NewWriter(client llm.Client) *Writer {
	return &Writer{client: client}
}

// Draft writes a first note from the analysis, the template, and the
// source text.
func (w *Writer) Draft(ctx context.Context, analysis *Analysis, sourceText string, tmpl *templates.Template, embedID string) (string, error) {
	embedNote := "(no embed)"
	if embedID != "" {
		embedNote = fmt.Sprintf(`<iframe width="1280" height="720" src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe>`, embedID)
	}

	task := prompts.MustFormat("agents.json", "writer_task", map[string]string{
		"TemplateName":         tmpl.Name,
		"AnalysisSummary":      formatAnalysis(analysis),
		"TemplateInstructions": tmpl.Instructions,
		"SourceText":           truncate(sourceText, maxDraftSourceLen),
		"EmbedNote":            embedNote,
	})
	prompt := prompts.MustGet("agents.json", "writer_system") + "\n\n" + task

	note, err := w.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("draft: %w", err)
	}
	return note, nil
}

// Revise edits the prior draft to address a critique instead of
// regenerating from scratch.
func (w *Writer) Revise(ctx context.Context, draft string, critique *Critique, sourceText string) (string, error) {
	task := prompts.MustFormat("agents.json", "writer_revise", map[string]string{
		"CurrentDraft": draft,
		"Issues":       bulletList(critique.Issues),
		"Suggestions":  bulletList(critique.Suggestions),
		"SourceText":   truncate(sourceText, maxReviseSourceLen),
	})
	prompt := prompts.MustGet("agents.json", "writer_system") + "\n\n" + task

	note, err := w.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("revise: %w", err)
	}
	return note, nil
}

// formatAnalysis renders the analysis for the writer prompt, capped so
// a sprawling analysis cannot crowd out the source text.
func formatAnalysis(a *Analysis) string {
	lines := []string{
		"- Topic: " + a.MainTopic,
		"- Type: " + a.ContentType,
		"- Difficulty: " + a.DifficultyLevel,
		"- Summary: " + a.Summary,
		"",
		"### Structure",
	}

	for i, s := range a.Structure {
		name := s.Section
		if name == "" {
			name = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, name))
		if len(s.Timestamps) > 0 {
			lines = append(lines, "   Time: "+strings.Join(s.Timestamps, ", "))
		}
		for _, p := range firstN(s.KeyPoints, 3) {
			lines = append(lines, "   - "+p)
		}
	}

	lines = append(lines, "", "### Key concepts", strings.Join(firstN(a.KeyConcepts, 10), ", "))

	if len(a.Relationships) > 0 {
		lines = append(lines, "", "### Relationships")
		for _, r := range firstN(a.Relationships, 5) {
			lines = append(lines, fmt.Sprintf("- %s → %s (%s)", r.From, r.To, r.Type))
		}
	}

	return strings.Join(lines, "\n")
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}
