// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/notesmith/internal/chunking"
	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/pipeline"
	"github.com/jonathan/notesmith/internal/workspace"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMetadata outputs a human-readable summary of an extracted source.
func (p *Printer) PrintMetadata(meta *workspace.Metadata) {
	if meta == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:    %s\n", meta.Title))
	sb.WriteString(fmt.Sprintf("Type:     %s\n", meta.SourceType))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", meta.SourceRef))
	if meta.QualityScore > 0 {
		sb.WriteString(fmt.Sprintf("Quality:  %.0f/100\n", meta.QualityScore))
	}
	if meta.CreatedAt != "" {
		sb.WriteString(fmt.Sprintf("Created:  %s\n", meta.CreatedAt))
	}

	if len(meta.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		count := min(len(meta.Warnings), 3)
		for i := 0; i < count; i++ {
			warning := meta.Warnings[i]
			if len(warning) > 50 {
				warning = warning[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", warning))
		}
		if len(meta.Warnings) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(meta.Warnings)-3))
		}
	}

	p.printBox("EXTRACTED SOURCE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStats outputs the chunking statistics for a transcript.
func (p *Printer) PrintStats(stats chunking.Stats, sample string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Characters:        %d\n", stats.Chars))
	sb.WriteString(fmt.Sprintf("Lines:             %d\n", stats.Lines))
	needs := "no"
	if stats.NeedsChunking {
		needs = "yes"
	}
	sb.WriteString(fmt.Sprintf("Needs chunking:    %s\n", needs))
	sb.WriteString(fmt.Sprintf("Estimated chunks:  %d\n", stats.EstimatedChunks))

	if sample != "" {
		sb.WriteString("\nPreview:\n")
		for _, line := range strings.Split(sample, "\n") {
			if len(line) > 50 {
				line = line[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	p.printBox("SOURCE STATISTICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScores outputs the per-part quality scores recorded under gating.
func (p *Printer) PrintScores(scores []pipeline.ChunkScore) {
	if len(scores) == 0 {
		return
	}

	var sb strings.Builder

	failed := 0
	count := min(len(scores), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := scores[i]
		mark := "✓"
		if !s.Passed {
			mark = "✗"
		}
		attempts := fmt.Sprintf("%d attempts", s.Attempts)
		if s.Attempts == 1 {
			attempts = "1 attempt"
		}
		sb.WriteString(fmt.Sprintf("Part %d:  %3d/100  %s  (%s)\n", s.Part, s.Score, mark, attempts))
	}
	if len(scores) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more parts\n", len(scores)-maxItemsToShow))
	}
	for _, s := range scores {
		if !s.Passed {
			failed++
		}
	}
	if failed > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠ %d of %d parts finished below the threshold\n", failed, len(scores)))
	}

	p.printBox("PART QUALITY SCORES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintUsage outputs the token spend of a run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintUsage(usage llm.Usage) {
	if usage.Calls == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO GENERATION CALLS MADE")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Calls:           %d\n", usage.Calls))
	sb.WriteString(fmt.Sprintf("Prompt tokens:   %d\n", usage.PromptTokens))
	sb.WriteString(fmt.Sprintf("Output tokens:   %d\n", usage.OutputTokens))
	sb.WriteString(fmt.Sprintf("Total tokens:    %d", usage.PromptTokens+usage.OutputTokens))

	p.printBox("TOKEN USAGE", sb.String())
}

// PrintRunSummary outputs the final accounting of a pipeline run.
func (p *Printer) PrintRunSummary(result *pipeline.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:     %s\n", result.Title))
	sb.WriteString(fmt.Sprintf("Work unit: %s\n", result.WorkDir))

	parts := fmt.Sprintf("Parts:     %d synthesized", result.Notes.Synthesized)
	if result.Notes.Skipped > 0 {
		parts += fmt.Sprintf(", %d skipped", result.Notes.Skipped)
	}
	if result.Notes.Failed > 0 {
		parts += fmt.Sprintf(", %d failed", result.Notes.Failed)
	}
	sb.WriteString(parts + "\n")

	sb.WriteString(fmt.Sprintf("Strategy:  %s\n", result.Merge.Strategy))
	if result.OutputPath != "" {
		sb.WriteString(fmt.Sprintf("Output:    %s\n", result.OutputPath))
	}
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", result.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Calls:     %d", result.Usage.Calls))

	if len(result.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\n\n⚠ Finished with %d warnings", len(result.Warnings)))
	}

	p.printBox("RUN SUMMARY", sb.String())
}
