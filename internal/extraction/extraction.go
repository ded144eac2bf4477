// Package extraction turns concrete sources (local files, web pages, PDFs,
// YouTube videos) into a uniform text document ready for chunking. Each
// adapter reports a quality score and warnings instead of failing on
// degraded input; only infrastructure problems surface as errors.
package extraction

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/jonathan/notesmith/internal/workspace"
)

// Source kinds produced by the adapters.
const (
	KindFile    = "file"
	KindVideo   = "video"
	KindWeb     = "web"
	KindPDF     = "pdf"
	KindYouTube = "youtube"
)

// Result is the uniform output of every source adapter. Kind-specific
// fields stay zero for other kinds.
type Result struct {
	Success   bool
	Kind      string
	SourceRef string // path or URL
	Title     string

	FullText     string
	QualityScore int // 0-100
	Warnings     []string

	// Web
	Domain string

	// PDF
	Author string
	Pages  int

	// YouTube and subtitle files
	VideoID        string
	Channel        string
	Duration       string
	Language       string
	TranscriptKind string // "manual" or "auto"
}

// Metadata converts the result into the work-unit metadata record.
func (r *Result) Metadata() *workspace.Metadata {
	m := workspace.NewMetadata(r.FullText, r.Title, r.Kind, r.SourceRef)
	m.QualityScore = float64(r.QualityScore)
	m.EmbedID = r.VideoID
	m.Warnings = r.Warnings
	return m
}

// ToolError reports a missing or failed external helper tool.
type ToolError struct {
	Tool    string
	Message string
	Cause   error
}

func (e *ToolError) Error() string {
	if e.Cause != nil {
		return e.Tool + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Tool + ": " + e.Message
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// lookTool checks that an external helper is installed and returns an
// actionable error when it is not.
func lookTool(tool, installHint string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return &ToolError{
			Tool:    tool,
			Message: "not found in PATH. " + installHint,
			Cause:   err,
		}
	}
	return nil
}

// runTool executes an external helper and returns its stdout. Stderr is
// folded into the error on failure.
func runTool(ctx context.Context, timeout time.Duration, tool string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, tool, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "command failed"
		}
		return "", &ToolError{Tool: tool, Message: msg, Cause: err}
	}
	return stdout.String(), nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
