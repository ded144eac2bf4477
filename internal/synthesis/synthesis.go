// Package synthesis turns one chunk of source text into one part note.
//
// The prompt carries the document metadata, the part position, the
// template's structure instructions, and a citation rule matched to the
// source type. Baseline synthesis is a single standard-tier call; with
// a verifier attached, each chunk instead runs through the revision
// loop until it scores high enough or the attempt budget runs out.
package synthesis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/prompts"
	"github.com/jonathan/notesmith/internal/revision"
	"github.com/jonathan/notesmith/internal/templates"
	"github.com/jonathan/notesmith/internal/verification"
	"github.com/jonathan/notesmith/internal/workspace"
)

// Request describes one chunk to synthesize. PartNum counts from 1.
type Request struct {
	Text       string
	PartNum    int
	TotalParts int
	Meta       workspace.Metadata
	Template   *templates.Template
}

// Result is the note produced for one chunk. Score is nil on the
// baseline path where no verification runs.
type Result struct {
	Note     string
	Score    *verification.Score
	Attempts int
	Passed   bool
}

// Options configures a Synthesizer. Setting Verifier routes every
// chunk through the revision loop; Loop bounds that loop and may stay
// nil for the defaults.
type Options struct {
	Verifier *verification.Verifier
	Loop     *revision.Loop
}

// Synthesizer generates part notes for chunks.
type Synthesizer struct {
	client   llm.Client
	verifier *verification.Verifier
	loop     *revision.Loop
}

func New(client llm.Client, opts Options) *Synthesizer {
	s := &Synthesizer{
		client:   client,
		verifier: opts.Verifier,
		loop:     opts.Loop,
	}
	if s.loop == nil {
		s.loop = &revision.Loop{}
	}
	return s
}

// Synthesize produces the note for one chunk.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (*Result, error) {
	prompt := BuildPrompt(req)

	if s.verifier == nil {
		note, err := s.client.GenerateContent(ctx, prompt, llm.TierStandard)
		if err != nil {
			return nil, fmt.Errorf("part %d/%d: %w", req.PartNum, req.TotalParts, err)
		}
		return &Result{Note: note, Attempts: 1}, nil
	}

	tmpl := req.Template
	if tmpl == nil {
		tmpl = templates.GetOrDefault("")
	}

	generate := func(ctx context.Context, prompt string) (string, error) {
		return s.client.GenerateContent(ctx, prompt, llm.TierStandard)
	}
	score := func(ctx context.Context, candidate string) verification.Score {
		return s.verifier.Verify(ctx, candidate, req.Text, tmpl, req.Meta.SourceType)
	}

	outcome, err := s.loop.Run(ctx, generate, score, prompt)
	if err != nil {
		return nil, fmt.Errorf("part %d/%d: %w", req.PartNum, req.TotalParts, err)
	}
	return &Result{
		Note:     outcome.Note,
		Score:    &outcome.Score,
		Attempts: outcome.Attempts,
		Passed:   outcome.Passed,
	}, nil
}

// BuildPrompt renders the chunk-note prompt for a request.
func BuildPrompt(req Request) string {
	tmpl := req.Template
	if tmpl == nil {
		tmpl = templates.GetOrDefault("")
	}
	title := req.Meta.Title
	if title == "" {
		title = "Untitled"
	}

	return prompts.MustFormat("notes.json", "chunk_note", map[string]string{
		"PartNum":              strconv.Itoa(req.PartNum),
		"TotalParts":           strconv.Itoa(req.TotalParts),
		"Title":                title,
		"SourceType":           req.Meta.SourceType,
		"TemplateInstructions": tmpl.Instructions,
		"CitationRule":         CitationRule(req.Meta.SourceType),
		"ChunkText":            req.Text,
	})
}

// CitationRule returns the citation instruction matching a source type.
// The markers it asks for are the ones the verifier counts.
func CitationRule(sourceType string) string {
	switch strings.ToLower(sourceType) {
	case "youtube", "video":
		return "Attach a timestamp citation [MM:SS] or [HH:MM:SS] to every claim. Spread citations across the whole part instead of clustering them at one end."
	case "pdf":
		return "Attach a page citation [p.N] to every claim, using the page markers present in the source."
	default:
		return "Attach a bracketed source citation to every claim, naming the section or quoting a short fragment, e.g. [Introduction]."
	}
}
