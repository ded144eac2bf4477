// Package pipeline drives the three phases of a note generation run:
// extract, part-note synthesis, and merge. Each phase persists its
// artifacts into a work unit on disk, and artifact presence is the
// resume signal. Rerunning a phase skips whatever already exists
// unless the run is forced.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/notesmith/internal/agents"
	"github.com/jonathan/notesmith/internal/chunking"
	"github.com/jonathan/notesmith/internal/extraction"
	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/merging"
	"github.com/jonathan/notesmith/internal/revision"
	"github.com/jonathan/notesmith/internal/synthesis"
	"github.com/jonathan/notesmith/internal/templates"
	"github.com/jonathan/notesmith/internal/verification"
	"github.com/jonathan/notesmith/internal/workspace"
)

// ProgressEvent is one structured progress update during a run.
type ProgressEvent struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback receives progress events when configured. Events
// may fire from synthesis workers, so implementations must be safe
// for concurrent use when Parallel is above one.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds the full configuration for a pipeline run.
type RunOptions struct {
	// Source selectors. Exactly one is used, checked in this order.
	FilePath   string
	PDFPath    string
	YouTubeRef string
	URL        string

	// WorkDir resumes an existing work unit instead of extracting a
	// new one.
	WorkDir string

	OutputDir   string
	Template    string
	TranslateTo string
	Language    string // preferred subtitle language for YouTube sources

	ChunkThreshold int
	ChunkSize      int
	OverlapLines   int

	MergeStrategy         merging.Strategy
	HierarchicalThreshold int
	GroupSize             int

	Quality     bool // score each part note and revise until it passes
	Agents      bool // analyst/writer/critic roles instead of the single-call path
	MaxAttempts int
	MinScore    int
	Weights     string // verification weight preset name

	Parallel int
	Force    bool          // regenerate artifacts that already exist
	Budget   time.Duration // wall-clock limit for the whole run, 0 for none

	APIKey    string
	LLMConfig *llm.Config
	Client    llm.Client // overrides APIKey-based construction when set

	UseBrowser bool
	Verbose    bool

	OnProgress ProgressCallback
}

// ChunkScore is the per-part quality record kept when gating is on.
type ChunkScore struct {
	Part     int  `json:"part"`
	Score    int  `json:"score"`
	Passed   bool `json:"passed"`
	Attempts int  `json:"attempts"`
}

// NotesResult reports what the synthesis phase did. Analysis is the
// merged document-level view from the analyst role, set only on the
// agents route.
type NotesResult struct {
	Parts       int
	Synthesized int
	Skipped     int
	Failed      int
	Scores      []ChunkScore
	Warnings    []string
	Analysis    *agents.Analysis
}

// MergeResult reports what the merge phase produced.
type MergeResult struct {
	Strategy merging.Strategy
	Path     string
}

// Result aggregates one full pipeline run.
type Result struct {
	RunID      string
	WorkDir    string
	Title      string
	SourceType string
	Notes      NotesResult
	Merge      MergeResult
	OutputPath string
	Warnings   []string
	Usage      llm.Usage
	Duration   time.Duration
}

// Run executes extract, notes, and merge in order, then copies the
// final document next to the work unit as
// <output-dir>/<work-unit>_<template>.md.
func Run(ctx context.Context, opts RunOptions) (*Result, error) {
	start := time.Now()
	if opts.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Budget)
		defer cancel()
	}

	result := &Result{RunID: uuid.NewString()}

	var ws *workspace.Workspace
	var err error
	if opts.WorkDir != "" {
		ws, err = workspace.Open(opts.WorkDir)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Step 1/3: Resuming work unit %s (state: %s)\n", ws.Name(), ws.State())
	} else {
		ws, _, err = Extract(ctx, opts, result.RunID)
		if err != nil {
			return nil, err
		}
	}
	result.WorkDir = ws.Dir

	meta, err := ws.LoadMetadata()
	if err != nil {
		return nil, &MissingInputError{Phase: PhaseNotes, Path: ws.MetadataPath()}
	}
	result.Title = meta.Title
	result.SourceType = meta.SourceType

	client := opts.Client
	if client == nil {
		client, err = newClient(ctx, opts)
		if err != nil {
			return nil, err
		}
		defer client.Close()
	}

	notes, err := Notes(ctx, client, ws, opts, result.RunID)
	if err != nil {
		return nil, err
	}
	result.Notes = *notes
	result.Warnings = append(result.Warnings, notes.Warnings...)

	merged, err := Merge(ctx, client, ws, opts, result.RunID)
	if err != nil {
		return nil, err
	}
	result.Merge = *merged

	if path, err := copyFinal(ws, opts); err != nil {
		warn := fmt.Sprintf("could not copy final document: %v", err)
		result.Warnings = append(result.Warnings, warn)
		fmt.Printf("Warning: %s\n", warn)
	} else {
		result.OutputPath = path
	}

	result.Usage = client.Usage()
	result.Duration = time.Since(start)
	return result, nil
}

// Extract runs phase one: pull text out of the source and persist the
// transcript and metadata into a fresh work unit.
func Extract(ctx context.Context, opts RunOptions, runID string) (*workspace.Workspace, *extraction.Result, error) {
	var (
		res *extraction.Result
		err error
	)
	switch {
	case opts.FilePath != "":
		fmt.Printf("Step 1/3: Extracting from file %s...\n", opts.FilePath)
		res, err = extraction.FromFile(opts.FilePath)
	case opts.PDFPath != "":
		fmt.Printf("Step 1/3: Extracting from PDF %s...\n", opts.PDFPath)
		res, err = extraction.FromPDF(ctx, opts.PDFPath)
	case opts.YouTubeRef != "":
		fmt.Printf("Step 1/3: Extracting from YouTube %s...\n", opts.YouTubeRef)
		res, err = extraction.FromYouTube(ctx, opts.YouTubeRef, opts.Language)
	case opts.URL != "":
		fmt.Printf("Step 1/3: Extracting from URL %s...\n", opts.URL)
		res, err = extraction.FromWeb(ctx, opts.URL, extraction.WebOptions{
			UseBrowser: opts.UseBrowser,
			Verbose:    opts.Verbose,
		})
	default:
		return nil, nil, errors.New("no source provided: set one of file, pdf, youtube, or url")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("extraction failed: %w", err)
	}
	if !res.Success {
		return nil, res, fmt.Errorf("source produced no usable text: %s", strings.Join(res.Warnings, "; "))
	}
	for _, w := range res.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "output"
	}
	ws, err := workspace.Create(outDir, res.Title)
	if err != nil {
		return nil, res, err
	}
	if err := ws.SaveTranscript(res.FullText); err != nil {
		return nil, res, err
	}
	if err := ws.SaveMetadata(res.Metadata()); err != nil {
		return nil, res, err
	}

	fmt.Printf("  extracted %d chars (quality %d/100) into %s\n", len(res.FullText), res.QualityScore, ws.Dir)
	emitProgress(&opts, runID, PhaseExtract, fmt.Sprintf("extracted %q from %s source", res.Title, res.Kind), res.Metadata())
	return ws, res, nil
}

// Notes runs phase two: split the transcript into chunks and
// synthesize one part note per chunk. Parts whose notes already exist
// are skipped unless Force is set. A single part's failure is recorded
// as a warning so the remaining parts still run; only context
// cancellation or a persistence error aborts the phase.
func Notes(ctx context.Context, client llm.Client, ws *workspace.Workspace, opts RunOptions, runID string) (*NotesResult, error) {
	if err := CheckInputs(ws, PhaseNotes); err != nil {
		return nil, err
	}
	meta, err := ws.LoadMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	transcript, err := ws.LoadTranscript()
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	chunks, err := prepareChunks(ws, transcript, opts)
	if err != nil {
		return nil, err
	}
	total := len(chunks)
	fmt.Printf("Step 2/3: Synthesizing part notes (%d parts)...\n", total)

	tmpl, err := pickTemplate(opts.Template)
	if err != nil {
		return nil, err
	}
	generate, overview, err := chunkGeneratorFor(client, *meta, tmpl, total, opts)
	if err != nil {
		return nil, err
	}

	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	result := &NotesResult{Parts: total}
	// Per-index slots keep the workers free of shared-state locking.
	scores := make([]*ChunkScore, total)
	failures := make([]string, total)
	synthesized := make([]bool, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, c := range chunks {
		c := c
		if !opts.Force && ws.HasNote(c.Index) {
			fmt.Printf("  part %d/%d: note exists, skipping\n", c.Index+1, total)
			result.Skipped++
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fmt.Printf("  part %d/%d: synthesizing...\n", c.Index+1, total)
			note, score, err := generate(gctx, c)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				failures[c.Index] = fmt.Sprintf("part %d/%d failed: %v", c.Index+1, total, err)
				return nil
			}
			if err := ws.SaveNote(c.Index, note); err != nil {
				return err
			}
			synthesized[c.Index] = true
			scores[c.Index] = score
			emitProgress(&opts, runID, PhaseNotes, fmt.Sprintf("part %d/%d complete", c.Index+1, total), score)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := 0; i < total; i++ {
		if synthesized[i] {
			result.Synthesized++
		}
		if scores[i] != nil {
			result.Scores = append(result.Scores, *scores[i])
		}
		if failures[i] != "" {
			result.Failed++
			result.Warnings = append(result.Warnings, failures[i])
			fmt.Printf("Warning: %s\n", failures[i])
		}
	}

	if result.Synthesized+result.Skipped == 0 {
		return nil, fmt.Errorf("all %d parts failed to synthesize", total)
	}

	if overview != nil {
		if a := overview(); a != nil {
			result.Analysis = a
			fmt.Printf("  document analysis: %s (%s), %d key concepts\n",
				a.MainTopic, a.ContentType, len(a.KeyConcepts))
		}
	}
	return result, nil
}

// Merge runs phase three: combine the persisted part notes into the
// final document and save it into the work unit.
func Merge(ctx context.Context, client llm.Client, ws *workspace.Workspace, opts RunOptions, runID string) (*MergeResult, error) {
	if err := CheckInputs(ws, PhaseMerge); err != nil {
		return nil, err
	}
	meta, err := ws.LoadMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	notes, err := ws.LoadNotes()
	if err != nil {
		return nil, err
	}

	fmt.Printf("Step 3/3: Merging %d part notes...\n", len(notes))

	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = n.Content
	}

	merger := merging.New(client, merging.Options{
		Strategy:              opts.MergeStrategy,
		HierarchicalThreshold: opts.HierarchicalThreshold,
		GroupSize:             opts.GroupSize,
		TranslateTo:           opts.TranslateTo,
		Logf: func(format string, args ...any) {
			fmt.Printf("  "+format+"\n", args...)
		},
	})
	merged, strategy, err := merger.Merge(ctx, parts, *meta)
	if err != nil {
		return nil, err
	}

	// The strategies are told to place the embed themselves; this
	// catches documents where that instruction was ignored.
	if meta.EmbedID != "" {
		switch withEmbed, err := merging.InsertEmbed(merged, meta.EmbedID); {
		case err == nil:
			merged = withEmbed
		case errors.Is(err, merging.ErrAlreadyEmbedded):
		default:
			fmt.Printf("Warning: could not insert video embed: %v\n", err)
		}
	}

	if err := ws.SaveFinal(merged); err != nil {
		return nil, err
	}
	fmt.Printf("  merged with %s strategy into %s\n", strategy, ws.FinalPath())
	emitProgress(&opts, runID, PhaseMerge, fmt.Sprintf("merged %d parts with %s strategy", len(parts), strategy), nil)
	return &MergeResult{Strategy: strategy, Path: ws.FinalPath()}, nil
}

// prepareChunks reuses the persisted chunk artifacts when resuming;
// otherwise it splits the transcript and persists a fresh set.
func prepareChunks(ws *workspace.Workspace, transcript string, opts RunOptions) ([]chunking.Chunk, error) {
	if !opts.Force && ws.ChunkCount() > 0 {
		chunks, err := ws.LoadChunks()
		if err != nil {
			return nil, err
		}
		if len(chunks) > 0 {
			return chunks, nil
		}
	}

	threshold := opts.ChunkThreshold
	if threshold <= 0 {
		threshold = chunking.DefaultThreshold
	}
	size := opts.ChunkSize
	if size <= 0 {
		size = chunking.DefaultChunkSize
	}
	overlap := opts.OverlapLines
	if overlap <= 0 {
		overlap = chunking.DefaultOverlapLines
	}

	var chunks []chunking.Chunk
	if chunking.NeedsChunking(transcript, threshold) {
		chunks = chunking.Split(transcript, size, overlap)
	} else {
		// Below the threshold the whole transcript is one part.
		chunks = chunking.Split(transcript, len(transcript), overlap)
	}
	if err := ws.SaveChunks(chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

type chunkGenerator func(ctx context.Context, c chunking.Chunk) (string, *ChunkScore, error)

// chunkGeneratorFor selects the synthesis route once per run: the
// analyst/writer/critic pipeline, the verified revision loop, or a
// single baseline call per part. On the agents route the second return
// folds the per-part analyses into one document-level view; it must be
// called only after every part has finished.
func chunkGeneratorFor(client llm.Client, meta workspace.Metadata, tmpl *templates.Template, total int, opts RunOptions) (chunkGenerator, func() *agents.Analysis, error) {
	if opts.Agents {
		orch := agents.NewOrchestrator(client, agents.Options{
			MaxAttempts: opts.MaxAttempts,
			MinScore:    opts.MinScore,
			Logf:        verboseLogf(opts),
		})
		analyses := make([]*agents.Analysis, total)
		gen := func(ctx context.Context, c chunking.Chunk) (string, *ChunkScore, error) {
			outcome, err := orch.GenerateNote(ctx, c.Text, tmpl, meta.SourceType, meta.EmbedID)
			if err != nil {
				return "", nil, err
			}
			analyses[c.Index] = outcome.Analysis
			score := &ChunkScore{Part: c.Index + 1, Attempts: outcome.Attempts, Passed: outcome.Passed}
			if outcome.Critique != nil {
				score.Score = outcome.Critique.Score
			}
			return outcome.Note, score, nil
		}
		overview := func() *agents.Analysis {
			var done []*agents.Analysis
			for _, a := range analyses {
				if a != nil {
					done = append(done, a)
				}
			}
			return agents.MergeAnalyses(done)
		}
		return gen, overview, nil
	}

	var synOpts synthesis.Options
	if opts.Quality {
		weights, err := verification.WeightsByName(opts.Weights)
		if err != nil {
			return nil, nil, err
		}
		synOpts.Verifier = verification.New(verification.NewLLMJudge(client), weights, opts.MinScore)
		loop := &revision.Loop{MaxAttempts: opts.MaxAttempts, MinScore: opts.MinScore}
		if opts.Verbose {
			loop.OnState = func(state revision.State, attempt int) {
				fmt.Printf("[VERBOSE] revision %s (attempt %d)\n", state, attempt)
			}
		}
		synOpts.Loop = loop
	}

	syn := synthesis.New(client, synOpts)
	return func(ctx context.Context, c chunking.Chunk) (string, *ChunkScore, error) {
		res, err := syn.Synthesize(ctx, synthesis.Request{
			Text:       c.Text,
			PartNum:    c.Index + 1,
			TotalParts: total,
			Meta:       meta,
			Template:   tmpl,
		})
		if err != nil {
			return "", nil, err
		}
		var score *ChunkScore
		if res.Score != nil {
			score = &ChunkScore{Part: c.Index + 1, Score: res.Score.Total, Passed: res.Passed, Attempts: res.Attempts}
		}
		return res.Note, score, nil
	}, nil, nil
}

// newClient builds the generation client from the options. The notes
// phase cannot run without one; standalone merging degrades to the
// simple strategy instead, so that caller tolerates ErrMissingAPIKey.
func newClient(ctx context.Context, opts RunOptions) (llm.Client, error) {
	if opts.Client != nil {
		return opts.Client, nil
	}
	if opts.APIKey == "" {
		return nil, llm.ErrMissingAPIKey
	}
	cfg := opts.LLMConfig
	if cfg == nil {
		cfg = llm.DefaultConfig()
	}
	return llm.NewClient(ctx, cfg, opts.APIKey)
}

func pickTemplate(name string) (*templates.Template, error) {
	if name == "" {
		return templates.GetOrDefault(""), nil
	}
	return templates.Get(name)
}

// copyFinal places the merged document beside the work unit so the
// deliverable survives cleaning up intermediate artifacts.
func copyFinal(ws *workspace.Workspace, opts RunOptions) (string, error) {
	content, err := ws.LoadFinal()
	if err != nil {
		return "", err
	}
	tmplName := opts.Template
	if tmplName == "" {
		tmplName = templates.DefaultName
	}
	dest := filepath.Join(filepath.Dir(ws.Dir), fmt.Sprintf("%s_%s.md", ws.Name(), tmplName))
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		return "", err
	}
	return dest, nil
}

func emitProgress(opts *RunOptions, runID string, phase Phase, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Phase:   string(phase),
			Message: message,
			RunID:   runID,
			Content: content,
		})
	}
}

func verboseLogf(opts RunOptions) func(string, ...any) {
	if !opts.Verbose {
		return nil
	}
	return func(format string, args ...any) {
		fmt.Printf("[VERBOSE] "+format+"\n", args...)
	}
}
