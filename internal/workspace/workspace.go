// Package workspace manages the on-disk checkpoint layout for one work unit:
// the raw transcript, its metadata record, numbered chunk and partial-note
// artifacts, and the final merged document. Artifact presence is the sole
// resumability signal consumed by the pipeline.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/notesmith/internal/chunking"
)

const (
	transcriptFile = "transcript.txt"
	metadataFile   = "metadata.txt"
	chunksDir      = "chunks"
	finalFile      = "final_notes.md"
)

// State identifies how far a work unit has progressed, derived purely from
// which artifacts exist on disk.
type State string

const (
	StateEmpty             State = "empty"
	StateExtracted         State = "extracted"
	StateChunked           State = "chunked"
	StatePartialNotesReady State = "partial_notes_ready"
	StateMerged            State = "merged"
)

// Note is one persisted partial-note artifact. Index is the 0-based chunk
// index the note was synthesized from.
type Note struct {
	Index   int
	Content string
}

// Workspace is a handle on one work-unit directory.
type Workspace struct {
	Dir string
}

// Create makes a fresh work-unit directory under root, named
// <sanitized-title>_<YYYYMMDD_HHMMSS>.
func Create(root, title string) (*Workspace, error) {
	name := fmt.Sprintf("%s_%s", sanitizeName(title), time.Now().Format("20060102_150405"))
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Open returns a handle on an existing work-unit directory.
func Open(dir string) (*Workspace, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("work directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("work directory path is not a directory: %s", dir)
	}
	return &Workspace{Dir: dir}, nil
}

// sanitizeName reduces a source name to a safe directory-name fragment.
func sanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "source"
	}
	return sb.String()
}

// Name returns the work unit's directory base name.
func (w *Workspace) Name() string {
	return filepath.Base(w.Dir)
}

func (w *Workspace) TranscriptPath() string { return filepath.Join(w.Dir, transcriptFile) }
func (w *Workspace) MetadataPath() string   { return filepath.Join(w.Dir, metadataFile) }
func (w *Workspace) FinalPath() string      { return filepath.Join(w.Dir, finalFile) }

// ChunkPath returns the artifact path for the chunk at 0-based index.
// Artifacts are 1-based and zero-padded so lexical order matches numeric.
func (w *Workspace) ChunkPath(index int) string {
	return filepath.Join(w.Dir, chunksDir, fmt.Sprintf("chunk_%03d.txt", index+1))
}

// NotePath returns the partial-note artifact path for the chunk at 0-based index.
func (w *Workspace) NotePath(index int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("notes_part_%03d.md", index+1))
}

// SaveTranscript persists the raw extracted text.
func (w *Workspace) SaveTranscript(text string) error {
	if err := os.WriteFile(w.TranscriptPath(), []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// LoadTranscript reads the raw extracted text.
func (w *Workspace) LoadTranscript() (string, error) {
	data, err := os.ReadFile(w.TranscriptPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HasTranscript reports whether the raw-text artifact exists.
func (w *Workspace) HasTranscript() bool {
	return fileExists(w.TranscriptPath())
}

// SaveMetadata persists the metadata record.
func (w *Workspace) SaveMetadata(m *Metadata) error {
	if err := os.WriteFile(w.MetadataPath(), []byte(m.Encode()), 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads the metadata record.
func (w *Workspace) LoadMetadata() (*Metadata, error) {
	data, err := os.ReadFile(w.MetadataPath())
	if err != nil {
		return nil, err
	}
	return DecodeMetadata(string(data))
}

// HasMetadata reports whether the metadata record exists.
func (w *Workspace) HasMetadata() bool {
	return fileExists(w.MetadataPath())
}

// SaveChunks replaces the chunk artifact set atomically: the previous set is
// removed first so a re-chunk with different parameters never leaves stale
// files behind.
func (w *Workspace) SaveChunks(chunks []chunking.Chunk) error {
	dir := filepath.Join(w.Dir, chunksDir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear chunk directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create chunk directory: %w", err)
	}
	for _, c := range chunks {
		if err := os.WriteFile(w.ChunkPath(c.Index), []byte(c.Text), 0644); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", c.Index, err)
		}
	}
	return nil
}

// ChunkCount counts persisted chunk artifacts.
func (w *Workspace) ChunkCount() int {
	matches, err := filepath.Glob(filepath.Join(w.Dir, chunksDir, "chunk_*.txt"))
	if err != nil {
		return 0
	}
	return len(matches)
}

// LoadChunks reads the persisted chunk artifacts in part order. Line-range
// provenance is not persisted, so StartLine and EndLine stay zero.
func (w *Workspace) LoadChunks() ([]chunking.Chunk, error) {
	matches, err := filepath.Glob(filepath.Join(w.Dir, chunksDir, "chunk_*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	sort.Strings(matches)

	chunks := make([]chunking.Chunk, 0, len(matches))
	for _, path := range matches {
		base := filepath.Base(path)
		numPart := strings.TrimSuffix(strings.TrimPrefix(base, "chunk_"), ".txt")
		part, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", base, err)
		}
		chunks = append(chunks, chunking.Chunk{Index: part - 1, Text: string(data)})
	}
	return chunks, nil
}

// SaveNote persists the partial note for the chunk at 0-based index.
func (w *Workspace) SaveNote(index int, content string) error {
	if err := os.WriteFile(w.NotePath(index), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write note %d: %w", index+1, err)
	}
	return nil
}

// LoadNote reads the partial note for the chunk at 0-based index.
func (w *Workspace) LoadNote(index int) (string, error) {
	data, err := os.ReadFile(w.NotePath(index))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HasNote reports whether the partial note for a chunk index exists.
func (w *Workspace) HasNote(index int) bool {
	return fileExists(w.NotePath(index))
}

// LoadNotes returns every persisted partial note in part order.
func (w *Workspace) LoadNotes() ([]Note, error) {
	matches, err := filepath.Glob(filepath.Join(w.Dir, "notes_part_*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	sort.Strings(matches)

	notes := make([]Note, 0, len(matches))
	for _, path := range matches {
		base := filepath.Base(path)
		numPart := strings.TrimSuffix(strings.TrimPrefix(base, "notes_part_"), ".md")
		part, err := strconv.Atoi(numPart)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", base, err)
		}
		notes = append(notes, Note{Index: part - 1, Content: string(data)})
	}
	return notes, nil
}

// SaveFinal persists the merged document.
func (w *Workspace) SaveFinal(content string) error {
	if err := os.WriteFile(w.FinalPath(), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write final document: %w", err)
	}
	return nil
}

// LoadFinal reads the merged document.
func (w *Workspace) LoadFinal() (string, error) {
	data, err := os.ReadFile(w.FinalPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HasFinal reports whether the final merged artifact exists.
func (w *Workspace) HasFinal() bool {
	return fileExists(w.FinalPath())
}

// State derives the work unit's pipeline state from artifact presence.
func (w *Workspace) State() State {
	switch {
	case w.HasFinal():
		return StateMerged
	case w.noteCount() > 0:
		return StatePartialNotesReady
	case w.ChunkCount() > 0:
		return StateChunked
	case w.HasTranscript():
		return StateExtracted
	default:
		return StateEmpty
	}
}

func (w *Workspace) noteCount() int {
	matches, err := filepath.Glob(filepath.Join(w.Dir, "notes_part_*.md"))
	if err != nil {
		return 0
	}
	return len(matches)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
