package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/notesmith/internal/workspace"
)

// Phase identifies one stage of the pipeline.
type Phase string

const (
	PhaseExtract Phase = "extract"
	PhaseNotes   Phase = "notes"
	PhaseMerge   Phase = "merge"
)

// PhaseDefinition declares a phase's position in the pipeline and the
// workspace artifacts it needs before it can start. Input paths may be
// globs for numbered artifact sets.
type PhaseDefinition struct {
	Name      Phase
	DependsOn []Phase
	Inputs    func(ws *workspace.Workspace) []string
}

// Registry holds every phase definition keyed by name.
var Registry = map[Phase]PhaseDefinition{
	PhaseExtract: {
		Name: PhaseExtract,
	},
	PhaseNotes: {
		Name:      PhaseNotes,
		DependsOn: []Phase{PhaseExtract},
		Inputs: func(ws *workspace.Workspace) []string {
			return []string{ws.TranscriptPath(), ws.MetadataPath()}
		},
	},
	PhaseMerge: {
		Name:      PhaseMerge,
		DependsOn: []Phase{PhaseNotes},
		Inputs: func(ws *workspace.Workspace) []string {
			return []string{ws.MetadataPath(), filepath.Join(ws.Dir, "notes_part_*.md")}
		},
	},
}

// MissingInputError reports a phase prerequisite that does not exist in the
// workspace. It is fatal: the caller must run the earlier phases first.
type MissingInputError struct {
	Phase Phase
	Path  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("phase %q: required input %s is missing; run the %s first",
		e.Phase, e.Path, phaseHint(e.Phase))
}

func phaseHint(phase Phase) string {
	def, ok := Registry[phase]
	if !ok || len(def.DependsOn) == 0 {
		return "earlier phases"
	}
	names := make([]string, len(def.DependsOn))
	for i, p := range def.DependsOn {
		names[i] = string(p)
	}
	return strings.Join(names, ", ") + " phase"
}

// CheckInputs verifies that every artifact a phase requires exists in the
// workspace, returning a MissingInputError for the first gap.
func CheckInputs(ws *workspace.Workspace, phase Phase) error {
	def, ok := Registry[phase]
	if !ok {
		return fmt.Errorf("unknown phase: %s", phase)
	}
	if def.Inputs == nil {
		return nil
	}
	for _, path := range def.Inputs(ws) {
		if !inputExists(path) {
			return &MissingInputError{Phase: phase, Path: path}
		}
	}
	return nil
}

func inputExists(path string) bool {
	if strings.ContainsAny(path, "*?[") {
		matches, err := filepath.Glob(path)
		return err == nil && len(matches) > 0
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
