package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeCommand_MissingWorkDirFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "merge")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required")
}

func TestMergeCommand_WithoutAPIKeyUsesSimpleStrategy(t *testing.T) {
	binaryPath := getBinaryPath(t)

	// A minimal merged-ready work unit: metadata plus one part note.
	workDir := filepath.Join(t.TempDir(), "raft_lecture_20250101_120000")
	require.NoError(t, os.MkdirAll(workDir, 0755))
	metadata := "title: Raft Lecture\nsource_type: text\nsource_ref: lecture.txt\ncreated_at: 2025-01-01T12:00:00Z\n"
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "metadata.txt"), []byte(metadata), 0644))
	note := "## Log Replication\n\nThe leader appends entries and replicates them in order."
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "notes_part_001.md"), []byte(note), 0644))

	cmd := exec.Command(binaryPath, "merge", "--work-dir", workDir)

	// Clear environment to ensure no API Key
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "GEMINI_API_KEY=") {
			env = append(env, e)
		}
	}
	cmd.Env = env

	output, err := cmd.CombinedOutput()

	assert.NoError(t, err)
	assert.Contains(t, string(output), "merging with the simple strategy")
	assert.Contains(t, string(output), "Merged with simple strategy")

	final, err := os.ReadFile(filepath.Join(workDir, "final_notes.md"))
	require.NoError(t, err)
	assert.Contains(t, string(final), "# Raft Lecture")
	assert.Contains(t, string(final), "Log Replication")
}
