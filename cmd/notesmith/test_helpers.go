package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath locates the compiled CLI for subprocess tests, skipping
// when it has not been built yet.
func getBinaryPath(t *testing.T) string {
	if testing.Short() {
		t.Skip("skipping CLI tests in short mode")
	}

	path := filepath.Join("..", "..", "bin", "notesmith")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("binary not found at %s, build it with 'go build -o bin/notesmith ./cmd/notesmith'", path)
	}

	return path
}
