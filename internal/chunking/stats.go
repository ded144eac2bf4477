package chunking

import "strings"

// Stats describes a text's size characteristics, used for pre-flight checks
// before committing to a chunked pipeline run.
type Stats struct {
	Chars           int
	Lines           int
	NeedsChunking   bool
	EstimatedChunks int
}

// ComputeStats reports size statistics for text. Non-positive threshold or
// chunkSize fall back to the package defaults.
func ComputeStats(text string, threshold, chunkSize int) Stats {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	estimated := (len(text) + chunkSize - 1) / chunkSize
	if estimated < 1 {
		estimated = 1
	}

	return Stats{
		Chars:           len(text),
		Lines:           strings.Count(text, "\n") + 1,
		NeedsChunking:   len(text) > threshold,
		EstimatedChunks: estimated,
	}
}

// NeedsChunking reports whether text exceeds the chunking threshold.
func NeedsChunking(text string, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return len(text) > threshold
}
