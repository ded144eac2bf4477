package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/merging"
	"github.com/jonathan/notesmith/internal/pipeline"
	"github.com/jonathan/notesmith/internal/workspace"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge part notes into the final document",
	Long:  "Runs the merge phase on a work unit whose part notes already exist. Without an API key the part notes are concatenated with the simple strategy instead of being rewritten thematically.",
	RunE:  runMerge,
}

var (
	mergeWorkDir     string
	mergeStrategy    string
	mergeTranslateTo string
	mergeAPIKey      string
	mergeVerbose     bool
)

func init() {
	mergeCmd.Flags().StringVarP(&mergeWorkDir, "work-dir", "w", "", "Path to the work unit directory (required)")
	mergeCmd.Flags().StringVar(&mergeStrategy, "merge-strategy", "", "Merge strategy: auto, simple, thematic, or hierarchical")
	mergeCmd.Flags().StringVar(&mergeTranslateTo, "translate-to", "", "Language for the merged document's summary sections")
	mergeCmd.Flags().StringVar(&mergeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	mergeCmd.Flags().BoolVarP(&mergeVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := mergeCmd.MarkFlagRequired("work-dir"); err != nil {
		panic(fmt.Sprintf("failed to mark work-dir flag as required: %v", err))
	}

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	ws, err := workspace.Open(mergeWorkDir)
	if err != nil {
		return fmt.Errorf("failed to open work unit: %w", err)
	}

	apiKey := mergeAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	// Merging degrades to plain concatenation without a client, so a
	// missing key is a warning here rather than an error.
	var client llm.Client
	if apiKey == "" {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: no API key found; merging with the simple strategy\n")
	} else {
		client, err = llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
		if err != nil {
			return err
		}
		defer client.Close()
	}

	opts := pipeline.RunOptions{
		WorkDir:       mergeWorkDir,
		MergeStrategy: merging.Strategy(mergeStrategy),
		TranslateTo:   mergeTranslateTo,
		Verbose:       mergeVerbose,
	}

	result, err := pipeline.Merge(ctx, client, ws, opts, uuid.NewString())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Merged with %s strategy\n", result.Strategy)
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", result.Path)

	return nil
}
