package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/observability"
	"github.com/jonathan/notesmith/internal/pipeline"
	"github.com/jonathan/notesmith/internal/workspace"
	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Synthesize part notes for an existing work unit",
	Long:  "Runs the note synthesis phase on a work unit produced by extract: splits the transcript into parts if needed, then generates one markdown note per part. Parts that already have a note are skipped unless --force is given.",
	RunE:  runNotes,
}

var (
	notesWorkDir     string
	notesTemplate    string
	notesForce       bool
	notesQuality     bool
	notesNoQuality   bool
	notesAgents      bool
	notesMaxAttempts int
	notesMinScore    int
	notesWeights     string
	notesParallel    int
	notesAPIKey      string
	notesVerbose     bool
)

func init() {
	notesCmd.Flags().StringVarP(&notesWorkDir, "work-dir", "w", "", "Path to the work unit directory (required)")
	notesCmd.Flags().StringVarP(&notesTemplate, "template", "t", "", "Note template: detailed, essence, easy, or mindmap")
	notesCmd.Flags().BoolVar(&notesForce, "force", false, "Regenerate notes that already exist")
	notesCmd.Flags().BoolVar(&notesQuality, "quality", true, "Score each part note and revise until it passes")
	notesCmd.Flags().BoolVar(&notesNoQuality, "no-quality", false, "Disable the quality gate (same as --quality=false)")
	notesCmd.Flags().BoolVar(&notesAgents, "agents", false, "Use the analyst/writer/critic roles instead of the single-call path")
	notesCmd.Flags().IntVar(&notesMaxAttempts, "max-attempts", 0, "Maximum generation attempts per part when the quality gate is on")
	notesCmd.Flags().IntVar(&notesMinScore, "min-score", 0, "Minimum quality score a part note must reach")
	notesCmd.Flags().StringVar(&notesWeights, "weights", "", "Verification weight preset: balanced or faithfulness-heavy")
	notesCmd.Flags().IntVar(&notesParallel, "parallel", 0, "Number of part notes to synthesize concurrently")
	notesCmd.Flags().StringVar(&notesAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	notesCmd.Flags().BoolVarP(&notesVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := notesCmd.MarkFlagRequired("work-dir"); err != nil {
		panic(fmt.Sprintf("failed to mark work-dir flag as required: %v", err))
	}

	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	ws, err := workspace.Open(notesWorkDir)
	if err != nil {
		return fmt.Errorf("failed to open work unit: %w", err)
	}

	apiKey := notesAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return err
	}
	defer client.Close()

	quality := notesQuality
	if cmd.Flags().Changed("no-quality") && notesNoQuality {
		quality = false
	}

	opts := pipeline.RunOptions{
		WorkDir:     notesWorkDir,
		Template:    notesTemplate,
		Force:       notesForce,
		Quality:     quality,
		Agents:      notesAgents,
		MaxAttempts: notesMaxAttempts,
		MinScore:    notesMinScore,
		Weights:     notesWeights,
		Parallel:    notesParallel,
		Verbose:     notesVerbose,
	}

	result, err := pipeline.Notes(ctx, client, ws, opts, uuid.NewString())
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintScores(result.Scores)
	if notesVerbose {
		printer.PrintUsage(client.Usage())
	}

	_, _ = fmt.Fprintf(os.Stdout, "Synthesized %d of %d parts (%d skipped, %d failed)\n",
		result.Synthesized, result.Parts, result.Skipped, result.Failed)
	_, _ = fmt.Fprintf(os.Stdout, "Next: notesmith merge --work-dir %s\n", ws.Dir)

	return nil
}
