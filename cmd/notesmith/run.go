package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/notesmith/internal/config"
	"github.com/jonathan/notesmith/internal/merging"
	"github.com/jonathan/notesmith/internal/observability"
	"github.com/jonathan/notesmith/internal/pipeline"
	"github.com/spf13/cobra"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full note generation pipeline end-to-end",
	Long: `Orchestrates the entire note generation process: extraction -> chunking -> part synthesis -> quality gating -> merging.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values. Interrupted runs resume from the work unit's existing artifacts when pointed at it with --work-dir.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath    string
	runFile          string
	runPDF           string
	runYouTube       string
	runURL           string
	runWorkDir       string
	runTemplate      string
	runOutputDir     string
	runTranslateTo   string
	runLanguage      string
	runMergeStrategy string
	runParallel      int
	runForce         bool
	runQuality       bool
	runNoQuality     bool
	runAgents        bool
	runMaxAttempts   int
	runMinScore      int
	runWeights       string
	runBudget        string
	runAPIKey        string
	runUseBrowser    bool
	runVerbose       bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runFile, "file", "f", "", "Path to a transcript or text file (.txt, .md, .srt, .vtt)")
	runCommand.Flags().StringVar(&runPDF, "pdf", "", "Path to a PDF document")
	runCommand.Flags().StringVarP(&runYouTube, "youtube", "y", "", "YouTube URL or video ID")
	runCommand.Flags().StringVarP(&runURL, "url", "u", "", "Web page URL")
	runCommand.Flags().StringVar(&runWorkDir, "work-dir", "", "Resume an existing work unit instead of extracting a new source")
	runCommand.Flags().StringVarP(&runTemplate, "template", "t", "", "Note template: detailed, essence, easy, or mindmap")
	runCommand.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "Directory for work units and the final document")
	runCommand.Flags().StringVar(&runTranslateTo, "translate-to", "", "Language for the merged document's summary sections")
	runCommand.Flags().StringVar(&runLanguage, "language", "", "Preferred subtitle language for YouTube sources")
	runCommand.Flags().StringVar(&runMergeStrategy, "merge-strategy", "", "Merge strategy: auto, simple, thematic, or hierarchical")
	runCommand.Flags().IntVar(&runParallel, "parallel", 0, "Number of part notes to synthesize concurrently")
	runCommand.Flags().BoolVar(&runForce, "force", false, "Regenerate chunks and notes that already exist")
	runCommand.Flags().BoolVar(&runQuality, "quality", true, "Score each part note and revise until it passes")
	runCommand.Flags().BoolVar(&runNoQuality, "no-quality", false, "Disable the quality gate (same as --quality=false)")
	runCommand.Flags().BoolVar(&runAgents, "agents", false, "Use the analyst/writer/critic roles instead of the single-call path")
	runCommand.Flags().IntVar(&runMaxAttempts, "max-attempts", 0, "Maximum generation attempts per part when the quality gate is on")
	runCommand.Flags().IntVar(&runMinScore, "min-score", 0, "Minimum quality score a part note must reach")
	runCommand.Flags().StringVar(&runWeights, "weights", "", "Verification weight preset: balanced or faithfulness-heavy")
	runCommand.Flags().StringVar(&runBudget, "budget", "", "Wall-clock limit for the whole run, e.g. 30m (default none)")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("template") {
		cfg.Template = runTemplate
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.Pipeline.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("translate-to") {
		cfg.TranslateTo = runTranslateTo
	}
	if cmd.Flags().Changed("merge-strategy") {
		cfg.Merging.Strategy = runMergeStrategy
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Pipeline.Parallel = runParallel
	}
	if cmd.Flags().Changed("quality") {
		enabled := runQuality
		cfg.Quality.Enabled = &enabled
	}
	if cmd.Flags().Changed("no-quality") && runNoQuality {
		disabled := false
		cfg.Quality.Enabled = &disabled
	}
	if cmd.Flags().Changed("agents") {
		cfg.Quality.Agents = runAgents
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.Quality.MaxAttempts = runMaxAttempts
	}
	if cmd.Flags().Changed("min-score") {
		cfg.Quality.MinScore = runMinScore
	}
	if cmd.Flags().Changed("weights") {
		cfg.Quality.Weights = runWeights
	}
	if cmd.Flags().Changed("budget") {
		cfg.Pipeline.Budget = runBudget
	}
	if cmd.Flags().Changed("api-key") {
		cfg.LLM.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())

	// Step 4: Validate required fields
	sources := 0
	for _, s := range []string{runFile, runPDF, runYouTube, runURL} {
		if s != "" {
			sources++
		}
	}
	if sources == 0 && runWorkDir == "" {
		return fmt.Errorf("a source is required: set one of --file, --pdf, --youtube, or --url (or --work-dir to resume)")
	}
	if sources > 1 {
		return fmt.Errorf("source flags are mutually exclusive; provide only one")
	}
	if sources > 0 && runWorkDir != "" {
		return fmt.Errorf("--work-dir resumes an existing work unit; source flags are not allowed with it")
	}

	// Step 5: API Key handling
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	llmCfg, err := cfg.LLM.ToLLM()
	if err != nil {
		return err
	}

	opts := pipeline.RunOptions{
		FilePath:              runFile,
		PDFPath:               runPDF,
		YouTubeRef:            runYouTube,
		URL:                   runURL,
		WorkDir:               runWorkDir,
		OutputDir:             cfg.Pipeline.OutputDir,
		Template:              cfg.Template,
		TranslateTo:           cfg.TranslateTo,
		Language:              runLanguage,
		ChunkThreshold:        cfg.Chunking.Threshold,
		ChunkSize:             cfg.Chunking.ChunkSize,
		OverlapLines:          cfg.Chunking.OverlapLines,
		MergeStrategy:         merging.Strategy(cfg.Merging.Strategy),
		HierarchicalThreshold: cfg.Merging.HierarchicalThreshold,
		GroupSize:             cfg.Merging.GroupSize,
		Quality:               cfg.Quality.IsEnabled(),
		Agents:                cfg.Quality.Agents,
		MaxAttempts:           cfg.Quality.MaxAttempts,
		MinScore:              cfg.Quality.MinScore,
		Weights:               cfg.Quality.Weights,
		Parallel:              cfg.Pipeline.Parallel,
		Force:                 runForce,
		Budget:                cfg.Pipeline.BudgetDuration(),
		APIKey:                cfg.LLM.APIKey,
		LLMConfig:             llmCfg,
		UseBrowser:            cfg.UseBrowser,
		Verbose:               cfg.Verbose,
	}

	result, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		printer.PrintScores(result.Notes.Scores)
		printer.PrintUsage(result.Usage)
	}
	printer.PrintRunSummary(result)

	return nil
}
