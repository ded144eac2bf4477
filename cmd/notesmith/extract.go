package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/notesmith/internal/chunking"
	"github.com/jonathan/notesmith/internal/observability"
	"github.com/jonathan/notesmith/internal/pipeline"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a source into a new work unit",
	Long:  "Runs the extraction phase only: pulls text from a file, PDF, YouTube video, or web page and writes the transcript and metadata into a fresh work unit under the output directory.",
	RunE:  runExtract,
}

var (
	extractFile       string
	extractPDF        string
	extractYouTube    string
	extractURL        string
	extractOutputDir  string
	extractLanguage   string
	extractUseBrowser bool
	extractVerbose    bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "Path to a transcript or text file (.txt, .md, .srt, .vtt)")
	extractCmd.Flags().StringVar(&extractPDF, "pdf", "", "Path to a PDF document")
	extractCmd.Flags().StringVarP(&extractYouTube, "youtube", "y", "", "YouTube URL or video ID")
	extractCmd.Flags().StringVarP(&extractURL, "url", "u", "", "Web page URL")
	extractCmd.Flags().StringVarP(&extractOutputDir, "output-dir", "o", "output", "Directory for the new work unit")
	extractCmd.Flags().StringVar(&extractLanguage, "language", "", "Preferred subtitle language for YouTube sources")
	extractCmd.Flags().BoolVar(&extractUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(_ *cobra.Command, _ []string) error {
	sources := 0
	for _, s := range []string{extractFile, extractPDF, extractYouTube, extractURL} {
		if s != "" {
			sources++
		}
	}
	if sources == 0 {
		return fmt.Errorf("a source is required: set one of --file, --pdf, --youtube, or --url")
	}
	if sources > 1 {
		return fmt.Errorf("source flags are mutually exclusive; provide only one")
	}

	ctx := context.Background()
	opts := pipeline.RunOptions{
		FilePath:   extractFile,
		PDFPath:    extractPDF,
		YouTubeRef: extractYouTube,
		URL:        extractURL,
		OutputDir:  extractOutputDir,
		Language:   extractLanguage,
		UseBrowser: extractUseBrowser,
		Verbose:    extractVerbose,
	}

	ws, res, err := pipeline.Extract(ctx, opts, uuid.NewString())
	if err != nil {
		return err
	}

	if extractVerbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintMetadata(res.Metadata())
		stats := chunking.ComputeStats(res.FullText, 0, 0)
		printer.PrintStats(stats, chunking.Sample(res.FullText, 500))
	}

	_, _ = fmt.Fprintf(os.Stdout, "Work unit: %s\n", ws.Dir)
	_, _ = fmt.Fprintf(os.Stdout, "Next: notesmith notes --work-dir %s\n", ws.Dir)

	return nil
}
