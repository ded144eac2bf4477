package main

import (
	"fmt"
	"os"

	"github.com/jonathan/notesmith/internal/chunking"
	"github.com/jonathan/notesmith/internal/extraction"
	"github.com/jonathan/notesmith/internal/observability"
	"github.com/jonathan/notesmith/internal/workspace"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show size statistics and a chunk estimate for a source",
	Long:  "Reads a text file or an existing work unit's transcript and reports its size, whether it would be chunked, the estimated number of parts, and a short preview.",
	RunE:  runStats,
}

var (
	statsFile      string
	statsWorkDir   string
	statsThreshold int
	statsChunkSize int
)

func init() {
	statsCmd.Flags().StringVarP(&statsFile, "file", "f", "", "Path to a transcript or text file (.txt, .md, .srt, .vtt)")
	statsCmd.Flags().StringVarP(&statsWorkDir, "work-dir", "w", "", "Path to an existing work unit directory")
	statsCmd.Flags().IntVar(&statsThreshold, "threshold", 0, "Chunk only above this many characters (default 20000)")
	statsCmd.Flags().IntVar(&statsChunkSize, "chunk-size", 0, "Maximum characters per chunk (default 20000)")

	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	if (statsFile == "") == (statsWorkDir == "") {
		return fmt.Errorf("provide exactly one of --file or --work-dir")
	}

	printer := observability.NewPrinter(os.Stdout)

	var text string
	if statsFile != "" {
		res, err := extraction.FromFile(statsFile)
		if err != nil {
			return err
		}
		text = res.FullText
		printer.PrintMetadata(res.Metadata())
	} else {
		ws, err := workspace.Open(statsWorkDir)
		if err != nil {
			return fmt.Errorf("failed to open work unit: %w", err)
		}
		text, err = ws.LoadTranscript()
		if err != nil {
			return err
		}
		if meta, err := ws.LoadMetadata(); err == nil {
			printer.PrintMetadata(meta)
		}
	}

	stats := chunking.ComputeStats(text, statsThreshold, statsChunkSize)
	printer.PrintStats(stats, chunking.Sample(text, 500))

	return nil
}
