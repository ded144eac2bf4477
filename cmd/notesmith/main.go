// Package main provides the entry point for the notesmith CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notesmith",
	Short: "Long-document note generator",
	Long:  "Notesmith turns long transcripts, articles, PDFs, and YouTube videos into structured markdown notes through a resumable extract/notes/merge pipeline.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
