package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/notesmith/internal/merging"
	"github.com/jonathan/notesmith/internal/workspace"
	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Insert the video embed block into a finished document",
	Long:  "Adds the YouTube embed section after the metadata header of a final document, either inside a work unit (--work-dir) or in a standalone markdown file (--notes). The video is taken from the document's Source line unless --url overrides it.",
	RunE:  runEmbed,
}

var (
	embedWorkDir   string
	embedNotesFile string
	embedURL       string
)

func init() {
	embedCmd.Flags().StringVarP(&embedWorkDir, "work-dir", "w", "", "Path to the work unit directory")
	embedCmd.Flags().StringVar(&embedNotesFile, "notes", "", "Path to a standalone final document")
	embedCmd.Flags().StringVarP(&embedURL, "url", "u", "", "YouTube URL or video ID (overrides the document's Source line)")

	rootCmd.AddCommand(embedCmd)
}

func runEmbed(_ *cobra.Command, _ []string) error {
	if (embedWorkDir == "") == (embedNotesFile == "") {
		return fmt.Errorf("provide exactly one of --work-dir or --notes")
	}

	var (
		note string
		ws   *workspace.Workspace
	)
	if embedWorkDir != "" {
		var err error
		ws, err = workspace.Open(embedWorkDir)
		if err != nil {
			return fmt.Errorf("failed to open work unit: %w", err)
		}
		note, err = ws.LoadFinal()
		if err != nil {
			return fmt.Errorf("no final document in work unit; run the merge phase first: %w", err)
		}
	} else {
		raw, err := os.ReadFile(embedNotesFile)
		if err != nil {
			return fmt.Errorf("failed to read notes file: %w", err)
		}
		note = string(raw)
	}

	ref := embedURL
	if ref == "" {
		ref = merging.SourceRefFromNote(note)
	}
	if ref == "" && ws != nil {
		if meta, err := ws.LoadMetadata(); err == nil {
			if meta.EmbedID != "" {
				ref = meta.EmbedID
			} else {
				ref = meta.SourceRef
			}
		}
	}
	if ref == "" {
		return fmt.Errorf("could not determine the video reference from the document; pass --url")
	}

	withEmbed, err := merging.InsertEmbed(note, ref)
	if errors.Is(err, merging.ErrAlreadyEmbedded) {
		_, _ = fmt.Fprintf(os.Stdout, "Document already has a video embed; nothing to do\n")
		return nil
	}
	if err != nil {
		return err
	}

	if ws != nil {
		if err := ws.SaveFinal(withEmbed); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Embed inserted: %s\n", ws.FinalPath())
		return nil
	}
	if err := os.WriteFile(embedNotesFile, []byte(withEmbed), 0o644); err != nil {
		return fmt.Errorf("failed to write notes file: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Embed inserted: %s\n", embedNotesFile)

	return nil
}
