package extraction

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	pdfTimeout     = 2 * time.Minute
	pdfInfoTimeout = 15 * time.Second
)

// paperName matches "2025. IJOS. Title" style archive file names.
var paperName = regexp.MustCompile(`^(\d{4})\.\s*([A-Z]+)\.\s*(.+)$`)

// FromPDF extracts page-marked text from a PDF using pdftotext. Every page
// opens with a [p.N] marker so notes can cite page numbers.
func FromPDF(ctx context.Context, path string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if err := lookTool("pdftotext", "Install poppler-utils to extract PDF text."); err != nil {
		return nil, err
	}

	result := &Result{
		Kind:      KindPDF,
		SourceRef: path,
	}
	result.Title, result.Author = pdfMetadata(ctx, path)

	out, err := runTool(ctx, pdfTimeout, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, err
	}

	pages := strings.Split(out, "\f")
	// pdftotext ends every page with a form feed, leaving one empty tail
	if n := len(pages); n > 0 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	result.Pages = len(pages)

	var parts []string
	var warnings []string
	missing := 0
	textLen := 0
	for i, page := range pages {
		text := CleanText(page)
		if text == "" {
			missing++
			warnings = append(warnings, fmt.Sprintf("page %d: no text", i+1))
			continue
		}
		textLen += len(text)
		parts = append(parts, fmt.Sprintf("[p.%d]\n%s", i+1, text))
	}

	if len(parts) == 0 {
		result.Warnings = append(warnings, "no text extracted; scanned PDFs need OCR, which is not supported")
		return result, nil
	}

	result.FullText = strings.Join(parts, "\n\n")

	score := 100
	if missing > 0 {
		score -= min(30, missing*5)
	}
	if textLen/len(parts) < 100 {
		score -= 10
		warnings = append(warnings, "average page text is very short")
	}

	result.Success = true
	result.QualityScore = clampScore(score)
	result.Warnings = warnings
	return result, nil
}

// pdfMetadata reads title and author from pdfinfo when available, falling
// back to the file name.
func pdfMetadata(ctx context.Context, path string) (title, author string) {
	if _, err := exec.LookPath("pdfinfo"); err == nil {
		if out, err := runTool(ctx, pdfInfoTimeout, "pdfinfo", path); err == nil {
			title, author = parsePDFInfo(out)
		}
	}
	if title != "" {
		return title, author
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if m := paperName.FindStringSubmatch(name); m != nil {
		if author == "" {
			author = m[2]
		}
		return m[3], author
	}
	return name, author
}

func parsePDFInfo(out string) (title, author string) {
	for _, line := range strings.Split(out, "\n") {
		if after, ok := strings.CutPrefix(line, "Title:"); ok {
			title = strings.TrimSpace(after)
		} else if after, ok := strings.CutPrefix(line, "Author:"); ok {
			author = strings.TrimSpace(after)
		}
	}
	return title, author
}
