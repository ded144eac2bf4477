package extraction

import (
	"context"
	"log"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/notesmith/internal/fetch"
)

// WebOptions configures web extraction.
type WebOptions struct {
	// UseBrowser enables the headless-browser fallback for pages that
	// render client-side.
	UseBrowser bool
	Verbose    bool
	Fetch      *fetch.Options
}

// FromWeb fetches a web page and extracts its main article text. The flat
// text is re-sectioned under markdown headings so the chunker can split at
// them.
func FromWeb(ctx context.Context, urlStr string, opts WebOptions) (*Result, error) {
	platform := fetch.DetectPlatform(urlStr)
	if opts.Verbose {
		log.Printf("[WEB] %s (platform: %s)", urlStr, platform)
	}

	page, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return nil, err
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(page.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, err
	}

	html := page.HTML
	score := 100
	var warnings []string

	if fetch.ShouldUseBrowser(text) {
		if opts.UseBrowser {
			rendered, berr := fetch.BrowserSimple(ctx, urlStr, opts.Verbose)
			if berr != nil {
				if opts.Verbose {
					log.Printf("[WEB] browser rendering failed: %v, keeping HTTP content", berr)
				}
			} else if retext, rerr := fetch.ExtractMainText(rendered, contentSelectors, noiseSelectors...); rerr == nil {
				text = retext
				html = rendered
			}
		} else {
			score -= 15
			warnings = append(warnings, "extracted text is very short; the page may need browser rendering")
		}
	}

	cleaned := CleanText(text)

	result := &Result{
		Kind:      KindWeb,
		SourceRef: urlStr,
		Title:     fetch.ExtractTitle(html),
		Domain:    hostOf(urlStr),
	}

	if cleaned == "" {
		result.Warnings = append(warnings, "no text extracted")
		return result, nil
	}

	result.FullText = sectioned(cleaned)

	switch {
	case len(cleaned) < 500:
		score -= 20
		warnings = append(warnings, "body text is very short")
	case len(cleaned) < 1000:
		score -= 10
		warnings = append(warnings, "body text is short")
	}
	if strings.Count(cleaned, "\n") < 3 {
		score -= 10
		warnings = append(warnings, "little paragraph structure")
	}

	result.Success = true
	result.QualityScore = clampScore(score)
	result.Warnings = warnings
	return result, nil
}

// sectioned rebuilds heading structure from flat article text: short lines
// without terminal punctuation become section headings.
func sectioned(text string) string {
	type section struct {
		heading string
		lines   []string
	}

	sections := []section{{heading: "Body"}}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		last := &sections[len(sections)-1]
		if isHeadingLine(line) {
			if len(last.lines) == 0 {
				last.heading = headingText(line)
			} else {
				sections = append(sections, section{heading: headingText(line)})
			}
			continue
		}
		last.lines = append(last.lines, line)
	}

	var parts []string
	for _, s := range sections {
		if len(s.lines) == 0 {
			continue
		}
		parts = append(parts, "## "+s.heading+"\n"+strings.Join(s.lines, "\n"))
	}
	if len(parts) == 0 {
		return text
	}
	return strings.Join(parts, "\n\n")
}

func isHeadingLine(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return false
	}
	if utf8.RuneCountInString(line) >= 100 {
		return false
	}
	for _, terminal := range []string{".", "!", "?", "。", "!", "?"} {
		if strings.HasSuffix(line, terminal) {
			return false
		}
	}
	return true
}

func headingText(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "# "))
}

func hostOf(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return parsed.Host
}
