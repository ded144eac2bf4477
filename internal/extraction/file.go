package extraction

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrUnsupportedFile is returned for file extensions no adapter handles.
var ErrUnsupportedFile = fmt.Errorf("unsupported file type")

var cameraName = regexp.MustCompile(`^(\d{8})_(\d{6})`)

// FromFile reads a local source file. Plain text and markdown pass through
// cleaning untouched; SubRip and WebVTT subtitle files become
// timestamp-prefixed transcript lines.
func FromFile(path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".markdown":
		return fromTextFile(path, string(content)), nil
	case ".srt":
		return fromSubtitleFile(path, ParseSRT(string(content))), nil
	case ".vtt":
		return fromSubtitleFile(path, ParseVTT(string(content))), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
}

func fromTextFile(path, content string) *Result {
	text := CleanText(content)
	result := &Result{
		Kind:      KindFile,
		SourceRef: path,
		Title:     titleFromFilename(path),
		FullText:  text,
	}
	if text == "" {
		result.Warnings = []string{"file is empty"}
		return result
	}
	if heading := leadingHeading(text); heading != "" {
		result.Title = heading
	}

	score := 100
	switch {
	case len(text) < 500:
		score -= 20
		result.Warnings = append(result.Warnings, "content is very short")
	case len(text) < 1000:
		score -= 10
		result.Warnings = append(result.Warnings, "content is short")
	}

	result.Success = true
	result.QualityScore = score
	return result
}

func fromSubtitleFile(path string, cues []Cue) *Result {
	result := &Result{
		Kind:      KindVideo,
		SourceRef: path,
		Title:     titleFromFilename(path),
	}
	if len(cues) == 0 {
		result.Warnings = []string{"no subtitle cues found"}
		return result
	}

	result.FullText = Transcript(cues)
	result.Duration = FormatTimestamp(cues[len(cues)-1].End)
	result.TranscriptKind = "manual"
	result.QualityScore, result.Warnings = scoreCues(cues, false)
	result.Success = true
	return result
}

// titleFromFilename derives a title from the file name. Camera-style
// YYYYMMDD_HHMMSS names become "Video_<date>_<time>".
func titleFromFilename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if m := cameraName.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("Video_%s_%s", m[1], m[2])
	}
	return name
}

// leadingHeading returns the document's h1 when it opens with one.
func leadingHeading(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if after, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(after)
		}
		return ""
	}
	return ""
}
