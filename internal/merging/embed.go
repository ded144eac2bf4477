package merging

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel results of InsertEmbed that callers may want to treat as
// skips rather than failures.
var (
	ErrAlreadyEmbedded = errors.New("note already has a video embed")
	ErrNoSeparator     = errors.New("note has no --- separator after the header")
)

var (
	urlVideoID  = regexp.MustCompile(`(?:v=|/videos/|embed/|youtu\.be/|/v/|/e/|watch\?v=|&v=)([^#&?\n]+)`)
	bareVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

const watchSectionHeading = "## 🎥 Watch the video"

// ExtractVideoID pulls a YouTube video id out of a watch/share/embed
// URL, or accepts a bare 11-character id. Returns "" when nothing
// matches.
func ExtractVideoID(ref string) string {
	if m := urlVideoID.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	if bareVideoID.MatchString(ref) {
		return ref
	}
	return ""
}

// EmbedHTML returns the responsive 16:9 iframe block for a video id.
func EmbedHTML(videoID string) string {
	return fmt.Sprintf(`<div style="position: relative; padding-bottom: 56.25%%; height: 0; overflow: hidden; max-width: 100%%; margin: 20px 0;">
  <iframe style="position: absolute; top: 0; left: 0; width: 100%%; height: 100%%;"
    src="https://www.youtube.com/embed/%s" frameborder="0"
    allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"
    allowfullscreen></iframe>
</div>`, videoID)
}

// EmbedSection wraps the iframe in a markdown section suitable for
// insertion into a finished note.
func EmbedSection(videoID string) string {
	return fmt.Sprintf("\n%s\n\n%s\n\n> 💡 Click the video title or the \"Watch on YouTube\" button to open it in the browser.\n\n---\n",
		watchSectionHeading, EmbedHTML(videoID))
}

// InsertEmbed adds a video embed section right after the first ---
// separator of a finished note. Notes that already carry an iframe are
// left alone and reported via ErrAlreadyEmbedded.
func InsertEmbed(note, ref string) (string, error) {
	if strings.Contains(note, "<iframe") || strings.Contains(note, watchSectionHeading) {
		return "", ErrAlreadyEmbedded
	}

	videoID := ExtractVideoID(ref)
	if videoID == "" {
		return "", fmt.Errorf("no video id in %q", ref)
	}

	lines := strings.Split(note, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "---" {
			continue
		}
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:i+1]...)
		out = append(out, EmbedSection(videoID))
		out = append(out, lines[i+1:]...)
		return strings.Join(out, "\n"), nil
	}
	return "", ErrNoSeparator
}

// SourceRefFromNote pulls the source reference out of a generated
// header, for notes whose work directory is no longer around.
func SourceRefFromNote(note string) string {
	for _, line := range strings.Split(note, "\n") {
		if rest, ok := strings.CutPrefix(line, "- Source:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
