package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	ytMetadataTimeout = 30 * time.Second
	ytSubsTimeout     = 2 * time.Minute
)

var (
	urlVideoID  = regexp.MustCompile(`(?:v=|/videos/|embed/|youtu\.be/|/v/|/e/|watch\?v=|&v=)([^#&?\n]+)`)
	bareVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ytMetadata is the subset of yt-dlp --dump-json output we read.
type ytMetadata struct {
	Title    string `json:"title"`
	Channel  string `json:"channel"`
	Uploader string `json:"uploader"`
}

// FromYouTube downloads subtitles for a YouTube video using yt-dlp and
// renders them as a timestamp-prefixed transcript. Manually created
// subtitles are preferred over auto-generated captions.
func FromYouTube(ctx context.Context, ref, preferredLang string) (*Result, error) {
	id := videoID(ref)
	if id == "" {
		return nil, fmt.Errorf("no video id in %q", ref)
	}
	if err := lookTool("yt-dlp", "Install yt-dlp to extract YouTube subtitles."); err != nil {
		return nil, err
	}
	if preferredLang == "" {
		preferredLang = "en"
	}

	watchURL := "https://www.youtube.com/watch?v=" + id

	result := &Result{
		Kind:      KindYouTube,
		SourceRef: ref,
		VideoID:   id,
		Title:     fmt.Sprintf("YouTube Video (%s)", id),
		Channel:   "Unknown",
	}

	// Metadata is best-effort; the transcript matters more.
	if meta, err := fetchVideoMetadata(ctx, watchURL); err == nil {
		if meta.Title != "" {
			result.Title = meta.Title
		}
		if meta.Channel != "" {
			result.Channel = meta.Channel
		} else if meta.Uploader != "" {
			result.Channel = meta.Uploader
		}
	}

	cues, lang, kind, err := downloadSubtitles(ctx, watchURL, id, preferredLang)
	if err != nil {
		return nil, err
	}
	if len(cues) == 0 {
		result.Warnings = []string{"no subtitles available for this video"}
		return result, nil
	}

	result.Language = lang
	result.TranscriptKind = kind
	result.FullText = Transcript(cues)
	result.Duration = FormatTimestamp(cues[len(cues)-1].End)
	result.QualityScore, result.Warnings = scoreCues(cues, kind == "auto")
	result.Success = true
	return result, nil
}

// videoID extracts the YouTube video id from a URL or bare id.
func videoID(ref string) string {
	if m := urlVideoID.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	if bareVideoID.MatchString(ref) {
		return ref
	}
	return ""
}

func fetchVideoMetadata(ctx context.Context, watchURL string) (*ytMetadata, error) {
	out, err := runTool(ctx, ytMetadataTimeout, "yt-dlp",
		"--dump-json", "--no-download", "--no-warnings", watchURL)
	if err != nil {
		return nil, err
	}

	var meta ytMetadata
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		return nil, fmt.Errorf("metadata parse: %w", err)
	}
	return &meta, nil
}

// downloadSubtitles fetches subtitle files into a temp dir, trying manual
// subtitles first and auto-generated captions second.
func downloadSubtitles(ctx context.Context, watchURL, id, preferredLang string) (cues []Cue, lang, kind string, err error) {
	dir, err := os.MkdirTemp("", "notesmith-subs-*")
	if err != nil {
		return nil, "", "", fmt.Errorf("temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	langs := preferredLang + ",en"
	outTmpl := filepath.Join(dir, "%(id)s.%(ext)s")

	attempts := []struct {
		flag string
		kind string
	}{
		{"--write-subs", "manual"},
		{"--write-auto-subs", "auto"},
	}
	for _, attempt := range attempts {
		_, err := runTool(ctx, ytSubsTimeout, "yt-dlp",
			"--skip-download", attempt.flag,
			"--sub-langs", langs, "--sub-format", "vtt",
			"--no-warnings", "-o", outTmpl, watchURL)
		if err != nil {
			return nil, "", "", err
		}

		path, lang := findSubtitleFile(dir, id, preferredLang)
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, "", "", fmt.Errorf("read subtitles: %w", err)
		}
		return ParseVTT(string(content)), lang, attempt.kind, nil
	}
	return nil, "", "", nil
}

// findSubtitleFile picks the best downloaded subtitle file, preferring the
// requested language, then English, then whatever arrived.
func findSubtitleFile(dir, id, preferredLang string) (path, lang string) {
	matches, err := filepath.Glob(filepath.Join(dir, id+".*.vtt"))
	if err != nil || len(matches) == 0 {
		return "", ""
	}

	langOf := func(p string) string {
		base := strings.TrimSuffix(filepath.Base(p), ".vtt")
		return strings.TrimPrefix(base, id+".")
	}
	for _, want := range []string{preferredLang, "en"} {
		for _, m := range matches {
			if l := langOf(m); l == want || strings.HasPrefix(l, want+"-") {
				return m, l
			}
		}
	}
	return matches[0], langOf(matches[0])
}
