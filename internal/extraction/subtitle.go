package extraction

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cue is one subtitle entry.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// noiseMarkers are caption annotations that carry no spoken content.
var noiseMarkers = []string{"[Music]", "[Applause]", "[Laughter]", "[음악]", "[박수]", "[웃음]"}

var inlineTag = regexp.MustCompile(`<[^>]*>`)

// ParseSRT parses a SubRip subtitle file.
func ParseSRT(content string) []Cue {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var cues []Cue
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		i := 0
		// Optional numeric sequence line before the timing
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
			i = 1
		}
		if i >= len(lines) {
			continue
		}

		start, end, ok := parseCueTiming(lines[i])
		if !ok {
			continue
		}

		text := stripTags(strings.Join(lines[i+1:], " "))
		text = strings.TrimSpace(multiSpace.ReplaceAllString(text, " "))
		if text == "" {
			continue
		}
		cues = append(cues, Cue{Start: start, End: end, Text: text})
	}
	return cues
}

// ParseVTT parses a WebVTT subtitle file, including the tag-heavy variant
// yt-dlp writes for auto-generated captions. Header, NOTE, and STYLE blocks
// are skipped because they never contain a timing arrow.
func ParseVTT(content string) []Cue {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	var cues []Cue
	for i := 0; i < len(lines); i++ {
		if !strings.Contains(lines[i], "-->") {
			continue
		}
		start, end, ok := parseCueTiming(lines[i])
		if !ok {
			continue
		}

		var textLines []string
		for i++; i < len(lines); i++ {
			t := strings.TrimSpace(lines[i])
			if t == "" {
				break
			}
			if strings.Contains(t, "-->") {
				i--
				break
			}
			textLines = append(textLines, t)
		}

		text := stripTags(strings.Join(textLines, " "))
		text = strings.TrimSpace(multiSpace.ReplaceAllString(text, " "))
		if text == "" {
			continue
		}
		cues = append(cues, Cue{Start: start, End: end, Text: text})
	}
	return cues
}

// Transcript renders cues as timestamp-prefixed lines, dropping annotation
// noise and the repeated lines auto-generated captions produce.
func Transcript(cues []Cue) string {
	var b strings.Builder
	prev := ""
	for _, cue := range cues {
		if isNoise(cue.Text) || cue.Text == prev {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[")
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString("] ")
		b.WriteString(cue.Text)
		prev = cue.Text
	}
	return b.String()
}

// FormatTimestamp renders a duration as MM:SS, or HH:MM:SS past an hour.
func FormatTimestamp(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// parseCueTiming parses "start --> end" timing lines. Cue settings after
// the end timestamp (align, position) are ignored.
func parseCueTiming(line string) (start, end time.Duration, ok bool) {
	before, after, found := strings.Cut(line, "-->")
	if !found {
		return 0, 0, false
	}
	endFields := strings.Fields(after)
	if len(endFields) == 0 {
		return 0, 0, false
	}
	if start, ok = parseClock(strings.TrimSpace(before)); !ok {
		return 0, 0, false
	}
	end, ok = parseClock(endFields[0])
	return start, end, ok
}

// parseClock parses "HH:MM:SS.mmm", "MM:SS.mmm", and the comma variant
// SubRip uses.
func parseClock(s string) (time.Duration, bool) {
	parts := strings.Split(strings.Replace(s, ",", ".", 1), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, false
	}
	hours := 0
	if len(parts) == 3 {
		if hours, err = strconv.Atoi(parts[0]); err != nil {
			return 0, false
		}
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(mins)*time.Minute +
		time.Duration(secs*float64(time.Second))
	return d, true
}

func stripTags(s string) string {
	return html.UnescapeString(inlineTag.ReplaceAllString(s, ""))
}

func isNoise(text string) bool {
	for _, marker := range noiseMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// scoreCues applies the transcript quality heuristics shared by subtitle
// sources.
func scoreCues(cues []Cue, auto bool) (int, []string) {
	if len(cues) == 0 {
		return 0, []string{"no subtitle cues found"}
	}

	score := 100
	var warnings []string

	if auto {
		score -= 15
		warnings = append(warnings, "auto-generated subtitles may contain recognition errors")
	}
	if len(cues) < 5 {
		score -= 10
		warnings = append(warnings, "very few subtitle cues")
	}

	total := 0
	for _, c := range cues {
		total += len(c.Text)
	}
	if total/len(cues) < 10 {
		score -= 10
		warnings = append(warnings, "average cue text is very short")
	}

	return clampScore(score), warnings
}
