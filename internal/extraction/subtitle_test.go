package extraction

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSRT_Basic(t *testing.T) {
	content := "1\n" +
		"00:00:01,000 --> 00:00:04,000\n" +
		"Welcome to the lecture\n" +
		"\n" +
		"2\n" +
		"00:00:04,500 --> 00:00:08,000\n" +
		"Today we cover goroutines\n"

	cues := ParseSRT(content)
	require.Len(t, cues, 2)

	assert.Equal(t, time.Second, cues[0].Start)
	assert.Equal(t, 4*time.Second, cues[0].End)
	assert.Equal(t, "Welcome to the lecture", cues[0].Text)
	assert.Equal(t, 4500*time.Millisecond, cues[1].Start)
	assert.Equal(t, "Today we cover goroutines", cues[1].Text)
}

func TestParseSRT_MultilineTextJoined(t *testing.T) {
	content := "1\n" +
		"00:00:01,000 --> 00:00:04,000\n" +
		"first half of the sentence\n" +
		"and the second half\n"

	cues := ParseSRT(content)
	require.Len(t, cues, 1)
	assert.Equal(t, "first half of the sentence and the second half", cues[0].Text)
}

func TestParseSRT_WithoutIndexLines(t *testing.T) {
	content := "00:00:01,000 --> 00:00:02,000\n" +
		"First\n" +
		"\n" +
		"00:00:03,000 --> 00:00:04,000\n" +
		"Second\n"

	cues := ParseSRT(content)
	require.Len(t, cues, 2)
	assert.Equal(t, "First", cues[0].Text)
	assert.Equal(t, "Second", cues[1].Text)
}

func TestParseSRT_StripsMarkupTags(t *testing.T) {
	content := "1\n" +
		"00:00:01,000 --> 00:00:02,000\n" +
		"<i>Emphasized</i> text about Tom &amp; Jerry\n"

	cues := ParseSRT(content)
	require.Len(t, cues, 1)
	assert.Equal(t, "Emphasized text about Tom & Jerry", cues[0].Text)
}

func TestParseSRT_SkipsMalformedBlocks(t *testing.T) {
	content := "not a cue\nstill not a cue\n" +
		"\n" +
		"1\n" +
		"00:00:01,000 --> 00:00:02,000\n" +
		"Real cue\n"

	cues := ParseSRT(content)
	require.Len(t, cues, 1)
	assert.Equal(t, "Real cue", cues[0].Text)
}

func TestParseSRT_CRLF(t *testing.T) {
	content := "1\r\n00:00:01,000 --> 00:00:02,000\r\nWindows line endings\r\n"

	cues := ParseSRT(content)
	require.Len(t, cues, 1)
	assert.Equal(t, "Windows line endings", cues[0].Text)
}

func TestParseVTT_Basic(t *testing.T) {
	content := "WEBVTT\n" +
		"Kind: captions\n" +
		"Language: en\n" +
		"\n" +
		"00:00:01.000 --> 00:00:04.000\n" +
		"Welcome to the lecture\n" +
		"\n" +
		"00:00:04.500 --> 00:00:08.000\n" +
		"Today we cover goroutines\n"

	cues := ParseVTT(content)
	require.Len(t, cues, 2)
	assert.Equal(t, time.Second, cues[0].Start)
	assert.Equal(t, "Welcome to the lecture", cues[0].Text)
	assert.Equal(t, 4500*time.Millisecond, cues[1].Start)
}

func TestParseVTT_CueSettingsIgnored(t *testing.T) {
	content := "WEBVTT\n" +
		"\n" +
		"00:00:01.000 --> 00:00:04.000 align:start position:0%\n" +
		"Positioned cue\n"

	cues := ParseVTT(content)
	require.Len(t, cues, 1)
	assert.Equal(t, time.Second, cues[0].Start)
	assert.Equal(t, 4*time.Second, cues[0].End)
}

func TestParseVTT_AutoCaptionTags(t *testing.T) {
	// The inline timing tags yt-dlp writes for auto-generated captions
	content := "WEBVTT\n" +
		"\n" +
		"00:00:00.320 --> 00:00:02.879 align:start position:0%\n" +
		"we're<00:00:00.539><c> going</c><00:00:00.899><c> to</c><00:00:01.260><c> talk</c>\n"

	cues := ParseVTT(content)
	require.Len(t, cues, 1)
	assert.Equal(t, "we're going to talk", cues[0].Text)
}

func TestParseVTT_SkipsNoteAndStyleBlocks(t *testing.T) {
	content := "WEBVTT\n" +
		"\n" +
		"NOTE a comment block\n" +
		"with a second comment line\n" +
		"\n" +
		"STYLE\n" +
		"::cue { color: gold }\n" +
		"\n" +
		"00:00:01.000 --> 00:00:02.000\n" +
		"Actual content\n"

	cues := ParseVTT(content)
	require.Len(t, cues, 1)
	assert.Equal(t, "Actual content", cues[0].Text)
}

func TestParseVTT_ConsecutiveCuesWithoutBlankLine(t *testing.T) {
	content := "00:00:01.000 --> 00:00:02.000\n" +
		"First\n" +
		"00:00:03.000 --> 00:00:04.000\n" +
		"Second\n"

	cues := ParseVTT(content)
	require.Len(t, cues, 2)
	assert.Equal(t, "First", cues[0].Text)
	assert.Equal(t, "Second", cues[1].Text)
}

func TestTranscript_TimestampPrefixedLines(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 2 * time.Second, Text: "Intro"},
		{Start: 65 * time.Second, End: 70 * time.Second, Text: "Main point"},
		{Start: 3661 * time.Second, End: 3665 * time.Second, Text: "Closing"},
	}

	got := Transcript(cues)
	assert.Equal(t, "[00:00] Intro\n[01:05] Main point\n[01:01:01] Closing", got)
}

func TestTranscript_DropsNoiseAnnotations(t *testing.T) {
	cues := []Cue{
		{Text: "Hello"},
		{Text: "[Music]"},
		{Text: "[박수]"},
		{Text: "World"},
	}

	got := Transcript(cues)
	assert.NotContains(t, got, "[Music]")
	assert.NotContains(t, got, "[박수]")
	assert.Contains(t, got, "Hello")
	assert.Contains(t, got, "World")
}

func TestTranscript_DeduplicatesConsecutiveText(t *testing.T) {
	cues := []Cue{
		{Start: time.Second, Text: "same line"},
		{Start: 2 * time.Second, Text: "same line"},
		{Start: 3 * time.Second, Text: "different line"},
		{Start: 4 * time.Second, Text: "same line"},
	}

	got := Transcript(cues)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[00:01] same line", lines[0])
	assert.Equal(t, "[00:03] different line", lines[1])
	// Non-consecutive repeats stay
	assert.Equal(t, "[00:04] same line", lines[2])
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{5 * time.Second, "00:05"},
		{65 * time.Second, "01:05"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "01:00:00"},
		{3661 * time.Second, "01:01:01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.d))
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"00:01:02.500", 62*time.Second + 500*time.Millisecond, true},
		{"01:05", 65 * time.Second, true},
		{"00:00:01,500", 1500 * time.Millisecond, true},
		{"10:00:00.000", 10 * time.Hour, true},
		{"42", 0, false},
		{"aa:bb", 0, false},
		{"1:2:3:4", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseClock(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestParseCueTiming(t *testing.T) {
	start, end, ok := parseCueTiming("00:00:01.000 --> 00:00:04.000 align:start")
	require.True(t, ok)
	assert.Equal(t, time.Second, start)
	assert.Equal(t, 4*time.Second, end)

	_, _, ok = parseCueTiming("no arrow here")
	assert.False(t, ok)
}

func makeCues(n int, text string) []Cue {
	cues := make([]Cue, n)
	for i := range cues {
		cues[i] = Cue{
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i+1) * time.Second,
			Text:  text,
		}
	}
	return cues
}

func TestScoreCues_CleanManualTranscript(t *testing.T) {
	score, warnings := scoreCues(makeCues(20, "a reasonably long caption line"), false)

	assert.Equal(t, 100, score)
	assert.Empty(t, warnings)
}

func TestScoreCues_AutoGenerated(t *testing.T) {
	score, warnings := scoreCues(makeCues(20, "a reasonably long caption line"), true)

	assert.Equal(t, 85, score)
	assert.Contains(t, warnings, "auto-generated subtitles may contain recognition errors")
}

func TestScoreCues_FewCues(t *testing.T) {
	score, warnings := scoreCues(makeCues(3, "a reasonably long caption line"), false)

	assert.Equal(t, 90, score)
	assert.Contains(t, warnings, "very few subtitle cues")
}

func TestScoreCues_ShortCueText(t *testing.T) {
	score, warnings := scoreCues(makeCues(20, "hi"), false)

	assert.Equal(t, 90, score)
	assert.Contains(t, warnings, "average cue text is very short")
}

func TestScoreCues_Empty(t *testing.T) {
	score, warnings := scoreCues(nil, false)

	assert.Equal(t, 0, score)
	assert.Equal(t, []string{"no subtitle cues found"}, warnings)
}

func TestScoreCues_WorstCase(t *testing.T) {
	score, _ := scoreCues(makeCues(2, "x"), true)

	assert.Equal(t, 65, score)
}
