package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Metadata describes the source document for a work unit. It is persisted as
// a flat "key: value" record so a run can be inspected and resumed without
// any tooling.
type Metadata struct {
	Title        string
	SourceType   string
	SourceRef    string
	QualityScore float64
	EmbedID      string
	Hash         string // SHA256 hex digest of the transcript
	CreatedAt    string // RFC3339
	Warnings     []string
}

// NewMetadata creates a Metadata with the current timestamp and a content
// hash of the transcript.
func NewMetadata(transcript, title, sourceType, sourceRef string) *Metadata {
	return &Metadata{
		Title:      title,
		SourceType: sourceType,
		SourceRef:  sourceRef,
		Hash:       computeHash(transcript),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// Encode renders the metadata as ordered "key: value" lines.
func (m *Metadata) Encode() string {
	var sb strings.Builder
	writeField := func(key, value string) {
		if value == "" {
			return
		}
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	writeField("title", m.Title)
	writeField("source_type", m.SourceType)
	writeField("source_ref", m.SourceRef)
	if m.QualityScore > 0 {
		writeField("quality_score", strconv.FormatFloat(m.QualityScore, 'f', -1, 64))
	}
	writeField("embed_id", m.EmbedID)
	writeField("hash", m.Hash)
	writeField("created_at", m.CreatedAt)
	if len(m.Warnings) > 0 {
		writeField("warnings", strings.Join(m.Warnings, "; "))
	}
	return sb.String()
}

// DecodeMetadata parses the "key: value" record written by Encode. Unknown
// keys are ignored so older work dirs keep loading.
func DecodeMetadata(data string) (*Metadata, error) {
	m := &Metadata{}
	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("metadata line %d is not key: value: %q", i+1, line)
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "title":
			m.Title = value
		case "source_type":
			m.SourceType = value
		case "source_ref":
			m.SourceRef = value
		case "quality_score":
			score, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid quality_score %q: %w", value, err)
			}
			m.QualityScore = score
		case "embed_id":
			m.EmbedID = value
		case "hash":
			m.Hash = value
		case "created_at":
			m.CreatedAt = value
		case "warnings":
			for _, w := range strings.Split(value, ";") {
				if w = strings.TrimSpace(w); w != "" {
					m.Warnings = append(m.Warnings, w)
				}
			}
		}
	}
	return m, nil
}
