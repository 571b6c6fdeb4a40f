package domain

import (
	"fmt"
	"strings"
	"time"
)

// Segment represents a timed segment of transcribed text
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript represents the full transcription result for one audio asset
type Transcript struct {
	Segments      []Segment `json:"segments"`
	Model         string    `json:"model"`
	Language      string    `json:"language"`
	LanguageProb  float64   `json:"language_probability"`
	TranscribedAt time.Time `json:"transcribed_at"`
}

// DefaultSegmentJoin separates segment texts in the persisted transcript.
// Joining with a delimiter avoids word-joining artifacts at segment
// boundaries that raw concatenation would produce.
const DefaultSegmentJoin = " "

// JoinSegments returns the transcript as plain text with segment texts
// joined by the given delimiter. Empty segments are skipped.
func (t *Transcript) JoinSegments(delim string) string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, delim)
}

// ToText returns the transcript joined with the default delimiter
func (t *Transcript) ToText() string {
	return t.JoinSegments(DefaultSegmentJoin)
}

// ToSRT returns the transcript in SRT subtitle format
func (t *Transcript) ToSRT() string {
	var sb strings.Builder

	for i, seg := range t.Segments {
		// Sequence number
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		// Timestamps
		sb.WriteString(fmt.Sprintf("%s --> %s\n", formatSRTTime(seg.Start), formatSRTTime(seg.End)))
		// Text
		sb.WriteString(strings.TrimSpace(seg.Text))
		sb.WriteString("\n\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// formatSRTTime converts seconds to SRT timestamp format (HH:MM:SS,mmm)
func formatSRTTime(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
