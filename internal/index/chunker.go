package index

import (
	"strings"
)

// Default chunking parameters for transcript indexing.
const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 32
)

// separators tried in order when a piece of text exceeds the chunk size:
// paragraph break, line break, sentence end, word boundary, then a hard
// character cut as the last resort.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits transcript text into overlapping bounded-length chunks,
// preferring structural boundaries over mid-word cuts.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker creates a chunker with the given size and overlap in
// characters. Non-positive values fall back to the defaults.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Split breaks text into chunks of at most chunkSize characters, each
// overlapping its predecessor by roughly the configured overlap.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	units := splitUnits(text, c.chunkSize, 0)
	return c.merge(units)
}

// splitUnits recursively breaks text into pieces no longer than limit,
// trying the separator hierarchy before falling back to hard cuts.
func splitUnits(text string, limit, sepIdx int) []string {
	if len(text) <= limit {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	if sepIdx >= len(separators) {
		// Hard character cut
		var out []string
		for len(text) > limit {
			out = append(out, text[:limit])
			text = text[limit:]
		}
		if text != "" {
			out = append(out, text)
		}
		return out
	}

	sep := separators[sepIdx]
	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		return splitUnits(text, limit, sepIdx+1)
	}

	var out []string
	for _, part := range parts {
		out = append(out, splitUnits(part, limit, sepIdx+1)...)
	}
	return out
}

// merge greedily packs units into chunks of roughly chunkSize characters,
// seeding each new chunk with the tail of the previous one for overlap.
func (c *Chunker) merge(units []string) []string {
	var chunks []string
	var current strings.Builder
	seedLen := 0

	for _, unit := range units {
		if current.Len() > seedLen && current.Len()+len(unit) > c.chunkSize {
			chunk := strings.TrimSpace(current.String())
			if chunk != "" {
				chunks = append(chunks, chunk)
			}

			current.Reset()
			seedLen = 0
			if c.overlap > 0 && len(chunk) > c.overlap {
				tail := chunk[len(chunk)-c.overlap:]
				// Align the carried tail to a word boundary when possible
				if cut := strings.IndexByte(tail, ' '); cut >= 0 && cut+1 < len(tail) {
					tail = tail[cut+1:]
				}
				current.WriteString(tail)
				current.WriteByte(' ')
				seedLen = current.Len()
			}
		}
		current.WriteString(unit)
	}

	// Leftover counts only if it holds more than the carried overlap
	if current.Len() > seedLen {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
