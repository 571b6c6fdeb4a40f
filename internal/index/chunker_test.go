package index

import (
	"strings"
	"testing"
)

func TestChunker_ShortText(t *testing.T) {
	c := NewChunker(512, 32)

	chunks := c.Split("a short transcript")
	if len(chunks) != 1 || chunks[0] != "a short transcript" {
		t.Errorf("Split() = %v, want single unchanged chunk", chunks)
	}
}

func TestChunker_Empty(t *testing.T) {
	c := NewChunker(512, 32)

	if chunks := c.Split(""); chunks != nil {
		t.Errorf("Split(\"\") = %v, want nil", chunks)
	}
	if chunks := c.Split("   \n  "); chunks != nil {
		t.Errorf("Split(whitespace) = %v, want nil", chunks)
	}
}

func TestChunker_LongTextBounds(t *testing.T) {
	c := NewChunker(512, 32)

	// 600 characters of words should give two chunks, 300 one chunk
	long := strings.TrimSpace(strings.Repeat("word ", 120))   // 599 chars
	short := strings.TrimSpace(strings.Repeat("word ", 60))   // 299 chars

	longChunks := c.Split(long)
	if len(longChunks) != 2 {
		t.Fatalf("600-char text chunk count = %d, want 2 (%v)", len(longChunks), lens(longChunks))
	}

	shortChunks := c.Split(short)
	if len(shortChunks) != 1 {
		t.Fatalf("300-char text chunk count = %d, want 1", len(shortChunks))
	}

	for _, chunk := range longChunks {
		if len(chunk) > 512+32 {
			t.Errorf("chunk length %d exceeds size+overlap bound", len(chunk))
		}
	}
}

func TestChunker_Overlap(t *testing.T) {
	c := NewChunker(100, 20)

	text := strings.TrimSpace(strings.Repeat("alpha beta gamma delta ", 20))
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk after the first must start with text from the end of its
	// predecessor
	for i := 1; i < len(chunks); i++ {
		head := chunks[i]
		if idx := strings.IndexByte(head, ' '); idx > 0 {
			head = head[:idx]
		}
		if !strings.Contains(chunks[i-1], head) {
			t.Errorf("chunk %d does not overlap its predecessor: head %q not in %q", i, head, chunks[i-1])
		}
	}
}

func TestChunker_PrefersParagraphBoundaries(t *testing.T) {
	c := NewChunker(60, 0)

	text := "first paragraph here.\n\nsecond paragraph here.\n\nthird paragraph here."
	chunks := c.Split(text)

	for _, chunk := range chunks {
		if strings.Contains(chunk, "\n\n") && len(chunk) > 60 {
			t.Errorf("oversized chunk crosses paragraph boundary: %q", chunk)
		}
	}
	joined := strings.Join(chunks, " ")
	for _, want := range []string{"first paragraph", "second paragraph", "third paragraph"} {
		if !strings.Contains(joined, want) {
			t.Errorf("chunks lost content %q", want)
		}
	}
}

func TestChunker_HardCutFallback(t *testing.T) {
	c := NewChunker(50, 0)

	// No separators at all: a single unbroken run must still be cut
	text := strings.Repeat("x", 130)
	chunks := c.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("chunk count = %d, want 3", len(chunks))
	}
	total := 0
	for _, chunk := range chunks {
		if len(chunk) > 50 {
			t.Errorf("hard-cut chunk length %d exceeds 50", len(chunk))
		}
		total += len(chunk)
	}
	if total != 130 {
		t.Errorf("hard cut lost characters: total %d, want 130", total)
	}
}

func TestChunker_Deterministic(t *testing.T) {
	c := NewChunker(512, 32)
	text := strings.Repeat("some sentence about the topic. ", 50)

	first := c.Split(text)
	second := c.Split(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ between runs: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func lens(chunks []string) []int {
	out := make([]int, len(chunks))
	for i, c := range chunks {
		out[i] = len(c)
	}
	return out
}
