package tui

import (
	"strings"
	"testing"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1 KB"},
		{462 * 1024 * 1024, "462 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatSize(tt.input)
			if result != tt.expected {
				t.Errorf("FormatSize(%d) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten..", 13, "exactly ten.."},
		{"a much longer filename.mp3", 10, "a much ..."},
	}

	for _, tt := range tests {
		if got := Truncate(tt.input, tt.max); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
		}
	}
}

func TestFormatProjectLine(t *testing.T) {
	line := FormatProjectLine("meetings", 4, 3, true, false, "2026-08-01")

	for _, want := range []string{"meetings", "4 audio", "3 txt", "indexed", "2026-08-01"} {
		if !strings.Contains(line, want) {
			t.Errorf("FormatProjectLine missing %q in %q", want, line)
		}
	}

	line = FormatProjectLine("meetings", 4, 3, true, true, "2026-08-01")
	if !strings.Contains(line, "needs processing") {
		t.Errorf("FormatProjectLine missing dirty marker in %q", line)
	}
}
