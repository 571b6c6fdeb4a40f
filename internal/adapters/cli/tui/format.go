package tui

import (
	"fmt"
)

// FormatSize formats a byte count with a binary unit suffix.
func FormatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.0f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Truncate shortens s to max characters with an ellipsis.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// FormatProjectLine renders one project row for listings.
// Example: "meetings      4 audio   4 txt   indexed        2026-08-01"
func FormatProjectLine(name string, audioCount, textCount int, hasIndex, needsProcessing bool, createdAt string) string {
	indexState := "no index"
	if hasIndex {
		indexState = "indexed"
	}
	if needsProcessing {
		indexState = "needs processing"
	}

	return fmt.Sprintf("%-24s %3d audio %4d txt   %-16s %s",
		Truncate(name, 24), audioCount, textCount, indexState, createdAt)
}
