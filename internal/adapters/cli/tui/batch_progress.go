package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// renderProgressBar creates a text progress bar like [=====>    ]
func renderProgressBar(current, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat(" ", width) + "]"
	}

	var bar strings.Builder
	bar.WriteString("[")

	if current >= total {
		bar.WriteString(strings.Repeat("=", width))
	} else if current == 0 {
		bar.WriteString(strings.Repeat(" ", width))
	} else {
		ratio := float64(current) / float64(total)
		arrowPos := int(ratio*float64(width) + 0.5)

		if arrowPos < 1 {
			arrowPos = 1
		}
		if arrowPos > width {
			arrowPos = width
		}

		equals := arrowPos - 1
		if ratio >= 0.5 {
			equals = arrowPos
			arrowPos = arrowPos + 1
		}

		if equals < 0 {
			equals = 0
		}
		if equals > width-1 {
			equals = width - 1
		}

		spaces := width - equals - 1
		if spaces < 0 {
			spaces = 0
		}

		bar.WriteString(strings.Repeat("=", equals))
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", spaces))
	}

	bar.WriteString("]")
	return bar.String()
}

// BatchResult represents the result of processing a single file or source
type BatchResult struct {
	Name     string
	Success  bool
	ErrMsg   string
	Duration time.Duration
}

// BatchProgress manages per-item progress display for batch operations
type BatchProgress struct {
	label     string // what the items are, e.g. "files" or "sources"
	total     int
	completed int
	results   []BatchResult
	failures  []BatchResult
	quiet     bool
	mu        sync.Mutex
	rendered  bool
}

// NewBatchProgress creates a new batch progress display
func NewBatchProgress(label string, total int, quiet bool) *BatchProgress {
	if total < 0 {
		total = 0
	}
	return &BatchProgress{
		label:    label,
		total:    total,
		results:  make([]BatchResult, 0),
		failures: make([]BatchResult, 0),
		quiet:    quiet,
	}
}

// AddResult adds a result and updates the display
func (bp *BatchProgress) AddResult(name string, success bool, errMsg string, duration time.Duration) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	result := BatchResult{
		Name:     name,
		Success:  success,
		ErrMsg:   errMsg,
		Duration: duration,
	}

	bp.results = append(bp.results, result)
	bp.completed++

	if !success {
		bp.failures = append(bp.failures, result)
	}

	bp.render()
}

func (bp *BatchProgress) render() {
	if bp.quiet {
		return
	}

	// Progress line plus the last 10 result rows
	linesToClear := 1 + min(len(bp.results), 10)
	if bp.rendered && linesToClear > 0 {
		fmt.Printf("\033[%dA", linesToClear)
		fmt.Print("\033[J")
	}

	percent := 0
	if bp.total > 0 {
		percent = (bp.completed * 100) / bp.total
	}
	progressBar := renderProgressBar(bp.completed, bp.total, 20)
	fmt.Printf("Processing %d/%d %s %s %d%%\n", bp.completed, bp.total, bp.label, progressBar, percent)

	startIdx := 0
	if len(bp.results) > 10 {
		startIdx = len(bp.results) - 10
	}

	for i := startIdx; i < len(bp.results); i++ {
		result := bp.results[i]
		if result.Success {
			fmt.Printf("✓ %s (%.1fs)\n", Truncate(result.Name, 50), result.Duration.Seconds())
		} else {
			fmt.Printf("✗ %s: %s\n", Truncate(result.Name, 50), result.ErrMsg)
		}
	}

	bp.rendered = true
}

// Complete prints the final summary
func (bp *BatchProgress) Complete() {
	if bp.quiet {
		return
	}

	bp.mu.Lock()
	completed := bp.completed
	total := bp.total
	failures := make([]BatchResult, len(bp.failures))
	copy(failures, bp.failures)
	bp.mu.Unlock()

	succeeded := completed - len(failures)

	fmt.Println()
	fmt.Printf("Done: %d/%d %s succeeded\n", succeeded, total, bp.label)

	if len(failures) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range failures {
			fmt.Printf("  ✗ %s: %s\n", f.Name, f.ErrMsg)
		}
	}
}

// GetSuccessCount returns the number of successful results
func (bp *BatchProgress) GetSuccessCount() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.completed - len(bp.failures)
}

// GetFailureCount returns the number of failed results
func (bp *BatchProgress) GetFailureCount() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return len(bp.failures)
}
