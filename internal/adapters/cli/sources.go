package cli

import (
	"bufio"
	"os"
	"strings"
)

// ParseSourcesFile reads a file of sources, one per line: URLs or local
// media paths. Blank lines and lines starting with # are ignored. Lines
// are returned as-is; validation happens when each source is added.
func ParseSourcesFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var sources []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sources = append(sources, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}
