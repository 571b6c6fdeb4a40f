package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// SourceKind distinguishes where an audio asset comes from.
type SourceKind string

const (
	SourceRemote SourceKind = "remote"
	SourceLocal  SourceKind = "local"
)

// Source is a media source to be acquired into a project: either a remote
// URL handed to the downloader or a local file copied in.
type Source struct {
	Kind SourceKind
	URL  string // set when Kind == SourceRemote
	Path string // set when Kind == SourceLocal
}

var urlPattern = regexp.MustCompile(`^https?://`)

// ParseSourceInput classifies a user-supplied string as a remote URL or a
// local file path. Local paths must carry an allowed media extension.
func ParseSourceInput(input string) (*Source, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty source input")
	}

	if urlPattern.MatchString(input) {
		return &Source{Kind: SourceRemote, URL: input}, nil
	}

	if !IsAllowedAudioFile(input) {
		return nil, fmt.Errorf("unsupported media file %q (allowed: %s): %w",
			filepath.Base(input), strings.Join(AllowedAudioExtensions, ", "), ErrUnsupportedSource)
	}

	return &Source{Kind: SourceLocal, Path: input}, nil
}
