package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Limits enforced before any project is created.
const (
	MaxProjectNameLen        = 50
	MaxProjectDescriptionLen = 500
)

// ProjectSettings is the on-disk metadata for a project, stored as
// project_settings.json inside the project directory.
type ProjectSettings struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	NeedsProcessing bool   `json:"needs_processing"`
	NumberFiles     int    `json:"number_files"`
	Model           string `json:"model"`
	Path            string `json:"path"`
	CreatedAt       string `json:"created_at"`
}

// NewProjectSettings builds settings for a freshly created project.
func NewProjectSettings(sanitizedName, description, model, path string) *ProjectSettings {
	return &ProjectSettings{
		Name:            sanitizedName,
		Description:     description,
		NeedsProcessing: false,
		NumberFiles:     0,
		Model:           model,
		Path:            path,
		CreatedAt:       time.Now().Format("2006-01-02"),
	}
}

// SanitizeName replaces every character that is not safe in a directory name
// with an underscore. The result is the project's on-disk identifier, so this
// must run before any filesystem operation that uses a user-supplied name.
// Idempotent: sanitizing an already-sanitized name is a no-op.
func SanitizeName(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range raw {
		if isSafeNameRune(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func isSafeNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '.':
		return true
	}
	return false
}

// ValidateProjectName checks a raw (pre-sanitization) project name.
func ValidateProjectName(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("project name is empty: %w", ErrInvalidName)
	}
	if len(raw) > MaxProjectNameLen {
		return fmt.Errorf("project name exceeds %d characters: %w", MaxProjectNameLen, ErrInvalidName)
	}
	sanitized := SanitizeName(raw)
	if strings.Trim(sanitized, "_.") == "" {
		return fmt.Errorf("project name %q has no usable characters: %w", raw, ErrInvalidName)
	}
	return nil
}

// ValidateProjectDescription checks a project description.
func ValidateProjectDescription(description string) error {
	if len(description) > MaxProjectDescriptionLen {
		return fmt.Errorf("description exceeds %d characters: %w", MaxProjectDescriptionLen, ErrInvalidName)
	}
	return nil
}

// AllowedAudioExtensions is the fixed set of media extensions the
// transcription stage will pick up from a project's audios folder.
var AllowedAudioExtensions = []string{".m4a", ".mp3", ".wav", ".flac", ".mp4", ".wma", ".aac", ".ogg"}

// IsAllowedAudioFile reports whether the filename carries an allowed media
// extension. Matching is case-insensitive.
func IsAllowedAudioFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedAudioExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
