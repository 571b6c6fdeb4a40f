package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lmonteir/handyspeech/internal/domain"
)

// Subfolder and file names inside a project directory.
const (
	audiosSubdir    = "audios"
	textsSubdir     = "texts"
	databasesSubdir = "databases"
	settingsFile    = "project_settings.json"
)

// Manager owns the on-disk project layout under the projects root:
// projects/<name>/{audios,texts,databases}/ plus project_settings.json.
type Manager struct {
	projectsDir string
}

// NewManager creates a manager rooted at projectsDir.
func NewManager(projectsDir string) *Manager {
	return &Manager{projectsDir: projectsDir}
}

// ProjectDir returns the directory for a sanitized project name.
func (m *Manager) ProjectDir(name string) string {
	return filepath.Join(m.projectsDir, name)
}

// AudiosDir returns the project's audio folder.
func (m *Manager) AudiosDir(name string) string {
	return filepath.Join(m.ProjectDir(name), audiosSubdir)
}

// TextsDir returns the project's transcript folder.
func (m *Manager) TextsDir(name string) string {
	return filepath.Join(m.ProjectDir(name), textsSubdir)
}

// DatabasesDir returns the project's vector index folder.
func (m *Manager) DatabasesDir(name string) string {
	return filepath.Join(m.ProjectDir(name), databasesSubdir)
}

// IndexPath returns the project's vector index file, keyed by project name.
func (m *Manager) IndexPath(name string) string {
	return filepath.Join(m.DatabasesDir(name), name+".index.json")
}

// SettingsPath returns the project's settings file path.
func (m *Manager) SettingsPath(name string) string {
	return filepath.Join(m.ProjectDir(name), settingsFile)
}

// ProjectExists reports whether a directory of that exact name exists
// under the projects root.
func (m *Manager) ProjectExists(name string) bool {
	info, err := os.Stat(m.ProjectDir(name))
	return err == nil && info.IsDir()
}

// CreateProject creates the project directory tree and settings file.
// The name must already be sanitized. Fails with ErrProjectExists if the
// directory is already there; an existing project is never modified.
func (m *Manager) CreateProject(sanitizedName, description, model string) (*domain.ProjectSettings, error) {
	if strings.Trim(sanitizedName, "_.") == "" {
		return nil, fmt.Errorf("project name sanitizes to nothing: %w", domain.ErrInvalidName)
	}

	path := m.ProjectDir(sanitizedName)
	if m.ProjectExists(sanitizedName) {
		return nil, fmt.Errorf("project %q: %w", sanitizedName, domain.ErrProjectExists)
	}

	if err := os.MkdirAll(m.projectsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create projects root: %w", err)
	}
	if err := os.Mkdir(path, 0755); err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("project %q: %w", sanitizedName, domain.ErrProjectExists)
		}
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	for _, sub := range []string{audiosSubdir, textsSubdir, databasesSubdir} {
		if err := os.Mkdir(filepath.Join(path, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s folder: %w", sub, err)
		}
	}

	settings := domain.NewProjectSettings(sanitizedName, description, model, path)
	if err := m.SaveSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// DeleteProject removes the project directory tree recursively.
func (m *Manager) DeleteProject(name string) error {
	if !m.ProjectExists(name) {
		return fmt.Errorf("project %q: %w", name, domain.ErrProjectNotFound)
	}
	return os.RemoveAll(m.ProjectDir(name))
}

// ListProjects returns the names of directories directly under the
// projects root, sorted for stable display.
func (m *Manager) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(m.projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadSettings reads a project's settings file. The settings file is the
// single source of truth for project metadata.
func (m *Manager) LoadSettings(name string) (*domain.ProjectSettings, error) {
	data, err := os.ReadFile(m.SettingsPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("settings for project %q: %w", name, domain.ErrProjectNotFound)
		}
		return nil, err
	}

	var settings domain.ProjectSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("corrupt settings file for project %q: %w", name, err)
	}
	return &settings, nil
}

// SaveSettings writes a project's settings file. Callers are the single
// writer; concurrent pipeline runs are excluded by the pipeline lock.
func (m *Manager) SaveSettings(settings *domain.ProjectSettings) error {
	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal project settings: %w", err)
	}

	path := filepath.Join(settings.Path, settingsFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project settings: %w", err)
	}
	return nil
}

// ListAudioFiles returns the filenames in the audio folder matching the
// allowed extension set, sorted.
func (m *Manager) ListAudioFiles(name string) ([]string, error) {
	entries, err := os.ReadDir(m.AudiosDir(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project %q: %w", name, domain.ErrProjectNotFound)
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if domain.IsAllowedAudioFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// ListTranscriptFiles returns the .txt filenames in the texts folder, sorted.
func (m *Manager) ListTranscriptFiles(name string) ([]string, error) {
	entries, err := os.ReadDir(m.TextsDir(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project %q: %w", name, domain.ErrProjectNotFound)
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// RemoveAsset deletes an audio file and its paired transcript, if present.
func (m *Manager) RemoveAsset(project, audioFilename string) error {
	audioPath := filepath.Join(m.AudiosDir(project), audioFilename)
	if err := os.Remove(audioPath); err != nil {
		return fmt.Errorf("failed to remove audio %s: %w", audioFilename, err)
	}

	base := strings.TrimSuffix(audioFilename, filepath.Ext(audioFilename))
	textPath := filepath.Join(m.TextsDir(project), base+".txt")
	if err := os.Remove(textPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove transcript %s: %w", base+".txt", err)
	}
	return nil
}

// ProjectStats summarizes a project's on-disk state for listings.
type ProjectStats struct {
	AudioCount int
	TextCount  int
	HasIndex   bool
	TotalSize  int64
}

// Stats walks the project directory and returns asset counts and size.
func (m *Manager) Stats(name string) (*ProjectStats, error) {
	if !m.ProjectExists(name) {
		return nil, fmt.Errorf("project %q: %w", name, domain.ErrProjectNotFound)
	}

	stats := &ProjectStats{}

	if audios, err := m.ListAudioFiles(name); err == nil {
		stats.AudioCount = len(audios)
	}
	if texts, err := m.ListTranscriptFiles(name); err == nil {
		stats.TextCount = len(texts)
	}
	if _, err := os.Stat(m.IndexPath(name)); err == nil {
		stats.HasIndex = true
	}

	err := filepath.WalkDir(m.ProjectDir(name), func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if info, err := d.Info(); err == nil {
			stats.TotalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
