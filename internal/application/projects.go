package application

import (
	"github.com/lmonteir/handyspeech/internal/domain"
	"github.com/lmonteir/handyspeech/internal/storage"
)

// ProjectInfo pairs a project's settings with its on-disk stats for listings.
type ProjectInfo struct {
	Settings *domain.ProjectSettings
	Stats    *storage.ProjectStats
}

// ProjectService handles project lifecycle operations.
type ProjectService struct {
	store        *storage.Manager
	defaultModel string
}

// NewProjectService creates a new project service. defaultModel is the
// whisper model assigned to freshly created projects.
func NewProjectService(store *storage.Manager, defaultModel string) *ProjectService {
	return &ProjectService{store: store, defaultModel: defaultModel}
}

// Create validates and sanitizes the raw name, then creates the project
// directory tree. The returned settings carry the sanitized name.
func (s *ProjectService) Create(rawName, description string) (*domain.ProjectSettings, error) {
	if err := domain.ValidateProjectName(rawName); err != nil {
		return nil, err
	}
	if err := domain.ValidateProjectDescription(description); err != nil {
		return nil, err
	}

	sanitized := domain.SanitizeName(rawName)
	return s.store.CreateProject(sanitized, description, s.defaultModel)
}

// Delete removes the project and everything under it.
func (s *ProjectService) Delete(name string) error {
	return s.store.DeleteProject(domain.SanitizeName(name))
}

// Get loads one project's settings and stats.
func (s *ProjectService) Get(name string) (*ProjectInfo, error) {
	name = domain.SanitizeName(name)

	settings, err := s.store.LoadSettings(name)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.Stats(name)
	if err != nil {
		return nil, err
	}
	return &ProjectInfo{Settings: settings, Stats: stats}, nil
}

// List returns every project with its settings and stats, sorted by name.
// Directories without a readable settings file are skipped.
func (s *ProjectService) List() ([]ProjectInfo, error) {
	names, err := s.store.ListProjects()
	if err != nil {
		return nil, err
	}

	infos := make([]ProjectInfo, 0, len(names))
	for _, name := range names {
		info, err := s.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, *info)
	}
	return infos, nil
}
