package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lmonteir/handyspeech/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "projects"))
}

func TestManager_CreateProject(t *testing.T) {
	m := newTestManager(t)

	settings, err := m.CreateProject("My_Project_", "a test project", "medium")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	if !m.ProjectExists("My_Project_") {
		t.Error("ProjectExists() = false after CreateProject")
	}

	for _, dir := range []string{m.AudiosDir("My_Project_"), m.TextsDir("My_Project_"), m.DatabasesDir("My_Project_")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("subfolder %s missing after CreateProject", dir)
		}
	}

	if settings.Name != "My_Project_" {
		t.Errorf("settings name = %s, want My_Project_", settings.Name)
	}
	if settings.NeedsProcessing {
		t.Error("new project should not need processing")
	}
	if settings.NumberFiles != 0 {
		t.Errorf("new project file count = %d, want 0", settings.NumberFiles)
	}
	if settings.CreatedAt == "" {
		t.Error("created_at not set")
	}

	loaded, err := m.LoadSettings("My_Project_")
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if loaded.Name != settings.Name || loaded.Model != "medium" {
		t.Errorf("loaded settings mismatch: %+v", loaded)
	}
}

func TestManager_CreateProject_Collision(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateProject("dup", "first", "small"); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	_, err := m.CreateProject("dup", "second", "large")
	if !errors.Is(err, domain.ErrProjectExists) {
		t.Fatalf("expected ErrProjectExists, got %v", err)
	}

	// The existing project's settings must be untouched
	settings, err := m.LoadSettings("dup")
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if settings.Description != "first" || settings.Model != "small" {
		t.Errorf("collision modified existing settings: %+v", settings)
	}
}

func TestManager_CreateProject_EmptyName(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.CreateProject("___", "desc", "small"); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName for underscore-only name, got %v", err)
	}
}

func TestManager_DeleteProject(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateProject("doomed", "", "small"); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	// A non-empty project must still be removable (recursive delete)
	if err := os.WriteFile(filepath.Join(m.AudiosDir("doomed"), "talk.mp3"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteProject("doomed"); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if m.ProjectExists("doomed") {
		t.Error("ProjectExists() = true after DeleteProject")
	}

	if err := m.DeleteProject("doomed"); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound on second delete, got %v", err)
	}
}

func TestManager_ListProjects(t *testing.T) {
	m := newTestManager(t)

	projects, err := m.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("empty root should list no projects, got %v", projects)
	}

	for _, name := range []string{"beta", "alpha"} {
		if _, err := m.CreateProject(name, "", "small"); err != nil {
			t.Fatalf("CreateProject(%s) error = %v", name, err)
		}
	}

	// A stray file under the projects root must be ignored
	if err := os.WriteFile(filepath.Join(m.projectsDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	projects, err = m.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 2 || projects[0] != "alpha" || projects[1] != "beta" {
		t.Errorf("ListProjects() = %v, want [alpha beta]", projects)
	}
}

func TestManager_ListAudioFiles(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateProject("media", "", "small"); err != nil {
		t.Fatal(err)
	}

	for _, f := range []string{"b.mp3", "a.wav", "cover.jpg", "README"} {
		if err := os.WriteFile(filepath.Join(m.AudiosDir("media"), f), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := m.ListAudioFiles("media")
	if err != nil {
		t.Fatalf("ListAudioFiles() error = %v", err)
	}
	if len(files) != 2 || files[0] != "a.wav" || files[1] != "b.mp3" {
		t.Errorf("ListAudioFiles() = %v, want [a.wav b.mp3]", files)
	}
}

func TestManager_RemoveAsset(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateProject("pair", "", "small"); err != nil {
		t.Fatal(err)
	}

	audio := filepath.Join(m.AudiosDir("pair"), "talk.mp3")
	text := filepath.Join(m.TextsDir("pair"), "talk.txt")
	if err := os.WriteFile(audio, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(text, []byte("transcript"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := m.RemoveAsset("pair", "talk.mp3"); err != nil {
		t.Fatalf("RemoveAsset() error = %v", err)
	}

	if _, err := os.Stat(audio); !os.IsNotExist(err) {
		t.Error("audio file still present after RemoveAsset")
	}
	if _, err := os.Stat(text); !os.IsNotExist(err) {
		t.Error("paired transcript still present after RemoveAsset")
	}
}

func TestManager_Stats(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateProject("stats", "", "small"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(m.AudiosDir("stats"), "a.mp3"), []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(m.TextsDir("stats"), "a.txt"), []byte("text"), 0644); err != nil {
		t.Fatal(err)
	}

	stats, err := m.Stats("stats")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.AudioCount != 1 || stats.TextCount != 1 {
		t.Errorf("Stats() counts = %d audio, %d text; want 1, 1", stats.AudioCount, stats.TextCount)
	}
	if stats.HasIndex {
		t.Error("Stats() HasIndex = true with no index file")
	}
	if stats.TotalSize == 0 {
		t.Error("Stats() TotalSize = 0, want > 0")
	}
}
