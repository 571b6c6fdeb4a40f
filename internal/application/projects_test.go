package application

import (
	"errors"
	"testing"

	"github.com/lmonteir/handyspeech/internal/domain"
	"github.com/lmonteir/handyspeech/internal/storage"
)

func TestProjectService_Create(t *testing.T) {
	store := storage.NewManager(t.TempDir())
	svc := NewProjectService(store, "medium")

	settings, err := svc.Create("My Project!", "a description")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if settings.Name != "My_Project_" {
		t.Errorf("Name = %s, want My_Project_", settings.Name)
	}
	if settings.Model != "medium" {
		t.Errorf("Model = %s, want medium", settings.Model)
	}
	if settings.NeedsProcessing {
		t.Error("fresh project should not need processing")
	}
	if !store.ProjectExists("My_Project_") {
		t.Error("project directory missing")
	}
}

func TestProjectService_Create_Collision(t *testing.T) {
	store := storage.NewManager(t.TempDir())
	svc := NewProjectService(store, "medium")

	if _, err := svc.Create("talks", "first"); err != nil {
		t.Fatal(err)
	}

	// Distinct raw names sanitizing to the same directory collide too
	_, err := svc.Create("talks", "second")
	if !errors.Is(err, domain.ErrProjectExists) {
		t.Errorf("Create() error = %v, want ErrProjectExists", err)
	}
}

func TestProjectService_Create_InvalidName(t *testing.T) {
	svc := NewProjectService(storage.NewManager(t.TempDir()), "medium")

	for _, name := range []string{"", "   ", "!!!", "日本語"} {
		if _, err := svc.Create(name, ""); !errors.Is(err, domain.ErrInvalidName) {
			t.Errorf("Create(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestProjectService_ListAndDelete(t *testing.T) {
	store := storage.NewManager(t.TempDir())
	svc := NewProjectService(store, "medium")

	for _, name := range []string{"beta", "alpha"} {
		if _, err := svc.Create(name, ""); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := svc.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List() count = %d, want 2", len(infos))
	}
	if infos[0].Settings.Name != "alpha" || infos[1].Settings.Name != "beta" {
		t.Errorf("List() order = %s, %s; want alpha, beta", infos[0].Settings.Name, infos[1].Settings.Name)
	}

	if err := svc.Delete("alpha"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.ProjectExists("alpha") {
		t.Error("deleted project still exists")
	}

	if err := svc.Delete("alpha"); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrProjectNotFound", err)
	}
}
