package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Defaults.SegmentJoin != " " {
		t.Errorf("Default segment join = %q, want %q", cfg.Defaults.SegmentJoin, " ")
	}
	if cfg.Defaults.TopK != 4 {
		t.Errorf("Default top_k = %d, want 4", cfg.Defaults.TopK)
	}
	if cfg.Defaults.Temperature != 0 {
		t.Errorf("Default temperature = %v, want 0", cfg.Defaults.Temperature)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("Default LLM provider = %s, want openai", cfg.LLM.Provider)
	}
}

func TestConfig_Save_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Paths.YtDlp = "/opt/yt-dlp"
	cfg.Defaults.TopK = 8

	err := cfg.Save(configPath)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Paths.YtDlp != "/opt/yt-dlp" {
		t.Errorf("Loaded yt_dlp path = %s, want /opt/yt-dlp", loaded.Paths.YtDlp)
	}
	if loaded.Defaults.TopK != 8 {
		t.Errorf("Loaded top_k = %d, want 8", loaded.Defaults.TopK)
	}
}

func TestConfig_Load_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if cfg.Embedder.Model != "text-embedding-3-small" {
		t.Errorf("missing file should yield defaults, got embedder model %s", cfg.Embedder.Model)
	}
}

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()

	if cfg.UserConfig.Model != "medium" {
		t.Errorf("Default model = %s, want medium", cfg.UserConfig.Model)
	}
	if cfg.UserConfig.CPUThreads < 1 {
		t.Errorf("Default cpu threads = %d, want >= 1", cfg.UserConfig.CPUThreads)
	}
	if cfg.UserConfig.ComputeType != "default" {
		t.Errorf("Default compute type = %s, want default", cfg.UserConfig.ComputeType)
	}
	if len(cfg.ComputeTypes) != 9 {
		t.Errorf("Compute type count = %d, want 9", len(cfg.ComputeTypes))
	}
	if !cfg.Models["medium"] || cfg.Models["medium.en"] {
		t.Error("model availability table does not match defaults")
	}
}

func TestAppConfig_FirstRunRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app_config.json")

	// First load creates the file with defaults
	created, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig() first run error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("first run did not persist app_config.json: %v", err)
	}

	// Reloading yields an identical structure
	reloaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig() reload error = %v", err)
	}
	if !reflect.DeepEqual(created, reloaded) {
		t.Errorf("round-trip mismatch:\ncreated  %+v\nreloaded %+v", created, reloaded)
	}
}

func TestAppConfig_UpdateUserConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app_config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig() error = %v", err)
	}

	if err := cfg.UpdateUserConfig(path, UserConfig{Model: "small", ComputeType: "int8", CPUThreads: 2}); err != nil {
		t.Fatalf("UpdateUserConfig() error = %v", err)
	}

	reloaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig() error = %v", err)
	}
	if reloaded.UserConfig.Model != "small" {
		t.Errorf("model = %s, want small", reloaded.UserConfig.Model)
	}
	if reloaded.UserConfig.ComputeType != "int8" {
		t.Errorf("compute type = %s, want int8", reloaded.UserConfig.ComputeType)
	}
	if reloaded.UserConfig.CPUThreads != 2 {
		t.Errorf("cpu threads = %d, want 2", reloaded.UserConfig.CPUThreads)
	}

	if err := cfg.UpdateUserConfig(path, UserConfig{Model: "nonexistent"}); err == nil {
		t.Error("UpdateUserConfig() accepted unknown model")
	}
	if err := cfg.UpdateUserConfig(path, UserConfig{ComputeType: "float128"}); err == nil {
		t.Error("UpdateUserConfig() accepted unknown compute type")
	}
}

func TestAppDir(t *testing.T) {
	dir := AppDir()
	if dir == "" {
		t.Error("AppDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".handyspeech")
	if dir != expected {
		t.Errorf("AppDir() = %s, want %s", dir, expected)
	}
}
