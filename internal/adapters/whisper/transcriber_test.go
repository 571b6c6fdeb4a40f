package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lmonteir/handyspeech/internal/config"
	"github.com/lmonteir/handyspeech/internal/domain"
	"github.com/lmonteir/handyspeech/internal/ports"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"00:00:00,000", 0},
		{"00:00:03,500", 3.5},
		{"00:01:30,250", 90.25},
		{"01:00:00,000", 3600},
		{"00:00:07.200", 7.2},
		{"garbage", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseTimestamp(tt.input); got != tt.want {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestModelURL(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"small", "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin"},
		{"medium.en", "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.en.bin"},
		{"large", "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := modelURL(tt.model); got != tt.want {
				t.Errorf("modelURL(%s) = %s, want %s", tt.model, got, tt.want)
			}
		})
	}
}

func TestAvailableModels(t *testing.T) {
	tr := NewTranscriber(t.TempDir(), config.PathsConfig{})

	models := tr.AvailableModels()
	if len(models) != 12 {
		t.Fatalf("AvailableModels() count = %d, want 12", len(models))
	}
	for _, m := range models {
		if m.Downloaded {
			t.Errorf("model %s reported downloaded in empty cache", m.Name)
		}
		if m.Size == 0 {
			t.Errorf("model %s has no size", m.Name)
		}
	}
}

func TestIsModelDownloaded(t *testing.T) {
	dir := t.TempDir()
	tr := NewTranscriber(dir, config.PathsConfig{})

	if tr.IsModelDownloaded("small") {
		t.Error("IsModelDownloaded() = true for empty cache")
	}

	if err := os.WriteFile(filepath.Join(dir, "ggml-small.bin"), []byte("weights"), 0644); err != nil {
		t.Fatal(err)
	}

	if !tr.IsModelDownloaded("small") {
		t.Error("IsModelDownloaded() = false with weights present")
	}
}

func TestDownloadModel_UnknownModel(t *testing.T) {
	tr := NewTranscriber(t.TempDir(), config.PathsConfig{})

	if err := tr.DownloadModel(context.Background(), "gigantic", nil); err == nil {
		t.Error("DownloadModel() accepted unknown model")
	}
}

func TestDownloadModel_AlreadyCached(t *testing.T) {
	dir := t.TempDir()
	tr := NewTranscriber(dir, config.PathsConfig{})

	if err := os.WriteFile(filepath.Join(dir, "ggml-tiny.bin"), []byte("weights"), 0644); err != nil {
		t.Fatal(err)
	}

	// Must return without touching the network
	if err := tr.DownloadModel(context.Background(), "tiny", nil); err != nil {
		t.Errorf("DownloadModel() on cached model error = %v", err)
	}
}

func TestAcquireDownloadLock_WaitsForHolder(t *testing.T) {
	dir := t.TempDir()
	tr := NewTranscriber(dir, config.PathsConfig{})

	release, err := tr.acquireDownloadLock(context.Background(), "tiny")
	if err != nil {
		t.Fatalf("acquireDownloadLock() error = %v", err)
	}

	// A second acquisition must block until the first releases
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	acquired := make(chan struct{})
	go func() {
		release2, err := tr.acquireDownloadLock(ctx, "tiny")
		if err == nil {
			release2()
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first still held")
	default:
	}

	release()

	select {
	case <-acquired:
	case <-time.After(3 * time.Second):
		t.Fatal("second lock not acquired after release")
	}
}

func TestTranscribe_MissingModel(t *testing.T) {
	tr := NewTranscriber(t.TempDir(), config.PathsConfig{})

	_, err := tr.Transcribe(context.Background(), "audio.mp3", ports.TranscribeOpts{Model: "small"})
	if !errors.Is(err, domain.ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestParseWhisperJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out.json")

	payload := `{
		"result": {"language": "en"},
		"transcription": [
			{"timestamps": {"from": "00:00:00,000", "to": "00:00:03,500"}, "text": " hello "},
			{"timestamps": {"from": "00:00:03,500", "to": "00:00:07,000"}, "text": " world"}
		]
	}`
	if err := os.WriteFile(jsonPath, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	transcript, err := parseWhisperJSON(jsonPath, "small")
	if err != nil {
		t.Fatalf("parseWhisperJSON() error = %v", err)
	}

	if len(transcript.Segments) != 2 {
		t.Fatalf("segment count = %d, want 2", len(transcript.Segments))
	}
	if transcript.Segments[0].Text != "hello" || transcript.Segments[1].Text != "world" {
		t.Errorf("segment texts = %q, %q; want hello, world", transcript.Segments[0].Text, transcript.Segments[1].Text)
	}
	if transcript.Segments[1].Start != 3.5 {
		t.Errorf("second segment start = %v, want 3.5", transcript.Segments[1].Start)
	}
	if transcript.Language != "en" {
		t.Errorf("language = %s, want en", transcript.Language)
	}
	if got := transcript.JoinSegments(" "); got != "hello world" {
		t.Errorf("joined transcript = %q, want %q", got, "hello world")
	}
}
