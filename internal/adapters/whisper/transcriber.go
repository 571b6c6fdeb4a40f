package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/lmonteir/handyspeech/internal/config"
	"github.com/lmonteir/handyspeech/internal/domain"
	"github.com/lmonteir/handyspeech/internal/ports"
)

// Model sizes in bytes (approximate)
var modelSizes = map[string]int64{
	"tiny":      75 * 1024 * 1024,
	"tiny.en":   75 * 1024 * 1024,
	"base":      140 * 1024 * 1024,
	"base.en":   140 * 1024 * 1024,
	"small":     462 * 1024 * 1024,
	"small.en":  462 * 1024 * 1024,
	"medium":    1500 * 1024 * 1024,
	"medium.en": 1500 * 1024 * 1024,
	"large-v1":  3000 * 1024 * 1024,
	"large-v2":  3000 * 1024 * 1024,
	"large-v3":  3000 * 1024 * 1024,
	"large":     3000 * 1024 * 1024,
}

var modelDescriptions = map[string]string{
	"tiny":   "~75MB, basic accuracy, very fast",
	"base":   "~140MB, good accuracy, fast",
	"small":  "~462MB, better accuracy, moderate speed",
	"medium": "~1.5GB, great accuracy, slower",
	"large":  "~3GB, best accuracy, slow",
}

// Transcriber implements ports.Transcriber using whisper.cpp
type Transcriber struct {
	modelsDir string
	binPath   string
	paths     config.PathsConfig
}

// NewTranscriber creates a new whisper.cpp transcriber loading weights
// from modelsDir (the shared cache shared by all projects).
func NewTranscriber(modelsDir string, paths config.PathsConfig) *Transcriber {
	if modelsDir == "" {
		modelsDir = config.ModelsDir()
	}
	return &Transcriber{modelsDir: modelsDir, paths: paths}
}

func modelURL(name string) string {
	// "large" is an alias for the newest large model
	if name == "large" {
		name = "large-v3"
	}
	return fmt.Sprintf("https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-%s.bin", name)
}

func (t *Transcriber) modelPath(name string) string {
	return filepath.Join(t.modelsDir, fmt.Sprintf("ggml-%s.bin", name))
}

func (t *Transcriber) lockPath(name string) string {
	return t.modelPath(name) + ".lock"
}

func (t *Transcriber) AvailableModels() []ports.Model {
	names := []string{"tiny", "tiny.en", "base", "base.en", "small", "small.en", "medium", "medium.en", "large-v1", "large-v2", "large-v3", "large"}

	models := make([]ports.Model, 0, len(names))
	for _, name := range names {
		family := strings.TrimSuffix(name, ".en")
		if strings.HasPrefix(family, "large") {
			family = "large"
		}
		models = append(models, ports.Model{
			Name:        name,
			Size:        modelSizes[name],
			Description: modelDescriptions[family],
			Downloaded:  t.IsModelDownloaded(name),
		})
	}
	return models
}

func (t *Transcriber) IsModelDownloaded(model string) bool {
	_, err := os.Stat(t.modelPath(model))
	return err == nil
}

// DownloadModel fetches model weights into the shared cache. A lock file
// taken exclusively prevents two runs from downloading the same model at
// once; the loser waits for the winner and then finds the weights cached.
func (t *Transcriber) DownloadModel(ctx context.Context, model string, progress func(downloaded, total int64)) error {
	if _, ok := modelSizes[model]; !ok {
		return fmt.Errorf("unknown model: %s", model)
	}
	if t.IsModelDownloaded(model) {
		return nil
	}

	if err := os.MkdirAll(t.modelsDir, 0755); err != nil {
		return err
	}

	release, err := t.acquireDownloadLock(ctx, model)
	if err != nil {
		return err
	}
	defer release()

	// Another process may have finished the download while we waited
	if t.IsModelDownloaded(model) {
		return nil
	}

	url := modelURL(model)
	destPath := t.modelPath(model)
	tempPath := destPath + ".tmp"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download model: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	// Track success to clean up partial downloads on failure
	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(tempPath)
		}
	}()

	total := resp.ContentLength
	var downloaded int64

	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := resp.Body.Read(buf)
		if n > 0 {
			_, writeErr := out.Write(buf[:n])
			if writeErr != nil {
				return writeErr
			}
			downloaded += int64(n)
			if progress != nil {
				progress(downloaded, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	out.Close()
	if err := os.Rename(tempPath, destPath); err != nil {
		return err
	}

	success = true
	return nil
}

// acquireDownloadLock takes the per-model lock file, waiting for a
// concurrent holder to release it.
func (t *Transcriber) acquireDownloadLock(ctx context.Context, model string) (func(), error) {
	lockPath := t.lockPath(model)

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to take download lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (t *Transcriber) DeleteModel(model string) error {
	return os.Remove(t.modelPath(model))
}

func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts ports.TranscribeOpts) (*domain.Transcript, error) {
	model := opts.Model
	if model == "" {
		model = "medium"
	}

	if !t.IsModelDownloaded(model) {
		return nil, fmt.Errorf("model %s: %w", model, domain.ErrModelNotFound)
	}

	whisperBin := t.findWhisperBinary()
	if whisperBin == "" {
		return nil, fmt.Errorf("whisper binary not found (install whisper.cpp)")
	}

	// Temp base for the JSON output file
	tmpDir := os.TempDir()
	outputBase := filepath.Join(tmpDir, fmt.Sprintf("handyspeech_%d", time.Now().UnixNano()))

	args := []string{
		"-m", t.modelPath(model),
		"-f", audioPath,
		"-of", outputBase,
		"-oj", // JSON output
	}

	if opts.CPUThreads > 0 {
		args = append(args, "-t", strconv.Itoa(opts.CPUThreads))
	}
	if opts.Language != "" && opts.Language != "auto" {
		args = append(args, "-l", opts.Language)
	}

	cmd := exec.CommandContext(ctx, whisperBin, args...)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(audioPath), domain.ErrTranscriptionFailed)
	}

	jsonPath := outputBase + ".json"
	defer os.Remove(jsonPath)

	return parseWhisperJSON(jsonPath, model)
}

func (t *Transcriber) findWhisperBinary() string {
	if t.binPath != "" {
		return t.binPath
	}

	if t.paths.Whisper != "" {
		if _, err := os.Stat(t.paths.Whisper); err == nil {
			t.binPath = t.paths.Whisper
			return t.binPath
		}
	}

	names := []string{"whisper-cli", "whisper", "whisper-cpp", "main"}
	if runtime.GOOS == "windows" {
		names = []string{"whisper-cli.exe", "whisper.exe", "whisper-cpp.exe", "main.exe"}
	}

	// Check bundled location
	for _, name := range names {
		bundled := filepath.Join(config.BinDir(), name)
		if _, err := os.Stat(bundled); err == nil {
			t.binPath = bundled
			return t.binPath
		}
	}

	// Check PATH
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			t.binPath = path
			return t.binPath
		}
	}

	return ""
}

func parseWhisperJSON(path string, model string) (*domain.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var output struct {
		Result struct {
			Language string `json:"language"`
		} `json:"result"`
		Transcription []struct {
			Timestamps struct {
				From string `json:"from"`
				To   string `json:"to"`
			} `json:"timestamps"`
			Text string `json:"text"`
		} `json:"transcription"`
	}

	if err := json.Unmarshal(data, &output); err != nil {
		return nil, err
	}

	var segments []domain.Segment
	for _, item := range output.Transcription {
		segments = append(segments, domain.Segment{
			Start: parseTimestamp(item.Timestamps.From),
			End:   parseTimestamp(item.Timestamps.To),
			Text:  strings.TrimSpace(item.Text),
		})
	}

	language := output.Result.Language
	if language == "" {
		language = "auto"
	}

	return &domain.Transcript{
		Segments:      segments,
		Model:         model,
		Language:      language,
		TranscribedAt: time.Now(),
	}, nil
}

var timestampRegex = regexp.MustCompile(`(\d+):(\d+):(\d+)[,.](\d+)`)

func parseTimestamp(ts string) float64 {
	matches := timestampRegex.FindStringSubmatch(ts)
	if len(matches) != 5 {
		return 0
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])
	millis, _ := strconv.Atoi(matches[4])

	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}

// Ensure Transcriber implements the interface
var _ ports.Transcriber = (*Transcriber)(nil)
