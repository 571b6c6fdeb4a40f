package application

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/lmonteir/handyspeech/internal/config"
	"github.com/lmonteir/handyspeech/internal/domain"
	"github.com/lmonteir/handyspeech/internal/index"
	"github.com/lmonteir/handyspeech/internal/logging"
	"github.com/lmonteir/handyspeech/internal/ports"
	"github.com/lmonteir/handyspeech/internal/storage"
)

const pipelineLockFile = ".pipeline.lock"

// AddResult describes an asset freshly added to a project.
type AddResult struct {
	Filename string
	Kind     domain.SourceKind
	Title    string
}

// FileOutcome is one file's result within a pipeline run.
type FileOutcome struct {
	File string
	Err  error
}

// ProcessReport summarizes a pipeline run. Per-file failures live here
// rather than aborting the run.
type ProcessReport struct {
	RunID        string
	Project      string
	Transcribed  []FileOutcome
	IndexedFiles int
	ChunkCount   int
	Duration     time.Duration
}

// Failed returns the number of files that failed transcription.
func (r *ProcessReport) Failed() int {
	n := 0
	for _, o := range r.Transcribed {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// ProcessOptions configures one pipeline run.
type ProcessOptions struct {
	SkipTranscribe bool
	SkipIndex      bool
	SRT            bool // also write texts/<base>.srt

	// ModelProgress reports whisper model download progress when the
	// project's model is not cached yet.
	ModelProgress func(downloaded, total int64)
	// FileDone fires after each file's transcription attempt.
	FileDone func(outcome FileOutcome)
}

// IngestService runs the acquisition, transcription and indexing stages.
// At most one pipeline runs per project at a time: an in-process mutex
// covers goroutines, an on-disk lock file covers other processes.
type IngestService struct {
	store       *storage.Manager
	downloader  ports.AudioDownloader
	transcriber ports.Transcriber
	embedder    ports.Embedder
	cfg         *config.Config
	appCfg      *config.AppConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	store *storage.Manager,
	downloader ports.AudioDownloader,
	transcriber ports.Transcriber,
	embedder ports.Embedder,
	cfg *config.Config,
	appCfg *config.AppConfig,
) *IngestService {
	return &IngestService{
		store:       store,
		downloader:  downloader,
		transcriber: transcriber,
		embedder:    embedder,
		cfg:         cfg,
		appCfg:      appCfg,
		locks:       make(map[string]*sync.Mutex),
	}
}

// AddSource acquires one source into the project's audios folder: remote
// URLs go through the downloader, local paths are copied in. The project
// is marked as needing processing; nothing is transcribed or indexed here.
func (s *IngestService) AddSource(ctx context.Context, project, input string) (*AddResult, error) {
	project = domain.SanitizeName(project)
	if !s.store.ProjectExists(project) {
		return nil, fmt.Errorf("project %q: %w", project, domain.ErrProjectNotFound)
	}

	source, err := domain.ParseSourceInput(input)
	if err != nil {
		return nil, err
	}

	var result *AddResult
	switch source.Kind {
	case domain.SourceRemote:
		dl, err := s.downloader.DownloadAudio(ctx, source.URL, s.store.AudiosDir(project))
		if err != nil {
			return nil, err
		}
		result = &AddResult{
			Filename: filepath.Base(dl.AudioPath),
			Kind:     domain.SourceRemote,
			Title:    dl.Title,
		}
	case domain.SourceLocal:
		filename, err := s.copyLocalFile(source.Path, s.store.AudiosDir(project))
		if err != nil {
			return nil, err
		}
		result = &AddResult{
			Filename: filename,
			Kind:     domain.SourceLocal,
			Title:    strings.TrimSuffix(filename, filepath.Ext(filename)),
		}
	default:
		return nil, fmt.Errorf("source %q: %w", input, domain.ErrUnsupportedSource)
	}

	if err := s.markDirty(project); err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveAsset deletes an audio file and its paired transcript, then marks
// the project as needing processing so the index gets rebuilt without it.
func (s *IngestService) RemoveAsset(project, audioFilename string) error {
	project = domain.SanitizeName(project)
	if err := s.store.RemoveAsset(project, audioFilename); err != nil {
		return err
	}
	return s.markDirty(project)
}

// Process runs transcription then indexing over the project's current
// assets, clearing needs_processing on success. Fails fast with
// ErrPipelineBusy if another run holds the project.
func (s *IngestService) Process(ctx context.Context, project string, opts ProcessOptions) (*ProcessReport, error) {
	project = domain.SanitizeName(project)

	settings, err := s.store.LoadSettings(project)
	if err != nil {
		return nil, err
	}

	release, err := s.acquirePipelineLock(project)
	if err != nil {
		return nil, err
	}
	defer release()

	report := &ProcessReport{
		RunID:   uuid.NewString(),
		Project: project,
	}
	logger := logging.WithRun(report.RunID)
	logger.Info().Str("project", project).Msg("pipeline run started")

	start := time.Now()

	if !opts.SkipTranscribe {
		report.Transcribed, err = s.transcribeAll(ctx, project, settings.Model, logger, opts)
		if err != nil {
			return nil, err
		}
	}

	if !opts.SkipIndex {
		report.IndexedFiles, report.ChunkCount, err = s.rebuildIndex(ctx, project, logger)
		if err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(start)

	audios, err := s.store.ListAudioFiles(project)
	if err != nil {
		return nil, err
	}
	settings.NeedsProcessing = false
	settings.NumberFiles = len(audios)
	if err := s.store.SaveSettings(settings); err != nil {
		return nil, err
	}

	logger.Info().
		Str("project", project).
		Int("files", len(report.Transcribed)).
		Int("failed", report.Failed()).
		Int("chunks", report.ChunkCount).
		Dur("duration", report.Duration).
		Msg("pipeline run finished")

	return report, nil
}

// transcribeAll runs whisper over every audio file with bounded workers.
// One file's failure never aborts the batch; it lands in the outcomes.
func (s *IngestService) transcribeAll(ctx context.Context, project, model string, logger log.Logger, opts ProcessOptions) ([]FileOutcome, error) {
	files, err := s.store.ListAudioFiles(project)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if model == "" {
		model = s.appCfg.UserConfig.Model
	}
	if !s.transcriber.IsModelDownloaded(model) {
		if err := s.transcriber.DownloadModel(ctx, model, opts.ModelProgress); err != nil {
			return nil, fmt.Errorf("failed to download model %s: %w", model, err)
		}
	}

	transcribeOpts := ports.TranscribeOpts{
		Model:       model,
		CPUThreads:  s.appCfg.UserConfig.CPUThreads,
		ComputeType: s.appCfg.UserConfig.ComputeType,
	}

	jobs := make(chan string)
	outcomes := make([]FileOutcome, 0, len(files))

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := s.cfg.Workers()
	if workers > len(files) {
		workers = len(files)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				outcome := FileOutcome{File: file, Err: s.transcribeOne(ctx, project, file, transcribeOpts, opts.SRT)}

				if outcome.Err != nil {
					logger.Error().Str("file", file).Err(outcome.Err).Msg("transcription failed")
				} else {
					logger.Info().Str("file", file).Msg("transcribed")
				}

				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()

				if opts.FileDone != nil {
					opts.FileDone(outcome)
				}
			}
		}()
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].File < outcomes[j].File })
	return outcomes, nil
}

func (s *IngestService) transcribeOne(ctx context.Context, project, file string, opts ports.TranscribeOpts, srt bool) error {
	audioPath := filepath.Join(s.store.AudiosDir(project), file)

	transcript, err := s.transcriber.Transcribe(ctx, audioPath, opts)
	if err != nil {
		return err
	}

	delim := s.cfg.Defaults.SegmentJoin
	if delim == "" {
		delim = domain.DefaultSegmentJoin
	}

	base := strings.TrimSuffix(file, filepath.Ext(file))
	textPath := filepath.Join(s.store.TextsDir(project), base+".txt")
	if err := os.WriteFile(textPath, []byte(transcript.JoinSegments(delim)), 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	if srt {
		srtPath := filepath.Join(s.store.TextsDir(project), base+".srt")
		if err := os.WriteFile(srtPath, []byte(transcript.ToSRT()), 0644); err != nil {
			return fmt.Errorf("failed to write srt: %w", err)
		}
	}
	return nil
}

// rebuildIndex re-chunks and re-embeds every transcript and replaces the
// project index wholesale. An embedding failure leaves the previous index
// untouched on disk.
func (s *IngestService) rebuildIndex(ctx context.Context, project string, logger log.Logger) (int, int, error) {
	texts, err := s.store.ListTranscriptFiles(project)
	if err != nil {
		return 0, 0, err
	}

	chunker := index.NewChunker(index.DefaultChunkSize, index.DefaultChunkOverlap)

	// Aggregate chunks across every transcript file before embedding
	var chunks []domain.Chunk
	for _, file := range texts {
		data, err := os.ReadFile(filepath.Join(s.store.TextsDir(project), file))
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read transcript %s: %w", file, err)
		}
		for _, piece := range chunker.Split(string(data)) {
			chunks = append(chunks, domain.Chunk{
				SourceFile: file,
				Index:      len(chunks),
				Text:       piece,
			})
		}
	}

	if len(chunks) == 0 {
		return 0, 0, fmt.Errorf("project %q has no transcript text: %w", project, domain.ErrEmptyIndex)
	}

	inputs := make([]string, len(chunks))
	for i, c := range chunks {
		inputs[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, inputs)
	if err != nil {
		return 0, 0, fmt.Errorf("embedding failed, previous index kept: %w", err)
	}

	ix := index.New(project, s.cfg.Embedder.Model)
	if err := ix.Add(chunks, vectors); err != nil {
		return 0, 0, err
	}
	if err := ix.Save(s.store.IndexPath(project)); err != nil {
		return 0, 0, err
	}

	logger.Info().Int("files", len(texts)).Int("chunks", len(chunks)).Msg("index rebuilt")
	return len(texts), len(chunks), nil
}

// acquirePipelineLock takes both the in-process mutex and the on-disk lock
// file for a project. The returned release undoes both.
func (s *IngestService) acquirePipelineLock(project string) (func(), error) {
	s.mu.Lock()
	lock, ok := s.locks[project]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[project] = lock
	}
	s.mu.Unlock()

	if !lock.TryLock() {
		return nil, fmt.Errorf("project %q: %w", project, domain.ErrPipelineBusy)
	}

	lockPath := filepath.Join(s.store.ProjectDir(project), pipelineLockFile)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		lock.Unlock()
		if os.IsExist(err) {
			return nil, fmt.Errorf("project %q: %w", project, domain.ErrPipelineBusy)
		}
		return nil, fmt.Errorf("failed to take pipeline lock: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return func() {
		os.Remove(lockPath)
		lock.Unlock()
	}, nil
}

// markDirty flags the project as needing processing and refreshes its
// file count. Processing itself only runs when the user asks for it.
func (s *IngestService) markDirty(project string) error {
	settings, err := s.store.LoadSettings(project)
	if err != nil {
		return err
	}

	audios, err := s.store.ListAudioFiles(project)
	if err != nil {
		return err
	}

	settings.NeedsProcessing = true
	settings.NumberFiles = len(audios)
	return s.store.SaveSettings(settings)
}

// copyLocalFile copies a local media file into destDir keeping its name.
func (s *IngestService) copyLocalFile(srcPath, destDir string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	filename := filepath.Base(srcPath)
	destPath := filepath.Join(destDir, filename)
	tempPath := destPath + ".tmp"

	dst, err := os.Create(tempPath)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to copy %s: %w", filename, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tempPath)
		return "", err
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return "", err
	}

	return filename, nil
}
