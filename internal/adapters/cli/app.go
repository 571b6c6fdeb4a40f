package cli

import (
	"fmt"

	"github.com/lmonteir/handyspeech/internal/adapters/anthropicgen"
	"github.com/lmonteir/handyspeech/internal/adapters/openai"
	"github.com/lmonteir/handyspeech/internal/adapters/whisper"
	"github.com/lmonteir/handyspeech/internal/adapters/ytdlp"
	"github.com/lmonteir/handyspeech/internal/application"
	"github.com/lmonteir/handyspeech/internal/config"
	"github.com/lmonteir/handyspeech/internal/ports"
	"github.com/lmonteir/handyspeech/internal/storage"
)

// App holds all application dependencies
type App struct {
	Config      *config.Config
	AppConfig   *config.AppConfig
	Store       *storage.Manager
	Downloader  *ytdlp.Downloader
	Transcriber *whisper.Transcriber

	ProjectSvc *application.ProjectService
	IngestSvc  *application.IngestService
	QuerySvc   *application.QueryService
}

// NewApp creates and wires up all dependencies
func NewApp() (*App, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}

	appCfg, err := config.LoadAppConfigDefault()
	if err != nil {
		return nil, err
	}

	store := storage.NewManager(config.ProjectsDir())
	downloader := ytdlp.NewDownloader(cfg.Paths)
	transcriber := whisper.NewTranscriber(config.ModelsDir(), cfg.Paths)
	embedder := openai.NewEmbedder(cfg.Embedder)

	generator, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		AppConfig:   appCfg,
		Store:       store,
		Downloader:  downloader,
		Transcriber: transcriber,

		ProjectSvc: application.NewProjectService(store, appCfg.UserConfig.Model),
		IngestSvc:  application.NewIngestService(store, downloader, transcriber, embedder, cfg, appCfg),
		QuerySvc:   application.NewQueryService(store, embedder, generator, cfg),
	}, nil
}

func newGenerator(cfg *config.Config) (ports.AnswerGenerator, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		return anthropicgen.NewGenerator(cfg.LLM)
	case "", "openai":
		return openai.NewGenerator(cfg.LLM), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q (want openai or anthropic)", cfg.LLM.Provider)
	}
}

var globalApp *App

// GetApp returns the global app instance, creating it if needed
func GetApp() (*App, error) {
	if globalApp == nil {
		app, err := NewApp()
		if err != nil {
			return nil, err
		}
		globalApp = app
	}
	return globalApp, nil
}
