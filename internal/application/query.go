package application

import (
	"context"
	"fmt"

	"github.com/lmonteir/handyspeech/internal/config"
	"github.com/lmonteir/handyspeech/internal/domain"
	"github.com/lmonteir/handyspeech/internal/index"
	"github.com/lmonteir/handyspeech/internal/ports"
	"github.com/lmonteir/handyspeech/internal/storage"
)

// Answer is a generated answer plus the chunks it was grounded on.
type Answer struct {
	Text   string
	Chunks []domain.ScoredChunk
}

// QueryService answers questions against a project's vector index.
type QueryService struct {
	store     *storage.Manager
	embedder  ports.Embedder
	generator ports.AnswerGenerator
	cfg       *config.Config
}

// NewQueryService creates a new query service.
func NewQueryService(store *storage.Manager, embedder ports.Embedder, generator ports.AnswerGenerator, cfg *config.Config) *QueryService {
	return &QueryService{store: store, embedder: embedder, generator: generator, cfg: cfg}
}

// Ask retrieves the top-k chunks most similar to the question and generates
// an answer from them. Zero retrieved chunks still produces an answer, not
// an error; a missing index is ErrIndexNotFound.
func (s *QueryService) Ask(ctx context.Context, project, question string) (*Answer, error) {
	project = domain.SanitizeName(project)

	ix, err := index.Load(s.store.IndexPath(project))
	if err != nil {
		return nil, err
	}
	if ix.Len() == 0 {
		return nil, fmt.Errorf("project %q: %w", project, domain.ErrEmptyIndex)
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	chunks := ix.Search(vector, s.cfg.Defaults.TopK)

	text, err := s.generator.GenerateAnswer(ctx, question, chunks, ports.GenerateOpts{
		Temperature: s.cfg.Defaults.Temperature,
		MaxTokens:   s.cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return &Answer{Text: text, Chunks: chunks}, nil
}
