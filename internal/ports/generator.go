package ports

import (
	"context"

	"github.com/lmonteir/handyspeech/internal/domain"
)

// GenerateOpts configures answer generation.
type GenerateOpts struct {
	Temperature float64
	MaxTokens   int
}

// AnswerGenerator produces a natural-language answer to a question,
// grounded on the retrieved chunks. An empty context slice is valid: the
// generator must still answer, stating that nothing relevant was found.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, chunks []domain.ScoredChunk, opts GenerateOpts) (string, error)
}
