package ports

import "context"

// Embedder converts text into fixed-dimension numeric vectors.
type Embedder interface {
	// EmbedBatch embeds a batch of texts, one vector per input in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Embed embeds a single text.
	Embed(ctx context.Context, text string) ([]float64, error)
}
