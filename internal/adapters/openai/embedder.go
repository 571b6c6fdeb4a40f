package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/lmonteir/handyspeech/internal/config"
	"github.com/lmonteir/handyspeech/internal/ports"
)

const maxRetries = 5

// Embedder is an OpenAI-compatible embeddings client. It works against the
// OpenAI API itself and against local servers exposing the same endpoint
// (Ollama, LM Studio, vLLM).
type Embedder struct {
	baseURL   string
	apiKey    string
	model     string
	batchSize int
	client    *http.Client
}

// NewEmbedder creates an embeddings client from the tool config. The API
// key is read from the environment variable the config names; it may be
// empty for local servers that skip auth.
func NewEmbedder(cfg config.EmbedderConfig) *Embedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	return &Embedder{
		baseURL:   baseURL,
		apiKey:    os.Getenv(cfg.APIKeyEnv),
		model:     model,
		batchSize: batchSize,
		client:    &http.Client{Timeout: timeout},
	}
}

// EmbedBatch embeds texts in config-sized batches, returning one vector per
// input in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.embedRequest(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// Embed embeds a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.embedRequest(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return vectors[0], nil
}

func (e *Embedder) embedRequest(ctx context.Context, inputs []string) ([][]float64, error) {
	body, err := json.Marshal(struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}{Input: inputs, Model: e.model})
	if err != nil {
		return nil, err
	}

	url := e.baseURL + "/embeddings"

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay(attempt - 1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if e.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+e.apiKey)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryAfter(resp)
			resp.Body.Close()
			lastErr = fmt.Errorf("embeddings request failed: %s", resp.Status)
			if delay > 0 && attempt < maxRetries {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
			}
			continue
		}

		payload, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("embeddings request failed: %s: %s", resp.Status, firstBytes(payload, 200))
		}

		var out struct {
			Data []struct {
				Index     int       `json:"index"`
				Embedding []float64 `json:"embedding"`
			} `json:"data"`
		}
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, fmt.Errorf("failed to parse embeddings response: %w", err)
		}
		if len(out.Data) != len(inputs) {
			return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(out.Data), len(inputs))
		}

		// The API may return vectors out of order; index fields restore it
		vectors := make([][]float64, len(inputs))
		for _, item := range out.Data {
			if item.Index < 0 || item.Index >= len(vectors) {
				return nil, fmt.Errorf("embeddings response index %d out of range", item.Index)
			}
			vectors[item.Index] = item.Embedding
		}
		return vectors, nil
	}

	return nil, lastErr
}

// retryAfter honors the Retry-After header when the server sends one.
func retryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	secs, err := strconv.Atoi(ra)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// retryDelay is an exponential backoff capped at 5s.
func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func firstBytes(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}

// Ensure Embedder implements the interface
var _ ports.Embedder = (*Embedder)(nil)
