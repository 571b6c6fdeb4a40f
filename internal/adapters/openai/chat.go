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
	"strings"
	"time"

	"github.com/lmonteir/handyspeech/internal/config"
	"github.com/lmonteir/handyspeech/internal/domain"
	"github.com/lmonteir/handyspeech/internal/ports"
)

// SystemPrompt grounds the model on the transcript corpus. Shared by every
// generator provider.
const SystemPrompt = "You are an assistant answering questions about a collection of audio transcripts. " +
	"Answer using only the transcript excerpts provided. Cite the source file when it helps. " +
	"If the excerpts do not contain the answer, say so plainly instead of guessing."

// Generator answers questions through an OpenAI-compatible chat completions
// endpoint.
type Generator struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

// NewGenerator creates a chat client from the tool config.
func NewGenerator(cfg config.LLMConfig) *Generator {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Generator{
		baseURL:   baseURL,
		apiKey:    os.Getenv(cfg.APIKeyEnv),
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateAnswer asks the model the question grounded on the retrieved
// chunks. An empty chunk slice still produces a request: the model is told
// no excerpts matched and answers accordingly.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, chunks []domain.ScoredChunk, opts ports.GenerateOpts) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}

	body, err := json.Marshal(struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
		MaxTokens   int           `json:"max_tokens"`
	}{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildPrompt(question, chunks)},
		},
		Temperature: opts.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat request failed: %s: %s", resp.Status, firstBytes(payload, 200))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat response has no choices")
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// BuildPrompt renders the question plus retrieved excerpts into the user
// message shared by all generator providers.
func BuildPrompt(question string, chunks []domain.ScoredChunk) string {
	var b strings.Builder

	if len(chunks) == 0 {
		b.WriteString("No transcript excerpts matched the question.\n\n")
	} else {
		b.WriteString("Transcript excerpts:\n\n")
		for i, sc := range chunks {
			fmt.Fprintf(&b, "[%d] (source: %s)\n%s\n\n", i+1, sc.Chunk.SourceFile, sc.Chunk.Text)
		}
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

// Ensure Generator implements the interface
var _ ports.AnswerGenerator = (*Generator)(nil)
