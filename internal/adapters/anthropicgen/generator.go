package anthropicgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	openaiadapter "github.com/lmonteir/handyspeech/internal/adapters/openai"
	"github.com/lmonteir/handyspeech/internal/config"
	"github.com/lmonteir/handyspeech/internal/domain"
	"github.com/lmonteir/handyspeech/internal/ports"
)

// Generator answers questions through the Anthropic Messages API.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewGenerator creates a Claude-backed generator from the tool config.
// The API key is read from the environment variable the config names.
func NewGenerator(cfg config.LLMConfig) (*Generator, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" || keyEnv == "OPENAI_API_KEY" {
		keyEnv = "ANTHROPIC_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key in env %s", keyEnv)
	}

	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = "claude-3-5-haiku-latest"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" && cfg.BaseURL != "https://api.openai.com/v1" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Generator{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, chunks []domain.ScoredChunk, opts ports.GenerateOpts) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: openaiadapter.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(openaiadapter.BuildPrompt(question, chunks)),
			),
		},
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude request failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("claude returned no text")
	}

	return strings.TrimSpace(text.String()), nil
}

// Ensure Generator implements the interface
var _ ports.AnswerGenerator = (*Generator)(nil)
