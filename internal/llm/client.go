package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/brim-cs/backend/pkg/config"
	"github.com/brim-cs/backend/pkg/logger"
)

var (
	// ErrEmbeddingUnavailable covers network, auth and malformed-response
	// failures of the embedding service. Callers degrade retrieval to empty
	// results on it and abort corpus learning.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable covers failures of the generation service.
	// The drafting layer turns it into a user-visible error reply instead
	// of failing the interaction.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)

// Client wraps the embedding and generation service calls. Both are
// stateless per call: no caching, no retries — a failure is surfaced to the
// caller immediately and the caller decides how to degrade.
type Client struct {
	embedder        *openai.Client
	generator       *openai.Client
	embeddingModel  string
	embeddingDim    int
	generationModel string
	temperature     float32
	maxTokens       int
}

func NewClient(cfg config.LLMConfig) *Client {
	generator := openai.NewClient(cfg.GenerationAPIKey)
	embedder := generator
	if cfg.EmbeddingAPIKey != cfg.GenerationAPIKey {
		embedder = openai.NewClient(cfg.EmbeddingAPIKey)
	}

	logger.Info("LLM client initialized",
		zap.String("generation_model", cfg.GenerationModel),
		zap.String("embedding_model", cfg.EmbeddingModel),
		zap.Int("embedding_dim", cfg.EmbeddingDim),
	)

	return &Client{
		embedder:        embedder,
		generator:       generator,
		embeddingModel:  cfg.EmbeddingModel,
		embeddingDim:    cfg.EmbeddingDim,
		generationModel: cfg.GenerationModel,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxTokens,
	}
}

// Embed converts text into a fixed-length vector with a single outbound
// call. The returned vector always has the configured dimension.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.embedder.CreateEmbeddings(
		ctx,
		openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(c.embeddingModel),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	if len(resp.Data) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrEmbeddingUnavailable, len(resp.Data))
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != c.embeddingDim {
		return nil, fmt.Errorf("%w: expected dimension %d, got %d", ErrEmbeddingUnavailable, c.embeddingDim, len(embedding))
	}

	return embedding, nil
}

// Complete runs one chat completion with a system instruction and a single
// user turn, bounded by the configured output-token budget.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.generator.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.generationModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrGenerationUnavailable)
	}

	logger.Debug("completion generated",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}
