package oracle

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient wraps the OpenAI-compatible OpenRouter chat completions
// API as an oracle. Responses are requested as single JSON objects.
type OpenRouterClient struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenRouter creates an oracle backed by OpenRouter.
func NewOpenRouter(apiKey, model string) *OpenRouterClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	return &OpenRouterClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: log.With().Str("component", "openrouter_oracle").Logger(),
	}
}

// Generate sends a prompt and returns the raw completion text. Transport,
// timeout and HTTP errors surface as errors; the caller treats them as one
// failed sampling attempt.
func (c *OpenRouterClient) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "Reply with a single valid JSON object. No preface, no code fences.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   maxTokens,
			Temperature: temperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		c.logger.Error().Err(err).Msg("OpenRouter API error")
		return "", err
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn().Msg("OpenRouter returned empty choices")
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
