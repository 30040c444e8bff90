package oracle

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	genai "google.golang.org/genai"
)

// GeminiClient is the alternate oracle backend over the official genai
// client, asking for application/json responses.
type GeminiClient struct {
	cli    *genai.Client
	model  string
	logger zerolog.Logger
}

// NewGemini creates an oracle backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		cli:    cli,
		model:  model,
		logger: log.With().Str("component", "gemini_oracle").Logger(),
	}, nil
}

// Generate sends a prompt and returns the raw completion text.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	temp := temperature
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      &temp,
			MaxOutputTokens:  int32(maxTokens),
		},
	)
	if err != nil {
		g.logger.Error().Err(err).Msg("Gemini API error")
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		g.logger.Warn().Msg("Gemini returned no candidates")
		return "", errors.New("empty completion")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
