// Package research produces the short dated fact strings embedded in world
// prompts. Facts come from the researcher model; any failure degrades to a
// single neutral fact so a research outage never sinks a question.
package research

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/models"
)

const maxFacts = 5

// LLMResearcher asks the oracle's researcher model for recent facts.
type LLMResearcher struct {
	oracle    models.Oracle
	maxTokens int
	logger    zerolog.Logger
}

// NewLLMResearcher creates a researcher over the given oracle.
func NewLLMResearcher(oracle models.Oracle, maxTokens int) *LLMResearcher {
	if maxTokens <= 0 {
		maxTokens = 600
	}
	return &LLMResearcher{
		oracle:    oracle,
		maxTokens: maxTokens,
		logger:    log.With().Str("component", "researcher").Logger(),
	}
}

// Facts returns up to five short dated fact strings for the question. Never
// returns an empty list: on any failure the neutral fallback fact is used.
func (r *LLMResearcher) Facts(ctx context.Context, q *models.Question) ([]string, error) {
	prompt := buildResearchPrompt(q)

	raw, err := r.oracle.Generate(ctx, prompt, r.maxTokens, 0)
	if err != nil {
		r.logger.Warn().Err(err).Str("question", q.ID).Msg("research call failed, using neutral fact")
		return neutralFacts(), nil
	}

	facts := parseFacts(raw)
	if len(facts) == 0 {
		r.logger.Warn().Str("question", q.ID).Msg("researcher returned no usable facts")
		return neutralFacts(), nil
	}
	if len(facts) > maxFacts {
		facts = facts[:maxFacts]
	}
	return facts, nil
}

func buildResearchPrompt(q *models.Question) string {
	var sb strings.Builder
	sb.WriteString("You are an assistant to a forecaster. List the most relevant recent facts for the question below.\n\n")
	sb.WriteString("Question: ")
	sb.WriteString(q.Title)
	sb.WriteString("\n")
	if q.Description != "" {
		sb.WriteString("Resolution criteria: ")
		sb.WriteString(q.Description)
		sb.WriteString("\n")
	}
	sb.WriteString("\nReturn JSON only: {\"facts\": [\"YYYY-MM-DD: short fact (source)\", ...]} with at most 5 entries.\n")
	sb.WriteString("Do not produce a forecast yourself.\n")
	return sb.String()
}

func parseFacts(raw string) []string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil
	}
	var parsed struct {
		Facts []string `json:"facts"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil
	}
	var out []string
	for _, f := range parsed.Facts {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func neutralFacts() []string {
	today := time.Now().Format("2006-01-02")
	return []string{today + ": no notable updates; rely on question text and base rates"}
}
