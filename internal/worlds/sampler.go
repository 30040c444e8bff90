package worlds

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/models"
)

// ErrNoValidWorlds signals that every sampling attempt for a question failed
// to parse. Fatal for that question only; callers skip and report it without
// aborting the rest of the batch.
var ErrNoValidWorlds = errors.New("no valid worlds generated")

// SamplerOptions holds the sampling knobs. Zero values fall back to the
// defaults below.
type SamplerOptions struct {
	NWorlds     int
	MaxTokens   int
	Temperature float32
}

// Sampler drives N independent stochastic oracle calls for one question.
// Attempts are sequential: the oracle is the rate-limit-sensitive bottleneck
// and aggregation is order-invariant, so nothing is gained by parallelizing
// within a question.
type Sampler struct {
	oracle models.Oracle
	opts   SamplerOptions
	logger zerolog.Logger
}

// NewSampler creates a sampler over the given oracle.
func NewSampler(oracle models.Oracle, opts SamplerOptions) *Sampler {
	if opts.NWorlds <= 0 {
		opts.NWorlds = 30
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 800
	}
	return &Sampler{
		oracle: oracle,
		opts:   opts,
		logger: log.With().Str("component", "world_sampler").Logger(),
	}
}

// SampleWorlds renders the prompt once and draws NWorlds samples from the
// oracle with it; the oracle's own temperature is the source of diversity.
// A failed oracle call or unparseable response is recorded as a parse-failure
// sample and never aborts the remaining attempts. Returns ErrNoValidWorlds
// when zero samples parsed.
func (s *Sampler) SampleWorlds(ctx context.Context, q *models.Question, facts []string) ([]models.WorldSample, error) {
	prompt := RenderPrompt(q, facts)

	samples := make([]models.WorldSample, 0, s.opts.NWorlds)
	valid := 0
	for i := 0; i < s.opts.NWorlds; i++ {
		raw, err := s.oracle.Generate(ctx, prompt, s.opts.MaxTokens, s.opts.Temperature)
		if err != nil {
			s.logger.Warn().Err(err).Str("question", q.ID).Int("attempt", i).Msg("oracle call failed")
			samples = append(samples, models.WorldSample{Summary: "oracle call failed"})
			continue
		}

		parsed, summary := Parse(q, raw)
		if parsed == nil {
			s.logger.Debug().Str("question", q.ID).Int("attempt", i).Msg("sample did not parse")
		} else {
			valid++
		}
		samples = append(samples, models.WorldSample{RawText: raw, Parsed: parsed, Summary: summary})
	}

	if valid == 0 {
		return samples, ErrNoValidWorlds
	}

	s.logger.Info().Str("question", q.ID).Int("valid", valid).Int("attempts", len(samples)).Msg("world sampling complete")
	return samples, nil
}

// ValidAnswers filters the parsed answers out of a sample list.
func ValidAnswers(samples []models.WorldSample) []*models.ParsedAnswer {
	answers := make([]*models.ParsedAnswer, 0, len(samples))
	for _, s := range samples {
		if s.Parsed != nil {
			answers = append(answers, s.Parsed)
		}
	}
	return answers
}
