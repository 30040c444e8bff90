package worlds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

// scriptedOracle replays canned responses in order. An empty string entry
// simulates a transport-level failure.
type scriptedOracle struct {
	responses []string
	calls     int
	prompts   []string
}

func (o *scriptedOracle) Generate(_ context.Context, prompt string, _ int, _ float32) (string, error) {
	o.prompts = append(o.prompts, prompt)
	i := o.calls
	o.calls++
	if i >= len(o.responses) {
		return "", errors.New("script exhausted")
	}
	if o.responses[i] == "" {
		return "", errors.New("upstream timeout")
	}
	return o.responses[i], nil
}

func repeatResponses(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestSampleWorldsCollectsValidSamples(t *testing.T) {
	oracle := &scriptedOracle{responses: repeatResponses(`{"world_summary": "w", "yes": true}`, 5)}
	s := NewSampler(oracle, SamplerOptions{NWorlds: 5})

	samples, err := s.SampleWorlds(context.Background(), binaryQuestion(), nil)
	require.NoError(t, err)
	require.Len(t, samples, 5)
	require.Equal(t, 5, oracle.calls)
	require.Len(t, ValidAnswers(samples), 5)
}

func TestSampleWorldsToleratesFailures(t *testing.T) {
	// Mixed run: oracle errors and garbage responses are recorded but do not
	// stop the remaining draws.
	oracle := &scriptedOracle{responses: []string{
		`{"yes": true}`,
		"",
		"not json at all",
		`{"yes": false}`,
		"",
	}}
	s := NewSampler(oracle, SamplerOptions{NWorlds: 5})

	samples, err := s.SampleWorlds(context.Background(), binaryQuestion(), nil)
	require.NoError(t, err)
	require.Len(t, samples, 5)
	require.Equal(t, 5, oracle.calls)

	answers := ValidAnswers(samples)
	require.Len(t, answers, 2)
	require.True(t, answers[0].Yes)
	require.False(t, answers[1].Yes)
	require.Equal(t, "oracle call failed", samples[1].Summary)
}

func TestSampleWorldsAllFailed(t *testing.T) {
	oracle := &scriptedOracle{responses: repeatResponses("", 3)}
	s := NewSampler(oracle, SamplerOptions{NWorlds: 3})

	samples, err := s.SampleWorlds(context.Background(), binaryQuestion(), nil)
	require.ErrorIs(t, err, ErrNoValidWorlds)
	require.Len(t, samples, 3)
	require.Empty(t, ValidAnswers(samples))
}

func TestSampleWorldsDefaults(t *testing.T) {
	oracle := &scriptedOracle{responses: repeatResponses(`{"yes": true}`, 30)}
	s := NewSampler(oracle, SamplerOptions{})

	samples, err := s.SampleWorlds(context.Background(), binaryQuestion(), nil)
	require.NoError(t, err)
	require.Len(t, samples, 30)
}

func TestSampleWorldsPromptReusedAcrossDraws(t *testing.T) {
	oracle := &scriptedOracle{responses: repeatResponses(`{"yes": true}`, 3)}
	s := NewSampler(oracle, SamplerOptions{NWorlds: 3})

	_, err := s.SampleWorlds(context.Background(), binaryQuestion(), []string{"2026-08-30: a fact (src)"})
	require.NoError(t, err)
	require.Len(t, oracle.prompts, 3)
	require.Equal(t, oracle.prompts[0], oracle.prompts[1])
	require.Contains(t, oracle.prompts[0], "2026-08-30: a fact (src)")
}

func TestRenderPromptUsesOptionNames(t *testing.T) {
	q := mcQuestion()
	prompt := RenderPrompt(q, nil)
	for _, name := range q.Options {
		require.Contains(t, prompt, fmt.Sprintf("%q: number", name))
	}
	require.NotContains(t, prompt, "Option1")
}

func TestRenderPromptTruncatesOnRuneBoundary(t *testing.T) {
	// 100 three-byte runes; a byte cut at 200 would land mid-rune.
	fact := strings.Repeat("気", 100)
	prompt := RenderPrompt(binaryQuestion(), []string{fact})
	require.True(t, utf8.ValidString(prompt))
	require.Contains(t, prompt, strings.Repeat("気", 66))
	require.NotContains(t, prompt, strings.Repeat("気", 67))
}

func TestRenderPromptTruncatesFacts(t *testing.T) {
	long := strings.Repeat("x", 500)
	facts := []string{long, "a", "b", "c", "d", "never shown"}
	prompt := RenderPrompt(binaryQuestion(), facts)
	require.Contains(t, prompt, strings.Repeat("x", 200))
	require.NotContains(t, prompt, strings.Repeat("x", 201))
	require.NotContains(t, prompt, "never shown")
}
