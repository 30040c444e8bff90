package worlds

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Forecaster/models"
)

func binaryQuestion() *models.Question {
	return &models.Question{ID: "1", Type: models.Binary, Title: "Will it resolve yes?"}
}

func mcQuestion() *models.Question {
	return &models.Question{ID: "2", Type: models.MultipleChoice, Title: "How many?", Options: []string{"0", "1", "2+"}}
}

func numericQuestion() *models.Question {
	return &models.Question{ID: "3", Type: models.Numeric, Title: "What value?"}
}

func TestParseBinary(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNil bool
		wantYes bool
	}{
		{name: "literal true", raw: `{"yes": true}`, wantYes: true},
		{name: "literal false is a valid answer", raw: `{"yes": false}`, wantYes: false},
		{name: "string yes", raw: `{"yes": "Yes"}`, wantYes: true},
		{name: "string no", raw: `{"yes": "no"}`, wantYes: false},
		{name: "string one", raw: `{"yes": "1"}`, wantYes: true},
		{name: "string zero", raw: `{"yes": "0"}`, wantYes: false},
		{name: "nested binary outcome", raw: `{"outcome": {"binary": {"yes": true}}}`, wantYes: true},
		{name: "fenced json", raw: "```json\n{\"world_summary\": \"w\", \"yes\": true}\n```", wantYes: true},
		{name: "non boolean value", raw: `{"yes": 17}`, wantNil: true},
		{name: "missing field", raw: `{"answer": "maybe"}`, wantNil: true},
		{name: "not json", raw: "the world ended", wantNil: true},
		{name: "empty", raw: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Parse(binaryQuestion(), tt.raw)
			if tt.wantNil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, tt.wantYes, got.Yes)
		})
	}
}

func TestParseMultipleChoice(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantNil    bool
		wantScores []float64
	}{
		{
			name:       "scores under known key",
			raw:        `{"world_summary": "w", "scores": {"0": 10, "1": 50, "2+": 40}}`,
			wantScores: []float64{10, 50, 40},
		},
		{
			name:       "scores at top level",
			raw:        `{"0": 1, "1": 2, "2+": 3}`,
			wantScores: []float64{1, 2, 3},
		},
		{
			name:       "missing option scores zero",
			raw:        `{"scores": {"1": 5}}`,
			wantScores: []float64{0, 5, 0},
		},
		{
			name:       "string scores coerced",
			raw:        `{"scores": {"0": "10", "1": "20", "2+": "70"}}`,
			wantScores: []float64{10, 20, 70},
		},
		{
			name:       "uncoercible score defaults to zero",
			raw:        `{"scores": {"0": "lots", "1": 5, "2+": 0}}`,
			wantScores: []float64{0, 5, 0},
		},
		{
			// The all-zeros guard: mismatched keys must fail the parse, not
			// produce a zero vector treated as valid.
			name:    "mismatched keys",
			raw:     `{"scores": {"Option1": 30, "Option2": 50, "Option3": 20}}`,
			wantNil: true,
		},
		{
			name:    "explicit all zeros",
			raw:     `{"scores": {"0": 0, "1": 0, "2+": 0}}`,
			wantNil: true,
		},
		{
			name:       "negative score clamped to zero",
			raw:        `{"scores": {"0": -10, "1": 60, "2+": 40}}`,
			wantScores: []float64{0, 60, 40},
		},
		{
			// All-negative vectors clamp to all zeros and hit the guard.
			name:    "all negative scores",
			raw:     `{"scores": {"0": -1, "1": -2, "2+": -3}}`,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Parse(mcQuestion(), tt.raw)
			if tt.wantNil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, tt.wantScores, got.Scores)
		})
	}
}

func TestParseMultipleChoiceNoOptionsConfigured(t *testing.T) {
	q := &models.Question{ID: "9", Type: models.MultipleChoice}
	got, _ := Parse(q, `{"scores": {"a": 1}}`)
	require.Nil(t, got)
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantNil   bool
		wantValue float64
	}{
		{name: "value field", raw: `{"value": 42.5}`, wantValue: 42.5},
		{name: "value as string", raw: `{"value": "17"}`, wantValue: 17},
		{name: "fallback first numeric field in order", raw: `{"world_summary": "w", "estimate": 3.5, "other": 9}`, wantValue: 3.5},
		{name: "fallback numeric string", raw: `{"note": "n/a", "forecast": "123.25"}`, wantValue: 123.25},
		{name: "negative value", raw: `{"value": -4}`, wantValue: -4},
		{name: "no numeric field anywhere", raw: `{"world_summary": "only text", "flag": true}`, wantNil: true},
		{name: "not json", raw: "around fifty", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Parse(numericQuestion(), tt.raw)
			if tt.wantNil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, tt.wantValue, got.Value)
		})
	}
}

func TestParseSummaryPrefersWorldNarrative(t *testing.T) {
	_, summary := Parse(binaryQuestion(), `{"world_summary": "tensions ease after talks", "yes": false}`)
	require.Equal(t, "tensions ease after talks", summary)
}

func TestParseSummaryFallsBackToOutcome(t *testing.T) {
	_, summary := Parse(binaryQuestion(), `{"yes": true}`)
	require.Equal(t, "resolves yes", summary)

	_, summary = Parse(mcQuestion(), `{"scores": {"0": 1, "1": 9, "2+": 2}}`)
	require.Equal(t, "leading option: 1", summary)
}
