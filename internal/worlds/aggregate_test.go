package worlds

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Forecaster/models"
)

func binaryAnswers(yes, no int) []*models.ParsedAnswer {
	var out []*models.ParsedAnswer
	for i := 0; i < yes; i++ {
		out = append(out, &models.ParsedAnswer{Yes: true})
	}
	for i := 0; i < no; i++ {
		out = append(out, &models.ParsedAnswer{Yes: false})
	}
	return out
}

func TestAggregateRequiresAnswers(t *testing.T) {
	_, err := Aggregate(binaryQuestion(), nil)
	require.Error(t, err)
}

func TestAggregateBinary(t *testing.T) {
	tests := []struct {
		name     string
		yes, no  int
		expected float64
	}{
		{name: "six of ten", yes: 6, no: 4, expected: 0.6},
		{name: "unanimous yes clamped", yes: 30, no: 0, expected: 0.99},
		{name: "unanimous no clamped", yes: 0, no: 30, expected: 0.01},
		{name: "single yes", yes: 1, no: 0, expected: 0.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(binaryQuestion(), binaryAnswers(tt.yes, tt.no))
			require.NoError(t, err)
			require.InDelta(t, tt.expected, got.Probability, 1e-12)
		})
	}
}

func TestAggregateMultipleChoice(t *testing.T) {
	answers := []*models.ParsedAnswer{
		{Scores: []float64{10, 50, 40}},
		{Scores: []float64{10, 50, 40}},
		{Scores: []float64{10, 50, 40}},
	}
	got, err := Aggregate(mcQuestion(), answers)
	require.NoError(t, err)
	require.Len(t, got.Probs, 3)
	require.InDelta(t, 0.10, got.Probs[0], 1e-12)
	require.InDelta(t, 0.50, got.Probs[1], 1e-12)
	require.InDelta(t, 0.40, got.Probs[2], 1e-12)
}

func TestAggregateMultipleChoiceNormalizes(t *testing.T) {
	answers := []*models.ParsedAnswer{
		{Scores: []float64{2, 0, 0}},
		{Scores: []float64{0, 2, 0}},
	}
	got, err := Aggregate(mcQuestion(), answers)
	require.NoError(t, err)
	sum := 0.0
	for _, p := range got.Probs {
		require.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestAggregateMultipleChoiceUniformFallback(t *testing.T) {
	// Only reachable when the parser guard is bypassed; the aggregator must
	// still produce a valid simplex.
	answers := []*models.ParsedAnswer{{Scores: []float64{0, 0, 0}}}
	got, err := Aggregate(mcQuestion(), answers)
	require.NoError(t, err)
	for _, p := range got.Probs {
		require.InDelta(t, 1.0/3.0, p, 1e-12)
	}
}

func numericAnswers(vals ...float64) []*models.ParsedAnswer {
	out := make([]*models.ParsedAnswer, len(vals))
	for i, v := range vals {
		out[i] = &models.ParsedAnswer{Value: v}
	}
	return out
}

func TestAggregateNumeric(t *testing.T) {
	got, err := Aggregate(numericQuestion(), numericAnswers(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	require.NoError(t, err)

	require.Len(t, got.Grid, 101)
	require.Len(t, got.CDF, 101)

	// Grid spans the samples with 5% padding on each side.
	require.InDelta(t, 1-0.45, got.Grid[0], 1e-9)
	require.InDelta(t, 10+0.45, got.Grid[100], 1e-9)

	// Empirical CDF endpoints are exact: padding puts the grid past all samples.
	require.Equal(t, 0.0, got.CDF[0])
	require.Equal(t, 1.0, got.CDF[100])
	for i := 1; i < len(got.CDF); i++ {
		require.GreaterOrEqual(t, got.CDF[i], got.CDF[i-1])
	}

	// Nearest-rank percentiles: index floor(p*n) in the sorted list.
	require.Equal(t, 2.0, got.P10)
	require.Equal(t, 6.0, got.P50)
	require.Equal(t, 10.0, got.P90)
}

func TestAggregateNumericDegenerateSamples(t *testing.T) {
	// All-equal samples would give a zero-width grid without the padding
	// fallback of 1.0.
	got, err := Aggregate(numericQuestion(), numericAnswers(5, 5, 5))
	require.NoError(t, err)
	require.InDelta(t, 4.0, got.Grid[0], 1e-9)
	require.InDelta(t, 6.0, got.Grid[100], 1e-9)
	require.Equal(t, 5.0, got.P50)
}

func TestAggregateNumericBoundsCorrection(t *testing.T) {
	q := &models.Question{
		ID: "4", Type: models.Numeric, Title: "Bounded",
		HasBounds: true, LowerBound: 0, UpperBound: 10,
	}
	got, err := Aggregate(q, numericAnswers(0.1, 0.2, 9.8, 9.9))
	require.NoError(t, err)

	// The padded grid ran past [0, 10] and was clamped back; duplicate
	// clamped points collapse keeping the max CDF value, so the CDF never
	// decreases.
	require.GreaterOrEqual(t, got.Grid[0], 0.0)
	require.LessOrEqual(t, got.Grid[len(got.Grid)-1], 10.0)
	for i := 1; i < len(got.Grid); i++ {
		require.Greater(t, got.Grid[i], got.Grid[i-1])
		require.GreaterOrEqual(t, got.CDF[i], got.CDF[i-1])
	}
	require.GreaterOrEqual(t, got.P10, 0.0)
	require.LessOrEqual(t, got.P90, 10.0)
}

func TestAggregateNumericTiesReflectedExactly(t *testing.T) {
	got, err := Aggregate(numericQuestion(), numericAnswers(2, 2, 2, 8))
	require.NoError(t, err)
	// Three quarters of the mass sits at 2; the CDF must jump there, not be
	// smoothed.
	for i, g := range got.Grid {
		if g >= 2 && g < 8 {
			require.InDelta(t, 0.75, got.CDF[i], 1e-9)
		}
	}
}
