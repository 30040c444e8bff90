package worlds

import (
	"errors"
	"math"
	"sort"

	"github.com/Alias1177/Forecaster/models"
)

const (
	// numericGridSize is the number of grid points for the raw empirical CDF.
	// The submission contract's 201-point resampling happens later, in the
	// sanitizer.
	numericGridSize = 101

	binaryFloor   = 0.01
	binaryCeiling = 0.99
)

// Aggregate reduces the parsed answers for one question into a statistical
// summary. Callers must pass at least one answer; the sampler's
// ErrNoValidWorlds contract guarantees that on the normal path.
func Aggregate(q *models.Question, answers []*models.ParsedAnswer) (*models.AggregateResult, error) {
	if len(answers) == 0 {
		return nil, errors.New("aggregate called with no valid answers")
	}

	switch q.Type {
	case models.Binary:
		return aggregateBinary(answers), nil
	case models.MultipleChoice:
		return aggregateMultipleChoice(q, answers), nil
	case models.Numeric:
		return aggregateNumeric(q, answers), nil
	}
	return nil, errors.New("unknown question type: " + string(q.Type))
}

func aggregateBinary(answers []*models.ParsedAnswer) *models.AggregateResult {
	yes := 0
	for _, a := range answers {
		if a.Yes {
			yes++
		}
	}
	p := float64(yes) / float64(len(answers))
	// The platform refuses certainty at the extremes; clamp even for 0/N
	// and N/N counts.
	return &models.AggregateResult{Probability: clamp(p, binaryFloor, binaryCeiling)}
}

func aggregateMultipleChoice(q *models.Question, answers []*models.ParsedAnswer) *models.AggregateResult {
	k := len(q.Options)
	avg := make([]float64, k)
	for _, a := range answers {
		for i := 0; i < k && i < len(a.Scores); i++ {
			avg[i] += a.Scores[i]
		}
	}
	total := 0.0
	for i := range avg {
		avg[i] /= float64(len(answers))
		total += avg[i]
	}

	if total == 0 {
		// Only reachable if the parser's all-zeros guard were bypassed;
		// fall back to uniform rather than divide by zero.
		for i := range avg {
			avg[i] = 1.0 / float64(k)
		}
		return &models.AggregateResult{Probs: avg}
	}

	for i := range avg {
		avg[i] /= total
	}
	return &models.AggregateResult{Probs: avg}
}

func aggregateNumeric(q *models.Question, answers []*models.ParsedAnswer) *models.AggregateResult {
	vals := make([]float64, len(answers))
	for i, a := range answers {
		vals[i] = a.Value
	}
	sort.Float64s(vals)

	// Pad the grid past the sample extremes; a degenerate all-equal sample
	// set would otherwise produce a zero-width grid.
	padding := 1.0
	if vals[len(vals)-1] > vals[0] {
		padding = 0.05 * (vals[len(vals)-1] - vals[0])
	}
	lo := vals[0] - padding
	hi := vals[len(vals)-1] + padding

	grid := make([]float64, numericGridSize)
	cdf := make([]float64, numericGridSize)
	for i := range grid {
		grid[i] = lo + (hi-lo)*float64(i)/float64(numericGridSize-1)
		cdf[i] = ecdf(vals, grid[i])
	}

	res := &models.AggregateResult{
		Grid: grid,
		CDF:  cdf,
		P10:  nearestRank(vals, 0.10),
		P50:  nearestRank(vals, 0.50),
		P90:  nearestRank(vals, 0.90),
	}
	if q.HasBounds {
		applyBounds(res, q.LowerBound, q.UpperBound)
	}
	return res
}

// ecdf is the direct empirical CDF: the fraction of samples <= x. Ties and
// clustering in the samples are reflected exactly, with no smoothing.
func ecdf(sorted []float64, x float64) float64 {
	n := sort.SearchFloat64s(sorted, math.Nextafter(x, math.Inf(1)))
	return float64(n) / float64(len(sorted))
}

// nearestRank is the discrete percentile value at floor(p*n) in the sorted
// sample list, clamped into range. Deliberately not the linear-interpolation
// definition; a platform expecting interpolated percentiles needs only this
// function changed.
func nearestRank(sorted []float64, p float64) float64 {
	idx := int(math.Floor(p * float64(len(sorted))))
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// applyBounds is a best-effort repair for grids that run past the question's
// resolvable range: clamp the grid, then merge consecutive equal grid points
// keeping the maximum CDF value seen among the duplicates, so clamping never
// makes the CDF decrease. Percentiles are clamped too.
func applyBounds(res *models.AggregateResult, lower, upper float64) {
	outside := res.P10 < lower || res.P90 > upper
	for _, g := range res.Grid {
		if g < lower || g > upper {
			outside = true
			break
		}
	}
	if !outside {
		return
	}

	grid := make([]float64, 0, len(res.Grid))
	cdf := make([]float64, 0, len(res.CDF))
	for i, g := range res.Grid {
		g = clamp(g, lower, upper)
		if n := len(grid); n > 0 && grid[n-1] == g {
			if res.CDF[i] > cdf[n-1] {
				cdf[n-1] = res.CDF[i]
			}
			continue
		}
		grid = append(grid, g)
		cdf = append(cdf, res.CDF[i])
	}
	res.Grid = grid
	res.CDF = cdf
	res.P10 = clamp(res.P10, lower, upper)
	res.P50 = clamp(res.P50, lower, upper)
	res.P90 = clamp(res.P90, lower, upper)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
