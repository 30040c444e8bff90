package worlds

import (
	"fmt"
	"strings"

	"github.com/Alias1177/Forecaster/models"
)

// Rationale builds the compact comment text attached to a submission:
// method line, outcome line, and a few world-sample drivers.
func Rationale(q *models.Question, agg *models.AggregateResult, samples []models.WorldSample) string {
	var sb strings.Builder

	nValid := len(ValidAnswers(samples))
	fmt.Fprintf(&sb, "Method: %d scenario draws (%d parsed); forecast = empirical frequency/ECDF.\n", len(samples), nValid)

	switch q.Type {
	case models.Binary:
		fmt.Fprintf(&sb, "p = %.2f from world frequency.\n", agg.Probability)
	case models.MultipleChoice:
		top := 0
		for i, p := range agg.Probs {
			if p > agg.Probs[top] {
				top = i
			}
		}
		fmt.Fprintf(&sb, "Top option: %s @ %.2f.\n", q.Options[top], agg.Probs[top])
	case models.Numeric:
		fmt.Fprintf(&sb, "Median ~ %.4g; 10-90%% ~ [%.4g, %.4g].\n", agg.P50, agg.P10, agg.P90)
	}

	drivers := sampleDrivers(samples, 3)
	if len(drivers) > 0 {
		sb.WriteString("Key drivers: ")
		sb.WriteString(strings.Join(drivers, "; "))
		sb.WriteString(".\n")
	}
	sb.WriteString("Will update on major news shocks.")

	return sb.String()
}

// sampleDrivers picks the first k distinct non-empty sample summaries.
func sampleDrivers(samples []models.WorldSample, k int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range samples {
		if s.Parsed == nil || s.Summary == "" || seen[s.Summary] {
			continue
		}
		seen[s.Summary] = true
		out = append(out, s.Summary)
		if len(out) == k {
			break
		}
	}
	return out
}
