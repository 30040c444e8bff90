// Package payload builds the outbound submission shape and re-validates it
// immediately before submission. The validation is deliberately redundant
// with the upstream sanitizer: it guards future code paths that might
// construct a payload without going through it.
package payload

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/internal/cdf"
	"github.com/Alias1177/Forecaster/models"
)

const (
	binaryFloor    = 0.01
	binaryCeiling  = 0.99
	sumTolerance   = 0.01
	driftTolerance = 1e-6
)

// ValidationError describes which field of a payload violated which
// constraint, with enough detail to diagnose without re-running the pipeline.
type ValidationError struct {
	QuestionID string
	Field      string
	Value      float64
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: %s = %v violates %s", e.QuestionID, e.Field, e.Value, e.Constraint)
}

// Build assembles the per-type submission payload. For numeric questions the
// sanitized 201-point CDF is the only representation submitted; the grid is
// never part of the payload.
func Build(q *models.Question, agg *models.AggregateResult, sanitized []float64) *models.SubmissionPayload {
	switch q.Type {
	case models.Binary:
		p := agg.Probability
		return &models.SubmissionPayload{ProbabilityYes: &p}
	case models.MultipleChoice:
		perOption := make(map[string]float64, len(q.Options))
		for i, name := range q.Options {
			perOption[name] = agg.Probs[i]
		}
		return &models.SubmissionPayload{PerOption: perOption}
	case models.Numeric:
		return &models.SubmissionPayload{ContinuousCDF: sanitized}
	}
	return nil
}

// Validate is the last gate before submission. A nil error means the payload
// meets the platform's hard numeric contract. Numeric CDF endpoints that have
// drifted off 0/1 are forced back as a corrective side effect rather than
// rejected; by this stage the open/closed bound distinction is already baked
// into the CDF values.
func Validate(questionID string, p *models.SubmissionPayload) error {
	switch {
	case p == nil:
		return &ValidationError{QuestionID: questionID, Field: "payload", Constraint: "non-nil payload"}
	case p.ProbabilityYes != nil:
		return validateBinary(questionID, *p.ProbabilityYes)
	case p.PerOption != nil:
		return validateMultipleChoice(questionID, p.PerOption)
	case p.ContinuousCDF != nil:
		return validateNumeric(questionID, p.ContinuousCDF)
	}
	return &ValidationError{QuestionID: questionID, Field: "payload", Constraint: "exactly one populated forecast field"}
}

func validateBinary(questionID string, p float64) error {
	if p < binaryFloor || p > binaryCeiling {
		return &ValidationError{
			QuestionID: questionID,
			Field:      "probability_yes",
			Value:      p,
			Constraint: fmt.Sprintf("range [%v, %v]", binaryFloor, binaryCeiling),
		}
	}
	return nil
}

func validateMultipleChoice(questionID string, perOption map[string]float64) error {
	sum := 0.0
	for name, v := range perOption {
		if v < 0 || v > 1 {
			return &ValidationError{
				QuestionID: questionID,
				Field:      "probability_yes_per_category[" + name + "]",
				Value:      v,
				Constraint: "range [0, 1]",
			}
		}
		sum += v
	}
	if sum < 1-sumTolerance || sum > 1+sumTolerance {
		return &ValidationError{
			QuestionID: questionID,
			Field:      "probability_yes_per_category",
			Value:      sum,
			Constraint: fmt.Sprintf("sum 1.0 +/- %v", sumTolerance),
		}
	}
	return nil
}

func validateNumeric(questionID string, c []float64) error {
	if len(c) != cdf.TargetLength {
		return &ValidationError{
			QuestionID: questionID,
			Field:      "continuous_cdf",
			Value:      float64(len(c)),
			Constraint: fmt.Sprintf("exactly %d points", cdf.TargetLength),
		}
	}
	for i, v := range c {
		if v < 0 || v > 1 {
			return &ValidationError{
				QuestionID: questionID,
				Field:      fmt.Sprintf("continuous_cdf[%d]", i),
				Value:      v,
				Constraint: "range [0, 1]",
			}
		}
		if i > 0 && v < c[i-1] {
			return &ValidationError{
				QuestionID: questionID,
				Field:      fmt.Sprintf("continuous_cdf[%d]", i),
				Value:      v,
				Constraint: fmt.Sprintf("non-decreasing (previous %v)", c[i-1]),
			}
		}
	}
	if d := c[0] - 0; d > driftTolerance || d < -driftTolerance {
		log.Warn().Str("question", questionID).Float64("value", c[0]).Msg("forcing CDF start to 0.0")
		c[0] = 0.0
	}
	if d := c[len(c)-1] - 1; d > driftTolerance || d < -driftTolerance {
		log.Warn().Str("question", questionID).Float64("value", c[len(c)-1]).Msg("forcing CDF end to 1.0")
		c[len(c)-1] = 1.0
	}
	return nil
}
