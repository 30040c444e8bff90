package models

import "time"

// QuestionType is one of the three forecastable question kinds.
type QuestionType string

const (
	Binary         QuestionType = "binary"
	MultipleChoice QuestionType = "multiple_choice"
	Numeric        QuestionType = "numeric"
)

// Question identifies one question to forecast. It is assumed to already be
// normalized by the fetch layer: Type resolved, Options and Bounds extracted.
type Question struct {
	ID          string       `json:"id"`
	PostID      int          `json:"post_id,omitempty"`
	Type        QuestionType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`

	// Options is present only for multiple_choice. Order is significant:
	// it defines the index<->name mapping used throughout aggregation.
	Options []string `json:"options,omitempty"`

	// Bounds are present only for numeric questions.
	HasBounds bool    `json:"has_bounds,omitempty"`
	LowerBound float64 `json:"lower_bound,omitempty"`
	UpperBound float64 `json:"upper_bound,omitempty"`
	OpenLower  bool    `json:"open_lower,omitempty"`
	OpenUpper  bool    `json:"open_upper,omitempty"`
}

// WorldSample is the product of one oracle call: the raw output, the typed
// partial answer (nil when the attempt failed to parse), and a short summary
// used only for rationale text.
type WorldSample struct {
	RawText string
	Parsed  *ParsedAnswer
	Summary string
}

// ParsedAnswer is a typed partial answer; exactly one field is meaningful,
// keyed by the question type.
type ParsedAnswer struct {
	Yes    bool      // binary
	Scores []float64 // multiple_choice, length == len(Options), not yet normalized
	Value  float64   // numeric
}

// AggregateResult is the statistical summary of all parsed samples for one
// question. Shape depends on the question type.
type AggregateResult struct {
	// Binary: probability of yes, clamped to [0.01, 0.99].
	Probability float64

	// MultipleChoice: Probs[i] corresponds to Options[i]; sums to 1.
	Probs []float64

	// Numeric: Grid and CDF are paired by index, Grid strictly increasing.
	Grid []float64
	CDF  []float64
	P10  float64
	P50  float64
	P90  float64
}

// SubmissionPayload is the outbound forecast shape. Exactly one of the three
// fields is populated, keyed by the question type.
type SubmissionPayload struct {
	ProbabilityYes *float64           `json:"probability_yes,omitempty"`
	PerOption      map[string]float64 `json:"probability_yes_per_category,omitempty"`
	ContinuousCDF  []float64          `json:"continuous_cdf,omitempty"`
}

// ForecastRecord is one journal row: what happened to a question in a run.
type ForecastRecord struct {
	QuestionID string
	Type       QuestionType
	Outcome    string // "submitted", "skipped", "failed"
	Reason     string
	Payload    *SubmissionPayload
	CreatedAt  time.Time
}

// RunReport summarizes one batch run for logging and notification.
type RunReport struct {
	Tournament string
	Started    time.Time
	Finished   time.Time
	Submitted  int
	Skipped    int
	Failed     int
	Failures   []string // "qid: reason" lines
}
