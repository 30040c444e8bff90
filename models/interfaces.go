package models

import "context"

// Oracle is the text-generation backend that produces one world sample per
// call. Implementations return the model's raw text; no output format is
// guaranteed.
type Oracle interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// ResearchProvider returns short dated fact strings for a question.
type ResearchProvider interface {
	Facts(ctx context.Context, q *Question) ([]string, error)
}

// Journal persists per-question outcomes of a run.
type Journal interface {
	Record(rec *ForecastRecord) error
}

// Notifier delivers an end-of-run summary.
type Notifier interface {
	NotifyRun(report *RunReport) error
}
