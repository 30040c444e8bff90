// Package runner orchestrates the per-question pipeline over a batch of
// questions. Failures local to one question (no valid worlds, validation
// errors, submission errors) are recorded and never abort the rest of the
// batch.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/internal/cdf"
	"github.com/Alias1177/Forecaster/internal/payload"
	"github.com/Alias1177/Forecaster/internal/worlds"
	"github.com/Alias1177/Forecaster/models"
)

// Platform is the submission side of the forecasting platform.
type Platform interface {
	ListOpenQuestions(ctx context.Context, tournament string) ([]*models.Question, error)
	SubmitForecast(ctx context.Context, q *models.Question, p *models.SubmissionPayload) error
	PostComment(ctx context.Context, q *models.Question, text string) error
}

// Options configures a Runner.
type Options struct {
	Tournament string
	Submit     bool
}

// Runner runs the sampling/aggregation/sanitization pipeline per question
// and the submission bookkeeping around it.
type Runner struct {
	platform Platform
	sampler  *worlds.Sampler
	research models.ResearchProvider
	journal  models.Journal  // optional
	notifier models.Notifier // optional
	opts     Options
	logger   zerolog.Logger
}

// New wires a runner. Journal and notifier may be nil.
func New(platform Platform, sampler *worlds.Sampler, research models.ResearchProvider,
	journal models.Journal, notifier models.Notifier, opts Options) *Runner {
	return &Runner{
		platform: platform,
		sampler:  sampler,
		research: research,
		journal:  journal,
		notifier: notifier,
		opts:     opts,
		logger:   log.With().Str("component", "runner").Logger(),
	}
}

// Run forecasts every open question of the configured tournament and returns
// the batch report. Only listing failures are returned as errors; everything
// per-question is contained in the report.
func (r *Runner) Run(ctx context.Context) (*models.RunReport, error) {
	report := &models.RunReport{
		Tournament: r.opts.Tournament,
		Started:    time.Now(),
	}

	questions, err := r.platform.ListOpenQuestions(ctx, r.opts.Tournament)
	if err != nil {
		return nil, fmt.Errorf("listing open questions: %w", err)
	}

	for _, q := range questions {
		r.runOne(ctx, q, report)
	}

	report.Finished = time.Now()
	r.logger.Info().
		Int("submitted", report.Submitted).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("run complete")

	if r.notifier != nil {
		if err := r.notifier.NotifyRun(report); err != nil {
			r.logger.Warn().Err(err).Msg("run notification failed")
		}
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, q *models.Question, report *models.RunReport) {
	p, rationale, err := r.ForecastQuestion(ctx, q)
	if err != nil {
		reason := failureReason(err)
		r.logger.Error().Err(err).Str("question", q.ID).Str("reason", reason).Msg("question failed")
		report.Failed++
		report.Failures = append(report.Failures, q.ID+": "+reason)
		r.record(q, "failed", reason, nil)
		return
	}

	if !r.opts.Submit {
		r.logger.Info().Str("question", q.ID).Msg("submission disabled, skipping")
		report.Skipped++
		r.record(q, "skipped", "submission disabled", p)
		return
	}

	if err := r.platform.SubmitForecast(ctx, q, p); err != nil {
		r.logger.Error().Err(err).Str("question", q.ID).Msg("submission failed")
		report.Failed++
		report.Failures = append(report.Failures, q.ID+": submission failed")
		r.record(q, "failed", "submission failed: "+err.Error(), p)
		return
	}
	if err := r.platform.PostComment(ctx, q, rationale); err != nil {
		// The forecast itself went through; a lost comment is not a failure.
		r.logger.Warn().Err(err).Str("question", q.ID).Msg("comment failed")
	}
	report.Submitted++
	r.record(q, "submitted", "", p)
}

// ForecastQuestion runs the full per-question pipeline: research, world
// sampling, aggregation, numeric sanitization, payload build and validation.
// Returns the validated payload and the rationale comment text.
func (r *Runner) ForecastQuestion(ctx context.Context, q *models.Question) (*models.SubmissionPayload, string, error) {
	facts, err := r.research.Facts(ctx, q)
	if err != nil {
		// Providers degrade to a neutral fact themselves; a hard error here
		// still leaves the prompt usable without facts.
		r.logger.Warn().Err(err).Str("question", q.ID).Msg("research failed, sampling without facts")
		facts = nil
	}

	samples, err := r.sampler.SampleWorlds(ctx, q, facts)
	if err != nil {
		return nil, "", fmt.Errorf("question %s: %w", q.ID, err)
	}

	agg, err := worlds.Aggregate(q, worlds.ValidAnswers(samples))
	if err != nil {
		return nil, "", fmt.Errorf("question %s: %w", q.ID, err)
	}

	var sanitized []float64
	if q.Type == models.Numeric {
		sanitized = cdf.Sanitize(agg.CDF, cdf.Bounds{OpenLower: q.OpenLower, OpenUpper: q.OpenUpper})
	}

	p := payload.Build(q, agg, sanitized)
	if err := payload.Validate(q.ID, p); err != nil {
		return nil, "", err
	}

	return p, worlds.Rationale(q, agg, samples), nil
}

// failureReason folds an error into the reporting taxonomy so operators can
// tell a question that never parsed from one whose payload failed the
// contract.
func failureReason(err error) string {
	var vErr *payload.ValidationError
	switch {
	case errors.Is(err, worlds.ErrNoValidWorlds):
		return "no valid worlds generated"
	case errors.As(err, &vErr):
		return "payload validation failed: " + vErr.Constraint
	default:
		return err.Error()
	}
}

func (r *Runner) record(q *models.Question, outcome, reason string, p *models.SubmissionPayload) {
	if r.journal == nil {
		return
	}
	rec := &models.ForecastRecord{
		QuestionID: q.ID,
		Type:       q.Type,
		Outcome:    outcome,
		Reason:     reason,
		Payload:    p,
		CreatedAt:  time.Now(),
	}
	if err := r.journal.Record(rec); err != nil {
		r.logger.Warn().Err(err).Str("question", q.ID).Msg("journal write failed")
	}
}
