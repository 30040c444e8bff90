package metaculus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Alias1177/Forecaster/models"
)

type forecastEntry struct {
	Question       int                `json:"question"`
	ProbabilityYes *float64           `json:"probability_yes,omitempty"`
	PerOption      map[string]float64 `json:"probability_yes_per_category,omitempty"`
	ContinuousCDF  []float64          `json:"continuous_cdf,omitempty"`
}

// SubmitForecast posts one validated payload for a question.
func (c *Client) SubmitForecast(ctx context.Context, q *models.Question, p *models.SubmissionPayload) error {
	qid, err := strconv.Atoi(q.ID)
	if err != nil {
		return fmt.Errorf("non-numeric question id %q: %w", q.ID, err)
	}
	entries := []forecastEntry{{
		Question:       qid,
		ProbabilityYes: p.ProbabilityYes,
		PerOption:      p.PerOption,
		ContinuousCDF:  p.ContinuousCDF,
	}}
	if _, err := c.post(ctx, "/questions/forecast/", entries); err != nil {
		return fmt.Errorf("submitting forecast for question %s: %w", q.ID, err)
	}
	c.logger.Info().Str("question", q.ID).Msg("forecast submitted")
	return nil
}

type commentRequest struct {
	OnPost           int    `json:"on_post"`
	Text             string `json:"text"`
	IsPrivate        bool   `json:"is_private"`
	IncludedForecast bool   `json:"included_forecast"`
}

// PostComment attaches the rationale text to the question's post.
func (c *Client) PostComment(ctx context.Context, q *models.Question, text string) error {
	if q.PostID == 0 {
		return fmt.Errorf("question %s has no post id", q.ID)
	}
	req := commentRequest{
		OnPost:           q.PostID,
		Text:             text,
		IsPrivate:        true,
		IncludedForecast: true,
	}
	if _, err := c.post(ctx, "/comments/create/", req); err != nil {
		return fmt.Errorf("posting comment for question %s: %w", q.ID, err)
	}
	return nil
}
