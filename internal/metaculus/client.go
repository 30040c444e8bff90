// Package metaculus talks to the forecasting platform's posts, forecast and
// comments APIs and normalizes its question schema into the internal
// descriptor shape.
package metaculus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	platformhttp "github.com/Alias1177/Forecaster/internal/platform/http"
	"github.com/Alias1177/Forecaster/models"
)

const (
	defaultBaseURL = "https://www.metaculus.com/api"
	pageSize       = 50
)

// Client is the platform API client.
type Client struct {
	http    *platformhttp.Client
	baseURL string
	token   string
	logger  zerolog.Logger
}

// New creates a platform client. The token may be empty for read-only use.
func New(token string, timeout time.Duration) *Client {
	return &Client{
		http:    platformhttp.NewClient(platformhttp.ClientOptions{Timeout: timeout}),
		baseURL: defaultBaseURL,
		token:   token,
		logger:  log.With().Str("component", "metaculus_client").Logger(),
	}
}

// SetBaseURL overrides the API base URL (used by tests).
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

type postsResponse struct {
	Results []post `json:"results"`
}

type post struct {
	ID       int          `json:"id"`
	Question *apiQuestion `json:"question"`
}

type apiQuestion struct {
	ID          int      `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Options     []string `json:"options"`
	OpenLower   bool     `json:"open_lower_bound"`
	OpenUpper   bool     `json:"open_upper_bound"`
	Scaling     *struct {
		RangeMin *float64 `json:"range_min"`
		RangeMax *float64 `json:"range_max"`
	} `json:"scaling"`
}

// ListOpenQuestions pages through a tournament's open posts and returns the
// normalized question descriptors. Posts whose question type the pipeline
// cannot forecast are skipped with a warning.
func (c *Client) ListOpenQuestions(ctx context.Context, tournament string) ([]*models.Question, error) {
	var questions []*models.Question
	for offset := 0; ; offset += pageSize {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("order_by", "-hotness")
		params.Set("forecast_type", "binary,multiple_choice,numeric,discrete")
		params.Set("tournaments", tournament)
		params.Set("statuses", "open")
		params.Set("include_description", "true")

		body, err := c.get(ctx, "/posts/", params)
		if err != nil {
			return nil, fmt.Errorf("listing posts: %w", err)
		}

		var page postsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding posts response: %w", err)
		}
		for _, p := range page.Results {
			if p.Question == nil || p.Question.Status != "open" {
				continue
			}
			q, ok := normalize(p.ID, p.Question)
			if !ok {
				c.logger.Warn().Int("post", p.ID).Str("type", p.Question.Type).Msg("skipping unsupported question type")
				continue
			}
			questions = append(questions, q)
		}
		if len(page.Results) < pageSize {
			break
		}
	}
	c.logger.Info().Str("tournament", tournament).Int("questions", len(questions)).Msg("fetched open questions")
	return questions, nil
}

// GetQuestion fetches a single post and normalizes its question.
func (c *Client) GetQuestion(ctx context.Context, postID int) (*models.Question, error) {
	body, err := c.get(ctx, fmt.Sprintf("/posts/%d/", postID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", postID, err)
	}
	var p post
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decoding post %d: %w", postID, err)
	}
	if p.Question == nil {
		return nil, fmt.Errorf("post %d has no question", postID)
	}
	q, ok := normalize(p.ID, p.Question)
	if !ok {
		return nil, fmt.Errorf("post %d: unsupported question type %q", postID, p.Question.Type)
	}
	return q, nil
}

// normalize maps the platform schema onto the internal descriptor. Discrete
// questions follow the numeric path: same bounds, same CDF contract.
func normalize(postID int, aq *apiQuestion) (*models.Question, bool) {
	q := &models.Question{
		ID:          strconv.Itoa(aq.ID),
		PostID:      postID,
		Title:       aq.Title,
		Description: aq.Description,
	}
	switch aq.Type {
	case "binary":
		q.Type = models.Binary
	case "multiple_choice":
		if len(aq.Options) == 0 {
			return nil, false
		}
		q.Type = models.MultipleChoice
		q.Options = aq.Options
	case "numeric", "discrete":
		q.Type = models.Numeric
		q.OpenLower = aq.OpenLower
		q.OpenUpper = aq.OpenUpper
		if aq.Scaling != nil && aq.Scaling.RangeMin != nil && aq.Scaling.RangeMax != nil {
			q.HasBounds = true
			q.LowerBound = *aq.Scaling.RangeMin
			q.UpperBound = *aq.Scaling.RangeMax
		}
	default:
		return nil, false
	}
	return q, true
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.auth(req)
	resp, err := c.http.DoRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)
	resp, err := c.http.DoRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Client) auth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
}
