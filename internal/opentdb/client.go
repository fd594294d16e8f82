package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultBaseURL = "https://opentdb.com/api.php"
	defaultAmount  = 10
	maxAmount      = 50
)

// RawQuestion mirrors the OpenTriviaDB question payload.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Query narrows a fetch. Zero Category and empty Difficulty mean any.
type Query struct {
	Amount     int
	Category   int
	Difficulty string
}

var ErrInvalidQuery = errors.New("invalid opentdb query")

func (q Query) Validate() error {
	if q.Category < 0 {
		return fmt.Errorf("%w: category %d", ErrInvalidQuery, q.Category)
	}
	switch strings.ToLower(q.Difficulty) {
	case "", "easy", "medium", "hard":
		return nil
	default:
		return fmt.Errorf("%w: difficulty %q", ErrInvalidQuery, q.Difficulty)
	}
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	return NewClientWithURL(DefaultBaseURL, httpClient)
}

func NewClientWithURL(baseURL string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// FetchQuestions asks for multiple-choice questions only. The amount is
// clamped to what the API accepts.
func (c *Client) FetchQuestions(ctx context.Context, q Query) ([]RawQuestion, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	amount := q.Amount
	if amount <= 0 {
		amount = defaultAmount
	}
	if amount > maxAmount {
		amount = maxAmount
	}

	query := url.Values{}
	query.Set("amount", strconv.Itoa(amount))
	query.Set("type", "multiple")
	if q.Category > 0 {
		query.Set("category", strconv.Itoa(q.Category))
	}
	if q.Difficulty != "" {
		query.Set("difficulty", strings.ToLower(q.Difficulty))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response_code=%d", payload.ResponseCode)
	}

	return payload.Results, nil
}
