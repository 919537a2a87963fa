package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"quizrun/internal/model"
)

const defaultTimeout = 10 * time.Second

// FetchError reports a failed or empty question fetch. It covers transport
// errors, non-200 responses, undecodable payloads, and batches with no records.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch questions from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client talks to the question service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a question service client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetQuestions fetches the multiple-choice question batch for a level.
// Each record is returned as raw JSON so that one malformed record cannot
// fail the whole batch; per-record validation is the loader's job.
// Returns a *FetchError when the call fails or the batch is empty.
func (c *Client) GetQuestions(ctx context.Context, level model.Level) ([]json.RawMessage, error) {
	u := fmt.Sprintf("%s/api/questions?level=%s&type=multiple-choice", c.baseURL, url.QueryEscape(string(level)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: u, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: u, Err: fmt.Errorf("read response body: %w", err)}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &FetchError{URL: u, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(records) == 0 {
		return nil, &FetchError{URL: u, Err: fmt.Errorf("service returned no data")}
	}

	return records, nil
}
