// Package ontime is a small client for the OnTime event-scheduling service.
// The overlay polls it for the current and next session.
package ontime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const pollPath = "/api/poll"

// ErrNoBaseURL is returned when the client has no base URL configured.
// Callers treat it as "nothing to do", not as a failure.
var ErrNoBaseURL = errors.New("ontime: no base URL configured")

// ErrParse wraps JSON decode failures so callers can classify them.
var ErrParse = errors.New("ontime: invalid response body")

// StatusError reports a non-2xx poll response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ontime: poll returned HTTP %d", e.Code)
}

// Event is one scheduled session. TimeStart/TimeEnd are epoch milliseconds;
// nil means the field was absent.
type Event struct {
	Title  string `json:"title"`
	Custom struct {
		Speakers string `json:"Speakers"`
	} `json:"custom"`
	TimeStart *int64 `json:"timeStart"`
	TimeEnd   *int64 `json:"timeEnd"`
}

// PollResult is one poll cycle's payload. Older servers send the singular
// eventNow shape; Now falls back to it.
type PollResult struct {
	PublicEventNow  *Event `json:"publicEventNow"`
	PublicEventNext *Event `json:"publicEventNext"`
	EventNow        *Event `json:"eventNow"`
}

func (r *PollResult) Now() *Event {
	if r.PublicEventNow != nil {
		return r.PublicEventNow
	}
	return r.EventNow
}

func (r *PollResult) Next() *Event {
	return r.PublicEventNext
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Poll fetches the current schedule state. One GET per call, caching
// disabled; the caller decides what a failed cycle means.
func (c *Client) Poll(ctx context.Context) (*PollResult, error) {
	if c.BaseURL == "" {
		return nil, ErrNoBaseURL
	}

	url := strings.TrimSuffix(c.BaseURL, "/") + pollPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var result PollResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &result, nil
}
