package recorder

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
)

const defaultTimeout = 10 * time.Second

// Client calls the session recorder service on behalf of one user.
type Client struct {
	baseURL    string
	userHeader string
	userID     string
	hc         *http.Client
}

// ClientOption modifies a Client.
type ClientOption func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.hc.Timeout = d
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// NewClient returns a client for the service at baseURL, identifying as
// userID through the given trusted header.
func NewClient(baseURL, userHeader, userID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		userHeader: userHeader,
		userID:     userID,
		hc:         &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// IncrementSession records a completed focus period that started at startts
// (Unix seconds) and returns the updated record.
func (c *Client) IncrementSession(
	ctx context.Context,
	courseID int,
	startts int64,
) (Status, error) {
	body, err := json.Marshal(incrementRequest{
		CourseID: courseID,
		Startts:  startts,
	})
	if err != nil {
		return Status{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/sessions/increment",
		bytes.NewReader(body),
	)
	if err != nil {
		return Status{}, err
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// GetStatus fetches the current record for a course, returning zeros when
// no session has been recorded yet.
func (c *Client) GetStatus(ctx context.Context, courseID int) (Status, error) {
	u := c.baseURL + "/api/sessions/status?" + url.Values{
		"courseid": []string{strconv.Itoa(courseID)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Status{}, err
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (Status, error) {
	req.Header.Set(c.userHeader, c.userID)

	resp, err := c.hc.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("session recorder unreachable: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse

		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			return Status{}, fmt.Errorf(
				"session recorder: %s (status %d)",
				e.Error,
				resp.StatusCode,
			)
		}

		return Status{}, fmt.Errorf(
			"session recorder returned status %d",
			resp.StatusCode,
		)
	}

	var st Status

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&st); err != nil {
		return Status{}, fmt.Errorf("decoding recorder response: %w", err)
	}

	return st, nil
}
