package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// ErrTransport matches every Error returned by the client.
var ErrTransport = errors.New("transport failure")

// Error describes a failed catalog fetch. StatusCode is zero when no
// response was received.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrTransport
}

// Config holds configuration for the HTTP client.
type Config struct {
	// Timeout per request
	Timeout time.Duration
	// User-Agent header sent with every request
	UserAgent string
	// Politeness limit; zero or less disables limiting
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:           30 * time.Second,
		UserAgent:         "combatcards/1.0 (+catalog scraper)",
		RequestsPerSecond: 2,
	}
}

// Client fetches catalog pages over HTTP.
type Client struct {
	http *resty.Client
}

// New creates a client with the given configuration.
func New(cfg Config) *Client {
	httpClient := resty.New()
	httpClient.SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		httpClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	// burst of 1 spaces requests evenly
	rateLimiter := rate.NewLimiter(limit, 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	return &Client{http: httpClient}
}

// Fetch performs a GET request for rawURL with the given query parameters
// and returns the response body. Network failures and non-2xx responses are
// returned as *Error.
func (c *Client) Fetch(ctx context.Context, rawURL string, query url.Values) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(rawURL)
	if err != nil {
		return "", &Error{URL: rawURL, Err: err}
	}

	if !resp.IsSuccess() {
		return "", &Error{
			URL:        rawURL,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	return resp.String(), nil
}
