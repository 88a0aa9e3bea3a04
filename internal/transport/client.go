// ABOUTME: HTTP client with per-attempt timeouts and exponential-backoff retry.
// ABOUTME: Retries only network-level failures; received responses are returned as-is.

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultTimeout is the per-attempt timeout applied when none is configured.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the number of additional attempts after the first.
const DefaultMaxRetries = 3

// DefaultBackoffBase is the delay before the first retry; subsequent delays
// double (base, 2*base, 4*base, ...).
const DefaultBackoffBase = 1 * time.Second

// MaxResponseBodySize caps how much of a response body is read (4MB).
const MaxResponseBodySize = 4 << 20

var retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "openclaw",
	Subsystem: "transport",
	Name:      "retries_total",
	Help:      "Network-level retries performed by the transport.",
})

// NetworkError indicates the request never produced an HTTP response:
// connection refused, DNS failure, timeout, or transport abort. It is the
// only error class the transport retries.
type NetworkError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure after %d attempt(s) to %s: %v", e.Attempts, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Request is a single outbound POST exchange. It is constructed fresh per
// call and never reused.
type Request struct {
	URL    string
	Body   []byte
	Header http.Header
}

// Response is a fully-read HTTP response. Any response that was actually
// received is returned to the caller regardless of status code; status
// policy belongs to the layer above.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues POST requests with a hard per-attempt timeout and a bounded
// number of retries on network-level failure.
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	timeout     time.Duration
	maxRetries  int
	backoffBase time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRetries sets how many times a failed attempt is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBackoffBase sets the delay before the first retry.
func WithBackoffBase(d time.Duration) Option {
	return func(c *Client) { c.backoffBase = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for retry observability.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a transport client with the given options applied over
// the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{},
		logger:      slog.Default(),
		timeout:     DefaultTimeout,
		maxRetries:  DefaultMaxRetries,
		backoffBase: DefaultBackoffBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post executes the request, retrying network-level failures with exponential
// backoff up to the configured retry cap. The delays follow base * 2^attempt.
// A response with any HTTP status, including errors, is returned without
// retry. On exhausting retries the last network error is returned as a
// *NetworkError.
func (c *Client) Post(ctx context.Context, req Request) (*Response, error) {
	attempt := 0

	operation := func() (*Response, error) {
		attempt++
		resp, err := c.attempt(ctx, req)
		if err != nil {
			return nil, &NetworkError{URL: req.URL, Attempts: attempt, Err: err}
		}
		return resp, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.backoffBase
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxInterval = c.backoffBase << 16

	notify := func(err error, delay time.Duration) {
		retriesTotal.Inc()
		c.logger.Warn("transport retry",
			"url", req.URL,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(c.maxRetries)+1),
		backoff.WithNotify(notify),
	)
}

// attempt performs one HTTP exchange with the per-attempt timeout applied.
func (c *Client) attempt(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, MaxResponseBodySize))
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}
