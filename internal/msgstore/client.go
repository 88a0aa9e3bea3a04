// ABOUTME: Search client for message-store sidecars (chat ingestion services).
// ABOUTME: POSTs {query, source, from, to, limit} and decodes {messages, total}.

package msgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golatam/sirenko-openclaw/internal/transport"
)

// searchPath is the fixed search endpoint on every store.
const searchPath = "/search"

// Query is one search against a store. From and To bound the message
// timestamp; zero values are omitted from the request.
type Query struct {
	Query  string
	Source string
	From   time.Time
	To     time.Time
	Limit  int
}

// Message is one stored message row. The field set follows the ingestion
// sidecar's schema.
type Message struct {
	Source       string          `json:"source"`
	AccountLabel string          `json:"account_label"`
	ThreadID     string          `json:"thread_id,omitempty"`
	SenderID     string          `json:"sender_id,omitempty"`
	SenderName   string          `json:"sender_name,omitempty"`
	Text         string          `json:"text"`
	Timestamp    time.Time       `json:"ts"`
	Metadata     json.RawMessage `json:"metadata_json,omitempty"`
}

// SearchResult is the store's response payload.
type SearchResult struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

// searchRequest is the wire form of a Query.
type searchRequest struct {
	Query  string `json:"query"`
	Source string `json:"source,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Client searches one message store.
type Client struct {
	name      string
	baseURL   string
	transport *transport.Client
	logger    *slog.Logger
}

// Config holds configuration for a store client.
type Config struct {
	// Name identifies the store in logs and aggregate results.
	Name string
	// BaseURL is the store's root URL; the search path is appended.
	BaseURL string
	// Transport is the retrying HTTP client. A default is created if nil.
	Transport *transport.Client
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// NewClient creates a store search client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Name == "" {
		return nil, errors.New("store name is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("store base URL is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tr := cfg.Transport
	if tr == nil {
		tr = transport.NewClient(transport.WithLogger(logger))
	}

	return &Client{
		name:      cfg.Name,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		transport: tr,
		logger:    logger,
	}, nil
}

// Name returns the store's identifier.
func (c *Client) Name() string { return c.name }

// Search runs one query against the store.
func (c *Client) Search(ctx context.Context, q Query) (*SearchResult, error) {
	req := searchRequest{
		Query:  q.Query,
		Source: q.Source,
		Limit:  q.Limit,
	}
	if !q.From.IsZero() {
		req.From = q.From.UTC().Format(time.RFC3339)
	}
	if !q.To.IsZero() {
		req.To = q.To.UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", transport.ContentTypeJSON)
	header.Set("Accept", transport.ContentTypeJSON)

	resp, err := c.transport.Post(ctx, transport.Request{
		URL:    c.baseURL + searchPath,
		Body:   body,
		Header: header,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("store %s returned status %d: %s", c.name, resp.StatusCode, snippet(resp.Body))
	}

	doc, err := transport.Decode(resp.Header.Get("Content-Type"), resp.Body)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(doc, &result); err != nil {
		return nil, fmt.Errorf("parsing store %s response: %w", c.name, err)
	}

	c.logger.Debug("store search complete",
		"store", c.name,
		"query", q.Query,
		"total", result.Total,
	)
	return &result, nil
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
