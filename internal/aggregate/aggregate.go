// ABOUTME: Concurrent fan-out of one query across heterogeneous search backends.
// ABOUTME: Per-backend failures become {error} entries; the aggregate never fails wholesale.

package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ChannelAll is the wildcard channel filter selecting every backend.
const ChannelAll = "all"

// ErrEmptyEnvelope indicates an envelope with neither query text nor a time
// bound; there is nothing any backend could search for.
var ErrEmptyEnvelope = errors.New("query text or a time range is required")

// Query is the backend-neutral form of one sub-query. Each backend restates
// it in its own sub-language.
type Query struct {
	Text  string
	From  time.Time
	To    time.Time
	Limit int
}

// Backend is any external service the aggregator can query.
type Backend interface {
	// ID is the backend's identifier in the aggregate result mapping.
	ID() string
	// Search runs one sub-query and returns the backend's native payload.
	Search(ctx context.Context, q Query) (json.RawMessage, error)
}

// Envelope is the aggregator's unit of work. It is read-only for the
// duration of one aggregation.
type Envelope struct {
	Query   string
	Channel string
	From    time.Time
	To      time.Time
	Limit   int
}

// Entry is one backend's contribution: either its native payload or a
// captured error descriptor.
type Entry struct {
	Payload json.RawMessage
	Err     error
}

// MarshalJSON renders the payload directly, or {"error": message} for a
// failed backend.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Err != nil {
		return json.Marshal(map[string]string{"error": e.Err.Error()})
	}
	if len(e.Payload) == 0 {
		return []byte("null"), nil
	}
	return e.Payload, nil
}

// Result maps backend identifier to that backend's entry. Every selected
// backend contributes exactly one entry.
type Result map[string]Entry

// Aggregator dispatches one sub-query per eligible backend and joins the
// outcomes. Sub-queries share no mutable state and are not ordered.
type Aggregator struct {
	backends []Backend
	logger   *slog.Logger
}

// New creates an aggregator over the given backends.
func New(backends []Backend, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{backends: backends, logger: logger}
}

// Channels lists the known backend identifiers.
func (a *Aggregator) Channels() []string {
	ids := make([]string, len(a.backends))
	for i, b := range a.backends {
		ids[i] = b.ID()
	}
	return ids
}

// Search answers the envelope by querying every backend implied by its
// channel filter concurrently. It completes only once every dispatched
// sub-query has produced a value or a captured error; there is no early
// return on first failure or first success. The call itself fails only for
// a malformed envelope.
func (a *Aggregator) Search(ctx context.Context, env Envelope) (Result, error) {
	if env.Query == "" && env.From.IsZero() && env.To.IsZero() {
		return nil, ErrEmptyEnvelope
	}

	selected, err := a.selectBackends(env.Channel)
	if err != nil {
		return nil, err
	}

	q := Query{Text: env.Query, From: env.From, To: env.To, Limit: env.Limit}

	entries := make([]Entry, len(selected))
	var wg sync.WaitGroup
	for i, backend := range selected {
		wg.Add(1)
		go func(i int, backend Backend) {
			defer wg.Done()
			entries[i] = a.searchOne(ctx, backend, q)
		}(i, backend)
	}
	wg.Wait()

	result := make(Result, len(selected))
	for i, backend := range selected {
		result[backend.ID()] = entries[i]
	}
	return result, nil
}

// searchOne runs a single backend's sub-query, capturing panics from
// backend-specific query construction so one backend cannot abort the rest.
func (a *Aggregator) searchOne(ctx context.Context, backend Backend, q Query) (entry Entry) {
	defer func() {
		if r := recover(); r != nil {
			entry = Entry{Err: fmt.Errorf("backend %s panicked: %v", backend.ID(), r)}
			a.logger.Error("backend panic during fan-out",
				"backend", backend.ID(),
				"panic", r,
			)
		}
	}()

	payload, err := backend.Search(ctx, q)
	if err != nil {
		a.logger.Warn("backend search failed",
			"backend", backend.ID(),
			"error", err,
		)
		return Entry{Err: err}
	}
	return Entry{Payload: payload}
}

// selectBackends resolves the channel filter: a named channel selects that
// backend, the wildcard (or empty) selects all.
func (a *Aggregator) selectBackends(channel string) ([]Backend, error) {
	if channel == "" || channel == ChannelAll {
		return a.backends, nil
	}
	for _, b := range a.backends {
		if b.ID() == channel {
			return []Backend{b}, nil
		}
	}
	return nil, fmt.Errorf("unknown channel %q (known: %v)", channel, a.Channels())
}
