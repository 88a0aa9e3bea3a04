// ABOUTME: Aggregator backend adapters for the mail endpoint and message stores.
// ABOUTME: Each restates the generic query in its backend's own sub-language.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golatam/sirenko-openclaw/internal/aggregate"
	"github.com/golatam/sirenko-openclaw/internal/msgstore"
)

// gmailDateLayout is the date form Gmail's search language expects.
const gmailDateLayout = "2006/01/02"

// MailBackend adapts the remote tool endpoint's mail search into an
// aggregator backend. The generic time range is translated into Gmail
// query syntax appended to the free text.
type MailBackend struct {
	id    string
	tools ToolCaller
}

// NewMailBackend creates the mail backend with the given aggregate
// identifier.
func NewMailBackend(id string, tools ToolCaller) *MailBackend {
	if id == "" {
		id = "mail"
	}
	return &MailBackend{id: id, tools: tools}
}

// ID implements aggregate.Backend.
func (b *MailBackend) ID() string { return b.id }

// Search implements aggregate.Backend by invoking the remote mail search
// tool.
func (b *MailBackend) Search(ctx context.Context, q aggregate.Query) (json.RawMessage, error) {
	args := map[string]any{"query": buildGmailQuery(q)}
	if q.Limit > 0 {
		args["max_results"] = q.Limit
	}
	return b.tools.CallTool(ctx, toolSearchMail, args)
}

// buildGmailQuery appends after:/before: operators for the time range.
// Gmail's date operators are inclusive-after and exclusive-before, which
// matches the envelope's inclusive-open range.
func buildGmailQuery(q aggregate.Query) string {
	parts := make([]string, 0, 3)
	if q.Text != "" {
		parts = append(parts, q.Text)
	}
	if !q.From.IsZero() {
		parts = append(parts, "after:"+q.From.UTC().Format(gmailDateLayout))
	}
	if !q.To.IsZero() {
		parts = append(parts, "before:"+q.To.UTC().Format(gmailDateLayout))
	}
	return strings.Join(parts, " ")
}

// StoreBackend adapts a message-store client into an aggregator backend.
// The store speaks the generic query natively, so translation is a direct
// field mapping.
type StoreBackend struct {
	store *msgstore.Client
}

// NewStoreBackend wraps a store client.
func NewStoreBackend(store *msgstore.Client) *StoreBackend {
	return &StoreBackend{store: store}
}

// ID implements aggregate.Backend.
func (b *StoreBackend) ID() string { return b.store.Name() }

// Search implements aggregate.Backend.
func (b *StoreBackend) Search(ctx context.Context, q aggregate.Query) (json.RawMessage, error) {
	result, err := b.store.Search(ctx, msgstore.Query{
		Query: q.Text,
		From:  q.From,
		To:    q.To,
		Limit: q.Limit,
	})
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding store result: %w", err)
	}
	return payload, nil
}
