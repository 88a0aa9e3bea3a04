// ABOUTME: Tests for the aggregator backend adapters.
// ABOUTME: Covers Gmail query translation and store field mapping.

package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golatam/sirenko-openclaw/internal/aggregate"
	"github.com/golatam/sirenko-openclaw/internal/msgstore"
	"github.com/golatam/sirenko-openclaw/internal/transport"
)

type recordingCaller struct {
	name   string
	args   map[string]any
	result json.RawMessage
	err    error
}

func (c *recordingCaller) CallTool(_ context.Context, name string, args map[string]any) (json.RawMessage, error) {
	c.name = name
	c.args = args
	return c.result, c.err
}

func TestBuildGmailQuery(t *testing.T) {
	from := time.Date(2026, 8, 18, 9, 30, 0, 0, time.UTC)
	to := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		q    aggregate.Query
		want string
	}{
		{"text only", aggregate.Query{Text: "invoice"}, "invoice"},
		{"text and range", aggregate.Query{Text: "invoice", From: from, To: to}, "invoice after:2026/08/18 before:2026/08/25"},
		{"range only", aggregate.Query{From: from, To: to}, "after:2026/08/18 before:2026/08/25"},
		{"open-ended", aggregate.Query{Text: "invoice", From: from}, "invoice after:2026/08/18"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildGmailQuery(tt.q))
		})
	}
}

func TestMailBackend_Search(t *testing.T) {
	caller := &recordingCaller{result: json.RawMessage(`{"emails":[]}`)}
	backend := NewMailBackend("", caller)

	assert.Equal(t, "mail", backend.ID())

	payload, err := backend.Search(context.Background(), aggregate.Query{
		Text:  "invoice",
		From:  time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC),
		Limit: 25,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"emails":[]}`, string(payload))

	assert.Equal(t, "query_gmail_emails", caller.name)
	assert.Equal(t, "invoice after:2026/08/18", caller.args["query"])
	assert.Equal(t, 25, caller.args["max_results"])
}

func TestMailBackend_NoLimitOmitsMaxResults(t *testing.T) {
	caller := &recordingCaller{result: json.RawMessage(`{}`)}
	backend := NewMailBackend("gmail", caller)

	_, err := backend.Search(context.Background(), aggregate.Query{Text: "x"})
	require.NoError(t, err)

	assert.Equal(t, "gmail", backend.ID())
	assert.NotContains(t, caller.args, "max_results")
}

func TestStoreBackend_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"source":"telegram","text":"invoice attached"}],"total":1}`))
	}))
	defer srv.Close()

	store, err := msgstore.NewClient(msgstore.Config{
		Name:      "telegram",
		BaseURL:   srv.URL,
		Transport: transport.NewClient(),
	})
	require.NoError(t, err)

	backend := NewStoreBackend(store)
	assert.Equal(t, "telegram", backend.ID())

	payload, err := backend.Search(context.Background(), aggregate.Query{Text: "invoice"})
	require.NoError(t, err)

	var result msgstore.SearchResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, "invoice attached", result.Messages[0].Text)
}
