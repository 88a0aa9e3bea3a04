// ABOUTME: Tests for the message-store search client.
// ABOUTME: Covers request shape, time-range encoding, and error statuses.

package msgstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golatam/sirenko-openclaw/internal/transport"
)

func TestSearch_SendsQueryAndDecodesResult(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"source":"telegram","account_label":"tg1","sender_name":"Ann","text":"invoice attached","ts":"2026-08-20T10:00:00Z"}],"total":1}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{Name: "telegram", BaseURL: srv.URL})
	require.NoError(t, err)

	from := time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	result, err := client.Search(context.Background(), Query{
		Query: "invoice",
		From:  from,
		To:    to,
		Limit: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "invoice", got["query"])
	assert.Equal(t, "2026-08-18T00:00:00Z", got["from"])
	assert.Equal(t, "2026-08-25T00:00:00Z", got["to"])
	assert.Equal(t, float64(10), got["limit"])
	assert.NotContains(t, got, "source", "empty source is omitted")

	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, "Ann", result.Messages[0].SenderName)
	assert.Equal(t, "invoice attached", result.Messages[0].Text)
}

func TestSearch_OmitsUnsetTimeRange(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"messages":[],"total":0}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{Name: "telegram", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), Query{Query: "hello"})
	require.NoError(t, err)
	assert.NotContains(t, got, "from")
	assert.NotContains(t, got, "to")
	assert.NotContains(t, got, "limit")
}

func TestSearch_ErrorStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index rebuilding", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		Name:      "telegram",
		BaseURL:   srv.URL,
		Transport: transport.NewClient(transport.WithBackoffBase(time.Millisecond)),
	})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), Query{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "index rebuilding")
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://x"})
	require.Error(t, err)
	_, err = NewClient(Config{Name: "x"})
	require.Error(t, err)
}
