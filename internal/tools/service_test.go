// ABOUTME: Tests for the operation service dispatch and remote-backed operations.
// ABOUTME: Uses in-memory fakes for the tool caller and aggregator.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golatam/sirenko-openclaw/internal/aggregate"
)

type fakeCaller struct {
	calls   []fakeCall
	results map[string]json.RawMessage
	errs    map[string]error
}

type fakeCall struct {
	name string
	args map[string]any
}

func (c *fakeCaller) CallTool(_ context.Context, name string, args map[string]any) (json.RawMessage, error) {
	c.calls = append(c.calls, fakeCall{name: name, args: args})
	if err, ok := c.errs[name]; ok {
		return nil, err
	}
	if result, ok := c.results[name]; ok {
		return result, nil
	}
	return json.RawMessage(`{}`), nil
}

type fakeSearcher struct {
	envelopes []aggregate.Envelope
	result    aggregate.Result
	err       error
}

func (s *fakeSearcher) Search(_ context.Context, env aggregate.Envelope) (aggregate.Result, error) {
	s.envelopes = append(s.envelopes, env)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *fakeSearcher) Channels() []string {
	channels := make([]string, 0, len(s.result))
	for ch := range s.result {
		channels = append(channels, ch)
	}
	return channels
}

func newTestService(t *testing.T, caller *fakeCaller, searcher *fakeSearcher) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Tools:      caller,
		Aggregator: searcher,
		Now:        func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{Aggregator: &fakeSearcher{}})
	assert.ErrorContains(t, err, "tool caller")

	_, err = NewService(Config{Tools: &fakeCaller{}})
	assert.ErrorContains(t, err, "aggregator")
}

func TestInvoke_UnknownOperation(t *testing.T) {
	svc := newTestService(t, &fakeCaller{}, &fakeSearcher{})

	resp := svc.Invoke(context.Background(), "mint_coins", Args{})

	assert.Equal(t, false, resp.Details["ok"])
	assert.Contains(t, resp.Details["error"], "unknown operation")
}

func TestHas(t *testing.T) {
	svc := newTestService(t, &fakeCaller{}, &fakeSearcher{})

	assert.True(t, svc.Has("search_messages"))
	assert.True(t, svc.Has("weekly_report"))
	assert.False(t, svc.Has("search"))
}

func TestSearchMessages_ReturnsAggregateJSON(t *testing.T) {
	searcher := &fakeSearcher{result: aggregate.Result{
		"mail":     {Err: errors.New("endpoint unreachable")},
		"telegram": {Payload: json.RawMessage(`{"messages":[{"text":"invoice attached"}],"total":1}`)},
	}}
	svc := newTestService(t, &fakeCaller{}, searcher)

	resp := svc.Invoke(context.Background(), "search_messages", Args{"query": "invoice"})

	assert.Equal(t, true, resp.Details["ok"])
	assert.Equal(t, 2, resp.Details["channels"])

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(resp.Content[0].Text), &doc))
	assert.JSONEq(t, `{"error":"endpoint unreachable"}`, string(doc["mail"]))
	assert.JSONEq(t, `{"messages":[{"text":"invoice attached"}],"total":1}`, string(doc["telegram"]))
}

func TestSearchMessages_PassesEnvelope(t *testing.T) {
	searcher := &fakeSearcher{result: aggregate.Result{}}
	svc := newTestService(t, &fakeCaller{}, searcher)

	svc.Invoke(context.Background(), "search_messages", Args{
		"query":   "invoice",
		"channel": "telegram",
		"from":    "2026-08-18",
		"limit":   10.0,
	})

	require.Len(t, searcher.envelopes, 1)
	env := searcher.envelopes[0]
	assert.Equal(t, "invoice", env.Query)
	assert.Equal(t, "telegram", env.Channel)
	assert.Equal(t, time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC), env.From)
	assert.Equal(t, 10, env.Limit)
}

func TestSearchMessages_EnvelopeErrorFails(t *testing.T) {
	searcher := &fakeSearcher{err: aggregate.ErrEmptyEnvelope}
	svc := newTestService(t, &fakeCaller{}, searcher)

	resp := svc.Invoke(context.Background(), "search_messages", Args{})

	assert.Equal(t, false, resp.Details["ok"])
}

func TestReadMessage(t *testing.T) {
	caller := &fakeCaller{results: map[string]json.RawMessage{
		"gmail_get_message_details": json.RawMessage(`{"subject":"Q3 invoice"}`),
	}}
	svc := newTestService(t, caller, &fakeSearcher{})

	resp := svc.Invoke(context.Background(), "read_message", Args{"messageId": "msg-1"})

	assert.Equal(t, true, resp.Details["ok"])
	assert.JSONEq(t, `{"subject":"Q3 invoice"}`, resp.Content[0].Text)

	require.Len(t, caller.calls, 1)
	assert.Equal(t, "gmail_get_message_details", caller.calls[0].name)
	assert.Equal(t, "msg-1", caller.calls[0].args["message_id"])
	assert.NotContains(t, caller.calls[0].args, "account")
}

func TestReadMessage_RequiresID(t *testing.T) {
	caller := &fakeCaller{}
	svc := newTestService(t, caller, &fakeSearcher{})

	resp := svc.Invoke(context.Background(), "read_message", Args{})

	assert.Equal(t, false, resp.Details["ok"])
	assert.Contains(t, resp.Details["error"], "message_id is required")
	assert.Empty(t, caller.calls)
}

func TestSendEmail(t *testing.T) {
	caller := &fakeCaller{}
	svc := newTestService(t, caller, &fakeSearcher{})

	resp := svc.Invoke(context.Background(), "send_email", Args{
		"to":      "a@example.com",
		"subject": "hello",
		"body":    "hi there",
		"cc":      "b@example.com",
	})

	assert.Equal(t, true, resp.Details["ok"])
	assert.Equal(t, "a@example.com", resp.Details["to"])

	require.Len(t, caller.calls, 1)
	call := caller.calls[0]
	assert.Equal(t, "gmail_send_email", call.name)
	assert.Equal(t, "b@example.com", call.args["cc"])
	assert.NotContains(t, call.args, "bcc")
}

func TestSendEmail_CollectsAllMissing(t *testing.T) {
	svc := newTestService(t, &fakeCaller{}, &fakeSearcher{})

	resp := svc.Invoke(context.Background(), "send_email", Args{"to": "a@example.com"})

	assert.Contains(t, resp.Details["error"], "subject is required")
	assert.Contains(t, resp.Details["error"], "body is required")
}

func TestCreateCalendarEvent(t *testing.T) {
	caller := &fakeCaller{}
	svc := newTestService(t, caller, &fakeSearcher{})

	resp := svc.Invoke(context.Background(), "create_calendar_event", Args{
		"summary":   "standup",
		"startTime": "2026-08-26T09:00:00Z",
		"endTime":   "2026-08-26T09:15:00Z",
		"attendees": []any{"a@example.com"},
	})

	assert.Equal(t, true, resp.Details["ok"])
	require.Len(t, caller.calls, 1)
	call := caller.calls[0]
	assert.Equal(t, "create_calendar_event", call.name)
	assert.Equal(t, "2026-08-26T09:00:00Z", call.args["start_time"])
	assert.Equal(t, []string{"a@example.com"}, call.args["attendees"])
}

func TestListCalendarEvents_OmitsEmpty(t *testing.T) {
	caller := &fakeCaller{}
	svc := newTestService(t, caller, &fakeSearcher{})

	svc.Invoke(context.Background(), "list_calendar_events", Args{"time_min": "2026-08-18T00:00:00Z"})

	require.Len(t, caller.calls, 1)
	call := caller.calls[0]
	assert.Equal(t, "calendar_get_events", call.name)
	assert.Equal(t, map[string]any{"time_min": "2026-08-18T00:00:00Z"}, call.args)
}

func TestSearchFiles_RemoteFailureBecomesEnvelope(t *testing.T) {
	caller := &fakeCaller{errs: map[string]error{
		"drive_search_files": errors.New("network failure after 3 attempts"),
	}}
	svc := newTestService(t, caller, &fakeSearcher{})

	resp := svc.Invoke(context.Background(), "search_files", Args{"query": "roadmap"})

	assert.Equal(t, false, resp.Details["ok"])
	assert.Contains(t, resp.Content[0].Text, "Error: ")
	assert.Contains(t, resp.Details["error"], "network failure")
}

func TestReadFile(t *testing.T) {
	caller := &fakeCaller{results: map[string]json.RawMessage{
		"drive_read_file_content": json.RawMessage(`{"content":"# Roadmap"}`),
	}}
	svc := newTestService(t, caller, &fakeSearcher{})

	resp := svc.Invoke(context.Background(), "read_file", Args{"file_id": "f-1", "account": "work"})

	assert.Equal(t, true, resp.Details["ok"])
	require.Len(t, caller.calls, 1)
	assert.Equal(t, "work", caller.calls[0].args["account"])
}

func TestDefinitionsCoverAllOperations(t *testing.T) {
	svc := newTestService(t, &fakeCaller{}, &fakeSearcher{})

	defs := Definitions()
	assert.Len(t, defs, 10)
	for _, def := range defs {
		assert.True(t, svc.Has(def.Name), "definition %q has no operation", def.Name)
		assert.True(t, json.Valid(def.InputSchema), "definition %q schema invalid", def.Name)
	}
}
