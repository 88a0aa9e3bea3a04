// ABOUTME: Uniform response envelope for caller-facing operations.
// ABOUTME: Success and error both render as {content, details} documents.

package tools

import (
	"encoding/json"
	"fmt"
)

// Content is one content block in an operation response.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Details carries structured metadata alongside the content blocks. It
// always contains an "ok" flag; error envelopes add "error".
type Details map[string]any

// Response is the uniform envelope every operation returns. An operation
// never fails at the Go level; failures are error envelopes.
type Response struct {
	Content []Content `json:"content"`
	Details Details   `json:"details"`
}

// OK builds a success envelope with the given text payload and extra details.
func OK(text string, extra Details) Response {
	details := Details{"ok": true}
	for k, v := range extra {
		details[k] = v
	}
	return Response{
		Content: []Content{{Type: "text", Text: text}},
		Details: details,
	}
}

// OKJSON builds a success envelope whose text is the JSON encoding of
// payload.
func OKJSON(payload any, extra Details) Response {
	text, err := json.Marshal(payload)
	if err != nil {
		return Fail(fmt.Errorf("encoding response: %w", err))
	}
	return OK(string(text), extra)
}

// Fail converts a propagated error into the uniform error envelope with a
// human-readable message.
func Fail(err error) Response {
	msg := err.Error()
	return Response{
		Content: []Content{{Type: "text", Text: "Error: " + msg}},
		Details: Details{"ok": false, "error": msg},
	}
}
