// ABOUTME: Framing-aware response decoding for JSON and SSE bodies.
// ABOUTME: Normalizes either framing into a single logical JSON document.

package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

// ContentTypeJSON and ContentTypeEventStream are the two wire framings the
// decoder understands.
const (
	ContentTypeJSON        = "application/json"
	ContentTypeEventStream = "text/event-stream"
)

// DecodeError indicates a response body that could not be parsed under its
// declared framing. Decode failures are fatal for the call that produced
// them and are never retried.
type DecodeError struct {
	ContentType string
	Reason      string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %s", e.ContentType, e.Reason)
}

// framing extracts the logical JSON document from a raw response body.
type framing interface {
	decode(body []byte) (json.RawMessage, error)
}

// Decode normalizes a response body into its logical JSON document based on
// the Content-Type header. An event-stream body is treated as delivering one
// terminal event carrying the final document; a plain body is parsed whole.
func Decode(contentType string, body []byte) (json.RawMessage, error) {
	return framingFor(contentType).decode(body)
}

// framingFor selects the decoder variant from the content-type tag. Anything
// that is not an event stream is treated as a single JSON document.
func framingFor(contentType string) framing {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && mediaType == ContentTypeEventStream {
		return eventStreamFraming{contentType: mediaType}
	}
	return jsonFraming{contentType: contentType}
}

type jsonFraming struct {
	contentType string
}

func (f jsonFraming) decode(body []byte) (json.RawMessage, error) {
	doc := bytes.TrimSpace(body)
	if len(doc) == 0 || !json.Valid(doc) {
		return nil, &DecodeError{ContentType: ContentTypeJSON, Reason: "body is not a JSON document"}
	}
	return json.RawMessage(doc), nil
}

type eventStreamFraming struct {
	contentType string
}

// decode scans the stream's lines from the last backward and returns the
// payload of the first well-formed data line it finds. Earlier events, if
// any, are ignored.
func (f eventStreamFraming) decode(body []byte) (json.RawMessage, error) {
	lines := strings.Split(string(body), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimRight(lines[i], "\r")
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || !json.Valid([]byte(payload)) {
			continue
		}
		return json.RawMessage(payload), nil
	}
	return nil, &DecodeError{ContentType: ContentTypeEventStream, Reason: "no well-formed data line in event stream"}
}
