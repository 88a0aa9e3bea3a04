// ABOUTME: Tests for framing-aware response decoding.
// ABOUTME: Covers JSON documents, SSE streams, and decode failure cases.

package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_JSONDocument(t *testing.T) {
	doc, err := Decode("application/json", []byte(`  {"result":{"ok":true}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{"ok":true}}`, string(doc))
}

func TestDecode_JSONWithCharsetParameter(t *testing.T) {
	doc, err := Decode("application/json; charset=utf-8", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(doc))
}

func TestDecode_InvalidJSONFails(t *testing.T) {
	_, err := Decode("application/json", []byte(`{"broken`))
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
}

func TestDecode_EmptyBodyFails(t *testing.T) {
	_, err := Decode("application/json", nil)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
}

func TestDecode_EventStreamSingleEvent(t *testing.T) {
	body := "event: message\ndata: {\"result\":{\"ok\":true}}\n\n"
	doc, err := Decode("text/event-stream", []byte(body))
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{"ok":true}}`, string(doc))
}

func TestDecode_EventStreamTakesLastDataLine(t *testing.T) {
	body := "data: {\"seq\":1}\n\ndata: {\"seq\":2}\n\nevent: message\ndata: {\"seq\":3}\n\n"
	doc, err := Decode("text/event-stream; charset=utf-8", []byte(body))
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq":3}`, string(doc))
}

func TestDecode_EventStreamSkipsMalformedTrailingData(t *testing.T) {
	body := "data: {\"seq\":1}\n\ndata: not json\n\n"
	doc, err := Decode("text/event-stream", []byte(body))
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq":1}`, string(doc))
}

func TestDecode_EventStreamWithoutDataFails(t *testing.T) {
	body := "event: ping\n\n: keepalive\n\n"
	_, err := Decode("text/event-stream", []byte(body))
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
}

func TestDecode_CRLFEventStream(t *testing.T) {
	body := "event: message\r\ndata: {\"done\":true}\r\n\r\n"
	doc, err := Decode("text/event-stream", []byte(body))
	require.NoError(t, err)
	assert.JSONEq(t, `{"done":true}`, string(doc))
}

func TestDecode_UnknownContentTypeFallsBackToJSON(t *testing.T) {
	doc, err := Decode("", []byte(`{"messages":[],"total":0}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages":[],"total":0}`, string(doc))
}
