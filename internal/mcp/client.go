// ABOUTME: MCP tool invoker composing transport, decoding, and session state.
// ABOUTME: Calls remote tools by name with a one-time session-recovery retry.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/golatam/sirenko-openclaw/internal/transport"
)

// Config holds configuration for the MCP client.
type Config struct {
	// EndpointURL is the full URL of the tool-execution endpoint.
	EndpointURL string
	// Transport is the retrying HTTP client. A default is created if nil.
	Transport *transport.Client
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// ClientName and ClientVersion identify this client in the handshake.
	ClientName    string
	ClientVersion string
	// ProtocolVersion overrides the protocol revision advertised to the
	// endpoint. Defaults to ProtocolVersion.
	ProtocolVersion string
}

// Client invokes named tools on a remote MCP endpoint. It hides session
// negotiation, wire framing, and session-loss recovery from callers.
type Client struct {
	endpoint      string
	transport     *transport.Client
	logger        *slog.Logger
	clientName    string
	clientVersion string
	protocol      string
	sessions      *SessionManager
}

// NewClient creates an MCP client for the given endpoint.
func NewClient(cfg Config) (*Client, error) {
	if cfg.EndpointURL == "" {
		return nil, errors.New("endpoint URL is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tr := cfg.Transport
	if tr == nil {
		tr = transport.NewClient(transport.WithLogger(logger))
	}
	name := cfg.ClientName
	if name == "" {
		name = "openclaw-assistant"
	}
	version := cfg.ClientVersion
	if version == "" {
		version = "dev"
	}
	protocol := cfg.ProtocolVersion
	if protocol == "" {
		protocol = ProtocolVersion
	}

	c := &Client{
		endpoint:      cfg.EndpointURL,
		transport:     tr,
		logger:        logger,
		clientName:    name,
		clientVersion: version,
		protocol:      protocol,
	}
	c.sessions = NewSessionManager(c.handshake, logger)
	return c, nil
}

// CallTool performs one named remote tool call and returns its logical result
// as a JSON document. A session-loss response triggers exactly one
// re-handshake and one retried call; a second loss propagates. Application
// errors are never retried.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	if name == "" {
		return nil, errors.New("tool name is required")
	}

	result, err := c.callOnce(ctx, name, args)
	var loss *SessionLossError
	if errors.As(err, &loss) {
		c.logger.Info("session lost, re-handshaking",
			"tool", name,
			"status", loss.StatusCode,
		)
		c.sessions.Invalidate()
		return c.callOnce(ctx, name, args)
	}
	return result, err
}

// callOnce performs a single attempt: ensure the session, post the call,
// decode the response, and honor the result/error split.
func (c *Client) callOnce(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	token, err := c.sessions.EnsureReady(ctx)
	if err != nil {
		return nil, fmt.Errorf("establishing session: %w", err)
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  "tools/call",
		Params:  callToolParams{Name: name, Arguments: args},
	}

	resp, err := c.post(ctx, req, token)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return nil, &SessionLossError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: bodySnippet(resp.Body)}
	}

	doc, err := transport.Decode(resp.Header.Get("Content-Type"), resp.Body)
	if err != nil {
		return nil, err
	}

	var env rpcResponse
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, &transport.DecodeError{
			ContentType: resp.Header.Get("Content-Type"),
			Reason:      "document is not a JSON-RPC envelope",
		}
	}
	if env.Error != nil {
		return nil, &ApplicationError{Code: env.Error.Code, Message: env.Error.Message}
	}

	return unwrapToolResult(env.Result)
}

// post marshals and sends one JSON-RPC message with the session headers set.
func (c *Client) post(ctx context.Context, req rpcRequest, token string) (*transport.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", transport.ContentTypeJSON)
	header.Set("Accept", transport.ContentTypeJSON+", "+transport.ContentTypeEventStream)
	header.Set(HeaderProtocolVersion, c.protocol)
	if token != "" {
		header.Set(HeaderSessionID, token)
	}

	return c.transport.Post(ctx, transport.Request{
		URL:    c.endpoint,
		Body:   body,
		Header: header,
	})
}

// handshake performs the initialize exchange and captures the session token
// from the response metadata. An absent token is not an error.
func (c *Client) handshake(ctx context.Context) (string, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  "initialize",
		Params: initializeParams{
			ProtocolVersion: c.protocol,
			Capabilities:    map[string]any{},
			ClientInfo:      clientInfo{Name: c.clientName, Version: c.clientVersion},
		},
	}

	resp, err := c.post(ctx, req, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: bodySnippet(resp.Body)}
	}

	doc, err := transport.Decode(resp.Header.Get("Content-Type"), resp.Body)
	if err != nil {
		return "", err
	}
	var env rpcResponse
	if err := json.Unmarshal(doc, &env); err != nil {
		return "", &transport.DecodeError{
			ContentType: resp.Header.Get("Content-Type"),
			Reason:      "handshake document is not a JSON-RPC envelope",
		}
	}
	if env.Error != nil {
		return "", &ApplicationError{Code: env.Error.Code, Message: env.Error.Message}
	}

	token := resp.Header.Get(HeaderSessionID)

	// Best effort: the endpoint expects the initialized notification before
	// tool calls, but a failure here must not fail the handshake.
	notif := rpcRequest{JSONRPC: "2.0", Method: "notifications/initialized"}
	if _, err := c.post(ctx, notif, token); err != nil {
		c.logger.Debug("initialized notification failed", "error", err)
	}

	return token, nil
}

// unwrapToolResult extracts the logical payload from a tools/call result.
// MCP wraps tool output as content blocks whose text is itself a JSON
// document; a result marked isError carries the failure message the same way.
func unwrapToolResult(result json.RawMessage) (json.RawMessage, error) {
	if len(result) == 0 {
		return json.RawMessage("null"), nil
	}

	var wrapped toolCallResult
	if err := json.Unmarshal(result, &wrapped); err != nil || len(wrapped.Content) == 0 {
		// Not content-wrapped; return the result document as-is.
		return result, nil
	}

	var parts []string
	for _, block := range wrapped.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.Join(parts, "\n")

	if wrapped.IsError {
		return nil, &ApplicationError{Message: text}
	}

	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) && trimmed != "" {
		return json.RawMessage(trimmed), nil
	}
	// Plain text payload: surface it as a JSON string.
	quoted, err := json.Marshal(text)
	if err != nil {
		return nil, fmt.Errorf("encoding tool output: %w", err)
	}
	return quoted, nil
}

// bodySnippet truncates a response body for error messages.
func bodySnippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
