// ABOUTME: JSON-RPC 2.0 envelope types and MCP wire constants for the client.
// ABOUTME: Defines session headers, handshake params, and the error taxonomy.

package mcp

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the MCP protocol revision this client speaks.
const ProtocolVersion = "2025-03-26"

// Session and protocol headers per the Streamable HTTP transport spec.
const (
	HeaderSessionID       = "Mcp-Session-Id"
	HeaderProtocolVersion = "Mcp-Protocol-Version"
)

// rpcRequest is a JSON-RPC 2.0 request. A request without an ID is a
// notification and receives no response body.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response. Exactly one of Result and Error is
// meaningful per the protocol contract; the caller decides which to honor.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a JSON-RPC 2.0 error object.
type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// initializeParams are the params of the initialize handshake request.
type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      clientInfo     `json:"clientInfo"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// callToolParams are the params of a tools/call request.
type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// toolContent is one content block in an MCP tool result.
type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// toolCallResult is the result member of a tools/call response.
type toolCallResult struct {
	Content []toolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// SessionLossError indicates the endpoint no longer recognizes the session.
// The two observed signals are HTTP 404 (session unknown) and HTTP 400
// (session required / malformed). The invoker absorbs the first occurrence
// per call by re-handshaking; a second occurrence propagates.
type SessionLossError struct {
	StatusCode int
}

func (e *SessionLossError) Error() string {
	return fmt.Sprintf("session no longer recognized (status %d)", e.StatusCode)
}

// ApplicationError is a business-logic failure reported by the remote tool.
// It is surfaced verbatim and never retried.
type ApplicationError struct {
	Code    int
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("remote tool error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("remote tool error: %s", e.Message)
}

// StatusError is a non-2xx HTTP response outside the session-loss class.
// Terminal for the call; the transport has already applied its own
// network-level retries beneath this.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from tool endpoint: %s", e.StatusCode, e.Body)
}
