// Package mcp implements a client for a Model Context Protocol tool-execution
// endpoint over the Streamable HTTP transport.
//
// # Protocol
//
// Requests are JSON-RPC 2.0 envelopes POSTed to a fixed path. A successful
// initialize handshake may carry a session identifier in the Mcp-Session-Id
// response header, which is echoed on all subsequent requests. The endpoint
// signals a lost or expired session with HTTP 404 or 400; the client then
// re-handshakes transparently and retries the call exactly once.
//
// # Components
//
//   - SessionManager: single-flight handshake state machine
//   - Client: named tool invocation with session-loss recovery
package mcp
