// Package transport performs single HTTP exchanges against remote backends
// with bounded per-attempt timeouts and network-level retry, and decodes
// response bodies that may arrive as a single JSON document or as a
// server-sent-event stream.
package transport
