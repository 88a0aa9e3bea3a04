// Package httpapi exposes the assistant's operations over a small local
// HTTP surface: tool discovery, tool invocation, liveness, and optional
// Prometheus metrics.
package httpapi
