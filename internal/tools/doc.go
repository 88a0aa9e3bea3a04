// Package tools implements the caller-facing assistant operations: message
// search across backends, mail, calendar, and file operations against the
// remote tool endpoint, and locally composed digests and reports.
//
// Every operation takes a flat argument mapping and returns a uniform
// response envelope; propagated errors become error envelopes, never Go
// errors to the host.
package tools
