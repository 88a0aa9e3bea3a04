// Package msgstore implements the search client for a message-store sidecar.
// The store has no session concept: one POST to its search path per query,
// with network retries handled by the shared transport.
package msgstore
