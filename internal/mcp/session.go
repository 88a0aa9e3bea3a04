// ABOUTME: Single-flight session state machine for the MCP handshake.
// ABOUTME: Concurrent callers share one in-flight handshake attempt.

package mcp

import (
	"context"
	"log/slog"
	"sync"
)

// SessionState is the lifecycle state of the negotiated session.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateInitializing
	StateReady
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// handshakeFunc performs the initialization exchange and returns the session
// token, which may be empty when the endpoint does not issue one.
type handshakeFunc func(ctx context.Context) (string, error)

// handshakeAttempt is the promise handed to callers that arrive while a
// handshake is in flight. The done channel closes once token and err are set.
type handshakeAttempt struct {
	done  chan struct{}
	token string
	err   error
}

func (a *handshakeAttempt) wait(ctx context.Context) (string, error) {
	select {
	case <-a.done:
		return a.token, a.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// SessionManager owns the session token and its state machine. The token is
// never read or written outside EnsureReady and Invalidate.
type SessionManager struct {
	mu        sync.Mutex
	state     SessionState
	token     string
	inflight  *handshakeAttempt
	handshake handshakeFunc
	logger    *slog.Logger
}

// NewSessionManager creates a manager that uses handshake to initialize the
// session on demand.
func NewSessionManager(handshake handshakeFunc, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		state:     StateUninitialized,
		handshake: handshake,
		logger:    logger,
	}
}

// EnsureReady returns the current session token, performing the handshake
// first if needed. Concurrent callers during initialization share a single
// underlying handshake and all observe its outcome. On failure the state
// returns to uninitialized so a later call can retry.
func (m *SessionManager) EnsureReady(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.state == StateReady {
		token := m.token
		m.mu.Unlock()
		return token, nil
	}
	if m.inflight != nil {
		attempt := m.inflight
		m.mu.Unlock()
		return attempt.wait(ctx)
	}

	attempt := &handshakeAttempt{done: make(chan struct{})}
	m.inflight = attempt
	m.state = StateInitializing
	m.mu.Unlock()

	m.logger.Debug("starting session handshake")
	token, err := m.handshake(ctx)

	m.mu.Lock()
	attempt.token = token
	attempt.err = err
	// Invalidate may have detached this attempt; then its outcome reaches
	// only the callers already waiting on it.
	if m.inflight == attempt {
		m.inflight = nil
		if err != nil {
			m.state = StateUninitialized
			m.token = ""
		} else {
			m.state = StateReady
			m.token = token
		}
	}
	m.mu.Unlock()
	close(attempt.done)

	if err != nil {
		m.logger.Warn("session handshake failed", "error", err)
		return "", err
	}
	m.logger.Info("session established", "has_token", token != "")
	return token, nil
}

// Invalidate forces the state machine back to uninitialized. A handshake
// already in flight is not cancelled; the next EnsureReady call after
// invalidation starts a fresh one.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateUninitialized
	m.token = ""
	m.inflight = nil
}

// State reports the current lifecycle state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
