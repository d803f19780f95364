package client

import (
	"sync"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// ConnState represents the transport connection status
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// AuthStep is the current position in the account-linking handshake.
// Forward progress is driven exclusively by inbound frames; the only way
// back is an explicit reset (logout, disconnect, noSession).
type AuthStep int

const (
	StepCredentials AuthStep = iota
	StepPhone
	StepCode
	StepTwoFactor
	StepAuthorized
	StepUnavailable
)

func (s AuthStep) String() string {
	switch s {
	case StepCredentials:
		return "credentials"
	case StepPhone:
		return "phone"
	case StepCode:
		return "code"
	case StepTwoFactor:
		return "twoFactor"
	case StepAuthorized:
		return "authorized"
	case StepUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Session holds the connection and linking state for the process lifetime.
// It is mutated only from dispatcher-routed events, so reads from the UI
// always see a consistent snapshot.
type Session struct {
	mu        sync.RWMutex
	connState ConnState
	authStep  AuthStep
	user      *protocol.User
	resuming  bool
	connErr   string
	authErr   string
}

func NewSession() *Session {
	return &Session{
		connState: StateDisconnected,
		authStep:  StepCredentials,
	}
}

func (s *Session) ConnState() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connState
}

func (s *Session) setConnState(state ConnState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connState = state
	if state == StateConnected {
		s.connErr = ""
	}
}

func (s *Session) AuthStep() AuthStep {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authStep
}

func (s *Session) setAuthStep(step AuthStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authStep = step
}

// User returns the linked account, nil before authorization.
func (s *Session) User() *protocol.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) setUser(u *protocol.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// Resuming reports whether a silent credential resume is outstanding.
// Error surfacing is suppressed while it is.
func (s *Session) Resuming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resuming
}

func (s *Session) setResuming(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resuming = v
}

// ConnError is the last transport-level error, one value per concern.
func (s *Session) ConnError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connErr
}

func (s *Session) setConnError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connErr = msg
}

// AuthError is the last linking-step error reported by the gateway.
func (s *Session) AuthError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authErr
}

func (s *Session) setAuthError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authErr = msg
}

// ClearErrors drops both last-error values (user dismissed them).
func (s *Session) ClearErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connErr = ""
	s.authErr = ""
}
