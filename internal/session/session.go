// Package session holds runtime state for the active knob viewer.
package session

import "sync"

// Options configures a new session.
type Options struct {
	// Password is compared on login when PasswordMode is on.
	Password string
	// PasswordMode off treats every request as authenticated.
	PasswordMode bool
	// InputEnabled is the initial state of the input kill switch.
	InputEnabled bool
}

// Snapshot represents a read-only view of the current session state.
type Snapshot struct {
	Authenticated bool `json:"authenticated"`
	PasswordMode  bool `json:"passwordMode"`
	InputEnabled  bool `json:"inputEnabled"`
	Connected     bool `json:"connected"`
}

// Session holds runtime state for the active viewer.
type Session struct {
	mu            sync.RWMutex
	password      string
	passwordMode  bool
	authenticated bool
	inputEnabled  bool
	connected     bool
}

// New returns an initialized session.
func New(opts Options) *Session {
	return &Session{
		password:     opts.Password,
		passwordMode: opts.PasswordMode,
		inputEnabled: opts.InputEnabled,
	}
}

// Authenticate validates the password and marks the session as authenticated.
func (s *Session) Authenticate(pass string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.passwordMode {
		s.authenticated = true
		return true
	}
	if pass != "" && pass == s.password {
		s.authenticated = true
		return true
	}
	s.authenticated = false
	return false
}

// Logout clears authentication state.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}

// IsAuthenticated reports whether the session is authenticated.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated || !s.passwordMode
}

// SetInputEnabled toggles whether pointer and value input reach the knobs.
func (s *Session) SetInputEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputEnabled = enabled
}

// InputEnabled reports whether pointer and value input reach the knobs.
func (s *Session) InputEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputEnabled
}

// Claim marks the control channel as taken. It returns false when another connection
// already holds it.
func (s *Session) Claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected {
		return false
	}
	s.connected = true
	return true
}

// Release frees the control channel.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Authenticated: s.authenticated || !s.passwordMode,
		PasswordMode:  s.passwordMode,
		InputEnabled:  s.inputEnabled,
		Connected:     s.connected,
	}
}
