// Package session tracks short-lived client sessions for the HTTP surface.
// Sessions expire lazily: an expired session is removed the moment a lookup
// touches it, and CleanupExpired sweeps the rest.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a session stays valid without being recreated.
const DefaultTTL = 24 * time.Hour

// Session is one tracked client session.
type Session struct {
	ID        string         `json:"session_id"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Manager owns the session table. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides the default session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an empty session table.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// ExpiresAt returns the instant the session stops being valid.
func (m *Manager) ExpiresAt(s *Session) time.Time {
	return s.CreatedAt.Add(m.ttl)
}

// Create registers a new session and returns it. IDs are UUIDs with the
// dashes stripped.
func (m *Manager) Create(metadata map[string]any) *Session {
	s := &Session{
		ID:        strings.ReplaceAll(uuid.NewString(), "-", ""),
		CreatedAt: m.now(),
		Metadata:  metadata,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given ID, or false when it does not
// exist or has expired. Expired sessions are deleted on lookup.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.expired(s) {
		delete(m.sessions, id)
		return nil, false
	}
	return s, true
}

// Delete removes a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// CleanupExpired removes all expired sessions and returns how many were
// dropped.
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live (non-expired) sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if !m.expired(s) {
			n++
		}
	}
	return n
}

func (m *Manager) expired(s *Session) bool {
	return m.now().Sub(s.CreatedAt) > m.ttl
}
