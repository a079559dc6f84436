package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/promptml/promptml"
)

// Session is one live preview: the snippet being viewed and the variable
// values bound to it so far
type Session struct {
	ID         string
	Snippet    string
	Vars       promptml.Context
	CreatedAt  time.Time
	LastAccess time.Time
}

// Manager handles preview session lifecycle
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration
}

// NewManager creates a session manager expiring idle sessions after ttl
func NewManager(ttl time.Duration) *Manager {
	if ttl == 0 {
		ttl = time.Hour
	}

	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create starts a session previewing snippet with the given initial
// variable values
func (m *Manager) Create(snippet string, vars promptml.Context) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	if vars == nil {
		vars = promptml.Context{}
	}
	now := time.Now()
	session := &Session{
		ID:         id,
		Snippet:    snippet,
		Vars:       vars,
		CreatedAt:  now,
		LastAccess: now,
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	return session, nil
}

// Get retrieves a session by ID, refreshing its idle timer. Expired
// sessions are removed and reported as missing.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, false
	}

	if time.Since(session.LastAccess) > m.ttl {
		delete(m.sessions, id)
		return nil, false
	}

	session.LastAccess = time.Now()
	return session, true
}

// SetVar binds one variable in a session and returns a copy of the full
// variable set for rendering. Reported as missing when the session has
// expired.
func (m *Manager) SetVar(id, key string, value any) (promptml.Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, false
	}
	if time.Since(session.LastAccess) > m.ttl {
		delete(m.sessions, id)
		return nil, false
	}

	session.LastAccess = time.Now()
	session.Vars[key] = value

	out := make(promptml.Context, len(session.Vars))
	for k, v := range session.Vars {
		out[k] = v
	}
	return out, true
}

// Delete removes a session
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// CleanupExpired removes idle sessions and reports how many were dropped
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	cutoff := time.Now().Add(-m.ttl)

	for id, session := range m.sessions {
		if session.LastAccess.Before(cutoff) {
			delete(m.sessions, id)
			count++
		}
	}

	return count
}

// Count reports the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID creates a cryptographically secure session ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 32) // 256-bit session ID
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
