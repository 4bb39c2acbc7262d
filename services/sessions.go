package services

import (
	"fmt"
	"sync"
	"time"

	"housetab-backend/engine"

	"github.com/google/uuid"
)

// SessionManager holds the in-flight expense-entry sessions. Sessions are
// ephemeral: nothing is persisted until a post succeeds, so an abandoned
// session just ages out of the map. Access to each session is serialized here
// since engine.Session itself is single-actor.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
	ttl      time.Duration
}

type sessionEntry struct {
	mu      sync.Mutex
	session *engine.Session
	ownerID uuid.UUID
	touched time.Time
}

var sessionManager *SessionManager

// GetSessionManager returns the process-wide manager, starting its sweeper on
// first use.
func GetSessionManager(ttl time.Duration) *SessionManager {
	if sessionManager == nil {
		sessionManager = &SessionManager{
			sessions: make(map[uuid.UUID]*sessionEntry),
			ttl:      ttl,
		}
		go sessionManager.sweep()
	}
	return sessionManager
}

// Create starts a new session for the given payer and household roster.
func (m *SessionManager) Create(householdID, payerID uuid.UUID, roster []string) *engine.Session {
	id := uuid.New()
	session := engine.NewSession(id.String(), householdID.String(), payerID.String(), roster)

	m.mu.Lock()
	m.sessions[id] = &sessionEntry{
		session: session,
		ownerID: payerID,
		touched: time.Now(),
	}
	m.mu.Unlock()

	return session
}

// With runs fn with exclusive access to the session. Only the session's owner
// may touch it.
func (m *SessionManager) With(sessionID, ownerID uuid.UUID, fn func(*engine.Session) error) error {
	m.mu.Lock()
	entry, ok := m.sessions[sessionID]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session not found")
	}
	if entry.ownerID != ownerID {
		return fmt.Errorf("session belongs to another user")
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.touched = time.Now()
	return fn(entry.session)
}

// Delete discards a session. No compensating action is needed.
func (m *SessionManager) Delete(sessionID uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

func (m *SessionManager) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-m.ttl)
		m.mu.Lock()
		for id, entry := range m.sessions {
			if entry.touched.Before(cutoff) {
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()
	}
}
