package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housetab-backend/engine"
)

func newTestManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[uuid.UUID]*sessionEntry),
		ttl:      time.Hour,
	}
}

func TestSessionManagerOwnership(t *testing.T) {
	m := newTestManager()
	household := uuid.New()
	owner := uuid.New()
	stranger := uuid.New()

	session := m.Create(household, owner, []string{owner.String()})
	sessionID, err := uuid.Parse(session.ID)
	require.NoError(t, err)

	err = m.With(sessionID, owner, func(s *engine.Session) error {
		assert.Equal(t, engine.StateScanning, s.State())
		return nil
	})
	assert.NoError(t, err)

	err = m.With(sessionID, stranger, func(s *engine.Session) error {
		t.Fatal("stranger should not reach the session")
		return nil
	})
	assert.Error(t, err)
}

func TestSessionManagerDelete(t *testing.T) {
	m := newTestManager()
	owner := uuid.New()

	session := m.Create(uuid.New(), owner, []string{owner.String()})
	sessionID, err := uuid.Parse(session.ID)
	require.NoError(t, err)

	m.Delete(sessionID)

	err = m.With(sessionID, owner, func(s *engine.Session) error { return nil })
	assert.Error(t, err)
}

func TestSessionManagerUnknownSession(t *testing.T) {
	m := newTestManager()

	err := m.With(uuid.New(), uuid.New(), func(s *engine.Session) error { return nil })
	assert.Error(t, err)
}
