package memory

import (
	"sync"

	"blindpick-service/internal/game"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*game.Session),
	}
}

func (s *SessionStore) GetOrCreate(showID string) *game.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[showID]; ok {
		return session
	}
	session := game.NewSession(showID)
	s.sessions[showID] = session
	return session
}

func (s *SessionStore) Get(showID string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[showID]
	return session, ok
}

func (s *SessionStore) DeleteIfIdle(showID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[showID]
	if !ok {
		return
	}
	if session.IsIdle() {
		delete(s.sessions, showID)
	}
}
