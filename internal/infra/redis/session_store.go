package redis

import (
	"context"
	"sync"
	"time"

	"blindpick-service/internal/game"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - It still keeps a local in-memory map of sessions to reuse the existing
//     in-process broadcast logic; a show is driven by a single moderator
//     process, so the live state never needs to leave it.
//   - Redis marks show liveness so an operator can see which shows are
//     running (and it could be extended to share snapshots across hosts).
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(showID), "1", s.ttl).Err()
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
		_ = s.client.Del(context.Background(), s.key(showID)).Err()
	}
}

func (s *SessionStore) key(showID string) string {
	return "blindpick:show:" + showID
}
