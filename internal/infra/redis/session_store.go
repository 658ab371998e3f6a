package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"verbiverse-quiz/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Progress objects live in a local map so subscribers keep working in-process; the
// quiz:session:<address> key marks the address as active for every instance sharing Redis.
type SessionStore struct {
	client   *redis.Client
	progress app.ProgressStore
	ttl      time.Duration

	mu       sync.RWMutex
	sessions map[string]*app.Progress
}

func NewSessionStore(client *redis.Client, progress app.ProgressStore, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		progress: progress,
		ttl:      ttl,
		sessions: make(map[string]*app.Progress),
	}
}

func (s *SessionStore) GetOrCreate(address string) *app.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[address]
	if !ok {
		session = app.NewProgress(address, s.progress)
		s.sessions[address] = session
	}
	// best-effort liveness marker, refreshed on every use
	if err := s.client.Set(context.Background(), s.key(address), "1", s.ttl).Err(); err != nil {
		log.Printf("mark session %s active: %v", address, err)
	}
	return session
}

func (s *SessionStore) Get(address string) (*app.Progress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[address]
	return session, ok
}

func (s *SessionStore) DeleteIfIdle(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[address]
	if !ok {
		return
	}
	if session.IsIdle() {
		delete(s.sessions, address)
		_ = s.client.Del(context.Background(), s.key(address)).Err()
	}
}

// IsActive reads the liveness key, so it also sees addresses held by other instances.
func (s *SessionStore) IsActive(ctx context.Context, address string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(address)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SessionStore) key(address string) string {
	return "quiz:session:" + address
}
