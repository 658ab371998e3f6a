package memory

import (
	"context"
	"sync"

	"verbiverse-quiz/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository keyed by wallet address.
type SessionStore struct {
	progress app.ProgressStore

	mu       sync.RWMutex
	sessions map[string]*app.Progress
}

func NewSessionStore(progress app.ProgressStore) *SessionStore {
	return &SessionStore{
		progress: progress,
		sessions: make(map[string]*app.Progress),
	}
}

func (s *SessionStore) GetOrCreate(address string) *app.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[address]; ok {
		return session
	}
	session := app.NewProgress(address, s.progress)
	s.sessions[address] = session
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
	}
}

func (s *SessionStore) IsActive(_ context.Context, address string) (bool, error) {
	_, ok := s.Get(address)
	return ok, nil
}
