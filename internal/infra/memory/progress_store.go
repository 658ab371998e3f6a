package memory

import (
	"context"
	"sync"

	"verbiverse-quiz/internal/domain"
)

// ProgressStore keeps stats and history in process memory.
type ProgressStore struct {
	mu      sync.RWMutex
	stats   map[string]domain.UserStats
	history map[string][]domain.QuizSession
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		stats:   make(map[string]domain.UserStats),
		history: make(map[string][]domain.QuizSession),
	}
}

func (s *ProgressStore) LoadStats(_ context.Context, address string) (domain.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if stats, ok := s.stats[address]; ok {
		return stats.Clone(), nil
	}
	return domain.NewUserStats(), nil
}

func (s *ProgressStore) SaveStats(_ context.Context, address string, stats domain.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[address] = stats.Clone()
	return nil
}

func (s *ProgressStore) AppendHistory(_ context.Context, address string, session domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append([]domain.QuizSession{*session.Clone()}, s.history[address]...)
	if len(history) > domain.HistoryLimit {
		history = history[:domain.HistoryLimit]
	}
	s.history[address] = history
	return nil
}

func (s *ProgressStore) History(_ context.Context, address string) ([]domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.history[address]
	out := make([]domain.QuizSession, len(history))
	for i := range history {
		out[i] = *history[i].Clone()
	}
	return out, nil
}
