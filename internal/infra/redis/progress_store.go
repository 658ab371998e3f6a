package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"verbiverse-quiz/internal/domain"
)

// ProgressStore keeps stats and history per address.
// Stats are stored as:   SET stats:{address} <json>
// History is stored as:  LPUSH history:{address} <json>, trimmed to the newest 50.
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) LoadStats(ctx context.Context, address string) (domain.UserStats, error) {
	raw, err := s.client.Get(ctx, statsKey(address)).Bytes()
	if err == redis.Nil {
		return domain.NewUserStats(), nil
	}
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("get stats: %w", err)
	}
	stats := domain.NewUserStats()
	if err := json.Unmarshal(raw, &stats); err != nil {
		return domain.UserStats{}, fmt.Errorf("decode stats: %w", err)
	}
	if stats.LanguagePairStats == nil {
		stats.LanguagePairStats = make(map[string]domain.PairStats)
	}
	return stats, nil
}

func (s *ProgressStore) SaveStats(ctx context.Context, address string, stats domain.UserStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return s.client.Set(ctx, statsKey(address), raw, 0).Err()
}

func (s *ProgressStore) AppendHistory(ctx context.Context, address string, session domain.QuizSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	key := historyKey(address)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, domain.HistoryLimit-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *ProgressStore) History(ctx context.Context, address string) ([]domain.QuizSession, error) {
	items, err := s.client.LRange(ctx, historyKey(address), 0, domain.HistoryLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	history := make([]domain.QuizSession, 0, len(items))
	for _, item := range items {
		var session domain.QuizSession
		if err := json.Unmarshal([]byte(item), &session); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		history = append(history, session)
	}
	return history, nil
}

func statsKey(address string) string {
	return "stats:" + address
}

func historyKey(address string) string {
	return "history:" + address
}
