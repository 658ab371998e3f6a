package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"verbiverse-quiz/internal/domain"
)

// ProgressStore keeps stats in user_stats and completed sessions in quiz_history.
type ProgressStore struct {
	pool *pgxpool.Pool
}

func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

func (s *ProgressStore) LoadStats(ctx context.Context, address string) (domain.UserStats, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM user_stats WHERE address=$1`, address).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewUserStats(), nil
	}
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("load stats: %w", err)
	}
	stats := domain.NewUserStats()
	if err := json.Unmarshal(raw, &stats); err != nil {
		return domain.UserStats{}, fmt.Errorf("unmarshal stats: %w", err)
	}
	if stats.LanguagePairStats == nil {
		stats.LanguagePairStats = make(map[string]domain.PairStats)
	}
	return stats, nil
}

func (s *ProgressStore) SaveStats(ctx context.Context, address string, stats domain.UserStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_stats (address, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (address) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		address, raw)
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

// AppendHistory inserts the session and drops everything beyond the newest HistoryLimit rows
// in the same transaction.
func (s *ProgressStore) AppendHistory(ctx context.Context, address string, session domain.QuizSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO quiz_history (address, session_id, data) VALUES ($1, $2, $3)`,
			address, session.ID, raw); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM quiz_history
			WHERE address=$1 AND id NOT IN (
				SELECT id FROM quiz_history WHERE address=$1 ORDER BY id DESC LIMIT $2
			)`, address, domain.HistoryLimit); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
		return nil
	})
}

func (s *ProgressStore) History(ctx context.Context, address string) ([]domain.QuizSession, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM quiz_history WHERE address=$1 ORDER BY id DESC LIMIT $2`,
		address, domain.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	history := make([]domain.QuizSession, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		var session domain.QuizSession
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, fmt.Errorf("unmarshal session: %w", err)
		}
		history = append(history, session)
	}
	return history, rows.Err()
}
