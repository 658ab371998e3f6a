// Package sqlite persists quiz progress in a local SQLite key-value table laid out like
// browser localStorage: one JSON value per "stats:<address>" and "history:<address>" key.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver.

	"verbiverse-quiz/internal/domain"
)

// ProgressStore is an app.ProgressStore over a single kv table.
type ProgressStore struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*ProgressStore, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection serializes read-modify-write of history values
	db.SetMaxOpenConns(1)
	store := &ProgressStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *ProgressStore) Close() error {
	return s.db.Close()
}

func (s *ProgressStore) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProgressStore) LoadStats(ctx context.Context, address string) (domain.UserStats, error) {
	stats := domain.NewUserStats()
	found, err := s.get(ctx, s.db, statsKey(address), &stats)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("load stats: %w", err)
	}
	if !found || stats.LanguagePairStats == nil {
		stats.LanguagePairStats = make(map[string]domain.PairStats)
	}
	return stats, nil
}

func (s *ProgressStore) SaveStats(ctx context.Context, address string, stats domain.UserStats) error {
	if err := s.put(ctx, s.db, statsKey(address), stats); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

func (s *ProgressStore) AppendHistory(ctx context.Context, address string, session domain.QuizSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var history []domain.QuizSession
	if _, err := s.get(ctx, tx, historyKey(address), &history); err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	history = append([]domain.QuizSession{session}, history...)
	if len(history) > domain.HistoryLimit {
		history = history[:domain.HistoryLimit]
	}
	if err := s.put(ctx, tx, historyKey(address), history); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return tx.Commit()
}

func (s *ProgressStore) History(ctx context.Context, address string) ([]domain.QuizSession, error) {
	history := make([]domain.QuizSession, 0)
	if _, err := s.get(ctx, s.db, historyKey(address), &history); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(history) > domain.HistoryLimit {
		history = history[:domain.HistoryLimit]
	}
	return history, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *ProgressStore) get(ctx context.Context, q querier, key string, dst any) (bool, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ProgressStore) put(ctx context.Context, q querier, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw))
	return err
}

func statsKey(address string) string {
	return "stats:" + address
}

func historyKey(address string) string {
	return "history:" + address
}
