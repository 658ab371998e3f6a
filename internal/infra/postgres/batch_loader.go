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

// BatchLoader loads batch JSONB from Postgres.
type BatchLoader struct {
	pool *pgxpool.Pool
}

func NewBatchLoader(pool *pgxpool.Pool) *BatchLoader {
	return &BatchLoader{pool: pool}
}

func (l *BatchLoader) LoadBatch(ctx context.Context, batchID int) (domain.Batch, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM batches WHERE id=$1`, batchID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Batch{}, fmt.Errorf("%w: %d", domain.ErrBatchNotFound, batchID)
	}
	if err != nil {
		return domain.Batch{}, fmt.Errorf("load batch: %w", err)
	}
	var batch domain.Batch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return domain.Batch{}, fmt.Errorf("unmarshal batch: %w", err)
	}
	batch.BatchID = batchID
	return batch, nil
}

// SaveBatch inserts or replaces a batch document.
func (l *BatchLoader) SaveBatch(ctx context.Context, batch domain.Batch) error {
	if !batch.Valid() {
		return fmt.Errorf("%w: %d questions", domain.ErrInvalidBatch, len(batch.Questions))
	}
	raw, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO batches (id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		batch.BatchID, raw)
	if err != nil {
		return fmt.Errorf("save batch: %w", err)
	}
	return nil
}
