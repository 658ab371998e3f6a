package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"verbiverse-quiz/internal/app"
	"verbiverse-quiz/internal/domain"
)

// LoadTimeout bounds a shared batch load. The load is detached from the caller that
// started it, so waiters on the same batch are not failed by that caller going away.
const LoadTimeout = 45 * time.Second

// BatchRepository caches batches for the lifetime of the process and falls back to
// the offline batch set when the loader cannot deliver.
type BatchRepository struct {
	loader       app.BatchLoader
	totalBatches int
	sf           singleflight.Group

	mu    sync.RWMutex
	cache map[int]domain.Batch
}

func NewBatchRepository(loader app.BatchLoader, totalBatches int) *BatchRepository {
	if totalBatches <= 0 {
		totalBatches = app.DefaultTotalBatches
	}
	return &BatchRepository{
		loader:       loader,
		totalBatches: totalBatches,
		cache:        make(map[int]domain.Batch),
	}
}

func (r *BatchRepository) GetBatch(ctx context.Context, batchID int) (domain.Batch, error) {
	if batchID < 1 || batchID > r.totalBatches {
		return domain.Batch{}, fmt.Errorf("%w: %d not in 1..%d", domain.ErrBatchOutOfRange, batchID, r.totalBatches)
	}

	if batch, ok := r.cached(batchID); ok {
		return batch, nil
	}

	result, err, _ := r.sf.Do(fmt.Sprint(batchID), func() (interface{}, error) {
		if batch, ok := r.cached(batchID); ok {
			return batch, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		batch, err := LoadOrFallback(loadCtx, r.loader, batchID)
		if err != nil {
			return domain.Batch{}, err
		}

		r.mu.Lock()
		r.cache[batchID] = batch
		r.mu.Unlock()
		return batch, nil
	})
	if err != nil {
		return domain.Batch{}, err
	}
	return result.(domain.Batch), nil
}

// ClearCache forgets every cached batch.
func (r *BatchRepository) ClearCache(_ context.Context) {
	r.mu.Lock()
	r.cache = make(map[int]domain.Batch)
	r.mu.Unlock()
}

// Len reports how many batches are cached.
func (r *BatchRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *BatchRepository) cached(batchID int) (domain.Batch, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	batch, ok := r.cache[batchID]
	return batch, ok
}

// LoadOrFallback asks the loader for a batch and substitutes the offline batch when the
// loader fails or returns something other than a full batch. A cancelled ctx is not a
// source failure: the cancellation is returned and no fallback is produced.
func LoadOrFallback(ctx context.Context, loader app.BatchLoader, batchID int) (domain.Batch, error) {
	if loader != nil {
		batch, err := loader.LoadBatch(ctx, batchID)
		if err == nil && batch.Valid() {
			batch.BatchID = batchID
			return batch, nil
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return domain.Batch{}, fmt.Errorf("load batch %d: %w", batchID, ctx.Err())
		}
		if err == nil {
			err = fmt.Errorf("%w: %d questions", domain.ErrInvalidBatch, len(batch.Questions))
		}
		log.Printf("batch %d unavailable, using fallback data: %v", batchID, err)
	}
	return domain.FallbackBatch(batchID), nil
}

// StaticBatchLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticBatchLoader struct {
	batches map[int]domain.Batch
}

func NewStaticBatchLoader(batches map[int]domain.Batch) *StaticBatchLoader {
	return &StaticBatchLoader{batches: batches}
}

func (l *StaticBatchLoader) LoadBatch(_ context.Context, batchID int) (domain.Batch, error) {
	if batch, ok := l.batches[batchID]; ok {
		return batch, nil
	}
	return domain.Batch{}, domain.ErrBatchNotFound
}
