package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"verbiverse-quiz/internal/app"
	"verbiverse-quiz/internal/domain"
	"verbiverse-quiz/internal/infra/memory"
)

const batchIndexKey = "batch:index"

// BatchRepository caches whole batches in Redis and falls back to a loader on cache miss.
// Batches are stored as: SET batch:{batchID} <json>
// Every written key is tracked in SADD batch:index so ClearCache can drop them.
type BatchRepository struct {
	client       *redis.Client
	loader       app.BatchLoader
	totalBatches int
	ttl          time.Duration
	sf           singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewBatchRepository(client *redis.Client, loader app.BatchLoader, totalBatches int, ttl time.Duration) *BatchRepository {
	if totalBatches <= 0 {
		totalBatches = app.DefaultTotalBatches
	}
	return &BatchRepository{
		client:       client,
		loader:       loader,
		totalBatches: totalBatches,
		ttl:          ttl,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BatchRepository) GetBatch(ctx context.Context, batchID int) (domain.Batch, error) {
	if batchID < 1 || batchID > r.totalBatches {
		return domain.Batch{}, fmt.Errorf("%w: %d not in 1..%d", domain.ErrBatchOutOfRange, batchID, r.totalBatches)
	}

	if batch, ok := r.cached(ctx, batchID); ok {
		return batch, nil
	}

	result, err, _ := r.sf.Do(strconv.Itoa(batchID), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if batch, ok := r.cached(ctx, batchID); ok {
			return batch, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), memory.LoadTimeout)
		defer cancel()
		batch, err := memory.LoadOrFallback(loadCtx, r.loader, batchID)
		if err != nil {
			return domain.Batch{}, err
		}
		raw, err := json.Marshal(batch)
		if err != nil {
			return domain.Batch{}, fmt.Errorf("encode batch %d: %w", batchID, err)
		}

		key := r.key(batchID)
		pipe := r.client.Pipeline()
		pipe.Set(loadCtx, key, raw, r.ttlWithJitter())
		pipe.SAdd(loadCtx, batchIndexKey, key)
		if _, err := pipe.Exec(loadCtx); err != nil {
			log.Printf("cache batch %d: %v", batchID, err)
		}
		return batch, nil
	})
	if err != nil {
		return domain.Batch{}, err
	}
	return result.(domain.Batch), nil
}

// ClearCache deletes every batch key this repository wrote.
func (r *BatchRepository) ClearCache(ctx context.Context) {
	keys, err := r.client.SMembers(ctx, batchIndexKey).Result()
	if err != nil {
		log.Printf("list cached batches: %v", err)
		return
	}
	keys = append(keys, batchIndexKey)
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("clear batch cache: %v", err)
	}
}

func (r *BatchRepository) cached(ctx context.Context, batchID int) (domain.Batch, bool) {
	raw, err := r.client.Get(ctx, r.key(batchID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("read cached batch %d: %v", batchID, err)
		}
		return domain.Batch{}, false
	}
	var batch domain.Batch
	if err := json.Unmarshal(raw, &batch); err != nil || !batch.Valid() {
		return domain.Batch{}, false
	}
	return batch, true
}

func (r *BatchRepository) key(batchID int) string {
	return "batch:" + strconv.Itoa(batchID)
}

func (r *BatchRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
