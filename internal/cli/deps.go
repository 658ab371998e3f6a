package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"verbiverse-quiz/internal/app"
	"verbiverse-quiz/internal/config"
	"verbiverse-quiz/internal/infra/ipfs"
	"verbiverse-quiz/internal/infra/ledger"
	"verbiverse-quiz/internal/infra/memory"
	pgstore "verbiverse-quiz/internal/infra/postgres"
	redisstore "verbiverse-quiz/internal/infra/redis"
	"verbiverse-quiz/internal/infra/sqlite"
)

// deps holds everything built from the config, plus what must be closed on exit.
type deps struct {
	cfg     config.Config
	service *app.QuizService
	ledger  *ledger.Client
	pool    *pgxpool.Pool
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			d.Close()
		}
	}()

	if cfg.Ledger.RPCURL != "" {
		client, closeFn, err := ledger.Dial(ctx, cfg.Ledger.RPCURL, cfg.Ledger.Contract)
		if err != nil {
			return nil, err
		}
		d.ledger = client
		d.closers = append(d.closers, closeFn)
	}

	needsPostgres := cfg.Store.Engine == config.EnginePostgres || cfg.Quiz.Source == config.SourcePostgres
	if needsPostgres {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.pool = pool
		d.closers = append(d.closers, pool.Close)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = redisClient.Close() })
	}

	var store app.ProgressStore
	switch cfg.Store.Engine {
	case config.EngineRedis:
		store = redisstore.NewProgressStore(redisClient)
	case config.EnginePostgres:
		store = pgstore.NewProgressStore(d.pool)
	case config.EngineSQLite:
		sq, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		d.closers = append(d.closers, func() { _ = sq.Close() })
		store = sq
	default:
		store = memory.NewProgressStore()
	}

	var loader app.BatchLoader
	switch cfg.Quiz.Source {
	case config.SourcePostgres:
		loader = pgstore.NewBatchLoader(d.pool)
	case config.SourceDemo:
		loader = memory.NewStaticBatchLoader(memory.DemoBatches())
	default:
		opts := []ipfs.Option{
			ipfs.WithGateways(cfg.IPFS.Gateways...),
			ipfs.WithRoot(cfg.IPFS.Root),
			ipfs.WithTimeout(config.TTLDuration(cfg.IPFS.Timeout, ipfs.DefaultTimeout)),
		}
		if d.ledger != nil {
			opts = append(opts, ipfs.WithResolver(d.ledger))
		}
		loader = ipfs.NewLoader(opts...)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, time.Hour)
	var batches app.BatchRepository
	var sessions app.SessionRepository
	if redisClient != nil {
		batches = redisstore.NewBatchRepository(redisClient, loader, cfg.Quiz.TotalBatches, quizTTL)
		sessions = redisstore.NewSessionStore(redisClient, store, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		batches = memory.NewBatchRepository(loader, cfg.Quiz.TotalBatches)
		sessions = memory.NewSessionStore(store)
	}

	var ledgerPort app.Ledger
	if d.ledger != nil {
		ledgerPort = d.ledger
	}
	d.service = app.NewQuizService(sessions, batches, store, ledgerPort, cfg.Quiz.TotalBatches)
	log.Printf("quiz service ready: store=%s source=%s ledger=%t", cfg.Store.Engine, cfg.Quiz.Source, d.ledger != nil)
	ok = true
	return d, nil
}

func loadDeps(ctx context.Context, configPath string) (*deps, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	return buildDeps(ctx, cfg)
}
