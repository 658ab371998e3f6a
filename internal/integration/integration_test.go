package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"verbiverse-quiz/internal/app"
	"verbiverse-quiz/internal/domain"
	pgstore "verbiverse-quiz/internal/infra/postgres"
	pgmigrations "verbiverse-quiz/internal/infra/postgres/migrations"
	infraredis "verbiverse-quiz/internal/infra/redis"
	"verbiverse-quiz/internal/infra/wallet"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewBatchLoader(pool)
	if err := loader.SaveBatch(ctx, sampleBatch()); err != nil {
		t.Fatalf("save batch: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	store := pgstore.NewProgressStore(pool)
	batches := infraredis.NewBatchRepository(redisClient, loader, 10, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, store, 5*time.Minute)
	service := app.NewQuizService(sessions, batches, store, nil, 10)

	w := wallet.NewStatic(wallet.DemoAddress, 0, 0)
	if err := w.Connect(ctx); err != nil {
		t.Fatalf("connect wallet: %v", err)
	}
	address := w.Address()

	session, err := service.BeginBatch(ctx, w, "English → Yoruba", 2)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if session.Questions[0].Text != "Good morning" {
		t.Fatalf("expected stored batch, got %+v", session.Questions[0])
	}
	for i, answer := range []string{"E kaaro", "e se", "O dabo", "wrong", ""} {
		if err := service.Answer(ctx, address, i, answer); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	result, err := service.Finish(ctx, address)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.Session.Score == nil || *result.Session.Score != 60 {
		t.Fatalf("expected score 60, got %v", result.Session.Score)
	}

	stats, err := store.LoadStats(ctx, address)
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if stats.CompletedQuizzes != 1 || stats.LanguagePairStats["English → Yoruba"].BestScore != 60 {
		t.Fatalf("unexpected persisted stats %+v", stats)
	}
	history, err := service.History(ctx, address)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].BatchID != 2 {
		t.Fatalf("unexpected history %+v", history)
	}

	if n, err := redisClient.Exists(ctx, "batch:2").Result(); err != nil || n != 1 {
		t.Fatalf("expected cached batch in redis, n=%d err=%v", n, err)
	}
}

func TestPostgresMissingBatchFallsBack(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewBatchLoader(pool)
	if _, err := loader.LoadBatch(ctx, 9); err == nil {
		t.Fatalf("expected missing batch error")
	}
	store := pgstore.NewProgressStore(pool)
	for i := 0; i < domain.HistoryLimit+3; i++ {
		score := i
		if err := store.AppendHistory(ctx, "0xabc", domain.QuizSession{ID: fmt.Sprintf("s%d", i), Score: &score, Status: domain.StatusCompleted}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	history, err := store.History(ctx, "0xabc")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != domain.HistoryLimit || history[0].ID != fmt.Sprintf("s%d", domain.HistoryLimit+2) {
		t.Fatalf("expected newest %d entries, got %d starting %s", domain.HistoryLimit, len(history), history[0].ID)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleBatch() domain.Batch {
	pairs := [][2]string{
		{"Good morning", "E kaaro"},
		{"Thank you", "E se"},
		{"Goodbye", "O dabo"},
		{"Welcome", "E kaabo"},
		{"Good night", "O daaro"},
	}
	batch := domain.Batch{
		BatchID:      2,
		CreatedAt:    time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:   domain.DifficultyEasy,
		LanguagePair: "English → Yoruba",
	}
	for i, p := range pairs {
		batch.Questions = append(batch.Questions, domain.Question{
			ID:                 5 + i + 1,
			SourceText:         p[0],
			CorrectTranslation: p[1],
			TargetLanguage:     "Yoruba",
			Difficulty:         domain.DifficultyEasy,
		})
	}
	return batch
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
