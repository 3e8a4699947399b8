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
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"history-quiz-service/internal/app"
	"history-quiz-service/internal/domain"
	"history-quiz-service/internal/infra/memory"
	pgloader "history-quiz-service/internal/infra/postgres"
	pgmigrations "history-quiz-service/internal/infra/postgres/migrations"
	infraredis "history-quiz-service/internal/infra/redis"
)

func TestFullSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	loader := pgloader.NewQuestionLoader(pool)
	poolRepo := infraredis.NewPoolRepository(redisClient, loader, 5*time.Minute)
	supplier := app.NewFallbackSupplier(nil, memory.NewPoolSupplier(poolRepo), zerolog.Nop())

	progressStore := infraredis.NewProgressStore(redisClient)
	leaderboard := infraredis.NewLeaderboard(redisClient)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)

	opts := app.Options{
		TotalQuestions:    3,
		QuestionTime:      10 * time.Second,
		TickInterval:      20 * time.Millisecond,
		CountdownTicks:    1,
		CountdownInterval: time.Millisecond,
	}
	service := app.NewGameService(sessions, supplier, progressStore, leaderboard, opts, zerolog.Nop())

	welcome := service.Register(ctx, "p1", "Alice")
	if welcome.Progress != nil {
		t.Fatalf("fresh player already has progress: %+v", welcome.Progress)
	}

	events, cancel, err := service.Subscribe(welcome.SessionID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	defer service.Leave(welcome.SessionID)

	if err := service.StartSession(welcome.SessionID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Answer every seeded question correctly until the run finishes.
	var finished domain.SessionFinished
	deadline := time.After(30 * time.Second)
	done := false
	for !done {
		select {
		case event, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed before the session finished")
			}
			switch e := event.(type) {
			case domain.QuestionPresented:
				if err := service.SubmitAnswer(welcome.SessionID, e.Question.CorrectAnswer); err != nil {
					t.Fatalf("submit: %v", err)
				}
			case domain.SessionFinished:
				finished = e
				done = true
			case domain.SessionFailed:
				t.Fatalf("session failed: %s", e.Reason)
			}
		case <-deadline:
			t.Fatalf("session did not finish in time")
		}
	}

	if finished.Summary.TotalCorrect != 3 {
		t.Fatalf("totalCorrect = %d, want 3", finished.Summary.TotalCorrect)
	}
	if finished.Rank.Position != 1 {
		t.Fatalf("rank = %+v, want first place on a fresh board", finished.Rank)
	}

	saved, err := progressStore.Load(ctx, "p1")
	if err != nil || saved == nil {
		t.Fatalf("saved progress: %v %v", saved, err)
	}
	if saved.Stats.GamesPlayed != 1 || saved.TotalXP != finished.Summary.XPGained {
		t.Fatalf("saved = %+v", saved)
	}
	if saved.LoginStreakDays != 1 {
		t.Fatalf("loginStreak = %d, want 1", saved.LoginStreakDays)
	}

	entries, err := leaderboard.Load(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].PlayerName != "Alice" {
		t.Fatalf("leaderboard = %+v", entries)
	}
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
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

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
