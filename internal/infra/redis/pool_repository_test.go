package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"history-quiz-service/internal/domain"
	"history-quiz-service/internal/infra/memory"
)

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

type countingLoader struct {
	memory.PoolLoader
	calls int
}

func (l *countingLoader) LoadPool(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	l.calls++
	return l.PoolLoader.LoadPool(ctx, difficulty)
}

func samplePools() map[domain.Difficulty][]domain.Question {
	return map[domain.Difficulty][]domain.Question{
		domain.DifficultyEasy: {
			{
				Text:          "In which year did World War II end?",
				Options:       []string{"1943", "1945", "1947", "1950"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyEasy,
			},
		},
	}
}

func TestPoolRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{PoolLoader: memory.NewStaticPoolLoader(samplePools())}
	repo := NewPoolRepository(client, loader, time.Minute)

	pool, err := repo.GetPool(context.Background(), domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("pool size = %d, want 1", len(pool))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:pool:easy") {
		t.Fatalf("expected pool cached under quiz:pool:easy")
	}

	// Second call should hit cache, loader not incremented.
	if _, err := repo.GetPool(context.Background(), domain.DifficultyEasy); err != nil {
		t.Fatalf("get pool 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestPoolRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{PoolLoader: memory.NewStaticPoolLoader(samplePools())}
	repo := NewPoolRepository(client, loader, time.Minute)

	if _, err := repo.GetPool(context.Background(), domain.DifficultyEasy); err != nil {
		t.Fatalf("get pool: %v", err)
	}

	// Fast-forward past the TTL and its jitter.
	mr.FastForward(2 * time.Minute)

	if _, err := repo.GetPool(context.Background(), domain.DifficultyEasy); err != nil {
		t.Fatalf("get pool after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}
