package memory

import (
	"context"
	"testing"
	"time"

	"history-quiz-service/internal/domain"
)

type countingLoader struct {
	PoolLoader
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
			{
				Text:          "Which ancient civilization built the pyramids of Giza?",
				Options:       []string{"Romans", "Greeks", "Egyptians", "Persians"},
				CorrectAnswer: 2,
				Difficulty:    domain.DifficultyEasy,
			},
		},
	}
}

func TestPoolRepositoryCaches(t *testing.T) {
	loader := &countingLoader{PoolLoader: NewStaticPoolLoader(samplePools())}
	repo := NewPoolRepository(loader, time.Minute)

	pool, err := repo.GetPool(context.Background(), domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("pool size = %d, want 2", len(pool))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetPool(context.Background(), domain.DifficultyEasy); err != nil {
		t.Fatalf("get pool 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestPoolRepositoryExpires(t *testing.T) {
	loader := &countingLoader{PoolLoader: NewStaticPoolLoader(samplePools())}
	repo := NewPoolRepository(loader, time.Minute)

	now := time.Now()
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetPool(context.Background(), domain.DifficultyEasy); err != nil {
		t.Fatalf("get pool: %v", err)
	}

	// Past the TTL (and its 10% jitter) the cache must reload.
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetPool(context.Background(), domain.DifficultyEasy); err != nil {
		t.Fatalf("get pool after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestPoolRepositoryCachesPerDifficulty(t *testing.T) {
	pools := samplePools()
	pools[domain.DifficultyHard] = []domain.Question{
		{
			Text:          "Who was the last pharaoh of Egypt?",
			Options:       []string{"Nefertiti", "Cleopatra VII", "Hatshepsut", "Ankhesenamun"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyHard,
		},
	}
	loader := &countingLoader{PoolLoader: NewStaticPoolLoader(pools)}
	repo := NewPoolRepository(loader, time.Minute)

	if _, err := repo.GetPool(context.Background(), domain.DifficultyEasy); err != nil {
		t.Fatalf("easy: %v", err)
	}
	hard, err := repo.GetPool(context.Background(), domain.DifficultyHard)
	if err != nil {
		t.Fatalf("hard: %v", err)
	}
	if len(hard) != 1 || hard[0].Difficulty != domain.DifficultyHard {
		t.Fatalf("hard pool = %+v", hard)
	}
	if loader.calls != 2 {
		t.Fatalf("loader calls = %d, want one per difficulty", loader.calls)
	}
}
