package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"history-quiz-service/internal/domain"
)

// PoolSource yields the full question pool for a tier. Implemented by
// the memory and Redis pool repositories.
type PoolSource interface {
	GetPool(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error)
}

// PoolSupplier draws random questions from a pool, skipping texts the
// session already answered. When every pool question has been answered
// it draws from the full pool, so repeats only happen on exhaustion.
type PoolSupplier struct {
	source PoolSource

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPoolSupplier(source PoolSource) *PoolSupplier {
	return &PoolSupplier{
		source: source,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *PoolSupplier) RequestQuestion(ctx context.Context, difficulty domain.Difficulty, exclude map[string]struct{}) (domain.Question, error) {
	pool, err := s.source.GetPool(ctx, difficulty)
	if err != nil {
		return domain.Question{}, err
	}
	if len(pool) == 0 {
		return domain.Question{}, domain.ErrPoolEmpty
	}

	available := make([]domain.Question, 0, len(pool))
	for _, question := range pool {
		if _, answered := exclude[question.Text]; !answered {
			available = append(available, question)
		}
	}
	if len(available) == 0 {
		available = pool
	}

	s.mu.Lock()
	pick := s.rnd.Intn(len(available))
	s.mu.Unlock()
	return available[pick], nil
}
