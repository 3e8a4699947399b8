package memory

import (
	"context"
	"sync"

	"history-quiz-service/internal/domain"
)

// ProgressStore keeps per-player progress in memory. Last write wins,
// matching the durability contract of the persistent stores.
type ProgressStore struct {
	mu      sync.RWMutex
	players map[string]domain.PersistedProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{players: make(map[string]domain.PersistedProgress)}
}

func (s *ProgressStore) Load(_ context.Context, playerID string) (*domain.PersistedProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.players[playerID]
	if !ok {
		return nil, nil
	}
	copied := progress
	copied.Achievements = append([]string(nil), progress.Achievements...)
	return &copied, nil
}

func (s *ProgressStore) Save(_ context.Context, playerID string, progress domain.PersistedProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress.Achievements = append([]string(nil), progress.Achievements...)
	s.players[playerID] = progress
	return nil
}
