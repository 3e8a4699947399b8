package memory

import (
	"context"
	"sort"
	"sync"

	"history-quiz-service/internal/domain"
)

// LeaderboardSize caps the scoreboard at the top 100 entries.
const LeaderboardSize = 100

// Leaderboard is the in-memory scoreboard: descending by score, capped.
type Leaderboard struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{}
}

func (l *Leaderboard) Record(_ context.Context, entry domain.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Score > l.entries[j].Score
	})
	if len(l.entries) > LeaderboardSize {
		l.entries = l.entries[:LeaderboardSize]
	}
	return nil
}

func (l *Leaderboard) Load(_ context.Context) ([]domain.LeaderboardEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.LeaderboardEntry(nil), l.entries...), nil
}
