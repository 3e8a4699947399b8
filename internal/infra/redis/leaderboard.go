package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"history-quiz-service/internal/domain"
	"history-quiz-service/internal/infra/memory"
)

const leaderboardKey = "quiz:leaderboard"

// Leaderboard stores the scoreboard in a Redis sorted set. Members are
// JSON entries tagged with a uuid so equal scores from the same player
// stay distinct; scores are the ZSET score. The set is trimmed to the
// top 100 on every write.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

type leaderboardMember struct {
	ID    string                  `json:"id"`
	Entry domain.LeaderboardEntry `json:"entry"`
}

func (l *Leaderboard) Record(ctx context.Context, entry domain.LeaderboardEntry) error {
	member, err := json.Marshal(leaderboardMember{ID: uuid.NewString(), Entry: entry})
	if err != nil {
		return fmt.Errorf("marshal leaderboard entry: %w", err)
	}
	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(entry.Score), Member: string(member)})
	pipe.ZRemRangeByRank(ctx, leaderboardKey, 0, int64(-(memory.LeaderboardSize + 1)))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record leaderboard entry: %w", err)
	}
	return nil
}

func (l *Leaderboard) Load(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	members, err := l.client.ZRevRange(ctx, leaderboardKey, 0, memory.LeaderboardSize-1).Result()
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, raw := range members {
		var member leaderboardMember
		if err := json.Unmarshal([]byte(raw), &member); err != nil {
			return nil, fmt.Errorf("unmarshal leaderboard entry: %w", err)
		}
		entries = append(entries, member.Entry)
	}
	return entries, nil
}
