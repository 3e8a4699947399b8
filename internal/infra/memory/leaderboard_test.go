package memory

import (
	"context"
	"testing"
	"time"

	"history-quiz-service/internal/domain"
)

func TestLeaderboardOrdersDescending(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()
	now := time.Now()

	for _, score := range []int{40, 90, 10, 70} {
		entry := domain.LeaderboardEntry{PlayerName: "p", Score: score, PlayedAt: now}
		if err := lb.Record(ctx, entry); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := lb.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []int{90, 70, 40, 10}
	if len(entries) != len(want) {
		t.Fatalf("entries = %d, want %d", len(entries), len(want))
	}
	for i, score := range want {
		if entries[i].Score != score {
			t.Fatalf("entries[%d].Score = %d, want %d", i, entries[i].Score, score)
		}
	}
}

func TestLeaderboardKeepsEarlierEntryOnTies(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	_ = lb.Record(ctx, domain.LeaderboardEntry{PlayerName: "first", Score: 50})
	_ = lb.Record(ctx, domain.LeaderboardEntry{PlayerName: "second", Score: 50})

	entries, _ := lb.Load(ctx)
	if entries[0].PlayerName != "first" {
		t.Fatalf("tie order = %v", []string{entries[0].PlayerName, entries[1].PlayerName})
	}
}

func TestLeaderboardCapsAtTop100(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	for score := 0; score < LeaderboardSize+20; score++ {
		if err := lb.Record(ctx, domain.LeaderboardEntry{PlayerName: "p", Score: score}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := lb.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != LeaderboardSize {
		t.Fatalf("entries = %d, want %d", len(entries), LeaderboardSize)
	}
	// The lowest 20 scores fell off the board.
	if entries[len(entries)-1].Score != 20 {
		t.Fatalf("lowest kept score = %d, want 20", entries[len(entries)-1].Score)
	}
}

func TestLeaderboardLoadReturnsCopy(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()
	_ = lb.Record(ctx, domain.LeaderboardEntry{PlayerName: "p", Score: 10})

	entries, _ := lb.Load(ctx)
	entries[0].Score = 999

	reloaded, _ := lb.Load(ctx)
	if reloaded[0].Score != 10 {
		t.Fatalf("mutating a loaded slice leaked into the store")
	}
}
