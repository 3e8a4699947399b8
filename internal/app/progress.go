package app

import (
	"math"
	"time"

	"history-quiz-service/internal/domain"
)

// NextLoginStreak applies the calendar-day rule: playing on the day
// after the last recorded play extends the streak, a longer gap resets
// it to 1, and playing again the same day leaves it unchanged. Days are
// compared in UTC.
func NextLoginStreak(prev *domain.PersistedProgress, now time.Time) int {
	if prev == nil || prev.LastPlayed.IsZero() {
		return 1
	}
	last := prev.LastPlayed.UTC()
	today := now.UTC()
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	currentDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	switch days := int(currentDay.Sub(lastDay).Hours() / 24); {
	case days == 0:
		return prev.LoginStreakDays
	case days == 1:
		return prev.LoginStreakDays + 1
	default:
		return 1
	}
}

// BuildProgress folds a finished session into the persisted record and
// reports the newly earned achievements. prev == nil means no prior
// progress.
func BuildProgress(prev *domain.PersistedProgress, summary domain.SessionSummary, now time.Time) (domain.PersistedProgress, []domain.Achievement) {
	streak := NextLoginStreak(prev, now)

	var base domain.PersistedProgress
	if prev != nil {
		base = *prev
	}

	stats := AchievementStats{
		TotalCorrect:     summary.TotalCorrect,
		TotalQuestions:   summary.TotalQuestions,
		MaxStreak:        summary.MaxStreak,
		FastAnswers:      summary.FastAnswers,
		PowerUpKindsUsed: summary.PowerUpKindsUsed,
		LoginStreakDays:  streak,
	}
	earned := EvaluateAchievements(base.Achievements, stats)

	next := domain.PersistedProgress{
		HighestLevel:    base.HighestLevel,
		TotalXP:         base.TotalXP + summary.XPGained,
		LoginStreakDays: streak,
		LastPlayed:      now,
		Achievements:    append(append([]string(nil), base.Achievements...), achievementIDs(earned)...),
		Stats: domain.AggregateStats{
			GamesPlayed:    base.Stats.GamesPlayed + 1,
			TotalCorrect:   base.Stats.TotalCorrect + summary.TotalCorrect,
			TotalQuestions: base.Stats.TotalQuestions + summary.TotalQuestions,
			HighestStreak:  base.Stats.HighestStreak,
		},
	}
	if summary.Level > next.HighestLevel {
		next.HighestLevel = summary.Level
	}
	if summary.MaxStreak > next.Stats.HighestStreak {
		next.Stats.HighestStreak = summary.MaxStreak
	}
	return next, earned
}

func achievementIDs(achievements []domain.Achievement) []string {
	ids := make([]string, 0, len(achievements))
	for _, a := range achievements {
		ids = append(ids, a.ID)
	}
	return ids
}

// RankOf locates score within the recorded entries: position is one
// past the count of strictly greater scores, percentile the share of
// entries at or below that position.
func RankOf(entries []domain.LeaderboardEntry, score int) domain.Rank {
	total := len(entries)
	if total == 0 {
		return domain.Rank{Position: 1, Total: 1, Percentile: 100}
	}
	position := 1
	for _, entry := range entries {
		if entry.Score > score {
			position++
		}
	}
	percentile := int(math.Round(float64(total-position+1) / float64(total) * 100))
	return domain.Rank{Position: position, Total: total, Percentile: percentile}
}
