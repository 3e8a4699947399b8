package app

import "history-quiz-service/internal/domain"

// AchievementStats are the aggregates the session-end evaluation runs
// against.
type AchievementStats struct {
	TotalCorrect     int
	TotalQuestions   int
	MaxStreak        int
	FastAnswers      int
	PowerUpKindsUsed int
	LoginStreakDays  int
}

// Accuracy of the finished session; zero when nothing was answered.
func (s AchievementStats) Accuracy() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.TotalCorrect) / float64(s.TotalQuestions)
}

// AchievementCatalog is the fixed, ordered set of achievements. New
// awards are appended to persisted progress in this order.
var AchievementCatalog = []domain.Achievement{
	{ID: "quickLearner", Title: "Quick Learner", Description: "Answer 3 questions correctly in under 5 seconds each"},
	{ID: "streakMaster", Title: "Streak Master", Description: "Achieve a streak of 5 or more correct answers"},
	{ID: "historyBuff", Title: "History Buff", Description: "Complete a quiz with 90% or higher accuracy"},
	{ID: "powerPlayer", Title: "Power Player", Description: "Use all types of power-ups in a single game"},
	{ID: "dailyScholar", Title: "Daily Scholar", Description: "Maintain a 3-day login streak"},
}

func achievementEarned(id string, stats AchievementStats) bool {
	switch id {
	case "quickLearner":
		return stats.FastAnswers >= 3
	case "streakMaster":
		return stats.MaxStreak >= 5
	case "historyBuff":
		return stats.TotalQuestions > 0 && stats.Accuracy() >= 0.9
	case "powerPlayer":
		return stats.PowerUpKindsUsed >= len(domain.PowerUpKinds)
	case "dailyScholar":
		return stats.LoginStreakDays >= 3
	}
	return false
}

// EvaluateAchievements returns the catalog entries newly satisfied by
// stats, in catalog order. Achievements already held are never
// re-awarded.
func EvaluateAchievements(held []string, stats AchievementStats) []domain.Achievement {
	heldSet := make(map[string]struct{}, len(held))
	for _, id := range held {
		heldSet[id] = struct{}{}
	}
	var earned []domain.Achievement
	for _, achievement := range AchievementCatalog {
		if _, ok := heldSet[achievement.ID]; ok {
			continue
		}
		if achievementEarned(achievement.ID, stats) {
			earned = append(earned, achievement)
		}
	}
	return earned
}
