package app

import (
	"math"
	"time"

	"history-quiz-service/internal/domain"
)

// levelTitles is the fixed ladder shown on level-up. Levels beyond the
// list saturate at the last title.
var levelTitles = []string{
	"History Novice",
	"Apprentice Chronicler",
	"Scribe",
	"Archivist",
	"Scholar",
	"Historian",
	"Professor",
	"Sage",
	"Master Historian",
	"Legend of the Ages",
}

func levelTitle(level int) string {
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(levelTitles) {
		idx = len(levelTitles) - 1
	}
	return levelTitles[idx]
}

// sessionState holds the mutable record of one quiz run. It is owned
// exclusively by a Session and mutated only through the rule functions
// below, which are pure with respect to everything but the receiver.
type sessionState struct {
	questionIndex      int
	score              int
	xp                 int
	difficulty         domain.Difficulty
	streak             int
	maxStreak          int
	consecutiveCorrect int
	consecutiveWrong   int
	fastAnswers        int
	answeredTexts      map[string]struct{}
	performance        map[domain.Difficulty]domain.PerformanceBucket
	powerUps           map[domain.PowerUpKind]int
	activePowerUps     map[domain.PowerUpKind]bool
	usedPowerUps       map[domain.PowerUpKind]struct{}
	currentQuestion    *domain.Question
	timeRemaining      float64
}

func newSessionState() *sessionState {
	st := &sessionState{
		difficulty:     domain.DifficultyEasy,
		answeredTexts:  make(map[string]struct{}),
		performance:    make(map[domain.Difficulty]domain.PerformanceBucket, len(domain.Difficulties)),
		powerUps:       make(map[domain.PowerUpKind]int, len(domain.PowerUpKinds)),
		activePowerUps: make(map[domain.PowerUpKind]bool, len(domain.PowerUpKinds)),
		usedPowerUps:   make(map[domain.PowerUpKind]struct{}, len(domain.PowerUpKinds)),
	}
	for _, d := range domain.Difficulties {
		st.performance[d] = domain.PerformanceBucket{}
	}
	return st
}

func (st *sessionState) level(opts Options) int {
	return st.xp/opts.XPPerLevel + 1
}

// answerOutcome reports everything a scored answer changed, so the
// engine can translate it into events.
type answerOutcome struct {
	Correct       bool
	TimedOut      bool
	Points        int
	XPAwarded     int
	LeveledUp     bool
	NewLevel      int
	Title         string
	Earned        []domain.PowerUpKind
	NewDifficulty domain.Difficulty
}

// applyAnswer scores one answer against the current question and runs
// the full post-answer pipeline: performance bookkeeping, streak and
// consecutive counters, power-up earn checks, difficulty adaptation,
// and score/XP awards.
//
// The earn check deliberately runs with the freshly updated counters
// BEFORE a promotion or demotion resets them, so the third consecutive
// correct answer both earns the double-XP power-up and promotes the
// tier.
func (st *sessionState) applyAnswer(selected int, timedOut bool, opts Options) answerOutcome {
	q := st.currentQuestion
	out := answerOutcome{TimedOut: timedOut}
	out.Correct = !timedOut && selected == q.CorrectAnswer

	bucket := st.performance[st.difficulty]
	bucket.Total++
	if out.Correct {
		bucket.Correct++
	}
	st.performance[st.difficulty] = bucket

	if out.Correct {
		st.streak++
		if st.streak > st.maxStreak {
			st.maxStreak = st.streak
		}
		st.consecutiveCorrect++
		st.consecutiveWrong = 0
		if st.timeRemaining >= opts.FastAnswerAfter {
			st.fastAnswers++
		}
	} else {
		st.streak = 0
		st.consecutiveWrong++
		st.consecutiveCorrect = 0
	}

	out.Earned = st.earnPowerUps()

	switch {
	case st.consecutiveCorrect >= opts.PromoteAfter:
		st.difficulty = st.difficulty.Promote()
		st.consecutiveCorrect = 0
	case st.consecutiveWrong >= opts.DemoteAfter:
		st.difficulty = st.difficulty.Demote()
		st.consecutiveWrong = 0
	}
	out.NewDifficulty = st.difficulty

	if out.Correct {
		bonus := 1.0
		if st.streak >= opts.StreakBonusAt {
			bonus = opts.StreakBonus
		}
		multiplier := 1.0
		if st.activePowerUps[domain.PowerUpDoubleXP] {
			multiplier = 2.0
		}
		out.Points = int(math.Round(float64(opts.PointsPerQuestion) * bonus))
		out.XPAwarded = int(math.Round(float64(opts.XPPerCorrect) * bonus * multiplier))
		st.score += out.Points
		out.LeveledUp, out.NewLevel, out.Title = st.addXP(out.XPAwarded, opts)
	}

	st.answeredTexts[q.Text] = struct{}{}
	return out
}

// addXP credits XP and reports a level-up when the award crosses a
// level boundary. The reported level is the displayed one, xp/500+1.
func (st *sessionState) addXP(amount int, opts Options) (bool, int, string) {
	oldLevel := st.xp / opts.XPPerLevel
	st.xp += amount
	newLevel := st.xp / opts.XPPerLevel
	if newLevel > oldLevel {
		level := newLevel + 1
		return true, level, levelTitle(level)
	}
	return false, 0, ""
}

// earnPowerUps awards every power-up whose condition holds right now.
// Conditions are independent and all checked on every scored answer.
func (st *sessionState) earnPowerUps() []domain.PowerUpKind {
	var earned []domain.PowerUpKind
	for _, kind := range domain.PowerUpKinds {
		if st.earnConditionMet(kind) {
			st.powerUps[kind]++
			earned = append(earned, kind)
		}
	}
	return earned
}

func (st *sessionState) earnConditionMet(kind domain.PowerUpKind) bool {
	switch kind {
	case domain.PowerUpTimeFreeze:
		return st.streak >= 5
	case domain.PowerUpDoubleXP:
		return st.consecutiveCorrect >= 3
	case domain.PowerUpSkipQuestion:
		return st.streak >= 7
	}
	return false
}

func (st *sessionState) snapshot(sessionID string, opts Options) domain.Snapshot {
	snap := domain.Snapshot{
		SessionID:          sessionID,
		QuestionIndex:      st.questionIndex,
		TotalQuestions:     opts.TotalQuestions,
		Score:              st.score,
		XP:                 st.xp,
		Level:              st.level(opts),
		Streak:             st.streak,
		Difficulty:         st.difficulty,
		ConsecutiveCorrect: st.consecutiveCorrect,
		ConsecutiveWrong:   st.consecutiveWrong,
		TimeRemaining:      st.timeRemaining,
		Performance:        make(map[domain.Difficulty]domain.PerformanceBucket, len(st.performance)),
		PowerUps:           make(map[domain.PowerUpKind]int, len(st.powerUps)),
		ActivePowerUps:     make(map[domain.PowerUpKind]bool, len(st.activePowerUps)),
	}
	for d, b := range st.performance {
		snap.Performance[d] = b
	}
	for k, n := range st.powerUps {
		snap.PowerUps[k] = n
	}
	for k, on := range st.activePowerUps {
		snap.ActivePowerUps[k] = on
	}
	return snap
}

func (st *sessionState) summary(sessionID, playerID, playerName string, finishedAt time.Time, opts Options) domain.SessionSummary {
	totalCorrect, totalAnswered := 0, 0
	performance := make(map[domain.Difficulty]domain.PerformanceBucket, len(st.performance))
	for d, b := range st.performance {
		performance[d] = b
		totalCorrect += b.Correct
		totalAnswered += b.Total
	}
	summary := domain.SessionSummary{
		SessionID:        sessionID,
		PlayerID:         playerID,
		PlayerName:       playerName,
		Score:            st.score,
		XPGained:         st.xp,
		Level:            st.level(opts),
		MaxStreak:        st.maxStreak,
		TotalCorrect:     totalCorrect,
		TotalQuestions:   totalAnswered,
		FastAnswers:      st.fastAnswers,
		PowerUpKindsUsed: len(st.usedPowerUps),
		Performance:      performance,
		FinishedAt:       finishedAt,
	}
	summary.Assessment = assessment(summary.Accuracy())
	return summary
}

// assessment mirrors the closing line of the original results screen.
func assessment(accuracy float64) string {
	percentage := math.Round(accuracy * 100)
	switch {
	case percentage >= 90:
		return "Outstanding! You're a history expert!"
	case percentage >= 70:
		return "Great job! You have a solid understanding of history."
	case percentage >= 50:
		return "Good effort! Keep learning and improving your history knowledge."
	default:
		return "Keep studying! History has many fascinating stories to discover."
	}
}
