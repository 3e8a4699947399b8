package domain

import (
	"fmt"
	"time"
)

// Difficulty is the current question tier of a session.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the three known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Promote returns the next harder tier; hard stays hard.
func (d Difficulty) Promote() Difficulty {
	switch d {
	case DifficultyEasy:
		return DifficultyMedium
	case DifficultyMedium:
		return DifficultyHard
	}
	return d
}

// Demote returns the next easier tier; easy stays easy.
func (d Difficulty) Demote() Difficulty {
	switch d {
	case DifficultyHard:
		return DifficultyMedium
	case DifficultyMedium:
		return DifficultyEasy
	}
	return d
}

// OptionCount is the fixed number of options per question.
const OptionCount = 4

// Question models an MCQ question. Immutable once issued to a session.
type Question struct {
	Text          string     `json:"text"`
	Options       []string   `json:"options"`
	CorrectAnswer int        `json:"correctAnswer"`
	Difficulty    Difficulty `json:"difficulty"`
}

// Validate enforces the question schema: exactly four options and an
// in-range answer index. Applied to supplier payloads before a question
// is issued.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("expected %d options, got %d", OptionCount, len(q.Options))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= OptionCount {
		return fmt.Errorf("correct answer index %d out of range", q.CorrectAnswer)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	return nil
}

// PowerUpKind identifies a consumable modifier.
type PowerUpKind string

const (
	PowerUpTimeFreeze   PowerUpKind = "timeFreeze"
	PowerUpDoubleXP     PowerUpKind = "doubleXp"
	PowerUpSkipQuestion PowerUpKind = "skipQuestion"
)

// PowerUpKinds lists all kinds in earn-check order.
var PowerUpKinds = []PowerUpKind{PowerUpTimeFreeze, PowerUpDoubleXP, PowerUpSkipQuestion}

// Valid reports whether k names a known power-up.
func (k PowerUpKind) Valid() bool {
	switch k {
	case PowerUpTimeFreeze, PowerUpDoubleXP, PowerUpSkipQuestion:
		return true
	}
	return false
}

// PerformanceBucket tracks correct/total counts for one difficulty tier.
type PerformanceBucket struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Snapshot is an immutable view of session state handed to subscribers.
// Consumers never hold a live reference into engine internals.
type Snapshot struct {
	SessionID          string                           `json:"sessionId"`
	QuestionIndex      int                              `json:"questionIndex"`
	TotalQuestions     int                              `json:"totalQuestions"`
	Score              int                              `json:"score"`
	XP                 int                              `json:"xp"`
	Level              int                              `json:"level"`
	Streak             int                              `json:"streak"`
	Difficulty         Difficulty                       `json:"difficulty"`
	ConsecutiveCorrect int                              `json:"consecutiveCorrect"`
	ConsecutiveWrong   int                              `json:"consecutiveWrong"`
	TimeRemaining      float64                          `json:"timeRemaining"`
	Performance        map[Difficulty]PerformanceBucket `json:"performance"`
	PowerUps           map[PowerUpKind]int              `json:"powerUps"`
	ActivePowerUps     map[PowerUpKind]bool             `json:"activePowerUps"`
}

// SessionSummary is the final aggregate emitted when a session finishes.
type SessionSummary struct {
	SessionID        string                           `json:"sessionId"`
	PlayerID         string                           `json:"playerId"`
	PlayerName       string                           `json:"playerName"`
	Score            int                              `json:"score"`
	XPGained         int                              `json:"xpGained"`
	Level            int                              `json:"level"`
	MaxStreak        int                              `json:"maxStreak"`
	TotalCorrect     int                              `json:"totalCorrect"`
	TotalQuestions   int                              `json:"totalQuestions"`
	FastAnswers      int                              `json:"fastAnswers"`
	PowerUpKindsUsed int                              `json:"powerUpKindsUsed"`
	Performance      map[Difficulty]PerformanceBucket `json:"performance"`
	Assessment       string                           `json:"assessment"`
	FinishedAt       time.Time                        `json:"finishedAt"`
}

// Accuracy is the fraction of answered questions that were correct.
func (s SessionSummary) Accuracy() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.TotalCorrect) / float64(s.TotalQuestions)
}

// AggregateStats accumulates across sessions in persisted progress.
type AggregateStats struct {
	GamesPlayed    int `json:"gamesPlayed"`
	TotalCorrect   int `json:"totalCorrect"`
	TotalQuestions int `json:"totalQuestions"`
	HighestStreak  int `json:"highestStreak"`
}

// PersistedProgress is the durable per-player record. Mutated only at
// session end; read once at startup.
type PersistedProgress struct {
	HighestLevel    int            `json:"highestLevel"`
	TotalXP         int            `json:"totalXP"`
	LoginStreakDays int            `json:"loginStreakDays"`
	LastPlayed      time.Time      `json:"lastPlayed"`
	Achievements    []string       `json:"achievements"`
	Stats           AggregateStats `json:"stats"`
}

// Achievement is a view of one entry in the fixed achievement catalog.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LeaderboardEntry is one row of the global scoreboard.
type LeaderboardEntry struct {
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	PlayedAt   time.Time `json:"playedAt"`
}

// Rank locates a score within the leaderboard.
type Rank struct {
	Position   int `json:"position"`
	Total      int `json:"total"`
	Percentile int `json:"percentile"`
}
