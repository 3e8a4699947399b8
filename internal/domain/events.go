package domain

// Event is the sealed set of outbound notifications produced by the quiz
// engine. Consumers switch on the concrete type (or Type()) to react;
// payloads are value copies, never live engine state.
type Event interface {
	Type() string
}

// CountdownTick fires once per second during the pre-session countdown.
type CountdownTick struct {
	Remaining int `json:"remaining"`
}

func (CountdownTick) Type() string { return "countdownTick" }

// QuestionPresented announces the question now awaiting an answer.
type QuestionPresented struct {
	QuestionIndex  int      `json:"questionIndex"`
	TotalQuestions int      `json:"totalQuestions"`
	Question       Question `json:"question"`
	TimeLimit      float64  `json:"timeLimit"`
}

func (QuestionPresented) Type() string { return "questionPresented" }

// TimerTick reports the per-question countdown. Frozen is set while a
// time-freeze power-up is active.
type TimerTick struct {
	TimeRemaining float64 `json:"timeRemaining"`
	Frozen        bool    `json:"frozen"`
}

func (TimerTick) Type() string { return "timerTick" }

// AnswerScored reports the outcome of one scored answer.
type AnswerScored struct {
	Correct       bool       `json:"correct"`
	TimedOut      bool       `json:"timedOut"`
	SelectedIndex int        `json:"selectedIndex"`
	CorrectIndex  int        `json:"correctIndex"`
	PointsAwarded int        `json:"pointsAwarded"`
	Score         int        `json:"score"`
	Streak        int        `json:"streak"`
	Difficulty    Difficulty `json:"difficulty"`
	Snapshot      Snapshot   `json:"snapshot"`
}

func (AnswerScored) Type() string { return "answerScored" }

// XPGained reports an XP award and any resulting level-up.
type XPGained struct {
	Amount    int    `json:"amount"`
	TotalXP   int    `json:"totalXP"`
	LeveledUp bool   `json:"leveledUp"`
	NewLevel  int    `json:"newLevel,omitempty"`
	Title     string `json:"title,omitempty"`
}

func (XPGained) Type() string { return "xpGained" }

// PowerUpEarned announces a new inventory item.
type PowerUpEarned struct {
	Kind  PowerUpKind `json:"kind"`
	Count int         `json:"count"`
}

func (PowerUpEarned) Type() string { return "powerUpEarned" }

// PowerUpActivated announces a consumed power-up taking effect.
type PowerUpActivated struct {
	Kind      PowerUpKind `json:"kind"`
	Remaining int         `json:"remaining"`
}

func (PowerUpActivated) Type() string { return "powerUpActivated" }

// PowerUpExpired announces a timed effect wearing off.
type PowerUpExpired struct {
	Kind PowerUpKind `json:"kind"`
}

func (PowerUpExpired) Type() string { return "powerUpExpired" }

// SessionFinished carries the final summary plus the results of the
// session-end persistence pass.
type SessionFinished struct {
	Summary         SessionSummary     `json:"summary"`
	NewAchievements []Achievement      `json:"newAchievements"`
	Rank            Rank               `json:"rank"`
	Progress        *PersistedProgress `json:"progress,omitempty"`
}

func (SessionFinished) Type() string { return "sessionFinished" }

// SessionFailed is the blocking error raised when no supplier can
// produce a question.
type SessionFailed struct {
	Reason string `json:"reason"`
}

func (SessionFailed) Type() string { return "sessionFailed" }
