package app

import "time"

// Options tunes the quiz engine. Zero values fall back to the defaults
// of the original game; tests shrink the durations.
type Options struct {
	TotalQuestions    int
	QuestionTime      time.Duration
	TickInterval      time.Duration
	CountdownTicks    int
	CountdownInterval time.Duration

	PointsPerQuestion int
	XPPerCorrect      int
	XPPerLevel        int
	StreakBonusAt     int
	StreakBonus       float64
	PromoteAfter      int
	DemoteAfter       int

	// FastAnswerAfter is the minimum seconds remaining for a correct
	// answer to count as fast.
	FastAnswerAfter  float64
	FreezeDuration   time.Duration
	DoubleXPDuration time.Duration
}

// DefaultOptions returns the production rule set.
func DefaultOptions() Options {
	return Options{
		TotalQuestions:    10,
		QuestionTime:      10 * time.Second,
		TickInterval:      100 * time.Millisecond,
		CountdownTicks:    3,
		CountdownInterval: time.Second,
		PointsPerQuestion: 10,
		XPPerCorrect:      50,
		XPPerLevel:        500,
		StreakBonusAt:     3,
		StreakBonus:       1.1,
		PromoteAfter:      3,
		DemoteAfter:       2,
		FastAnswerAfter:   5,
		FreezeDuration:    5 * time.Second,
		DoubleXPDuration:  30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.TotalQuestions <= 0 {
		o.TotalQuestions = def.TotalQuestions
	}
	if o.QuestionTime <= 0 {
		o.QuestionTime = def.QuestionTime
	}
	if o.TickInterval <= 0 {
		o.TickInterval = def.TickInterval
	}
	if o.CountdownTicks <= 0 {
		o.CountdownTicks = def.CountdownTicks
	}
	if o.CountdownInterval <= 0 {
		o.CountdownInterval = def.CountdownInterval
	}
	if o.PointsPerQuestion <= 0 {
		o.PointsPerQuestion = def.PointsPerQuestion
	}
	if o.XPPerCorrect <= 0 {
		o.XPPerCorrect = def.XPPerCorrect
	}
	if o.XPPerLevel <= 0 {
		o.XPPerLevel = def.XPPerLevel
	}
	if o.StreakBonusAt <= 0 {
		o.StreakBonusAt = def.StreakBonusAt
	}
	if o.StreakBonus <= 0 {
		o.StreakBonus = def.StreakBonus
	}
	if o.PromoteAfter <= 0 {
		o.PromoteAfter = def.PromoteAfter
	}
	if o.DemoteAfter <= 0 {
		o.DemoteAfter = def.DemoteAfter
	}
	if o.FastAnswerAfter <= 0 {
		o.FastAnswerAfter = def.FastAnswerAfter
	}
	if o.FreezeDuration <= 0 {
		o.FreezeDuration = def.FreezeDuration
	}
	if o.DoubleXPDuration <= 0 {
		o.DoubleXPDuration = def.DoubleXPDuration
	}
	return o
}
