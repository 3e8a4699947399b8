package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"history-quiz-service/internal/domain"
)

type phase int

const (
	phaseIdle phase = iota
	phaseCountdown
	phaseAwaitingAnswer
	phaseScoring
	phaseFinished
	phaseFailed
)

const eventBuffer = 256

// FinishFunc runs the session-end persistence pass (achievements, login
// streak, progress save, leaderboard record) and returns what should
// ride on the SessionFinished event.
type FinishFunc func(ctx context.Context, summary domain.SessionSummary) ([]domain.Achievement, domain.Rank, *domain.PersistedProgress)

// Session drives one player's quiz run: countdown, question timers,
// scoring, power-ups, and the finished summary. State is owned
// exclusively by the session and mutated only through its entry points;
// subscribers receive value-copied events.
//
// Timer goroutines are guarded by a generation counter (bumped on every
// Start and Close) and a per-question sequence number, which gives
// at-most-once scoring per question and discards late timer fire or
// supplier results.
type Session struct {
	id         string
	playerID   string
	playerName string

	supplier QuestionSupplier
	finish   FinishFunc
	opts     Options
	log      zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	phase     phase
	gen       int
	seq       int
	freezeGen int
	doubleGen int
	st        *sessionState
	ctx       context.Context
	cancel    context.CancelFunc

	emitMu      sync.Mutex
	subMu       sync.RWMutex
	subscribers map[chan domain.Event]struct{}
}

// NewSession builds an idle session. Start begins a run.
func NewSession(id, playerID, playerName string, supplier QuestionSupplier, finish FinishFunc, opts Options, log zerolog.Logger) *Session {
	return NewSessionWithClock(id, playerID, playerName, supplier, finish, opts, log, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, playerID, playerName string, supplier QuestionSupplier, finish FinishFunc, opts Options, log zerolog.Logger, now func() time.Time) *Session {
	return &Session{
		id:          id,
		playerID:    playerID,
		playerName:  playerName,
		supplier:    supplier,
		finish:      finish,
		opts:        opts.withDefaults(),
		log:         log.With().Str("session", id).Logger(),
		now:         now,
		st:          newSessionState(),
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// Start resets the session to defaults and begins the countdown. Any
// run already in flight is cancelled; its pending timers and supplier
// results are discarded.
func (s *Session) Start() {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.seq++
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.st = newSessionState()
	s.phase = phaseCountdown
	ctx := s.ctx
	s.mu.Unlock()

	go s.runCountdown(ctx, gen)
}

func (s *Session) runCountdown(ctx context.Context, gen int) {
	for i := s.opts.CountdownTicks; i > 0; i-- {
		s.mu.Lock()
		stale := s.gen != gen || s.phase != phaseCountdown
		s.mu.Unlock()
		if stale {
			return
		}
		s.emit(domain.CountdownTick{Remaining: i})
		select {
		case <-time.After(s.opts.CountdownInterval):
		case <-ctx.Done():
			return
		}
	}
	s.nextQuestion(ctx, gen)
}

// nextQuestion asks the supplier for a question at the current tier and
// arms the per-question timer. A supplier failure here means both the
// remote generator and the static pool came up empty, which is fatal to
// the session.
func (s *Session) nextQuestion(ctx context.Context, gen int) {
	s.mu.Lock()
	if s.gen != gen || (s.phase != phaseCountdown && s.phase != phaseScoring) {
		s.mu.Unlock()
		return
	}
	difficulty := s.st.difficulty
	index := s.st.questionIndex
	exclude := make(map[string]struct{}, len(s.st.answeredTexts))
	for text := range s.st.answeredTexts {
		exclude[text] = struct{}{}
	}
	s.mu.Unlock()

	question, err := s.supplier.RequestQuestion(ctx, difficulty, exclude)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.phase = phaseFailed
		s.mu.Unlock()
		s.log.Error().Err(err).Str("difficulty", string(difficulty)).Msg("no supplier could produce a question")
		s.emit(domain.SessionFailed{Reason: "no questions available"})
		return
	}
	s.seq++
	seq := s.seq
	s.st.currentQuestion = &question
	s.st.timeRemaining = s.opts.QuestionTime.Seconds()
	s.phase = phaseAwaitingAnswer
	s.mu.Unlock()

	s.emit(domain.QuestionPresented{
		QuestionIndex:  index,
		TotalQuestions: s.opts.TotalQuestions,
		Question:       question,
		TimeLimit:      s.opts.QuestionTime.Seconds(),
	})
	go s.runQuestionTimer(ctx, gen, seq)
}

func (s *Session) runQuestionTimer(ctx context.Context, gen, seq int) {
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()
	step := s.opts.TickInterval.Seconds()
	// Remaining time is derived from a whole-tick count rather than
	// accumulated subtraction, so the timeout boundary lands exactly on
	// zero instead of drifting by float error.
	ticksLeft := int(s.opts.QuestionTime / s.opts.TickInterval)

	for {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}

		s.mu.Lock()
		if s.gen != gen || s.seq != seq || s.phase != phaseAwaitingAnswer {
			s.mu.Unlock()
			return
		}
		if s.st.activePowerUps[domain.PowerUpTimeFreeze] {
			remaining := s.st.timeRemaining
			s.mu.Unlock()
			s.emit(domain.TimerTick{TimeRemaining: remaining, Frozen: true})
			continue
		}
		ticksLeft--
		if ticksLeft > 0 {
			s.st.timeRemaining = float64(ticksLeft) * step
			remaining := s.st.timeRemaining
			s.mu.Unlock()
			s.emit(domain.TimerTick{TimeRemaining: remaining, Frozen: false})
			continue
		}
		s.st.timeRemaining = 0
		s.scoreLocked(ctx, gen, -1, true)
		return
	}
}

// SubmitAnswer scores the awaiting question against the selected option.
// Out-of-range indexes are rejected without touching state; answers for
// an already-scored question return ErrSessionNotAnswerable.
func (s *Session) SubmitAnswer(index int) error {
	if index < 0 || index >= domain.OptionCount {
		return domain.ErrInvalidAnswerIndex
	}
	s.mu.Lock()
	if s.phase != phaseAwaitingAnswer || s.st.currentQuestion == nil {
		s.mu.Unlock()
		return domain.ErrSessionNotAnswerable
	}
	s.scoreLocked(s.ctx, s.gen, index, false)
	return nil
}

// scoreLocked runs the scoring pipeline. It expects s.mu held and
// releases it before emitting events and advancing.
func (s *Session) scoreLocked(ctx context.Context, gen, selected int, timedOut bool) {
	s.seq++ // cancels the pending question timer
	s.phase = phaseScoring
	question := *s.st.currentQuestion
	outcome := s.st.applyAnswer(selected, timedOut, s.opts)
	s.st.currentQuestion = nil
	s.st.questionIndex++
	finished := s.st.questionIndex >= s.opts.TotalQuestions

	events := make([]domain.Event, 0, 4)
	events = append(events, domain.AnswerScored{
		Correct:       outcome.Correct,
		TimedOut:      outcome.TimedOut,
		SelectedIndex: selected,
		CorrectIndex:  question.CorrectAnswer,
		PointsAwarded: outcome.Points,
		Score:         s.st.score,
		Streak:        s.st.streak,
		Difficulty:    outcome.NewDifficulty,
		Snapshot:      s.st.snapshot(s.id, s.opts),
	})
	if outcome.Correct {
		events = append(events, domain.XPGained{
			Amount:    outcome.XPAwarded,
			TotalXP:   s.st.xp,
			LeveledUp: outcome.LeveledUp,
			NewLevel:  outcome.NewLevel,
			Title:     outcome.Title,
		})
	}
	for _, kind := range outcome.Earned {
		events = append(events, domain.PowerUpEarned{Kind: kind, Count: s.st.powerUps[kind]})
	}
	s.mu.Unlock()

	s.emitAll(events)
	if finished {
		go s.finalize(ctx, gen)
	} else {
		go s.nextQuestion(ctx, gen)
	}
}

// ActivatePowerUp consumes one inventory item and applies its effect.
// Activation with an empty inventory is a no-op reported as an error.
func (s *Session) ActivatePowerUp(kind domain.PowerUpKind) error {
	if !kind.Valid() {
		return domain.ErrUnknownPowerUp
	}
	s.mu.Lock()
	if s.st.powerUps[kind] == 0 {
		s.mu.Unlock()
		return domain.ErrPowerUpUnavailable
	}
	// Skip needs a question in flight; timed effects need a run in
	// progress, otherwise the inventory would burn with nothing to act
	// on.
	if kind == domain.PowerUpSkipQuestion {
		if s.phase != phaseAwaitingAnswer {
			s.mu.Unlock()
			return domain.ErrSessionNotAnswerable
		}
	} else if s.phase != phaseCountdown && s.phase != phaseAwaitingAnswer && s.phase != phaseScoring {
		s.mu.Unlock()
		return domain.ErrSessionNotAnswerable
	}
	s.st.powerUps[kind]--
	s.st.usedPowerUps[kind] = struct{}{}
	remaining := s.st.powerUps[kind]
	gen := s.gen
	ctx := s.ctx

	switch kind {
	case domain.PowerUpTimeFreeze:
		s.st.activePowerUps[kind] = true
		s.freezeGen++
		expiry := s.freezeGen
		time.AfterFunc(s.opts.FreezeDuration, func() { s.expireEffect(kind, gen, expiry) })
	case domain.PowerUpDoubleXP:
		s.st.activePowerUps[kind] = true
		s.doubleGen++
		expiry := s.doubleGen
		time.AfterFunc(s.opts.DoubleXPDuration, func() { s.expireEffect(kind, gen, expiry) })
	case domain.PowerUpSkipQuestion:
		// Advances without scoring: no performance totals, no entry
		// in the answered set.
		s.seq++
		s.phase = phaseScoring
		s.st.currentQuestion = nil
		s.st.questionIndex++
		finished := s.st.questionIndex >= s.opts.TotalQuestions
		s.mu.Unlock()
		s.emit(domain.PowerUpActivated{Kind: kind, Remaining: remaining})
		if finished {
			go s.finalize(ctx, gen)
		} else {
			go s.nextQuestion(ctx, gen)
		}
		return nil
	}
	s.mu.Unlock()
	s.emit(domain.PowerUpActivated{Kind: kind, Remaining: remaining})
	return nil
}

func (s *Session) expireEffect(kind domain.PowerUpKind, gen, expiry int) {
	s.mu.Lock()
	if s.gen != gen || !s.st.activePowerUps[kind] {
		s.mu.Unlock()
		return
	}
	// A newer activation owns the flag now; let its own expiry clear it.
	switch kind {
	case domain.PowerUpTimeFreeze:
		if s.freezeGen != expiry {
			s.mu.Unlock()
			return
		}
	case domain.PowerUpDoubleXP:
		if s.doubleGen != expiry {
			s.mu.Unlock()
			return
		}
	}
	s.st.activePowerUps[kind] = false
	s.mu.Unlock()
	s.emit(domain.PowerUpExpired{Kind: kind})
}

func (s *Session) finalize(ctx context.Context, gen int) {
	s.mu.Lock()
	if s.gen != gen || s.phase != phaseScoring {
		s.mu.Unlock()
		return
	}
	s.phase = phaseFinished
	summary := s.st.summary(s.id, s.playerID, s.playerName, s.now(), s.opts)
	s.mu.Unlock()

	var (
		achievements []domain.Achievement
		rank         domain.Rank
		progress     *domain.PersistedProgress
	)
	if s.finish != nil {
		achievements, rank, progress = s.finish(ctx, summary)
	}
	s.emit(domain.SessionFinished{
		Summary:         summary,
		NewAchievements: achievements,
		Rank:            rank,
		Progress:        progress,
	})
}

// Snapshot returns an immutable copy of the current state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.snapshot(s.id, s.opts)
}

// Subscribe returns a channel of engine events. The caller must invoke
// the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, eventBuffer)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

// Close cancels any run in flight and discards pending timers.
func (s *Session) Close() {
	s.mu.Lock()
	s.gen++
	s.seq++
	if s.cancel != nil {
		s.cancel()
	}
	s.phase = phaseIdle
	s.mu.Unlock()
}

func (s *Session) emit(event domain.Event) {
	s.emitAll([]domain.Event{event})
}

// emitAll delivers events in order under emitMu so two concurrent
// transitions cannot interleave their batches. Sends never block: a
// subscriber that stops draining loses events rather than stalling the
// engine.
func (s *Session) emitAll(events []domain.Event) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, event := range events {
		for ch := range s.subscribers {
			select {
			case ch <- event:
			default:
				s.log.Warn().Str("event", event.Type()).Msg("dropping event for slow subscriber")
			}
		}
	}
}
