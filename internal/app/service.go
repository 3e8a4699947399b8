package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"history-quiz-service/internal/domain"
)

// SessionRepository abstracts how live sessions are tracked (in-memory,
// Redis-marked, etc).
type SessionRepository interface {
	Put(id string, session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// ProgressStore persists per-player progress. Load returns (nil, nil)
// when the player has no record yet.
type ProgressStore interface {
	Load(ctx context.Context, playerID string) (*domain.PersistedProgress, error)
	Save(ctx context.Context, playerID string, progress domain.PersistedProgress) error
}

// LeaderboardStore holds the global top-100 scoreboard ordered by
// descending score.
type LeaderboardStore interface {
	Record(ctx context.Context, entry domain.LeaderboardEntry) error
	Load(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// GameService contains the quiz use cases: registering player sessions,
// routing commands into the engine, and the session-end persistence
// pass.
type GameService struct {
	sessions    SessionRepository
	supplier    QuestionSupplier
	progress    ProgressStore
	leaderboard LeaderboardStore
	opts        Options
	log         zerolog.Logger
	now         func() time.Time
}

func NewGameService(sessions SessionRepository, supplier QuestionSupplier, progress ProgressStore, leaderboard LeaderboardStore, opts Options, log zerolog.Logger) *GameService {
	return &GameService{
		sessions:    sessions,
		supplier:    supplier,
		progress:    progress,
		leaderboard: leaderboard,
		opts:        opts.withDefaults(),
		log:         log,
		now:         time.Now,
	}
}

// Welcome is the read-at-startup payload for a connecting player.
type Welcome struct {
	SessionID   string                    `json:"sessionId"`
	Progress    *domain.PersistedProgress `json:"progress,omitempty"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

// Register creates an idle session for a player and returns the welcome
// payload. Persistence failures degrade to "no prior progress" and an
// empty scoreboard; they never block play.
func (g *GameService) Register(ctx context.Context, playerID, playerName string) Welcome {
	sessionID := uuid.NewString()
	session := NewSession(sessionID, playerID, playerName, g.supplier, g.finishSession, g.opts, g.log)
	g.sessions.Put(sessionID, session)

	welcome := Welcome{SessionID: sessionID}
	progress, err := g.progress.Load(ctx, playerID)
	if err != nil {
		g.log.Warn().Err(err).Str("player", playerID).Msg("progress load failed, treating as no prior progress")
	} else {
		welcome.Progress = progress
	}
	entries, err := g.leaderboard.Load(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("leaderboard load failed")
	} else {
		welcome.Leaderboard = entries
	}
	return welcome
}

// StartSession begins (or restarts) the run for a registered session.
func (g *GameService) StartSession(sessionID string) error {
	session, ok := g.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Start()
	return nil
}

// SubmitAnswer routes an answer into the session engine.
func (g *GameService) SubmitAnswer(sessionID string, index int) error {
	session, ok := g.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.SubmitAnswer(index)
}

// ActivatePowerUp routes a power-up activation into the session engine.
func (g *GameService) ActivatePowerUp(sessionID string, kind domain.PowerUpKind) error {
	session, ok := g.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.ActivatePowerUp(kind)
}

// Subscribe returns a channel of engine events for a session. The
// caller must invoke the returned cancel function to avoid leaks.
func (g *GameService) Subscribe(sessionID string) (<-chan domain.Event, func(), error) {
	session, ok := g.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leave tears down a session: pending timers are cancelled and late
// results discarded.
func (g *GameService) Leave(sessionID string) {
	session, ok := g.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	g.sessions.Delete(sessionID)
}

// finishSession is installed on every session as its FinishFunc. A
// failed load counts as no prior progress; a failed save is logged and
// does not abort the session.
func (g *GameService) finishSession(ctx context.Context, summary domain.SessionSummary) ([]domain.Achievement, domain.Rank, *domain.PersistedProgress) {
	prev, err := g.progress.Load(ctx, summary.PlayerID)
	if err != nil {
		g.log.Warn().Err(err).Str("player", summary.PlayerID).Msg("progress load failed, treating as no prior progress")
		prev = nil
	}
	next, earned := BuildProgress(prev, summary, g.now())
	if err := g.progress.Save(ctx, summary.PlayerID, next); err != nil {
		g.log.Warn().Err(err).Str("player", summary.PlayerID).Msg("progress save failed")
	}

	entry := domain.LeaderboardEntry{
		PlayerName: summary.PlayerName,
		Score:      summary.Score,
		PlayedAt:   summary.FinishedAt,
	}
	if err := g.leaderboard.Record(ctx, entry); err != nil {
		g.log.Warn().Err(err).Msg("leaderboard record failed")
	}
	entries, err := g.leaderboard.Load(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("leaderboard load failed")
	}
	return earned, RankOf(entries, summary.Score), &next
}
