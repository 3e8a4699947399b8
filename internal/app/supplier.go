package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"history-quiz-service/internal/domain"
)

// QuestionSupplier produces the next question for a tier, skipping
// texts the session has already answered.
type QuestionSupplier interface {
	RequestQuestion(ctx context.Context, difficulty domain.Difficulty, exclude map[string]struct{}) (domain.Question, error)
}

// fallbackSupplier tries the remote generator first and falls back to
// the static pool on any supplier failure. Failures of the primary are
// recoverable and only logged; the composed request fails only when the
// fallback fails too.
type fallbackSupplier struct {
	primary  QuestionSupplier
	fallback QuestionSupplier
	log      zerolog.Logger
}

// NewFallbackSupplier composes primary and fallback. A nil primary
// means pool-only operation.
func NewFallbackSupplier(primary, fallback QuestionSupplier, log zerolog.Logger) QuestionSupplier {
	return &fallbackSupplier{primary: primary, fallback: fallback, log: log}
}

func (s *fallbackSupplier) RequestQuestion(ctx context.Context, difficulty domain.Difficulty, exclude map[string]struct{}) (domain.Question, error) {
	if s.primary != nil {
		question, err := s.primary.RequestQuestion(ctx, difficulty, exclude)
		if err == nil {
			return question, nil
		}
		event := s.log.Warn().Str("difficulty", string(difficulty))
		var supplierErr *domain.SupplierError
		if errors.As(err, &supplierErr) {
			event = event.Str("kind", string(supplierErr.Kind))
		}
		event.Err(err).Msg("remote question supplier failed, falling back to pool")
	}
	return s.fallback.RequestQuestion(ctx, difficulty, exclude)
}
