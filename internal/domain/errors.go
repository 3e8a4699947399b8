package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session ID is unknown.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionNotAnswerable is returned when an answer arrives while no
	// question is awaiting one (already scored, between questions, finished).
	ErrSessionNotAnswerable = errors.New("no question awaiting an answer")
	// ErrInvalidAnswerIndex is returned for answers outside 0..3.
	ErrInvalidAnswerIndex = errors.New("answer index out of range")
	// ErrPowerUpUnavailable is returned when a power-up is activated with
	// an empty inventory.
	ErrPowerUpUnavailable = errors.New("power-up not available")
	// ErrUnknownPowerUp is returned for power-up kinds outside the catalog.
	ErrUnknownPowerUp = errors.New("unknown power-up kind")
	// ErrPoolEmpty indicates the static question pool has no questions for
	// the requested difficulty. With no remote supplier either, this is
	// fatal to the session.
	ErrPoolEmpty = errors.New("question pool is empty")
)

// SupplierErrorKind classifies question supplier failures.
type SupplierErrorKind string

const (
	// SupplierNetwork covers transport failures and timeouts.
	SupplierNetwork SupplierErrorKind = "network"
	// SupplierInvalidPayload covers unparseable responses.
	SupplierInvalidPayload SupplierErrorKind = "invalid_payload"
	// SupplierSchemaViolation covers well-formed responses that fail
	// question validation.
	SupplierSchemaViolation SupplierErrorKind = "schema_violation"
)

// SupplierError wraps a question supplier failure. All kinds are
// recoverable: the engine falls back to the static pool.
type SupplierError struct {
	Kind SupplierErrorKind
	Err  error
}

func (e *SupplierError) Error() string {
	return fmt.Sprintf("question supplier: %s: %v", e.Kind, e.Err)
}

func (e *SupplierError) Unwrap() error { return e.Err }

// NewSupplierError wraps err with a failure classification.
func NewSupplierError(kind SupplierErrorKind, err error) *SupplierError {
	return &SupplierError{Kind: kind, Err: err}
}
