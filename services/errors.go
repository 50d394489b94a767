package services

import "errors"

// Service-level error taxonomy, mapped to HTTP responses in handlers.
var (
	// Missing resources.
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrPlayerNotFound     = errors.New("player not found")

	// Deterministic, non-retryable rejections.
	ErrValidationFailed         = errors.New("validation failed")
	ErrTournamentNameConflict   = errors.New("tournament name already exists")
	ErrInvalidTransition        = errors.New("operation not allowed in the tournament's current state")
	ErrInsufficientParticipants = errors.New("not enough participants (minimum 2 required)")
	ErrAlreadyRegistered        = errors.New("player is already registered for this tournament")
	ErrTournamentFull           = errors.New("tournament registration is full")
	ErrLevelTooLow              = errors.New("player level is below the tournament requirement")
	ErrInvalidWinner            = errors.New("winner is not a player of this match")

	// Retryable after a delay.
	ErrRateLimited = errors.New("too many requests for this tournament, retry later")

	// ErrStoreFailure wraps persistence errors. A transition that hits it
	// was aborted; callers must not assume partial success.
	ErrStoreFailure = errors.New("persistent store failure")
)
