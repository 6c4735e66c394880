package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound            = errors.New("resource not found")
	ErrDebateNotFound      = fmt.Errorf("%w: debate", ErrNotFound)
	ErrStageNotFound       = fmt.Errorf("%w: stage", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("%w: participant", ErrNotFound)
	ErrArgumentNotFound    = fmt.Errorf("%w: argument", ErrNotFound)
	ErrVoteNotFound        = fmt.Errorf("%w: vote", ErrNotFound)
	ErrChallengeNotFound   = fmt.Errorf("%w: challenge", ErrNotFound)

	// Validation and eligibility errors
	ErrValidation        = errors.New("validation failed")
	ErrEligibilityDenied = errors.New("eligibility denied")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Concurrency and uniqueness errors
	ErrConflict = errors.New("uniqueness conflict")

	// Challenge lifecycle errors
	ErrChallengeExpired = errors.New("challenge expired")
	ErrAlreadyProcessed = errors.New("challenge already processed")
	ErrStateChanged     = errors.New("state changed since challenge issuance")

	// Outcome resolution errors
	ErrTiedOutcome            = errors.New("tally is tied, explicit winner required")
	ErrWinnerContradictsTally = errors.New("supplied winner contradicts tally")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, reason)
}

// NewEligibilityDenied carries the human-readable reason the rule surfaced.
// Callers relay the reason verbatim, never a bare boolean.
func NewEligibilityDenied(reason string) error {
	return fmt.Errorf("%w: %s", ErrEligibilityDenied, reason)
}

func NewTransitionError(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func NewStateChangedError(reason string) error {
	return fmt.Errorf("%w: %s", ErrStateChanged, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsEligibilityDenied(err error) bool {
	return errors.Is(err, ErrEligibilityDenied)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsChallengeError(err error) bool {
	return errors.Is(err, ErrChallengeExpired) ||
		errors.Is(err, ErrAlreadyProcessed) ||
		errors.Is(err, ErrStateChanged)
}
