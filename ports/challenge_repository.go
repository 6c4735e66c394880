package ports

import (
	"context"

	"agora/domain/challenge"
)

// ChallengeRepository defines the interface for challenge data operations.
// MarkVerified is the exactly-once gate: of any number of concurrent
// correct answers, only the caller whose conditional transition succeeds
// may apply the payload.
type ChallengeRepository interface {
	// InsertChallenge persists a freshly issued challenge
	InsertChallenge(ctx context.Context, c *challenge.Challenge) error

	// GetChallengeByCode retrieves a challenge by its code, or
	// core.ErrChallengeNotFound
	GetChallengeByCode(ctx context.Context, code string) (*challenge.Challenge, error)

	// MarkVerified transitions pending -> verified conditionally. The
	// returned bool reports whether this caller performed the transition;
	// false means the challenge was already non-pending.
	MarkVerified(ctx context.Context, code string) (bool, error)

	// MarkExpired transitions pending -> expired conditionally; a no-op
	// when the challenge already left pending
	MarkExpired(ctx context.Context, code string) error

	// IncrementFailedAttempts bumps the fraud-signal counter and returns
	// the new total
	IncrementFailedAttempts(ctx context.Context, code string) (int, error)
}
