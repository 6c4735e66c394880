package postgres

import (
	"context"

	"agora/domain/challenge"
	"agora/domain/core"
	"agora/ports"

	"github.com/jmoiron/sqlx"
)

// ChallengeRepositoryImpl implements ChallengeRepository for PostgreSQL.
// Status transitions are conditional updates on the pending state; the row
// that wins pending -> verified is the only one allowed to apply its
// payload.
type ChallengeRepositoryImpl struct {
	db *sqlx.DB
}

// NewChallengeRepository creates a new PostgreSQL challenge repository
func NewChallengeRepository(db *sqlx.DB) ports.ChallengeRepository {
	return &ChallengeRepositoryImpl{db: db}
}

// InsertChallenge persists a freshly issued challenge
func (r *ChallengeRepositoryImpl) InsertChallenge(ctx context.Context, c *challenge.Challenge) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verification_challenges (id, code, question, answer, status, content_type, payload, failed_attempts, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.Code, c.Question, c.Answer, c.Status, c.ContentType, c.Payload, c.FailedAttempts, c.ExpiresAt, c.CreatedAt)
	return mapConflict(err)
}

// GetChallengeByCode retrieves a challenge by its code
func (r *ChallengeRepositoryImpl) GetChallengeByCode(ctx context.Context, code string) (*challenge.Challenge, error) {
	var c challenge.Challenge
	err := r.db.GetContext(ctx, &c, `
		SELECT id, code, question, answer, status, content_type, payload, failed_attempts, expires_at, created_at
		FROM verification_challenges WHERE code = $1
	`, code)
	if err != nil {
		return nil, orNotFound(err, core.ErrChallengeNotFound)
	}
	return &c, nil
}

// MarkVerified transitions pending -> verified conditionally and reports
// whether this caller performed the transition
func (r *ChallengeRepositoryImpl) MarkVerified(ctx context.Context, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE verification_challenges SET status = $2
		WHERE code = $1 AND status = $3
	`, code, challenge.StatusVerified, challenge.StatusPending)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// MarkExpired transitions pending -> expired; a no-op when the challenge
// already left pending
func (r *ChallengeRepositoryImpl) MarkExpired(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE verification_challenges SET status = $2
		WHERE code = $1 AND status = $3
	`, code, challenge.StatusExpired, challenge.StatusPending)
	return err
}

// IncrementFailedAttempts bumps the fraud-signal counter and returns the
// new total
func (r *ChallengeRepositoryImpl) IncrementFailedAttempts(ctx context.Context, code string) (int, error) {
	var attempts int
	err := r.db.GetContext(ctx, &attempts, `
		UPDATE verification_challenges SET failed_attempts = failed_attempts + 1
		WHERE code = $1
		RETURNING failed_attempts
	`, code)
	if err != nil {
		return 0, orNotFound(err, core.ErrChallengeNotFound)
	}
	return attempts, nil
}
