package postgres

import (
	"context"

	"agora/domain/core"
	"agora/domain/debate"
	"agora/ports"

	"github.com/jmoiron/sqlx"
)

// VoteRepositoryImpl implements VoteRepository for PostgreSQL. The
// (debate_id, voter_key) unique constraint is the one-vote-per-identity
// invariant; both insert paths lean on it.
type VoteRepositoryImpl struct {
	db *sqlx.DB
}

// NewVoteRepository creates a new PostgreSQL vote repository
func NewVoteRepository(db *sqlx.DB) ports.VoteRepository {
	return &VoteRepositoryImpl{db: db}
}

// InsertVote inserts unless a vote already exists for the voter key
func (r *VoteRepositoryImpl) InsertVote(ctx context.Context, v *debate.Vote) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO votes (id, debate_id, voter_key, user_id, session_id, side, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.DebateID, v.VoterKey, v.UserID, v.SessionID, v.Side, v.CreatedAt)
	if err != nil {
		return mapConflict(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE debates SET total_votes = total_votes + 1, updated_at = NOW()
		WHERE id = $1
	`, v.DebateID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// UpsertVote inserts or replaces the live vote for the voter key. The vote
// count on the debate only moves when a new row was actually created.
func (r *VoteRepositoryImpl) UpsertVote(ctx context.Context, v *debate.Vote) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var inserted bool
	err = tx.GetContext(ctx, &inserted, `
		INSERT INTO votes (id, debate_id, voter_key, user_id, session_id, side, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (debate_id, voter_key)
		DO UPDATE SET side = EXCLUDED.side, created_at = EXCLUDED.created_at
		RETURNING (xmax = 0)
	`, v.ID, v.DebateID, v.VoterKey, v.UserID, v.SessionID, v.Side, v.CreatedAt)
	if err != nil {
		return err
	}

	if inserted {
		_, err = tx.ExecContext(ctx, `
			UPDATE debates SET total_votes = total_votes + 1, updated_at = NOW()
			WHERE id = $1
		`, v.DebateID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetVoteByVoter returns the live vote for (debate, voter key)
func (r *VoteRepositoryImpl) GetVoteByVoter(ctx context.Context, debateID core.DebateID, voterKey string) (*debate.Vote, error) {
	var v debate.Vote
	err := r.db.GetContext(ctx, &v, `
		SELECT id, debate_id, voter_key, user_id, session_id, side, created_at
		FROM votes WHERE debate_id = $1 AND voter_key = $2
	`, debateID, voterKey)
	if err != nil {
		return nil, orNotFound(err, core.ErrVoteNotFound)
	}
	return &v, nil
}

// CountVotesBySide returns the for/against counts for a debate
func (r *VoteRepositoryImpl) CountVotesBySide(ctx context.Context, debateID core.DebateID) (int, int, error) {
	var counts struct {
		ForVotes     int `db:"for_votes"`
		AgainstVotes int `db:"against_votes"`
	}
	err := r.db.GetContext(ctx, &counts, `
		SELECT
			COUNT(*) FILTER (WHERE side = 'for')     AS for_votes,
			COUNT(*) FILTER (WHERE side = 'against') AS against_votes
		FROM votes WHERE debate_id = $1
	`, debateID)
	if err != nil {
		return 0, 0, err
	}
	return counts.ForVotes, counts.AgainstVotes, nil
}
