package postgres

import (
	"context"
	"fmt"

	"agora/domain/core"
	"agora/domain/debate"
	"agora/ports"

	"github.com/jmoiron/sqlx"
)

// DebateRepositoryImpl implements DebateRepository for PostgreSQL
type DebateRepositoryImpl struct {
	db *sqlx.DB
}

// NewDebateRepository creates a new PostgreSQL debate repository
func NewDebateRepository(db *sqlx.DB) ports.DebateRepository {
	return &DebateRepositoryImpl{db: db}
}

// CreateDebate persists a new debate
func (r *DebateRepositoryImpl) CreateDebate(ctx context.Context, d *debate.Debate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO debates (id, prompt_id, title, description, status, max_arguments_per_side,
			argument_deadline, voting_deadline, total_votes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10)
	`, d.ID, d.PromptID, d.Title, d.Description, d.Status, d.MaxArgumentsPerSide,
		d.ArgumentDeadline, d.VotingDeadline, d.CreatedAt, d.UpdatedAt)
	return mapConflict(err)
}

// GetDebate retrieves a debate by id
func (r *DebateRepositoryImpl) GetDebate(ctx context.Context, id core.DebateID) (*debate.Debate, error) {
	var d debate.Debate
	err := r.db.GetContext(ctx, &d, `
		SELECT id, prompt_id, title, description, status, max_arguments_per_side,
			argument_deadline, voting_deadline, winner_side, winner_agent_id,
			total_votes, created_at, updated_at
		FROM debates WHERE id = $1
	`, id)
	if err != nil {
		return nil, orNotFound(err, core.ErrDebateNotFound)
	}
	return &d, nil
}

// ListDebates returns debates filtered by status; empty status means all
func (r *DebateRepositoryImpl) ListDebates(ctx context.Context, status debate.DebateStatus, limit int) ([]*debate.Debate, error) {
	query := `
		SELECT id, prompt_id, title, description, status, max_arguments_per_side,
			argument_deadline, voting_deadline, winner_side, winner_agent_id,
			total_votes, created_at, updated_at
		FROM debates
	`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var debates []*debate.Debate
	if err := r.db.SelectContext(ctx, &debates, query, args...); err != nil {
		return nil, err
	}
	return debates, nil
}

// TransitionStatus performs the conditional status update. Zero matched
// rows means another request moved the debate first.
func (r *DebateRepositoryImpl) TransitionStatus(ctx context.Context, id core.DebateID, from, to debate.DebateStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debates SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetDebate(ctx, id); err != nil {
			return err
		}
		return core.NewTransitionError(string(from), string(to))
	}
	return nil
}

// CompleteDebate transitions voting -> completed and records the outcome
// in the same conditional update
func (r *DebateRepositoryImpl) CompleteDebate(ctx context.Context, id core.DebateID, winner debate.Side, winnerAgent *core.AgentID, totalVotes int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debates
		SET status = $2, winner_side = $3, winner_agent_id = $4, total_votes = $5, updated_at = NOW()
		WHERE id = $1 AND status = $6
	`, id, debate.StatusCompleted, winner, winnerAgent, totalVotes, debate.StatusVoting)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetDebate(ctx, id); err != nil {
			return err
		}
		return core.NewTransitionError(string(debate.StatusVoting), string(debate.StatusCompleted))
	}
	return nil
}
