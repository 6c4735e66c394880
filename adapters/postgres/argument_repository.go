package postgres

import (
	"context"
	"database/sql"
	"errors"

	"agora/domain/core"
	"agora/domain/debate"
	"agora/ports"

	"github.com/jmoiron/sqlx"
)

// ArgumentRepositoryImpl implements ArgumentRepository for PostgreSQL
type ArgumentRepositoryImpl struct {
	db *sqlx.DB
}

// NewArgumentRepository creates a new PostgreSQL argument repository
func NewArgumentRepository(db *sqlx.DB) ports.ArgumentRepository {
	return &ArgumentRepositoryImpl{db: db}
}

// InsertArgument assigns argument_order inside a transaction that locks the
// debate row, so concurrent inserts on the same side serialize and the
// per-side sequence stays gapless.
func (r *ArgumentRepositoryImpl) InsertArgument(ctx context.Context, a *debate.Argument) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists core.DebateID
	err = tx.GetContext(ctx, &exists, `SELECT id FROM debates WHERE id = $1 FOR UPDATE`, a.DebateID)
	if err != nil {
		return orNotFound(err, core.ErrDebateNotFound)
	}

	var count int
	err = tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM arguments WHERE debate_id = $1 AND side = $2
	`, a.DebateID, a.Side)
	if err != nil {
		return err
	}
	a.ArgumentOrder = debate.NextArgumentOrder(count)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO arguments (id, debate_id, stage_id, agent_id, side, content, argument_order, model, edited_by_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, a.DebateID, a.StageID, a.AgentID, a.Side, a.Content, a.ArgumentOrder, a.Model, a.EditedByAdmin, a.CreatedAt)
	if err != nil {
		return mapConflict(err)
	}

	return tx.Commit()
}

// GetArgument retrieves an argument by id
func (r *ArgumentRepositoryImpl) GetArgument(ctx context.Context, id core.ArgumentID) (*debate.Argument, error) {
	var a debate.Argument
	err := r.db.GetContext(ctx, &a, `
		SELECT id, debate_id, stage_id, agent_id, side, content, argument_order, model, edited_by_admin, created_at
		FROM arguments WHERE id = $1
	`, id)
	if err != nil {
		return nil, orNotFound(err, core.ErrArgumentNotFound)
	}
	return &a, nil
}

// ListArguments returns a debate's arguments ordered by side and order
func (r *ArgumentRepositoryImpl) ListArguments(ctx context.Context, debateID core.DebateID) ([]*debate.Argument, error) {
	var args []*debate.Argument
	err := r.db.SelectContext(ctx, &args, `
		SELECT id, debate_id, stage_id, agent_id, side, content, argument_order, model, edited_by_admin, created_at
		FROM arguments WHERE debate_id = $1
		ORDER BY side, argument_order
	`, debateID)
	if err != nil {
		return nil, err
	}
	return args, nil
}

// CountArgumentsBySide counts published arguments for (debate, side)
func (r *ArgumentRepositoryImpl) CountArgumentsBySide(ctx context.Context, debateID core.DebateID, side debate.Side) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM arguments WHERE debate_id = $1 AND side = $2
	`, debateID, side)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// LatestStageArgument returns the agent's most recent argument in a stage,
// or nil when there is none
func (r *ArgumentRepositoryImpl) LatestStageArgument(ctx context.Context, debateID core.DebateID, stageID core.StageID, agentID core.AgentID) (*debate.Argument, error) {
	var a debate.Argument
	err := r.db.GetContext(ctx, &a, `
		SELECT id, debate_id, stage_id, agent_id, side, content, argument_order, model, edited_by_admin, created_at
		FROM arguments
		WHERE debate_id = $1 AND stage_id = $2 AND agent_id = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, debateID, stageID, agentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AdminEditArgument replaces content and sets the edited_by_admin flag
func (r *ArgumentRepositoryImpl) AdminEditArgument(ctx context.Context, id core.ArgumentID, content string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE arguments SET content = $2, edited_by_admin = TRUE
		WHERE id = $1
	`, id, content)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.ErrArgumentNotFound
	}
	return nil
}

// DeleteArgument removes an argument
func (r *ArgumentRepositoryImpl) DeleteArgument(ctx context.Context, id core.ArgumentID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM arguments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.ErrArgumentNotFound
	}
	return nil
}
