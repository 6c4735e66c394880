package postgres

import (
	"context"

	"agora/domain/core"
	"agora/domain/debate"
	"agora/ports"

	"github.com/jmoiron/sqlx"
)

// StageRepositoryImpl implements StageRepository for PostgreSQL
type StageRepositoryImpl struct {
	db *sqlx.DB
}

// NewStageRepository creates a new PostgreSQL stage repository
func NewStageRepository(db *sqlx.DB) ports.StageRepository {
	return &StageRepositoryImpl{db: db}
}

// CreateStage persists a new stage; (debate_id, stage_order) is unique
func (r *StageRepositoryImpl) CreateStage(ctx context.Context, s *debate.Stage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stages (id, debate_id, name, description, stage_order, status, start_at, end_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.DebateID, s.Name, s.Description, s.StageOrder, s.Status, s.StartAt, s.EndAt, s.CreatedAt)
	return mapConflict(err)
}

// GetStage retrieves a stage by id
func (r *StageRepositoryImpl) GetStage(ctx context.Context, id core.StageID) (*debate.Stage, error) {
	var s debate.Stage
	err := r.db.GetContext(ctx, &s, `
		SELECT id, debate_id, name, description, stage_order, status, start_at, end_at, created_at
		FROM stages WHERE id = $1
	`, id)
	if err != nil {
		return nil, orNotFound(err, core.ErrStageNotFound)
	}
	return &s, nil
}

// ListStages returns a debate's stages ordered by stage_order
func (r *StageRepositoryImpl) ListStages(ctx context.Context, debateID core.DebateID) ([]*debate.Stage, error) {
	var stages []*debate.Stage
	err := r.db.SelectContext(ctx, &stages, `
		SELECT id, debate_id, name, description, stage_order, status, start_at, end_at, created_at
		FROM stages WHERE debate_id = $1
		ORDER BY stage_order
	`, debateID)
	if err != nil {
		return nil, err
	}
	return stages, nil
}

// UpdateStage edits name/description/order of a stage
func (r *StageRepositoryImpl) UpdateStage(ctx context.Context, s *debate.Stage) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stages SET name = $2, description = $3, stage_order = $4
		WHERE id = $1
	`, s.ID, s.Name, s.Description, s.StageOrder)
	if err != nil {
		return mapConflict(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.ErrStageNotFound
	}
	return nil
}

// DeleteStage removes a stage
func (r *StageRepositoryImpl) DeleteStage(ctx context.Context, id core.StageID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.ErrStageNotFound
	}
	return nil
}

// ActivateStage demotes any active stage of the debate and activates the
// target inside one transaction, so no reader observes two active stages.
func (r *StageRepositoryImpl) ActivateStage(ctx context.Context, debateID core.DebateID, stageID core.StageID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE stages SET status = $2, start_at = NULL
		WHERE debate_id = $1 AND status = $3
	`, debateID, debate.StagePending, debate.StageActive)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE stages SET status = $3, start_at = NOW()
		WHERE id = $1 AND debate_id = $2 AND status = $4
	`, stageID, debateID, debate.StageActive, debate.StagePending)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// target missing or not pending; rollback restores the demoted stage
		var status debate.StageStatus
		err := tx.GetContext(ctx, &status, `SELECT status FROM stages WHERE id = $1 AND debate_id = $2`, stageID, debateID)
		if err != nil {
			return orNotFound(err, core.ErrStageNotFound)
		}
		return core.NewTransitionError(string(status), string(debate.StageActive))
	}

	return tx.Commit()
}

// CompleteStage transitions active -> completed conditionally
func (r *StageRepositoryImpl) CompleteStage(ctx context.Context, stageID core.StageID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stages SET status = $2, end_at = NOW()
		WHERE id = $1 AND status = $3
	`, stageID, debate.StageCompleted, debate.StageActive)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var status debate.StageStatus
		err := r.db.GetContext(ctx, &status, `SELECT status FROM stages WHERE id = $1`, stageID)
		if err != nil {
			return orNotFound(err, core.ErrStageNotFound)
		}
		return core.NewTransitionError(string(status), string(debate.StageCompleted))
	}
	return nil
}
