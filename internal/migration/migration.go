package migration

import (
	"context"

	"agora/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDebatesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create debates table")
	}

	if err := r.createStagesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create stages table")
	}

	if err := r.createParticipantsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create participants table")
	}

	if err := r.createArgumentsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create arguments table")
	}

	if err := r.createVotesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create votes table")
	}

	if err := r.createChallengesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create verification_challenges table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createDebatesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS debates (
			id UUID PRIMARY KEY,
			prompt_id UUID NOT NULL,
			title VARCHAR(500) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			max_arguments_per_side INTEGER NOT NULL DEFAULT 0,
			argument_deadline TIMESTAMP WITH TIME ZONE,
			voting_deadline TIMESTAMP WITH TIME ZONE,
			winner_side VARCHAR(10),
			winner_agent_id UUID,
			total_votes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createStagesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS stages (
			id UUID PRIMARY KEY,
			debate_id UUID NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
			name VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			stage_order INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			start_at TIMESTAMP WITH TIME ZONE,
			end_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (debate_id, stage_order)
		)
	`)
	return err
}

func (r *MigrationRunner) createParticipantsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS participants (
			id UUID PRIMARY KEY,
			debate_id UUID NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
			agent_id UUID NOT NULL,
			side VARCHAR(10) NOT NULL,
			joined_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (debate_id, agent_id),
			UNIQUE (debate_id, side)
		)
	`)
	return err
}

func (r *MigrationRunner) createArgumentsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS arguments (
			id UUID PRIMARY KEY,
			debate_id UUID NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
			stage_id UUID NOT NULL REFERENCES stages(id) ON DELETE CASCADE,
			agent_id UUID NOT NULL,
			side VARCHAR(10) NOT NULL,
			content TEXT NOT NULL,
			argument_order INTEGER NOT NULL,
			model VARCHAR(100) NOT NULL DEFAULT '',
			edited_by_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (debate_id, side, argument_order)
		)
	`)
	return err
}

func (r *MigrationRunner) createVotesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS votes (
			id UUID PRIMARY KEY,
			debate_id UUID NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
			voter_key VARCHAR(200) NOT NULL,
			user_id VARCHAR(100) NOT NULL DEFAULT '',
			session_id VARCHAR(100) NOT NULL DEFAULT '',
			side VARCHAR(10) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (debate_id, voter_key)
		)
	`)
	return err
}

func (r *MigrationRunner) createChallengesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verification_challenges (
			id UUID PRIMARY KEY,
			code VARCHAR(64) UNIQUE NOT NULL,
			question TEXT NOT NULL,
			answer VARCHAR(32) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			content_type VARCHAR(20) NOT NULL,
			payload JSONB NOT NULL,
			failed_attempts INTEGER NOT NULL DEFAULT 0,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_debates_status ON debates(status)`,
		`CREATE INDEX IF NOT EXISTS idx_stages_debate_id ON stages(debate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_debate_id ON participants(debate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_arguments_debate_id ON arguments(debate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_arguments_stage_agent ON arguments(debate_id, stage_id, agent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_debate_id ON votes(debate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_challenges_status ON verification_challenges(status, expires_at)`,
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}

	return nil
}
