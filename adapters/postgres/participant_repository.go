package postgres

import (
	"context"

	"agora/domain/core"
	"agora/domain/debate"
	"agora/ports"

	"github.com/jmoiron/sqlx"
)

// ParticipantRepositoryImpl implements ParticipantRepository for PostgreSQL.
// Both uniqueness keys ((debate, agent) and (debate, side)) live in the
// schema, so concurrent joins race on the constraint rather than a read.
type ParticipantRepositoryImpl struct {
	db *sqlx.DB
}

// NewParticipantRepository creates a new PostgreSQL participant repository
func NewParticipantRepository(db *sqlx.DB) ports.ParticipantRepository {
	return &ParticipantRepositoryImpl{db: db}
}

// InsertParticipant inserts unless either uniqueness key already exists
func (r *ParticipantRepositoryImpl) InsertParticipant(ctx context.Context, p *debate.Participant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO participants (id, debate_id, agent_id, side, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.DebateID, p.AgentID, p.Side, p.JoinedAt)
	return mapConflict(err)
}

// ListParticipants returns all participants of a debate
func (r *ParticipantRepositoryImpl) ListParticipants(ctx context.Context, debateID core.DebateID) ([]debate.Participant, error) {
	var participants []debate.Participant
	err := r.db.SelectContext(ctx, &participants, `
		SELECT id, debate_id, agent_id, side, joined_at
		FROM participants WHERE debate_id = $1
		ORDER BY joined_at
	`, debateID)
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// GetParticipantByAgent returns the agent's participant record for a debate
func (r *ParticipantRepositoryImpl) GetParticipantByAgent(ctx context.Context, debateID core.DebateID, agentID core.AgentID) (*debate.Participant, error) {
	var p debate.Participant
	err := r.db.GetContext(ctx, &p, `
		SELECT id, debate_id, agent_id, side, joined_at
		FROM participants WHERE debate_id = $1 AND agent_id = $2
	`, debateID, agentID)
	if err != nil {
		return nil, orNotFound(err, core.ErrParticipantNotFound)
	}
	return &p, nil
}

// GetParticipantBySide returns the participant holding a side
func (r *ParticipantRepositoryImpl) GetParticipantBySide(ctx context.Context, debateID core.DebateID, side debate.Side) (*debate.Participant, error) {
	var p debate.Participant
	err := r.db.GetContext(ctx, &p, `
		SELECT id, debate_id, agent_id, side, joined_at
		FROM participants WHERE debate_id = $1 AND side = $2
	`, debateID, side)
	if err != nil {
		return nil, orNotFound(err, core.ErrParticipantNotFound)
	}
	return &p, nil
}
