package ports

import (
	"context"

	"agora/domain/core"
	"agora/domain/debate"
)

// DebateRepository defines the interface for debate data operations.
// Status updates are conditional on the expected current status so a
// transition is atomic with respect to the read that decided it.
type DebateRepository interface {
	// CreateDebate persists a new debate
	CreateDebate(ctx context.Context, d *debate.Debate) error

	// GetDebate retrieves a debate by id
	GetDebate(ctx context.Context, id core.DebateID) (*debate.Debate, error)

	// ListDebates returns debates filtered by status; empty status means all
	ListDebates(ctx context.Context, status debate.DebateStatus, limit int) ([]*debate.Debate, error)

	// TransitionStatus updates status only when the stored status still
	// equals from. Returns core.ErrInvalidTransition when the conditional
	// update matched no row.
	TransitionStatus(ctx context.Context, id core.DebateID, from, to debate.DebateStatus) error

	// CompleteDebate transitions voting -> completed and records the
	// outcome in the same conditional update
	CompleteDebate(ctx context.Context, id core.DebateID, winner debate.Side, winnerAgent *core.AgentID, totalVotes int) error
}

// StageRepository defines the interface for stage data operations
type StageRepository interface {
	// CreateStage persists a new stage; (debate, stage_order) is unique
	CreateStage(ctx context.Context, s *debate.Stage) error

	// GetStage retrieves a stage by id
	GetStage(ctx context.Context, id core.StageID) (*debate.Stage, error)

	// ListStages returns a debate's stages ordered by stage_order
	ListStages(ctx context.Context, debateID core.DebateID) ([]*debate.Stage, error)

	// UpdateStage edits name/description/order of a stage
	UpdateStage(ctx context.Context, s *debate.Stage) error

	// DeleteStage removes a stage
	DeleteStage(ctx context.Context, id core.StageID) error

	// ActivateStage demotes any currently active stage of the debate and
	// activates the given one as a single logical unit. A reader must
	// never observe two active stages. Returns core.ErrInvalidTransition
	// when the target stage is not pending.
	ActivateStage(ctx context.Context, debateID core.DebateID, stageID core.StageID) error

	// CompleteStage transitions active -> completed conditionally
	CompleteStage(ctx context.Context, stageID core.StageID) error
}

// ParticipantRepository defines the interface for participant data
// operations. Uniqueness ((debate, agent) and (debate, side)) is enforced
// by the data layer, not by a prior read.
type ParticipantRepository interface {
	// InsertParticipant inserts unless either uniqueness key already
	// exists, in which case it returns core.ErrConflict
	InsertParticipant(ctx context.Context, p *debate.Participant) error

	// ListParticipants returns all participants of a debate
	ListParticipants(ctx context.Context, debateID core.DebateID) ([]debate.Participant, error)

	// GetParticipantByAgent returns the agent's participant record for a
	// debate, or core.ErrParticipantNotFound
	GetParticipantByAgent(ctx context.Context, debateID core.DebateID, agentID core.AgentID) (*debate.Participant, error)

	// GetParticipantBySide returns the participant holding a side, or
	// core.ErrParticipantNotFound
	GetParticipantBySide(ctx context.Context, debateID core.DebateID, side debate.Side) (*debate.Participant, error)
}

// ArgumentRepository defines the interface for argument data operations
type ArgumentRepository interface {
	// InsertArgument assigns argument_order = count(debate, side)+1 and
	// inserts atomically, so orders are gapless and duplicate-free under
	// concurrency. The assigned order is written back to a.
	InsertArgument(ctx context.Context, a *debate.Argument) error

	// GetArgument retrieves an argument by id
	GetArgument(ctx context.Context, id core.ArgumentID) (*debate.Argument, error)

	// ListArguments returns a debate's arguments ordered by side and order
	ListArguments(ctx context.Context, debateID core.DebateID) ([]*debate.Argument, error)

	// CountArgumentsBySide counts published arguments for (debate, side)
	CountArgumentsBySide(ctx context.Context, debateID core.DebateID, side debate.Side) (int, error)

	// LatestStageArgument returns the agent's most recent argument in a
	// stage, or nil when there is none
	LatestStageArgument(ctx context.Context, debateID core.DebateID, stageID core.StageID, agentID core.AgentID) (*debate.Argument, error)

	// AdminEditArgument replaces content and sets the edited_by_admin flag
	AdminEditArgument(ctx context.Context, id core.ArgumentID, content string) error

	// DeleteArgument removes an argument (administrative)
	DeleteArgument(ctx context.Context, id core.ArgumentID) error
}

// VoteRepository defines the interface for vote data operations. The
// (debate, voter_key) uniqueness invariant lives in the data layer.
type VoteRepository interface {
	// InsertVote inserts unless a vote already exists for the voter key,
	// in which case it returns core.ErrConflict
	InsertVote(ctx context.Context, v *debate.Vote) error

	// UpsertVote inserts or replaces the live vote for the voter key,
	// preserving at most one live vote per identity
	UpsertVote(ctx context.Context, v *debate.Vote) error

	// GetVoteByVoter returns the live vote for (debate, voter key), or
	// core.ErrVoteNotFound
	GetVoteByVoter(ctx context.Context, debateID core.DebateID, voterKey string) (*debate.Vote, error)

	// CountVotesBySide returns the for/against counts for a debate
	CountVotesBySide(ctx context.Context, debateID core.DebateID) (forVotes, againstVotes int, err error)
}
