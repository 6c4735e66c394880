package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"agora/domain/core"
	"agora/domain/debate"
	"agora/domain/tally"
	"agora/ports"
)

// DebateService owns the administrative lifecycle: creating debates and
// stages, activating stages, opening voting and completing with a winner.
type DebateService struct {
	debates      ports.DebateRepository
	stages       ports.StageRepository
	participants ports.ParticipantRepository
	arguments    ports.ArgumentRepository
	votes        ports.VoteRepository
	clock        ports.Clock

	// strictWinner rejects an administrator-supplied winner that
	// contradicts a decisive tally
	strictWinner bool
}

// NewDebateService creates the admin lifecycle service
func NewDebateService(
	debates ports.DebateRepository,
	stages ports.StageRepository,
	participants ports.ParticipantRepository,
	arguments ports.ArgumentRepository,
	votes ports.VoteRepository,
	clock ports.Clock,
	strictWinner bool,
) *DebateService {
	return &DebateService{
		debates:      debates,
		stages:       stages,
		participants: participants,
		arguments:    arguments,
		votes:        votes,
		clock:        clock,
		strictWinner: strictWinner,
	}
}

// CreateDebateRequest carries the fields an administrator sets
type CreateDebateRequest struct {
	PromptID            core.ID
	Title               string
	Description         string
	MaxArgumentsPerSide int
	ArgumentDeadline    *time.Time
	VotingDeadline      *time.Time
}

// CreateDebate creates a pending debate from a prompt
func (s *DebateService) CreateDebate(ctx context.Context, req CreateDebateRequest) (*debate.Debate, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, core.NewValidationError("title", "cannot be empty")
	}
	if req.MaxArgumentsPerSide < 0 {
		return nil, core.NewValidationError("max_arguments_per_side", "cannot be negative")
	}
	d := debate.NewDebate(req.PromptID, req.Title, req.Description, req.MaxArgumentsPerSide, s.clock.Now())
	d.ArgumentDeadline = req.ArgumentDeadline
	d.VotingDeadline = req.VotingDeadline
	if err := s.debates.CreateDebate(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDebate retrieves a debate by id
func (s *DebateService) GetDebate(ctx context.Context, id core.DebateID) (*debate.Debate, error) {
	return s.debates.GetDebate(ctx, id)
}

// ListDebates lists debates, optionally filtered by status
func (s *DebateService) ListDebates(ctx context.Context, status debate.DebateStatus, limit int) ([]*debate.Debate, error) {
	return s.debates.ListDebates(ctx, status, limit)
}

// ListArguments returns a debate's published arguments
func (s *DebateService) ListArguments(ctx context.Context, debateID core.DebateID) ([]*debate.Argument, error) {
	if _, err := s.debates.GetDebate(ctx, debateID); err != nil {
		return nil, err
	}
	return s.arguments.ListArguments(ctx, debateID)
}

// AddStage creates a stage. The (debate, stage_order) uniqueness lives in
// the data layer and surfaces as a conflict.
func (s *DebateService) AddStage(ctx context.Context, debateID core.DebateID, name, description string, order int) (*debate.Stage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, core.NewValidationError("name", "cannot be empty")
	}
	if order < 1 {
		return nil, core.NewValidationError("stage_order", "must be at least 1")
	}
	if _, err := s.debates.GetDebate(ctx, debateID); err != nil {
		return nil, err
	}
	st := debate.NewStage(debateID, name, description, order, s.clock.Now())
	if err := s.stages.CreateStage(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// ListStages returns a debate's stages in order
func (s *DebateService) ListStages(ctx context.Context, debateID core.DebateID) ([]*debate.Stage, error) {
	return s.stages.ListStages(ctx, debateID)
}

// UpdateStage edits a stage's name, description and order
func (s *DebateService) UpdateStage(ctx context.Context, stageID core.StageID, name, description string, order int) (*debate.Stage, error) {
	st, err := s.stages.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		st.Name = name
	}
	st.Description = description
	if order >= 1 {
		st.StageOrder = order
	}
	if err := s.stages.UpdateStage(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteStage removes a stage; an active stage cannot be deleted
func (s *DebateService) DeleteStage(ctx context.Context, stageID core.StageID) error {
	st, err := s.stages.GetStage(ctx, stageID)
	if err != nil {
		return err
	}
	if st.Status == debate.StageActive {
		return core.NewEligibilityDenied("cannot delete the active stage")
	}
	return s.stages.DeleteStage(ctx, stageID)
}

// ActivateStage activates a stage, demoting any other active stage of the
// debate in the same logical operation
func (s *DebateService) ActivateStage(ctx context.Context, debateID core.DebateID, stageID core.StageID) error {
	st, err := s.stages.GetStage(ctx, stageID)
	if err != nil {
		return err
	}
	if st.DebateID != debateID {
		return core.ErrStageNotFound
	}
	return s.stages.ActivateStage(ctx, debateID, stageID)
}

// CompleteStage marks the active stage completed
func (s *DebateService) CompleteStage(ctx context.Context, stageID core.StageID) error {
	return s.stages.CompleteStage(ctx, stageID)
}

// OpenVoting is the explicit administrative transition active -> voting.
// Rejected when the debate is not currently active.
func (s *DebateService) OpenVoting(ctx context.Context, debateID core.DebateID) (*debate.Debate, error) {
	d, err := s.debates.GetDebate(ctx, debateID)
	if err != nil {
		return nil, err
	}
	if err := d.OpenVoting(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.debates.TransitionStatus(ctx, debateID, debate.StatusActive, debate.StatusVoting); err != nil {
		return nil, err
	}
	return d, nil
}

// CompleteDebate resolves the winner from the tally (or the supplied
// override) and completes the debate. A tied tally with no override is
// rejected with a typed error, never silently defaulted.
func (s *DebateService) CompleteDebate(ctx context.Context, debateID core.DebateID, override *debate.Side) (*debate.Debate, error) {
	d, err := s.debates.GetDebate(ctx, debateID)
	if err != nil {
		return nil, err
	}
	if !d.CanTransition(debate.StatusCompleted) {
		return nil, core.NewTransitionError(string(d.Status), string(debate.StatusCompleted))
	}

	forVotes, againstVotes, err := s.votes.CountVotesBySide(ctx, debateID)
	if err != nil {
		return nil, err
	}
	result := tally.Compute(forVotes, againstVotes)
	winner, err := tally.ResolveWinner(result, override, s.strictWinner)
	if err != nil {
		return nil, err
	}

	var winnerAgent *core.AgentID
	p, err := s.participants.GetParticipantBySide(ctx, debateID, winner)
	switch {
	case err == nil:
		winnerAgent = &p.AgentID
	case errors.Is(err, core.ErrNotFound):
		// winning side never had a participant
	default:
		return nil, err
	}

	if err := s.debates.CompleteDebate(ctx, debateID, winner, winnerAgent, result.TotalVotes); err != nil {
		return nil, err
	}
	if err := d.Complete(winner, winnerAgent, result.TotalVotes, s.clock.Now()); err != nil {
		return nil, err
	}
	return d, nil
}

// EditArgument replaces an argument's content administratively and flags it
func (s *DebateService) EditArgument(ctx context.Context, id core.ArgumentID, content string) error {
	if strings.TrimSpace(content) == "" {
		return core.NewValidationError("content", "cannot be empty")
	}
	return s.arguments.AdminEditArgument(ctx, id, content)
}

// DeleteArgument removes an argument administratively
func (s *DebateService) DeleteArgument(ctx context.Context, id core.ArgumentID) error {
	return s.arguments.DeleteArgument(ctx, id)
}
