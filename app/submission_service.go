package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agora/domain/challenge"
	"agora/domain/core"
	"agora/domain/debate"
	"agora/domain/tally"
	"agora/ports"
)

// SubmissionService coordinates eligibility, the challenge gate and the
// state machine for the three submission kinds: join, argument, vote.
// Denials carry their reason verbatim and leave no side effects.
type SubmissionService struct {
	debates      ports.DebateRepository
	stages       ports.StageRepository
	participants ports.ParticipantRepository
	arguments    ports.ArgumentRepository
	votes        ports.VoteRepository
	challenges   ports.ChallengeRepository
	engine       *challenge.Engine
	clock        ports.Clock
	policy       debate.Policy

	// gateVotes forces anonymous votes through the challenge gate too
	gateVotes bool
}

// NewSubmissionService creates the submission orchestrator
func NewSubmissionService(
	debates ports.DebateRepository,
	stages ports.StageRepository,
	participants ports.ParticipantRepository,
	arguments ports.ArgumentRepository,
	votes ports.VoteRepository,
	challenges ports.ChallengeRepository,
	engine *challenge.Engine,
	clock ports.Clock,
	policy debate.Policy,
) *SubmissionService {
	return &SubmissionService{
		debates:      debates,
		stages:       stages,
		participants: participants,
		arguments:    arguments,
		votes:        votes,
		challenges:   challenges,
		engine:       engine,
		clock:        clock,
		policy:       policy,
	}
}

// GateVotes routes vote submissions through the challenge gate as well
func (s *SubmissionService) GateVotes(enabled bool) {
	s.gateVotes = enabled
}

// Join claims a side of a debate for an agent. The first successful join
// activates a pending debate.
func (s *SubmissionService) Join(ctx context.Context, debateID core.DebateID, ident ports.Identity, side debate.Side) (*debate.Participant, error) {
	d, err := s.debates.GetDebate(ctx, debateID)
	if err != nil {
		return nil, err
	}
	existing, err := s.participants.ListParticipants(ctx, debateID)
	if err != nil {
		return nil, err
	}

	dec := debate.CanJoin(debate.JoinSnapshot{
		Debate:       d,
		Participants: existing,
		AgentID:      ident.AgentID(),
		Banned:       ident.Banned,
		Side:         side,
	})
	if err := dec.Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p := debate.NewParticipant(debateID, ident.AgentID(), side, now)
	if err := s.participants.InsertParticipant(ctx, p); err != nil {
		// A concurrent join won the race; the data-layer constraint is
		// the authority, not our earlier read.
		return nil, err
	}

	if d.Status == debate.StatusPending {
		err := s.debates.TransitionStatus(ctx, debateID, debate.StatusPending, debate.StatusActive)
		if err != nil && !errors.Is(err, core.ErrInvalidTransition) {
			return nil, err
		}
	}
	return p, nil
}

// SubmissionResult is the outcome of a submission request: either content
// published immediately, or a pending verification ticket.
type SubmissionResult struct {
	Argument *debate.Argument  `json:"argument,omitempty"`
	Vote     *debate.Vote      `json:"vote,omitempty"`
	Pending  *challenge.Ticket `json:"pending,omitempty"`
}

// argumentPayload is the serialized draft a challenge gates. The challenge
// owns this copy; nothing can mutate it between issue and verify.
type argumentPayload struct {
	DebateID core.DebateID `json:"debate_id"`
	StageID  core.StageID  `json:"stage_id"`
	AgentID  core.AgentID  `json:"agent_id"`
	Side     debate.Side   `json:"side"`
	Content  string        `json:"content"`
	Model    string        `json:"model,omitempty"`
}

type votePayload struct {
	DebateID core.DebateID        `json:"debate_id"`
	Voter    debate.VoterIdentity `json:"voter"`
	Side     debate.Side          `json:"side"`
}

// SubmitArgument checks eligibility and, when eligible, issues a challenge
// gating publication. Agent content is never published without a verified
// challenge.
func (s *SubmissionService) SubmitArgument(ctx context.Context, debateID core.DebateID, stageID core.StageID, ident ports.Identity, content, model string) (*SubmissionResult, error) {
	snap, err := s.submitSnapshot(ctx, debateID, stageID, ident.AgentID(), len(content))
	if err != nil {
		return nil, err
	}
	if err := debate.CanSubmitArgument(*snap, s.clock.Now()).Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(argumentPayload{
		DebateID: debateID,
		StageID:  stageID,
		AgentID:  ident.AgentID(),
		Side:     snap.Participant.Side,
		Content:  content,
		Model:    model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize argument payload: %w", err)
	}

	ch := s.engine.Issue(challenge.ContentArgument, payload, s.clock.Now())
	if err := s.challenges.InsertChallenge(ctx, ch); err != nil {
		return nil, err
	}
	ticket := ch.Ticket()
	return &SubmissionResult{Pending: &ticket}, nil
}

// submitSnapshot loads the entity state an argument decision needs
func (s *SubmissionService) submitSnapshot(ctx context.Context, debateID core.DebateID, stageID core.StageID, agentID core.AgentID, contentLen int) (*debate.SubmitSnapshot, error) {
	d, err := s.debates.GetDebate(ctx, debateID)
	if err != nil {
		return nil, err
	}
	stage, err := s.stages.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if stage.DebateID != debateID {
		return nil, core.ErrStageNotFound
	}

	snap := debate.SubmitSnapshot{
		Debate:        d,
		Stage:         stage,
		ContentLength: contentLen,
		Policy:        s.policy,
	}

	p, err := s.participants.GetParticipantByAgent(ctx, debateID, agentID)
	switch {
	case err == nil:
		snap.Participant = p
	case errors.Is(err, core.ErrNotFound):
		// not a participant; the rule produces the denial reason
	default:
		return nil, err
	}

	if snap.Participant != nil {
		count, err := s.arguments.CountArgumentsBySide(ctx, debateID, snap.Participant.Side)
		if err != nil {
			return nil, err
		}
		snap.SideArgumentCount = count

		latest, err := s.arguments.LatestStageArgument(ctx, debateID, stageID, agentID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			t := latest.CreatedAt
			snap.LastStageSubmission = &t
		}
	}
	return &snap, nil
}

// VerifyResult identifies the content a verified challenge published
type VerifyResult struct {
	ContentType challenge.ContentType `json:"content_type"`
	ArgumentID  core.ArgumentID       `json:"argument_id,omitempty"`
	VoteID      core.VoteID           `json:"vote_id,omitempty"`
}

// Verify consumes a challenge exactly once. Expiry is evaluated lazily; a
// wrong answer does not consume the challenge but bumps the fraud counter,
// and the count is surfaced in the denial. Of concurrent correct answers
// only the caller that performs the pending -> verified transition applies
// the payload; the rest get AlreadyProcessed.
func (s *SubmissionService) Verify(ctx context.Context, code, answer string) (*VerifyResult, error) {
	ch, err := s.challenges.GetChallengeByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	switch ch.Evaluate(answer, s.clock.Now()) {
	case challenge.OutcomeExpired:
		if err := s.challenges.MarkExpired(ctx, code); err != nil {
			return nil, err
		}
		return nil, core.ErrChallengeExpired
	case challenge.OutcomeAlreadyProcessed:
		return nil, core.ErrAlreadyProcessed
	case challenge.OutcomeWrongAnswer:
		attempts, err := s.challenges.IncrementFailedAttempts(ctx, code)
		if err != nil {
			return nil, err
		}
		return nil, core.NewEligibilityDenied(fmt.Sprintf("incorrect answer (%d failed attempts)", attempts))
	}

	won, err := s.challenges.MarkVerified(ctx, code)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, core.ErrAlreadyProcessed
	}
	return s.applyPayload(ctx, ch)
}

// applyPayload publishes the content a verified challenge carried. The
// narrowed eligibility check runs against the now-current snapshot: the
// state may have moved since issuance, and stale content must not land.
func (s *SubmissionService) applyPayload(ctx context.Context, ch *challenge.Challenge) (*VerifyResult, error) {
	switch ch.ContentType {
	case challenge.ContentArgument:
		var p argumentPayload
		if err := json.Unmarshal(ch.Payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode argument payload: %w", err)
		}
		snap, err := s.submitSnapshot(ctx, p.DebateID, p.StageID, p.AgentID, len(p.Content))
		if err != nil {
			return nil, err
		}
		if dec := debate.CanSubmitArgument(*snap, s.clock.Now()); !dec.Allowed {
			return nil, core.NewStateChangedError(dec.Reason)
		}
		arg := &debate.Argument{
			ID:        core.ArgumentID(core.NewID()),
			DebateID:  p.DebateID,
			StageID:   p.StageID,
			AgentID:   p.AgentID,
			Side:      p.Side,
			Content:   p.Content,
			Model:     p.Model,
			CreatedAt: s.clock.Now(),
		}
		if err := s.arguments.InsertArgument(ctx, arg); err != nil {
			return nil, err
		}
		return &VerifyResult{ContentType: challenge.ContentArgument, ArgumentID: arg.ID}, nil

	case challenge.ContentVote:
		var p votePayload
		if err := json.Unmarshal(ch.Payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode vote payload: %w", err)
		}
		d, err := s.debates.GetDebate(ctx, p.DebateID)
		if err != nil {
			return nil, err
		}
		existing, err := s.liveVote(ctx, p.DebateID, p.Voter)
		if err != nil {
			return nil, err
		}
		dec := debate.CanCastVote(debate.VoteSnapshot{Debate: d, ExistingVote: existing, Voter: p.Voter, Policy: s.policy}, s.clock.Now())
		if !dec.Allowed {
			return nil, core.NewStateChangedError(dec.Reason)
		}
		v, err := s.applyVote(ctx, p.DebateID, p.Voter, p.Side, existing)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{ContentType: challenge.ContentVote, VoteID: v.ID}, nil

	default:
		return nil, fmt.Errorf("unknown challenge content type %q", ch.ContentType)
	}
}

// Cancel abandons a pending challenge early: pending -> expired. Issued
// challenges otherwise simply lapse after their TTL.
func (s *SubmissionService) Cancel(ctx context.Context, code string) error {
	if _, err := s.challenges.GetChallengeByCode(ctx, code); err != nil {
		return err
	}
	return s.challenges.MarkExpired(ctx, code)
}

// CastVote records a human vote, at most one live vote per voter identity.
// With vote gating on, the vote is held behind a challenge instead.
func (s *SubmissionService) CastVote(ctx context.Context, debateID core.DebateID, voter debate.VoterIdentity, side debate.Side) (*SubmissionResult, error) {
	d, err := s.debates.GetDebate(ctx, debateID)
	if err != nil {
		return nil, err
	}
	existing, err := s.liveVote(ctx, debateID, voter)
	if err != nil {
		return nil, err
	}

	dec := debate.CanCastVote(debate.VoteSnapshot{Debate: d, ExistingVote: existing, Voter: voter, Policy: s.policy}, s.clock.Now())
	if err := dec.Err(); err != nil {
		return nil, err
	}

	if s.gateVotes {
		payload, err := json.Marshal(votePayload{DebateID: debateID, Voter: voter, Side: side})
		if err != nil {
			return nil, fmt.Errorf("failed to serialize vote payload: %w", err)
		}
		ch := s.engine.Issue(challenge.ContentVote, payload, s.clock.Now())
		if err := s.challenges.InsertChallenge(ctx, ch); err != nil {
			return nil, err
		}
		ticket := ch.Ticket()
		return &SubmissionResult{Pending: &ticket}, nil
	}

	v, err := s.applyVote(ctx, debateID, voter, side, existing)
	if err != nil {
		return nil, err
	}
	return &SubmissionResult{Vote: v}, nil
}

func (s *SubmissionService) liveVote(ctx context.Context, debateID core.DebateID, voter debate.VoterIdentity) (*debate.Vote, error) {
	v, err := s.votes.GetVoteByVoter(ctx, debateID, voter.Key())
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// applyVote writes the vote. Vote changes are update-in-place on the same
// voter key, so the uniqueness invariant holds at every point.
func (s *SubmissionService) applyVote(ctx context.Context, debateID core.DebateID, voter debate.VoterIdentity, side debate.Side, existing *debate.Vote) (*debate.Vote, error) {
	v := debate.NewVote(debateID, voter, side, s.clock.Now())
	if existing != nil && s.policy.AllowVoteChanges {
		v.ID = existing.ID
		if err := s.votes.UpsertVote(ctx, v); err != nil {
			return nil, err
		}
		return v, nil
	}
	if err := s.votes.InsertVote(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Tally aggregates the current vote counts for a debate. Reused for live
// previews and completion-time outcome resolution.
func (s *SubmissionService) Tally(ctx context.Context, debateID core.DebateID) (tally.Result, error) {
	if _, err := s.debates.GetDebate(ctx, debateID); err != nil {
		return tally.Result{}, err
	}
	forVotes, againstVotes, err := s.votes.CountVotesBySide(ctx, debateID)
	if err != nil {
		return tally.Result{}, err
	}
	return tally.Compute(forVotes, againstVotes), nil
}
