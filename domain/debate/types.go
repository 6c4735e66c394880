package debate

import (
	"fmt"
	"time"

	"agora/domain/core"
)

// Side is one of the two debate positions
type Side string

const (
	SideFor     Side = "for"
	SideAgainst Side = "against"
)

// ParseSide parses a string into a Side
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideFor, SideAgainst:
		return Side(s), nil
	default:
		return "", core.NewValidationError("side", fmt.Sprintf("must be %q or %q", SideFor, SideAgainst))
	}
}

// Opposite returns the opposing side
func (s Side) Opposite() Side {
	if s == SideFor {
		return SideAgainst
	}
	return SideFor
}

// DebateStatus enumerates the lifecycle states of a debate
type DebateStatus string

const (
	StatusPending   DebateStatus = "pending"
	StatusActive    DebateStatus = "active"
	StatusVoting    DebateStatus = "voting"
	StatusCompleted DebateStatus = "completed"
)

// StageStatus enumerates the lifecycle states of a stage
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageActive    StageStatus = "active"
	StageCompleted StageStatus = "completed"
)

// Debate is the root entity: one prompt argued across ordered stages,
// with humans voting on a winner.
type Debate struct {
	ID                  core.DebateID `json:"id" db:"id"`
	PromptID            core.ID       `json:"prompt_id" db:"prompt_id"`
	Title               string        `json:"title" db:"title"`
	Description         string        `json:"description" db:"description"`
	Status              DebateStatus  `json:"status" db:"status"`
	MaxArgumentsPerSide int           `json:"max_arguments_per_side" db:"max_arguments_per_side"`
	ArgumentDeadline    *time.Time    `json:"argument_deadline,omitempty" db:"argument_deadline"`
	VotingDeadline      *time.Time    `json:"voting_deadline,omitempty" db:"voting_deadline"`
	WinnerSide          *Side         `json:"winner_side,omitempty" db:"winner_side"`
	WinnerAgentID       *core.AgentID `json:"winner_agent_id,omitempty" db:"winner_agent_id"`
	TotalVotes          int           `json:"total_votes" db:"total_votes"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}

// NewDebate creates a pending debate from a prompt
func NewDebate(promptID core.ID, title, description string, maxArgumentsPerSide int, now time.Time) *Debate {
	return &Debate{
		ID:                  core.DebateID(core.NewID()),
		PromptID:            promptID,
		Title:               title,
		Description:         description,
		Status:              StatusPending,
		MaxArgumentsPerSide: maxArgumentsPerSide,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Stage is a named, ordered phase of a debate (opening, rebuttal, closing).
// At most one stage per debate is active at any observable point.
type Stage struct {
	ID          core.StageID  `json:"id" db:"id"`
	DebateID    core.DebateID `json:"debate_id" db:"debate_id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description,omitempty" db:"description"`
	StageOrder  int           `json:"stage_order" db:"stage_order"`
	Status      StageStatus   `json:"status" db:"status"`
	StartAt     *time.Time    `json:"start_at,omitempty" db:"start_at"`
	EndAt       *time.Time    `json:"end_at,omitempty" db:"end_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// NewStage creates a pending stage for a debate
func NewStage(debateID core.DebateID, name, description string, stageOrder int, now time.Time) *Stage {
	return &Stage{
		ID:          core.StageID(core.NewID()),
		DebateID:    debateID,
		Name:        name,
		Description: description,
		StageOrder:  stageOrder,
		Status:      StagePending,
		CreatedAt:   now,
	}
}

// Participant binds one agent to one side of one debate. A side holds at
// most one participant, and an agent appears at most once per debate.
type Participant struct {
	ID       core.ParticipantID `json:"id" db:"id"`
	DebateID core.DebateID      `json:"debate_id" db:"debate_id"`
	AgentID  core.AgentID       `json:"agent_id" db:"agent_id"`
	Side     Side               `json:"side" db:"side"`
	JoinedAt time.Time          `json:"joined_at" db:"joined_at"`
}

// NewParticipant creates a participant record
func NewParticipant(debateID core.DebateID, agentID core.AgentID, side Side, now time.Time) *Participant {
	return &Participant{
		ID:       core.ParticipantID(core.NewID()),
		DebateID: debateID,
		AgentID:  agentID,
		Side:     side,
		JoinedAt: now,
	}
}

// Argument is agent-authored content published to one side of a debate.
// ArgumentOrder is 1-based and scoped to (debate, side), with no gaps.
type Argument struct {
	ID            core.ArgumentID `json:"id" db:"id"`
	DebateID      core.DebateID   `json:"debate_id" db:"debate_id"`
	StageID       core.StageID    `json:"stage_id" db:"stage_id"`
	AgentID       core.AgentID    `json:"agent_id" db:"agent_id"`
	Side          Side            `json:"side" db:"side"`
	Content       string          `json:"content" db:"content"`
	ArgumentOrder int             `json:"argument_order" db:"argument_order"`
	Model         string          `json:"model,omitempty" db:"model"`
	EditedByAdmin bool            `json:"edited_by_admin" db:"edited_by_admin"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// VoterIdentity is the uniqueness key for votes: the authenticated user id
// if present, else the anonymous session id. Exactly one must be set.
type VoterIdentity struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Valid reports whether exactly one of user id or session id is set
func (v VoterIdentity) Valid() bool {
	return (v.UserID != "") != (v.SessionID != "")
}

// Key returns the canonical uniqueness key for this identity
func (v VoterIdentity) Key() string {
	if v.UserID != "" {
		return "user:" + v.UserID
	}
	return "session:" + v.SessionID
}

// Vote is a single human vote on a debate outcome
type Vote struct {
	ID        core.VoteID   `json:"id" db:"id"`
	DebateID  core.DebateID `json:"debate_id" db:"debate_id"`
	VoterKey  string        `json:"voter_key" db:"voter_key"`
	UserID    string        `json:"user_id,omitempty" db:"user_id"`
	SessionID string        `json:"session_id,omitempty" db:"session_id"`
	Side      Side          `json:"side" db:"side"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// NewVote creates a vote keyed by voter identity
func NewVote(debateID core.DebateID, voter VoterIdentity, side Side, now time.Time) *Vote {
	return &Vote{
		ID:        core.VoteID(core.NewID()),
		DebateID:  debateID,
		VoterKey:  voter.Key(),
		UserID:    voter.UserID,
		SessionID: voter.SessionID,
		Side:      side,
		CreatedAt: now,
	}
}
