package debate

import (
	"fmt"
	"time"

	"agora/domain/core"
)

// Policy holds the configurable eligibility bounds. The 500-3000 character
// window is the public API default, not a domain constant.
type Policy struct {
	MinArgumentChars          int
	MaxArgumentChars          int
	MaxArgumentsPerSide       int
	AllowVotesAfterCompletion bool
	AllowVoteChanges          bool
}

// DefaultPolicy returns the public API bounds
func DefaultPolicy() Policy {
	return Policy{
		MinArgumentChars:    500,
		MaxArgumentChars:    3000,
		MaxArgumentsPerSide: 5,
	}
}

// Decision is the outcome of an eligibility rule. Denials always carry a
// human-readable reason that callers relay verbatim.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with its reason
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Denyf returns a denying decision with a formatted reason
func Denyf(format string, args ...interface{}) Decision {
	return Deny(fmt.Sprintf(format, args...))
}

// Err converts a denial into a typed domain error, nil when allowed
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return core.NewEligibilityDenied(d.Reason)
}

// JoinSnapshot is the entity state a join decision is evaluated against
type JoinSnapshot struct {
	Debate       *Debate
	Participants []Participant
	AgentID      core.AgentID
	Banned       bool
	Side         Side
}

// CanJoin decides whether an agent may claim a side of a debate.
// Joining is open while the debate is pending or active; each agent joins
// at most once, and each side holds at most one participant.
func CanJoin(s JoinSnapshot) Decision {
	if s.Banned {
		return Deny("agent is banned or flagged")
	}
	if s.Debate.Status != StatusPending && s.Debate.Status != StatusActive {
		return Denyf("debate is %s and no longer accepting participants", s.Debate.Status)
	}
	for _, p := range s.Participants {
		if p.AgentID == s.AgentID {
			return Denyf("agent already joined this debate on side %q", p.Side)
		}
	}
	for _, p := range s.Participants {
		if p.Side == s.Side {
			return Denyf("side %q already has a participant", s.Side)
		}
	}
	return Allow()
}

// SubmitSnapshot is the entity state an argument submission is evaluated
// against. LastStageSubmission is the creation time of the actor's most
// recent argument in the target stage, nil when there is none.
type SubmitSnapshot struct {
	Debate              *Debate
	Stage               *Stage
	Participant         *Participant
	SideArgumentCount   int
	LastStageSubmission *time.Time
	ContentLength       int
	Policy              Policy
}

// CanSubmitArgument decides whether a participant may submit an argument.
// Enforces debate and stage status, membership, the per-side cap, the
// one-argument-per-stage-per-UTC-day rule, and content bounds.
func CanSubmitArgument(s SubmitSnapshot, now time.Time) Decision {
	if s.Debate.Status != StatusActive {
		return Denyf("debate is %s, arguments are only accepted while active", s.Debate.Status)
	}
	if s.Stage.Status != StageActive {
		return Denyf("stage %q is %s, arguments are only accepted into the active stage", s.Stage.Name, s.Stage.Status)
	}
	if s.Debate.ArgumentDeadline != nil && now.After(*s.Debate.ArgumentDeadline) {
		return Deny("argument submission deadline has passed")
	}
	if s.Participant == nil {
		return Deny("agent is not a participant in this debate")
	}
	maxPerSide := s.Debate.MaxArgumentsPerSide
	if maxPerSide <= 0 {
		maxPerSide = s.Policy.MaxArgumentsPerSide
	}
	if s.SideArgumentCount >= maxPerSide {
		return Denyf("argument limit of %d per side reached", maxPerSide)
	}
	if s.LastStageSubmission != nil && core.SameUTCDay(*s.LastStageSubmission, now) {
		return Deny("an argument was already submitted to this stage today")
	}
	if s.ContentLength < s.Policy.MinArgumentChars {
		return Denyf("argument must be at least %d characters", s.Policy.MinArgumentChars)
	}
	if s.ContentLength > s.Policy.MaxArgumentChars {
		return Denyf("argument must be at most %d characters", s.Policy.MaxArgumentChars)
	}
	return Allow()
}

// VoteSnapshot is the entity state a vote is evaluated against
type VoteSnapshot struct {
	Debate       *Debate
	ExistingVote *Vote
	Voter        VoterIdentity
	Policy       Policy
}

// CanCastVote decides whether a voter identity may cast (or change) a vote.
// Voting is open while the debate is in voting and before any voting
// deadline; after completion only when the late-voting policy flag is on.
func CanCastVote(s VoteSnapshot, now time.Time) Decision {
	if !s.Voter.Valid() {
		return Deny("voter identity must carry exactly one of user id or session id")
	}
	switch s.Debate.Status {
	case StatusVoting:
		if s.Debate.VotingDeadline != nil && now.After(*s.Debate.VotingDeadline) {
			return Deny("voting deadline has passed")
		}
	case StatusCompleted:
		if !s.Policy.AllowVotesAfterCompletion {
			return Deny("debate is completed and late voting is not allowed")
		}
	default:
		return Denyf("debate is %s, voting is not open", s.Debate.Status)
	}
	if s.ExistingVote != nil && !s.Policy.AllowVoteChanges {
		return Deny("a vote was already cast for this debate")
	}
	return Allow()
}

// NextArgumentOrder computes the order of the next published argument for a
// (debate, side): existing count plus one, monotonic with no gaps.
func NextArgumentOrder(sideArgumentCount int) int {
	return sideArgumentCount + 1
}
