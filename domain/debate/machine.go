package debate

import (
	"time"

	"agora/domain/core"
)

// Debate transitions are forward-only: pending -> active -> voting -> completed.
// No transition returns to an earlier state.
var debateTransitions = map[DebateStatus]DebateStatus{
	StatusPending: StatusActive,
	StatusActive:  StatusVoting,
	StatusVoting:  StatusCompleted,
}

// CanTransition reports whether a debate may move from its current status to next
func (d *Debate) CanTransition(next DebateStatus) bool {
	return debateTransitions[d.Status] == next
}

// Activate moves a pending debate to active. This happens automatically the
// moment the first participant joins.
func (d *Debate) Activate(now time.Time) error {
	if d.Status != StatusPending {
		return core.NewTransitionError(string(d.Status), string(StatusActive))
	}
	d.Status = StatusActive
	d.UpdatedAt = now
	return nil
}

// OpenVoting moves an active debate to voting. This is an explicit
// administrative operation and is rejected for any other current status.
func (d *Debate) OpenVoting(now time.Time) error {
	if d.Status != StatusActive {
		return core.NewTransitionError(string(d.Status), string(StatusVoting))
	}
	d.Status = StatusVoting
	d.UpdatedAt = now
	return nil
}

// Complete moves a voting debate to its terminal state. A winner side must
// be supplied at the transition; winnerAgent may be nil when the winning
// side never had a participant.
func (d *Debate) Complete(winner Side, winnerAgent *core.AgentID, totalVotes int, now time.Time) error {
	if d.Status != StatusVoting {
		return core.NewTransitionError(string(d.Status), string(StatusCompleted))
	}
	if winner != SideFor && winner != SideAgainst {
		return core.NewValidationError("winner_side", "must be a valid side")
	}
	d.Status = StatusCompleted
	d.WinnerSide = &winner
	d.WinnerAgentID = winnerAgent
	d.TotalVotes = totalVotes
	d.UpdatedAt = now
	return nil
}

// IsTerminal reports whether the debate reached its final state
func (d *Debate) IsTerminal() bool {
	return d.Status == StatusCompleted
}

// Stage transitions mirror the debate machine: pending -> active -> completed.
// Activating a stage demotes any other active stage of the same debate; that
// demote+activate pair is applied as a single logical unit by storage.
var stageTransitions = map[StageStatus]StageStatus{
	StagePending: StageActive,
	StageActive:  StageCompleted,
}

// CanTransition reports whether a stage may move to next
func (s *Stage) CanTransition(next StageStatus) bool {
	return stageTransitions[s.Status] == next
}

// Activate marks this stage active. The caller must demote any other
// active stage of the debate in the same logical operation.
func (s *Stage) Activate(now time.Time) error {
	if s.Status != StagePending {
		return core.NewTransitionError(string(s.Status), string(StageActive))
	}
	s.Status = StageActive
	s.StartAt = &now
	return nil
}

// Deactivate demotes an active stage back to pending. Only valid as the
// demote half of another stage's activation.
func (s *Stage) Deactivate() error {
	if s.Status != StageActive {
		return core.NewTransitionError(string(s.Status), string(StagePending))
	}
	s.Status = StagePending
	s.StartAt = nil
	return nil
}

// CompleteStage marks an active stage completed
func (s *Stage) CompleteStage(now time.Time) error {
	if s.Status != StageActive {
		return core.NewTransitionError(string(s.Status), string(StageCompleted))
	}
	s.Status = StageCompleted
	s.EndAt = &now
	return nil
}
