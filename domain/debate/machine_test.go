package debate

import (
	"errors"
	"testing"
	"time"

	"agora/domain/core"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestDebate(status DebateStatus) *Debate {
	d := NewDebate(core.NewID(), "Should tabs beat spaces", "", 5, testNow)
	d.Status = status
	return d
}

func TestDebateCanTransition(t *testing.T) {
	tests := []struct {
		from    DebateStatus
		to      DebateStatus
		allowed bool
	}{
		{StatusPending, StatusActive, true},
		{StatusActive, StatusVoting, true},
		{StatusVoting, StatusCompleted, true},
		{StatusPending, StatusVoting, false},
		{StatusPending, StatusCompleted, false},
		{StatusActive, StatusCompleted, false},
		{StatusActive, StatusPending, false},
		{StatusVoting, StatusActive, false},
		{StatusCompleted, StatusVoting, false},
		{StatusCompleted, StatusActive, false},
	}

	for _, test := range tests {
		d := newTestDebate(test.from)
		if got := d.CanTransition(test.to); got != test.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", test.from, test.to, test.allowed, got)
		}
	}
}

func TestDebateActivate(t *testing.T) {
	d := newTestDebate(StatusPending)
	if err := d.Activate(testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != StatusActive {
		t.Errorf("expected active, got %s", d.Status)
	}

	// activating twice is an invalid transition
	if err := d.Activate(testNow); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDebateOpenVoting(t *testing.T) {
	for _, status := range []DebateStatus{StatusPending, StatusVoting, StatusCompleted} {
		d := newTestDebate(status)
		if err := d.OpenVoting(testNow); !errors.Is(err, core.ErrInvalidTransition) {
			t.Errorf("from %s: expected ErrInvalidTransition, got %v", status, err)
		}
	}

	d := newTestDebate(StatusActive)
	if err := d.OpenVoting(testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != StatusVoting {
		t.Errorf("expected voting, got %s", d.Status)
	}
}

func TestDebateComplete(t *testing.T) {
	agent := core.AgentID(core.NewID())

	d := newTestDebate(StatusVoting)
	if err := d.Complete(SideFor, &agent, 10, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsTerminal() {
		t.Error("expected terminal state")
	}
	if d.WinnerSide == nil || *d.WinnerSide != SideFor {
		t.Errorf("expected winner for, got %v", d.WinnerSide)
	}
	if d.TotalVotes != 10 {
		t.Errorf("expected 10 total votes, got %d", d.TotalVotes)
	}

	// completion demands a valid winner side
	d2 := newTestDebate(StatusVoting)
	if err := d2.Complete("", nil, 0, testNow); !core.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}

	// no transition out of completed
	if err := d.Complete(SideAgainst, nil, 0, testNow); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestStageMachine(t *testing.T) {
	st := NewStage(core.DebateID(core.NewID()), "opening", "", 1, testNow)

	if err := st.CompleteStage(testNow); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("completing a pending stage: expected ErrInvalidTransition, got %v", err)
	}

	if err := st.Activate(testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Status != StageActive || st.StartAt == nil {
		t.Errorf("expected active with start time, got %s", st.Status)
	}

	if err := st.Deactivate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Status != StagePending || st.StartAt != nil {
		t.Errorf("expected demotion back to pending, got %s", st.Status)
	}

	if err := st.Activate(testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := st.CompleteStage(testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Status != StageCompleted || st.EndAt == nil {
		t.Errorf("expected completed with end time, got %s", st.Status)
	}

	// completed is terminal for stages too
	if err := st.Activate(testNow); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}
