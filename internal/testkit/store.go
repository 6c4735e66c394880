package testkit

import (
	"context"
	"sort"
	"sync"

	"agora/domain/challenge"
	"agora/domain/core"
	"agora/domain/debate"
	"agora/ports"
)

// Store is an in-memory implementation of every storage port. A single
// mutex makes each operation a real atomic unit, matching the contracts
// the postgres adapters provide with constraints and conditional updates.
type Store struct {
	mu           sync.Mutex
	debates      map[core.DebateID]*debate.Debate
	stages       map[core.StageID]*debate.Stage
	participants map[core.ParticipantID]*debate.Participant
	arguments    map[core.ArgumentID]*debate.Argument
	votes        map[core.VoteID]*debate.Vote
	challenges   map[string]*challenge.Challenge
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		debates:      make(map[core.DebateID]*debate.Debate),
		stages:       make(map[core.StageID]*debate.Stage),
		participants: make(map[core.ParticipantID]*debate.Participant),
		arguments:    make(map[core.ArgumentID]*debate.Argument),
		votes:        make(map[core.VoteID]*debate.Vote),
		challenges:   make(map[string]*challenge.Challenge),
	}
}

var (
	_ ports.DebateRepository      = (*Store)(nil)
	_ ports.StageRepository       = (*Store)(nil)
	_ ports.ParticipantRepository = (*Store)(nil)
	_ ports.ArgumentRepository    = (*Store)(nil)
	_ ports.VoteRepository        = (*Store)(nil)
	_ ports.ChallengeRepository   = (*Store)(nil)
)

// --- DebateRepository ---

func (s *Store) CreateDebate(_ context.Context, d *debate.Debate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.debates[d.ID] = &cp
	return nil
}

func (s *Store) GetDebate(_ context.Context, id core.DebateID) (*debate.Debate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debates[id]
	if !ok {
		return nil, core.ErrDebateNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Store) ListDebates(_ context.Context, status debate.DebateStatus, limit int) ([]*debate.Debate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*debate.Debate
	for _, d := range s.debates {
		if status != "" && d.Status != status {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) TransitionStatus(_ context.Context, id core.DebateID, from, to debate.DebateStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debates[id]
	if !ok {
		return core.ErrDebateNotFound
	}
	if d.Status != from {
		return core.NewTransitionError(string(d.Status), string(to))
	}
	d.Status = to
	return nil
}

func (s *Store) CompleteDebate(_ context.Context, id core.DebateID, winner debate.Side, winnerAgent *core.AgentID, totalVotes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debates[id]
	if !ok {
		return core.ErrDebateNotFound
	}
	if d.Status != debate.StatusVoting {
		return core.NewTransitionError(string(d.Status), string(debate.StatusCompleted))
	}
	d.Status = debate.StatusCompleted
	d.WinnerSide = &winner
	d.WinnerAgentID = winnerAgent
	d.TotalVotes = totalVotes
	return nil
}

// --- StageRepository ---

func (s *Store) CreateStage(_ context.Context, st *debate.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.stages {
		if existing.DebateID == st.DebateID && existing.StageOrder == st.StageOrder {
			return core.ErrConflict
		}
	}
	cp := *st
	s.stages[st.ID] = &cp
	return nil
}

func (s *Store) GetStage(_ context.Context, id core.StageID) (*debate.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stages[id]
	if !ok {
		return nil, core.ErrStageNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *Store) ListStages(_ context.Context, debateID core.DebateID) ([]*debate.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*debate.Stage
	for _, st := range s.stages {
		if st.DebateID == debateID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StageOrder < out[j].StageOrder })
	return out, nil
}

func (s *Store) UpdateStage(_ context.Context, st *debate.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stages[st.ID]; !ok {
		return core.ErrStageNotFound
	}
	cp := *st
	s.stages[st.ID] = &cp
	return nil
}

func (s *Store) DeleteStage(_ context.Context, id core.StageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stages[id]; !ok {
		return core.ErrStageNotFound
	}
	delete(s.stages, id)
	return nil
}

func (s *Store) ActivateStage(_ context.Context, debateID core.DebateID, stageID core.StageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.stages[stageID]
	if !ok || target.DebateID != debateID {
		return core.ErrStageNotFound
	}
	if target.Status != debate.StagePending {
		return core.NewTransitionError(string(target.Status), string(debate.StageActive))
	}
	// demote-then-activate under one lock: no reader sees two active stages
	for _, st := range s.stages {
		if st.DebateID == debateID && st.Status == debate.StageActive {
			st.Status = debate.StagePending
			st.StartAt = nil
		}
	}
	target.Status = debate.StageActive
	return nil
}

func (s *Store) CompleteStage(_ context.Context, stageID core.StageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stages[stageID]
	if !ok {
		return core.ErrStageNotFound
	}
	if st.Status != debate.StageActive {
		return core.NewTransitionError(string(st.Status), string(debate.StageCompleted))
	}
	st.Status = debate.StageCompleted
	return nil
}

// --- ParticipantRepository ---

func (s *Store) InsertParticipant(_ context.Context, p *debate.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.participants {
		if existing.DebateID != p.DebateID {
			continue
		}
		if existing.AgentID == p.AgentID || existing.Side == p.Side {
			return core.ErrConflict
		}
	}
	cp := *p
	s.participants[p.ID] = &cp
	return nil
}

func (s *Store) ListParticipants(_ context.Context, debateID core.DebateID) ([]debate.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []debate.Participant
	for _, p := range s.participants {
		if p.DebateID == debateID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (s *Store) GetParticipantByAgent(_ context.Context, debateID core.DebateID, agentID core.AgentID) (*debate.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants {
		if p.DebateID == debateID && p.AgentID == agentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, core.ErrParticipantNotFound
}

func (s *Store) GetParticipantBySide(_ context.Context, debateID core.DebateID, side debate.Side) (*debate.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants {
		if p.DebateID == debateID && p.Side == side {
			cp := *p
			return &cp, nil
		}
	}
	return nil, core.ErrParticipantNotFound
}

// --- ArgumentRepository ---

func (s *Store) InsertArgument(_ context.Context, a *debate.Argument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, existing := range s.arguments {
		if existing.DebateID == a.DebateID && existing.Side == a.Side {
			count++
		}
	}
	a.ArgumentOrder = debate.NextArgumentOrder(count)
	cp := *a
	s.arguments[a.ID] = &cp
	return nil
}

func (s *Store) GetArgument(_ context.Context, id core.ArgumentID) (*debate.Argument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.arguments[id]
	if !ok {
		return nil, core.ErrArgumentNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) ListArguments(_ context.Context, debateID core.DebateID) ([]*debate.Argument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*debate.Argument
	for _, a := range s.arguments {
		if a.DebateID == debateID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Side != out[j].Side {
			return out[i].Side < out[j].Side
		}
		return out[i].ArgumentOrder < out[j].ArgumentOrder
	})
	return out, nil
}

func (s *Store) CountArgumentsBySide(_ context.Context, debateID core.DebateID, side debate.Side) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, a := range s.arguments {
		if a.DebateID == debateID && a.Side == side {
			count++
		}
	}
	return count, nil
}

func (s *Store) LatestStageArgument(_ context.Context, debateID core.DebateID, stageID core.StageID, agentID core.AgentID) (*debate.Argument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *debate.Argument
	for _, a := range s.arguments {
		if a.DebateID != debateID || a.StageID != stageID || a.AgentID != agentID {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *Store) AdminEditArgument(_ context.Context, id core.ArgumentID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.arguments[id]
	if !ok {
		return core.ErrArgumentNotFound
	}
	a.Content = content
	a.EditedByAdmin = true
	return nil
}

func (s *Store) DeleteArgument(_ context.Context, id core.ArgumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.arguments[id]; !ok {
		return core.ErrArgumentNotFound
	}
	delete(s.arguments, id)
	return nil
}

// --- VoteRepository ---

func (s *Store) InsertVote(_ context.Context, v *debate.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.votes {
		if existing.DebateID == v.DebateID && existing.VoterKey == v.VoterKey {
			return core.ErrConflict
		}
	}
	cp := *v
	s.votes[v.ID] = &cp
	if d, ok := s.debates[v.DebateID]; ok {
		d.TotalVotes++
	}
	return nil
}

func (s *Store) UpsertVote(_ context.Context, v *debate.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.votes {
		if existing.DebateID == v.DebateID && existing.VoterKey == v.VoterKey {
			delete(s.votes, id)
			cp := *v
			s.votes[v.ID] = &cp
			return nil
		}
	}
	cp := *v
	s.votes[v.ID] = &cp
	if d, ok := s.debates[v.DebateID]; ok {
		d.TotalVotes++
	}
	return nil
}

func (s *Store) GetVoteByVoter(_ context.Context, debateID core.DebateID, voterKey string) (*debate.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.votes {
		if v.DebateID == debateID && v.VoterKey == voterKey {
			cp := *v
			return &cp, nil
		}
	}
	return nil, core.ErrVoteNotFound
}

func (s *Store) CountVotesBySide(_ context.Context, debateID core.DebateID) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var forVotes, againstVotes int
	for _, v := range s.votes {
		if v.DebateID != debateID {
			continue
		}
		if v.Side == debate.SideFor {
			forVotes++
		} else {
			againstVotes++
		}
	}
	return forVotes, againstVotes, nil
}

// --- ChallengeRepository ---

func (s *Store) InsertChallenge(_ context.Context, c *challenge.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.Payload = append([]byte(nil), c.Payload...)
	s.challenges[c.Code] = &cp
	return nil
}

func (s *Store) GetChallengeByCode(_ context.Context, code string) (*challenge.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[code]
	if !ok {
		return nil, core.ErrChallengeNotFound
	}
	cp := *c
	cp.Payload = append([]byte(nil), c.Payload...)
	return &cp, nil
}

func (s *Store) MarkVerified(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[code]
	if !ok {
		return false, core.ErrChallengeNotFound
	}
	if c.Status != challenge.StatusPending {
		return false, nil
	}
	c.Status = challenge.StatusVerified
	return true, nil
}

func (s *Store) MarkExpired(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[code]
	if !ok {
		return core.ErrChallengeNotFound
	}
	if c.Status == challenge.StatusPending {
		c.Status = challenge.StatusExpired
	}
	return nil
}

func (s *Store) IncrementFailedAttempts(_ context.Context, code string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[code]
	if !ok {
		return 0, core.ErrChallengeNotFound
	}
	c.FailedAttempts++
	return c.FailedAttempts, nil
}
