package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/app"
	"agora/domain/core"
	"agora/domain/debate"
	"agora/internal/testkit"
	"agora/ports"
)

const testContent = "Tabs are objectively better for accessibility."

func agentIdentity() ports.Identity {
	return ports.Identity{ActorID: core.NewID(), Role: ports.RoleAgent}
}

// arena is a debate with two joined agents and an active opening stage
type arena struct {
	kit      *testkit.Kit
	debateID core.DebateID
	stageID  core.StageID
	forSide  ports.Identity
	against  ports.Identity
}

func setupArena(t *testing.T, opts ...testkit.Option) *arena {
	t.Helper()
	ctx := context.Background()
	kit := testkit.NewKit(opts...)

	d, err := kit.Debates.CreateDebate(ctx, app.CreateDebateRequest{
		PromptID:            core.NewID(),
		Title:               "Should tabs beat spaces",
		MaxArgumentsPerSide: 5,
	})
	require.NoError(t, err)

	st, err := kit.Debates.AddStage(ctx, d.ID, "opening", "", 1)
	require.NoError(t, err)

	a := &arena{kit: kit, debateID: d.ID, stageID: st.ID, forSide: agentIdentity(), against: agentIdentity()}
	_, err = kit.Submissions.Join(ctx, d.ID, a.forSide, debate.SideFor)
	require.NoError(t, err)
	_, err = kit.Submissions.Join(ctx, d.ID, a.against, debate.SideAgainst)
	require.NoError(t, err)

	require.NoError(t, kit.Debates.ActivateStage(ctx, d.ID, st.ID))
	return a
}

// submitAndVerify walks an argument through the challenge gate
func (a *arena) submitAndVerify(t *testing.T, ident ports.Identity, content string) *app.VerifyResult {
	t.Helper()
	ctx := context.Background()

	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, ident, content, "")
	require.NoError(t, err)
	require.NotNil(t, result.Pending, "submission must be held behind a challenge")

	ch, err := a.kit.Store.GetChallengeByCode(ctx, result.Pending.Code)
	require.NoError(t, err)

	verified, err := a.kit.Submissions.Verify(ctx, result.Pending.Code, ch.Answer)
	require.NoError(t, err)
	return verified
}

func TestFirstJoinActivatesDebate(t *testing.T) {
	ctx := context.Background()
	kit := testkit.NewKit()

	d, err := kit.Debates.CreateDebate(ctx, app.CreateDebateRequest{PromptID: core.NewID(), Title: "t"})
	require.NoError(t, err)
	require.Equal(t, debate.StatusPending, d.Status)

	_, err = kit.Submissions.Join(ctx, d.ID, agentIdentity(), debate.SideFor)
	require.NoError(t, err)

	got, err := kit.Debates.GetDebate(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, debate.StatusActive, got.Status)
}

func TestJoinExclusivity(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	// the same agent cannot join twice
	_, err := a.kit.Submissions.Join(ctx, a.debateID, a.forSide, debate.SideAgainst)
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))

	// a claimed side cannot be joined by another agent
	_, err = a.kit.Submissions.Join(ctx, a.debateID, agentIdentity(), debate.SideFor)
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))

	// a banned agent is rejected outright
	banned := agentIdentity()
	banned.Banned = true
	kit := testkit.NewKit()
	d, err := kit.Debates.CreateDebate(ctx, app.CreateDebateRequest{PromptID: core.NewID(), Title: "t"})
	require.NoError(t, err)
	_, err = kit.Submissions.Join(ctx, d.ID, banned, debate.SideFor)
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))
}

func TestConcurrentJoinsOneWinnerPerSide(t *testing.T) {
	ctx := context.Background()
	kit := testkit.NewKit()
	d, err := kit.Debates.CreateDebate(ctx, app.CreateDebateRequest{PromptID: core.NewID(), Title: "t"})
	require.NoError(t, err)

	const agents = 16
	var wg sync.WaitGroup
	errs := make([]error, agents)
	for i := 0; i < agents; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = kit.Submissions.Join(ctx, d.ID, agentIdentity(), debate.SideFor)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, core.IsConflict(err) || core.IsEligibilityDenied(err), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one agent may hold a side")
}

func TestArgumentHeldBehindChallenge(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.NoError(t, err)
	require.NotNil(t, result.Pending)
	assert.NotEmpty(t, result.Pending.Code)
	assert.NotEmpty(t, result.Pending.Question)
	assert.Nil(t, result.Argument)

	// nothing is published until the challenge verifies
	args, err := a.kit.Debates.ListArguments(ctx, a.debateID)
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestVerifyPublishesArgument(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	verified := a.submitAndVerify(t, a.forSide, testContent)
	require.NotEmpty(t, verified.ArgumentID)

	args, err := a.kit.Debates.ListArguments(ctx, a.debateID)
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, testContent, args[0].Content)
	assert.Equal(t, debate.SideFor, args[0].Side)
	assert.Equal(t, 1, args[0].ArgumentOrder)
}

func TestVerifyWrongAnswerKeepsChallengePending(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.NoError(t, err)
	code := result.Pending.Code

	_, err = a.kit.Submissions.Verify(ctx, code, "999")
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))
	assert.Contains(t, err.Error(), "1 failed attempts")

	_, err = a.kit.Submissions.Verify(ctx, code, "still wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 failed attempts")

	// a wrong answer does not consume the challenge
	ch, err := a.kit.Store.GetChallengeByCode(ctx, code)
	require.NoError(t, err)
	verified, err := a.kit.Submissions.Verify(ctx, code, ch.Answer)
	require.NoError(t, err)
	assert.NotEmpty(t, verified.ArgumentID)
}

func TestVerifyExpiresLazily(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.NoError(t, err)
	code := result.Pending.Code

	ch, err := a.kit.Store.GetChallengeByCode(ctx, code)
	require.NoError(t, err)

	a.kit.Clock.Advance(6 * time.Minute)

	_, err = a.kit.Submissions.Verify(ctx, code, ch.Answer)
	assert.ErrorIs(t, err, core.ErrChallengeExpired)

	// once expired, the correct answer no longer helps
	_, err = a.kit.Submissions.Verify(ctx, code, ch.Answer)
	assert.ErrorIs(t, err, core.ErrChallengeExpired)

	args, listErr := a.kit.Debates.ListArguments(ctx, a.debateID)
	require.NoError(t, listErr)
	assert.Empty(t, args)
}

func TestVerifyExactlyOnce(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.NoError(t, err)
	code := result.Pending.Code
	ch, err := a.kit.Store.GetChallengeByCode(ctx, code)
	require.NoError(t, err)

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.kit.Submissions.Verify(ctx, code, ch.Answer)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, core.ErrAlreadyProcessed)
		}
	}
	assert.Equal(t, 1, successes, "a challenge is consumed exactly once")

	args, err := a.kit.Debates.ListArguments(ctx, a.debateID)
	require.NoError(t, err)
	assert.Len(t, args, 1, "content is published exactly once")
}

func TestVerifyAfterStateChange(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.NoError(t, err)
	code := result.Pending.Code
	ch, err := a.kit.Store.GetChallengeByCode(ctx, code)
	require.NoError(t, err)

	// voting opens between issuance and verification
	_, err = a.kit.Debates.OpenVoting(ctx, a.debateID)
	require.NoError(t, err)

	_, err = a.kit.Submissions.Verify(ctx, code, ch.Answer)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStateChanged)

	args, listErr := a.kit.Debates.ListArguments(ctx, a.debateID)
	require.NoError(t, listErr)
	assert.Empty(t, args, "stale content must not land")
}

func TestArgumentRequiresActiveStage(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	require.NoError(t, a.kit.Debates.CompleteStage(ctx, a.stageID))

	_, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))

	// a stage that was never activated is just as closed
	st, err := a.kit.Debates.AddStage(ctx, a.debateID, "rebuttal", "", 2)
	require.NoError(t, err)
	_, err = a.kit.Submissions.SubmitArgument(ctx, a.debateID, st.ID, a.forSide, testContent, "")
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))
}

func TestVerifyAfterStageCloses(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.NoError(t, err)
	code := result.Pending.Code
	ch, err := a.kit.Store.GetChallengeByCode(ctx, code)
	require.NoError(t, err)

	// the stage closes between issuance and verification
	require.NoError(t, a.kit.Debates.CompleteStage(ctx, a.stageID))

	_, err = a.kit.Submissions.Verify(ctx, code, ch.Answer)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStateChanged)

	args, listErr := a.kit.Debates.ListArguments(ctx, a.debateID)
	require.NoError(t, listErr)
	assert.Empty(t, args, "stale content must not land in a closed stage")
}

func TestCancelAbandonsChallenge(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.NoError(t, err)
	code := result.Pending.Code
	ch, err := a.kit.Store.GetChallengeByCode(ctx, code)
	require.NoError(t, err)

	require.NoError(t, a.kit.Submissions.Cancel(ctx, code))

	_, err = a.kit.Submissions.Verify(ctx, code, ch.Answer)
	assert.ErrorIs(t, err, core.ErrChallengeExpired)
}

func TestArgumentOrderingPerSide(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	st2, err := a.kit.Debates.AddStage(ctx, a.debateID, "rebuttal", "", 2)
	require.NoError(t, err)

	// the daily rule is per stage, so two stages allow two same-day arguments
	a.submitAndVerify(t, a.forSide, testContent)

	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, st2.ID, a.forSide, testContent+" More.", "")
	require.NoError(t, err)
	ch, err := a.kit.Store.GetChallengeByCode(ctx, result.Pending.Code)
	require.NoError(t, err)
	_, err = a.kit.Submissions.Verify(ctx, result.Pending.Code, ch.Answer)
	require.NoError(t, err)

	// the opposing side gets its own sequence
	a.submitAndVerify(t, a.against, "Spaces render identically everywhere.")

	args, err := a.kit.Debates.ListArguments(ctx, a.debateID)
	require.NoError(t, err)
	require.Len(t, args, 3)

	orders := map[debate.Side][]int{}
	for _, arg := range args {
		orders[arg.Side] = append(orders[arg.Side], arg.ArgumentOrder)
	}
	assert.Equal(t, []int{1, 2}, orders[debate.SideFor])
	assert.Equal(t, []int{1}, orders[debate.SideAgainst])
}

func TestDailyArgumentCap(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	a.submitAndVerify(t, a.forSide, testContent)

	// same stage, same UTC day: denied even hours later
	a.kit.Clock.Advance(6 * time.Hour)
	_, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))

	// the next UTC day opens the stage again
	a.kit.Clock.Advance(7 * time.Hour)
	result, err := a.kit.Submissions.SubmitArgument(ctx, a.debateID, a.stageID, a.forSide, testContent, "")
	require.NoError(t, err)
	assert.NotNil(t, result.Pending)
}

func openVoting(t *testing.T, a *arena) {
	t.Helper()
	_, err := a.kit.Debates.OpenVoting(context.Background(), a.debateID)
	require.NoError(t, err)
}

func TestVoteUniqueness(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)
	openVoting(t, a)

	voter := debate.VoterIdentity{SessionID: "sess-1"}
	result, err := a.kit.Submissions.CastVote(ctx, a.debateID, voter, debate.SideFor)
	require.NoError(t, err)
	require.NotNil(t, result.Vote)

	_, err = a.kit.Submissions.CastVote(ctx, a.debateID, voter, debate.SideAgainst)
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))

	// a user identity with the same raw id is a different voter key
	_, err = a.kit.Submissions.CastVote(ctx, a.debateID, debate.VoterIdentity{UserID: "sess-1"}, debate.SideFor)
	require.NoError(t, err)

	res, err := a.kit.Submissions.Tally(ctx, a.debateID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalVotes)
}

func TestConcurrentVotesSameIdentity(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)
	openVoting(t, a)

	voter := debate.VoterIdentity{SessionID: "racer"}
	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.kit.Submissions.CastVote(ctx, a.debateID, voter, debate.SideFor)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, core.IsConflict(err) || core.IsEligibilityDenied(err), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)

	res, err := a.kit.Submissions.Tally(ctx, a.debateID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalVotes, "one live vote per identity")
}

func TestVoteChangePolicy(t *testing.T) {
	ctx := context.Background()
	policy := debate.DefaultPolicy()
	policy.MinArgumentChars = 10
	policy.AllowVoteChanges = true
	a := setupArena(t, testkit.WithPolicy(policy))
	openVoting(t, a)

	voter := debate.VoterIdentity{SessionID: "changer"}
	_, err := a.kit.Submissions.CastVote(ctx, a.debateID, voter, debate.SideFor)
	require.NoError(t, err)

	// the change replaces the live vote in place
	_, err = a.kit.Submissions.CastVote(ctx, a.debateID, voter, debate.SideAgainst)
	require.NoError(t, err)

	res, err := a.kit.Submissions.Tally(ctx, a.debateID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalVotes)
	assert.Equal(t, 1, res.AgainstVotes)
	assert.Equal(t, 0, res.ForVotes)
}

func TestVotesBeforeVotingOpens(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	_, err := a.kit.Submissions.CastVote(ctx, a.debateID, debate.VoterIdentity{SessionID: "early"}, debate.SideFor)
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))
}

func TestVotesRejectedPastDeadline(t *testing.T) {
	ctx := context.Background()
	kit := testkit.NewKit()

	deadline := kit.Clock.Now().Add(time.Hour)
	d, err := kit.Debates.CreateDebate(ctx, app.CreateDebateRequest{
		PromptID:       core.NewID(),
		Title:          "deadline",
		VotingDeadline: &deadline,
	})
	require.NoError(t, err)
	_, err = kit.Submissions.Join(ctx, d.ID, agentIdentity(), debate.SideFor)
	require.NoError(t, err)
	_, err = kit.Debates.OpenVoting(ctx, d.ID)
	require.NoError(t, err)

	_, err = kit.Submissions.CastVote(ctx, d.ID, debate.VoterIdentity{SessionID: "prompt"}, debate.SideFor)
	require.NoError(t, err, "votes before the deadline must land")

	kit.Clock.Advance(2 * time.Hour)
	_, err = kit.Submissions.CastVote(ctx, d.ID, debate.VoterIdentity{SessionID: "late"}, debate.SideAgainst)
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))
}

func TestGatedVoteFlow(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)
	a.kit.Submissions.GateVotes(true)
	openVoting(t, a)

	voter := debate.VoterIdentity{SessionID: "gated"}
	result, err := a.kit.Submissions.CastVote(ctx, a.debateID, voter, debate.SideFor)
	require.NoError(t, err)
	require.NotNil(t, result.Pending, "gated vote must return a ticket")
	require.Nil(t, result.Vote)

	ch, err := a.kit.Store.GetChallengeByCode(ctx, result.Pending.Code)
	require.NoError(t, err)
	verified, err := a.kit.Submissions.Verify(ctx, result.Pending.Code, ch.Answer)
	require.NoError(t, err)
	assert.NotEmpty(t, verified.VoteID)

	res, err := a.kit.Submissions.Tally(ctx, a.debateID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ForVotes)
}

func TestTallySixFour(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)
	openVoting(t, a)

	for i := 0; i < 6; i++ {
		_, err := a.kit.Submissions.CastVote(ctx, a.debateID, debate.VoterIdentity{SessionID: fmt.Sprintf("for-%d", i)}, debate.SideFor)
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		_, err := a.kit.Submissions.CastVote(ctx, a.debateID, debate.VoterIdentity{SessionID: fmt.Sprintf("against-%d", i)}, debate.SideAgainst)
		require.NoError(t, err)
	}

	res, err := a.kit.Submissions.Tally(ctx, a.debateID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, res.ForPercentage)
	assert.Equal(t, 40.0, res.AgainstPercentage)
	assert.Equal(t, 2, res.Margin)

	d, err := a.kit.Debates.CompleteDebate(ctx, a.debateID, nil)
	require.NoError(t, err)
	require.NotNil(t, d.WinnerSide)
	assert.Equal(t, debate.SideFor, *d.WinnerSide)
	require.NotNil(t, d.WinnerAgentID)
	assert.Equal(t, a.forSide.AgentID(), *d.WinnerAgentID)
	assert.Equal(t, 10, d.TotalVotes)
}

func TestZeroVotesNeedExplicitWinner(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)
	openVoting(t, a)

	res, err := a.kit.Submissions.Tally(ctx, a.debateID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.ForPercentage)
	assert.Equal(t, 50.0, res.AgainstPercentage)

	_, err = a.kit.Debates.CompleteDebate(ctx, a.debateID, nil)
	assert.ErrorIs(t, err, core.ErrTiedOutcome)

	side := debate.SideAgainst
	d, err := a.kit.Debates.CompleteDebate(ctx, a.debateID, &side)
	require.NoError(t, err)
	require.NotNil(t, d.WinnerSide)
	assert.Equal(t, debate.SideAgainst, *d.WinnerSide)
	assert.Equal(t, 0, d.TotalVotes)
}
