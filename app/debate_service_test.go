package app_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/app"
	"agora/domain/core"
	"agora/domain/debate"
	"agora/internal/testkit"
)

func TestCreateDebateValidation(t *testing.T) {
	ctx := context.Background()
	kit := testkit.NewKit()

	_, err := kit.Debates.CreateDebate(ctx, app.CreateDebateRequest{PromptID: core.NewID(), Title: "  "})
	assert.True(t, core.IsValidationError(err))

	_, err = kit.Debates.CreateDebate(ctx, app.CreateDebateRequest{PromptID: core.NewID(), Title: "t", MaxArgumentsPerSide: -1})
	assert.True(t, core.IsValidationError(err))

	d, err := kit.Debates.CreateDebate(ctx, app.CreateDebateRequest{PromptID: core.NewID(), Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, debate.StatusPending, d.Status)
	assert.False(t, d.ID.String() == "")
}

func TestStageLifecycle(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	_, err := a.kit.Debates.AddStage(ctx, a.debateID, "", "", 2)
	assert.True(t, core.IsValidationError(err), "stage name is required")

	_, err = a.kit.Debates.AddStage(ctx, a.debateID, "closing", "", 0)
	assert.True(t, core.IsValidationError(err), "stage order starts at 1")

	// (debate, stage_order) is unique
	_, err = a.kit.Debates.AddStage(ctx, a.debateID, "another opening", "", 1)
	assert.True(t, core.IsConflict(err))

	st2, err := a.kit.Debates.AddStage(ctx, a.debateID, "rebuttal", "closing statements", 2)
	require.NoError(t, err)

	updated, err := a.kit.Debates.UpdateStage(ctx, st2.ID, "closing", "final statements", 3)
	require.NoError(t, err)
	assert.Equal(t, "closing", updated.Name)
	assert.Equal(t, 3, updated.StageOrder)
}

func TestSingleActiveStage(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	st2, err := a.kit.Debates.AddStage(ctx, a.debateID, "rebuttal", "", 2)
	require.NoError(t, err)

	// the opening stage is active from setup; activating the second demotes it
	require.NoError(t, a.kit.Debates.ActivateStage(ctx, a.debateID, st2.ID))

	stages, err := a.kit.Debates.ListStages(ctx, a.debateID)
	require.NoError(t, err)
	require.Len(t, stages, 2)

	active := 0
	for _, st := range stages {
		if st.Status == debate.StageActive {
			active++
			assert.Equal(t, st2.ID, st.ID)
		}
	}
	assert.Equal(t, 1, active, "at most one active stage per debate")
}

func TestDeleteActiveStageDenied(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	err := a.kit.Debates.DeleteStage(ctx, a.stageID)
	require.Error(t, err)
	assert.True(t, core.IsEligibilityDenied(err))

	require.NoError(t, a.kit.Debates.CompleteStage(ctx, a.stageID))
	require.NoError(t, a.kit.Debates.DeleteStage(ctx, a.stageID))
}

func TestOpenVotingOnlyFromActive(t *testing.T) {
	ctx := context.Background()
	kit := testkit.NewKit()

	d, err := kit.Debates.CreateDebate(ctx, app.CreateDebateRequest{PromptID: core.NewID(), Title: "t"})
	require.NoError(t, err)

	// pending: rejected
	_, err = kit.Debates.OpenVoting(ctx, d.ID)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	_, err = kit.Submissions.Join(ctx, d.ID, agentIdentity(), debate.SideFor)
	require.NoError(t, err)

	// active: allowed, exactly once
	_, err = kit.Debates.OpenVoting(ctx, d.ID)
	require.NoError(t, err)
	_, err = kit.Debates.OpenVoting(ctx, d.ID)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestCompleteRejectsContradictingOverride(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)
	openVoting(t, a)

	for i := 0; i < 3; i++ {
		_, err := a.kit.Submissions.CastVote(ctx, a.debateID, debate.VoterIdentity{SessionID: fmt.Sprintf("v-%d", i)}, debate.SideFor)
		require.NoError(t, err)
	}

	side := debate.SideAgainst
	_, err := a.kit.Debates.CompleteDebate(ctx, a.debateID, &side)
	assert.ErrorIs(t, err, core.ErrWinnerContradictsTally)

	// agreeing override is fine
	side = debate.SideFor
	d, err := a.kit.Debates.CompleteDebate(ctx, a.debateID, &side)
	require.NoError(t, err)
	assert.Equal(t, debate.StatusCompleted, d.Status)
}

func TestCompleteOnlyFromVoting(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	_, err := a.kit.Debates.CompleteDebate(ctx, a.debateID, nil)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestAdminEditArgument(t *testing.T) {
	ctx := context.Background()
	a := setupArena(t)

	verified := a.submitAndVerify(t, a.forSide, testContent)

	require.NoError(t, a.kit.Debates.EditArgument(ctx, verified.ArgumentID, "Moderated content."))

	args, err := a.kit.Debates.ListArguments(ctx, a.debateID)
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, "Moderated content.", args[0].Content)
	assert.True(t, args[0].EditedByAdmin)

	require.NoError(t, a.kit.Debates.DeleteArgument(ctx, verified.ArgumentID))
	args, err = a.kit.Debates.ListArguments(ctx, a.debateID)
	require.NoError(t, err)
	assert.Empty(t, args)
}
