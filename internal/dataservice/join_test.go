package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackboard/backend/internal/models"
)

func TestJoinIdeaTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := len(f.idea(t, "idea-3").Participants)

	ok, err := f.svc.JoinIdea(ctx, "idea-3", "user-4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, f.idea(t, "idea-3").Participants, before+1)

	ok, err = f.svc.JoinIdea(ctx, "idea-3", "user-4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, f.idea(t, "idea-3").Participants, before+1)
}

func TestJoinIdeaRefusals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for name, args := range map[string][2]string{
		"unknown user": {"idea-1", "ghost"},
		"unknown idea": {"ghost", "user-3"},
		"owner":        {"idea-3", "user-3"},
		"participant":  {"idea-1", "user-2"},
	} {
		ok, err := f.svc.JoinIdea(ctx, args[0], args[1])
		require.NoError(t, err, name)
		assert.False(t, ok, name)
	}
}

func TestRequestThenAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.CreateEvent(ctx, NewEvent{Name: "E", StartDate: "2024-01-01", EndDate: "2024-01-02", Stages: threeStages()})
	require.NoError(t, err)
	u1 := owner(t, f, "user-1")
	i1, err := f.svc.CreateIdea(ctx, NewIdea{Title: "I1", Owner: u1, EventID: e.ID})
	require.NoError(t, err)

	res, err := f.svc.RequestJoinIdea(ctx, i1.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, JoinRequested, res)
	assert.Equal(t, []string{"user-2"}, userIDs(f.idea(t, i1.ID).JoinRequests))

	ok, err := f.svc.AcceptJoinRequest(ctx, i1.ID, "user-2")
	require.NoError(t, err)
	assert.True(t, ok)

	ideas, err := f.svc.ListIdeasByEvent(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, i1.ID, ideas[0].ID)
	assert.Equal(t, []string{"user-2"}, userIDs(ideas[0].Participants))
	assert.Empty(t, ideas[0].JoinRequests)

	// Accepting again keeps a single participant entry.
	ok, err = f.svc.AcceptJoinRequest(ctx, i1.ID, "user-2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, f.idea(t, i1.ID).Participants, 1)

	sent := f.disp.all()
	require.Len(t, sent, 2)
	assert.Equal(t, models.NotifyParticipationRequest, sent[0].Type)
	assert.Equal(t, "user-1", sent[0].UserID)
	assert.Equal(t, `Jane Smith wants to join your idea "I1"`, sent[0].Message)
	assert.Equal(t, models.NotifyApproval, sent[1].Type)
	assert.Equal(t, "user-2", sent[1].UserID)
	assert.Equal(t, i1.ID, sent[1].RelatedID)
}

func TestRequestThenReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.RequestJoinIdea(ctx, "idea-3", "user-1")
	require.NoError(t, err)
	assert.Equal(t, JoinRequested, res)

	ok, err := f.svc.RejectJoinRequest(ctx, "idea-3", "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
	idea := f.idea(t, "idea-3")
	assert.NotContains(t, userIDs(idea.JoinRequests), "user-1")
	assert.NotContains(t, userIDs(idea.Participants), "user-1")

	sent := f.disp.all()
	require.Len(t, sent, 2)
	assert.Equal(t, models.NotifyRejection, sent[1].Type)
	assert.Equal(t, "user-1", sent[1].UserID)

	ok, err = f.svc.RejectJoinRequest(ctx, "ghost", "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequestJoinVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.RequestJoinIdea(ctx, "idea-2", "user-3")
	require.NoError(t, err)
	assert.Equal(t, JoinAlreadyParticipant, res)
	assert.Empty(t, f.idea(t, "idea-2").JoinRequests)

	res, err = f.svc.RequestJoinIdea(ctx, "idea-3", "user-3")
	require.NoError(t, err)
	assert.Equal(t, JoinAlreadyParticipant, res, "owner")

	res, err = f.svc.RequestJoinIdea(ctx, "idea-2", "user-1")
	require.NoError(t, err)
	assert.Equal(t, JoinRequested, res)
	res, err = f.svc.RequestJoinIdea(ctx, "idea-2", "user-1")
	require.NoError(t, err)
	assert.Equal(t, JoinAlreadyRequested, res)
	assert.Len(t, f.idea(t, "idea-2").JoinRequests, 1)

	res, err = f.svc.RequestJoinIdea(ctx, "ghost", "user-1")
	require.NoError(t, err)
	assert.Equal(t, JoinNotFound, res)
	res, err = f.svc.RequestJoinIdea(ctx, "idea-2", "ghost")
	require.NoError(t, err)
	assert.Equal(t, JoinNotFound, res)
}

func TestAcceptJoinRequestNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ok, err := f.svc.AcceptJoinRequest(ctx, "ghost", "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.svc.AcceptJoinRequest(ctx, "idea-1", "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAcceptWithoutRequestAddsParticipant(t *testing.T) {
	f := newFixture(t)
	ok, err := f.svc.AcceptJoinRequest(context.Background(), "idea-3", "user-4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, userIDs(f.idea(t, "idea-3").Participants), "user-4")
	assert.Empty(t, f.disp.all(), "no request, no approval notice")
}

func TestDispatchFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.disp.err = errDispatch
	res, err := f.svc.RequestJoinIdea(context.Background(), "idea-1", "user-4")
	require.NoError(t, err)
	assert.Equal(t, JoinRequested, res)

	notes, err := f.svc.ListNotifications(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}
