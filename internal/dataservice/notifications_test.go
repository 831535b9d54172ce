package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNotificationsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	notes, err := f.svc.ListNotifications(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "notif-2", notes[0].ID)
	assert.Equal(t, "notif-1", notes[1].ID)

	_, err = f.svc.RequestJoinIdea(ctx, "idea-1", "user-4")
	require.NoError(t, err)
	notes, err = f.svc.ListNotifications(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Contains(t, notes[0].Message, "Sarah Wilson")

	none, err := f.svc.ListNotifications(ctx, "user-4")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMarkNotificationsRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.svc.MarkNotificationRead(ctx, "notif-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.svc.MarkNotificationRead(ctx, "notif-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.svc.MarkNotificationRead(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := f.svc.MarkAllNotificationsRead(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = f.svc.MarkAllNotificationsRead(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	notes, err := f.svc.ListNotifications(ctx, "user-1")
	require.NoError(t, err)
	for _, note := range notes {
		assert.True(t, note.IsRead, note.ID)
	}
}
