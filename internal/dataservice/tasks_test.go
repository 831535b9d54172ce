package dataservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackboard/backend/internal/models"
)

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, "idea-1", NewTask{Title: "Wireframes", AssigneeID: "user-3", DueDate: "2024-07-05"})
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, models.TaskTodo, task.Status)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "Mike Johnson", task.Assignee.Name)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)

	tasks := f.idea(t, "idea-1").Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
	assert.Len(t, f.pub.rooms(TaskChanged), 1)
}

func TestCreateTaskRefusals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, "ghost", NewTask{Title: "x"})
	require.NoError(t, err)
	assert.Nil(t, task)

	task, err = f.svc.CreateTask(ctx, "idea-1", NewTask{Title: "x", AssigneeID: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Empty(t, f.idea(t, "idea-1").Tasks)

	_, err = f.svc.CreateTask(ctx, "idea-1", NewTask{Title: "x", Status: "blocked"})
	assert.ErrorIs(t, err, ErrInvalidTaskStatus)
}

func TestUpdateTaskStatus(t *testing.T) {
	created := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	now := created
	f := newFixture(t, func(o *Options) { o.Now = func() time.Time { return now } })
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, "idea-2", NewTask{Title: "API"})
	require.NoError(t, err)
	require.NotNil(t, task)

	now = created.Add(time.Hour)
	ok, err := f.svc.UpdateTaskStatus(ctx, task.ID, models.TaskInProgress)
	require.NoError(t, err)
	assert.True(t, ok)
	stored := f.idea(t, "idea-2").Tasks[0]
	assert.Equal(t, models.TaskInProgress, stored.Status)
	assert.True(t, stored.UpdatedAt.Equal(now))
	assert.True(t, stored.CreatedAt.Equal(created))

	ok, err = f.svc.UpdateTaskStatus(ctx, task.ID, models.TaskInProgress)
	require.NoError(t, err)
	assert.True(t, ok, "same column is a successful no-op")

	ok, err = f.svc.UpdateTaskStatus(ctx, "ghost", models.TaskDone)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.UpdateTaskStatus(ctx, task.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidTaskStatus)
}
