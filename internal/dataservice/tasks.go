package dataservice

import (
	"context"
	"fmt"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/store"
)

// NewTask holds the caller-supplied fields of a task.
type NewTask struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status,omitempty"`
	AssigneeID  string            `json:"assigneeId,omitempty"`
	DueDate     string            `json:"dueDate,omitempty"`
}

// CreateTask adds a task to the idea's board. It returns nil when the idea
// or the named assignee is unknown.
func (s *Service) CreateTask(ctx context.Context, ideaID string, in NewTask) (*models.Task, error) {
	status := in.Status
	if status == "" {
		status = models.TaskTodo
	}
	if !status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	task := models.Task{
		ID:          s.id("task"),
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.AssigneeID != "" {
		assignee, err := s.lookupUser(ctx, in.AssigneeID)
		if err != nil || assignee == nil {
			return nil, err
		}
		task.Assignee = assignee
	}
	var updated models.Idea
	ok := false
	err := s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		ok = false
		i := models.FindIdea(ideas, ideaID)
		if i < 0 {
			return nil, store.ErrSkipWrite
		}
		ideas[i].Tasks = append(ideas[i].Tasks, task)
		updated = ideas[i]
		ok = true
		return ideas, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	if !ok {
		return nil, nil
	}
	s.publish(ctx, EventRoom(updated.EventID), TaskChanged, map[string]interface{}{"ideaId": ideaID, "task": task})
	return &task, nil
}

// UpdateTaskStatus moves a task to another board column, searching every
// idea for taskID. It reports false when no idea holds the task.
func (s *Service) UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) (bool, error) {
	if !status.Valid() {
		return false, ErrInvalidTaskStatus
	}
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	var (
		task    models.Task
		eventID string
		ideaID  string
	)
	found, changed := false, false
	err := s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		found, changed = false, false
		for i := range ideas {
			for j := range ideas[i].Tasks {
				t := &ideas[i].Tasks[j]
				if t.ID != taskID {
					continue
				}
				found = true
				if t.Status == status {
					return nil, store.ErrSkipWrite
				}
				t.Status = status
				t.UpdatedAt = s.now().UTC()
				task, eventID, ideaID = *t, ideas[i].EventID, ideas[i].ID
				changed = true
				return ideas, nil
			}
		}
		return nil, store.ErrSkipWrite
	})
	if err != nil {
		return false, fmt.Errorf("update task status: %w", err)
	}
	if changed {
		s.publish(ctx, EventRoom(eventID), TaskChanged, map[string]interface{}{"ideaId": ideaID, "task": task})
	}
	return found, nil
}
