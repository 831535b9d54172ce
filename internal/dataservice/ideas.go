package dataservice

import (
	"context"
	"fmt"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/store"
)

// NewIdea holds the caller-supplied fields of an idea.
type NewIdea struct {
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	TechStack     []string             `json:"techStack"`
	Owner         models.User          `json:"owner"`
	EventID       string               `json:"eventId"`
	CurrentStage  int                  `json:"currentStage"`
	IsLongRunning bool                 `json:"isLongRunning"`
	Participants  []models.User        `json:"participants"`
	Requirements  []models.Requirement `json:"requirements"`
	Tasks         []models.Task        `json:"tasks"`
	JoinRequests  []models.User        `json:"joinRequests"`
}

func (s *Service) readIdeas(ctx context.Context) ([]models.Idea, error) {
	ideas, err := store.Read[models.Idea](ctx, s.store, store.IdeasKey)
	if err != nil {
		return nil, fmt.Errorf("read ideas: %w", err)
	}
	for i := range ideas {
		ideas[i].Normalize()
	}
	return ideas, nil
}

// updateIdeas is store.Update on the ideas key with normalized records.
func (s *Service) updateIdeas(ctx context.Context, fn func([]models.Idea) ([]models.Idea, error)) error {
	return store.Update(ctx, s.store, store.IdeasKey, func(ideas []models.Idea) ([]models.Idea, error) {
		for i := range ideas {
			ideas[i].Normalize()
		}
		return fn(ideas)
	})
}

// ListIdeas returns every idea.
func (s *Service) ListIdeas(ctx context.Context) ([]models.Idea, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	return s.readIdeas(ctx)
}

// GetIdea returns the idea with id, or nil when there is none.
func (s *Service) GetIdea(ctx context.Context, id string) (*models.Idea, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	ideas, err := s.readIdeas(ctx)
	if err != nil {
		return nil, err
	}
	if i := models.FindIdea(ideas, id); i >= 0 {
		return &ideas[i], nil
	}
	return nil, nil
}

// ListIdeasByEvent returns the ideas attached to eventID.
func (s *Service) ListIdeasByEvent(ctx context.Context, eventID string) ([]models.Idea, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	ideas, err := s.readIdeas(ctx)
	if err != nil {
		return nil, err
	}
	return filterIdeas(ideas, func(i models.Idea) bool { return i.EventID == eventID }), nil
}

// ListUserIdeas returns the ideas owned by userID. Participation does not count.
func (s *Service) ListUserIdeas(ctx context.Context, userID string) ([]models.Idea, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	ideas, err := s.readIdeas(ctx)
	if err != nil {
		return nil, err
	}
	return filterIdeas(ideas, func(i models.Idea) bool { return i.IsOwner(userID) }), nil
}

func filterIdeas(ideas []models.Idea, keep func(models.Idea) bool) []models.Idea {
	out := make([]models.Idea, 0)
	for _, idea := range ideas {
		if keep(idea) {
			out = append(out, idea)
		}
	}
	return out
}

// CreateIdea stores a new idea with a generated id, a reference number
// unique among stored ideas, and the creation time. Requirements without an
// id get req-<createdAtMillis>-<index>.
func (s *Service) CreateIdea(ctx context.Context, in NewIdea) (*models.Idea, error) {
	stage := in.CurrentStage
	if stage == 0 {
		stage = models.MinStage
	}
	if !models.ValidStage(stage) {
		return nil, ErrInvalidStage
	}
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	createdAt := s.now().UTC()
	idea := models.Idea{
		ID:            s.id("idea"),
		Title:         in.Title,
		Description:   in.Description,
		TechStack:     in.TechStack,
		Owner:         in.Owner,
		EventID:       in.EventID,
		CurrentStage:  stage,
		IsLongRunning: in.IsLongRunning,
		Participants:  in.Participants,
		Requirements:  append([]models.Requirement(nil), in.Requirements...),
		Tasks:         in.Tasks,
		JoinRequests:  in.JoinRequests,
		CreatedAt:     createdAt,
	}
	for i := range idea.Requirements {
		if idea.Requirements[i].ID == "" {
			idea.Requirements[i].ID = fmt.Sprintf("req-%d-%d", createdAt.UnixMilli(), i)
		}
	}
	idea.Normalize()
	idea.CleanMembership()

	err := s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		taken := make(map[string]bool, len(ideas))
		for _, existing := range ideas {
			taken[existing.ReferenceNumber] = true
		}
		idea.ReferenceNumber = s.refs.next(createdAt, func(ref string) bool { return taken[ref] })
		return append(ideas, idea), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}
	s.publish(ctx, EventRoom(idea.EventID), IdeaCreated, idea)
	return &idea, nil
}

// UpdateIdea merges in over the stored idea with the same id. Identity
// fields (id, referenceNumber, createdAt, owner, eventId) are kept from the
// stored record; nil lists and a zero stage leave the stored values alone.
// Participants, join requests and tasks only change through their own
// operations, so the stored lists always win.
// It returns ErrNotFound, without writing, when no idea has that id.
func (s *Service) UpdateIdea(ctx context.Context, in models.Idea) (*models.Idea, error) {
	if in.CurrentStage != 0 && !models.ValidStage(in.CurrentStage) {
		return nil, ErrInvalidStage
	}
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	var updated models.Idea
	found := false
	err := s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		found = false
		i := models.FindIdea(ideas, in.ID)
		if i < 0 {
			return nil, store.ErrSkipWrite
		}
		found = true
		ideas[i] = mergeIdea(ideas[i], in)
		updated = ideas[i]
		return ideas, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update idea: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("idea %s: %w", in.ID, ErrNotFound)
	}
	s.publish(ctx, EventRoom(updated.EventID), IdeaUpdated, updated)
	return &updated, nil
}

func mergeIdea(cur, in models.Idea) models.Idea {
	out := cur
	if in.Title != "" {
		out.Title = in.Title
	}
	if in.Description != "" {
		out.Description = in.Description
	}
	if in.TechStack != nil {
		out.TechStack = in.TechStack
	}
	if in.CurrentStage != 0 {
		out.CurrentStage = in.CurrentStage
	}
	out.IsLongRunning = in.IsLongRunning
	if in.Requirements != nil {
		out.Requirements = in.Requirements
	}
	out.Normalize()
	return out
}

// SetIdeaStage moves an idea to stage. It reports false when the idea does
// not exist.
func (s *Service) SetIdeaStage(ctx context.Context, ideaID string, stage int) (bool, error) {
	if !models.ValidStage(stage) {
		return false, ErrInvalidStage
	}
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	var updated models.Idea
	ok := false
	err := s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		ok = false
		i := models.FindIdea(ideas, ideaID)
		if i < 0 {
			return nil, store.ErrSkipWrite
		}
		ok = true
		ideas[i].CurrentStage = stage
		updated = ideas[i]
		return ideas, nil
	})
	if err != nil {
		return false, fmt.Errorf("set idea stage: %w", err)
	}
	if ok {
		s.publish(ctx, EventRoom(updated.EventID), IdeaUpdated, updated)
	}
	return ok, nil
}
