package dataservice

import (
	"context"
	"fmt"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/store"
)

// JoinIdea adds the user straight to the participants. It reports false
// when the user or idea is unknown, the user already participates, or the
// user owns the idea.
func (s *Service) JoinIdea(ctx context.Context, ideaID, userID string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	user, err := s.lookupUser(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	var updated models.Idea
	ok := false
	err = s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		ok = false
		i := models.FindIdea(ideas, ideaID)
		if i < 0 || ideas[i].IsOwner(userID) || ideas[i].HasParticipant(userID) {
			return nil, store.ErrSkipWrite
		}
		ideas[i].Participants = append(ideas[i].Participants, *user)
		updated = ideas[i]
		ok = true
		return ideas, nil
	})
	if err != nil {
		return false, fmt.Errorf("join idea: %w", err)
	}
	if ok {
		s.publish(ctx, EventRoom(updated.EventID), IdeaParticipantsSet, updated)
	}
	return ok, nil
}

// RequestJoinIdea files a join request for the owner to accept or reject.
func (s *Service) RequestJoinIdea(ctx context.Context, ideaID, userID string) (JoinRequestResult, error) {
	if err := s.begin(ctx); err != nil {
		return "", err
	}
	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return JoinNotFound, nil
	}
	var updated models.Idea
	result := JoinNotFound
	err = s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		i := models.FindIdea(ideas, ideaID)
		switch {
		case i < 0:
			result = JoinNotFound
		case ideas[i].IsOwner(userID) || ideas[i].HasParticipant(userID):
			result = JoinAlreadyParticipant
		case ideas[i].HasJoinRequest(userID):
			result = JoinAlreadyRequested
		default:
			result = JoinRequested
			ideas[i].JoinRequests = append(ideas[i].JoinRequests, *user)
			updated = ideas[i]
			return ideas, nil
		}
		return nil, store.ErrSkipWrite
	})
	if err != nil {
		return "", fmt.Errorf("request join idea: %w", err)
	}
	if result == JoinRequested {
		s.publish(ctx, EventRoom(updated.EventID), IdeaJoinRequested, updated)
		s.notify(ctx, models.NotifyParticipationRequest, updated.Owner.ID, updated.ID,
			fmt.Sprintf("%s wants to join your idea %q", user.Name, updated.Title))
	}
	return result, nil
}

// AcceptJoinRequest moves the user from the join requests to the
// participants, adding them at most once. It reports false only when the
// idea or user is unknown.
func (s *Service) AcceptJoinRequest(ctx context.Context, ideaID, userID string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	user, err := s.lookupUser(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	var updated models.Idea
	found, changed, wasRequested := false, false, false
	err = s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		found, changed, wasRequested = false, false, false
		i := models.FindIdea(ideas, ideaID)
		if i < 0 {
			return nil, store.ErrSkipWrite
		}
		found = true
		idea := &ideas[i]
		if idea.IsOwner(userID) {
			return nil, store.ErrSkipWrite
		}
		wasRequested = idea.HasJoinRequest(userID)
		idea.JoinRequests = models.RemoveUser(idea.JoinRequests, userID)
		if !idea.HasParticipant(userID) {
			idea.Participants = append(idea.Participants, *user)
			changed = true
		}
		changed = changed || wasRequested
		if !changed {
			return nil, store.ErrSkipWrite
		}
		updated = *idea
		return ideas, nil
	})
	if err != nil {
		return false, fmt.Errorf("accept join request: %w", err)
	}
	if changed {
		s.publish(ctx, EventRoom(updated.EventID), IdeaParticipantsSet, updated)
		if wasRequested {
			s.notify(ctx, models.NotifyApproval, userID, updated.ID,
				fmt.Sprintf("Your request to join %q was accepted", updated.Title))
		}
	}
	return found, nil
}

// RejectJoinRequest drops the user's join request. It reports false when
// the idea is unknown.
func (s *Service) RejectJoinRequest(ctx context.Context, ideaID, userID string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	var updated models.Idea
	found, wasRequested := false, false
	err := s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		found, wasRequested = false, false
		i := models.FindIdea(ideas, ideaID)
		if i < 0 {
			return nil, store.ErrSkipWrite
		}
		found = true
		if !ideas[i].HasJoinRequest(userID) {
			return nil, store.ErrSkipWrite
		}
		wasRequested = true
		ideas[i].JoinRequests = models.RemoveUser(ideas[i].JoinRequests, userID)
		updated = ideas[i]
		return ideas, nil
	})
	if err != nil {
		return false, fmt.Errorf("reject join request: %w", err)
	}
	if wasRequested {
		s.publish(ctx, EventRoom(updated.EventID), IdeaJoinRequested, updated)
		s.notify(ctx, models.NotifyRejection, userID, updated.ID,
			fmt.Sprintf("Your request to join %q was declined", updated.Title))
	}
	return found, nil
}
