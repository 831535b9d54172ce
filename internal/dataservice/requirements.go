package dataservice

import (
	"context"
	"fmt"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/store"
)

func findRequirement(reqs []models.Requirement, id string) int {
	for i := range reqs {
		if reqs[i].ID == id {
			return i
		}
	}
	return -1
}

// RespondToRequirement records the user's offer to fill an open requirement
// and notifies the idea owner.
func (s *Service) RespondToRequirement(ctx context.Context, ideaID, requirementID, userID, message string) (ResponseResult, error) {
	if err := s.begin(ctx); err != nil {
		return "", err
	}
	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return ResponseNotFound, nil
	}
	var (
		idea models.Idea
		req  models.Requirement
	)
	result := ResponseNotFound
	err = s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		result = ResponseNotFound
		i := models.FindIdea(ideas, ideaID)
		if i < 0 {
			return nil, store.ErrSkipWrite
		}
		r := findRequirement(ideas[i].Requirements, requirementID)
		if r < 0 {
			return nil, store.ErrSkipWrite
		}
		rq := &ideas[i].Requirements[r]
		if !rq.IsOpen {
			result = ResponseClosed
			return nil, store.ErrSkipWrite
		}
		for _, resp := range rq.Responses {
			if resp.UserID == userID && resp.Status != models.ResponseRejected {
				result = ResponseAlreadyResponded
				return nil, store.ErrSkipWrite
			}
		}
		rq.Responses = append(rq.Responses, models.RequirementResponse{
			ID:        s.id("resp"),
			UserID:    userID,
			Message:   message,
			Status:    models.ResponsePending,
			CreatedAt: s.now().UTC(),
		})
		result = ResponseSubmitted
		idea, req = ideas[i], *rq
		return ideas, nil
	})
	if err != nil {
		return "", fmt.Errorf("respond to requirement: %w", err)
	}
	if result == ResponseSubmitted {
		s.publish(ctx, EventRoom(idea.EventID), RequirementChanged, map[string]interface{}{"ideaId": idea.ID, "requirement": req})
		s.notify(ctx, models.NotifyRequirementResponse, idea.Owner.ID, req.ID,
			fmt.Sprintf("New response to your %s requirement", req.Skill))
	}
	return result, nil
}

// ResolveRequirementResponse approves or rejects a pending response and
// notifies the responder.
func (s *Service) ResolveRequirementResponse(ctx context.Context, ideaID, requirementID, responseID string, approve bool) (ResolveResult, error) {
	if err := s.begin(ctx); err != nil {
		return "", err
	}
	var (
		idea models.Idea
		req  models.Requirement
		resp models.RequirementResponse
	)
	result := ResolveNotFound
	err := s.updateIdeas(ctx, func(ideas []models.Idea) ([]models.Idea, error) {
		result = ResolveNotFound
		i := models.FindIdea(ideas, ideaID)
		if i < 0 {
			return nil, store.ErrSkipWrite
		}
		r := findRequirement(ideas[i].Requirements, requirementID)
		if r < 0 {
			return nil, store.ErrSkipWrite
		}
		rq := &ideas[i].Requirements[r]
		for j := range rq.Responses {
			p := &rq.Responses[j]
			if p.ID != responseID {
				continue
			}
			if p.Status != models.ResponsePending {
				result = ResolveAlreadyResolved
				return nil, store.ErrSkipWrite
			}
			if approve {
				p.Status, result = models.ResponseApproved, ResolveApproved
			} else {
				p.Status, result = models.ResponseRejected, ResolveRejected
			}
			idea, req, resp = ideas[i], *rq, *p
			return ideas, nil
		}
		return nil, store.ErrSkipWrite
	})
	if err != nil {
		return "", fmt.Errorf("resolve requirement response: %w", err)
	}
	switch result {
	case ResolveApproved:
		s.publish(ctx, EventRoom(idea.EventID), RequirementChanged, map[string]interface{}{"ideaId": idea.ID, "requirement": req})
		s.notify(ctx, models.NotifyApproval, resp.UserID, idea.ID,
			fmt.Sprintf("Your response to the %s requirement on %q was approved", req.Skill, idea.Title))
	case ResolveRejected:
		s.publish(ctx, EventRoom(idea.EventID), RequirementChanged, map[string]interface{}{"ideaId": idea.ID, "requirement": req})
		s.notify(ctx, models.NotifyRejection, resp.UserID, idea.ID,
			fmt.Sprintf("Your response to the %s requirement on %q was declined", req.Skill, idea.Title))
	}
	return result, nil
}
