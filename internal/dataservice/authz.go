package dataservice

import (
	"context"
	"fmt"

	"github.com/hackboard/backend/internal/models"
)

// AuthorizeAdmin checks the stored role of userID. Roles claimed by the
// caller are never consulted. Authorization checks skip the simulated latency.
func (s *Service) AuthorizeAdmin(ctx context.Context, userID string) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// AuthorizeIdeaOwner checks that userID owns ideaID.
func (s *Service) AuthorizeIdeaOwner(ctx context.Context, ideaID, userID string) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	ideas, err := s.readIdeas(ctx)
	if err != nil {
		return err
	}
	i := models.FindIdea(ideas, ideaID)
	if i < 0 {
		return fmt.Errorf("idea %s: %w", ideaID, ErrNotFound)
	}
	if !ideas[i].IsOwner(userID) {
		return ErrForbidden
	}
	return nil
}

// ResolveUser looks up the acting user without the simulated latency. It
// returns nil when the id is unknown.
func (s *Service) ResolveUser(ctx context.Context, userID string) (*models.User, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.lookupUser(ctx, userID)
}
