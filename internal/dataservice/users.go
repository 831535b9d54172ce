package dataservice

import (
	"context"
	"fmt"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/store"
)

func (s *Service) readUsers(ctx context.Context) ([]models.User, error) {
	users, err := store.Read[models.User](ctx, s.store, store.UsersKey)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	return users, nil
}

// lookupUser returns the stored user with id, or nil.
func (s *Service) lookupUser(ctx context.Context, id string) (*models.User, error) {
	users, err := s.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	if i := models.FindUser(users, id); i >= 0 {
		return &users[i], nil
	}
	return nil, nil
}

// ListUsers returns every user.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	return s.readUsers(ctx)
}

// GetUser returns the user with id, or nil when there is none.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	return s.lookupUser(ctx, id)
}
