package dataservice

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hackboard/backend/internal/models"
	"github.com/hackboard/backend/internal/store"
)

// notify stores a notification and hands it to the dispatcher. The primary
// mutation has already committed, so failures here are logged, not returned.
func (s *Service) notify(ctx context.Context, typ models.NotificationType, userID, relatedID, message string) {
	n := models.Notification{
		ID:        s.id("notif"),
		Type:      typ,
		Message:   message,
		UserID:    userID,
		RelatedID: relatedID,
		CreatedAt: s.now().UTC(),
	}
	err := store.Update(ctx, s.store, store.NotificationsKey, func(list []models.Notification) ([]models.Notification, error) {
		return append(list, n), nil
	})
	if err != nil {
		s.logger.Error("store notification", zap.String("type", string(typ)), zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.mu.Lock()
	d := s.dispatcher
	s.mu.Unlock()
	if d == nil {
		return
	}
	if err := d.Dispatch(ctx, n); err != nil {
		s.logger.Warn("dispatch notification", zap.String("id", n.ID), zap.String("user_id", userID), zap.Error(err))
	}
}

// ListNotifications returns the user's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	all, err := store.Read[models.Notification](ctx, s.store, store.NotificationsKey)
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	out := make([]models.Notification, 0)
	for _, n := range all {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MarkNotificationRead marks one notification read. It reports false when
// the id is unknown.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (bool, error) {
	if err := s.begin(ctx); err != nil {
		return false, err
	}
	found := false
	err := store.Update(ctx, s.store, store.NotificationsKey, func(list []models.Notification) ([]models.Notification, error) {
		found = false
		for i := range list {
			if list[i].ID != id {
				continue
			}
			found = true
			if list[i].IsRead {
				return nil, store.ErrSkipWrite
			}
			list[i].IsRead = true
			return list, nil
		}
		return nil, store.ErrSkipWrite
	})
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return found, nil
}

// MarkAllNotificationsRead marks every unread notification of the user read
// and returns how many changed.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	if err := s.begin(ctx); err != nil {
		return 0, err
	}
	changed := 0
	err := store.Update(ctx, s.store, store.NotificationsKey, func(list []models.Notification) ([]models.Notification, error) {
		changed = 0
		for i := range list {
			if list[i].UserID == userID && !list[i].IsRead {
				list[i].IsRead = true
				changed++
			}
		}
		if changed == 0 {
			return nil, store.ErrSkipWrite
		}
		return list, nil
	})
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return changed, nil
}
