// Package store persists entity lists as JSON arrays, one key per entity type,
// behind a pluggable Backend.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Key names one stored entity list.
type Key string

const (
	EventsKey        Key = "hackathon_events"
	IdeasKey         Key = "hackathon_ideas"
	UsersKey         Key = "hackathon_users"
	NotificationsKey Key = "hackathon_notifications"
)

// Keys lists every key the data service owns.
var Keys = []Key{EventsKey, IdeasKey, UsersKey, NotificationsKey}

var (
	// ErrSkipWrite, returned from an UpdateFunc, ends the update without
	// writing. Update then returns nil.
	ErrSkipWrite = errors.New("store: skip write")
	// ErrConflict is returned when an optimistic update kept losing races.
	ErrConflict = errors.New("store: too many concurrent update conflicts")
)

// UpdateFunc receives the current raw value (ok is false when the key is
// absent) and returns the value to store. It may run more than once when a
// driver retries after a conflict.
type UpdateFunc func(cur []byte, ok bool) ([]byte, error)

// Backend is the key-value substrate the store runs on.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	// Update applies fn atomically with respect to other Update calls on the
	// same key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// Store is the typed view over a Backend.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// New wraps a backend.
func New(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend { return s.backend }

// Close releases the backend.
func (s *Store) Close() error { return s.backend.Close() }

// Exists reports whether key holds a value.
func (s *Store) Exists(ctx context.Context, key Key) (bool, error) {
	_, ok, err := s.backend.Get(ctx, string(key))
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return ok, nil
}

// Read returns the list stored under key. An absent or malformed value reads
// as an empty list; only backend failures are returned as errors.
func Read[T any](ctx context.Context, s *Store, key Key) ([]T, error) {
	raw, ok, err := s.backend.Get(ctx, string(key))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return decode[T](s, key, raw, ok), nil
}

// Write replaces the list stored under key.
func Write[T any](ctx context.Context, s *Store, key Key, list []T) error {
	raw, err := encode(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, string(key), raw); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Update atomically replaces the list under key with fn's result. Returning
// ErrSkipWrite from fn leaves the key untouched; any other error aborts the
// update and is returned unchanged.
func Update[T any](ctx context.Context, s *Store, key Key, fn func([]T) ([]T, error)) error {
	err := s.backend.Update(ctx, string(key), func(cur []byte, ok bool) ([]byte, error) {
		next, err := fn(decode[T](s, key, cur, ok))
		if err != nil {
			return nil, err
		}
		return encode(next)
	})
	if err != nil && !errors.Is(err, ErrSkipWrite) {
		return err
	}
	return nil
}

func decode[T any](s *Store, key Key, raw []byte, ok bool) []T {
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return []T{}
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Warn("discarding malformed stored list", zap.String("key", string(key)), zap.Error(err))
		return []T{}
	}
	if list == nil {
		return []T{}
	}
	return list
}

func encode[T any](list []T) ([]byte, error) {
	if list == nil {
		list = []T{}
	}
	return json.Marshal(list)
}
