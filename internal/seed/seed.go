// Package seed populates the entity store with the demo dataset.
package seed

import (
	"context"
	"embed"
	"fmt"

	"go.uber.org/zap"

	"github.com/hackboard/backend/internal/store"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

var fixtureFiles = map[store.Key]string{
	store.UsersKey:         "fixtures/users.json",
	store.EventsKey:        "fixtures/events.json",
	store.IdeasKey:         "fixtures/ideas.json",
	store.NotificationsKey: "fixtures/notifications.json",
}

// Fixture returns the raw fixture list for key.
func Fixture(key store.Key) ([]byte, error) {
	name, ok := fixtureFiles[key]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", key)
	}
	return fixturesFS.ReadFile(name)
}

// Ensure writes the fixture list to every key that holds no value. Existing
// values, including empty or malformed ones, are left alone.
func Ensure(ctx context.Context, s *store.Store, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, key := range store.Keys {
		exists, err := s.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		data, err := Fixture(key)
		if err != nil {
			return err
		}
		seeded := false
		err = s.Backend().Update(ctx, string(key), func(_ []byte, ok bool) ([]byte, error) {
			seeded = false
			if ok {
				return nil, store.ErrSkipWrite
			}
			seeded = true
			return data, nil
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
		if seeded {
			logger.Info("seeded store key", zap.String("key", string(key)))
		}
	}
	return nil
}

// Reset overwrites every key with its fixture list.
func Reset(ctx context.Context, s *store.Store, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, key := range store.Keys {
		data, err := Fixture(key)
		if err != nil {
			return err
		}
		if err := s.Backend().Put(ctx, string(key), data); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	logger.Info("store reset to fixtures", zap.Int("keys", len(store.Keys)))
	return nil
}
