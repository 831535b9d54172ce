package store

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hackboard/backend/config"
	"github.com/hackboard/backend/pkg/database"
)

func testConfig(driver string) *config.Config {
	return &config.Config{Store: config.StoreConfig{Driver: driver}}
}

// TestPostgresBackend needs TEST_DATABASE_URL pointing at a disposable database.
func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, dsn, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, pool))
	b := NewPostgres(pool)
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM entity_store WHERE key LIKE 'test\_%'`)
		_ = b.Close()
	})
	exerciseBackend(t, b)
}

// TestRedisBackend needs TEST_REDIS_ADDR pointing at a disposable server.
func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	prefix := "hackboard-test:"
	b := NewRedis(client, prefix)
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			_ = client.Del(ctx, keys...).Err()
		}
	})
	exerciseBackend(t, b)
}
