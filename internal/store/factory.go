package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hackboard/backend/config"
	"github.com/hackboard/backend/pkg/database"
	redisclient "github.com/hackboard/backend/pkg/redis"
	"github.com/hackboard/backend/pkg/storage"
)

// Driver names a Backend implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverS3       Driver = "s3"
)

// Open builds the backend selected by cfg.Store.Driver:
//
//	memory    process-local map
//	file      STORE_FILE_DIR/<key>.json
//	sqlite    SQLITE_PATH
//	postgres  DATABASE_URL or DB_*; runs migrations
//	redis     REDIS_ADDR, keys prefixed with REDIS_KEY_PREFIX
//	s3        AWS_S3_STORE_BUCKET under AWS_S3_STORE_PREFIX
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver := Driver(cfg.Store.Driver)
	logger.Info("opening entity store", zap.String("driver", string(driver)))
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return NewFile(cfg.Store.FileDir)
	case DriverSQLite:
		return NewSQLite(ctx, cfg.Store.SQLitePath)
	case DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return NewPostgres(pool), nil
	case DriverRedis:
		rc, err := redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			return nil, err
		}
		return &Redis{client: rc.Client, prefix: cfg.Redis.KeyPrefix, owned: true}, nil
	case DriverS3:
		objects, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.Endpoint,
			Bucket:          cfg.AWS.StoreBucket,
			Prefix:          cfg.AWS.StorePrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return NewS3(objects), nil
	default:
		return nil, fmt.Errorf("unknown store driver %s", driver)
	}
}
