package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tinnitrack/internal/client/client"
	"github.com/dmitrijs2005/tinnitrack/internal/client/config"
	"github.com/dmitrijs2005/tinnitrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tinnitrack/internal/filex"
	"github.com/redis/go-redis/v9"
)

// openRepository opens the metadata store selected by cfg.StorageBackend.
// The returned function closes it.
func openRepository(ctx context.Context, cfg *config.Config) (metadata.Repository, func() error, error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return metadata.NewRedisRepository(rdb, ""), rdb.Close, nil

	case config.StorageSQLite, "":
		if err := filex.EnsureParentDir(cfg.SQLitePath); err != nil {
			return nil, nil, err
		}
		db, err := client.InitDatabase(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		return metadata.NewSQLiteRepository(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
