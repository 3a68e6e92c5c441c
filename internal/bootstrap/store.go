package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/GoSim-25-26J-441/topology-backend/config"
	"github.com/GoSim-25-26J-441/topology-backend/internal/storage/postgres"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/repository"
	"github.com/redis/go-redis/v9"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStore builds the snapshot store selected by cfg.Store.Driver. The
// returned closer releases the underlying connection.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.SnapshotStore, io.Closer, error) {
	switch cfg.Store.Driver {
	case config.StoreFile:
		return repository.NewFileStore(cfg.Store.DataPath), nopCloser{}, nil

	case config.StoreMemory:
		return repository.NewMemoryStore(), nopCloser{}, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return repository.NewRedisStore(client, cfg.Redis.Key), client, nil

	case config.StorePostgres:
		db, err := postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewSQLStore(db, cfg.Database.SnapshotID)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
