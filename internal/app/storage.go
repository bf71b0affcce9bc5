package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/proposal-wizard/internal/draftstore"
	"github.com/odyssey-erp/proposal-wizard/internal/platform/cache"
)

const redisNamespace = "proposals"

// NewStorage opens the draft storage selected by STORAGE_DRIVER. The returned
// close function releases any connection held by the storage.
func NewStorage(ctx context.Context, cfg *Config, logger *slog.Logger) (draftstore.Storage, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StorageDriver {
	case StorageMemory:
		return draftstore.NewMemoryStorage(), noop, nil
	case StorageRedis:
		client, err := cache.New(ctx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis draft storage", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.StorageTTL))
		return draftstore.NewRedisStorage(client, redisNamespace, cfg.StorageTTL), client.Close, nil
	case StorageFile, "":
		storage, err := draftstore.NewFileStorage(cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return storage, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
