// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/moodmix/internal/blobstore"
	"github.com/tomtom215/moodmix/internal/cache"
	"github.com/tomtom215/moodmix/internal/config"
	"github.com/tomtom215/moodmix/internal/logging"
	"github.com/tomtom215/moodmix/internal/supervisor/services"
)

// objectStore pairs the configured blob store with its backend-specific
// lifecycle.
type objectStore struct {
	blobstore.Store
	badger *blobstore.BadgerStore
}

func initBlobStore(cfg *config.StorageConfig) (*objectStore, error) {
	switch cfg.Backend {
	case config.StorageBackendBadger:
		bs, err := blobstore.NewBadgerStore(blobstore.BadgerOptions{
			Path:       cfg.Path,
			SyncWrites: true,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize badger object store: %w", err)
		}
		return &objectStore{Store: bs, badger: bs}, nil
	default:
		fs, err := blobstore.NewFilesystemStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("initialize filesystem object store: %w", err)
		}
		logging.Info().Str("path", cfg.Path).Msg("Filesystem object store ready")
		return &objectStore{Store: fs}, nil
	}
}

// gcService returns the value log GC task, or nil when the backend has none.
func (o *objectStore) gcService(interval time.Duration) suture.Service {
	if o.badger == nil || interval <= 0 {
		return nil
	}
	return services.NewPeriodicService("blobstore-gc", interval, func(context.Context) error {
		return o.badger.RunGC()
	})
}

func (o *objectStore) close() {
	if o.badger == nil {
		return
	}
	if err := o.badger.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing badger object store")
	}
}

const redisPingTimeout = 5 * time.Second

// cacheStore pairs the configured cache store with its backend-specific
// lifecycle.
type cacheStore struct {
	cache.Store
	memory *cache.MemoryStore
	redis  *cache.RedisStore
}

func initCacheStore(ctx context.Context, cfg *config.CacheConfig) (*cacheStore, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		rs, err := cache.NewRedisStore(cache.RedisOptions{
			Address:   cfg.RedisAddress,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize redis cache: %w", err)
		}
		// An unreachable cache degrades reads to recomputation and shows
		// up in readiness; it does not stop the server from starting.
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			logging.Warn().Err(err).Str("address", cfg.RedisAddress).Msg("Redis cache unreachable at startup, continuing degraded")
		} else {
			logging.Info().Str("address", cfg.RedisAddress).Msg("Redis cache connected")
		}
		return &cacheStore{Store: rs, redis: rs}, nil
	default:
		ms := cache.NewMemoryStore()
		return &cacheStore{Store: ms, memory: ms}, nil
	}
}

// janitor returns the expired-entry sweeper, or nil when the backend
// expires keys itself.
func (c *cacheStore) janitor(interval time.Duration) suture.Service {
	if c.memory == nil {
		return nil
	}
	return services.NewLoopService("cache-janitor", func(ctx context.Context) error {
		return c.memory.RunJanitor(ctx, interval)
	})
}

func (c *cacheStore) close() {
	if c.redis == nil {
		return
	}
	if err := c.redis.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing redis cache")
	}
}
