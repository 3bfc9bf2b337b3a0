// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

/*
Package cache provides the key/TTL byte stores used for derived data and the
top-tracks snapshot cache built on them.

Two stores implement Store:

  - MemoryStore: an in-process map with per-entry expiry and a janitor that
    removes expired entries. It is the default and the fake used in tests.
  - RedisStore: a go-redis client for deployments running more than one
    server process against the same database.

TopTracksCache stores a JSON snapshot of the most used tracks under a fixed
key. Writers that change usage counters call Invalidate after their
transaction commits; readers fall back to recomputing when the store errors.

Usage:

	store := cache.NewMemoryStore()
	top := cache.NewTopTracksCache(store, 5*time.Minute)
	snap, ok := top.Read(ctx)
*/
package cache
