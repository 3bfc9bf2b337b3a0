// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

// Package testinfra provides container-backed infrastructure for
// integration tests.
//
// Containers are managed with testcontainers-go and every file carries the
// integration build tag, so unit test runs never need Docker:
//
//	go test -tags integration ./internal/cache/...
//
// # Redis Container
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis)
//
//	    store, err := cache.NewRedisStore(cache.RedisOptions{Address: redis.Address})
//	    // ...
//	}
package testinfra
