// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodmix/internal/logging"
	"github.com/tomtom215/moodmix/internal/metrics"
	"github.com/tomtom215/moodmix/internal/models"
)

const (
	// TopTracksKey is the store key of the top-tracks snapshot.
	TopTracksKey = "stats:top_tracks"

	// DefaultTopTracksTTL bounds staleness if an invalidation is lost.
	DefaultTopTracksTTL = 5 * time.Minute

	topTracksCacheType = "top_tracks"
)

// TopTracksSnapshot is a computed top-N listing. Limit is the N the listing
// was computed with; Tracks may be shorter when fewer tracks were ever used.
type TopTracksSnapshot struct {
	Limit      int               `json:"limit"`
	Tracks     []models.TopTrack `json:"tracks"`
	ComputedAt time.Time         `json:"computed_at"`
}

// Covers reports whether the snapshot can answer a request for limit
// entries. That holds when it was computed with at least that limit, or
// when it already holds every track with a positive usage count.
func (s *TopTracksSnapshot) Covers(limit int) bool {
	if s == nil {
		return false
	}
	return limit <= s.Limit || len(s.Tracks) < s.Limit
}

// Truncate returns the first limit tracks of the snapshot.
func (s *TopTracksSnapshot) Truncate(limit int) []models.TopTrack {
	if limit < len(s.Tracks) {
		return s.Tracks[:limit]
	}
	return s.Tracks
}

// TopTracksCache reads and writes the top-tracks snapshot in a Store.
// Store failures never propagate: reads degrade to a miss and writes are
// logged.
type TopTracksCache struct {
	store Store
	ttl   time.Duration
}

// NewTopTracksCache creates a cache over store. A ttl <= 0 selects
// DefaultTopTracksTTL.
func NewTopTracksCache(store Store, ttl time.Duration) *TopTracksCache {
	if ttl <= 0 {
		ttl = DefaultTopTracksTTL
	}
	return &TopTracksCache{store: store, ttl: ttl}
}

// Read returns the cached snapshot, or false on a miss or store failure.
func (c *TopTracksCache) Read(ctx context.Context) (*TopTracksSnapshot, bool) {
	data, found, err := c.store.Get(ctx, TopTracksKey)
	if err != nil {
		metrics.CacheErrors.WithLabelValues(topTracksCacheType, "get").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", TopTracksKey).Msg("Cache read failed, recomputing")
		return nil, false
	}
	if !found {
		metrics.CacheMisses.WithLabelValues(topTracksCacheType).Inc()
		return nil, false
	}

	var snap TopTracksSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		metrics.CacheErrors.WithLabelValues(topTracksCacheType, "decode").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", TopTracksKey).Msg("Discarding undecodable cache entry")
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(topTracksCacheType).Inc()
	return &snap, true
}

// Populate stores snap under the fixed key with the configured TTL.
func (c *TopTracksCache) Populate(ctx context.Context, snap *TopTracksSnapshot) {
	if snap == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to encode top tracks snapshot")
		return
	}
	if err := c.store.Set(ctx, TopTracksKey, data, c.ttl); err != nil {
		metrics.CacheErrors.WithLabelValues(topTracksCacheType, "set").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", TopTracksKey).Msg("Cache populate failed")
	}
}

// Invalidate removes the snapshot. reason labels the invalidation metric
// (for example "playlist_created" or "track_deleted").
func (c *TopTracksCache) Invalidate(ctx context.Context, reason string) {
	metrics.CacheInvalidations.WithLabelValues(topTracksCacheType, reason).Inc()
	if err := c.store.Delete(ctx, TopTracksKey); err != nil {
		metrics.CacheErrors.WithLabelValues(topTracksCacheType, "delete").Inc()
		logging.Ctx(ctx).Error().Err(err).Str("key", TopTracksKey).Str("reason", reason).
			Msg("Cache invalidation failed; entry expires with its TTL")
	}
}

// Ping checks the underlying store.
func (c *TopTracksCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}
