// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

// Package curation turns a mood into a persisted playlist and serves the
// usage statistics derived from generated playlists.
//
// The generation pipeline is: read the catalog, build the prompt, call the
// generative backend (no lock or transaction is held across this call),
// parse the answer, re-resolve the selected IDs against the live catalog,
// persist playlist, entries and counter increments in one transaction, and
// finally invalidate the top-tracks cache.
package curation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/moodmix/internal/blobstore"
	"github.com/tomtom215/moodmix/internal/cache"
	"github.com/tomtom215/moodmix/internal/generation"
	"github.com/tomtom215/moodmix/internal/logging"
	"github.com/tomtom215/moodmix/internal/metrics"
	"github.com/tomtom215/moodmix/internal/models"
)

// Top-tracks limits.
const (
	DefaultTopTracksLimit = 10
	MaxTopTracksLimit     = 100
)

// ErrInvalidLimit is returned for a top-tracks limit outside 1..MaxTopTracksLimit.
var ErrInvalidLimit = fmt.Errorf("limit must be between 1 and %d", MaxTopTracksLimit)

// Catalog is the persistence the service needs. *database.DB satisfies it.
type Catalog interface {
	ListTracks(ctx context.Context) ([]models.Track, error)
	GetTracksByIDs(ctx context.Context, ids []string) (map[string]models.Track, error)
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	DeleteTrack(ctx context.Context, id string) (*models.Track, error)
	TopTracks(ctx context.Context, limit int) ([]models.TopTrack, error)
}

// Service coordinates generation, track deletion and usage statistics.
type Service struct {
	catalog   Catalog
	generator generation.Generator
	topTracks *cache.TopTracksCache
	blobs     blobstore.Store
}

// NewService wires a Service. All dependencies are required.
func NewService(catalog Catalog, generator generation.Generator, topTracks *cache.TopTracksCache, blobs blobstore.Store) *Service {
	return &Service{
		catalog:   catalog,
		generator: generator,
		topTracks: topTracks,
		blobs:     blobs,
	}
}

// GeneratePlaylist runs the full generation pipeline for mood and returns
// the persisted playlist with resolved tracks.
func (s *Service) GeneratePlaylist(ctx context.Context, mood string) (*models.Playlist, error) {
	playlist, err := s.generate(ctx, mood)
	metrics.RecordGeneration(generationOutcome(err))
	return playlist, err
}

func (s *Service) generate(ctx context.Context, mood string) (*models.Playlist, error) {
	log := logging.Ctx(ctx)

	snapshot, err := s.catalog.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	prompt, err := generation.BuildPrompt(mood, snapshot)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("Generation backend call failed")
		return nil, err
	}

	selections, err := generation.ParseSelections(raw)
	if err != nil {
		log.Warn().Err(err).Int("response_bytes", len(raw)).Msg("Rejected generation response")
		return nil, err
	}

	// Tracks may have been deleted while the backend was thinking.
	ids := make([]string, len(selections))
	for i, sel := range selections {
		ids[i] = sel.TrackID
	}
	live, err := s.catalog.GetTracksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve selections: %w", err)
	}

	assembly, err := Assemble(mood, selections, live)
	if assembly.Unknown > 0 {
		metrics.GenerationDroppedSelections.Add(float64(assembly.Unknown))
		log.Info().
			Int("unknown", assembly.Unknown).
			Int("selections", len(selections)).
			Msg("Dropped selections referencing unknown tracks")
	}
	if err != nil {
		return nil, err
	}

	playlist := assembly.Playlist
	if err := s.catalog.CreatePlaylist(ctx, playlist); err != nil {
		return nil, fmt.Errorf("failed to persist playlist: %w", err)
	}

	// Reflect the committed increments in the returned copies. A track
	// placed twice was incremented twice.
	appearances := make(map[string]int64, len(playlist.Entries))
	for i := range playlist.Entries {
		appearances[playlist.Entries[i].TrackID]++
	}
	for i := range playlist.Entries {
		if t := playlist.Entries[i].Track; t != nil {
			t.UsageCount += appearances[t.ID]
		}
	}

	s.topTracks.Invalidate(ctx, "playlist_created")
	metrics.PlaylistEntries.Observe(float64(len(playlist.Entries)))

	log.Info().
		Str("playlist_id", playlist.ID).
		Int("entries", len(playlist.Entries)).
		Int("selections", len(selections)).
		Msg("Playlist generated")
	return playlist, nil
}

// DeleteTrack removes a track row, then its stored object, then
// invalidates the top-tracks cache. Object removal is best-effort: a failure
// is logged and the delete still succeeds.
func (s *Service) DeleteTrack(ctx context.Context, id string) error {
	track, err := s.catalog.DeleteTrack(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Remove(ctx, track.StoragePath); err != nil {
		ev := logging.Ctx(ctx).Warn()
		if errors.Is(err, blobstore.ErrObjectNotFound) {
			ev = logging.Ctx(ctx).Debug()
		}
		ev.Err(err).
			Str("track_id", id).
			Str("storage_path", track.StoragePath).
			Msg("Stored object not removed")
	}

	s.topTracks.Invalidate(ctx, "track_deleted")
	return nil
}

// TopTracks returns the most used tracks. cached reports whether the answer
// came from the cache. A limit of 0 selects DefaultTopTracksLimit.
func (s *Service) TopTracks(ctx context.Context, limit int) (tracks []models.TopTrack, cached bool, err error) {
	limit, err = NormalizeLimit(limit)
	if err != nil {
		return nil, false, err
	}

	if snap, ok := s.topTracks.Read(ctx); ok && snap.Covers(limit) {
		return snap.Truncate(limit), true, nil
	}

	// Compute at least the default so small requests warm the cache for
	// the common case.
	computeLimit := limit
	if computeLimit < DefaultTopTracksLimit {
		computeLimit = DefaultTopTracksLimit
	}
	top, err := s.catalog.TopTracks(ctx, computeLimit)
	if err != nil {
		return nil, false, fmt.Errorf("failed to compute top tracks: %w", err)
	}

	snap := &cache.TopTracksSnapshot{Limit: computeLimit, Tracks: top, ComputedAt: time.Now().UTC()}
	s.topTracks.Populate(ctx, snap)
	return snap.Truncate(limit), false, nil
}

// NormalizeLimit applies the default and bounds to a top-tracks limit.
func NormalizeLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return DefaultTopTracksLimit, nil
	case limit < 0 || limit > MaxTopTracksLimit:
		return 0, ErrInvalidLimit
	default:
		return limit, nil
	}
}

func generationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case generation.IsValidationError(err):
		return "validation_error"
	case errors.Is(err, generation.ErrGenerationUnavailable):
		return "generation_unavailable"
	case errors.Is(err, generation.ErrInvalidGenerationResponse):
		return "invalid_response"
	case errors.Is(err, ErrEmptyPlaylist):
		return "empty_playlist"
	default:
		return "error"
	}
}
