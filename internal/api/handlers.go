// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

import (
	"context"
	"time"

	"github.com/tomtom215/moodmix/internal/blobstore"
	"github.com/tomtom215/moodmix/internal/config"
	"github.com/tomtom215/moodmix/internal/ingest"
	"github.com/tomtom215/moodmix/internal/models"
)

// Store is the read side of the catalog plus playlist deletion.
// *database.DB satisfies it.
type Store interface {
	ListTracks(ctx context.Context) ([]models.Track, error)
	CountTracks(ctx context.Context) (int64, error)
	GetTrack(ctx context.Context, id string) (*models.Track, error)
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Curator runs the operations that touch more than one store.
// *curation.Service satisfies it.
type Curator interface {
	GeneratePlaylist(ctx context.Context, mood string) (*models.Playlist, error)
	DeleteTrack(ctx context.Context, id string) error
	TopTracks(ctx context.Context, limit int) ([]models.TopTrack, bool, error)
}

// Uploader stores upload batches. *ingest.Service satisfies it.
type Uploader interface {
	Ingest(ctx context.Context, uploads []ingest.Upload) (*models.UploadResult, error)
}

// Pinger is an optional dependency reported by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_tracks.go: upload, catalog, delete and streaming
//   - handlers_playlists.go: generation and playlist reads
//   - handlers_stats.go: usage statistics
//   - handlers_health.go: liveness and readiness checks
type Handler struct {
	store          Store
	curator        Curator
	uploader       Uploader
	blobs          blobstore.Store
	cache          Pinger        // optional, reported but not required for readiness
	breakerState   func() string // optional
	maxUploadBytes int64
	startTime      time.Time
}

// NewHandler creates a new API handler.
//
// Example:
//
//	handler := api.NewHandler(db, curator, uploader, blobs, cfg)
//	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))
//	http.ListenAndServe(":8080", router.SetupChi())
func NewHandler(store Store, curator Curator, uploader Uploader, blobs blobstore.Store, cfg *config.Config) *Handler {
	maxUpload := ingest.DefaultMaxFileBytes
	if cfg != nil && cfg.Storage.MaxUploadBytes > 0 {
		maxUpload = cfg.Storage.MaxUploadBytes
	}
	return &Handler{
		store:          store,
		curator:        curator,
		uploader:       uploader,
		blobs:          blobs,
		maxUploadBytes: maxUpload,
		startTime:      time.Now(),
	}
}

// SetCacheChecker registers the statistics cache for readiness reporting.
func (h *Handler) SetCacheChecker(p Pinger) {
	h.cache = p
}

// SetBreakerState registers a reporter for the generation circuit breaker.
func (h *Handler) SetBreakerState(fn func() string) {
	h.breakerState = fn
}
