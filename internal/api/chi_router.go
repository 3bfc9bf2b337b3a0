// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/moodmix/internal/middleware"
)

// Router binds handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil middleware factory selects the defaults.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)         // X-Request-ID and logging context
	r.Use(chimiddleware.RealIP)         // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)      // Recover from panics
	r.Use(middleware.PrometheusMetrics) // Request metrics by route pattern
	r.Use(router.chiMiddleware.CORS())  // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/tracks", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		// Streaming stays uncompressed so Range offsets match the object.
		r.Get("/stream/{id}", router.handler.StreamTrack)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compression)
			r.Post("/upload", router.handler.UploadTracks)
			r.Get("/", router.handler.ListTracks)
			r.Get("/{id}", router.handler.GetTrack)
			r.Delete("/{id}", router.handler.DeleteTrack)
		})
	})

	r.Route("/playlists", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.Compression)

		r.With(router.chiMiddleware.RateLimitGenerate()).Post("/generate", router.handler.GeneratePlaylist)
		r.Get("/", router.handler.ListPlaylists)
		r.Get("/{id}", router.handler.GetPlaylist)
		r.Delete("/{id}", router.handler.DeletePlaylist)
	})

	r.Route("/stats", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.Compression)
		r.Get("/top-tracks", router.handler.TopTracks)
	})

	return r
}
