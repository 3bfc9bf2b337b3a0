// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

/*
Package middleware provides HTTP middleware components for the API router.

All middleware has the chi shape func(http.Handler) http.Handler so it can be
installed with r.Use or r.With.

Key Components:

  - RequestID: reuses or generates X-Request-ID and seeds the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled by
    chi route pattern so path parameters do not explode label cardinality
  - Compression: gzip for JSON responses when the client accepts it

Middleware Stack:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Group(func(r chi.Router) {
	    r.Use(middleware.Compression)
	    r.Get("/tracks", h.ListTracks)
	})

Streaming endpoints must not be wrapped with Compression: http.ServeContent
answers Range requests with byte offsets into the uncompressed object.
*/
package middleware
