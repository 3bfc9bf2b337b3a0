// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/moodmix/internal/logging"
	"github.com/tomtom215/moodmix/internal/models"
)

// healthCheckTimeout bounds each dependency ping of the readiness check.
const healthCheckTimeout = 2 * time.Second

// HealthLive handles liveness check requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthReady handles readiness check requests (Kubernetes-style)
// Returns 200 OK only if the database answers. Cache failures are reported
// but do not make the service unready: statistics fall back to the database.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, 3)

	dbConnected := h.store != nil && ping(r.Context(), h.store) == nil
	checks["database"] = statusWord(dbConnected)

	var tracks int64
	if dbConnected {
		n, err := h.store.CountTracks(r.Context())
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness track count failed")
		}
		tracks = n
	}

	if h.cache != nil {
		checks["cache"] = statusWord(ping(r.Context(), h.cache) == nil)
	}
	if h.breakerState != nil {
		checks["generation_breaker"] = h.breakerState()
	}

	statusCode := http.StatusOK
	status := "ready"
	if !dbConnected {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: models.HealthStatus{
			Status:   status,
			Checks:   checks,
			Uptime:   time.Since(h.startTime).Round(time.Second).String(),
			Database: dbConnected,
			Tracks:   tracks,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

func ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return p.Ping(ctx)
}

func statusWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "unavailable"
}
