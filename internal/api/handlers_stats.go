// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/moodmix/internal/models"
)

// TopTracks returns the most used tracks. metadata.cached reports whether
// the answer was served from the statistics cache.
//
// Method: GET
// Path: /stats/top-tracks?limit=N
func (h *Handler) TopTracks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	req := TopTracksRequest{Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	tracks, cached, err := h.curator.TopTracks(r.Context(), req.Limit)
	if err != nil {
		respondServiceError(w, r, err, ErrCodeDatabase)
		return
	}

	meta := newMetadata(start)
	meta.Cached = cached
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     tracks,
		Metadata: meta,
	})
}
