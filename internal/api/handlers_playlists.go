// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// GeneratePlaylist creates a playlist for the mood in the request body.
//
// Method: POST
// Path: /playlists/generate
//
// Response:
//   - 201: playlist with resolved tracks
//   - 400: empty mood or empty catalog
//   - 500: GENERATION_ERROR with details.reason
func (h *Handler) GeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req GeneratePlaylistRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Request body must be JSON with a mood field", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	playlist, err := h.curator.GeneratePlaylist(r.Context(), strings.TrimSpace(req.Mood))
	if err != nil {
		respondServiceError(w, r, err, ErrCodeInternal)
		return
	}

	respondData(w, http.StatusCreated, playlist, start)
}

// ListPlaylists returns all playlists, newest first.
//
// Method: GET
// Path: /playlists
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	playlists, err := h.store.ListPlaylists(r.Context())
	if err != nil {
		respondServiceError(w, r, err, ErrCodeDatabase)
		return
	}

	respondData(w, http.StatusOK, playlists, start)
}

// GetPlaylist returns one playlist with its entries.
//
// Method: GET
// Path: /playlists/{id}
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	playlist, err := h.store.GetPlaylist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, ErrCodeDatabase)
		return
	}

	respondData(w, http.StatusOK, playlist, start)
}

// DeletePlaylist removes a playlist and its entries. Track usage counters
// are not decremented.
//
// Method: DELETE
// Path: /playlists/{id}
func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	if err := h.store.DeletePlaylist(r.Context(), id); err != nil {
		respondServiceError(w, r, err, ErrCodeDatabase)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true}, start)
}
