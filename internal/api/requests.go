// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

// GeneratePlaylistRequest is the body of POST /playlists/generate.
type GeneratePlaylistRequest struct {
	Mood string `json:"mood" validate:"notblank,max=500"`
}

// TopTracksRequest holds the validated query of GET /stats/top-tracks.
// Zero selects the default limit.
type TopTracksRequest struct {
	Limit int `json:"limit" validate:"min=0,max=100"`
}
