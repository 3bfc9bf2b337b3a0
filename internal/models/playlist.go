// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package models

import "time"

// Playlist is an ordered, weighted selection of tracks produced by one
// generation call. Playlists are immutable once persisted.
type Playlist struct {
	ID        string          `json:"id"`
	Mood      string          `json:"mood"`
	CreatedAt time.Time       `json:"created_at"`
	Entries   []PlaylistEntry `json:"entries"`
}

// PlaylistEntry links a playlist to a track with a 1-based position and a
// relevance weight in [0, 1].
//
// Track is resolved on read. When the referenced track has been deleted the
// entry is still returned with Available=false and a nil Track.
type PlaylistEntry struct {
	PlaylistID string  `json:"playlist_id"`
	TrackID    string  `json:"track_id"`
	Position   int     `json:"position"`
	Weight     float64 `json:"weight"`
	Available  bool    `json:"available"`
	Track      *Track  `json:"track"`
}
