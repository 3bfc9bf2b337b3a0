// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

// Package models provides the data models shared by the database, curation
// and API layers: catalog tracks, generated playlists with their weighted
// entries, top-track summaries and the standard API response envelope.
package models
