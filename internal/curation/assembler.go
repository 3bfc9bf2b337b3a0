// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package curation

import (
	"errors"
	"strings"

	"github.com/tomtom215/moodmix/internal/generation"
	"github.com/tomtom215/moodmix/internal/models"
)

// ErrEmptyPlaylist is returned when no selection survives catalog
// resolution. Nothing is persisted in that case.
var ErrEmptyPlaylist = errors.New("no selected track exists in the catalog")

// Assembly is the outcome of resolving selections against the catalog.
type Assembly struct {
	Playlist *models.Playlist
	// Unknown counts selections whose track ID is not in the catalog.
	Unknown int
}

// Assemble resolves selections against catalog and builds an unsaved
// playlist. Unknown track IDs are dropped. Every other selection becomes an
// entry, repeats included, so a track chosen twice appears twice. Survivors
// keep their relative order and get positions 1..K. Entry tracks point at
// copies of the catalog rows.
func Assemble(mood string, selections []generation.Selection, catalog map[string]models.Track) (*Assembly, error) {
	result := &Assembly{
		Playlist: &models.Playlist{
			Mood:    strings.TrimSpace(mood),
			Entries: make([]models.PlaylistEntry, 0, len(selections)),
		},
	}

	for _, sel := range selections {
		track, ok := catalog[sel.TrackID]
		if !ok {
			result.Unknown++
			continue
		}

		result.Playlist.Entries = append(result.Playlist.Entries, models.PlaylistEntry{
			TrackID:   sel.TrackID,
			Position:  len(result.Playlist.Entries) + 1,
			Weight:    sel.Weight,
			Available: true,
			Track:     &track,
		})
	}

	if len(result.Playlist.Entries) == 0 {
		return result, ErrEmptyPlaylist
	}
	return result, nil
}
