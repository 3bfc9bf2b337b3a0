// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package models

import "time"

// Track is one uploaded audio asset in the catalog.
//
// UsageCount is the number of generated playlists that included the track.
// It starts at 0 and only ever increases.
type Track struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"storage_path"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	Title       string    `json:"title,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	Album       string    `json:"album,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	UsageCount  int64     `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// TopTrack is the summary returned by the top-tracks statistic.
type TopTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist,omitempty"`
	UsageCount int64  `json:"usage_count"`
}

// UploadResult is the response of a multi-file upload. Files that failed are
// reported individually and do not prevent the others from being stored.
type UploadResult struct {
	Tracks []Track         `json:"tracks"`
	Errors []UploadFailure `json:"errors,omitempty"`
}

// UploadFailure describes why one file of an upload batch was rejected.
type UploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}
