// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

/*
database_schema.go - Database Schema Management

Tables:
  - tracks: the catalog of uploaded audio with its usage counter
  - playlists: one row per successful generation (immutable)
  - playlist_entries: ordered, weighted links from a playlist to tracks

playlist_entries.track_id deliberately has no foreign key: a track may be
deleted while playlists still reference it, and readers report such entries
as unavailable. Entries are deleted explicitly together with their playlist.

The seq columns record insertion order and break created_at ties so that
"newest first" listings are stable.
*/

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func getTableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS tracks_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS playlists_seq START 1`,

		`CREATE TABLE IF NOT EXISTS tracks (
			id TEXT PRIMARY KEY,
			seq BIGINT NOT NULL DEFAULT nextval('tracks_seq'),
			name TEXT NOT NULL,
			storage_path TEXT NOT NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
			title TEXT NOT NULL DEFAULT '',
			artist TEXT NOT NULL DEFAULT '',
			album TEXT NOT NULL DEFAULT '',
			genre TEXT NOT NULL DEFAULT '',
			usage_count BIGINT NOT NULL DEFAULT 0 CHECK (usage_count >= 0),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			seq BIGINT NOT NULL DEFAULT nextval('playlists_seq'),
			mood TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS playlist_entries (
			playlist_id TEXT NOT NULL,
			position INTEGER NOT NULL CHECK (position >= 1),
			track_id TEXT NOT NULL,
			weight DOUBLE NOT NULL CHECK (weight >= 0 AND weight <= 1),
			PRIMARY KEY (playlist_id, position)
		)`,
	}
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_playlist_entries_track ON playlist_entries(track_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_created ON tracks(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_playlists_created ON playlists(created_at)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
