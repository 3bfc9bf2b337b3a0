// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/moodmix/internal/metrics"
	"github.com/tomtom215/moodmix/internal/models"
)

// ErrPlaylistNotFound is returned when a playlist lookup finds no row.
var ErrPlaylistNotFound = errors.New("playlist not found")

// ErrEmptyPlaylistEntries is returned by CreatePlaylist for a playlist with
// no entries. Empty playlists are never persisted.
var ErrEmptyPlaylistEntries = errors.New("playlist has no entries")

// CreatePlaylist persists a playlist and its entries and increments the
// usage counter of every referenced track by one per appearance, all in one
// transaction. Either everything is written or nothing is.
func (db *DB) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	if playlist == nil {
		return fmt.Errorf("playlist is nil")
	}
	if len(playlist.Entries) == 0 {
		return ErrEmptyPlaylistEntries
	}
	if playlist.ID == "" {
		playlist.ID = uuid.New().String()
	}
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = time.Now().UTC()
	}

	increments := make(map[string]int64, len(playlist.Entries))
	order := make([]string, 0, len(playlist.Entries))
	for i := range playlist.Entries {
		playlist.Entries[i].PlaylistID = playlist.ID
		id := playlist.Entries[i].TrackID
		if _, seen := increments[id]; !seen {
			order = append(order, id)
		}
		increments[id]++
	}

	return db.withWriteTx(ctx, "insert", "playlists", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO playlists (id, mood, created_at) VALUES (?, ?, ?)`,
			playlist.ID, playlist.Mood, playlist.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert playlist: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO playlist_entries (playlist_id, position, track_id, weight) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare entry insert: %w", err)
		}
		defer closeWithLog(stmt, "statement")

		for _, e := range playlist.Entries {
			if _, err := stmt.ExecContext(ctx, e.PlaylistID, e.Position, e.TrackID, e.Weight); err != nil {
				return fmt.Errorf("failed to insert playlist entry %d: %w", e.Position, err)
			}
		}

		for _, id := range order {
			if _, err := tx.ExecContext(ctx,
				`UPDATE tracks SET usage_count = usage_count + ? WHERE id = ?`,
				increments[id], id,
			); err != nil {
				return fmt.Errorf("failed to increment usage for track %s: %w", id, err)
			}
		}
		return nil
	})
}

// GetPlaylist returns a playlist with its entries ordered by position.
// Entries whose track no longer exists are returned with Available=false.
func (db *DB) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var p models.Playlist
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, mood, created_at FROM playlists WHERE id = ?`, id,
	).Scan(&p.ID, &p.Mood, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "playlists", time.Since(start), nil)
		return nil, ErrPlaylistNotFound
	}
	metrics.RecordDBQuery("select", "playlists", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	entries, err := db.loadEntries(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Entries = entries[p.ID]
	if p.Entries == nil {
		p.Entries = []models.PlaylistEntry{}
	}
	return &p, nil
}

// ListPlaylists returns every playlist, newest first, with resolved entries.
func (db *DB) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, mood, created_at FROM playlists ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		metrics.RecordDBQuery("select", "playlists", time.Since(start), err)
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]models.Playlist, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Mood, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
		ids = append(ids, p.ID)
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "playlists", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("error iterating playlists: %w", err)
	}

	entries, err := db.loadEntries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		playlists[i].Entries = entries[playlists[i].ID]
		if playlists[i].Entries == nil {
			playlists[i].Entries = []models.PlaylistEntry{}
		}
	}
	return playlists, nil
}

// loadEntries fetches the entries of the given playlists with their tracks
// resolved through a left join, grouped by playlist ID.
func (db *DB) loadEntries(ctx context.Context, playlistIDs []string) (map[string][]models.PlaylistEntry, error) {
	result := make(map[string][]models.PlaylistEntry, len(playlistIDs))
	if len(playlistIDs) == 0 {
		return result, nil
	}

	args := make([]any, len(playlistIDs))
	for i, id := range playlistIDs {
		args[i] = id
	}

	query := `
		SELECT e.playlist_id, e.position, e.track_id, e.weight,
			t.id, t.name, t.storage_path, t.size_bytes, t.content_type,
			t.title, t.artist, t.album, t.genre, t.usage_count, t.created_at
		FROM playlist_entries e
		LEFT JOIN tracks t ON t.id = e.track_id
		WHERE e.playlist_id IN (` + placeholders(len(playlistIDs)) + `)
		ORDER BY e.playlist_id, e.position`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBQuery("select", "playlist_entries", time.Since(start), err)
		return nil, fmt.Errorf("failed to query playlist entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result[entry.PlaylistID] = append(result[entry.PlaylistID], *entry)
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "playlist_entries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("error iterating playlist entries: %w", err)
	}
	return result, nil
}

func scanEntry(row rowScanner) (*models.PlaylistEntry, error) {
	var (
		e           models.PlaylistEntry
		id, name    sql.NullString
		path, ctype sql.NullString
		title       sql.NullString
		artist      sql.NullString
		album       sql.NullString
		genre       sql.NullString
		size, usage sql.NullInt64
		createdAt   sql.NullTime
	)

	err := row.Scan(
		&e.PlaylistID, &e.Position, &e.TrackID, &e.Weight,
		&id, &name, &path, &size, &ctype,
		&title, &artist, &album, &genre, &usage, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist entry: %w", err)
	}

	if id.Valid {
		e.Available = true
		e.Track = &models.Track{
			ID:          id.String,
			Name:        name.String,
			StoragePath: path.String,
			SizeBytes:   size.Int64,
			ContentType: ctype.String,
			Title:       title.String,
			Artist:      artist.String,
			Album:       album.String,
			Genre:       genre.String,
			UsageCount:  usage.Int64,
			CreatedAt:   createdAt.Time,
		}
	}
	return &e, nil
}

// DeletePlaylist removes a playlist and its entries in one transaction.
// Track usage counters are not changed.
func (db *DB) DeletePlaylist(ctx context.Context, id string) error {
	return db.withWriteTx(ctx, "delete", "playlists", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_entries WHERE playlist_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete playlist entries: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete playlist: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return ErrPlaylistNotFound
		}
		return nil
	})
}
