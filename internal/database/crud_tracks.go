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

// ErrTrackNotFound is returned when a track lookup finds no row.
var ErrTrackNotFound = errors.New("track not found")

const trackColumns = `id, name, storage_path, size_bytes, content_type, title, artist, album, genre, usage_count, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*models.Track, error) {
	var t models.Track
	err := row.Scan(
		&t.ID, &t.Name, &t.StoragePath, &t.SizeBytes, &t.ContentType,
		&t.Title, &t.Artist, &t.Album, &t.Genre, &t.UsageCount, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertTrack adds a track to the catalog. An empty ID is replaced by a new
// UUID and a zero CreatedAt by the current time. UsageCount always starts at 0.
func (db *DB) InsertTrack(ctx context.Context, track *models.Track) error {
	if track == nil {
		return fmt.Errorf("track is nil")
	}
	if track.ID == "" {
		track.ID = uuid.New().String()
	}
	if track.CreatedAt.IsZero() {
		track.CreatedAt = time.Now().UTC()
	}
	if track.ContentType == "" {
		track.ContentType = "application/octet-stream"
	}
	track.UsageCount = 0

	query := `INSERT INTO tracks (
		id, name, storage_path, size_bytes, content_type, title, artist, album, genre, usage_count, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`

	return db.withWriteTx(ctx, "insert", "tracks", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			track.ID, track.Name, track.StoragePath, track.SizeBytes, track.ContentType,
			track.Title, track.Artist, track.Album, track.Genre, track.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
		return nil
	})
}

// GetTrack retrieves a single track by ID.
func (db *DB) GetTrack(ctx context.Context, id string) (*models.Track, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "tracks", time.Since(start), nil)
		return nil, ErrTrackNotFound
	}
	metrics.RecordDBQuery("select", "tracks", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return track, nil
}

// ListTracks returns every track, newest first.
func (db *DB) ListTracks(ctx context.Context) ([]models.Track, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+trackColumns+` FROM tracks ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		metrics.RecordDBQuery("select", "tracks", time.Since(start), err)
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]models.Track, 0)
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, *t)
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "tracks", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}
	return tracks, nil
}

// GetTracksByIDs returns the tracks that exist among ids, keyed by ID.
// Unknown IDs are simply absent from the result.
func (db *DB) GetTracksByIDs(ctx context.Context, ids []string) (map[string]models.Track, error) {
	result := make(map[string]models.Track, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		metrics.RecordDBQuery("select", "tracks", time.Since(start), err)
		return nil, fmt.Errorf("failed to get tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		result[t.ID] = *t
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "tracks", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}
	return result, nil
}

// DeleteTrack removes a track row and returns it so the caller can release
// the stored object. Playlist entries referencing the track are left as is.
func (db *DB) DeleteTrack(ctx context.Context, id string) (*models.Track, error) {
	var deleted *models.Track

	err := db.withWriteTx(ctx, "delete", "tracks", func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
		t, err := scanTrack(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTrackNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load track: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete track: %w", err)
		}
		deleted = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// TopTracks returns up to limit tracks with a positive usage count, most
// used first. Ties are broken by name then ID.
func (db *DB) TopTracks(ctx context.Context, limit int) ([]models.TopTrack, error) {
	if limit <= 0 {
		return []models.TopTrack{}, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, artist, usage_count
		FROM tracks
		WHERE usage_count > 0
		ORDER BY usage_count DESC, name ASC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		metrics.RecordDBQuery("select", "tracks", time.Since(start), err)
		return nil, fmt.Errorf("failed to query top tracks: %w", err)
	}
	defer rows.Close()

	top := make([]models.TopTrack, 0, limit)
	for rows.Next() {
		var t models.TopTrack
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.UsageCount); err != nil {
			return nil, fmt.Errorf("failed to scan top track: %w", err)
		}
		top = append(top, t)
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "tracks", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("error iterating top tracks: %w", err)
	}
	return top, nil
}

// CountTracks returns the number of tracks in the catalog.
func (db *DB) CountTracks(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}
