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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/moodmix/internal/config"
	"github.com/tomtom215/moodmix/internal/models"
)

// testDBSemaphore allows a single live DuckDB instance across the package's
// tests. It is held until the test finishes, not only during creation.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

// insertTestTrack adds a track named name and fails the test on error.
func insertTestTrack(t *testing.T, db *DB, name string) *models.Track {
	t.Helper()
	track := &models.Track{
		Name:        name,
		StoragePath: "objects/" + name,
		SizeBytes:   1024,
		ContentType: "audio/mpeg",
	}
	if err := db.InsertTrack(context.Background(), track); err != nil {
		t.Fatalf("InsertTrack(%s) failed: %v", name, err)
	}
	return track
}

func testPlaylist(mood string, trackIDs ...string) *models.Playlist {
	p := &models.Playlist{Mood: mood}
	for i, id := range trackIDs {
		p.Entries = append(p.Entries, models.PlaylistEntry{
			TrackID:  id,
			Position: i + 1,
			Weight:   0.5,
		})
	}
	return p
}

func TestNew_CreatesDirectory(t *testing.T) {
	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "moodmix.duckdb")

	db, err := New(&config.DatabaseConfig{Path: path, MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNew_SchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := db.createTables(); err != nil {
		t.Errorf("second createTables() error = %v", err)
	}
	if err := db.createIndexes(); err != nil {
		t.Errorf("second createIndexes() error = %v", err)
	}
}

func TestEnsureContext(t *testing.T) {
	db := &DB{}

	ctx, cancel := db.ensureContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected deadline to be added")
	}

	parent, parentCancel := context.WithTimeout(context.Background(), time.Minute)
	defer parentCancel()
	ctx2, cancel2 := db.ensureContext(parent)
	defer cancel2()
	if ctx2 != parent {
		t.Error("expected context with deadline to be returned unchanged")
	}
}

func TestIsTransactionConflict(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("TransactionContext Error: Transaction conflict: cannot update"), true},
		{errors.New("Conflict on update!"), true},
		{errors.New("Constraint Error: duplicate key"), false},
	}

	for _, tt := range tests {
		if got := isTransactionConflict(tt.err); got != tt.want {
			t.Errorf("isTransactionConflict(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	tests := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range tests {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestWithWriteTx_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.withWriteTx(ctx, "insert", "tracks", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tracks (id, name, storage_path) VALUES ('t1', 'a', 'a')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("withWriteTx() error = %v, want %v", err, boom)
	}

	if _, err := db.GetTrack(ctx, "t1"); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("GetTrack() after rollback error = %v, want ErrTrackNotFound", err)
	}
}

func TestCheckpoint(t *testing.T) {
	db := setupTestDB(t)
	insertTestTrack(t, db, "checkpoint.mp3")

	if err := db.Checkpoint(context.Background()); err != nil {
		t.Errorf("Checkpoint() error = %v", err)
	}
}

func TestCountTracks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		insertTestTrack(t, db, fmt.Sprintf("track-%d.mp3", i))
	}

	n, err := db.CountTracks(ctx)
	if err != nil {
		t.Fatalf("CountTracks() error = %v", err)
	}
	if n != 3 {
		t.Errorf("CountTracks() = %d, want 3", n)
	}
}
