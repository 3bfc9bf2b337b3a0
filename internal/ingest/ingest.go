// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

// Package ingest stores uploaded audio files and registers them in the
// track catalog.
//
// A batch is processed as independent per-file operations running
// concurrently; one bad file never aborts the others. Each file is checked
// for an audio content type and the size ceiling, copied into the object
// store under a fresh key, tagged with whatever metadata the container
// carries, and inserted into the catalog. If the catalog insert fails the
// stored object is removed again.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/moodmix/internal/blobstore"
	"github.com/tomtom215/moodmix/internal/logging"
	"github.com/tomtom215/moodmix/internal/metrics"
	"github.com/tomtom215/moodmix/internal/models"
)

// DefaultMaxFileBytes is the per-file size ceiling.
const DefaultMaxFileBytes int64 = 50 << 20

var (
	// ErrNoFiles is returned when a batch contains no files.
	ErrNoFiles = errors.New("no files uploaded")

	// ErrNotAudio is returned for files without an audio content type.
	ErrNotAudio = errors.New("file is not audio")

	// ErrFileTooLarge is returned for files above the size ceiling.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrEmptyFile is returned for zero-byte files.
	ErrEmptyFile = errors.New("file is empty")
)

// IsRejection reports whether err is a per-file validation failure rather
// than a storage failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotAudio) || errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrEmptyFile)
}

// Upload is one file of a batch. Size is the declared size; the ceiling is
// enforced on the bytes actually read as well.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadSeekCloser, error)
}

// TrackWriter inserts catalog rows. *database.DB satisfies it.
type TrackWriter interface {
	InsertTrack(ctx context.Context, track *models.Track) error
}

// Options tunes a Service.
type Options struct {
	MaxFileBytes int64
	Concurrency  int
}

// Service ingests upload batches.
type Service struct {
	tracks      TrackWriter
	blobs       blobstore.Store
	maxBytes    int64
	concurrency int
}

// NewService creates a Service. Zero options select the defaults.
func NewService(tracks TrackWriter, blobs blobstore.Store, opts Options) *Service {
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = DefaultMaxFileBytes
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Service{
		tracks:      tracks,
		blobs:       blobs,
		maxBytes:    opts.MaxFileBytes,
		concurrency: opts.Concurrency,
	}
}

// Ingest processes every upload and reports stored tracks and per-file
// failures, both in upload order. It only returns an error for an empty
// batch or a canceled context; per-file problems land in the result. On
// cancellation the result still lists the tracks that were committed, so
// callers can tell which files made it into the catalog.
func (s *Service) Ingest(ctx context.Context, uploads []Upload) (*models.UploadResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	tracks := make([]*models.Track, len(uploads))
	failures := make([]error, len(uploads))
	var stored atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range uploads {
		g.Go(func() error {
			track, err := s.ingestOne(gctx, &uploads[i])
			if err != nil {
				failures[i] = err
				return nil // Continue with other files
			}
			tracks[i] = track
			stored.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := &models.UploadResult{
		Tracks: make([]models.Track, 0, stored.Load()),
		Errors: make([]models.UploadFailure, 0, len(uploads)-int(stored.Load())),
	}
	for i := range uploads {
		if tracks[i] != nil {
			result.Tracks = append(result.Tracks, *tracks[i])
			continue
		}
		result.Errors = append(result.Errors, models.UploadFailure{
			Filename: uploads[i].Filename,
			Error:    failures[i].Error(),
		})
	}

	if err := ctx.Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Int("files", len(uploads)).
			Int("stored", len(result.Tracks)).
			Msg("Upload batch interrupted")
		return result, err
	}

	logging.Ctx(ctx).Info().
		Int("files", len(uploads)).
		Int("stored", len(result.Tracks)).
		Int("failed", len(result.Errors)).
		Msg("Upload batch processed")
	return result, nil
}

func (s *Service) ingestOne(ctx context.Context, up *Upload) (*models.Track, error) {
	name := DisplayName(up.Filename)

	contentType, ok := AudioContentType(up.ContentType, name)
	if !ok {
		metrics.UploadedFiles.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotAudio, name, describeType(up.ContentType))
	}
	if up.Size > s.maxBytes {
		metrics.UploadedFiles.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, name, up.Size, s.maxBytes)
	}

	f, err := up.Open()
	if err != nil {
		metrics.UploadedFiles.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to open upload %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	track := &models.Track{
		ID:          uuid.New().String(),
		Name:        name,
		ContentType: contentType,
	}
	readTags(f, track)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		metrics.UploadedFiles.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to rewind upload %s: %w", name, err)
	}

	track.StoragePath = track.ID + strings.ToLower(filepath.Ext(name))

	// Read one byte past the ceiling to detect understated sizes.
	n, err := s.blobs.Put(ctx, track.StoragePath, io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		metrics.UploadedFiles.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to store %s: %w", name, err)
	}
	if n > s.maxBytes || n == 0 {
		s.discard(ctx, track.StoragePath)
		metrics.UploadedFiles.WithLabelValues("rejected").Inc()
		if n == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyFile, name)
		}
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, name, s.maxBytes)
	}
	track.SizeBytes = n

	if err := s.tracks.InsertTrack(ctx, track); err != nil {
		s.discard(ctx, track.StoragePath)
		metrics.UploadedFiles.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to register %s: %w", name, err)
	}

	metrics.UploadedFiles.WithLabelValues("stored").Inc()
	metrics.UploadedBytes.Add(float64(n))
	return track, nil
}

// discard removes an object written for a file that was then rejected.
func (s *Service) discard(ctx context.Context, key string) {
	if err := s.blobs.Remove(context.WithoutCancel(ctx), key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("storage_path", key).Msg("Failed to remove orphaned object")
	}
}

// readTags copies container metadata into track. Files without readable
// tags are accepted as they are.
func readTags(rs io.ReadSeeker, track *models.Track) {
	metadata, err := tag.ReadFrom(rs)
	if err != nil {
		return
	}
	track.Title = strings.TrimSpace(metadata.Title())
	track.Artist = strings.TrimSpace(metadata.Artist())
	track.Album = strings.TrimSpace(metadata.Album())
	track.Genre = strings.TrimSpace(metadata.Genre())
}

// DisplayName reduces a client-supplied filename to its base name.
func DisplayName(filename string) string {
	name := strings.TrimSpace(filename)
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		return "untitled"
	}
	return name
}

func describeType(ct string) string {
	if ct == "" {
		return "no content type"
	}
	return ct
}
