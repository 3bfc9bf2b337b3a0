// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/moodmix/internal/ingest"
	"github.com/tomtom215/moodmix/internal/logging"
)

// Multipart field names accepted for uploads.
var uploadFields = []string{"files", "file"}

const (
	// multipartMemory is how much of a multipart body is buffered in memory;
	// the rest spools to temporary files.
	multipartMemory = 32 << 20

	// maxUploadFiles bounds the number of files in one request.
	maxUploadFiles = 50
)

// UploadTracks stores one or more audio files.
//
// Method: POST
// Path: /tracks/upload
//
// Response:
//   - 201: at least one file stored; failed files are listed in data.errors
//   - 400: no files, malformed body, or every file rejected
func (h *Handler) UploadTracks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes*maxUploadFiles+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, "Upload body too large", nil)
			return
		}
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Expected a multipart/form-data body", nil)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to remove multipart temp files")
		}
	}()

	var headers []*multipart.FileHeader
	for _, field := range uploadFields {
		headers = append(headers, r.MultipartForm.File[field]...)
	}
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "No files uploaded", nil)
		return
	}
	if len(headers) > maxUploadFiles {
		respondErrorDetails(w, http.StatusBadRequest, ErrCodeValidation, "Too many files in one upload",
			map[string]interface{}{"max_files": maxUploadFiles}, nil)
		return
	}

	uploads := make([]ingest.Upload, len(headers))
	for i, fh := range headers {
		uploads[i] = uploadFromHeader(fh)
	}

	result, err := h.uploader.Ingest(r.Context(), uploads)
	if err != nil {
		if result != nil && len(result.Tracks) > 0 {
			// Some files were committed before the batch stopped; say which.
			logging.Ctx(r.Context()).Warn().Err(err).
				Int("stored", len(result.Tracks)).
				Msg("Upload interrupted after storing some files")
			respondErrorDetails(w, http.StatusInternalServerError, ErrCodeInternal, "Upload interrupted",
				map[string]interface{}{"tracks": result.Tracks, "errors": result.Errors}, nil)
			return
		}
		respondServiceError(w, r, err, ErrCodeInternal)
		return
	}

	if len(result.Tracks) == 0 {
		respondErrorDetails(w, http.StatusBadRequest, ErrCodeValidation, "No file could be stored",
			map[string]interface{}{"errors": result.Errors}, nil)
		return
	}

	respondData(w, http.StatusCreated, result, start)
}

func uploadFromHeader(fh *multipart.FileHeader) ingest.Upload {
	return ingest.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadSeekCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

// ListTracks returns the catalog, newest first.
//
// Method: GET
// Path: /tracks
func (h *Handler) ListTracks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	tracks, err := h.store.ListTracks(r.Context())
	if err != nil {
		respondServiceError(w, r, err, ErrCodeDatabase)
		return
	}

	respondData(w, http.StatusOK, tracks, start)
}

// GetTrack returns a single track.
//
// Method: GET
// Path: /tracks/{id}
func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	track, err := h.store.GetTrack(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, ErrCodeDatabase)
		return
	}

	respondData(w, http.StatusOK, track, start)
}

// DeleteTrack removes a track and its stored audio. Playlists that
// referenced it keep their entries, which then report available=false.
//
// Method: DELETE
// Path: /tracks/{id}
func (h *Handler) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	if err := h.curator.DeleteTrack(r.Context(), id); err != nil {
		respondServiceError(w, r, err, ErrCodeDatabase)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true}, start)
}

// StreamTrack serves the stored audio bytes. Range and conditional
// requests are handled by http.ServeContent.
//
// Method: GET
// Path: /tracks/stream/{id}
func (h *Handler) StreamTrack(w http.ResponseWriter, r *http.Request) {
	track, err := h.store.GetTrack(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, ErrCodeDatabase)
		return
	}

	obj, err := h.blobs.Open(r.Context(), track.StoragePath)
	if err != nil {
		respondServiceError(w, r, err, ErrCodeInternal)
		return
	}
	defer func() { _ = obj.Close() }()

	w.Header().Set("Content-Type", ingest.ContentTypeFor(track.Name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": track.Name}))
	w.Header().Set("Accept-Ranges", "bytes")

	http.ServeContent(w, r, track.Name, obj.ModTime(), obj)
}
