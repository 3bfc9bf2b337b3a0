// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/moodmix/internal/blobstore"
	"github.com/tomtom215/moodmix/internal/curation"
	"github.com/tomtom215/moodmix/internal/database"
	"github.com/tomtom215/moodmix/internal/generation"
	"github.com/tomtom215/moodmix/internal/ingest"
	"github.com/tomtom215/moodmix/internal/logging"
)

// Error codes for API responses
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeGeneration       = "GENERATION_ERROR"
	ErrCodeDatabase         = "DATABASE_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"
)

// Reasons reported in details.reason of GENERATION_ERROR responses.
const (
	ReasonGenerationUnavailable     = "generation_unavailable"
	ReasonInvalidGenerationResponse = "invalid_generation_response"
	ReasonEmptyPlaylist             = "empty_playlist"
)

// errorResponse is how a domain error is presented to clients.
type errorResponse struct {
	status  int
	code    string
	message string
	reason  string
}

// classifyError maps a domain error onto an HTTP response. fallback is the
// code used for errors with no specific mapping.
func classifyError(err error, fallback string) errorResponse {
	switch {
	case generation.IsValidationError(err),
		errors.Is(err, curation.ErrInvalidLimit),
		errors.Is(err, ingest.ErrNoFiles),
		ingest.IsRejection(err):
		return errorResponse{http.StatusBadRequest, ErrCodeValidation, err.Error(), ""}

	case errors.Is(err, database.ErrTrackNotFound):
		return errorResponse{http.StatusNotFound, ErrCodeNotFound, "Track not found", ""}
	case errors.Is(err, database.ErrPlaylistNotFound):
		return errorResponse{http.StatusNotFound, ErrCodeNotFound, "Playlist not found", ""}
	case errors.Is(err, blobstore.ErrObjectNotFound):
		return errorResponse{http.StatusNotFound, ErrCodeNotFound, "Audio file not found", ""}

	case errors.Is(err, generation.ErrGenerationUnavailable):
		return errorResponse{http.StatusInternalServerError, ErrCodeGeneration,
			"Generation backend unavailable", ReasonGenerationUnavailable}
	case errors.Is(err, generation.ErrInvalidGenerationResponse):
		return errorResponse{http.StatusInternalServerError, ErrCodeGeneration,
			"Generation backend returned an unusable response", ReasonInvalidGenerationResponse}
	case errors.Is(err, curation.ErrEmptyPlaylist):
		return errorResponse{http.StatusInternalServerError, ErrCodeGeneration,
			"Generation selected no known tracks", ReasonEmptyPlaylist}
	}

	message := "Internal server error"
	if fallback == ErrCodeDatabase {
		message = "A database error occurred"
	}
	return errorResponse{http.StatusInternalServerError, fallback, message, ""}
}

// respondServiceError logs err and writes the mapped error response.
// Client errors are logged at debug level, server errors at error level.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	resp := classifyError(err, fallback)

	ev := logging.Ctx(r.Context()).Error()
	if resp.status < http.StatusInternalServerError {
		ev = logging.Ctx(r.Context()).Debug()
	}
	ev.Err(err).
		Str("code", resp.code).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Msg("Request failed")

	var details map[string]interface{}
	if resp.reason != "" {
		details = map[string]interface{}{"reason": resp.reason}
	}
	respondErrorDetails(w, resp.status, resp.code, resp.message, details, nil)
}
