// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package generation

import "errors"

var (
	// ErrEmptyMood is returned when the mood is empty after trimming.
	ErrEmptyMood = errors.New("mood must not be empty")

	// ErrEmptyCatalog is returned when there are no tracks to choose from.
	ErrEmptyCatalog = errors.New("track catalog is empty")

	// ErrGenerationUnavailable covers every failure to obtain a response
	// from the generative backend: transport errors, timeouts, non-2xx
	// statuses, open circuit and local rate limiting.
	ErrGenerationUnavailable = errors.New("generation backend unavailable")

	// ErrInvalidGenerationResponse is returned when the backend response
	// cannot be turned into at least one selection.
	ErrInvalidGenerationResponse = errors.New("invalid generation response")
)

// IsValidationError reports whether err is a caller error that must not
// reach the backend.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyMood) || errors.Is(err, ErrEmptyCatalog)
}
