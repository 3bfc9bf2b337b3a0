// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/moodmix/internal/blobstore"
	"github.com/tomtom215/moodmix/internal/curation"
	"github.com/tomtom215/moodmix/internal/database"
	"github.com/tomtom215/moodmix/internal/generation"
	"github.com/tomtom215/moodmix/internal/ingest"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error { return fmt.Errorf("layer: %w", err) }

	tests := []struct {
		name       string
		err        error
		fallback   string
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{"empty mood", generation.ErrEmptyMood, ErrCodeInternal, 400, ErrCodeValidation, ""},
		{"empty catalog", wrap(generation.ErrEmptyCatalog), ErrCodeInternal, 400, ErrCodeValidation, ""},
		{"bad limit", curation.ErrInvalidLimit, ErrCodeDatabase, 400, ErrCodeValidation, ""},
		{"no files", ingest.ErrNoFiles, ErrCodeInternal, 400, ErrCodeValidation, ""},
		{"not audio", wrap(ingest.ErrNotAudio), ErrCodeInternal, 400, ErrCodeValidation, ""},
		{"track missing", wrap(database.ErrTrackNotFound), ErrCodeDatabase, 404, ErrCodeNotFound, ""},
		{"playlist missing", database.ErrPlaylistNotFound, ErrCodeDatabase, 404, ErrCodeNotFound, ""},
		{"object missing", wrap(blobstore.ErrObjectNotFound), ErrCodeInternal, 404, ErrCodeNotFound, ""},
		{"backend down", wrap(generation.ErrGenerationUnavailable), ErrCodeInternal, 500, ErrCodeGeneration, ReasonGenerationUnavailable},
		{"bad answer", wrap(generation.ErrInvalidGenerationResponse), ErrCodeInternal, 500, ErrCodeGeneration, ReasonInvalidGenerationResponse},
		{"nothing known", curation.ErrEmptyPlaylist, ErrCodeInternal, 500, ErrCodeGeneration, ReasonEmptyPlaylist},
		{"db failure", errors.New("io error"), ErrCodeDatabase, 500, ErrCodeDatabase, ""},
		{"other failure", errors.New("boom"), ErrCodeInternal, 500, ErrCodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := classifyError(tt.err, tt.fallback)
			if got.status != tt.wantStatus || got.code != tt.wantCode || got.reason != tt.wantReason {
				t.Errorf("classifyError(%v) = %+v, want %d %s %q", tt.err, got, tt.wantStatus, tt.wantCode, tt.wantReason)
			}
			if got.status >= http.StatusInternalServerError && got.message == tt.err.Error() {
				t.Error("server error leaks the internal message")
			}
		})
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()
	if got := sanitizeLogValue("a\nb\tc"); got != `a\x0ab\x09c` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}
