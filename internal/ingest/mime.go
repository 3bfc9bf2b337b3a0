// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package ingest

import (
	"mime"
	"path/filepath"
	"strings"
)

// DefaultContentType is served for names with no known audio extension.
const DefaultContentType = "application/octet-stream"

var audioTypes = map[string]string{
	".aac":  "audio/aac",
	".aif":  "audio/aiff",
	".aiff": "audio/aiff",
	".alac": "audio/mp4",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
	".weba": "audio/webm",
	".wma":  "audio/x-ms-wma",
}

// ContentTypeFor derives a content type from a filename extension.
func ContentTypeFor(filename string) string {
	if ct, ok := audioTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return DefaultContentType
}

// AudioContentType decides whether an upload is audio. A declared audio/*
// type wins; a missing or generic declared type falls back to the filename
// extension. The returned type is the one to store.
func AudioContentType(declared, filename string) (string, bool) {
	if declared != "" {
		mediaType, _, err := mime.ParseMediaType(declared)
		if err == nil {
			mediaType = strings.ToLower(mediaType)
			if strings.HasPrefix(mediaType, "audio/") {
				return mediaType, true
			}
			if mediaType != DefaultContentType && mediaType != "binary/octet-stream" {
				return "", false
			}
		}
	}

	ct := ContentTypeFor(filename)
	if ct == DefaultContentType {
		return "", false
	}
	return ct, true
}
