// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

// Package blobstore stores uploaded audio bytes under opaque keys.
//
// The relational catalog only records a key per track; the bytes live in a
// Store. FilesystemStore keeps one file per key in a directory and
// BadgerStore keeps them in an embedded Badger key/value database.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	// ErrObjectNotFound is returned when no object exists for a key.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidKey is returned for empty keys and keys containing path
	// separators or parent references.
	ErrInvalidKey = errors.New("invalid object key")
)

// Object is an open stored object. It supports seeking so it can back
// ranged HTTP responses.
type Object interface {
	io.ReadSeekCloser
	Size() int64
	ModTime() time.Time
}

// Store persists objects by key.
type Store interface {
	// Put stores everything read from r under key, replacing any existing
	// object, and returns the number of bytes written.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	// Open returns the object stored under key or ErrObjectNotFound.
	Open(ctx context.Context, key string) (Object, error)
	// Remove deletes the object under key or returns ErrObjectNotFound.
	Remove(ctx context.Context, key string) error
}

// Compile-time interface checks
var (
	_ Store = (*FilesystemStore)(nil)
	_ Store = (*BadgerStore)(nil)
)

// ValidateKey checks that key is usable by every Store implementation.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
