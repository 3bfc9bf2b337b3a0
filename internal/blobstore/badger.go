// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package blobstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/moodmix/internal/logging"
)

// Key prefixes. Object bytes and their modification time are written in
// the same transaction.
const (
	dataPrefix  = "obj:"
	mtimePrefix = "mtime:"
)

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
}

// BadgerStore keeps objects in an embedded Badger database. Object bytes
// are held in memory while being written and read, which is acceptable for
// the bounded upload size.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the Badger database.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.SyncWrites = opts.SyncWrites

	// Reduce logging verbosity
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Msg("Badger object store opened")
	return &BadgerStore{db: db}, nil
}

// Put implements Store.
func (s *BadgerStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}

	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: r})
	if err != nil {
		return 0, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	mtime := make([]byte, 8)
	binary.BigEndian.PutUint64(mtime, uint64(time.Now().UnixNano()))

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry([]byte(dataPrefix+key), data)); err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry([]byte(mtimePrefix+key), mtime))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store object %s: %w", key, err)
	}
	return int64(len(data)), nil
}

// Open implements Store.
func (s *BadgerStore) Open(_ context.Context, key string) (Object, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	var (
		data    []byte
		modTime time.Time
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(dataPrefix + key))
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}

		mt, err := txn.Get([]byte(mtimePrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return mt.Value(func(val []byte) error {
			if len(val) == 8 {
				modTime = time.Unix(0, int64(binary.BigEndian.Uint64(val)))
			}
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return &memObject{Reader: bytes.NewReader(data), size: int64(len(data)), modTime: modTime}, nil
}

// Remove implements Store.
func (s *BadgerStore) Remove(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(dataPrefix + key)); err != nil {
			return err
		}
		if err := txn.Delete([]byte(dataPrefix + key)); err != nil {
			return err
		}
		return txn.Delete([]byte(mtimePrefix + key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrObjectNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

// RunGC reclaims value log space left by removed objects.
func (s *BadgerStore) RunGC() error {
	if s.db.Opts().InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the Badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

type memObject struct {
	*bytes.Reader
	size    int64
	modTime time.Time
}

func (o *memObject) Size() int64        { return o.size }
func (o *memObject) ModTime() time.Time { return o.modTime }
func (o *memObject) Close() error       { return nil }
