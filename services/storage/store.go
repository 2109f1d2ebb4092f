// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storage persists commit artifacts and release notes in an
// embedded BadgerDB. Artifacts are keyed by full commit hash with
// at-most-one stored artifact per hash; overwriting requires an
// explicit force flag.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/driftlog/services/core"
	"github.com/AleutianAI/driftlog/services/storage/badger"
)

var (
	// ErrNotFound is returned when no record exists for a key.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned by Put without force when an artifact is
	// already stored for the commit.
	ErrExists = errors.New("artifact already exists")
)

const (
	artifactPrefix = "artifact/"
	notePrefix     = "note/"
)

// ArtifactStore is the persistence contract for commit artifacts.
type ArtifactStore interface {
	Put(ctx context.Context, artifact *core.CommitArtifact, force bool) error
	Get(ctx context.Context, sha string) (*core.CommitArtifact, error)
	Has(ctx context.Context, sha string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

// ReleaseNoteStore is the persistence contract for release notes,
// keyed by generation id.
type ReleaseNoteStore interface {
	PutReleaseNote(ctx context.Context, note *core.ReleaseNote) error
	GetReleaseNote(ctx context.Context, generationID string) (*core.ReleaseNote, error)
	ListReleaseNotes(ctx context.Context) ([]string, error)
}

// Store implements ArtifactStore and ReleaseNoteStore over BadgerDB.
//
// Thread Safety: safe for concurrent use.
type Store struct {
	db     *badgerdb.DB
	logger *slog.Logger
}

// Open opens (or creates) a store at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := badger.OpenWithPath(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens an ephemeral store for tests.
func OpenInMemory() (*Store, error) {
	db, err := badger.OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return &Store{db: db, logger: slog.Default()}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ ArtifactStore = (*Store)(nil)
var _ ReleaseNoteStore = (*Store)(nil)

// Put stores an artifact under its commit hash. Without force an
// existing artifact is rejected with ErrExists; with force it is
// overwritten. The existence check and write share one transaction.
func (s *Store) Put(ctx context.Context, artifact *core.CommitArtifact, force bool) error {
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid artifact: %w", err)
	}
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", artifact.CommitHash, err)
	}

	key := []byte(artifactPrefix + artifact.CommitHash)
	err = s.db.Update(func(txn *badgerdb.Txn) error {
		if !force {
			_, err := txn.Get(key)
			if err == nil {
				return fmt.Errorf("%w: %s", ErrExists, artifact.CommitHash)
			}
			if !errors.Is(err, badgerdb.ErrKeyNotFound) {
				return err
			}
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}
	s.logger.Debug("stored artifact", "sha", artifact.CommitHash, "force", force)
	return nil
}

// Get returns the artifact for a full commit hash.
func (s *Store) Get(ctx context.Context, sha string) (*core.CommitArtifact, error) {
	var artifact core.CommitArtifact
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(artifactPrefix + sha))
		if err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return fmt.Errorf("%w: artifact %s", ErrNotFound, sha)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &artifact)
		})
	})
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Has reports whether an artifact is stored for the hash.
func (s *Store) Has(ctx context.Context, sha string) (bool, error) {
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(artifactPrefix + sha))
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns every stored commit hash in key order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.listKeys(artifactPrefix)
}

// GetMany loads artifacts for a set of hashes. Missing artifacts are
// simply absent from the result, not errors.
func (s *Store) GetMany(ctx context.Context, shas []string) (map[string]*core.CommitArtifact, error) {
	result := make(map[string]*core.CommitArtifact, len(shas))
	for _, sha := range shas {
		artifact, err := s.Get(ctx, sha)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[sha] = artifact
	}
	return result, nil
}

// PutReleaseNote stores a release note under its generation id. Notes
// are immutable once written; duplicate ids overwrite silently since
// ids are generated per synthesis call.
func (s *Store) PutReleaseNote(ctx context.Context, note *core.ReleaseNote) error {
	if note.Metadata.GenerationID == "" {
		return errors.New("release note has no generation id")
	}
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal release note: %w", err)
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(notePrefix+note.Metadata.GenerationID), data)
	})
}

// GetReleaseNote loads a stored release note by generation id.
func (s *Store) GetReleaseNote(ctx context.Context, generationID string) (*core.ReleaseNote, error) {
	var note core.ReleaseNote
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(notePrefix + generationID))
		if err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return fmt.Errorf("%w: release note %s", ErrNotFound, generationID)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &note)
		})
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListReleaseNotes returns every stored generation id.
func (s *Store) ListReleaseNotes(ctx context.Context) ([]string, error) {
	return s.listKeys(notePrefix)
}

func (s *Store) listKeys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), prefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
