// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/driftlog/services/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testArtifact(sha string) *core.CommitArtifact {
	return &core.CommitArtifact{
		SchemaVersion: core.ArtifactSchemaVersion,
		CommitHash:    sha,
		IntentSummary: "does a thing",
		Category:      core.CategoryFix,
		ImpactScope:   core.ScopeInternal,
		AnalyzedAt:    time.Now().UTC(),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	in := testArtifact("aaaa")
	in.TechnicalHighlights = []string{"h1", "h2"}
	in.Provenance = core.Provenance{Provider: "heuristic"}
	require.NoError(t, store.Put(ctx, in, false))

	out, err := store.Get(ctx, "aaaa")
	require.NoError(t, err)
	assert.Equal(t, in.CommitHash, out.CommitHash)
	assert.Equal(t, in.Category, out.Category)
	assert.Equal(t, in.TechnicalHighlights, out.TechnicalHighlights)
	assert.Equal(t, "heuristic", out.Provenance.Provider)
}

func TestPutRejectsDuplicateWithoutForce(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testArtifact("aaaa"), false))
	err := store.Put(ctx, testArtifact("aaaa"), false)
	assert.ErrorIs(t, err, ErrExists)
}

func TestPutForceOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testArtifact("aaaa"), false))
	updated := testArtifact("aaaa")
	updated.IntentSummary = "does a different thing"
	require.NoError(t, store.Put(ctx, updated, true))

	out, err := store.Get(ctx, "aaaa")
	require.NoError(t, err)
	assert.Equal(t, "does a different thing", out.IntentSummary)
}

func TestPutRejectsInvalidArtifact(t *testing.T) {
	store := openTestStore(t)
	err := store.Put(context.Background(), &core.CommitArtifact{}, false)
	assert.Error(t, err)
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testArtifact("aaaa"), false))
	require.NoError(t, store.Put(ctx, testArtifact("bbbb"), false))

	has, err := store.Has(ctx, "aaaa")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = store.Has(ctx, "cccc")
	require.NoError(t, err)
	assert.False(t, has)

	shas, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aaaa", "bbbb"}, shas)
}

func TestGetMany(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testArtifact("aaaa"), false))
	got, err := store.GetMany(ctx, []string{"aaaa", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "aaaa")
}

func TestReleaseNoteRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	note := &core.ReleaseNote{
		SchemaVersion: core.ReleaseNoteSchemaVersion,
		Metadata: core.ReleaseNoteMetadata{
			GenerationID:  "gen-123",
			GeneratedAt:   time.Now().UTC(),
			CommitCount:   3,
			AnalyzedCount: 2,
		},
		Header: core.ReleaseNoteHeader{ProductName: "driftlog", Version: "1.0.0", Theme: "A theme."},
		Highlights: []core.Highlight{
			{Emoji: "🚀", Type: core.HighlightNew, Summary: "New thing"},
		},
	}
	require.NoError(t, store.PutReleaseNote(ctx, note))

	out, err := store.GetReleaseNote(ctx, "gen-123")
	require.NoError(t, err)
	assert.Equal(t, note.Header, out.Header)
	assert.Equal(t, note.Highlights, out.Highlights)

	ids, err := store.ListReleaseNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gen-123"}, ids)
}

func TestReleaseNoteRequiresGenerationID(t *testing.T) {
	store := openTestStore(t)
	err := store.PutReleaseNote(context.Background(), &core.ReleaseNote{})
	assert.Error(t, err)

	_, err = store.GetReleaseNote(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
