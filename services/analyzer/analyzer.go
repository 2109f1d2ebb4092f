// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analyzer turns commits into complete semantic artifacts. It
// layers the language-model extractor over the heuristic one and fills
// any remaining gaps with conservative defaults, so analysis is total:
// every commit in, one valid artifact out.
package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/driftlog/services/core"
	"github.com/AleutianAI/driftlog/services/extract"
)

// DiffSource supplies the diff for a commit. Implementations may fail
// (shallow clones, missing objects); the analyzer treats a failure as
// "no diff" and continues.
type DiffSource interface {
	CommitDiff(ctx context.Context, sha string) (*core.CommitDiff, string, error)
}

// Service analyzes commits.
//
// Thread Safety: safe for concurrent use once constructed.
type Service struct {
	diffs    DiffSource
	primary  extract.Extractor
	fallback extract.Extractor
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPrimaryExtractor sets the first-pass extractor, typically an
// *extract.LLMExtractor. Without it analysis runs heuristics only.
func WithPrimaryExtractor(e extract.Extractor) Option {
	return func(s *Service) { s.primary = e }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService builds an analyzer over the given diff source. diffs may
// be nil when only commit metadata is available.
func NewService(diffs DiffSource, opts ...Option) *Service {
	s := &Service{
		diffs:    diffs,
		fallback: extract.NewHeuristicExtractor(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze produces the artifact for one commit. It never returns an
// error: diff retrieval is best effort, the primary extractor degrades
// to empty on failure, and defaults cover whatever neither extractor
// could determine.
func (s *Service) Analyze(ctx context.Context, commit core.CommitInfo) *core.CommitArtifact {
	diff, diffText := s.loadDiff(ctx, commit.SHA)

	var merged extract.PartialExtraction
	if s.primary != nil {
		merged = s.primary.Extract(ctx, commit, diff, diffText)
	}
	merged = merged.Merge(s.fallback.Extract(ctx, commit, diff, diffText))

	return buildArtifact(commit, merged)
}

func (s *Service) loadDiff(ctx context.Context, sha string) (*core.CommitDiff, string) {
	if s.diffs == nil {
		return nil, ""
	}
	diff, text, err := s.diffs.CommitDiff(ctx, sha)
	if err != nil {
		s.logger.Debug("diff unavailable, analyzing metadata only", "sha", sha, "error", err)
		return nil, ""
	}
	return diff, text
}

// buildArtifact resolves the merged extraction into concrete values.
// Defaults are the most conservative reading: an unclassifiable commit
// is an internal chore that breaks nothing.
func buildArtifact(commit core.CommitInfo, pe extract.PartialExtraction) *core.CommitArtifact {
	artifact := &core.CommitArtifact{
		SchemaVersion: core.ArtifactSchemaVersion,
		CommitHash:    commit.SHA,
		IntentSummary: commit.Summary,
		Category:      core.CategoryChore,
		ImpactScope:   core.ScopeInternal,
		IsBreaking:    false,
		AnalyzedAt:    time.Now().UTC(),
		Provenance:    pe.Provenance,
	}

	if pe.IntentSummary != nil && *pe.IntentSummary != "" {
		artifact.IntentSummary = *pe.IntentSummary
	}
	if pe.Category != nil {
		artifact.Category = *pe.Category
	}
	if pe.BehaviorBefore != nil {
		artifact.BehaviorBefore = *pe.BehaviorBefore
	}
	if pe.BehaviorAfter != nil {
		artifact.BehaviorAfter = *pe.BehaviorAfter
	}
	if pe.ImpactScope != nil {
		artifact.ImpactScope = *pe.ImpactScope
	}
	if pe.IsBreaking != nil {
		artifact.IsBreaking = *pe.IsBreaking
	}
	artifact.TechnicalHighlights = pe.TechnicalHighlights
	return artifact
}
