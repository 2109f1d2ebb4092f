// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/AleutianAI/driftlog/services/core"
	"github.com/AleutianAI/driftlog/services/extract"
)

type stubDiffSource struct {
	diff *core.CommitDiff
	text string
	err  error
}

func (s *stubDiffSource) CommitDiff(ctx context.Context, sha string) (*core.CommitDiff, string, error) {
	return s.diff, s.text, s.err
}

// stubExtractor returns a fixed partial extraction.
type stubExtractor struct {
	result extract.PartialExtraction
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, commit core.CommitInfo, diff *core.CommitDiff, diffText string) extract.PartialExtraction {
	s.calls++
	return s.result
}

func strp(s string) *string                           { return &s }
func catp(c core.ChangeCategory) *core.ChangeCategory { return &c }
func boolp(b bool) *bool                              { return &b }

func TestAnalyzeHeuristicsOnly(t *testing.T) {
	s := NewService(&stubDiffSource{text: "+func Reload() {"})
	commit := core.CommitInfo{
		SHA:     "deadbeef",
		Summary: "feat: add config reload",
	}

	artifact := s.Analyze(context.Background(), commit)

	if artifact.SchemaVersion != core.ArtifactSchemaVersion {
		t.Errorf("SchemaVersion = %q", artifact.SchemaVersion)
	}
	if artifact.CommitHash != "deadbeef" {
		t.Errorf("CommitHash = %q", artifact.CommitHash)
	}
	if artifact.Category != core.CategoryFeature {
		t.Errorf("Category = %q, want feature from heuristics", artifact.Category)
	}
	if artifact.Provenance.Provider != "heuristic" {
		t.Errorf("Provenance.Provider = %q", artifact.Provenance.Provider)
	}
	if artifact.AnalyzedAt.IsZero() {
		t.Error("AnalyzedAt must be set")
	}
	if err := artifact.Validate(); err != nil {
		t.Errorf("artifact invalid: %v", err)
	}
}

func TestAnalyzePrimaryWinsOverHeuristics(t *testing.T) {
	primary := &stubExtractor{result: extract.PartialExtraction{
		IntentSummary: strp("actually reworks the auth cache"),
		Category:      catp(core.CategoryPerformance),
		IsBreaking:    boolp(false),
		Provenance:    core.Provenance{Provider: "openai", Model: "gpt-4o-mini"},
	}}
	s := NewService(nil, WithPrimaryExtractor(primary))
	commit := core.CommitInfo{SHA: "abc", Summary: "fix: misc"}

	artifact := s.Analyze(context.Background(), commit)

	if artifact.IntentSummary != "actually reworks the auth cache" {
		t.Errorf("IntentSummary = %q", artifact.IntentSummary)
	}
	if artifact.Category != core.CategoryPerformance {
		t.Errorf("Category = %q, want primary's value", artifact.Category)
	}
	if artifact.Provenance.Provider != "openai" {
		t.Errorf("Provenance.Provider = %q", artifact.Provenance.Provider)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times", primary.calls)
	}
}

func TestAnalyzePrimaryEmptyFallsThrough(t *testing.T) {
	primary := &stubExtractor{result: extract.PartialExtraction{
		Provenance: core.Provenance{FallbackReason: "provider not available: openai"},
	}}
	s := NewService(nil, WithPrimaryExtractor(primary))
	commit := core.CommitInfo{SHA: "abc", Summary: "fix: handle nil map"}

	artifact := s.Analyze(context.Background(), commit)

	if artifact.Category != core.CategoryFix {
		t.Errorf("Category = %q, want heuristic fix", artifact.Category)
	}
	if artifact.IntentSummary != "fix: handle nil map" {
		t.Errorf("IntentSummary = %q", artifact.IntentSummary)
	}
}

func TestAnalyzeDiffFailureIsNotFatal(t *testing.T) {
	s := NewService(&stubDiffSource{err: errors.New("object not found")})
	artifact := s.Analyze(context.Background(), core.CommitInfo{SHA: "abc", Summary: "chore: tidy"})
	if artifact == nil {
		t.Fatal("analysis must be total even without a diff")
	}
	if artifact.Category != core.CategoryChore {
		t.Errorf("Category = %q", artifact.Category)
	}
}

func TestAnalyzeDefaults(t *testing.T) {
	// The heuristic extractor always sets the scalar fields, so the
	// defaults are only reachable through buildArtifact directly.
	artifact := buildArtifact(core.CommitInfo{SHA: "abc", Summary: "whatever"}, extract.PartialExtraction{})
	if artifact.Category != core.CategoryChore {
		t.Errorf("default Category = %q, want chore", artifact.Category)
	}
	if artifact.ImpactScope != core.ScopeInternal {
		t.Errorf("default ImpactScope = %q, want internal", artifact.ImpactScope)
	}
	if artifact.IsBreaking {
		t.Error("default IsBreaking must be false")
	}
	if artifact.IntentSummary != "whatever" {
		t.Errorf("IntentSummary = %q, want commit subject", artifact.IntentSummary)
	}
}
