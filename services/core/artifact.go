// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package core

import (
	"fmt"
	"time"
)

// ArtifactSchemaVersion identifies the CommitArtifact schema produced
// by this build. Stored artifacts with a different version are still
// readable; writers always emit the current version.
const ArtifactSchemaVersion = "1.0.0"

// TokenUsage records token consumption for one provider call.
type TokenUsage struct {
	PromptTokens     int `yaml:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int `yaml:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int `yaml:"total_tokens" json:"total_tokens"`
}

// Provenance records how an artifact's semantic fields were produced.
//
// Provider and Model are empty when the heuristic path produced every
// field. FallbackReason is set when an LLM path was configured but its
// output was not used.
type Provenance struct {
	Provider       string        `yaml:"provider,omitempty" json:"provider,omitempty"`
	Model          string        `yaml:"model,omitempty" json:"model,omitempty"`
	PromptVersion  string        `yaml:"prompt_version,omitempty" json:"prompt_version,omitempty"`
	TokenUsage     TokenUsage    `yaml:"token_usage,omitempty" json:"token_usage,omitempty"`
	Duration       time.Duration `yaml:"duration,omitempty" json:"duration,omitempty"`
	FallbackReason string        `yaml:"fallback_reason,omitempty" json:"fallback_reason,omitempty"`
}

// CommitArtifact is the canonical, immutable semantic record for one
// commit, keyed by the full commit hash.
//
// # Invariants
//
//   - Category, ImpactScope and IsBreaking are always set; the analyzer
//     applies defaults (chore, internal, false) when no extractor had
//     an opinion.
//   - IntentSummary is never empty; it falls back to the raw commit
//     subject line.
//   - SchemaVersion is ArtifactSchemaVersion for every artifact this
//     build writes.
//
// # Lifecycle
//
// Created once by the analyzer, persisted, and read-only thereafter.
// Re-analysis creates a new artifact that replaces the stored one.
type CommitArtifact struct {
	SchemaVersion string `yaml:"schema_version" json:"schema_version"`
	CommitHash    string `yaml:"commit_hash" json:"commit_hash"`

	IntentSummary       string         `yaml:"intent_summary" json:"intent_summary"`
	Category            ChangeCategory `yaml:"category" json:"category"`
	BehaviorBefore      string         `yaml:"behavior_before,omitempty" json:"behavior_before,omitempty"`
	BehaviorAfter       string         `yaml:"behavior_after,omitempty" json:"behavior_after,omitempty"`
	ImpactScope         ImpactScope    `yaml:"impact_scope" json:"impact_scope"`
	IsBreaking          bool           `yaml:"is_breaking" json:"is_breaking"`
	TechnicalHighlights []string       `yaml:"technical_highlights,omitempty" json:"technical_highlights,omitempty"`

	AnalyzedAt time.Time  `yaml:"analyzed_at" json:"analyzed_at"`
	Provenance Provenance `yaml:"provenance,omitempty" json:"provenance,omitempty"`
}

// Validate checks the artifact invariants.
func (a *CommitArtifact) Validate() error {
	if a.CommitHash == "" {
		return fmt.Errorf("artifact has no commit hash")
	}
	if a.IntentSummary == "" {
		return fmt.Errorf("artifact %s has no intent summary", a.CommitHash)
	}
	if !a.Category.Valid() {
		return fmt.Errorf("artifact %s has invalid category %q", a.CommitHash, a.Category)
	}
	if !a.ImpactScope.Valid() {
		return fmt.Errorf("artifact %s has invalid impact scope %q", a.CommitHash, a.ImpactScope)
	}
	return nil
}
