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

	"gopkg.in/yaml.v3"
)

// ReleaseNoteSchemaVersion identifies the ReleaseNote schema produced
// by this build.
const ReleaseNoteSchemaVersion = "1.0.0"

// HighlightType enumerates the kinds of TL;DR highlights.
type HighlightType string

const (
	HighlightNew        HighlightType = "new"
	HighlightImproved   HighlightType = "improved"
	HighlightFixed      HighlightType = "fixed"
	HighlightSecurity   HighlightType = "security"
	HighlightDeprecated HighlightType = "deprecated"
	HighlightBreaking   HighlightType = "breaking"
)

// Highlight is a single entry in the release note's TL;DR section.
type Highlight struct {
	Emoji   string        `yaml:"emoji" json:"emoji"`
	Type    HighlightType `yaml:"type" json:"type"`
	Summary string        `yaml:"summary" json:"summary"`
}

// Feature describes a new capability shipped in the release.
type Feature struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	UserBenefit string   `yaml:"user_benefit" json:"user_benefit"`
	Commits     []string `yaml:"commits,omitempty" json:"commits,omitempty"`
}

// Improvement describes an enhancement to existing behavior.
type Improvement struct {
	Summary string   `yaml:"summary" json:"summary"`
	Commits []string `yaml:"commits,omitempty" json:"commits,omitempty"`
}

// BugFix describes a user-visible problem that was resolved.
type BugFix struct {
	Summary string   `yaml:"summary" json:"summary"`
	Commits []string `yaml:"commits,omitempty" json:"commits,omitempty"`
}

// Deprecation describes a breaking change or deprecation and how to
// migrate past it.
type Deprecation struct {
	What      string   `yaml:"what" json:"what"`
	Reason    string   `yaml:"reason" json:"reason"`
	Deadline  string   `yaml:"deadline,omitempty" json:"deadline,omitempty"`
	Migration string   `yaml:"migration" json:"migration"`
	Commits   []string `yaml:"commits,omitempty" json:"commits,omitempty"`
}

// ReleaseNoteHeader is the header section of a release note.
type ReleaseNoteHeader struct {
	ProductName string `yaml:"product_name" json:"product_name"`
	Version     string `yaml:"version" json:"version"`
	ReleaseDate string `yaml:"release_date" json:"release_date"` // YYYY-MM-DD
	Theme       string `yaml:"theme" json:"theme"`
}

// SourceCommit references one commit that contributed to the note.
type SourceCommit struct {
	SHA      string         `yaml:"sha" json:"sha"` // short sha
	Category ChangeCategory `yaml:"category" json:"category"`
}

// ReleaseNoteMetadata traces how a release note was generated.
type ReleaseNoteMetadata struct {
	GeneratedAt      time.Time      `yaml:"generated_at" json:"generated_at"`
	GenerationID     string         `yaml:"generation_id" json:"generation_id"`
	GeneratorVersion string         `yaml:"generator_version" json:"generator_version"`
	Provider         string         `yaml:"provider,omitempty" json:"provider,omitempty"`
	Model            string         `yaml:"model,omitempty" json:"model,omitempty"`
	RevisionRange    string         `yaml:"revision_range" json:"revision_range"`
	TipCommit        string         `yaml:"tip_commit,omitempty" json:"tip_commit,omitempty"`
	CommitCount      int            `yaml:"commit_count" json:"commit_count"`
	AnalyzedCount    int            `yaml:"analyzed_count" json:"analyzed_count"`
	SourceCommits    []SourceCommit `yaml:"source_commits,omitempty" json:"source_commits,omitempty"`
}

// ReleaseNote is the aggregate release document for a revision range.
//
// Created once per synthesis call and immutable afterwards. The
// document round-trips through YAML without loss; MarshalYAML-visible
// field order is fixed by struct order.
type ReleaseNote struct {
	SchemaVersion string              `yaml:"schema_version" json:"schema_version"`
	Metadata      ReleaseNoteMetadata `yaml:"metadata" json:"metadata"`
	Header        ReleaseNoteHeader   `yaml:"header" json:"header"`
	Highlights    []Highlight         `yaml:"highlights,omitempty" json:"highlights,omitempty"`
	Features      []Feature           `yaml:"features,omitempty" json:"features,omitempty"`
	Improvements  []Improvement       `yaml:"improvements,omitempty" json:"improvements,omitempty"`
	Fixes         []BugFix            `yaml:"fixes,omitempty" json:"fixes,omitempty"`
	Deprecations  []Deprecation       `yaml:"deprecations,omitempty" json:"deprecations,omitempty"`
}

// ToYAML serializes the release note. The method must not satisfy
// encoding.TextMarshaler: yaml.v3 honors that interface, so the encoder
// would re-enter it.
func (n *ReleaseNote) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal release note: %w", err)
	}
	return out, nil
}

// UnmarshalReleaseNote deserializes a release note from YAML.
func UnmarshalReleaseNote(data []byte) (*ReleaseNote, error) {
	var note ReleaseNote
	if err := yaml.Unmarshal(data, &note); err != nil {
		return nil, fmt.Errorf("unmarshal release note: %w", err)
	}
	return &note, nil
}
