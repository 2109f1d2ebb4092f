// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/driftlog/services/core"
	"github.com/AleutianAI/driftlog/services/llm"
)

// GeneratorVersion is stamped into release-note metadata.
const GeneratorVersion = "0.2.0"

// synthRecord is the flat per-commit projection the synthesizer works
// from. Both the language-model prompt and the heuristic path consume
// the same records, so a fallback never sees different data.
type synthRecord struct {
	ShortSHA            string
	Category            core.ChangeCategory
	IntentSummary       string
	BehaviorBefore      string
	BehaviorAfter       string
	IsBreaking          bool
	TechnicalHighlights []string
	ImpactScope         core.ImpactScope
}

// synthContent is the body of a release note before metadata and
// header are attached.
type synthContent struct {
	Theme        string
	Highlights   []core.Highlight
	Features     []core.Feature
	Improvements []core.Improvement
	Fixes        []core.BugFix
	Deprecations []core.Deprecation
}

// SynthesisOptions name the release being described.
type SynthesisOptions struct {
	ProductName   string
	Version       string
	RevisionRange string
}

// Synthesizer produces user-facing release notes from analyzed
// commits. With a provider it asks the model to write the note; on any
// provider failure, refusal or unparseable output it falls through to
// the deterministic heuristic path over the same records. Synthesize
// is total and never returns an error.
type Synthesizer struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewSynthesizer builds a synthesizer. provider may be nil for the
// heuristic-only path.
func NewSynthesizer(provider llm.Provider, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{provider: provider, logger: logger}
}

// Synthesize builds the release note for a commit range. Commits
// without an artifact contribute to the commit count but not to the
// note body.
func (s *Synthesizer) Synthesize(ctx context.Context, commits []core.CommitInfo, artifacts map[string]*core.CommitArtifact, opts SynthesisOptions) *core.ReleaseNote {
	records := projectRecords(commits, artifacts)

	var content synthContent
	if s.provider != nil {
		content = s.synthesizeWithModel(ctx, opts, records)
	} else {
		content = heuristicContent(records)
	}

	now := time.Now().UTC()
	note := &core.ReleaseNote{
		SchemaVersion: core.ReleaseNoteSchemaVersion,
		Metadata: core.ReleaseNoteMetadata{
			GeneratedAt:      now,
			GenerationID:     uuid.NewString(),
			GeneratorVersion: GeneratorVersion,
			RevisionRange:    opts.RevisionRange,
			CommitCount: len(commits),
			// Counts artifacts matched to the commit list, not every
			// map entry; callers build the map from the same range, so
			// stray keys would be stale data, not analyzed commits.
			AnalyzedCount: len(records),
		},
		Header: core.ReleaseNoteHeader{
			ProductName: opts.ProductName,
			Version:     opts.Version,
			ReleaseDate: now.Format("2006-01-02"),
			Theme:       content.Theme,
		},
		Highlights:   content.Highlights,
		Features:     content.Features,
		Improvements: content.Improvements,
		Fixes:        content.Fixes,
		Deprecations: content.Deprecations,
	}

	if len(commits) > 0 {
		note.Metadata.TipCommit = commits[0].SHA
	}
	if s.provider != nil {
		note.Metadata.Provider = s.provider.Name()
		note.Metadata.Model = s.provider.Model()
	}
	for _, r := range records {
		note.Metadata.SourceCommits = append(note.Metadata.SourceCommits, core.SourceCommit{SHA: r.ShortSHA, Category: r.Category})
	}
	return note
}

func projectRecords(commits []core.CommitInfo, artifacts map[string]*core.CommitArtifact) []synthRecord {
	var records []synthRecord
	for _, commit := range commits {
		artifact := artifacts[commit.SHA]
		if artifact == nil {
			continue
		}
		records = append(records, synthRecord{
			ShortSHA:            commit.ShortSHA,
			Category:            artifact.Category,
			IntentSummary:       artifact.IntentSummary,
			BehaviorBefore:      artifact.BehaviorBefore,
			BehaviorAfter:       artifact.BehaviorAfter,
			IsBreaking:          artifact.IsBreaking,
			TechnicalHighlights: artifact.TechnicalHighlights,
			ImpactScope:         artifact.ImpactScope,
		})
	}
	return records
}

// synthesizeWithModel asks the provider for the whole note in one
// request. Every failure mode lands on the heuristic path.
func (s *Synthesizer) synthesizeWithModel(ctx context.Context, opts SynthesisOptions, records []synthRecord) synthContent {
	if !s.provider.IsAvailable(ctx) {
		s.logger.Debug("synthesis provider unavailable, using heuristics", "provider", s.provider.Name())
		return heuristicContent(records)
	}

	result, err := s.provider.ExtractStructured(ctx, llm.Request{
		Prompt:       buildSynthesisPrompt(opts.ProductName, opts.Version, records),
		SystemPrompt: releaseNoteSystemPrompt,
		Schema: llm.SchemaDescriptor{
			Name:        "release_note_synthesis",
			Description: releaseNoteSchemaDescription,
		},
	})
	if err != nil {
		s.logger.Warn("release note synthesis failed, using heuristics", "provider", s.provider.Name(), "error", err)
		return heuristicContent(records)
	}
	if !result.Usable() {
		s.logger.Warn("release note synthesis unusable, using heuristics", "provider", s.provider.Name(), "refusal", result.Refusal)
		return heuristicContent(records)
	}

	content, ok := parseSynthesis(result.Parsed)
	if !ok {
		s.logger.Warn("release note synthesis unparseable, using heuristics", "provider", s.provider.Name())
		return heuristicContent(records)
	}
	return content
}

// parseSynthesis converts the model's JSON object into content. A
// missing or empty theme marks the whole response unusable; malformed
// list entries are skipped individually.
func parseSynthesis(fields map[string]any) (synthContent, bool) {
	var content synthContent
	theme, ok := fields["theme"].(string)
	if !ok || theme == "" {
		return content, false
	}
	content.Theme = theme

	for _, item := range objectList(fields, "highlights") {
		summary, ok := item["summary"].(string)
		if !ok || summary == "" {
			continue
		}
		emoji, _ := item["emoji"].(string)
		kind, _ := item["type"].(string)
		content.Highlights = append(content.Highlights, core.Highlight{
			Emoji:   emoji,
			Type:    core.HighlightType(kind),
			Summary: summary,
		})
	}
	for _, item := range objectList(fields, "features") {
		title, ok := item["title"].(string)
		if !ok || title == "" {
			continue
		}
		description, _ := item["description"].(string)
		benefit, _ := item["user_benefit"].(string)
		content.Features = append(content.Features, core.Feature{
			Title:       title,
			Description: description,
			UserBenefit: benefit,
			Commits:     stringList(item, "commit_refs"),
		})
	}
	for _, item := range objectList(fields, "improvements") {
		if summary, ok := item["summary"].(string); ok && summary != "" {
			content.Improvements = append(content.Improvements, core.Improvement{Summary: summary, Commits: stringList(item, "commit_refs")})
		}
	}
	for _, item := range objectList(fields, "fixes") {
		if summary, ok := item["summary"].(string); ok && summary != "" {
			content.Fixes = append(content.Fixes, core.BugFix{Summary: summary, Commits: stringList(item, "commit_refs")})
		}
	}
	for _, item := range objectList(fields, "deprecations") {
		what, ok := item["what"].(string)
		if !ok || what == "" {
			continue
		}
		reason, _ := item["reason"].(string)
		migration, _ := item["migration"].(string)
		content.Deprecations = append(content.Deprecations, core.Deprecation{
			What:      what,
			Reason:    reason,
			Migration: migration,
			Commits:   stringList(item, "commit_refs"),
		})
	}
	return content, true
}

func objectList(fields map[string]any, key string) []map[string]any {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringList(fields map[string]any, key string) []string {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
